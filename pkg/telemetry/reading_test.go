package telemetry

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/guardit/pkg/device"
	"github.com/urmzd/guardit/pkg/device/schema"
)

func rawPayload(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestNormalize_KnownShapes(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name    string
		payload string
		shape   string
		accel   Vector
	}{
		{"nested", `{"data": {"accelerometer": {"x": 0.3, "y": -0.4, "z": 1.2}, "gyroscope": {"x": 1, "y": 2, "z": 2}, "temperature": 21.5}}`,
			schema.ShapeNested, Vector{0.3, -0.4, 1.2}},
		{"flat", `{"accelerometer": {"x": 3, "y": 4, "z": 0, "magnitude": 5, "change": 0.02}, "timestamp": 1700000000000}`,
			schema.ShapeFlat, Vector{3, 4, 0}},
		{"top level", `{"ax": 0.01, "ay": 0.02, "az": 0.99, "gx": 0, "gy": 0, "gz": 0, "temp": 24.1, "alert": false}`,
			schema.ShapeTopLevel, Vector{0.01, 0.02, 0.99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := n.Normalize(rawPayload(t, tt.payload))
			require.NoError(t, err)

			want := math.Sqrt(tt.accel.X*tt.accel.X + tt.accel.Y*tt.accel.Y + tt.accel.Z*tt.accel.Z)
			assert.Equal(t, tt.shape, r.Shape)
			assert.Equal(t, tt.accel, r.Accel)
			assert.InDelta(t, want, r.Magnitude, 1e-9)
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	n := NewNormalizer(nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	r, err := n.Normalize(rawPayload(t, `{"data": {"accelerometer": {"x": 0, "y": 0, "z": 1}}}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultTemperature, r.Temperature)
	assert.Equal(t, Vector{}, r.Gyro)
	assert.Equal(t, fixed, r.Timestamp)
	assert.False(t, r.DeviceChange)
	assert.InDelta(t, r.Magnitude, r.Change, 1e-12, "change falls back to magnitude")
}

func TestNormalize_DeviceChangeAndTimestamp(t *testing.T) {
	n := NewNormalizer(nil)

	r, err := n.Normalize(rawPayload(t, `{"accelerometer": {"x": 0, "y": 0, "z": 1, "change": 0.03}, "timestamp": 1700000000123}`))
	require.NoError(t, err)
	assert.True(t, r.DeviceChange)
	assert.Equal(t, 0.03, r.Change)
	assert.Equal(t, int64(1700000000123), r.Timestamp.UnixMilli())

	r, err = n.Normalize(rawPayload(t, `{"ax": 0, "ay": 0, "az": 1, "change": 0.2, "timestamp": 1700000000.5}`))
	require.NoError(t, err)
	assert.Equal(t, 0.2, r.Change)
	assert.Equal(t, int64(1700000000500), r.Timestamp.UnixMilli())
}

func TestNormalize_UnknownShape(t *testing.T) {
	n := NewNormalizer(nil)

	for _, payload := range []string{
		`{"name": "GuardIt IMU Server"}`,
		`{"accelerometer": {"x": 1}}`,
		`{"data": {"gyroscope": {"x": 0, "y": 0, "z": 0}}}`,
	} {
		_, err := n.Normalize(rawPayload(t, payload))
		assert.ErrorIs(t, err, device.ErrNormalization, payload)
	}

	_, err := n.Normalize(nil)
	assert.ErrorIs(t, err, device.ErrNormalization)
}
