package telemetry

import (
	"fmt"
	"math"
	"time"

	"github.com/urmzd/guardit/pkg/device"
	"github.com/urmzd/guardit/pkg/device/schema"
)

// DefaultTemperature is reported when a payload carries no temperature.
const DefaultTemperature = 25.0

// Vector is a three-axis sample.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the Euclidean norm of v.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Reading is one normalized IMU sample. DeviceChange is true when Change was
// reported by the device; otherwise Change equals Magnitude.
type Reading struct {
	Accel        Vector    `json:"accel"`
	Gyro         Vector    `json:"gyro"`
	Temperature  float64   `json:"temperature"`
	Magnitude    float64   `json:"magnitude"`
	Change       float64   `json:"change"`
	DeviceChange bool      `json:"device_change"`
	Timestamp    time.Time `json:"timestamp"`
	Shape        string    `json:"shape"`
}

// Normalizer converts raw payloads of any known shape into a Reading.
type Normalizer struct {
	validator *schema.Validator
	now       func() time.Time
}

// NewNormalizer creates a normalizer. A nil validator gets a fresh one.
func NewNormalizer(validator *schema.Validator) *Normalizer {
	if validator == nil {
		validator = schema.NewValidator()
	}
	return &Normalizer{validator: validator, now: time.Now}
}

// Normalize returns the Reading for raw, or device.ErrNormalization when raw
// matches none of the known shapes. Partial readings are never produced.
func (n *Normalizer) Normalize(raw map[string]any) (Reading, error) {
	if raw == nil {
		return Reading{}, fmt.Errorf("%w: empty payload", device.ErrNormalization)
	}

	shape, ok := n.validator.Match(schema.TelemetryShapes, raw)
	if !ok {
		return Reading{}, fmt.Errorf("%w: unrecognized payload shape", device.ErrNormalization)
	}

	r := Reading{Temperature: DefaultTemperature, Shape: shape}
	var change float64
	var hasChange bool

	switch shape {
	case schema.ShapeNested:
		data := raw["data"].(map[string]any)
		r.Accel, _ = vectorOf(data["accelerometer"])
		r.Gyro, _ = vectorOf(data["gyroscope"])
		if t, ok := numberOf(data["temperature"]); ok {
			r.Temperature = t
		}

	case schema.ShapeFlat:
		accel := raw["accelerometer"].(map[string]any)
		r.Accel, _ = vectorOf(accel)
		r.Gyro, _ = vectorOf(raw["gyroscope"])
		if t, ok := numberOf(raw["temperature"]); ok {
			r.Temperature = t
		}
		change, hasChange = numberOf(accel["change"])

	case schema.ShapeTopLevel:
		r.Accel = Vector{X: num(raw["ax"]), Y: num(raw["ay"]), Z: num(raw["az"])}
		r.Gyro = Vector{X: num(raw["gx"]), Y: num(raw["gy"]), Z: num(raw["gz"])}
		if t, ok := numberOf(raw["temp"]); ok {
			r.Temperature = t
		}
	}

	if !hasChange {
		change, hasChange = numberOf(raw["change"])
	}

	r.Magnitude = r.Accel.Magnitude()
	if hasChange {
		r.Change = change
		r.DeviceChange = true
	} else {
		// No device delta: the magnitude stands in for it.
		r.Change = r.Magnitude
	}

	r.Timestamp = n.timestampOf(raw["timestamp"])
	return r, nil
}

// timestampOf reads a device timestamp in milliseconds, or seconds for small values.
func (n *Normalizer) timestampOf(v any) time.Time {
	ts, ok := numberOf(v)
	if !ok || ts <= 0 {
		return n.now()
	}
	if ts < 1e11 {
		return time.UnixMilli(int64(ts * 1000))
	}
	return time.UnixMilli(int64(ts))
}

func vectorOf(v any) (Vector, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Vector{}, false
	}
	return Vector{X: num(m["x"]), Y: num(m["y"]), Z: num(m["z"])}, true
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func num(v any) float64 {
	n, _ := numberOf(v)
	return n
}

func boolOf(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
