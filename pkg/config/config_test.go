package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/guardit/pkg/notify"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 8080, cfg.Device.DefaultPort)
	assert.Equal(t, 5*time.Second, cfg.Device.ProbeTimeout)
	assert.Equal(t, 3*time.Second, cfg.Device.AlternativeTimeout)
	assert.Equal(t, []int{80, 8000, 8080}, cfg.Device.AlternativePorts)
	assert.Equal(t, 3, cfg.Device.ConnectAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Telemetry.Interval)
	assert.True(t, cfg.Telemetry.WatchDetection)
	assert.False(t, cfg.Telemetry.EdgeGateShake)
	assert.Equal(t, 200*time.Millisecond, cfg.Camera.StreamInterval)
	assert.Equal(t, 2*time.Second, cfg.Notify.Cooldown)
	assert.Equal(t, PlatformLog, cfg.Notify.Platform)
	assert.Equal(t, 9600, cfg.Device.Serial.Baud)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
device:
  address: 192.168.4.1
  probe_timeout: 1500ms
telemetry:
  interval: 250ms
  edge_gate_shake: true
camera:
  quality: 60
notify:
  platform: none
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guardit.yaml"), []byte(yaml), 0600))
	t.Setenv("GUARDIT_SERVER_PORT", "9000")
	t.Setenv("GUARDIT_NOTIFY_COOLDOWN", "5s")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "192.168.4.1", cfg.Device.Address)
	assert.Equal(t, 1500*time.Millisecond, cfg.Device.ProbeTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Telemetry.Interval)
	assert.True(t, cfg.Telemetry.EdgeGateShake)
	assert.Equal(t, 60, cfg.Camera.Quality)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Notify.Cooldown)

	_, isNull := cfg.Platform().(*notify.NullPlatform)
	assert.True(t, isNull)
}

func TestLoad_RejectsUnknownPlatform(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guardit.yaml"), []byte("notify:\n  platform: pager\n"), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guardit.yaml"), []byte("device: [unclosed"), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestConversions(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	dev := cfg.DeviceOptions()
	assert.Equal(t, cfg.Device.AlternativePaths, dev.AlternativePaths)
	assert.Equal(t, cfg.Device.RequestTimeout, dev.RequestTimeout)

	cam := cfg.CameraOptions()
	assert.Equal(t, 640, cam.Width)
	assert.Equal(t, "jpeg", cam.Format)

	cfg.Notify.Platform = PlatformMQTT
	p := cfg.Platform()
	assert.Equal(t, "mqtt", p.Name())

	cfg.Notify.Platform = PlatformLog
	assert.Equal(t, "log", cfg.Platform().Name())
}

func TestAppOptions(t *testing.T) {
	t.Setenv("GUARDIT_TELEMETRY_EDGE_GATE_SHAKE", "true")
	t.Setenv("GUARDIT_NOTIFY_PLATFORM", "none")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	opts := cfg.AppOptions()
	assert.True(t, opts.Detectors.EdgeGateShake)
	assert.Equal(t, 3, opts.ConnectAttempts)
	assert.Equal(t, 2*time.Second, opts.ConnectDelay)
	assert.Equal(t, notify.DefaultCooldown, opts.Cooldown)
	assert.Equal(t, "none", opts.Platform.Name())
	assert.Nil(t, opts.Source)
	assert.Nil(t, opts.Recorder)
}
