// Package app constructs the long-lived GuardIt services once and hands them to
// the API and MCP surfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/camera"
	"github.com/urmzd/guardit/pkg/device"
	"github.com/urmzd/guardit/pkg/device/schema"
	"github.com/urmzd/guardit/pkg/notify"
	"github.com/urmzd/guardit/pkg/telemetry"
)

// ErrConnectFailed is returned when every probe attempt failed.
var ErrConnectFailed = errors.New("connection failed: check that the device is powered on and on the same network, then try again")

// EndpointRecorder persists the last device address that answered.
type EndpointRecorder interface {
	SaveActiveEndpoint(ctx context.Context, address, kind string) error
}

// Options configures the service graph. Zero values take package defaults.
type Options struct {
	Device          device.Options
	Camera          camera.Options
	Detectors       telemetry.DetectorConfig
	Interval        time.Duration
	WatchDetection  bool
	WatchBuzzer     bool
	BuzzerInterval  time.Duration
	ConnectAttempts int
	ConnectDelay    time.Duration
	Cooldown        time.Duration
	Location        *time.Location
	Platform        notify.Platform

	// Source replaces HTTP telemetry, for a serial-attached board.
	Source telemetry.Source

	// Recorder may be nil.
	Recorder EndpointRecorder
}

// Services is the explicit service graph.
type Services struct {
	Endpoint   *device.Endpoint
	Actuators  *device.Actuators
	Validator  *schema.Validator
	Store      *alert.Store
	Dispatcher *notify.Dispatcher
	Poller     *telemetry.Poller
	Buzzer     *telemetry.BuzzerWatcher
	Camera     *camera.Client

	opts      Options
	platform  notify.Platform
	source    telemetry.Source
	startedAt time.Time
}

// New builds every service and wires them together. Nothing starts running.
func New(opts Options) *Services {
	if opts.ConnectAttempts <= 0 {
		opts.ConnectAttempts = 3
	}
	if opts.ConnectDelay <= 0 {
		opts.ConnectDelay = 2 * time.Second
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = notify.DefaultCooldown
	}
	if opts.Platform == nil {
		opts.Platform = notify.NewLogPlatform()
	}

	s := &Services{
		opts:      opts,
		platform:  opts.Platform,
		startedAt: time.Now(),
	}

	s.Validator = schema.NewValidator()
	s.Endpoint = device.NewEndpoint(opts.Device)
	s.Actuators = device.NewActuators(s.Endpoint, s.Validator)
	s.Store = alert.NewStore(alert.DefaultCapacity)
	s.Dispatcher = notify.NewDispatcher(opts.Platform, s.Store,
		notify.WithCooldown(opts.Cooldown),
		notify.WithLocation(opts.Location),
	)

	s.source = opts.Source
	if s.source == nil {
		s.source = s.Endpoint
	}

	var checkers []telemetry.Checker
	if opts.WatchDetection {
		checkers = append(checkers, telemetry.NewDetectionWatcher(s.Actuators))
	}
	s.Poller = telemetry.NewPoller(
		s.source,
		telemetry.NewNormalizer(s.Validator),
		telemetry.NewDetectors(opts.Detectors),
		s.Dispatcher,
		checkers...,
	)
	s.Buzzer = telemetry.NewBuzzerWatcher(s.Actuators, s.Dispatcher)
	s.Camera = camera.NewClient(s.Endpoint, s.Dispatcher, opts.Camera)

	return s
}

// Connect configures address and probes it, retrying on failure. A device that
// answers is persisted through the recorder.
func (s *Services) Connect(ctx context.Context, address string) (device.Info, error) {
	if err := s.Endpoint.Configure(address, 0); err != nil {
		return s.Endpoint.Info(), err
	}

	if !s.Endpoint.ConnectWithRetry(ctx, s.opts.ConnectAttempts, s.opts.ConnectDelay) {
		if err := ctx.Err(); err != nil {
			return s.Endpoint.Info(), err
		}
		return s.Endpoint.Info(), ErrConnectFailed
	}

	info := s.Endpoint.Info()
	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.SaveActiveEndpoint(ctx, info.Address, string(info.Kind)); err != nil {
			log.Warn().Err(err).Msg("Failed to persist device endpoint")
		}
	}
	return info, nil
}

// Disconnect stops every timer and marks the endpoint disconnected.
func (s *Services) Disconnect(ctx context.Context) device.Info {
	s.StopTelemetry()
	s.Camera.StopStream(ctx, false)
	s.Endpoint.Disconnect()
	return s.Endpoint.Info()
}

// StartTelemetry starts the poller, and the buzzer watcher when enabled. An
// interval of 0 uses the configured one.
func (s *Services) StartTelemetry(interval time.Duration) error {
	if s.opts.Source == nil && s.Endpoint.BaseAddress() == "" {
		return device.ErrNotConnected
	}
	if interval <= 0 {
		interval = s.opts.Interval
	}

	s.Poller.Start(interval)
	if s.opts.WatchBuzzer && s.Endpoint.BaseAddress() != "" {
		s.Buzzer.Start(s.opts.BuzzerInterval)
	}
	return nil
}

// StopTelemetry stops the poller and the buzzer watcher.
func (s *Services) StopTelemetry() {
	s.Poller.Stop()
	s.Buzzer.Stop()
}

// ActivateBuzzer sounds the buzzer and records a motion alert for it.
func (s *Services) ActivateBuzzer(ctx context.Context, cmd device.BuzzerCommand) (map[string]any, error) {
	resp, err := s.Actuators.ActivateBuzzer(ctx, cmd)
	if err != nil {
		return nil, err
	}
	s.Dispatcher.Alert(ctx, alert.KindMotion,
		fmt.Sprintf("Buzzer sounded (%.0f Hz, %.1fs)", cmd.Frequency, cmd.Duration))
	return resp, nil
}

// TestNotification dispatches an LED alert on demand. A nil record means the
// cooldown or the platform dropped it.
func (s *Services) TestNotification(ctx context.Context) (*alert.Record, error) {
	if err := s.Dispatcher.RequestPermission(ctx); err != nil {
		return nil, err
	}
	return s.Dispatcher.Alert(ctx, alert.KindLED, "Test alert from GuardIt"), nil
}

// Health is a snapshot of the whole process.
type Health struct {
	Device           device.Info `json:"device"`
	TelemetryRunning bool        `json:"telemetry_running"`
	Interval         string      `json:"interval,omitempty"`
	CameraStreaming  bool        `json:"camera_streaming"`
	Platform         string      `json:"platform"`
	UnreadAlerts     int         `json:"unread_alerts"`
	Uptime           string      `json:"uptime"`
}

// Health reports the state of every service.
func (s *Services) Health() Health {
	running, interval := s.Poller.Running()
	h := Health{
		Device:           s.Endpoint.Info(),
		TelemetryRunning: running,
		CameraStreaming:  s.Camera.Streaming(),
		Platform:         s.Dispatcher.PlatformName(),
		UnreadAlerts:     s.Store.UnreadCount(),
		Uptime:           time.Since(s.startedAt).Round(time.Second).String(),
	}
	if running {
		h.Interval = interval.String()
	}
	return h
}

// Close stops all timers and releases the telemetry source and platform.
func (s *Services) Close(ctx context.Context) {
	s.StopTelemetry()
	s.Camera.StopStream(ctx, false)

	if c, ok := s.source.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close telemetry source")
		}
	}
	if c, ok := s.platform.(interface{ Close() }); ok {
		c.Close()
	}
}
