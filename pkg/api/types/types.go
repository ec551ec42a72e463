package types

import (
	"time"

	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/device"
	"github.com/urmzd/guardit/pkg/telemetry"
)

// --- Request DTOs ---

// ConnectRequest is the request body for POST /device/connect
type ConnectRequest struct {
	Address string `json:"address" binding:"required" example:"192.168.4.1:8080"`
}

// BuzzerRequest is the request body for POST /device/buzzer. Omitted fields take
// 1000 Hz and 1 s.
type BuzzerRequest struct {
	Frequency *float64 `json:"frequency,omitempty" example:"1000"`
	Duration  *float64 `json:"duration,omitempty" example:"1"`
}

// StartTelemetryRequest is the request body for POST /telemetry/start
type StartTelemetryRequest struct {
	IntervalMs int `json:"interval_ms" example:"500"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status           string      `json:"status"`
	Device           device.Info `json:"device"`
	TelemetryRunning bool        `json:"telemetry_running"`
	CameraStreaming  bool        `json:"camera_streaming"`
	Platform         string      `json:"platform"`
	UnreadAlerts     int         `json:"unread_alerts"`
	Uptime           string      `json:"uptime"`
	Timestamp        time.Time   `json:"timestamp"`
}

// DeviceResponse is returned from the /device endpoints
type DeviceResponse struct {
	Device device.Info `json:"device"`
}

// BuzzerResponse is returned from POST /device/buzzer
type BuzzerResponse struct {
	Command   device.BuzzerCommand `json:"command"`
	Result    map[string]any       `json:"result,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// DetectionResponse is returned from the /device/detection endpoints
type DetectionResponse struct {
	Detection  device.DetectionStatus `json:"detection"`
	Suspicious bool                   `json:"suspicious"`
}

// TelemetryStatusResponse is returned from POST /telemetry/start and /telemetry/stop
type TelemetryStatusResponse struct {
	Running    bool  `json:"running"`
	IntervalMs int64 `json:"interval_ms,omitempty"`
}

// LatestReadingResponse is returned from GET /telemetry/latest
type LatestReadingResponse struct {
	Reading   telemetry.Reading       `json:"reading"`
	Raw       map[string]any          `json:"raw"`
	Detectors telemetry.DetectorState `json:"detectors"`
}

// AlertView is an alert record with its display age
type AlertView struct {
	alert.Record
	Age string `json:"age"`
}

// ListAlertsResponse is returned from GET /alerts
type ListAlertsResponse struct {
	Alerts []AlertView `json:"alerts"`
	Count  int         `json:"count"`
	Unread int         `json:"unread"`
}

// UnreadResponse is returned from GET /alerts/unread
type UnreadResponse struct {
	Unread int `json:"unread"`
}

// TestAlertResponse is returned from POST /alerts/test
type TestAlertResponse struct {
	Delivered bool          `json:"delivered"`
	Alert     *alert.Record `json:"alert,omitempty"`
}

// StatusResponse is a plain acknowledgement
type StatusResponse struct {
	Status string `json:"status"`
}
