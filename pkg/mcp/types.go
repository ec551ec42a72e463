package mcp

import (
	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/device"
	"github.com/urmzd/guardit/pkg/telemetry"
)

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status           string      `json:"status" jsonschema:"description=healthy when the device is connected, otherwise degraded"`
	Device           device.Info `json:"device" jsonschema:"description=Device address and connection state"`
	TelemetryRunning bool        `json:"telemetry_running" jsonschema:"description=Whether the sensor is being polled"`
	CameraStreaming  bool        `json:"camera_streaming" jsonschema:"description=Whether frames are being streamed"`
	Platform         string      `json:"platform" jsonschema:"description=Notification delivery platform"`
	UnreadAlerts     int         `json:"unread_alerts" jsonschema:"description=Unread alert count"`
	Timestamp        string      `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// DeviceOutput is the output for the connect_device and disconnect_device tools
type DeviceOutput struct {
	Device device.Info `json:"device"`
}

// BuzzerOutput is the output for the activate_buzzer tool
type BuzzerOutput struct {
	Command device.BuzzerCommand `json:"command"`
	Result  map[string]any       `json:"result,omitempty"`
}

// TelemetryOutput is the output for the start_telemetry and stop_telemetry tools
type TelemetryOutput struct {
	Running    bool  `json:"running"`
	IntervalMs int64 `json:"interval_ms,omitempty"`
}

// LatestReadingOutput is the output for the get_latest_reading tool
type LatestReadingOutput struct {
	Reading telemetry.Reading `json:"reading"`
	Age     string            `json:"age"`
}

// AlertInfo is an alert in tool outputs
type AlertInfo struct {
	alert.Record
	Age string `json:"age" jsonschema:"description=How long ago, e.g. 5m ago"`
}

// ListAlertsOutput is the output for the list_alerts tool
type ListAlertsOutput struct {
	Alerts []AlertInfo `json:"alerts"`
	Count  int         `json:"count"`
	Unread int         `json:"unread"`
}

// AlertActionOutput is the output for the alert mutation tools
type AlertActionOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Unread  int    `json:"unread"`
}
