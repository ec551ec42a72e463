package camera

import "time"

// Source selects a camera on the device.
type Source string

// Camera sources
const (
	SourceCSI  Source = "csi"
	SourceUSB  Source = "usb"
	SourceBoth Source = "both"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceCSI, SourceUSB, SourceBoth:
		return true
	}
	return false
}

// Status is the camera state in whatever shape the firmware reported it.
type Status struct {
	Opened       bool           `json:"opened"`
	Streaming    bool           `json:"streaming"`
	CSIAvailable bool           `json:"csi_available"`
	USBAvailable bool           `json:"usb_available"`
	Shape        string         `json:"shape,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// Frame is one captured image.
type Frame struct {
	Success   bool      `json:"success"`
	Source    Source    `json:"source,omitempty"`
	Image     string    `json:"image,omitempty"` // base64
	Format    string    `json:"format,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	AlertType string    `json:"alert_type,omitempty"`
	Alert     bool      `json:"alert,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Capture is the result of a capture request. "both" yields up to two frames.
type Capture struct {
	Frames []Frame `json:"frames"`
	Error  string  `json:"error,omitempty"`
}

// StreamResult reports a stream start or stop.
type StreamResult struct {
	Streaming bool   `json:"streaming"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MotionResult is the outcome of a motion check.
type MotionResult struct {
	MotionDetected bool   `json:"motion_detected"`
	Alerted        bool   `json:"alerted"`
	Error          string `json:"error,omitempty"`
}
