package device

import "time"

// Kind is the firmware dialect inferred from a device's probe response.
type Kind string

// Device kinds
const (
	KindUnknown     Kind = "unknown"
	KindArduino     Kind = "arduino"
	KindRaspberryPi Kind = "raspberry_pi"
)

// ConnectionState is the endpoint's connection lifecycle state.
type ConnectionState string

// Connection states
const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateFailed       ConnectionState = "failed"
)

// Status returns the user-facing status line for the state.
func (s ConnectionState) Status() string {
	switch s {
	case StateConnecting:
		return "Connecting..."
	case StateConnected:
		return "Connected"
	case StateFailed:
		return "Connection failed"
	default:
		return "Disconnected"
	}
}

// Info is a snapshot of the endpoint.
type Info struct {
	Address     string          `json:"address"`
	State       ConnectionState `json:"state"`
	Status      string          `json:"status"`
	Kind        Kind            `json:"kind"`
	LastProbeAt time.Time       `json:"last_probe_at,omitempty"`
}

// BuzzerCommand is the body of POST /buzzer.
type BuzzerCommand struct {
	Frequency float64 `json:"frequency"` // Hz
	Duration  float64 `json:"duration"`  // seconds
}

// DefaultBuzzerCommand is the tone used when the caller gives none.
var DefaultBuzzerCommand = BuzzerCommand{Frequency: 1000, Duration: 1.0}

// BuzzerStatus is the decoded GET /buzzer/status response.
type BuzzerStatus struct {
	Active bool           `json:"active"`
	Raw    map[string]any `json:"raw,omitempty"`
}

// DetectionStatus is the decoded GET /detection/status response.
type DetectionStatus struct {
	Enabled        bool    `json:"enabled"`
	LastDetection  float64 `json:"last_detection"` // unix seconds
	Suspicious     bool    `json:"suspicious"`
	PersonDetected bool    `json:"person_detected"`
}

// DetectionWindow is how recent last_detection must be to count as a live detection.
const DetectionWindow = 5 * time.Second

// SuspiciousAt reports whether the status describes suspicious activity at now.
func (s DetectionStatus) SuspiciousAt(now time.Time) bool {
	if s.Suspicious {
		return true
	}
	if !s.Enabled {
		return false
	}
	if s.PersonDetected {
		return true
	}
	if s.LastDetection <= 0 {
		return false
	}
	at := time.UnixMilli(int64(s.LastDetection * 1000))
	return now.Sub(at) < DetectionWindow
}
