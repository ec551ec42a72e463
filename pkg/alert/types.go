package alert

import "time"

// Kind identifies which detector or device condition produced an alert.
type Kind string

// Alert kinds
const (
	KindLED                Kind = "led_alert"
	KindMotion             Kind = "motion_alert"
	KindSuspiciousActivity Kind = "suspicious_activity"
	KindProximity          Kind = "proximity_alert"
	KindFall               Kind = "fall"
	KindUnusualMovement    Kind = "unusual_movement"
)

// Title returns the notification title used for a kind.
func (k Kind) Title() string {
	switch k {
	case KindLED:
		return "LED Alert"
	case KindMotion:
		return "Device Movement Alert"
	case KindSuspiciousActivity:
		return "Suspicious Activity Detected"
	case KindProximity:
		return "Proximity Warning"
	case KindFall:
		return "Fall Detected"
	case KindUnusualMovement:
		return "Unusual Movement"
	default:
		return "GuardIt Alert"
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindLED, KindMotion, KindSuspiciousActivity, KindProximity, KindFall, KindUnusualMovement:
		return true
	}
	return false
}

// Record is one entry in the alert history.
type Record struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
