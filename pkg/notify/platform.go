package notify

import (
	"context"

	"github.com/urmzd/guardit/pkg/alert"
)

// Permission is the notification permission state reported by a platform.
type Permission string

// Permission states
const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notification is the content handed to a platform for delivery.
type Notification struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Kind     alert.Kind     `json:"kind"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Platform is the local-notification capability the dispatcher delivers through.
// Implementations exist for logging, MQTT, and a no-op fallback.
type Platform interface {
	// RequestPermission asks for (or reads) permission to deliver notifications
	RequestPermission(ctx context.Context) (Permission, error)

	// Deliver shows a notification
	Deliver(ctx context.Context, n Notification) error

	// Name identifies the platform in logs and health output
	Name() string
}

// Subscriber receives every record the dispatcher appends to the store.
type Subscriber interface {
	// Subscribe returns a channel that receives dispatched records
	Subscribe() chan alert.Record

	// Unsubscribe removes a subscription
	Unsubscribe(ch chan alert.Record)
}
