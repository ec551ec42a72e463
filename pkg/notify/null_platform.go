package notify

import "context"

// NullPlatform grants permission and discards every notification.
// It is used when no delivery transport is configured so alerts still reach the history.
type NullPlatform struct{}

// NewNullPlatform creates a new NullPlatform.
func NewNullPlatform() *NullPlatform {
	return &NullPlatform{}
}

func (p *NullPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (p *NullPlatform) Deliver(ctx context.Context, n Notification) error {
	return nil
}

func (p *NullPlatform) Name() string {
	return "none"
}
