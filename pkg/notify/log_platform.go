package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogPlatform delivers notifications as structured log lines.
type LogPlatform struct{}

// NewLogPlatform creates a new LogPlatform.
func NewLogPlatform() *LogPlatform {
	return &LogPlatform{}
}

func (p *LogPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (p *LogPlatform) Deliver(ctx context.Context, n Notification) error {
	log.Info().
		Str("kind", string(n.Kind)).
		Str("title", n.Title).
		Str("body", n.Body).
		Msg("Notification")
	return nil
}

func (p *LogPlatform) Name() string {
	return "log"
}
