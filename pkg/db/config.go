package db

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config is the persisted runtime state of the active profile.
type Config struct {
	Profile   *Profile
	APIServer *APIServer
	Endpoint  *SavedEndpoint
}

// APIAddress returns the API listen address, or fallback when none is stored.
func (c *Config) APIAddress(fallback string) string {
	if c.APIServer == nil {
		return fallback
	}
	return c.APIServer.Address()
}

// Location returns the profile timezone used for alert bodies.
func (c *Config) Location() *time.Location {
	return c.Profile.Location()
}

// DeviceAddress returns the saved device address, if any.
func (c *Config) DeviceAddress() string {
	if c.Endpoint == nil {
		return ""
	}
	return c.Endpoint.Address
}

// ActiveConfig loads everything stored for the active profile.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	cfg := &Config{Profile: profile}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	cfg.APIServer = apiServer

	endpoint, err := db.Endpoints().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrEndpointNotFound) {
		return nil, fmt.Errorf("failed to get device endpoint: %w", err)
	}
	cfg.Endpoint = endpoint

	return cfg, nil
}
