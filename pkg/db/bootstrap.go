package db

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// BootstrapOptions seeds a fresh database.
type BootstrapOptions struct {
	ProfileName string
	Timezone    string // detected from the host when empty
	APIHost     string
	APIPort     int
	Device      string // optional initial device address
}

// Bootstrap creates the default profile on first run. It is a no-op once any
// profile exists.
func (db *DB) Bootstrap(ctx context.Context, opts BootstrapOptions) error {
	needed, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check profiles: %w", err)
	}
	if !needed {
		return nil
	}

	if opts.ProfileName == "" {
		opts.ProfileName = "default"
	}
	if opts.Timezone == "" {
		opts.Timezone = detectTimezone()
	}
	if opts.APIHost == "" {
		opts.APIHost = "0.0.0.0"
	}
	if opts.APIPort == 0 {
		opts.APIPort = 8080
	}

	profile := &Profile{Name: opts.ProfileName, Timezone: opts.Timezone, IsActive: true}
	if err := db.Profiles().Create(ctx, profile); err != nil {
		return fmt.Errorf("failed to create default profile: %w", err)
	}

	if err := db.APIServers().Save(ctx, &APIServer{ProfileID: profile.ID, Host: opts.APIHost, Port: opts.APIPort}); err != nil {
		return err
	}

	if opts.Device != "" {
		if err := db.Endpoints().Save(ctx, &SavedEndpoint{ProfileID: profile.ID, Address: opts.Device, Kind: "unknown"}); err != nil {
			return err
		}
	}
	return nil
}

// NeedsBootstrap reports whether no profile exists yet.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func detectTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}

	switch runtime.GOOS {
	case "darwin":
		if out, err := exec.Command("systemsetup", "-gettimezone").Output(); err == nil {
			if _, tz, ok := strings.Cut(string(out), ": "); ok {
				return strings.TrimSpace(tz)
			}
		}
	case "linux":
		if out, err := exec.Command("timedatectl", "show", "--property=Timezone", "--value").Output(); err == nil {
			if tz := strings.TrimSpace(string(out)); tz != "" {
				return tz
			}
		}
		if data, err := os.ReadFile("/etc/timezone"); err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	if link, err := os.Readlink("/etc/localtime"); err == nil {
		if _, tz, ok := strings.Cut(link, "zoneinfo/"); ok {
			return tz
		}
	}
	return "UTC"
}
