package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrEndpointNotFound = errors.New("saved device endpoint not found")

// SavedEndpoint is the last device address that answered a probe.
type SavedEndpoint struct {
	ProfileID int64
	Address   string
	Kind      string
	UpdatedAt time.Time
}

// EndpointStore persists the device address per profile.
type EndpointStore interface {
	Get(ctx context.Context, profileID int64) (*SavedEndpoint, error)
	Save(ctx context.Context, e *SavedEndpoint) error
	Delete(ctx context.Context, profileID int64) error
}

// Endpoints returns an EndpointStore for this database.
func (db *DB) Endpoints() EndpointStore {
	return &endpointStore{db: db}
}

type endpointStore struct {
	db *DB
}

func (s *endpointStore) Get(ctx context.Context, profileID int64) (*SavedEndpoint, error) {
	e := &SavedEndpoint{}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT profile_id, address, kind, updated_at
		FROM device_endpoints WHERE profile_id = ?
	`, profileID).Scan(&e.ProfileID, &e.Address, &e.Kind, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEndpointNotFound
	}
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return e, nil
}

func (s *endpointStore) Save(ctx context.Context, e *SavedEndpoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_endpoints (profile_id, address, kind) VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			address = excluded.address,
			kind = excluded.kind,
			updated_at = datetime('now')
	`, e.ProfileID, e.Address, e.Kind)
	if err != nil {
		return fmt.Errorf("failed to save device endpoint: %w", err)
	}
	return nil
}

func (s *endpointStore) Delete(ctx context.Context, profileID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM device_endpoints WHERE profile_id = ?`, profileID)
	return err
}

// SaveActiveEndpoint records address for the active profile.
func (db *DB) SaveActiveEndpoint(ctx context.Context, address, kind string) error {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return ErrNoActiveProfile
		}
		return err
	}
	return db.Endpoints().Save(ctx, &SavedEndpoint{ProfileID: profile.ID, Address: address, Kind: kind})
}
