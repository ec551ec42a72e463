package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "guardit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx))

	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestBootstrap_CreatesDefaults(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	needed, err := db.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, needed)

	require.NoError(t, db.Bootstrap(ctx, BootstrapOptions{
		Timezone: "America/Toronto",
		APIPort:  9090,
		Device:   "192.168.1.40:8080",
	}))

	cfg, err := db.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Profile.Name)
	assert.Equal(t, "0.0.0.0:9090", cfg.APIAddress("127.0.0.1:8080"))
	assert.Equal(t, "192.168.1.40:8080", cfg.DeviceAddress())
	assert.Equal(t, "America/Toronto", cfg.Location().String())

	// second call leaves the first profile alone
	require.NoError(t, db.Bootstrap(ctx, BootstrapOptions{ProfileName: "other"}))
	cfg, err = db.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Profile.Name)
}

func TestActiveConfig_NoProfile(t *testing.T) {
	db := openTestDB(t)

	_, err := db.ActiveConfig(context.Background())

	assert.ErrorIs(t, err, ErrNoActiveProfile)
}

func TestProfiles_SetActiveAndUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	profiles := db.Profiles()

	home := &Profile{Name: "home", Timezone: "UTC", IsActive: true}
	cabin := &Profile{Name: "cabin", Timezone: "UTC"}
	require.NoError(t, profiles.Create(ctx, home))
	require.NoError(t, profiles.Create(ctx, cabin))

	require.NoError(t, profiles.SetActive(ctx, cabin.ID))
	active, err := profiles.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cabin", active.Name)

	cabin.Timezone = "Europe/Paris"
	require.NoError(t, profiles.Update(ctx, cabin))
	got, err := profiles.Get(ctx, cabin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", got.Timezone)

	assert.ErrorIs(t, profiles.SetActive(ctx, 999), ErrProfileNotFound)
	assert.ErrorIs(t, profiles.Update(ctx, &Profile{ID: 999, Name: "x", Timezone: "UTC"}), ErrProfileNotFound)

	// a failed SetActive rolls back, so cabin is still active
	active, err = profiles.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, cabin.ID, active.ID)
}

func TestProfile_LocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, (&Profile{Timezone: "Not/AZone"}).Location())
	assert.Equal(t, time.UTC, (*Profile)(nil).Location())
}

func TestEndpoints_SaveUpsertsAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Bootstrap(ctx, BootstrapOptions{Timezone: "UTC"}))
	cfg, err := db.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg.Endpoint)

	store := db.Endpoints()
	id := cfg.Profile.ID

	require.NoError(t, store.Save(ctx, &SavedEndpoint{ProfileID: id, Address: "10.0.0.5:8080", Kind: "unknown"}))
	require.NoError(t, store.Save(ctx, &SavedEndpoint{ProfileID: id, Address: "10.0.0.5:80", Kind: "raspberry_pi"}))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:80", got.Address)
	assert.Equal(t, "raspberry_pi", got.Kind)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrEndpointNotFound)
}

func TestSaveActiveEndpoint(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	assert.ErrorIs(t, db.SaveActiveEndpoint(ctx, "http://10.0.0.9:8080", "arduino"), ErrNoActiveProfile)

	require.NoError(t, db.Bootstrap(ctx, BootstrapOptions{Timezone: "UTC"}))
	require.NoError(t, db.SaveActiveEndpoint(ctx, "http://10.0.0.9:8080", "arduino"))

	cfg, err := db.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.9:8080", cfg.DeviceAddress())
	assert.Equal(t, "arduino", cfg.Endpoint.Kind)
}
