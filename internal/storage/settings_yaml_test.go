package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"auctionpauser/internal/platform"
	"auctionpauser/internal/ui/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(platform.NewDirsAt(t.TempDir(), "auctionpauser"))
	require.NoError(t, err)
	return store
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	settings := preferences.DefaultSettings()
	settings.Threshold = 8 * time.Second
	settings.PollInterval = 500 * time.Millisecond
	settings.CooldownEnabled = true
	settings.Cooldown = 12 * time.Second
	settings.StartEnabled = false
	settings.Notifications = false
	settings.PauseTargets = []string{".draft__navbar__status h6"}

	require.NoError(t, store.Save(settings))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadKeepsDefaultsForInvalidValues(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`
threshold_seconds: 90
poll_interval_ms: 5
retry_delay_seconds: -1
pause_targets: ["  ", ".custom-pause"]
`), 0o644))

	settings, err := store.Load()
	require.NoError(t, err)

	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.Threshold, settings.Threshold)
	assert.Equal(t, defaults.PollInterval, settings.PollInterval)
	assert.Equal(t, defaults.RetryDelay, settings.RetryDelay)
	assert.True(t, settings.StartEnabled)
	assert.True(t, settings.Notifications)
	assert.Equal(t, []string{".custom-pause"}, settings.PauseTargets)
	assert.Equal(t, []string{".custom-pause"}, settings.PauserConfig().Selectors.PauseTargets)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("threshold_seconds: [\n"), 0o644))

	settings, err := store.Load()
	require.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestWatchReloadsOnChange(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan preferences.Settings, 4)
	require.NoError(t, store.Watch(ctx, func(settings preferences.Settings) {
		changes <- settings
	}))

	settings := preferences.DefaultSettings()
	settings.Threshold = 5 * time.Second
	require.NoError(t, store.Save(settings))

	select {
	case got := <-changes:
		assert.Equal(t, 5*time.Second, got.Threshold)
	case <-time.After(3 * time.Second):
		t.Fatal("settings change not observed")
	}
}
