package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("POINTBLANK_ADDR", ":9090")
	t.Setenv("POINTBLANK_TICK_MS", "50")
	t.Setenv("POINTBLANK_RESULTS_DELAY_MS", "0")
	t.Setenv("POINTBLANK_SNAPSHOT_EVERY", "5")
	t.Setenv("POINTBLANK_IDLE_TIMEOUT", "90s")
	t.Setenv("POINTBLANK_SHOOT_RATE", "2.5")
	t.Setenv("POINTBLANK_SHOOT_BURST", "2")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Zero(t, cfg.ResultsDelay)
	assert.Equal(t, 5, cfg.SnapshotEvery)
	assert.Equal(t, 90*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 2.5, cfg.ShootRate)
	assert.Equal(t, 2, cfg.ShootBurst)
}

func TestLoadConfigEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POINTBLANK_PUBLIC_URL=https://party.example\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("POINTBLANK_PUBLIC_URL") })

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://party.example", cfg.PublicURL)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("POINTBLANK_TICK_MS", "0")
	t.Setenv("POINTBLANK_SHOOT_BURST", "many")
	t.Setenv("POINTBLANK_IDLE_TIMEOUT", "soon")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "POINTBLANK_TICK_MS")
	assert.ErrorContains(t, err, "POINTBLANK_SHOOT_BURST")
	assert.ErrorContains(t, err, "POINTBLANK_IDLE_TIMEOUT")
}
