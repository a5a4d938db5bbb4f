package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxParallel)
	assert.Equal(t, 4*time.Hour, cfg.ManifestMaxAge)
	assert.True(t, cfg.ProvisionJava)
	assert.Contains(t, cfg.ManifestURL, "launchermeta.mojang.com")
}

func TestLoadReadsSavedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.MaxParallel = 8
	cfg.JavaPath = "/opt/custom-jdk"
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, loaded.MaxParallel)
	assert.Equal(t, "/opt/custom-jdk", loaded.JavaPath)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MANGO_MAX_PARALLEL", "2")
	t.Setenv("MANGO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxParallel)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()

	cfg.LogLevel = "WARN"
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	cfg.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RootDir = "/data/mango"

	assert.Equal(t, filepath.Join("/data/mango", "versions"), cfg.VersionsDir())
	assert.Equal(t, filepath.Join("/data/mango", "libraries"), cfg.LibrariesDir())
	assert.Equal(t, filepath.Join("/data/mango", "cache.db"), cfg.CacheDBPath())
}
