package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

const configName = "config.toml"

type Config struct {
	RootDir        string        `toml:"root_dir" envconfig:"ROOT_DIR"`
	ManifestURL    string        `toml:"manifest_url" envconfig:"MANIFEST_URL"`
	MaxParallel    int           `toml:"max_parallel" envconfig:"MAX_PARALLEL"`
	AttemptTimeout time.Duration `toml:"attempt_timeout" envconfig:"ATTEMPT_TIMEOUT"`
	ManifestMaxAge time.Duration `toml:"manifest_max_age" envconfig:"MANIFEST_MAX_AGE"`
	JavaPath       string        `toml:"java_path" envconfig:"JAVA_PATH"`
	ProvisionJava  bool          `toml:"provision_java" envconfig:"PROVISION_JAVA"`
	LogLevel       string        `toml:"log_level" envconfig:"LOG_LEVEL"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		RootDir:        filepath.Join(home, ".mango"),
		ManifestURL:    "https://launchermeta.mojang.com/mc/game/version_manifest.json",
		MaxParallel:    4,
		AttemptTimeout: 30 * time.Second,
		ManifestMaxAge: 4 * time.Hour,
		ProvisionJava:  true,
		LogLevel:       "INFO",
	}
}

// Load reads the TOML config from the default root, then applies MANGO_*
// environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(cfg.RootDir, configName)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("mango", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	path := filepath.Join(cfg.RootDir, configName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Directory layout under the root. Everything the launcher writes lives here.

func (c *Config) VersionsDir() string  { return filepath.Join(c.RootDir, "versions") }
func (c *Config) LibrariesDir() string { return filepath.Join(c.RootDir, "libraries") }
func (c *Config) JavaDir() string      { return filepath.Join(c.RootDir, "java") }
func (c *Config) NativesDir() string   { return filepath.Join(c.RootDir, "natives") }
func (c *Config) AssetsDir() string    { return filepath.Join(c.RootDir, "assets") }
func (c *Config) GameDir() string      { return filepath.Join(c.RootDir, "game") }
func (c *Config) ProfilesPath() string { return filepath.Join(c.RootDir, "profiles.json") }
func (c *Config) CacheDBPath() string  { return filepath.Join(c.RootDir, "cache.db") }
