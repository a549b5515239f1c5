// Package config loads codenotes configuration from YAML and CODENOTES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/and161185/codenotes/internal/storage"
)

// AppName names the per-user config directory.
const AppName = "codenotes"

// EnvPrefix is stripped from environment variable names before mapping them to keys.
const EnvPrefix = "CODENOTES_"

const maxConfigFileSize = 1024 * 1024

type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Session SessionConfig `koanf:"session"`
	Auth    AuthConfig    `koanf:"auth"`
}

type StorageConfig struct {
	Driver        string `koanf:"driver"`
	Path          string `koanf:"path"`
	DSN           string `koanf:"dsn"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	KeyPrefix     string `koanf:"key_prefix"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	Mode  string `koanf:"mode"`
}

type SessionConfig struct {
	// SigningKey overrides the generated key stored next to the data.
	SigningKey string        `koanf:"signing_key"`
	TTL        time.Duration `koanf:"ttl"`
}

// AuthConfig tunes argon2id. Zero values use crypto.DefaultParams.
type AuthConfig struct {
	ArgonTime    uint32 `koanf:"argon_time"`
	ArgonMemory  uint32 `koanf:"argon_memory"`
	ArgonThreads uint8  `koanf:"argon_threads"`
}

// Dir is $XDG_CONFIG_HOME/codenotes, or ~/.config/codenotes.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

// Load reads the YAML file at path (DefaultPath when empty; a missing file is fine),
// overlays CODENOTES_* environment variables, then fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	content, err := readConfigFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps CODENOTES_STORAGE_REDIS_ADDR to storage.redis_addr: the first
// underscore separates the section, the rest stay in the field name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return os.ReadFile(path)
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = storage.DriverFile
	}
	if cfg.Storage.Path == "" {
		switch cfg.Storage.Driver {
		case storage.DriverSQLite:
			cfg.Storage.Path = filepath.Join(Dir(), "codenotes.db")
		default:
			cfg.Storage.Path = filepath.Join(Dir(), "data")
		}
	}
	if cfg.Storage.RedisAddr == "" {
		cfg.Storage.RedisAddr = "localhost:6379"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "codenotes:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "development"
	}
}

var drivers = []string{
	storage.DriverMemory,
	storage.DriverFile,
	storage.DriverSQLite,
	storage.DriverPostgres,
	storage.DriverRedis,
}

// Validate checks driver-specific requirements.
func (c *Config) Validate() error {
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("storage.driver %q: want one of %s", c.Storage.Driver, strings.Join(drivers, ", "))
	}
	if c.Storage.Driver == storage.DriverPostgres && c.Storage.DSN == "" {
		return errors.New("storage.dsn is required for the postgres driver")
	}
	if c.Session.TTL < 0 {
		return errors.New("session.ttl must not be negative")
	}
	if c.Log.Mode != "development" && c.Log.Mode != "production" {
		return fmt.Errorf("log.mode %q: want development or production", c.Log.Mode)
	}
	return nil
}
