// Package config loads Ordinex configuration. Values are layered:
// built-in defaults, then ~/.ordinex/config.yaml, then a .env file and
// ORDINEX_* environment variables. Command-line flags are applied last by
// the commands themselves.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/log"
)

// Config is the complete runtime configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Detection DetectionConfig `yaml:"detection"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	Address         string        `yaml:"address"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	CacheSize       int           `yaml:"cache_size"`
}

// ListenAddress returns host:port
func (s ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// StoreConfig configures breakdown history persistence
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig configures tracing
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint,omitempty"`
	SampleRate float64 `yaml:"sample_rate"`
}

// DetectionConfig holds defaults for detection and breakdown
type DetectionConfig struct {
	ForceBreakdown bool `yaml:"force_breakdown"`
}

// Environment variables read by ApplyEnv
const (
	EnvAddress       = "ORDINEX_ADDRESS"
	EnvPort          = "ORDINEX_PORT"
	EnvDBPath        = "ORDINEX_DB_PATH"
	EnvStoreDisabled = "ORDINEX_STORE_DISABLED"
	EnvLogLevel      = "ORDINEX_LOG_LEVEL"
	EnvLogFormat     = "ORDINEX_LOG_FORMAT"
	EnvOTELEndpoint  = "ORDINEX_OTEL_ENDPOINT"
)

// Dir returns the Ordinex home directory (~/.ordinex)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ordinex"), nil
}

// DefaultPath returns the default configuration file path
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration
func Default() Config {
	dbPath := "ordinex.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "ordinex.db")
	}

	return Config{
		Server: ServerConfig{
			Address:         "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			CacheSize:       1024,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    dbPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
	}
}

// Load reads the file at path (the default path when empty), applies .env
// and environment overrides and validates the result. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	_ = godotenv.Load()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path on the defaults
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read config %s", path), err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("parse config %s", path), err).
			WithSuggestion("Check the YAML syntax, or remove the file to fall back to defaults")
	}

	return &cfg, nil
}

// Save writes cfg to path as YAML
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create config directory", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write config %s", path), err)
	}

	return nil
}

// ApplyEnv overrides fields from ORDINEX_* variables looked up with getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvAddress)); v != "" {
		c.Server.Address = v
	}
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(strings.TrimPrefix(v, ":"))
		if err != nil {
			return errors.NewConfigInvalidError(fmt.Sprintf("%s=%q is not a port number", EnvPort, v))
		}
		c.Server.Port = port
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		c.Store.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvStoreDisabled)); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewConfigInvalidError(fmt.Sprintf("%s=%q is not a boolean", EnvStoreDisabled, v))
		}
		c.Store.Enabled = !disabled
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(getenv(EnvOTELEndpoint)); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
	return nil
}

// Validate rejects configurations the process cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewConfigInvalidError(fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.CacheSize < 1 {
		return errors.NewConfigInvalidError("server.cache_size must be at least 1")
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.idle_timeout", c.Server.IdleTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			return errors.NewConfigInvalidError(fmt.Sprintf("%s must be positive", t.name))
		}
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return errors.NewConfigInvalidError("store.path is required when the store is enabled")
	}
	if _, err := log.ConfigFromStrings(c.Log.Level, c.Log.Format); err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("telemetry.sample_rate %v must be within [0, 1]", c.Telemetry.SampleRate))
	}
	return nil
}

// Keys lists the dotted keys accepted by Get and Set
func Keys() []string {
	return []string{
		"server.address", "server.port", "server.cache_size",
		"store.enabled", "store.path",
		"log.level", "log.format",
		"telemetry.enabled", "telemetry.endpoint", "telemetry.sample_rate",
		"detection.force_breakdown",
	}
}

// Get returns the value of a dotted key as a string
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "server.address":
		return c.Server.Address, nil
	case "server.port":
		return strconv.Itoa(c.Server.Port), nil
	case "server.cache_size":
		return strconv.Itoa(c.Server.CacheSize), nil
	case "store.enabled":
		return strconv.FormatBool(c.Store.Enabled), nil
	case "store.path":
		return c.Store.Path, nil
	case "log.level":
		return c.Log.Level, nil
	case "log.format":
		return c.Log.Format, nil
	case "telemetry.enabled":
		return strconv.FormatBool(c.Telemetry.Enabled), nil
	case "telemetry.endpoint":
		return c.Telemetry.Endpoint, nil
	case "telemetry.sample_rate":
		return strconv.FormatFloat(c.Telemetry.SampleRate, 'g', -1, 64), nil
	case "detection.force_breakdown":
		return strconv.FormatBool(c.Detection.ForceBreakdown), nil
	default:
		return "", unknownKey(key)
	}
}

// Set assigns a dotted key from its string form. The result is not
// validated; call Validate before saving.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "server.address":
		c.Server.Address = value
	case "server.port":
		c.Server.Port, err = strconv.Atoi(value)
	case "server.cache_size":
		c.Server.CacheSize, err = strconv.Atoi(value)
	case "store.enabled":
		c.Store.Enabled, err = strconv.ParseBool(value)
	case "store.path":
		c.Store.Path = value
	case "log.level":
		c.Log.Level = value
	case "log.format":
		c.Log.Format = value
	case "telemetry.enabled":
		c.Telemetry.Enabled, err = strconv.ParseBool(value)
	case "telemetry.endpoint":
		c.Telemetry.Endpoint = value
	case "telemetry.sample_rate":
		c.Telemetry.SampleRate, err = strconv.ParseFloat(value, 64)
	case "detection.force_breakdown":
		c.Detection.ForceBreakdown, err = strconv.ParseBool(value)
	default:
		return unknownKey(key)
	}
	if err != nil {
		return errors.NewConfigInvalidError(fmt.Sprintf("%s: %v", key, err))
	}
	return nil
}

func unknownKey(key string) error {
	return errors.NewConfigInvalidError(fmt.Sprintf("unknown key %q", key)).
		WithSuggestion("Valid keys: " + strings.Join(Keys(), ", "))
}
