package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Session source kinds
const (
	SourceSQLite = "sqlite"
	SourceHTTP   = "http"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Database  DatabaseConfig  `yaml:"database"`
	Source    SourceConfig    `yaml:"source"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Environment  string        `yaml:"environment"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// WebSocketConfig contains dashboard feed settings
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"ping_interval"`
	ClientBuffer int           `yaml:"client_buffer"`
}

// DatabaseConfig contains SQLite settings
type DatabaseConfig struct {
	Path               string        `yaml:"path"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `yaml:"conn_max_lifetime"`
}

// SourceConfig selects where sessions are read from
type SourceConfig struct {
	Kind    string        `yaml:"kind"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AnalyticsConfig contains engine settings
type AnalyticsConfig struct {
	TimeZone        string        `yaml:"time_zone"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	CatalogFile     string        `yaml:"catalog_file"`
	TrackUnlocks    bool          `yaml:"track_unlocks"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	ShowCaller bool   `yaml:"show_caller"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8100,
			Environment:  "development",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ClientBuffer: 16,
		},
		Database: DatabaseConfig{
			Path:               "data/attentionos.db",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			ConnMaxLifetime:    5 * time.Minute,
		},
		Source: SourceConfig{
			Kind:    SourceSQLite,
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Analytics: AnalyticsConfig{
			TimeZone:        "Local",
			RefreshInterval: 30 * time.Second,
			TrackUnlocks:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvironmentOverrides applies environment-specific settings
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		c.Server.Environment = env
	}

	if url := os.Getenv("ATTENTIONOS_SOURCE_URL"); url != "" {
		c.Source.Kind = SourceHTTP
		c.Source.BaseURL = url
	}

	if tz := os.Getenv("ATTENTIONOS_TZ"); tz != "" {
		c.Analytics.TimeZone = tz
	}

	if c.Server.Environment == "development" && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Server.Port)
	}

	switch c.Source.Kind {
	case SourceSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite source")
		}
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("base_url is required for the http source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Analytics.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}

	return nil
}

// Location resolves the configured time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.TimeZone == "" || c.Analytics.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Analytics.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.Analytics.TimeZone, err)
	}
	return loc, nil
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
