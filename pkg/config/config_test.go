package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults, got %v", err)
	}
	if cfg.Server.Port != 8100 || cfg.Source.Kind != SourceSQLite {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	// The tracking backend serves /api/sessions on 8000
	if cfg.Source.BaseURL != "http://localhost:8000" {
		t.Errorf("Unexpected default source URL %s", cfg.Source.BaseURL)
	}
	if cfg.GetAddr() != "localhost:8100" {
		t.Errorf("Unexpected address %s", cfg.GetAddr())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
source:
  kind: http
  base_url: http://127.0.0.1:8000
  timeout: 3s
analytics:
  time_zone: UTC
  refresh_interval: 1m
logging:
  level: warn
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected default host to survive, got %s", cfg.Server.Host)
	}
	if cfg.Source.Kind != SourceHTTP || cfg.Source.Timeout != 3*time.Second {
		t.Errorf("Unexpected source config: %+v", cfg.Source)
	}
	if cfg.Analytics.RefreshInterval != time.Minute {
		t.Errorf("Expected 1m refresh, got %v", cfg.Analytics.RefreshInterval)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ATTENTIONOS_SOURCE_URL", "http://tracker:8000")
	t.Setenv("ATTENTIONOS_TZ", "UTC")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetAddr() != "0.0.0.0:7777" {
		t.Errorf("Unexpected address %s", cfg.GetAddr())
	}
	if cfg.Server.Environment != "production" {
		t.Errorf("Expected production, got %s", cfg.Server.Environment)
	}
	if cfg.Source.Kind != SourceHTTP || cfg.Source.BaseURL != "http://tracker:8000" {
		t.Errorf("Expected http source override, got %+v", cfg.Source)
	}
	if cfg.Analytics.TimeZone != "UTC" {
		t.Errorf("Expected UTC, got %s", cfg.Analytics.TimeZone)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"http without url", "source:\n  kind: http\n  base_url: \"\"\n"},
		{"unknown source", "source:\n  kind: carrier_pigeon\n"},
		{"bad time zone", "analytics:\n  time_zone: Mars/Olympus_Mons\n"},
		{"zero refresh", "analytics:\n  refresh_interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "server: [unterminated")); err == nil {
		t.Error("Expected a parse error")
	}
}
