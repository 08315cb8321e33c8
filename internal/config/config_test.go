package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.Transport.MaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Transport.MaxRetries)
	}
	if cfg.TransportTimeout() != 10*time.Second {
		t.Errorf("unexpected transport timeout: %v", cfg.TransportTimeout())
	}

	// Defaults were written to disk.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected defaults written: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	custom := map[string]any{
		"log_level": "debug",
		"connection": map[string]any{
			"reconnect_min_ms": 250,
		},
	}
	data, _ := json.Marshal(custom)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %s", cfg.LogLevel)
	}
	if cfg.ReconnectMin() != 250*time.Millisecond {
		t.Errorf("unexpected reconnect min: %v", cfg.ReconnectMin())
	}
	// Untouched fields keep defaults.
	if cfg.Transport.TimeoutMs != 10000 {
		t.Errorf("expected default timeout, got %d", cfg.Transport.TimeoutMs)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("CLAWLINE_DATA_DIR", "/tmp/claw-test")
	t.Setenv("CLAWLINE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/tmp/claw-test" {
		t.Errorf("env data dir not applied: %s", cfg.DataDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("env log level not applied: %s", cfg.LogLevel)
	}
}
