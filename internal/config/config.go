package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	DataDir   string `json:"data_dir"`
	LogLevel  string `json:"log_level"`
	Transport struct {
		TimeoutMs      int `json:"timeout_ms"`
		MaxRetries     int `json:"max_retries"`
		RetryBaseDelay int `json:"retry_base_delay_ms"`
	} `json:"transport"`
	Connection struct {
		DialTimeoutMs  int `json:"dial_timeout_ms"`
		ReconnectMinMs int `json:"reconnect_min_ms"`
		ReconnectMaxMs int `json:"reconnect_max_ms"`
		StableWindowMs int `json:"stable_window_ms"`
	} `json:"connection"`
}

// Duration helpers so callers do not juggle millisecond ints.

func (c *Config) TransportTimeout() time.Duration {
	return time.Duration(c.Transport.TimeoutMs) * time.Millisecond
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Transport.RetryBaseDelay) * time.Millisecond
}

func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.Connection.DialTimeoutMs) * time.Millisecond
}

func (c *Config) ReconnectMin() time.Duration {
	return time.Duration(c.Connection.ReconnectMinMs) * time.Millisecond
}

func (c *Config) ReconnectMax() time.Duration {
	return time.Duration(c.Connection.ReconnectMaxMs) * time.Millisecond
}

func (c *Config) StableWindow() time.Duration {
	return time.Duration(c.Connection.StableWindowMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  filepath.Join(os.Getenv("HOME"), ".clawline"),
		LogLevel: "info",
	}
	cfg.Transport.TimeoutMs = 10000
	cfg.Transport.MaxRetries = 3
	cfg.Transport.RetryBaseDelay = 500
	cfg.Connection.DialTimeoutMs = 10000
	cfg.Connection.ReconnectMinMs = 1000
	cfg.Connection.ReconnectMaxMs = 30000
	cfg.Connection.StableWindowMs = 30000

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if dataDir := os.Getenv("CLAWLINE_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level := os.Getenv("CLAWLINE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
