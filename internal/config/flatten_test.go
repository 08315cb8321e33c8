package config

import (
	"path/filepath"
	"testing"
)

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"log_level": "info",
		"transport": map[string]any{
			"timeout_ms":  10000.0,
			"max_retries": 3.0,
		},
	}

	flat := Flatten(nested)
	if flat["transport.timeout_ms"] != 10000.0 {
		t.Errorf("unexpected flat value: %v", flat["transport.timeout_ms"])
	}
	if flat["log_level"] != "info" {
		t.Errorf("unexpected flat value: %v", flat["log_level"])
	}

	back := Unflatten(flat)
	transport, ok := back["transport"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested transport map, got %T", back["transport"])
	}
	if transport["max_retries"] != 3.0 {
		t.Errorf("round trip lost value: %v", transport["max_retries"])
	}
}

func TestGetSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if err := SetValue(path, "log_level", "debug"); err != nil {
		t.Fatal(err)
	}
	v, err := GetValue(path, "log_level")
	if err != nil {
		t.Fatal(err)
	}
	if v != "debug" {
		t.Errorf("expected debug, got %v", v)
	}

	// Numeric coercion for nested keys.
	if err := SetValue(path, "transport.max_retries", "5"); err != nil {
		t.Fatal(err)
	}
	v, err = GetValue(path, "transport.max_retries")
	if err != nil {
		t.Fatal(err)
	}
	if v != 5.0 {
		t.Errorf("expected 5, got %v (%T)", v, v)
	}
}

func TestGetValueUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	if _, err := GetValue(path, "nonexistent.key"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
