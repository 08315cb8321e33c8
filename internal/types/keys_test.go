package types

import (
	"errors"
	"testing"
)

func TestParseSessionKey(t *testing.T) {
	key := NewSessionKey(ProviderGateway, "srv-1", "main")
	if key != "gateway:srv-1:main" {
		t.Fatalf("unexpected key: %s", key)
	}

	parts, err := ParseSessionKey(key)
	if err != nil {
		t.Fatal(err)
	}
	if parts.Provider != ProviderGateway {
		t.Errorf("expected provider gateway, got %s", parts.Provider)
	}
	if parts.ServerID != "srv-1" {
		t.Errorf("expected server srv-1, got %s", parts.ServerID)
	}
	if parts.SessionName != "main" {
		t.Errorf("expected session main, got %s", parts.SessionName)
	}
	if parts.Key() != key {
		t.Errorf("round trip mismatch: %s", parts.Key())
	}
}

func TestParseSessionKeyMalformed(t *testing.T) {
	for _, key := range []SessionKey{
		"",
		"gateway",
		"gateway:srv-1",
		"gateway:srv-1:main:extra",
		"gateway::main",
	} {
		if _, err := ParseSessionKey(key); !errors.Is(err, ErrMalformedKey) {
			t.Errorf("key %q: expected ErrMalformedKey, got %v", key, err)
		}
	}
}

func TestSameNameDifferentServer(t *testing.T) {
	a := NewSessionKey(ProviderGateway, "srv-a", "main")
	b := NewSessionKey(ProviderGateway, "srv-b", "main")
	if a == b {
		t.Error("same session name under two servers must be distinct keys")
	}
}

func TestValidProviderKind(t *testing.T) {
	if !ValidProviderKind(ProviderEcho) {
		t.Error("echo should be valid")
	}
	if ValidProviderKind("smoke-signal") {
		t.Error("unknown kind should be invalid")
	}
}
