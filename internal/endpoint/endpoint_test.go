package endpoint

import (
	"testing"
)

func TestToConnectionForm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ws://example.com/ws", "ws://example.com/ws"},
		{"wss://example.com/ws", "wss://example.com/ws"},
		{"http://example.com/ws", "ws://example.com/ws"},
		{"https://example.com:8443/gw?x=1", "wss://example.com:8443/gw?x=1"},
		{"example.com:9090/ws", "wss://example.com:9090/ws"},
		{"example.com", "wss://example.com"},
	}
	for _, tt := range tests {
		if got := ToConnectionForm(tt.in); got != tt.want {
			t.Errorf("ToConnectionForm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToRequestForm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://example.com/ws", "http://example.com/ws"},
		{"https://example.com/ws", "https://example.com/ws"},
		{"ws://example.com/ws", "http://example.com/ws"},
		{"wss://example.com:8443/gw?x=1", "https://example.com:8443/gw?x=1"},
		{"example.com:9090/ws", "https://example.com:9090/ws"},
	}
	for _, tt := range tests {
		if got := ToRequestForm(tt.in); got != tt.want {
			t.Errorf("ToRequestForm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	endpoints := []string{
		"ws://example.com/ws",
		"wss://gw.example.com:18789/ws/gateway",
		"http://localhost:8080",
		"https://example.com/path?q=1",
		"example.com:9090/ws",
	}
	for _, e := range endpoints {
		if got := ToRequestForm(ToConnectionForm(e)); got != ToRequestForm(e) {
			t.Errorf("request round trip broken for %q: %q != %q", e, got, ToRequestForm(e))
		}
		if got := ToConnectionForm(ToRequestForm(e)); got != ToConnectionForm(e) {
			t.Errorf("connection round trip broken for %q: %q != %q", e, got, ToConnectionForm(e))
		}
	}
}

func TestUnknownSchemePassesThrough(t *testing.T) {
	const in = "ftp://example.com/x"
	if got := ToConnectionForm(in); got != in {
		t.Errorf("expected pass-through, got %q", got)
	}
	if got := ToRequestForm(in); got != in {
		t.Errorf("expected pass-through, got %q", got)
	}
}
