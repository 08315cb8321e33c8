// internal/types/models.go
package types

import (
	"time"
)

// ProviderKind enumerates the kinds of backends a server can point at.
type ProviderKind string

const (
	// ProviderGateway speaks the agent gateway duplex protocol.
	ProviderGateway ProviderKind = "gateway"
	// ProviderLocal is a locally hosted inference endpoint.
	ProviderLocal ProviderKind = "local"
	// ProviderVendor is a hosted vendor API.
	ProviderVendor ProviderKind = "vendor"
	// ProviderEcho is the demo backend that echoes input.
	ProviderEcho ProviderKind = "echo"
	// ProviderDevice runs on-device.
	ProviderDevice ProviderKind = "device"
)

// ValidProviderKind reports whether k is a known provider kind.
func ValidProviderKind(k ProviderKind) bool {
	switch k {
	case ProviderGateway, ProviderLocal, ProviderVendor, ProviderEcho, ProviderDevice:
		return true
	}
	return false
}

// Server is a configured remote endpoint the user has added. Removing a
// server does not invalidate session keys that reference it; stale
// sessions simply fail to route.
type Server struct {
	ID        ServerID     `json:"id"`
	Name      string       `json:"name"`
	Endpoint  string       `json:"endpoint"`
	ClientID  string       `json:"client_id,omitempty"`
	Provider  ProviderKind `json:"provider"`
	Model     string       `json:"model,omitempty"`
	Token     string       `json:"token,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Trigger is a saved shortcut: executing it switches the current session
// and stages a canned message. Execution never mutates the trigger.
type Trigger struct {
	Slug       string     `json:"slug"`
	ServerID   ServerID   `json:"server_id"`
	SessionKey SessionKey `json:"session_key"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TranscriptEntry is one persisted message of a session's history.
type TranscriptEntry struct {
	Role string    `json:"role"` // "user" or "agent"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}
