// internal/types/keys.go
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedKey is returned when a session key does not have exactly
// three colon-separated segments.
var ErrMalformedKey = errors.New("malformed session key")

// SessionKey identifies one logical conversation as
// "{providerKind}:{serverID}:{sessionName}". The same session name under
// two different servers is a different session key.
type SessionKey string

// SessionKeyParts is the decomposed form of a SessionKey.
type SessionKeyParts struct {
	Provider    ProviderKind
	ServerID    ServerID
	SessionName string
}

// NewSessionKey builds a session key from its three components.
func NewSessionKey(provider ProviderKind, serverID ServerID, sessionName string) SessionKey {
	return SessionKey(strings.Join([]string{string(provider), string(serverID), sessionName}, ":"))
}

// ParseSessionKey splits a key on the fixed 3-part delimiter. Any other
// segment count is a malformed-key error.
func ParseSessionKey(key SessionKey) (SessionKeyParts, error) {
	parts := strings.Split(string(key), ":")
	if len(parts) != 3 {
		return SessionKeyParts{}, fmt.Errorf("%w: %q has %d segments, want 3", ErrMalformedKey, key, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return SessionKeyParts{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedKey, key)
		}
	}
	return SessionKeyParts{
		Provider:    ProviderKind(parts[0]),
		ServerID:    ServerID(parts[1]),
		SessionName: parts[2],
	}, nil
}

// Key is the composed form of the parts.
func (p SessionKeyParts) Key() SessionKey {
	return NewSessionKey(p.Provider, p.ServerID, p.SessionName)
}
