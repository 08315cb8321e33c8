// internal/state/aliases.go
package state

import (
	"path/filepath"
	"sync"

	"github.com/user/clawline/internal/types"
)

// AliasStore maps session keys to human-friendly display names. Aliases
// never affect identity or routing.
type AliasStore struct {
	root string
	mu   sync.RWMutex
}

// NewAliasStore creates an alias store rooted at the given data directory.
func NewAliasStore(root string) *AliasStore {
	return &AliasStore{root: root}
}

func (s *AliasStore) path() string {
	return filepath.Join(s.root, "aliases.json")
}

func (s *AliasStore) load() (map[types.SessionKey]string, error) {
	aliases := make(map[types.SessionKey]string)
	if _, err := readJSON(s.path(), &aliases); err != nil {
		return nil, err
	}
	return aliases, nil
}

// Set records alias as the display name for key. An empty alias removes
// the mapping.
func (s *AliasStore) Set(key types.SessionKey, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aliases, err := s.load()
	if err != nil {
		return err
	}
	if alias == "" {
		delete(aliases, key)
	} else {
		aliases[key] = alias
	}
	return writeJSON(s.path(), aliases)
}

// Get returns the alias for key, or "" if none is set.
func (s *AliasStore) Get(key types.SessionKey) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	aliases, err := s.load()
	if err != nil {
		return "", err
	}
	return aliases[key], nil
}

// All returns the full alias map.
func (s *AliasStore) All() (map[types.SessionKey]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}
