// internal/state/servers.go
package state

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/clawline/internal/types"
)

// ServerStore is a JSON-file-backed store of configured servers.
type ServerStore struct {
	root string
	mu   sync.RWMutex
}

// NewServerStore creates a server store rooted at the given data directory.
func NewServerStore(root string) *ServerStore {
	return &ServerStore{root: root}
}

func (s *ServerStore) path() string {
	return filepath.Join(s.root, "servers.json")
}

func (s *ServerStore) load() ([]*types.Server, error) {
	var servers []*types.Server
	if _, err := readJSON(s.path(), &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// Add persists a new server. The ID and creation timestamp are assigned
// here if the caller left them empty.
func (s *ServerStore) Add(server *types.Server) error {
	if !types.ValidProviderKind(server.Provider) {
		return fmt.Errorf("unknown provider kind: %s", server.Provider)
	}
	if server.ID == "" {
		server.ID = types.NewServerID()
	}
	if server.CreatedAt.IsZero() {
		server.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	servers, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range servers {
		if existing.ID == server.ID {
			return fmt.Errorf("server already exists: %s", server.ID)
		}
	}
	servers = append(servers, server)
	return writeJSON(s.path(), servers)
}

// Get returns the server with the given ID.
func (s *ServerStore) Get(id types.ServerID) (*types.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	servers, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, server := range servers {
		if server.ID == id {
			return server, nil
		}
	}
	return nil, fmt.Errorf("server not found: %s", id)
}

// List returns all configured servers.
func (s *ServerStore) List() ([]*types.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Remove deletes a server. Session keys referencing it are untouched;
// they simply stop routing.
func (s *ServerStore) Remove(id types.ServerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	servers, err := s.load()
	if err != nil {
		return err
	}
	kept := servers[:0]
	found := false
	for _, server := range servers {
		if server.ID == id {
			found = true
			continue
		}
		kept = append(kept, server)
	}
	if !found {
		return fmt.Errorf("server not found: %s", id)
	}
	return writeJSON(s.path(), kept)
}
