// internal/state/selection.go
package state

import (
	"path/filepath"
	"sync"

	"github.com/user/clawline/internal/types"
)

// Selection is the persisted "current server / current session" pointer
// pair. A write always fully replaces the prior value.
type Selection struct {
	ServerID   types.ServerID   `json:"server_id"`
	SessionKey types.SessionKey `json:"session_key"`
}

// SelectionStore persists the current selection across restarts.
type SelectionStore struct {
	root string
	mu   sync.Mutex
}

// NewSelectionStore creates a selection store rooted at the given data
// directory.
func NewSelectionStore(root string) *SelectionStore {
	return &SelectionStore{root: root}
}

func (s *SelectionStore) path() string {
	return filepath.Join(s.root, "selection.json")
}

// Load returns the persisted selection, zero-valued if none exists yet.
func (s *SelectionStore) Load() (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sel Selection
	if _, err := readJSON(s.path(), &sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// Save replaces the persisted selection.
func (s *SelectionStore) Save(sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path(), sel)
}
