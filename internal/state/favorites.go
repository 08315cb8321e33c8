// internal/state/favorites.go
package state

import (
	"path/filepath"
	"sync"

	"github.com/user/clawline/internal/types"
)

// FavoriteStore keeps an ordered list of favorited session keys.
type FavoriteStore struct {
	root string
	mu   sync.RWMutex
}

// NewFavoriteStore creates a favorite store rooted at the given data directory.
func NewFavoriteStore(root string) *FavoriteStore {
	return &FavoriteStore{root: root}
}

func (s *FavoriteStore) path() string {
	return filepath.Join(s.root, "favorites.json")
}

func (s *FavoriteStore) load() ([]types.SessionKey, error) {
	var favorites []types.SessionKey
	if _, err := readJSON(s.path(), &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// Add appends key to the favorites if not already present.
func (s *FavoriteStore) Add(key types.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites, err := s.load()
	if err != nil {
		return err
	}
	for _, f := range favorites {
		if f == key {
			return nil
		}
	}
	favorites = append(favorites, key)
	return writeJSON(s.path(), favorites)
}

// Remove drops key from the favorites if present.
func (s *FavoriteStore) Remove(key types.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites, err := s.load()
	if err != nil {
		return err
	}
	kept := favorites[:0]
	for _, f := range favorites {
		if f != key {
			kept = append(kept, f)
		}
	}
	return writeJSON(s.path(), kept)
}

// List returns the favorites in their stored order.
func (s *FavoriteStore) List() ([]types.SessionKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}
