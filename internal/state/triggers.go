// internal/state/triggers.go
package state

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/user/clawline/internal/types"
)

// TriggerStore is a JSON-file-backed store of named trigger shortcuts,
// keyed by slug.
type TriggerStore struct {
	root string
	mu   sync.RWMutex
}

// NewTriggerStore creates a trigger store rooted at the given data directory.
func NewTriggerStore(root string) *TriggerStore {
	return &TriggerStore{root: root}
}

func (s *TriggerStore) path() string {
	return filepath.Join(s.root, "triggers.json")
}

func (s *TriggerStore) load() (map[string]*types.Trigger, error) {
	triggers := make(map[string]*types.Trigger)
	if _, err := readJSON(s.path(), &triggers); err != nil {
		return nil, err
	}
	return triggers, nil
}

// Upsert creates or replaces the trigger for its slug.
func (s *TriggerStore) Upsert(trigger *types.Trigger) error {
	if trigger.Slug == "" {
		return fmt.Errorf("trigger slug is required")
	}
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	triggers, err := s.load()
	if err != nil {
		return err
	}
	if existing, ok := triggers[trigger.Slug]; ok {
		trigger.CreatedAt = existing.CreatedAt
	}
	triggers[trigger.Slug] = trigger
	return writeJSON(s.path(), triggers)
}

// Get returns the trigger for slug, or nil if it does not exist. Absence
// is not an error: triggers race with their own deletion.
func (s *TriggerStore) Get(slug string) (*types.Trigger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	triggers, err := s.load()
	if err != nil {
		return nil, err
	}
	return triggers[slug], nil
}

// List returns all triggers sorted by slug.
func (s *TriggerStore) List() ([]*types.Trigger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	triggers, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Trigger, 0, len(triggers))
	for _, t := range triggers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// Delete removes the trigger for slug if present.
func (s *TriggerStore) Delete(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	triggers, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := triggers[slug]; !ok {
		return nil
	}
	delete(triggers, slug)
	return writeJSON(s.path(), triggers)
}
