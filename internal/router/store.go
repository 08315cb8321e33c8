// Package router models conversation addressing for the presentation
// layer: which server and session are current, and the one-shot staging
// slot a trigger fills with its canned message. The selection state is an
// explicit, synchronously-readable in-memory store hydrated once from
// disk; callers that need to wait for hydration block on Ready.
package router

import (
	"sync"

	"github.com/user/clawline/internal/state"
	"github.com/user/clawline/internal/types"
)

// Store holds the current server/session pointers and the pending
// outbound message slot. Writes fully replace the prior value.
type Store struct {
	mu             sync.Mutex
	currentServer  types.ServerID
	currentSession types.SessionKey
	pendingMessage string
	hasPending     bool

	ready     chan struct{}
	readyOnce sync.Once
}

// NewStore creates an unhydrated selection store.
func NewStore() *Store {
	return &Store{ready: make(chan struct{})}
}

// Hydrate seeds the store from persisted state and signals readiness.
// Calling it again has no effect on the ready signal.
func (s *Store) Hydrate(sel state.Selection) {
	s.mu.Lock()
	s.currentServer = sel.ServerID
	s.currentSession = sel.SessionKey
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

// Ready is closed once the store has been hydrated.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Current returns the current server and session pointers.
func (s *Store) Current() (types.ServerID, types.SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentServer, s.currentSession
}

// SetCurrent atomically replaces both pointers.
func (s *Store) SetCurrent(server types.ServerID, session types.SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentServer = server
	s.currentSession = session
}

// StageMessage fills the pending outbound message slot, replacing any
// previously staged message.
func (s *Store) StageMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingMessage = text
	s.hasPending = true
}

// TakePendingMessage consumes the staged message. The slot is cleared on
// read so restarts or re-renders never resend it.
func (s *Store) TakePendingMessage() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPending {
		return "", false
	}
	text := s.pendingMessage
	s.pendingMessage = ""
	s.hasPending = false
	return text, true
}
