// internal/supervisor/manager.go
package supervisor

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/user/clawline/internal/types"
)

// Manager runs one Supervisor per server. Supervisors are fully
// independent state machines; nothing is shared between them.
type Manager struct {
	cfg Config

	mu   sync.Mutex
	sups map[types.ServerID]*Supervisor
}

// NewManager creates an empty manager with the given connection tuning.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:  cfg,
		sups: make(map[types.ServerID]*Supervisor),
	}
}

// Connect returns the supervisor for server, starting one if needed.
func (m *Manager) Connect(ctx context.Context, server *types.Server) *Supervisor {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sup, ok := m.sups[server.ID]; ok {
		return sup
	}
	sup := New(server, m.cfg)
	sup.Start(ctx)
	m.sups[server.ID] = sup
	return sup
}

// Get returns the running supervisor for a server, if any.
func (m *Manager) Get(id types.ServerID) (*Supervisor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sup, ok := m.sups[id]
	return sup, ok
}

// Disconnect stops and removes the supervisor for a server.
func (m *Manager) Disconnect(id types.ServerID) error {
	m.mu.Lock()
	sup, ok := m.sups[id]
	delete(m.sups, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("no connection for server: %s", id)
	}
	sup.Stop()
	return nil
}

// CloseAll stops every supervisor concurrently.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sups := make([]*Supervisor, 0, len(m.sups))
	for _, sup := range m.sups {
		sups = append(sups, sup)
	}
	m.sups = make(map[types.ServerID]*Supervisor)
	m.mu.Unlock()

	var g errgroup.Group
	for _, sup := range sups {
		sup := sup
		g.Go(func() error {
			sup.Stop()
			return nil
		})
	}
	_ = g.Wait()
}
