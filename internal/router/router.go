// internal/router/router.go
package router

import (
	"fmt"
	"log/slog"

	"github.com/user/clawline/internal/state"
	"github.com/user/clawline/internal/types"
)

// Router resolves triggers and aliases against the persistent stores and
// the in-memory selection Store.
type Router struct {
	triggers  *state.TriggerStore
	aliases   *state.AliasStore
	selection *state.SelectionStore
	store     *Store
}

// New creates a Router. The in-memory store is hydrated from the
// persisted selection immediately.
func New(triggers *state.TriggerStore, aliases *state.AliasStore, selection *state.SelectionStore) (*Router, error) {
	r := &Router{
		triggers:  triggers,
		aliases:   aliases,
		selection: selection,
		store:     NewStore(),
	}
	sel, err := selection.Load()
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	r.store.Hydrate(sel)
	return r, nil
}

// Store exposes the selection store to the presentation layer.
func (r *Router) Store() *Store {
	return r.store
}

// ExecuteTrigger looks up slug and, if found, atomically switches the
// current server and session and stages the trigger's canned message for
// the active chat view. An unknown slug is a silent no-op: it can arise
// from a race with trigger deletion. Executing never mutates the trigger.
func (r *Router) ExecuteTrigger(slug string) error {
	trigger, err := r.triggers.Get(slug)
	if err != nil {
		return fmt.Errorf("execute trigger: %w", err)
	}
	if trigger == nil {
		slog.Debug("trigger not found, ignoring", "slug", slug)
		return nil
	}

	r.store.SetCurrent(trigger.ServerID, trigger.SessionKey)
	r.store.StageMessage(trigger.Message)

	if err := r.selection.Save(state.Selection{
		ServerID:   trigger.ServerID,
		SessionKey: trigger.SessionKey,
	}); err != nil {
		return fmt.Errorf("persist selection: %w", err)
	}

	slog.Info("trigger executed",
		"slug", slug, "server_id", trigger.ServerID, "session_key", trigger.SessionKey)
	return nil
}

// ResolveAlias returns the display name for a session key: the user's
// alias when one is set, otherwise the raw session name from the key.
func (r *Router) ResolveAlias(key types.SessionKey) string {
	if alias, err := r.aliases.Get(key); err == nil && alias != "" {
		return alias
	}
	parts, err := types.ParseSessionKey(key)
	if err != nil {
		return string(key)
	}
	return parts.SessionName
}

// ListTriggers returns all triggers.
func (r *Router) ListTriggers() ([]*types.Trigger, error) {
	return r.triggers.List()
}

// UpsertTrigger creates or replaces a trigger.
func (r *Router) UpsertTrigger(trigger *types.Trigger) error {
	if _, err := types.ParseSessionKey(trigger.SessionKey); err != nil {
		return err
	}
	return r.triggers.Upsert(trigger)
}

// DeleteTrigger removes a trigger by slug.
func (r *Router) DeleteTrigger(slug string) error {
	return r.triggers.Delete(slug)
}
