package router

import (
	"testing"

	"github.com/user/clawline/internal/state"
	"github.com/user/clawline/internal/types"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	dir := t.TempDir()
	r, err := New(
		state.NewTriggerStore(dir),
		state.NewAliasStore(dir),
		state.NewSelectionStore(dir),
	)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestStoreReadyAfterHydration(t *testing.T) {
	r := newTestRouter(t)
	select {
	case <-r.Store().Ready():
	default:
		t.Fatal("store should be ready immediately after New")
	}
}

func TestExecuteTrigger(t *testing.T) {
	r := newTestRouter(t)
	key := types.SessionKey("gateway:srv-1:standup")
	if err := r.UpsertTrigger(&types.Trigger{
		Slug:       "standup",
		ServerID:   "srv-1",
		SessionKey: key,
		Message:    "summarize yesterday",
	}); err != nil {
		t.Fatal(err)
	}

	if err := r.ExecuteTrigger("standup"); err != nil {
		t.Fatal(err)
	}

	server, session := r.Store().Current()
	if server != "srv-1" || session != key {
		t.Errorf("unexpected selection: %s, %s", server, session)
	}

	msg, ok := r.Store().TakePendingMessage()
	if !ok || msg != "summarize yesterday" {
		t.Errorf("expected staged message, got %q, %v", msg, ok)
	}

	// Staging is one-shot: a second read returns empty.
	if msg, ok := r.Store().TakePendingMessage(); ok {
		t.Errorf("pending slot must be cleared on read, got %q", msg)
	}

	// Executing did not mutate the trigger.
	trigger, err := r.triggers.Get("standup")
	if err != nil || trigger == nil {
		t.Fatal(err)
	}
	if trigger.Message != "summarize yesterday" {
		t.Errorf("trigger mutated by execution: %+v", trigger)
	}
}

func TestExecuteUnknownTriggerIsNoOp(t *testing.T) {
	r := newTestRouter(t)
	r.Store().SetCurrent("srv-keep", "gateway:srv-keep:main")

	if err := r.ExecuteTrigger("deleted-long-ago"); err != nil {
		t.Fatalf("unknown trigger must be silent, got %v", err)
	}

	server, _ := r.Store().Current()
	if server != "srv-keep" {
		t.Error("unknown trigger must not change selection")
	}
	if _, ok := r.Store().TakePendingMessage(); ok {
		t.Error("unknown trigger must not stage a message")
	}
}

func TestStagedMessageReplaced(t *testing.T) {
	s := NewStore()
	s.StageMessage("first")
	s.StageMessage("second")
	msg, ok := s.TakePendingMessage()
	if !ok || msg != "second" {
		t.Errorf("a new write fully replaces the slot, got %q", msg)
	}
}

func TestResolveAlias(t *testing.T) {
	r := newTestRouter(t)
	key := types.SessionKey("gateway:srv-1:main")

	if got := r.ResolveAlias(key); got != "main" {
		t.Errorf("expected raw session name fallback, got %q", got)
	}

	if err := r.aliases.Set(key, "Kitchen"); err != nil {
		t.Fatal(err)
	}
	if got := r.ResolveAlias(key); got != "Kitchen" {
		t.Errorf("expected alias, got %q", got)
	}
}

func TestUpsertTriggerRejectsMalformedKey(t *testing.T) {
	r := newTestRouter(t)
	err := r.UpsertTrigger(&types.Trigger{
		Slug:       "bad",
		SessionKey: "not-a-key",
		Message:    "x",
	})
	if err == nil {
		t.Fatal("expected malformed key error")
	}
}

func TestSelectionPersistsAcrossRouters(t *testing.T) {
	dir := t.TempDir()
	triggers := state.NewTriggerStore(dir)
	aliases := state.NewAliasStore(dir)
	selection := state.NewSelectionStore(dir)

	r1, err := New(triggers, aliases, selection)
	if err != nil {
		t.Fatal(err)
	}
	key := types.SessionKey("gateway:srv-1:kitchen")
	if err := r1.UpsertTrigger(&types.Trigger{
		Slug: "k", ServerID: "srv-1", SessionKey: key, Message: "hi",
	}); err != nil {
		t.Fatal(err)
	}
	if err := r1.ExecuteTrigger("k"); err != nil {
		t.Fatal(err)
	}

	// A fresh router hydrates the persisted selection but no staged
	// message: the pending slot never survives a restart.
	r2, err := New(triggers, aliases, selection)
	if err != nil {
		t.Fatal(err)
	}
	server, session := r2.Store().Current()
	if server != "srv-1" || session != key {
		t.Errorf("selection not restored: %s, %s", server, session)
	}
	if _, ok := r2.Store().TakePendingMessage(); ok {
		t.Error("staged message must not survive restart")
	}
}
