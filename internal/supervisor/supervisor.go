// Package supervisor owns the live connection to a gateway server and
// serializes user turns per session. Each server runs one connection
// state machine (Disconnected → Connecting → Connected) with backoff
// driven reconnects; within a connection every session is an independent
// FIFO lane with at most one turn in flight at a time.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/user/clawline/internal/endpoint"
	"github.com/user/clawline/internal/stream"
	"github.com/user/clawline/internal/types"
)

// Status is the connection state of one server.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Config tunes connection behavior.
type Config struct {
	DialTimeout  time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// StableWindow is how long a connection must stay up before the
	// reconnect delay resets to ReconnectMin.
	StableWindow time.Duration
}

// DefaultConfig returns the tuning used by the CLI.
func DefaultConfig() Config {
	return Config{
		DialTimeout:  10 * time.Second,
		ReconnectMin: 1 * time.Second,
		ReconnectMax: 30 * time.Second,
		StableWindow: 30 * time.Second,
	}
}

// laneState is the per-session sub-state layered on the connection.
type laneState int

const (
	laneIdle laneState = iota
	laneSending
	laneStreaming
	laneFailed
)

// lane is one session's turn queue. The active turn's stream buffer is
// the raw concatenation of every chunk received so far; it is discarded
// when the turn reaches a terminal state.
type lane struct {
	state  laneState
	active *Turn
	queue  []*Turn
	buf    strings.Builder
}

// StatusFunc observes connection status changes.
type StatusFunc func(types.ServerID, Status)

// VisibleFunc observes post-reducer visible text per session.
type VisibleFunc func(types.SessionKey, string)

// Supervisor drives one server's connection and its session lanes.
type Supervisor struct {
	server *types.Server
	cfg    Config

	mu          sync.Mutex
	status      Status
	conn        *wsConn
	lanes       map[types.SessionKey]*lane
	statusSubs  []StatusFunc
	visibleSubs []VisibleFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Supervisor for the given server. Start must be called
// before turns dispatch; turns submitted earlier are queued.
func New(server *types.Server, cfg Config) *Supervisor {
	return &Supervisor{
		server: server,
		cfg:    cfg,
		status: StatusDisconnected,
		lanes:  make(map[types.SessionKey]*lane),
	}
}

// Server returns the server this supervisor drives.
func (s *Supervisor) Server() *types.Server {
	return s.server
}

// Status returns the current connection status.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// OnStatus subscribes to connection status changes.
func (s *Supervisor) OnStatus(fn StatusFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusSubs = append(s.statusSubs, fn)
}

// OnVisible subscribes to per-session visible text updates.
func (s *Supervisor) OnVisible(fn VisibleFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibleSubs = append(s.visibleSubs, fn)
}

// Start launches the connection loop.
func (s *Supervisor) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
}

// Stop tears the connection down and waits for the loop to exit. Turns
// still in flight fail with ErrDisconnected.
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.close()
	}
	s.wg.Wait()
}

// run is the connection state machine: dial, serve reads until the
// connection drops, back off, repeat. The backoff delay doubles up to
// ReconnectMax and resets to ReconnectMin after a sustained connection.
func (s *Supervisor) run() {
	defer s.wg.Done()

	delay := s.cfg.ReconnectMin
	for {
		if s.ctx.Err() != nil {
			s.setStatus(StatusDisconnected)
			return
		}

		s.setStatus(StatusConnecting)
		url := endpoint.ToConnectionForm(s.server.Endpoint)
		conn, err := dialGateway(s.ctx, url, s.server.Token, s.cfg.DialTimeout)
		if err != nil {
			slog.Warn("gateway dial failed",
				"server_id", s.server.ID, "url", url, "retry_in", delay, "error", err)
			s.setStatus(StatusDisconnected)
			if !s.sleep(delay) {
				return
			}
			delay = nextDelay(delay, s.cfg.ReconnectMax)
			continue
		}

		connectedAt := time.Now()
		s.attach(conn)
		s.setStatus(StatusConnected)
		slog.Info("gateway connected", "server_id", s.server.ID, "url", url)

		readErr := s.readLoop(conn)
		s.detach(conn)
		s.setStatus(StatusDisconnected)

		if s.ctx.Err() != nil {
			return
		}
		slog.Warn("gateway connection lost",
			"server_id", s.server.ID, "error", readErr)

		if time.Since(connectedAt) >= s.cfg.StableWindow {
			delay = s.cfg.ReconnectMin
		}
		if !s.sleep(delay) {
			return
		}
		delay = nextDelay(delay, s.cfg.ReconnectMax)
	}
}

func nextDelay(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}

// sleep waits for d or until the supervisor stops. Returns false on stop.
func (s *Supervisor) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Supervisor) setStatus(status Status) {
	s.mu.Lock()
	if s.status == status {
		s.mu.Unlock()
		return
	}
	s.status = status
	subs := make([]StatusFunc, len(s.statusSubs))
	copy(subs, s.statusSubs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(s.server.ID, status)
	}
}

// attach installs the new connection and redispatches the head of every
// idle lane's queue: queued turns survive reconnects in FIFO order.
func (s *Supervisor) attach(conn *wsConn) {
	s.mu.Lock()
	s.conn = conn
	var dispatch []*Turn
	for _, ln := range s.lanes {
		if ln.state == laneIdle && len(ln.queue) > 0 {
			dispatch = append(dispatch, s.popLocked(ln))
		}
	}
	s.mu.Unlock()

	for _, turn := range dispatch {
		s.send(conn, turn)
	}
}

// detach fails every in-flight turn with ErrDisconnected. Queued turns
// are untouched; user intent is delivered at most once, so nothing is
// silently resubmitted.
func (s *Supervisor) detach(conn *wsConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn = nil
	}
	for key, ln := range s.lanes {
		if ln.active != nil {
			slog.Debug("failing in-flight turn on disconnect",
				"session_key", key, "turn_id", ln.active.ID)
			s.failActiveLocked(ln, ErrDisconnected)
		}
	}
}

// readLoop serves inbound frames until the connection errors out.
func (s *Supervisor) readLoop(conn *wsConn) error {
	for {
		f, err := conn.readFrame()
		if err != nil {
			return err
		}
		switch f.Type {
		case frameChunk:
			s.handleChunk(f)
		case frameEnd:
			s.handleEnd(conn, f)
		default:
			slog.Debug("unknown frame type ignored", "type", f.Type)
		}
	}
}

// SubmitTurn accepts one user turn for the session. An idle session
// dispatches immediately when connected; otherwise the turn joins the
// session's FIFO queue. At most one turn is in flight per session.
func (s *Supervisor) SubmitTurn(key types.SessionKey, text string) (*Turn, error) {
	if _, err := types.ParseSessionKey(key); err != nil {
		return nil, err
	}

	turn := newTurn(s, key, text)

	s.mu.Lock()
	ln := s.laneLocked(key)
	conn := s.conn
	if ln.state == laneIdle && s.status == StatusConnected && conn != nil {
		s.markSendingLocked(ln, turn)
		s.mu.Unlock()
		s.send(conn, turn)
		return turn, nil
	}
	ln.queue = append(ln.queue, turn)
	s.mu.Unlock()
	return turn, nil
}

func (s *Supervisor) laneLocked(key types.SessionKey) *lane {
	ln, ok := s.lanes[key]
	if !ok {
		ln = &lane{}
		s.lanes[key] = ln
	}
	return ln
}

func (s *Supervisor) markSendingLocked(ln *lane, turn *Turn) {
	ln.state = laneSending
	ln.active = turn
	ln.buf.Reset()
}

// popLocked removes and marks the lane's next queued turn as sending.
func (s *Supervisor) popLocked(ln *lane) *Turn {
	turn := ln.queue[0]
	ln.queue = ln.queue[1:]
	s.markSendingLocked(ln, turn)
	return turn
}

// send writes a turn frame outside the supervisor lock. A write failure
// means the connection is going down; the turn fails as disconnected and
// the read loop handles the rest.
func (s *Supervisor) send(conn *wsConn, turn *Turn) {
	err := conn.writeFrame(frame{
		Type:       frameTurn,
		SessionKey: turn.SessionKey,
		TurnID:     turn.ID,
		Text:       turn.Text,
	})
	if err != nil {
		slog.Warn("turn dispatch failed",
			"session_key", turn.SessionKey, "turn_id", turn.ID, "error", err)
		s.mu.Lock()
		ln := s.laneLocked(turn.SessionKey)
		if ln.active == turn {
			s.failActiveLocked(ln, ErrDisconnected)
		}
		s.mu.Unlock()
		return
	}
	slog.Debug("turn dispatched", "session_key", turn.SessionKey, "turn_id", turn.ID)
}

// handleChunk appends to the active turn's stream buffer and pushes the
// reduced visible text.
func (s *Supervisor) handleChunk(f frame) {
	s.mu.Lock()
	ln, ok := s.lanes[f.SessionKey]
	if !ok || ln.active == nil || ln.active.ID != f.TurnID {
		// Late chunk for a finished or canceled turn.
		s.mu.Unlock()
		return
	}
	ln.state = laneStreaming
	ln.buf.WriteString(f.Text)
	visible := stream.ReduceVisible(ln.buf.String())
	// Push under the lock: a concurrent Cancel closes the updates
	// channel, and both finish and push must serialize against that.
	ln.active.pushVisible(visible)
	subs := make([]VisibleFunc, len(s.visibleSubs))
	copy(subs, s.visibleSubs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(f.SessionKey, visible)
	}
}

// handleEnd finishes the active turn and drains the next queued one.
func (s *Supervisor) handleEnd(conn *wsConn, f frame) {
	s.mu.Lock()
	ln, ok := s.lanes[f.SessionKey]
	if !ok || ln.active == nil || ln.active.ID != f.TurnID {
		s.mu.Unlock()
		return
	}

	turn := ln.active
	var next *Turn
	if f.Status == endDone {
		turn.finish(stream.ReduceVisible(ln.buf.String()), nil)
		ln.active = nil
		ln.buf.Reset()
		ln.state = laneIdle
		if len(ln.queue) > 0 {
			next = s.popLocked(ln)
		}
	} else {
		reason := f.Reason
		if reason == "" {
			reason = "unspecified"
		}
		s.failActiveLocked(ln, fmt.Errorf("gateway reported turn error: %s", reason))
	}
	s.mu.Unlock()

	if next != nil {
		s.send(conn, next)
	}
}

// failActiveLocked fails the active turn with err, leaving the lane in
// Failed until the caller acknowledges.
func (s *Supervisor) failActiveLocked(ln *lane, err error) {
	// ln.active stays set so Ack can match the failed turn.
	ln.active.finish(stream.ReduceVisible(ln.buf.String()), err)
	ln.buf.Reset()
	ln.state = laneFailed
}

// ackTurn acknowledges a failed turn: the lane returns to Idle and the
// next queued turn dispatches if connected.
func (s *Supervisor) ackTurn(t *Turn) {
	s.mu.Lock()
	ln, ok := s.lanes[t.SessionKey]
	if !ok || ln.state != laneFailed || ln.active != t {
		s.mu.Unlock()
		return
	}
	ln.active = nil
	ln.state = laneIdle

	var next *Turn
	conn := s.conn
	if s.status == StatusConnected && conn != nil && len(ln.queue) > 0 {
		next = s.popLocked(ln)
	}
	s.mu.Unlock()

	if next != nil {
		s.send(conn, next)
	}
}

// cancelTurn removes a queued turn, or closes the stream of the in-flight
// one. Canceling never triggers a reconnect, and a canceled in-flight
// turn releases its lane immediately (the caller asked for it; there is
// nothing to acknowledge).
func (s *Supervisor) cancelTurn(t *Turn) {
	s.mu.Lock()
	ln, ok := s.lanes[t.SessionKey]
	if !ok {
		s.mu.Unlock()
		return
	}

	// Queued: drop from the FIFO.
	for i, queued := range ln.queue {
		if queued == t {
			ln.queue = append(ln.queue[:i], ln.queue[i+1:]...)
			t.finish("", ErrTurnCanceled)
			s.mu.Unlock()
			return
		}
	}

	if ln.active != t {
		s.mu.Unlock()
		return
	}
	if ln.state == laneFailed {
		// The turn already reached a terminal state; the lane frees via
		// Ack, and finishing it again would close its channels twice.
		s.mu.Unlock()
		return
	}

	t.finish(stream.ReduceVisible(ln.buf.String()), ErrTurnCanceled)
	ln.active = nil
	ln.buf.Reset()
	ln.state = laneIdle

	conn := s.conn
	var next *Turn
	if s.status == StatusConnected && conn != nil && len(ln.queue) > 0 {
		next = s.popLocked(ln)
	}
	s.mu.Unlock()

	if conn != nil {
		// Best effort: tell the gateway to stop streaming this turn.
		_ = conn.writeFrame(frame{
			Type:       frameCancel,
			SessionKey: t.SessionKey,
			TurnID:     t.ID,
		})
	}
	if next != nil {
		s.send(conn, next)
	}
}

// QueuedTurns reports how many turns are waiting behind the in-flight one.
func (s *Supervisor) QueuedTurns(key types.SessionKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ln, ok := s.lanes[key]
	if !ok {
		return 0
	}
	return len(ln.queue)
}
