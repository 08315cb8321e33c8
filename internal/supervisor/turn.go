// internal/supervisor/turn.go
package supervisor

import (
	"errors"
	"strings"
	"time"

	"github.com/user/clawline/internal/types"
)

// ErrDisconnected marks a turn that was in flight when its connection
// dropped. The supervisor never resubmits such a turn; the caller decides.
var ErrDisconnected = errors.New("connection dropped mid-turn")

// ErrTurnCanceled marks a turn the caller canceled.
var ErrTurnCanceled = errors.New("turn canceled")

// Turn is the handle returned by SubmitTurn: one user message plus the
// accumulating agent reply.
type Turn struct {
	ID         types.TurnID
	SessionKey types.SessionKey
	Text       string
	CreatedAt  time.Time

	sup     *Supervisor
	updates chan string
	done    chan struct{}
	err     error
	final   string
}

func newTurn(sup *Supervisor, key types.SessionKey, text string) *Turn {
	return &Turn{
		ID:         types.NewTurnID(),
		SessionKey: key,
		Text:       text,
		CreatedAt:  time.Now(),
		sup:        sup,
		updates:    make(chan string, 8),
		done:       make(chan struct{}),
	}
}

// Updates delivers post-reducer visible text as the answer streams in.
// Slow consumers see conflated updates, never stale ones; the channel is
// closed when the turn reaches a terminal state.
func (t *Turn) Updates() <-chan string {
	return t.updates
}

// Done is closed when the turn completes, fails or is canceled.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Err returns the terminal error, nil for a completed turn. Only valid
// after Done is closed.
func (t *Turn) Err() error {
	return t.err
}

// VisibleText returns the final reduced answer. Only valid after Done is
// closed.
func (t *Turn) VisibleText() string {
	return t.final
}

// Ack acknowledges a failed turn, returning its session to Idle so the
// next queued turn (or a resend) can dispatch.
func (t *Turn) Ack() {
	t.sup.ackTurn(t)
}

// Cancel removes a queued turn from its session's FIFO queue, or closes
// the stream of an in-flight turn. Either way the turn ends with
// ErrTurnCanceled and no reconnect is triggered.
func (t *Turn) Cancel() {
	t.sup.cancelTurn(t)
}

// pushVisible conflates an update into the channel without blocking:
// if the consumer is behind, the oldest pending update is dropped.
func (t *Turn) pushVisible(text string) {
	select {
	case t.updates <- text:
		return
	default:
	}
	select {
	case <-t.updates:
	default:
	}
	select {
	case t.updates <- text:
	default:
	}
}

// finish marks the turn terminal. Must be called exactly once, with the
// supervisor mutex held.
func (t *Turn) finish(visible string, err error) {
	t.final = strings.TrimSpace(visible)
	t.err = err
	close(t.updates)
	close(t.done)
}
