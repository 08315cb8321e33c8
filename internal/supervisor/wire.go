// internal/supervisor/wire.go
package supervisor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/clawline/internal/types"
)

// Frame types on the gateway's duplex stream. One socket per server
// multiplexes all of that server's sessions; frames carry the session key
// and turn ID to demux.
const (
	frameTurn   = "turn"   // outbound: submit a user turn
	frameCancel = "cancel" // outbound: cancel the in-flight turn
	frameChunk  = "chunk"  // inbound: partial answer text
	frameEnd    = "end"    // inbound: terminal event for a turn
)

const (
	endDone  = "done"
	endError = "error"
)

// frame is one JSON text message on the gateway socket.
type frame struct {
	Type       string           `json:"type"`
	SessionKey types.SessionKey `json:"sessionKey"`
	TurnID     types.TurnID     `json:"turnId,omitempty"`
	Text       string           `json:"text,omitempty"`
	Status     string           `json:"status,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// wsConn wraps a websocket connection with serialized writes. Reads stay
// single-goroutine (the supervisor's read loop).
type wsConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

// dialGateway opens the duplex stream to a gateway's connection-form URL.
func dialGateway(ctx context.Context, url, token string, timeout time.Duration) (*wsConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}

	var header http.Header
	if token != "" {
		header = http.Header{"Authorization": {"Bearer " + token}}
	}

	ws, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}
	return &wsConn{ws: ws}, nil
}

func (c *wsConn) writeFrame(f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(f)
}

func (c *wsConn) readFrame() (frame, error) {
	var f frame
	err := c.ws.ReadJSON(&f)
	return f, err
}

func (c *wsConn) close() {
	c.writeMu.Lock()
	_ = c.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	c.writeMu.Unlock()
	_ = c.ws.Close()
}
