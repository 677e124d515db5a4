package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// writeWait bounds a single websocket write.
const writeWait = 10 * time.Second

// WebSocket sends operations over a websocket connection.
type WebSocket struct {
	seq  sequencer
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocket creates a consumer writing to conn for the given document.
func NewWebSocket(conn *websocket.Conn, document uuid.UUID) *WebSocket {
	return &WebSocket{seq: sequencer{document: document}, conn: conn}
}

// Append implements stream.Consumer.
func (w *WebSocket) Append(ctx context.Context, nodes []mdast.Node) error {
	return w.write(ctx, w.seq.next(stream.OpAppend, nodes))
}

// Replace implements stream.Consumer.
func (w *WebSocket) Replace(ctx context.Context, nodes []mdast.Node) error {
	return w.write(ctx, w.seq.next(stream.OpReplace, nodes))
}

// Reset implements stream.Consumer.
func (w *WebSocket) Reset(ctx context.Context) error {
	return w.write(ctx, w.seq.next(stream.OpReset, nil))
}

func (w *WebSocket) write(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", msg.Op, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := w.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s: %w", msg.Op, err)
	}
	return nil
}
