// Package sink delivers patcher operations to rendering clients.
//
// Operations travel as JSON messages. WebSocket writes them to a websocket
// connection, JSONLines to any io.Writer. Server accepts websocket clients
// that stream text in and receive operations back, one document per
// connection.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// Message is one operation on the wire.
type Message struct {
	Document string           `json:"document"`
	Seq      uint64           `json:"seq"`
	Op       string           `json:"op"`
	Nodes    []map[string]any `json:"nodes,omitempty"`
}

// sequencer stamps messages of one document with increasing numbers.
type sequencer struct {
	mu       sync.Mutex
	document uuid.UUID
	seq      uint64
}

func (s *sequencer) next(kind stream.OpKind, nodes []mdast.Node) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	msg := Message{Document: s.document.String(), Seq: s.seq, Op: kind.String()}
	if len(nodes) > 0 {
		msg.Nodes = mdast.ToMaps(nodes)
	}
	return msg
}

// JSONLines writes one JSON message per line.
type JSONLines struct {
	seq sequencer
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLines creates a consumer writing to w for the given document.
func NewJSONLines(w io.Writer, document uuid.UUID) *JSONLines {
	return &JSONLines{seq: sequencer{document: document}, enc: json.NewEncoder(w)}
}

// Append implements stream.Consumer.
func (j *JSONLines) Append(_ context.Context, nodes []mdast.Node) error {
	return j.write(j.seq.next(stream.OpAppend, nodes))
}

// Replace implements stream.Consumer.
func (j *JSONLines) Replace(_ context.Context, nodes []mdast.Node) error {
	return j.write(j.seq.next(stream.OpReplace, nodes))
}

// Reset implements stream.Consumer.
func (j *JSONLines) Reset(_ context.Context) error {
	return j.write(j.seq.next(stream.OpReset, nil))
}

func (j *JSONLines) write(msg Message) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(msg); err != nil {
		return fmt.Errorf("write %s: %w", msg.Op, err)
	}
	return nil
}
