package stream

import (
	"context"
	"sync"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

// OpKind identifies a Consumer operation.
type OpKind uint8

const (
	// OpAppend commits nodes.
	OpAppend OpKind = iota + 1

	// OpReplace swaps the live tail.
	OpReplace

	// OpReset discards everything.
	OpReset
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpAppend:
		return "append"
	case OpReplace:
		return "replace"
	case OpReset:
		return "reset"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Op is one recorded Consumer call.
type Op struct {
	Kind  OpKind
	Nodes []mdast.Node
}

// Recorder is a Consumer that keeps the resulting document in memory and
// records every operation.
type Recorder struct {
	mu        sync.Mutex
	ops       []Op
	committed []mdast.Node
	live      []mdast.Node
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append commits nodes in place of the live tail.
func (r *Recorder) Append(_ context.Context, nodes []mdast.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = append(r.ops, Op{Kind: OpAppend, Nodes: nodes})
	r.committed = append(r.committed, nodes...)
	r.live = nil
	return nil
}

// Replace swaps the live tail for nodes.
func (r *Recorder) Replace(_ context.Context, nodes []mdast.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = append(r.ops, Op{Kind: OpReplace, Nodes: nodes})
	r.live = nodes
	return nil
}

// Reset discards the document.
func (r *Recorder) Reset(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = append(r.ops, Op{Kind: OpReset})
	r.committed = nil
	r.live = nil
	return nil
}

// Nodes returns the committed nodes followed by the live tail.
func (r *Recorder) Nodes() []mdast.Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]mdast.Node, 0, len(r.committed)+len(r.live))
	out = append(out, r.committed...)
	return append(out, r.live...)
}

// Committed returns the number of committed nodes.
func (r *Recorder) Committed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

// Ops returns the recorded operations.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}
