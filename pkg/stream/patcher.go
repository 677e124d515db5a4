// Package stream turns a stream of text increments into append and replace
// operations over top-level AST nodes.
//
// A Patcher buffers increments until enough text has arrived to be worth
// lexing, then lexes the uncommitted tail of the document. Leading nodes
// that later text can no longer change are committed with Append; the
// rest is sent with Replace and re-lexed on the next flush.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// DefaultFlushThreshold is the buffered weight that triggers a lex.
const DefaultFlushThreshold = 9

// minCommitNodes is the number of nodes a lex must produce before its
// leading nodes are committed.
const minCommitNodes = 3

// ErrClosed is returned by operations on a closed Patcher.
var ErrClosed = errors.New("patcher closed")

// Consumer receives the operations of a Patcher.
//
// The consumer holds committed nodes followed by a live tail. Append
// commits nodes in place of the live tail. Replace swaps the live tail for
// nodes. Reset discards everything.
type Consumer interface {
	Append(ctx context.Context, nodes []mdast.Node) error
	Replace(ctx context.Context, nodes []mdast.Node) error
	Reset(ctx context.Context) error
}

// Lexer produces top-level nodes for a source text.
type Lexer interface {
	Lex(ctx context.Context, source string) ([]mdast.Node, error)
}

// Observer is notified after every flush with the number of nodes
// appended and replaced.
type Observer interface {
	ObserveFlush(appended, replaced int)
}

// resetter is implemented by lexers holding per-document state.
type resetter interface {
	Reset()
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithFlushThreshold sets the buffered weight that triggers a lex.
// Values below one are ignored.
func WithFlushThreshold(threshold int) Option {
	return func(p *Patcher) {
		if threshold > 0 {
			p.threshold = threshold
		}
	}
}

// WithObserver registers an observer of flushes.
func WithObserver(observer Observer) Option {
	return func(p *Patcher) {
		p.observer = observer
	}
}

// Patcher converts text increments of one document into Consumer
// operations. Node spans are byte offsets into Content.
// A Patcher is safe for concurrent use; increments are applied in the
// order the calls acquire it.
type Patcher struct {
	mu sync.Mutex

	lexer     Lexer
	consumer  Consumer
	observer  Observer
	threshold int

	// content is every byte written since the last reset.
	content string

	// buffer holds text not yet lexed.
	buffer string

	// lastChunk is the uncommitted text lexed on each flush.
	lastChunk string

	// chunkStart is the offset of lastChunk in content.
	chunkStart int

	closed bool
}

// NewPatcher creates a Patcher that lexes with lexer and emits to consumer.
func NewPatcher(lexer Lexer, consumer Consumer, opts ...Option) *Patcher {
	p := &Patcher{
		lexer:     lexer,
		consumer:  consumer,
		threshold: DefaultFlushThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Write feeds one increment. It lexes only once the buffered text weighs
// at least the flush threshold.
func (p *Patcher) Write(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	p.content += text
	p.buffer += text

	if weight := FlushWeight(p.buffer); weight < p.threshold {
		logging.FromContext(ctx).Debug("buffering",
			logging.FieldWeight, weight,
			logging.FieldThreshold, p.threshold,
		)
		return nil
	}
	return p.flush(ctx)
}

// Flush lexes buffered text regardless of its weight. Call it at the end
// of a stream.
func (p *Patcher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.buffer == "" && p.lastChunk == "" {
		return nil
	}
	return p.flush(ctx)
}

// Close flushes buffered text and rejects further writes.
func (p *Patcher) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.buffer == "" {
		return nil
	}
	return p.flush(ctx)
}

// Reset discards all state and resets the consumer. A closed Patcher is
// reopened.
func (p *Patcher) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.content = ""
	p.buffer = ""
	p.lastChunk = ""
	p.chunkStart = 0
	p.closed = false
	if r, ok := p.lexer.(resetter); ok {
		r.Reset()
	}

	if err := p.consumer.Reset(ctx); err != nil {
		return fmt.Errorf("consumer reset: %w", err)
	}
	return nil
}

// Content returns every byte written since the last reset.
func (p *Patcher) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content
}

// Pending returns the text written but not yet lexed.
func (p *Patcher) Pending() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer
}

func (p *Patcher) flush(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	p.lastChunk += p.buffer
	p.buffer = ""

	nodes, err := p.lexer.Lex(ctx, p.lastChunk)
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if canCommit(nodes) {
		tail := nodes[len(nodes)-1]
		prefix := mdast.ShiftAll(nodes[:len(nodes)-1], p.chunkStart)
		live := mdast.ShiftAll([]mdast.Node{tail}, p.chunkStart)

		cut := tail.Pos().Start
		p.lastChunk = p.lastChunk[cut:]
		p.chunkStart += cut

		logger.Debug("commit",
			logging.FieldAppended, len(prefix),
			logging.FieldCutoff, p.chunkStart,
		)
		if err := p.consumer.Append(ctx, prefix); err != nil {
			return fmt.Errorf("consumer append: %w", err)
		}
		if err := p.consumer.Replace(ctx, live); err != nil {
			return fmt.Errorf("consumer replace: %w", err)
		}
		p.observe(len(prefix), len(live))
		return nil
	}

	logger.Debug("replace", logging.FieldReplaced, len(nodes))
	if err := p.consumer.Replace(ctx, mdast.ShiftAll(nodes, p.chunkStart)); err != nil {
		return fmt.Errorf("consumer replace: %w", err)
	}
	p.observe(0, len(nodes))
	return nil
}

func (p *Patcher) observe(appended, replaced int) {
	if p.observer != nil {
		p.observer.ObserveFlush(appended, replaced)
	}
}

// canCommit reports whether the leading nodes of a lex are final: there
// are enough of them and no node after the first can still grow.
func canCommit(nodes []mdast.Node) bool {
	if len(nodes) < minCommitNodes {
		return false
	}
	for _, n := range nodes[1:] {
		if mdast.IsGrowable(n) {
			return false
		}
	}
	return true
}

// FlushWeight weighs text for flush decisions: CJK ideographs count 4,
// ASCII 1 and anything else 2.
func FlushWeight(text string) int {
	weight := 0
	for _, r := range text {
		switch {
		case r >= 0x4E00 && r <= 0x9FA5:
			weight += 4
		case r < 0x80:
			weight++
		default:
			weight += 2
		}
	}
	return weight
}
