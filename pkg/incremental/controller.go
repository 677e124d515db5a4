// Package incremental reparses a growing document, reusing the top-level
// blocks of the previous parse that appended text cannot have changed.
//
// Callers own one State per logical document and pass it back on every
// call. A Controller holds no per-document state and may be shared.
package incremental

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/region"
	"github.com/yaklabco/mdstream/pkg/syntax"
)

// linkDefinitionPattern matches a line that may hold a link reference
// definition. A definition resolves references on either side of it, so a
// source holding one anywhere is always parsed in full.
//
//nolint:gochecknoglobals // compiled pattern is process-wide.
var linkDefinitionPattern = regexp.MustCompile(`(?m)^ {0,3}\[[^\]]+\]:`)

// Parser produces a syntax tree for a complete source text.
type Parser interface {
	Parse(ctx context.Context, source string) (*syntax.Tree, error)
}

// Observer is notified once per parse.
type Observer interface {
	ObserveParse(mode string, reusedBlocks int)
}

// Mode reports how a Result was produced.
type Mode uint8

const (
	// ModeFull is a parse of the whole source.
	ModeFull Mode = iota

	// ModeIncremental reused a prefix of the previous parse.
	ModeIncremental

	// ModeCached returned the previous result for an unchanged source.
	ModeCached
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeIncremental:
		return "incremental"
	case ModeCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Result is the outcome of one parse.
type Result struct {
	// Source is the text that was parsed.
	Source string

	// Tree spans all of Source.
	Tree *syntax.Tree

	// Regions are the multi-line constructs found after the previous cutoff.
	// Empty for full parses.
	Regions []region.Region

	// Fragments are the spans of the previous source eligible for reuse.
	Fragments []region.Fragment

	// Reused is the number of top-level blocks taken from the previous tree.
	Reused int

	// Mode reports how the result was produced.
	Mode Mode
}

// State carries what a Controller needs from one call to the next.
type State struct {
	// PrevSource is the source of the last parse.
	PrevSource string

	// PrevResult is the result of the last parse.
	PrevResult *Result

	// Cutoff is the length of PrevSource.
	Cutoff int
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers an observer notified after every parse.
func WithObserver(observer Observer) Option {
	return func(c *Controller) {
		c.observer = observer
	}
}

// Controller decides between a full reparse and a reparse that reuses
// blocks of the previous tree.
type Controller struct {
	parser   Parser
	observer Observer
}

// NewController creates a Controller over parser.
func NewController(parser Parser, opts ...Option) *Controller {
	c := &Controller{parser: parser}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse performs a full parse of source and returns a fresh state.
func (c *Controller) Parse(ctx context.Context, source string) (*Result, *State, error) {
	return c.ParseIncremental(ctx, source, nil)
}

// ParseIncremental parses newSource, reusing prev when newSource extends
// prev.PrevSource. A nil prev or a non-append edit causes a full parse.
// The returned state replaces prev for the next call.
func (c *Controller) ParseIncremental(ctx context.Context, newSource string, prev *State) (*Result, *State, error) {
	logger := logging.FromContext(ctx)

	if prev == nil || prev.PrevResult == nil || !strings.HasPrefix(newSource, prev.PrevSource) {
		return c.full(ctx, newSource, nil, nil)
	}

	if newSource == prev.PrevSource {
		c.observe(ModeCached, prev.PrevResult.Reused)
		return prev.PrevResult, prev, nil
	}

	changeStart := len(prev.PrevSource)
	regions := region.Detect(newSource, changeStart)
	fragments := region.Fragments(changeStart, regions)
	if len(fragments) == 0 {
		logger.Debug("no reusable fragments", logging.FieldRegions, len(regions))
		return c.full(ctx, newSource, regions, fragments)
	}

	reused := reusablePrefix(prev.PrevResult.Tree.Blocks(), fragments)
	if len(reused) == 0 {
		return c.full(ctx, newSource, regions, fragments)
	}

	resume := syntax.NextLineStart(newSource, reused[len(reused)-1].To)
	if linkDefinitionPattern.MatchString(newSource) {
		logger.Debug("source holds link definitions", logging.FieldCutoff, resume)
		return c.full(ctx, newSource, regions, fragments)
	}

	tail, err := c.parser.Parse(ctx, newSource[resume:])
	if err != nil {
		return nil, nil, fmt.Errorf("parse tail at %d: %w", resume, err)
	}

	blocks := make([]*syntax.Node, 0, len(reused)+len(tail.Blocks()))
	blocks = append(blocks, reused...)
	for _, block := range tail.Blocks() {
		blocks = append(blocks, syntax.Shift(block, resume))
	}

	result := &Result{
		Source:    newSource,
		Tree:      syntax.NewTree(newSource, blocks),
		Regions:   regions,
		Fragments: fragments,
		Reused:    len(reused),
		Mode:      ModeIncremental,
	}
	logger.Debug("incremental parse",
		logging.FieldReused, len(reused),
		logging.FieldRegions, len(regions),
		logging.FieldCutoff, resume,
	)
	c.observe(ModeIncremental, len(reused))
	return result, newState(result), nil
}

func (c *Controller) full(
	ctx context.Context,
	source string,
	regions []region.Region,
	fragments []region.Fragment,
) (*Result, *State, error) {
	tree, err := c.parser.Parse(ctx, source)
	if err != nil {
		return nil, nil, fmt.Errorf("full parse: %w", err)
	}
	result := &Result{
		Source:    source,
		Tree:      tree,
		Regions:   regions,
		Fragments: fragments,
		Mode:      ModeFull,
	}
	c.observe(ModeFull, 0)
	return result, newState(result), nil
}

func (c *Controller) observe(mode Mode, reused int) {
	if c.observer != nil {
		c.observer.ObserveParse(mode.String(), reused)
	}
}

func newState(result *Result) *State {
	return &State{
		PrevSource: result.Source,
		PrevResult: result,
		Cutoff:     len(result.Source),
	}
}

// reusablePrefix returns the longest prefix of blocks, excluding the final
// block, in which every block lies inside a single fragment.
func reusablePrefix(blocks []*syntax.Node, fragments []region.Fragment) []*syntax.Node {
	if len(blocks) < 2 {
		return nil
	}
	n := 0
	for _, block := range blocks[:len(blocks)-1] {
		if !insideFragment(block, fragments) {
			break
		}
		n++
	}
	return blocks[:n]
}

func insideFragment(block *syntax.Node, fragments []region.Fragment) bool {
	for _, f := range fragments {
		if f.Contains(block.From, block.To) {
			return true
		}
	}
	return false
}
