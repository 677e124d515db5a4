package goldmark

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// goldmark nodes carry no source positions of their own. The wrappers in
// this file observe the reader around each Open, Continue and Parse call and
// record the byte span of every node a wrapped parser creates.

//nolint:gochecknoglobals // Context keys must be allocated before any parser.NewContext call.
var spanKey = parser.NewContextKey()

// linkLabelStateKind names goldmark's unexported placeholder node for an
// unmatched '[' or '!['.
const linkLabelStateKind = "LinkLabelState"

type span struct {
	from int
	to   int
}

// spanTable holds the spans recorded during one parse.
type spanTable struct {
	source  []byte
	spans   map[ast.Node]span
	openers map[ast.Node]int
}

func newSpanTable(source []byte) *spanTable {
	return &spanTable{
		source:  source,
		spans:   make(map[ast.Node]span),
		openers: make(map[ast.Node]int),
	}
}

func spansFrom(pc parser.Context) *spanTable {
	if t, ok := pc.Get(spanKey).(*spanTable); ok {
		return t
	}
	// Parsers used outside Parser.Parse still work, without spans.
	t := newSpanTable(nil)
	pc.Set(spanKey, t)
	return t
}

func (t *spanTable) open(node ast.Node, from, to int) {
	t.spans[node] = span{from: from, to: max(from, to)}
}

func (t *spanTable) extend(node ast.Node, to int) {
	s, ok := t.spans[node]
	if !ok {
		return
	}
	if to > s.to {
		s.to = to
		t.spans[node] = s
	}
}

func (t *spanTable) lookup(node ast.Node) (span, bool) {
	s, ok := t.spans[node]
	return s, ok
}

// lastOpener returns the most recent link label opener still attached to parent.
func (t *spanTable) lastOpener(parent ast.Node) (int, bool) {
	for c := parent.LastChild(); c != nil; c = c.PreviousSibling() {
		if start, ok := t.openers[c]; ok {
			return start, true
		}
	}
	return 0, false
}

// contentEnd returns the end of a line segment with the terminator and
// trailing blanks removed.
func contentEnd(source []byte, seg text.Segment) int {
	end := min(seg.Stop, len(source))
	for end > seg.Start && util.IsSpace(source[end-1]) {
		end--
	}
	return end
}

// blockStart converts a block offset within a peeked line into a source offset.
func blockStart(seg text.Segment, offset int) int {
	if offset < 0 {
		return seg.Start
	}
	return seg.Start + max(offset-seg.Padding, 0)
}

// trackedBlockParser records the first line a block opens on and every
// non-blank line it consumes afterwards.
type trackedBlockParser struct {
	parser.BlockParser
}

func trackBlockParsers(values []util.PrioritizedValue) []util.PrioritizedValue {
	tracked := make([]util.PrioritizedValue, len(values))
	for i, v := range values {
		bp, ok := v.Value.(parser.BlockParser)
		if !ok {
			tracked[i] = v
			continue
		}
		tracked[i] = util.Prioritized(trackedBlockParser{BlockParser: bp}, v.Priority)
	}
	return tracked
}

func (b trackedBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	_, seg := reader.PeekLine()
	from := blockStart(seg, pc.BlockOffset())

	node, state := b.BlockParser.Open(parent, reader, pc)
	if node != nil {
		spansFrom(pc).open(node, from, contentEnd(reader.Source(), seg))
	}
	return node, state
}

func (b trackedBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, seg := reader.PeekLine()
	lineBefore, posBefore := reader.Position()

	state := b.BlockParser.Continue(node, reader, pc)

	lineAfter, posAfter := reader.Position()
	consumed := state&parser.Close == 0 || lineAfter != lineBefore || posAfter.Start != posBefore.Start
	if consumed && !util.IsBlank(line) {
		spansFrom(pc).extend(node, contentEnd(reader.Source(), seg))
	}
	return state
}

// trackedInlineParser records the reader positions around inline parses.
type trackedInlineParser struct {
	parser.InlineParser
}

func trackInlineParsers(values []util.PrioritizedValue) []util.PrioritizedValue {
	tracked := make([]util.PrioritizedValue, len(values))
	for i, v := range values {
		tracked[i] = trackInlineParser(v)
	}
	return tracked
}

func trackInlineParser(v util.PrioritizedValue) util.PrioritizedValue {
	ip, ok := v.Value.(parser.InlineParser)
	if !ok {
		return v
	}
	return util.Prioritized(trackedInlineParser{InlineParser: ip}, v.Priority)
}

func (p trackedInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	spans := spansFrom(pc)
	line, _ := block.PeekLine()
	lineBefore, posBefore := block.Position()

	var openerStart int
	var hasOpener bool
	if len(line) > 0 && line[0] == ']' {
		openerStart, hasOpener = spans.lastOpener(parent)
	}

	node := p.InlineParser.Parse(parent, block, pc)
	if node == nil {
		return nil
	}

	from := posBefore.Start
	to := inlineEnd(block, spans.source, lineBefore, from)

	switch node.(type) {
	case *ast.Link, *ast.Image:
		if hasOpener {
			from = openerStart
		}
		spans.open(node, from, to)
	default:
		if node.Kind().String() == linkLabelStateKind {
			// Link label openers are replaced once their closing bracket
			// is seen; only their start needs remembering.
			spans.openers[node] = from
			return node
		}
		spans.open(node, from, to)
	}
	return node
}

// CloseBlock forwards to the wrapped parser when it implements parser.CloseBlocker.
func (p trackedInlineParser) CloseBlock(parent ast.Node, block text.Reader, pc parser.Context) {
	if cb, ok := p.InlineParser.(parser.CloseBlocker); ok {
		cb.CloseBlock(parent, block, pc)
	}
}

// inlineEnd returns the source offset the block reader stopped at after an
// inline parse that started on lineBefore.
func inlineEnd(block text.Reader, source []byte, lineBefore, from int) int {
	lineAfter, pos := block.Position()
	if pos.Start < from {
		return from
	}
	if lineAfter != lineBefore && block.LineOffset() == 0 {
		// The reader moved to the head of the next line; the node ended
		// at the end of the previous one.
		end := pos.Start
		for end > from && source[end-1] != '\n' {
			end--
		}
		for end > from && (source[end-1] == '\n' || source[end-1] == '\r') {
			end--
		}
		return end
	}
	return pos.Start
}
