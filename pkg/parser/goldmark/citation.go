package goldmark

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const (
	// citationBlockPriority runs ahead of the HTML block parser, which
	// would otherwise claim any line starting with '<'.
	citationBlockPriority = 850

	// citationRefPriority runs ahead of the link parser.
	citationRefPriority = 150
)

//nolint:gochecknoglobals // goldmark node kinds and compiled patterns are process-wide.
var (
	kindCitationBlock = ast.NewNodeKind("CitationBlock")
	kindCitationRef   = ast.NewNodeKind("CitationRef")

	citationOpenPattern  = regexp.MustCompile(`(?i)^<citation\b[^>]*>`)
	citationClosePattern = regexp.MustCompile(`(?i)</citation\s*>`)
	citationRefPattern   = regexp.MustCompile(`^\[@([^\]\s]+)\]`)
)

// citationBlock is a run of one or more <citation> elements with nothing
// but whitespace between them.
type citationBlock struct {
	ast.BaseBlock

	from int
	to   int
}

func (n *citationBlock) Kind() ast.NodeKind { return kindCitationBlock }

func (n *citationBlock) IsRaw() bool { return true }

func (n *citationBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Raw": string(source[n.from:n.to]),
	}, nil)
}

type citationBlockParser struct{}

func newCitationBlockParser() parser.BlockParser {
	return &citationBlockParser{}
}

func (p *citationBlockParser) Trigger() []byte {
	return []byte{'<'}
}

func (p *citationBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	if parent.Kind() != ast.KindDocument {
		return nil, parser.NoChildren
	}
	line, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !citationOpenPattern.Match(line[pos:]) {
		return nil, parser.NoChildren
	}
	from := blockStart(seg, pos)
	to, ok := citationRunEnd(reader.Source(), from)
	if !ok {
		return nil, parser.NoChildren
	}
	return &citationBlock{from: from, to: to}, parser.NoChildren
}

func (p *citationBlockParser) Continue(node ast.Node, reader text.Reader, _ parser.Context) parser.State {
	n, ok := node.(*citationBlock)
	if !ok {
		return parser.Close
	}
	line, seg := reader.PeekLine()
	if line == nil || seg.Start >= n.to {
		return parser.Close
	}
	reader.AdvanceToEOL()
	if seg.Stop >= n.to {
		return parser.Close
	}
	return parser.Continue | parser.NoChildren
}

func (p *citationBlockParser) Close(_ ast.Node, _ text.Reader, _ parser.Context) {}

func (p *citationBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *citationBlockParser) CanAcceptIndentedLine() bool {
	return false
}

// citationRunEnd returns the end of the citation run opening at from. The
// first element must be closed; a later element joined to it without a
// blank line may be left open, in which case the run takes the rest of
// source. ok is false when the first element is never closed.
func citationRunEnd(source []byte, from int) (int, bool) {
	loc := citationClosePattern.FindIndex(source[from:])
	if loc == nil {
		return 0, false
	}
	end := from + loc[1]
	for {
		next := adjacentCitation(source, end)
		if next < 0 {
			return end, true
		}
		loc = citationClosePattern.FindIndex(source[next:])
		if loc == nil {
			return len(source), true
		}
		end = next + loc[1]
	}
}

// adjacentCitation returns the offset of a <citation> element that follows
// end after at most one line break, or -1.
func adjacentCitation(source []byte, end int) int {
	i := skipBlanks(source, end)
	if i < len(source) && source[i] == '\r' {
		i++
	}
	if i < len(source) && source[i] == '\n' {
		i = skipBlanks(source, i+1)
	}
	if i < len(source) && citationOpenPattern.Match(source[i:]) {
		return i
	}
	return -1
}

func skipBlanks(source []byte, i int) int {
	for i < len(source) && (source[i] == ' ' || source[i] == '\t') {
		i++
	}
	return i
}

// citationRef is an inline [@id] citation reference.
type citationRef struct {
	ast.BaseInline

	id   string
	from int
	to   int
}

func (n *citationRef) Kind() ast.NodeKind { return kindCitationRef }

func (n *citationRef) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": n.id}, nil)
}

type citationRefParser struct{}

func newCitationRefParser() parser.InlineParser {
	return &citationRefParser{}
}

func (p *citationRefParser) Trigger() []byte {
	return []byte{'['}
}

func (p *citationRefParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := citationRefPattern.FindSubmatchIndex(line)
	if m == nil {
		return nil
	}
	// [@id](url) and [@id][ref] are links.
	if m[1] < len(line) && bytes.IndexByte([]byte("(["), line[m[1]]) >= 0 {
		return nil
	}
	_, pos := block.Position()
	node := &citationRef{
		id:   string(line[m[2]:m[3]]),
		from: pos.Start,
		to:   pos.Start + m[1],
	}
	block.Advance(m[1])
	return node
}
