package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	// mathBlockPriority places math blocks just ahead of fenced code.
	mathBlockPriority = 690

	// mathInlinePriority runs before the emphasis and link parsers.
	mathInlinePriority = 150
)

//nolint:gochecknoglobals // goldmark node kinds are registered once per process.
var (
	kindMathBlock  = ast.NewNodeKind("MathBlock")
	kindMathInline = ast.NewNodeKind("MathInline")
)

//nolint:gochecknoglobals // Delimiter literals.
var (
	dollarFence  = []byte("$$")
	bracketOpen  = []byte(`\[`)
	bracketClose = []byte(`\]`)
	parenOpen    = []byte(`\(`)
	parenClose   = []byte(`\)`)
)

// mathBlock is a display math block delimited by $$ lines or \[ and \].
type mathBlock struct {
	ast.BaseBlock

	opener string
	closed bool
}

func (n *mathBlock) Kind() ast.NodeKind { return kindMathBlock }

func (n *mathBlock) IsRaw() bool { return true }

func (n *mathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Opener": n.opener}, nil)
}

// content returns the TeX source between the delimiters, trimmed.
func (n *mathBlock) content(source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}

type mathBlockParser struct{}

func newMathBlockParser() parser.BlockParser {
	return &mathBlockParser{}
}

func (p *mathBlockParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (p *mathBlockParser) Open(_ ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) {
		return nil, parser.NoChildren
	}
	rest := line[pos:]
	source := reader.Source()
	bodyStart := blockStart(seg, pos) + 2

	switch {
	case bytes.HasPrefix(rest, dollarFence):
		if !isLineEnd(rest[2:]) || !dollarBlockClosed(source, seg.Stop) {
			return nil, parser.NoChildren
		}
		return &mathBlock{opener: "$$"}, parser.NoChildren

	case bytes.HasPrefix(rest, bracketOpen):
		end, ok := bracketBlockEnd(source, bodyStart)
		if !ok {
			return nil, parser.NoChildren
		}
		node := &mathBlock{opener: `\[`}
		nl := bytes.IndexByte(source[bodyStart:], '\n')
		if nl < 0 || end < bodyStart+nl {
			node.Lines().Append(text.NewSegment(bodyStart, end))
			node.closed = true
		} else {
			node.Lines().Append(text.NewSegment(bodyStart, bodyStart+nl+1))
		}
		return node, parser.NoChildren
	}
	return nil, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, _ parser.Context) parser.State {
	n, ok := node.(*mathBlock)
	if !ok || n.closed {
		return parser.Close
	}
	line, seg := reader.PeekLine()
	if line == nil {
		return parser.Close
	}

	if n.opener == "$$" {
		if isDollarFence(line) {
			reader.AdvanceToEOL()
			n.closed = true
			return parser.Close
		}
	} else if i := bytes.Index(line, bracketClose); i >= 0 {
		if stop := seg.Start + i - seg.Padding; stop > seg.Start {
			n.Lines().Append(text.NewSegment(seg.Start, stop))
		}
		reader.AdvanceToEOL()
		n.closed = true
		return parser.Close
	}

	n.Lines().Append(seg)
	reader.AdvanceToEOL()
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(_ ast.Node, _ text.Reader, _ parser.Context) {}

func (p *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

// isLineEnd reports whether b holds nothing but a line terminator.
func isLineEnd(b []byte) bool {
	return len(b) > 0 && (b[0] == '\n' || (b[0] == '\r' && len(b) > 1 && b[1] == '\n'))
}

// isDollarFence reports whether line is a closing $$ line, allowing a
// blockquote marker ahead of it.
func isDollarFence(line []byte) bool {
	return bytes.Equal(bytes.TrimSpace(bytes.TrimLeft(line, " \t>")), dollarFence)
}

// dollarBlockClosed reports whether a closing $$ line follows from with
// non-blank content before it.
func dollarBlockClosed(source []byte, from int) bool {
	hasContent := false
	for from < len(source) {
		end := bytes.IndexByte(source[from:], '\n')
		if end < 0 {
			end = len(source)
		} else {
			end += from + 1
		}
		line := source[from:end]
		if isDollarFence(line) {
			return hasContent
		}
		if !util.IsBlank(bytes.TrimLeft(line, " \t>")) {
			hasContent = true
		}
		from = end
	}
	return false
}

// bracketBlockEnd finds the \] closing a block opened just before from. It
// returns the offset of the closing delimiter when the content between is
// non-blank and nothing but whitespace follows the delimiter on its line.
func bracketBlockEnd(source []byte, from int) (int, bool) {
	if from > len(source) {
		return 0, false
	}
	i := bytes.Index(source[from:], bracketClose)
	if i < 0 {
		return 0, false
	}
	end := from + i
	if len(bytes.TrimSpace(source[from:end])) == 0 {
		return 0, false
	}
	tail := source[end+len(bracketClose):]
	if nl := bytes.IndexByte(tail, '\n'); nl >= 0 {
		tail = tail[:nl]
	}
	if !util.IsBlank(tail) {
		return 0, false
	}
	return end, true
}

// mathInline is an inline math span: $...$, \(...\) or \[...\].
type mathInline struct {
	ast.BaseInline

	opener  string
	display bool
	content string
	from    int
	to      int
}

func (n *mathInline) Kind() ast.NodeKind { return kindMathInline }

func (n *mathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Opener":  n.opener,
		"Content": n.content,
	}, nil)
}

type mathInlineParser struct{}

func newMathInlineParser() parser.InlineParser {
	return &mathInlineParser{}
}

func (p *mathInlineParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (p *mathInlineParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 2 {
		return nil
	}
	_, pos := block.Position()
	body := trimLineEnd(line)

	var node *mathInline
	switch {
	case line[0] == '$':
		node = parseDollarMath(block.Source(), body, pos.Start, block.LineOffset() == 0)
	case bytes.HasPrefix(line, parenOpen):
		node = parseBracketMath(body, pos.Start, `\(`, parenClose)
	case bytes.HasPrefix(line, bracketOpen):
		node = parseBracketMath(body, pos.Start, `\[`, bracketClose)
	}
	if node == nil {
		return nil
	}
	block.Advance(node.to - node.from)
	return node
}

// parseDollarMath applies the $...$ boundary rules to body, the rest of the
// current line starting at the opening dollar.
func parseDollarMath(source, body []byte, from int, lineStart bool) *mathInline {
	if from > 0 && source[from-1] == '$' {
		return nil
	}
	closing := bytes.IndexByte(body[1:], '$')
	if closing <= 0 {
		return nil
	}
	content := body[1 : 1+closing]
	end := 2 + closing

	if bytes.ContainsAny(content, " \t") {
		precededBySpace := lineStart || from == 0 || util.IsSpace(source[from-1])
		opensSpaced := content[0] == ' ' || content[0] == '\t' || content[0] == '\\'
		followedBySpace := end == len(body) || util.IsSpace(body[end])
		symmetric := util.IsSpace(content[0]) == util.IsSpace(content[len(content)-1])
		if !precededBySpace || !opensSpaced || !followedBySpace || !symmetric {
			return nil
		}
	} else if end < len(body) && body[end] == '$' {
		return nil
	}

	return &mathInline{
		opener:  "$",
		content: string(content),
		from:    from,
		to:      from + end,
	}
}

func parseBracketMath(body []byte, from int, opener string, closer []byte) *mathInline {
	i := bytes.Index(body[2:], closer)
	if i <= 0 {
		return nil
	}
	return &mathInline{
		opener:  opener,
		display: opener == `\[`,
		content: string(body[2 : 2+i]),
		from:    from,
		to:      from + 2 + i + len(closer),
	}
}

func trimLineEnd(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'})
}
