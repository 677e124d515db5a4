package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/mdstream/pkg/syntax"
)

// mapper converts a goldmark AST into a syntax tree with byte offsets.
type mapper struct {
	content []byte
	spans   *spanTable
}

// newMapper creates a new mapper for the given content and recorded spans.
func newMapper(content []byte, spans *spanTable) *mapper {
	return &mapper{content: content, spans: spans}
}

// mapDocument converts a goldmark document node to a syntax document.
func (m *mapper) mapDocument(gmDoc ast.Node) *syntax.Node {
	doc := syntax.NewDocument(len(m.content))
	m.mapChildren(gmDoc, doc)
	settle(doc)
	return doc
}

// settle gives nodes without a recorded range an empty range at the start
// of their parent.
func settle(parent *syntax.Node) {
	for _, child := range parent.Children {
		if child.From < 0 || child.To < child.From {
			child.From, child.To = parent.From, parent.From
		}
		settle(child)
	}
}

// mapChildren maps all children of a goldmark node and appends them to parent.
func (m *mapper) mapChildren(gmParent ast.Node, parent *syntax.Node) {
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		syntax.AppendChild(parent, m.mapNode(child))

		if t, ok := child.(*ast.Text); ok && t.HardLineBreak() {
			syntax.AppendChild(parent, m.hardBreak(t))
		}
	}
}

// mapNode converts a single goldmark node. It returns nil for nodes that
// cover no source text.
func (m *mapper) mapNode(gmNode ast.Node) *syntax.Node {
	switch gmn := gmNode.(type) {
	// Block-level nodes.
	case *ast.Paragraph, *ast.TextBlock:
		return m.mapParagraph(gmNode)

	case *ast.Heading:
		return m.mapHeading(gmn)

	case *ast.List:
		return m.mapList(gmn)

	case *ast.ListItem:
		return m.mapContainer(syntax.KindListItem, gmNode)

	case *ast.Blockquote:
		return m.mapContainer(syntax.KindBlockquote, gmNode)

	case *ast.FencedCodeBlock:
		return m.mapFencedCodeBlock(gmn)

	case *ast.CodeBlock:
		return m.mapIndentedCodeBlock(gmn)

	case *ast.ThematicBreak:
		return m.tracked(syntax.KindThematicBreak, gmNode)

	case *ast.HTMLBlock:
		return m.mapHTMLBlock(gmn)

	case *mathBlock:
		return m.mapMathBlock(gmn)

	case *citationBlock:
		node := syntax.NewNode(syntax.KindCitationBlock, gmn.from, gmn.to)
		node.Block = syntax.NewBlockAttrs().WithLiteral(string(m.content[gmn.from:gmn.to]))
		return node

	// Inline-level nodes.
	case *ast.Text:
		return m.mapText(gmn)

	case *ast.String:
		// Generated text has no source; it is folded into its parent.
		return nil

	case *ast.Emphasis:
		return m.mapEmphasis(gmn)

	case *ast.CodeSpan:
		return m.mapCodeSpan(gmn)

	case *ast.Link:
		return m.mapLink(syntax.KindLink, gmNode, gmn.Destination, gmn.Title)

	case *ast.Image:
		return m.mapLink(syntax.KindImage, gmNode, gmn.Destination, gmn.Title)

	case *ast.AutoLink:
		return m.mapAutoLink(gmn)

	case *ast.RawHTML:
		node := m.tracked(syntax.KindRawHTML, gmNode)
		node.Inline = syntax.NewInlineAttrs().WithText(node.Text(string(m.content)))
		return node

	case *mathInline:
		node := syntax.NewNode(syntax.KindMathInline, gmn.from, gmn.to)
		node.Inline = syntax.NewInlineAttrs().WithMath(&syntax.MathAttrs{
			Display: gmn.display,
			Opener:  gmn.opener,
			Content: gmn.content,
		})
		return node

	case *citationRef:
		node := syntax.NewNode(syntax.KindCitationRef, gmn.from, gmn.to)
		node.Inline = syntax.NewInlineAttrs().WithText(gmn.id)
		return node

	// GFM extension nodes.
	case *east.Strikethrough:
		return m.mapStrikethrough(gmn)

	case *east.TaskCheckBox:
		return m.mapTaskCheckBox(gmn)

	case *east.Table:
		return m.mapTable(gmn)

	case *east.TableHeader:
		return m.mapTableRow(syntax.KindTableHeader, gmNode)

	case *east.TableRow:
		return m.mapTableRow(syntax.KindTableRow, gmNode)

	case *east.TableCell:
		return m.mapTableCell(gmn)

	default:
		// Unknown nodes keep their children under a paragraph.
		node := syntax.NewNode(syntax.KindParagraph, -1, -1)
		m.mapChildren(gmNode, node)
		return m.cover(node)
	}
}

func (m *mapper) mapParagraph(gmNode ast.Node) *syntax.Node {
	from, to, ok := m.linesRange(gmNode.Lines())
	if !ok {
		return nil
	}
	node := syntax.NewNode(syntax.KindParagraph, from, to)
	m.mapChildren(gmNode, node)
	return node
}

func (m *mapper) mapHeading(h *ast.Heading) *syntax.Node {
	node := m.tracked(syntax.KindHeading, h)
	if from, to, ok := m.linesRange(h.Lines()); ok {
		widen(node, from, to)
	}
	node.Block = syntax.NewBlockAttrs().WithHeadingLevel(h.Level)
	m.mapChildren(h, node)
	return node
}

func (m *mapper) mapList(list *ast.List) *syntax.Node {
	node := m.mapContainer(syntax.KindList, list)
	node.Block = syntax.NewBlockAttrs().WithList(&syntax.ListAttrs{
		Ordered: list.IsOrdered(),
		Marker:  list.Marker,
		Start:   list.Start,
		Tight:   list.IsTight,
	})
	return node
}

// mapContainer maps a container block whose range covers its own markers
// and every child.
func (m *mapper) mapContainer(kind syntax.Kind, gmNode ast.Node) *syntax.Node {
	node := m.tracked(kind, gmNode)
	m.mapChildren(gmNode, node)
	return m.cover(node)
}

func (m *mapper) mapFencedCodeBlock(codeBlock *ast.FencedCodeBlock) *syntax.Node {
	node := m.tracked(syntax.KindFencedCode, codeBlock)

	info := ""
	if codeBlock.Info != nil {
		info = string(codeBlock.Info.Value(m.content))
	}
	fenceChar, fenceLength := m.fenceAt(node.From)

	node.Block = syntax.NewBlockAttrs().WithCode(&syntax.CodeAttrs{
		FenceChar:   fenceChar,
		FenceLength: fenceLength,
		Info:        info,
		Content:     m.linesValue(codeBlock.Lines(), false),
	})
	return node
}

// fenceAt reads the fence character and length of the fence line starting at offset.
func (m *mapper) fenceAt(offset int) (byte, int) {
	if offset < 0 {
		return '`', 3
	}
	pos := offset
	for pos < len(m.content) && (m.content[pos] == ' ' || m.content[pos] == '\t') {
		pos++
	}
	if pos >= len(m.content) || (m.content[pos] != '`' && m.content[pos] != '~') {
		return '`', 3
	}
	fenceChar := m.content[pos]
	fenceLength := 0
	for pos < len(m.content) && m.content[pos] == fenceChar {
		fenceLength++
		pos++
	}
	return fenceChar, fenceLength
}

func (m *mapper) mapIndentedCodeBlock(codeBlock *ast.CodeBlock) *syntax.Node {
	node := m.tracked(syntax.KindIndentedCode, codeBlock)
	if from, to, ok := m.linesRange(codeBlock.Lines()); ok {
		widen(node, from, to)
	}
	// The indentation belongs to the block.
	for node.From > 0 && (m.content[node.From-1] == ' ' || m.content[node.From-1] == '\t') {
		node.From--
	}
	node.Block = syntax.NewBlockAttrs().WithCode(&syntax.CodeAttrs{
		Content: m.linesValue(codeBlock.Lines(), true),
	})
	return node
}

func (m *mapper) mapHTMLBlock(html *ast.HTMLBlock) *syntax.Node {
	node := m.tracked(syntax.KindHTMLBlock, html)
	if from, to, ok := m.linesRange(html.Lines()); ok {
		widen(node, from, to)
	}
	if html.HasClosure() {
		node.To = max(node.To, contentEnd(m.content, html.ClosureLine))
	}
	node.Block = syntax.NewBlockAttrs().WithLiteral(node.Text(string(m.content)))
	return node
}

func (m *mapper) mapMathBlock(mb *mathBlock) *syntax.Node {
	node := m.tracked(syntax.KindMathBlock, mb)
	node.Block = syntax.NewBlockAttrs().WithMath(&syntax.MathAttrs{
		Display: true,
		Opener:  mb.opener,
		Content: mb.content(m.content),
	})
	return node
}

func (m *mapper) mapText(t *ast.Text) *syntax.Node {
	seg := t.Segment
	soft := t.SoftLineBreak() && !t.HardLineBreak()
	if seg.Start >= seg.Stop && !soft {
		return nil
	}
	value := string(t.Value(m.content))
	if soft {
		value += "\n"
	}
	node := syntax.NewNode(syntax.KindText, seg.Start, max(seg.Start, seg.Stop))
	node.Inline = syntax.NewInlineAttrs().WithText(value)
	return node
}

// hardBreak spans the break marker after t up to the line terminator.
func (m *mapper) hardBreak(t *ast.Text) *syntax.Node {
	from := t.Segment.Stop
	to := from
	for to < len(m.content) && m.content[to] != '\n' && m.content[to] != '\r' {
		to++
	}
	return syntax.NewNode(syntax.KindHardBreak, from, to)
}

func (m *mapper) mapEmphasis(emphasis *ast.Emphasis) *syntax.Node {
	node := syntax.NewNode(syntax.KindEmphasis, -1, -1)
	node.Inline = syntax.NewInlineAttrs().WithEmphasisLevel(emphasis.Level)
	m.mapChildren(emphasis, node)
	m.cover(node)
	if node.From >= 0 {
		node.From = max(node.From-emphasis.Level, 0)
		node.To = min(node.To+emphasis.Level, len(m.content))
	}
	return node
}

func (m *mapper) mapStrikethrough(s *east.Strikethrough) *syntax.Node {
	node := syntax.NewNode(syntax.KindStrikethrough, -1, -1)
	m.mapChildren(s, node)
	m.cover(node)
	if node.From < 0 {
		return node
	}
	for i := 0; i < 2 && node.From > 0 && m.content[node.From-1] == '~'; i++ {
		node.From--
	}
	for i := 0; i < 2 && node.To < len(m.content) && m.content[node.To] == '~'; i++ {
		node.To++
	}
	return node
}

func (m *mapper) mapCodeSpan(codeSpan *ast.CodeSpan) *syntax.Node {
	node := m.tracked(syntax.KindCodeSpan, codeSpan)

	var buf bytes.Buffer
	for child := codeSpan.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Value(m.content))
		case *ast.String:
			buf.Write(c.Value)
		}
	}
	node.Inline = syntax.NewInlineAttrs().WithText(buf.String())
	return node
}

func (m *mapper) mapLink(kind syntax.Kind, gmNode ast.Node, destination, title []byte) *syntax.Node {
	node := m.tracked(kind, gmNode)
	node.Inline = syntax.NewInlineAttrs().WithLink(&syntax.LinkAttrs{
		Destination: string(destination),
		Title:       string(title),
	})
	m.mapChildren(gmNode, node)
	return node
}

func (m *mapper) mapAutoLink(al *ast.AutoLink) *syntax.Node {
	node := m.tracked(syntax.KindAutoLink, al)
	node.Inline = syntax.NewInlineAttrs().
		WithText(string(al.Label(m.content))).
		WithLink(&syntax.LinkAttrs{Destination: string(al.URL(m.content))})
	return node
}

func (m *mapper) mapTaskCheckBox(cb *east.TaskCheckBox) *syntax.Node {
	node := m.tracked(syntax.KindTaskCheckBox, cb)
	// The recorded span includes the spaces after "[x]".
	node.To = min(node.To, node.From+len("[ ]"))
	node.Inline = syntax.NewInlineAttrs()
	node.Inline.Checked = cb.IsChecked
	return node
}

func (m *mapper) mapTable(table *east.Table) *syntax.Node {
	node := syntax.NewNode(syntax.KindTable, -1, -1)
	alignments := make([]syntax.Alignment, len(table.Alignments))
	for i, a := range table.Alignments {
		alignments[i] = alignment(a)
	}
	node.Block = syntax.NewBlockAttrs()
	node.Block.Alignments = alignments

	m.mapChildren(table, node)
	m.cover(node)

	// A table without body rows still owns its delimiter row.
	if len(node.Children) == 1 && node.To >= 0 {
		next := syntax.NextLineStart(string(m.content), node.To)
		if next < len(m.content) {
			node.To = contentEnd(m.content, text.NewSegment(next, syntax.NextLineStart(string(m.content), next)))
		}
	}
	return node
}

// mapTableRow maps a header or body row; its range runs from the start of
// its line to the last pipe.
func (m *mapper) mapTableRow(kind syntax.Kind, gmNode ast.Node) *syntax.Node {
	node := syntax.NewNode(kind, -1, -1)
	m.mapChildren(gmNode, node)
	m.cover(node)
	if node.From < 0 {
		return node
	}
	for node.From > 0 && isRowFiller(m.content[node.From-1]) {
		node.From--
	}
	for node.To < len(m.content) && isRowFiller(m.content[node.To]) {
		node.To++
	}
	for node.To > node.From && (m.content[node.To-1] == ' ' || m.content[node.To-1] == '\t') {
		node.To--
	}

	// Cells without content sit at the end of the row.
	for _, cell := range node.Children {
		if cell.From < 0 {
			cell.From, cell.To = node.To, node.To
		}
	}
	return node
}

func isRowFiller(c byte) bool {
	return c == ' ' || c == '\t' || c == '|'
}

func (m *mapper) mapTableCell(tc *east.TableCell) *syntax.Node {
	node := syntax.NewNode(syntax.KindTableCell, -1, -1)
	if from, to, ok := m.linesRange(tc.Lines()); ok {
		node.From, node.To = from, to
	}
	node.Block = syntax.NewBlockAttrs()
	node.Block.Alignment = alignment(tc.Alignment)
	m.mapChildren(tc, node)
	return m.cover(node)
}

func alignment(a east.Alignment) syntax.Alignment {
	switch a {
	case east.AlignLeft:
		return syntax.AlignLeft
	case east.AlignCenter:
		return syntax.AlignCenter
	case east.AlignRight:
		return syntax.AlignRight
	case east.AlignNone:
		return syntax.AlignNone
	default:
		return syntax.AlignNone
	}
}

// tracked creates a node of kind over the span recorded for gmNode.
func (m *mapper) tracked(kind syntax.Kind, gmNode ast.Node) *syntax.Node {
	if s, ok := m.spans.lookup(gmNode); ok {
		return syntax.NewNode(kind, s.from, s.to)
	}
	return syntax.NewNode(kind, -1, -1)
}

// widen extends node over [from, to). Unset offsets are -1.
func widen(node *syntax.Node, from, to int) {
	if node.From < 0 || from < node.From {
		node.From = from
	}
	node.To = max(node.To, to)
}

// cover widens node over its children. Unset offsets are -1.
func (m *mapper) cover(node *syntax.Node) *syntax.Node {
	for _, child := range node.Children {
		if child.From >= 0 {
			widen(node, child.From, child.To)
		}
	}
	return node
}

// linesRange returns the range covered by lines, without the trailing
// line terminator and blanks.
func (m *mapper) linesRange(lines *text.Segments) (int, int, bool) {
	if lines == nil || lines.Len() == 0 {
		return 0, 0, false
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	return first.Start, max(first.Start, contentEnd(m.content, last)), true
}

// linesValue joins the values of lines. trimAll removes every trailing
// newline, otherwise only the last one is removed.
func (m *mapper) linesValue(lines *text.Segments, trimAll bool) string {
	var buf bytes.Buffer
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(m.content))
	}
	out := buf.Bytes()
	if trimAll {
		return string(bytes.TrimRight(out, "\r\n"))
	}
	out = bytes.TrimSuffix(out, []byte{'\n'})
	return string(bytes.TrimSuffix(out, []byte{'\r'}))
}
