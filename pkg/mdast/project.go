package mdast

import (
	"strings"

	"github.com/yaklabco/mdstream/pkg/citation"
	"github.com/yaklabco/mdstream/pkg/langdetect"
	"github.com/yaklabco/mdstream/pkg/syntax"
)

// Option configures Project.
type Option func(*projector)

// WithLanguageDetection enables or disables guessing the language of code
// blocks without an info string. Enabled by default.
func WithLanguageDetection(enabled bool) Option {
	return func(p *projector) {
		p.detectLanguage = enabled
	}
}

type projector struct {
	source         string
	detectLanguage bool
}

// Project converts a syntax tree parsed from source into a tagged Document.
// Project is a pure function of its arguments.
func Project(tree *syntax.Tree, source string, opts ...Option) *Document {
	p := &projector{source: source, detectLanguage: true}
	for _, opt := range opts {
		opt(p)
	}
	doc := &Document{Base: Base{Span: Span{End: len(source)}}}
	if tree == nil || tree.Root == nil {
		return doc
	}
	doc.Children = p.blocks(tree.Root.Children)
	return doc
}

func spanOf(n *syntax.Node) Span {
	return Span{Start: n.From, End: n.To}
}

func (p *projector) blocks(nodes []*syntax.Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if projected := p.block(n); projected != nil {
			out = append(out, projected)
		}
	}
	return out
}

func (p *projector) inlines(nodes []*syntax.Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if projected := p.inline(n); projected != nil {
			out = append(out, projected)
		}
	}
	return out
}

//nolint:ireturn,cyclop // closed sum type dispatch
func (p *projector) block(n *syntax.Node) Node {
	base := Base{Span: spanOf(n)}

	switch n.Kind {
	case syntax.KindParagraph:
		return &Paragraph{Base: base, Children: p.inlines(n.Children)}

	case syntax.KindHeading:
		level := 1
		if n.Block != nil {
			level = n.Block.HeadingLevel
		}
		return &Heading{Base: base, Level: level, Children: p.inlines(n.Children)}

	case syntax.KindList:
		return p.list(n)

	case syntax.KindListItem:
		return p.listItem(n)

	case syntax.KindBlockquote:
		return &Blockquote{Base: base, Children: p.blocks(n.Children)}

	case syntax.KindFencedCode, syntax.KindIndentedCode:
		return p.codeBlock(n)

	case syntax.KindThematicBreak:
		return &HorizontalRule{Base: base}

	case syntax.KindHTMLBlock:
		literal := n.Text(p.source)
		if n.Block != nil {
			literal = n.Block.Literal
		}
		if citation.IsBlock(literal) {
			return p.citations(base, literal)
		}
		return &Text{Base: base, Value: literal}

	case syntax.KindCitationBlock:
		literal := n.Text(p.source)
		if n.Block != nil {
			literal = n.Block.Literal
		}
		return p.citations(base, literal)

	case syntax.KindTable:
		return p.table(n)

	case syntax.KindMathBlock:
		content, display := mathOf(n.Block)
		return &LatexBlock{Base: base, Content: content, Display: display}

	case syntax.KindDocument, syntax.KindTableHeader, syntax.KindTableRow, syntax.KindTableCell,
		syntax.KindText, syntax.KindEmphasis, syntax.KindStrikethrough, syntax.KindCodeSpan,
		syntax.KindLink, syntax.KindImage, syntax.KindAutoLink, syntax.KindRawHTML,
		syntax.KindHardBreak, syntax.KindTaskCheckBox, syntax.KindMathInline, syntax.KindCitationRef:
		// Inline content where a block is expected is wrapped in a paragraph.
		if inline := p.inline(n); inline != nil {
			return &Paragraph{Base: base, Children: []Node{inline}}
		}
		return nil

	default:
		return nil
	}
}

//nolint:ireturn,cyclop // closed sum type dispatch
func (p *projector) inline(n *syntax.Node) Node {
	base := Base{Span: spanOf(n)}

	switch n.Kind {
	case syntax.KindText:
		return &Text{Base: base, Value: inlineText(n, p.source)}

	case syntax.KindEmphasis:
		children := p.inlines(n.Children)
		if n.Inline != nil && n.Inline.EmphasisLevel >= 2 {
			return &Bold{Base: base, Children: children}
		}
		return &Italic{Base: base, Children: children}

	case syntax.KindStrikethrough:
		return &Strikethrough{Base: base, Children: p.inlines(n.Children)}

	case syntax.KindCodeSpan:
		return &InlineCode{Base: base, Content: inlineText(n, p.source)}

	case syntax.KindLink:
		url, title := linkOf(n.Inline)
		return &Link{Base: base, URL: url, Title: title, Children: p.inlines(n.Children)}

	case syntax.KindImage:
		url, title := linkOf(n.Inline)
		return &Image{Base: base, URL: url, Title: title, Alt: plainText(n, p.source)}

	case syntax.KindAutoLink:
		url, _ := linkOf(n.Inline)
		label := &Text{Base: Base{Span: Span{Start: n.From + 1, End: max(n.From+1, n.To-1)}}, Value: inlineText(n, p.source)}
		return &Link{Base: base, URL: url, Children: []Node{label}}

	case syntax.KindRawHTML:
		return &Text{Base: base, Value: inlineText(n, p.source)}

	case syntax.KindHardBreak:
		return &LineBreak{Base: base}

	case syntax.KindMathInline:
		var content string
		var display bool
		if n.Inline != nil {
			content, display = mathAttrs(n.Inline.Math)
		}
		return &LatexInline{Base: base, Content: content, Display: display}

	case syntax.KindCitationRef:
		id := ""
		if n.Inline != nil {
			id = n.Inline.Text
		}
		return &Citation{Base: base, Data: citation.Ref(id, n.Text(p.source))}

	case syntax.KindTaskCheckBox:
		// Folded into ListItem.Checked.
		return nil

	case syntax.KindDocument, syntax.KindParagraph, syntax.KindHeading, syntax.KindList,
		syntax.KindListItem, syntax.KindBlockquote, syntax.KindFencedCode, syntax.KindIndentedCode,
		syntax.KindThematicBreak, syntax.KindHTMLBlock, syntax.KindTable, syntax.KindTableHeader,
		syntax.KindTableRow, syntax.KindTableCell, syntax.KindMathBlock, syntax.KindCitationBlock:
		return nil

	default:
		return nil
	}
}

// citations projects raw citation markup: one element becomes a Citation,
// several become a CitationGroup.
//
//nolint:ireturn // closed sum type
func (p *projector) citations(base Base, raw string) Node {
	parts := citation.Split(raw)
	if len(parts) <= 1 {
		return &Citation{Base: base, Data: citation.Parse(strings.TrimSpace(raw))}
	}

	group := &CitationGroup{Base: base}
	offset := base.Span.Start
	search := raw
	for _, part := range parts {
		idx := strings.Index(search, part)
		start := offset + idx
		end := start + len(part)
		group.Citations = append(group.Citations, &Citation{
			Base: Base{Span: Span{Start: start, End: end}},
			Data: citation.Parse(part),
		})
		consumed := idx + len(part)
		offset += consumed
		search = search[consumed:]
	}
	return group
}

//nolint:ireturn // closed sum type
func (p *projector) list(n *syntax.Node) Node {
	base := Base{Span: spanOf(n)}
	items := make([]*ListItem, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Kind == syntax.KindListItem {
			items = append(items, p.listItem(child))
		}
	}

	attrs := &syntax.ListAttrs{}
	if n.Block != nil && n.Block.List != nil {
		attrs = n.Block.List
	}
	if attrs.Ordered {
		return &OrderedList{Base: base, Start: attrs.Start, Tight: attrs.Tight, Items: items}
	}
	return &UnorderedList{Base: base, Marker: attrs.Marker, Tight: attrs.Tight, Items: items}
}

func (p *projector) listItem(n *syntax.Node) *ListItem {
	item := &ListItem{Base: Base{Span: spanOf(n)}}
	if len(n.Children) > 0 {
		first := n.Children[0]
		if len(first.Children) > 0 && first.Children[0].Kind == syntax.KindTaskCheckBox {
			checked := first.Children[0].Inline != nil && first.Children[0].Inline.Checked
			item.Checked = &checked
		}
	}
	item.Children = p.blocks(n.Children)
	return item
}

func (p *projector) codeBlock(n *syntax.Node) *CodeBlock {
	code := &CodeBlock{
		Base:   Base{Span: spanOf(n)},
		Fenced: n.Kind == syntax.KindFencedCode,
	}
	if n.Block != nil && n.Block.Code != nil {
		code.Info = n.Block.Code.Info
		code.Content = n.Block.Code.Content
	}
	if fields := strings.Fields(code.Info); len(fields) > 0 {
		code.Language = fields[0]
	}
	switch {
	case code.Language != "":
		code.DetectedLanguage = langdetect.FromInfo(code.Language)
	case p.detectLanguage && strings.TrimSpace(code.Content) != "":
		if lang := langdetect.Detect([]byte(code.Content)); lang != langdetect.Unknown {
			code.DetectedLanguage = lang
		}
	}
	return code
}

func (p *projector) table(n *syntax.Node) *Table {
	table := &Table{Base: Base{Span: spanOf(n)}}
	if n.Block != nil {
		for _, a := range n.Block.Alignments {
			table.Alignments = append(table.Alignments, a.String())
		}
	}
	for _, child := range n.Children {
		row := p.tableRow(child)
		switch child.Kind {
		case syntax.KindTableHeader:
			table.Header = row
		case syntax.KindTableRow:
			table.Rows = append(table.Rows, row)
		default:
		}
	}
	return table
}

func (p *projector) tableRow(n *syntax.Node) *TableRow {
	row := &TableRow{Base: Base{Span: spanOf(n)}}
	for _, c := range n.Children {
		if c.Kind != syntax.KindTableCell {
			continue
		}
		cell := &TableCell{
			Base:      Base{Span: spanOf(c)},
			Alignment: syntax.AlignNone.String(),
			Children:  p.inlines(c.Children),
		}
		if c.Block != nil {
			cell.Alignment = c.Block.Alignment.String()
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}

func inlineText(n *syntax.Node, source string) string {
	if n.Inline != nil {
		return n.Inline.Text
	}
	return n.Text(source)
}

func linkOf(attrs *syntax.InlineAttrs) (string, string) {
	if attrs == nil || attrs.Link == nil {
		return "", ""
	}
	return attrs.Link.Destination, attrs.Link.Title
}

func mathOf(attrs *syntax.BlockAttrs) (string, bool) {
	if attrs == nil {
		return "", false
	}
	return mathAttrs(attrs.Math)
}

func mathAttrs(m *syntax.MathAttrs) (string, bool) {
	if m == nil {
		return "", false
	}
	return m.Content, m.Display
}

// plainText concatenates the text of n's descendants.
func plainText(n *syntax.Node, source string) string {
	var sb strings.Builder
	//nolint:errcheck,revive // the callback never fails
	syntax.Walk(n, func(c *syntax.Node) error {
		switch c.Kind {
		case syntax.KindText, syntax.KindCodeSpan, syntax.KindRawHTML:
			sb.WriteString(inlineText(c, source))
		default:
		}
		return nil
	})
	return sb.String()
}
