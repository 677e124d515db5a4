package mdast

// Shift returns a deep copy of n with every span moved by delta bytes.
// A zero delta returns n itself.
//
//nolint:ireturn,cyclop,funlen // closed sum type dispatch
func Shift(n Node, delta int) Node {
	if n == nil || delta == 0 {
		return n
	}
	base := Base{Span: Span{Start: n.Pos().Start + delta, End: n.Pos().End + delta}}

	switch n := n.(type) {
	case *Document:
		return &Document{Base: base, Children: shiftAll(n.Children, delta)}
	case *Heading:
		return &Heading{Base: base, Level: n.Level, Children: shiftAll(n.Children, delta)}
	case *Paragraph:
		return &Paragraph{Base: base, Children: shiftAll(n.Children, delta)}
	case *CodeBlock:
		c := *n
		c.Base = base
		return &c
	case *Blockquote:
		return &Blockquote{Base: base, Children: shiftAll(n.Children, delta)}
	case *OrderedList:
		return &OrderedList{Base: base, Start: n.Start, Tight: n.Tight, Items: shiftItems(n.Items, delta)}
	case *UnorderedList:
		return &UnorderedList{Base: base, Marker: n.Marker, Tight: n.Tight, Items: shiftItems(n.Items, delta)}
	case *ListItem:
		return shiftItem(n, delta)
	case *Table:
		t := &Table{Base: base, Alignments: n.Alignments}
		if n.Header != nil {
			t.Header = shiftRow(n.Header, delta)
		}
		for _, row := range n.Rows {
			t.Rows = append(t.Rows, shiftRow(row, delta))
		}
		return t
	case *TableRow:
		return shiftRow(n, delta)
	case *TableCell:
		return shiftCell(n, delta)
	case *HorizontalRule:
		return &HorizontalRule{Base: base}
	case *LatexBlock:
		return &LatexBlock{Base: base, Content: n.Content, Display: n.Display}
	case *LatexInline:
		return &LatexInline{Base: base, Content: n.Content, Display: n.Display}
	case *Bold:
		return &Bold{Base: base, Children: shiftAll(n.Children, delta)}
	case *Italic:
		return &Italic{Base: base, Children: shiftAll(n.Children, delta)}
	case *Strikethrough:
		return &Strikethrough{Base: base, Children: shiftAll(n.Children, delta)}
	case *InlineCode:
		return &InlineCode{Base: base, Content: n.Content}
	case *Link:
		return &Link{Base: base, URL: n.URL, Title: n.Title, Children: shiftAll(n.Children, delta)}
	case *Image:
		return &Image{Base: base, URL: n.URL, Title: n.Title, Alt: n.Alt}
	case *Citation:
		return &Citation{Base: base, Data: n.Data}
	case *CitationGroup:
		g := &CitationGroup{Base: base}
		for _, c := range n.Citations {
			g.Citations = append(g.Citations, &Citation{
				Base: Base{Span: Span{Start: c.Span.Start + delta, End: c.Span.End + delta}},
				Data: c.Data,
			})
		}
		return g
	case *LineBreak:
		return &LineBreak{Base: base}
	case *Text:
		return &Text{Base: base, Value: n.Value}
	default:
		return n
	}
}

// ShiftAll shifts every node of nodes by delta.
func ShiftAll(nodes []Node, delta int) []Node {
	if delta == 0 {
		return nodes
	}
	return shiftAll(nodes, delta)
}

func shiftAll(nodes []Node, delta int) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Shift(n, delta)
	}
	return out
}

func shiftItems(items []*ListItem, delta int) []*ListItem {
	if items == nil {
		return nil
	}
	out := make([]*ListItem, len(items))
	for i, item := range items {
		out[i] = shiftItem(item, delta)
	}
	return out
}

func shiftItem(item *ListItem, delta int) *ListItem {
	return &ListItem{
		Base:     Base{Span: Span{Start: item.Span.Start + delta, End: item.Span.End + delta}},
		Checked:  item.Checked,
		Children: shiftAll(item.Children, delta),
	}
}

func shiftRow(row *TableRow, delta int) *TableRow {
	out := &TableRow{Base: Base{Span: Span{Start: row.Span.Start + delta, End: row.Span.End + delta}}}
	for _, cell := range row.Cells {
		out.Cells = append(out.Cells, shiftCell(cell, delta))
	}
	return out
}

func shiftCell(cell *TableCell, delta int) *TableCell {
	return &TableCell{
		Base:      Base{Span: Span{Start: cell.Span.Start + delta, End: cell.Span.End + delta}},
		Alignment: cell.Alignment,
		Children:  shiftAll(cell.Children, delta),
	}
}
