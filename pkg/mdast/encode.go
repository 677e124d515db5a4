package mdast

import "github.com/yaklabco/mdstream/pkg/citation"

// ToMap converts n into nested maps suitable for JSON or YAML encoding.
// Every map has "type" and "span" keys; structural nodes add "children".
//
//nolint:cyclop,funlen // closed sum type dispatch
func ToMap(n Node) map[string]any {
	if n == nil {
		return nil
	}
	m := map[string]any{
		"type": Type(n),
		"span": []int{n.Pos().Start, n.Pos().End},
	}

	switch n := n.(type) {
	case *Heading:
		m["level"] = n.Level
	case *CodeBlock:
		setString(m, "language", n.Language)
		setString(m, "detected_language", n.DetectedLanguage)
		setString(m, "info", n.Info)
		m["content"] = n.Content
		m["fenced"] = n.Fenced
	case *OrderedList:
		m["start"] = n.Start
		m["tight"] = n.Tight
	case *UnorderedList:
		m["marker"] = string(n.Marker)
		m["tight"] = n.Tight
	case *ListItem:
		if n.Checked != nil {
			m["checked"] = *n.Checked
		}
	case *Table:
		m["alignments"] = n.Alignments
	case *TableCell:
		m["alignment"] = n.Alignment
	case *LatexBlock:
		m["content"] = n.Content
		m["display"] = n.Display
	case *LatexInline:
		m["content"] = n.Content
		m["display"] = n.Display
	case *InlineCode:
		m["content"] = n.Content
	case *Link:
		m["url"] = n.URL
		setString(m, "title", n.Title)
	case *Image:
		m["url"] = n.URL
		setString(m, "title", n.Title)
		m["alt"] = n.Alt
	case *Citation:
		m["citation"] = citationMap(n.Data)
	case *Text:
		m["value"] = n.Value
	case *Document, *Paragraph, *Blockquote, *TableRow, *HorizontalRule,
		*Bold, *Italic, *Strikethrough, *CitationGroup, *LineBreak:
	default:
	}

	if children := Children(n); len(children) > 0 {
		encoded := make([]map[string]any, len(children))
		for i, child := range children {
			encoded[i] = ToMap(child)
		}
		m["children"] = encoded
	}
	return m
}

// ToMaps converts every node of nodes.
func ToMaps(nodes []Node) []map[string]any {
	out := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		out[i] = ToMap(n)
	}
	return out
}

func citationMap(d citation.Data) map[string]any {
	m := map[string]any{"authoritative": d.Authoritative}
	if d.Title != nil {
		m["title"] = *d.Title
	}
	if d.URL != nil {
		m["url"] = *d.URL
	}
	if d.Favicon != nil {
		m["favicon"] = *d.Favicon
	}
	return m
}

func setString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
