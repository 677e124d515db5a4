// Package mdast provides the public tagged Markdown AST.
//
// Node is a closed sum type: only the types declared in this package
// implement it. Every node carries the byte Span it covers in the source it
// was projected from. Trees are produced by Project and never mutated
// afterwards.
package mdast

import (
	"github.com/yaklabco/mdstream/pkg/citation"
)

// Span is a half-open byte range [Start, End) of the source.
type Span struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty returns true if the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains returns true if offset lies within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Node is implemented by every AST node type in this package.
type Node interface {
	// Pos returns the span the node covers.
	Pos() Span

	mdastNode()
}

// Base holds the fields shared by all nodes.
type Base struct {
	Span Span
}

// Pos returns the span the node covers.
func (b Base) Pos() Span { return b.Span }

func (Base) mdastNode() {}

// Document is the root of a projected tree.
type Document struct {
	Base
	Children []Node
}

// Heading is an ATX or setext heading.
type Heading struct {
	Base
	Level    int
	Children []Node
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Base
	Children []Node
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Base

	// Language is the first word of the fence info string.
	Language string

	// DetectedLanguage is the canonical tag of Language, or a guess from
	// Content when Language is empty and detection is enabled.
	DetectedLanguage string

	// Info is the complete fence info string.
	Info string

	// Content is the code without fences.
	Content string

	// Fenced is false for indented code.
	Fenced bool
}

// Blockquote is a '>' quoted block.
type Blockquote struct {
	Base
	Children []Node
}

// OrderedList is a numbered list.
type OrderedList struct {
	Base
	Start int
	Tight bool
	Items []*ListItem
}

// UnorderedList is a bullet list.
type UnorderedList struct {
	Base
	Marker byte
	Tight  bool
	Items  []*ListItem
}

// ListItem is one item of a list.
type ListItem struct {
	Base

	// Checked is nil unless the item is a task list item.
	Checked  *bool
	Children []Node
}

// Table is a GFM table with a header row and body rows.
type Table struct {
	Base
	Alignments []string
	Header     *TableRow
	Rows       []*TableRow
}

// TableRow is one row of a table.
type TableRow struct {
	Base
	Cells []*TableCell
}

// TableCell is one cell of a table row.
type TableCell struct {
	Base
	Alignment string
	Children  []Node
}

// HorizontalRule is a thematic break.
type HorizontalRule struct {
	Base
}

// LatexBlock is display math on its own lines.
type LatexBlock struct {
	Base
	Content string
	Display bool
}

// LatexInline is math inside a line of text.
type LatexInline struct {
	Base
	Content string
	Display bool
}

// Bold is strong emphasis.
type Bold struct {
	Base
	Children []Node
}

// Italic is regular emphasis.
type Italic struct {
	Base
	Children []Node
}

// Strikethrough is GFM strikethrough.
type Strikethrough struct {
	Base
	Children []Node
}

// InlineCode is a code span.
type InlineCode struct {
	Base
	Content string
}

// Link is an inline link or autolink.
type Link struct {
	Base
	URL      string
	Title    string
	Children []Node
}

// Image is an inline image.
type Image struct {
	Base
	URL   string
	Title string
	Alt   string
}

// Citation is one citation element or an inline [@id] reference.
type Citation struct {
	Base
	Data citation.Data
}

// CitationGroup holds adjacent citation elements.
type CitationGroup struct {
	Base
	Citations []*Citation
}

// LineBreak is a hard line break.
type LineBreak struct {
	Base
}

// Text is literal text. Raw HTML that is not a citation also projects to
// Text carrying the markup.
type Text struct {
	Base
	Value string
}

// Type returns the name of the node's type.
func Type(n Node) string {
	switch n.(type) {
	case *Document:
		return "Document"
	case *Heading:
		return "Heading"
	case *Paragraph:
		return "Paragraph"
	case *CodeBlock:
		return "CodeBlock"
	case *Blockquote:
		return "Blockquote"
	case *OrderedList:
		return "OrderedList"
	case *UnorderedList:
		return "UnorderedList"
	case *ListItem:
		return "ListItem"
	case *Table:
		return "Table"
	case *TableRow:
		return "TableRow"
	case *TableCell:
		return "TableCell"
	case *HorizontalRule:
		return "HorizontalRule"
	case *LatexBlock:
		return "LatexBlock"
	case *LatexInline:
		return "LatexInline"
	case *Bold:
		return "Bold"
	case *Italic:
		return "Italic"
	case *Strikethrough:
		return "Strikethrough"
	case *InlineCode:
		return "InlineCode"
	case *Link:
		return "Link"
	case *Image:
		return "Image"
	case *Citation:
		return "Citation"
	case *CitationGroup:
		return "CitationGroup"
	case *LineBreak:
		return "LineBreak"
	case *Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// IsGrowable reports whether later text can still extend n without a
// blank line: tables and citations.
func IsGrowable(n Node) bool {
	switch n.(type) {
	case *Table, *Citation, *CitationGroup:
		return true
	default:
		return false
	}
}

// Children returns the direct children of n in document order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Document:
		return n.Children
	case *Heading:
		return n.Children
	case *Paragraph:
		return n.Children
	case *Blockquote:
		return n.Children
	case *OrderedList:
		return itemNodes(n.Items)
	case *UnorderedList:
		return itemNodes(n.Items)
	case *ListItem:
		return n.Children
	case *Table:
		nodes := make([]Node, 0, len(n.Rows)+1)
		if n.Header != nil {
			nodes = append(nodes, n.Header)
		}
		for _, row := range n.Rows {
			nodes = append(nodes, row)
		}
		return nodes
	case *TableRow:
		nodes := make([]Node, len(n.Cells))
		for i, cell := range n.Cells {
			nodes[i] = cell
		}
		return nodes
	case *TableCell:
		return n.Children
	case *Bold:
		return n.Children
	case *Italic:
		return n.Children
	case *Strikethrough:
		return n.Children
	case *Link:
		return n.Children
	case *CitationGroup:
		nodes := make([]Node, len(n.Citations))
		for i, c := range n.Citations {
			nodes[i] = c
		}
		return nodes
	case *CodeBlock, *HorizontalRule, *LatexBlock, *LatexInline, *InlineCode,
		*Image, *Citation, *LineBreak, *Text:
		return nil
	default:
		return nil
	}
}

func itemNodes(items []*ListItem) []Node {
	nodes := make([]Node, len(items))
	for i, item := range items {
		nodes[i] = item
	}
	return nodes
}
