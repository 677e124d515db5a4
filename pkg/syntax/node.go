// Package syntax defines the concrete syntax tree produced by the grammar engine.
//
// Every node carries absolute byte offsets into the source it was parsed from.
// Nodes are never mutated once a parse returns, so subtrees may be shared
// between the trees of successive incremental parses.
package syntax

// Kind classifies the type of a syntax node.
type Kind uint16

// Node kinds for block-level and inline-level elements.
const (
	KindDocument Kind = iota

	// Block-level nodes.
	KindParagraph
	KindHeading
	KindList
	KindListItem
	KindBlockquote
	KindFencedCode
	KindIndentedCode
	KindThematicBreak
	KindHTMLBlock
	KindTable
	KindTableHeader
	KindTableRow
	KindTableCell
	KindMathBlock
	KindCitationBlock

	// Inline-level nodes.
	KindText
	KindEmphasis
	KindStrikethrough
	KindCodeSpan
	KindLink
	KindImage
	KindAutoLink
	KindRawHTML
	KindHardBreak
	KindTaskCheckBox
	KindMathInline
	KindCitationRef
)

var kindNames = [...]string{
	KindDocument:      "Document",
	KindParagraph:     "Paragraph",
	KindHeading:       "Heading",
	KindList:          "List",
	KindListItem:      "ListItem",
	KindBlockquote:    "Blockquote",
	KindFencedCode:    "FencedCode",
	KindIndentedCode:  "IndentedCode",
	KindThematicBreak: "ThematicBreak",
	KindHTMLBlock:     "HTMLBlock",
	KindTable:         "Table",
	KindTableHeader:   "TableHeader",
	KindTableRow:      "TableRow",
	KindTableCell:     "TableCell",
	KindMathBlock:     "MathBlock",
	KindCitationBlock: "CitationBlock",
	KindText:          "Text",
	KindEmphasis:      "Emphasis",
	KindStrikethrough: "Strikethrough",
	KindCodeSpan:      "CodeSpan",
	KindLink:          "Link",
	KindImage:         "Image",
	KindAutoLink:      "AutoLink",
	KindRawHTML:       "RawHTML",
	KindHardBreak:     "HardBreak",
	KindTaskCheckBox:  "TaskCheckBox",
	KindMathInline:    "MathInline",
	KindCitationRef:   "CitationRef",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is a single node of the concrete syntax tree.
type Node struct {
	// Kind identifies what type of node this is.
	Kind Kind

	// From and To delimit the node in the source, To exclusive.
	From int
	To   int

	// Children are the ordered child nodes.
	Children []*Node

	// Block holds attributes for block-level nodes.
	Block *BlockAttrs

	// Inline holds attributes for inline-level nodes.
	Inline *InlineAttrs
}

// IsBlock returns true if this is a block-level node.
func (n *Node) IsBlock() bool {
	return n.Kind <= KindCitationBlock
}

// IsInline returns true if this is an inline-level node.
func (n *Node) IsInline() bool {
	return n.Kind > KindCitationBlock
}

// Len returns the length of the node in bytes.
func (n *Node) Len() int {
	return n.To - n.From
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Text returns the source slice covered by the node.
// Returns an empty string if the node lies outside source.
func (n *Node) Text(source string) string {
	if n.From < 0 || n.To > len(source) || n.From > n.To {
		return ""
	}
	return source[n.From:n.To]
}

// Contains returns true if offset lies within the node.
func (n *Node) Contains(offset int) bool {
	return offset >= n.From && offset < n.To
}
