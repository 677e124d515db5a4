package syntax

import "slices"

// NewNode creates a new node of the specified kind spanning [from, to).
func NewNode(kind Kind, from, to int) *Node {
	return &Node{
		Kind: kind,
		From: from,
		To:   to,
	}
}

// NewDocument creates a new document root node spanning [0, length).
func NewDocument(length int) *Node {
	return NewNode(KindDocument, 0, length)
}

// AppendChild appends a child node to a parent.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}
	parent.Children = append(parent.Children, child)
}

// Shift returns a deep copy of n with every offset moved by delta.
// Attributes are shared with n since they carry no offsets.
func Shift(n *Node, delta int) *Node {
	if n == nil {
		return nil
	}
	shifted := &Node{
		Kind:   n.Kind,
		From:   n.From + delta,
		To:     n.To + delta,
		Block:  n.Block,
		Inline: n.Inline,
	}
	if len(n.Children) > 0 {
		shifted.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			shifted.Children[i] = Shift(child, delta)
		}
	}
	return shifted
}

// Equal reports whether a and b are structurally identical: same kinds,
// offsets and attributes, recursively.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.From != b.From || a.To != b.To {
		return false
	}
	if !equalBlock(a.Block, b.Block) || !equalInline(a.Inline, b.Inline) {
		return false
	}
	return slices.EqualFunc(a.Children, b.Children, Equal)
}

func equalBlock(a, b *BlockAttrs) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.HeadingLevel != b.HeadingLevel || a.Alignment != b.Alignment || a.Literal != b.Literal {
		return false
	}
	if !slices.Equal(a.Alignments, b.Alignments) {
		return false
	}
	if (a.List == nil) != (b.List == nil) || (a.List != nil && *a.List != *b.List) {
		return false
	}
	if (a.Code == nil) != (b.Code == nil) || (a.Code != nil && *a.Code != *b.Code) {
		return false
	}
	return equalMath(a.Math, b.Math)
}

func equalInline(a, b *InlineAttrs) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Text != b.Text || a.EmphasisLevel != b.EmphasisLevel || a.Checked != b.Checked {
		return false
	}
	if (a.Link == nil) != (b.Link == nil) || (a.Link != nil && *a.Link != *b.Link) {
		return false
	}
	return equalMath(a.Math, b.Math)
}

func equalMath(a, b *MathAttrs) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
