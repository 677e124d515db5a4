package syntax

// Tree is the result of parsing one source snapshot.
type Tree struct {
	// Source is the text the tree was parsed from.
	Source string

	// Root is the document node spanning [0, len(Source)).
	Root *Node
}

// NewTree wraps top-level blocks into a tree over source.
func NewTree(source string, blocks []*Node) *Tree {
	root := NewDocument(len(source))
	root.Children = blocks
	return &Tree{Source: source, Root: root}
}

// Blocks returns the top-level block nodes.
func (t *Tree) Blocks() []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return t.Root.Children
}

// Len returns the length of the source the tree spans.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Source)
}
