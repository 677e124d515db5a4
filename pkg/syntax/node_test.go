package syntax_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/mdstream/pkg/syntax"
)

func buildTestTree() *syntax.Node {
	// "# Hi\n\nA *b*"
	doc := syntax.NewDocument(11)

	heading := syntax.NewNode(syntax.KindHeading, 0, 4)
	heading.Block = syntax.NewBlockAttrs().WithHeadingLevel(1)
	syntax.AppendChild(heading, syntax.NewNode(syntax.KindText, 2, 4))
	syntax.AppendChild(doc, heading)

	para := syntax.NewNode(syntax.KindParagraph, 6, 11)
	syntax.AppendChild(para, syntax.NewNode(syntax.KindText, 6, 8))
	emphasis := syntax.NewNode(syntax.KindEmphasis, 8, 11)
	emphasis.Inline = syntax.NewInlineAttrs().WithEmphasisLevel(1)
	syntax.AppendChild(emphasis, syntax.NewNode(syntax.KindText, 9, 10))
	syntax.AppendChild(para, emphasis)
	syntax.AppendChild(doc, para)

	return doc
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind syntax.Kind
		want string
	}{
		{syntax.KindDocument, "Document"},
		{syntax.KindTable, "Table"},
		{syntax.KindMathBlock, "MathBlock"},
		{syntax.KindCitationRef, "CitationRef"},
		{syntax.Kind(999), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestNode_BlockInline(t *testing.T) {
	t.Parallel()

	if !syntax.NewNode(syntax.KindCitationBlock, 0, 0).IsBlock() {
		t.Error("CitationBlock should be a block")
	}
	if !syntax.NewNode(syntax.KindText, 0, 0).IsInline() {
		t.Error("Text should be inline")
	}
	if syntax.NewNode(syntax.KindMathInline, 0, 0).IsBlock() {
		t.Error("MathInline should not be a block")
	}
}

func TestNode_TextAndContains(t *testing.T) {
	t.Parallel()

	source := "hello world"
	n := syntax.NewNode(syntax.KindText, 6, 11)

	if got := n.Text(source); got != "world" {
		t.Errorf("Text() = %q, want %q", got, "world")
	}
	if n.Len() != 5 {
		t.Errorf("Len() = %d, want 5", n.Len())
	}
	if !n.Contains(6) || n.Contains(11) {
		t.Error("Contains() should be half-open")
	}
	if got := syntax.NewNode(syntax.KindText, 6, 20).Text(source); got != "" {
		t.Errorf("out of range Text() = %q, want empty", got)
	}
}

func TestShift(t *testing.T) {
	t.Parallel()

	doc := buildTestTree()
	shifted := syntax.Shift(doc.Children[1], 10)

	if shifted.From != 16 || shifted.To != 21 {
		t.Errorf("shifted range = [%d, %d), want [16, 21)", shifted.From, shifted.To)
	}
	if shifted.Children[1].Children[0].From != 19 {
		t.Errorf("nested child From = %d, want 19", shifted.Children[1].Children[0].From)
	}
	if doc.Children[1].From != 6 {
		t.Error("Shift must not modify the original")
	}
	if shifted.Children[1].Inline != doc.Children[1].Children[1].Inline {
		t.Error("Shift should share attributes")
	}
	if syntax.Shift(nil, 3) != nil {
		t.Error("Shift(nil) should be nil")
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	a := buildTestTree()
	b := buildTestTree()
	if !syntax.Equal(a, b) {
		t.Fatal("identical trees should be equal")
	}

	b.Children[0].Block = syntax.NewBlockAttrs().WithHeadingLevel(2)
	if syntax.Equal(a, b) {
		t.Error("trees with different heading levels should differ")
	}

	c := buildTestTree()
	c.Children[1].Children = c.Children[1].Children[:1]
	if syntax.Equal(a, c) {
		t.Error("trees with different children should differ")
	}

	if !syntax.Equal(syntax.Shift(syntax.Shift(a, 5), -5), a) {
		t.Error("shifting forth and back should give an equal tree")
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()

	doc := buildTestTree()

	var kinds []syntax.Kind
	err := syntax.Walk(doc, func(n *syntax.Node) error {
		kinds = append(kinds, n.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := []syntax.Kind{
		syntax.KindDocument, syntax.KindHeading, syntax.KindText,
		syntax.KindParagraph, syntax.KindText, syntax.KindEmphasis, syntax.KindText,
	}
	if len(kinds) != len(want) {
		t.Fatalf("visited %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	t.Parallel()

	errStop := errors.New("stop")
	visited := 0
	err := syntax.Walk(buildTestTree(), func(n *syntax.Node) error {
		visited++
		if n.Kind == syntax.KindHeading {
			return errStop
		}
		return nil
	})

	if !errors.Is(err, errStop) {
		t.Errorf("Walk() error = %v, want %v", err, errStop)
	}
	if visited != 2 {
		t.Errorf("visited %d nodes, want 2", visited)
	}
}

func TestFindByKindAndCount(t *testing.T) {
	t.Parallel()

	doc := buildTestTree()
	if got := syntax.CountKind(doc, syntax.KindText); got != 3 {
		t.Errorf("CountKind(Text) = %d, want 3", got)
	}
	if got := syntax.FindByKind(doc, syntax.KindEmphasis); len(got) != 1 || got[0].From != 8 {
		t.Errorf("FindByKind(Emphasis) = %v", got)
	}
}

func TestTree(t *testing.T) {
	t.Parallel()

	var nilTree *syntax.Tree
	if nilTree.Blocks() != nil || nilTree.Len() != 0 {
		t.Error("nil tree should have no blocks and zero length")
	}

	source := "a\n\nb"
	tree := syntax.NewTree(source, []*syntax.Node{
		syntax.NewNode(syntax.KindParagraph, 0, 1),
		syntax.NewNode(syntax.KindParagraph, 3, 4),
	})
	if tree.Root.To != len(source) || len(tree.Blocks()) != 2 || tree.Len() != 4 {
		t.Errorf("unexpected tree %+v", tree.Root)
	}
}
