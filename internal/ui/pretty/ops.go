package pretty

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// OpPrinter is a stream.Consumer that writes one styled line per
// operation. With a tree formatter set, each operation is followed by the
// tree of its nodes.
type OpPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	styles *Styles
	tree   *TreeFormatter
	seq    int
}

var _ stream.Consumer = (*OpPrinter)(nil)

// NewOpPrinter creates an operation printer. tree may be nil.
func NewOpPrinter(w io.Writer, styles *Styles, tree *TreeFormatter) *OpPrinter {
	return &OpPrinter{w: w, styles: styles, tree: tree}
}

// Append prints an append operation.
func (p *OpPrinter) Append(_ context.Context, nodes []mdast.Node) error {
	return p.print(stream.OpAppend, nodes)
}

// Replace prints a replace operation.
func (p *OpPrinter) Replace(_ context.Context, nodes []mdast.Node) error {
	return p.print(stream.OpReplace, nodes)
}

// Reset prints a reset operation.
func (p *OpPrinter) Reset(_ context.Context) error {
	return p.print(stream.OpReset, nil)
}

func (p *OpPrinter) print(kind stream.OpKind, nodes []mdast.Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	line := fmt.Sprintf("%s %s %s",
		p.styles.Dim.Render(fmt.Sprintf("%4d", p.seq)),
		p.opStyle(kind).Render(fmt.Sprintf("%-7s", kind)),
		p.styles.NodeType.Render(summarize(nodes)),
	)
	if _, err := fmt.Fprintln(p.w, line); err != nil {
		return fmt.Errorf("write operation: %w", err)
	}

	if p.tree != nil && len(nodes) > 0 {
		if _, err := io.WriteString(p.w, indentLines(p.tree.Format(nodes), "     ")); err != nil {
			return fmt.Errorf("write tree: %w", err)
		}
	}
	return nil
}

func (p *OpPrinter) opStyle(kind stream.OpKind) lipgloss.Style {
	switch kind {
	case stream.OpAppend:
		return p.styles.OpAppend
	case stream.OpReplace:
		return p.styles.OpReplace
	default:
		return p.styles.OpReset
	}
}

// summarize lists node types, collapsing runs of the same type.
func summarize(nodes []mdast.Node) string {
	if len(nodes) == 0 {
		return "-"
	}
	var parts []string
	for i := 0; i < len(nodes); {
		name := mdast.Type(nodes[i])
		j := i + 1
		for j < len(nodes) && mdast.Type(nodes[j]) == name {
			j++
		}
		if run := j - i; run > 1 {
			name = fmt.Sprintf("%s×%d", name, run)
		}
		parts = append(parts, name)
		i = j
	}
	return strings.Join(parts, ", ")
}

func indentLines(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var builder strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		builder.WriteString(prefix)
		builder.WriteString(line)
	}
	return builder.String()
}
