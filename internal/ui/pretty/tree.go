package pretty

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

// Tree drawing constants.
const (
	branchMid   = "├── "
	branchLast  = "└── "
	indentMid   = "│   "
	indentLast  = "    "
	minPreview  = 16
	spanReserve = 24
)

// TreeFormatter renders AST nodes as an indented tree.
type TreeFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTreeFormatter creates a new tree formatter. A termWidth of zero or
// less uses the default width.
func NewTreeFormatter(styles *Styles, termWidth int) *TreeFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TreeFormatter{styles: styles, termWidth: termWidth}
}

// Format renders nodes as sibling roots.
func (f *TreeFormatter) Format(nodes []mdast.Node) string {
	var builder strings.Builder
	for i, n := range nodes {
		f.write(&builder, n, "", i == len(nodes)-1, true)
	}
	return builder.String()
}

func (f *TreeFormatter) write(builder *strings.Builder, n mdast.Node, prefix string, last, root bool) {
	branch, indent := branchMid, indentMid
	if last {
		branch, indent = branchLast, indentLast
	}
	if root {
		branch, indent = "", ""
	}

	builder.WriteString(f.styles.Branch.Render(prefix + branch))
	builder.WriteString(f.label(n, len(prefix)+len(indent)))
	builder.WriteString("\n")

	children := mdast.Children(n)
	for i, child := range children {
		f.write(builder, child, prefix+indent, i == len(children)-1, false)
	}
}

// label renders the type, span and scalar attributes of n.
//
//nolint:cyclop // closed sum type dispatch
func (f *TreeFormatter) label(n mdast.Node, depth int) string {
	span := n.Pos()
	parts := []string{
		f.styles.NodeType.Render(mdast.Type(n)),
		f.styles.Span.Render(fmt.Sprintf("[%d,%d)", span.Start, span.End)),
	}

	previewWidth := max(minPreview, f.termWidth-depth-spanReserve)
	attr := func(key, value string) {
		parts = append(parts, f.styles.Attribute.Render(key+"=")+value)
	}

	switch n := n.(type) {
	case *mdast.Heading:
		attr("level", strconv.Itoa(n.Level))
	case *mdast.CodeBlock:
		if n.Language != "" {
			attr("lang", n.Language)
		}
		if n.DetectedLanguage != "" && n.DetectedLanguage != n.Language {
			attr("detected", n.DetectedLanguage)
		}
		parts = append(parts, f.styles.Content.Render(quotePreview(n.Content, previewWidth)))
	case *mdast.OrderedList:
		attr("start", strconv.Itoa(n.Start))
		attr("tight", strconv.FormatBool(n.Tight))
	case *mdast.UnorderedList:
		attr("marker", string(n.Marker))
		attr("tight", strconv.FormatBool(n.Tight))
	case *mdast.ListItem:
		if n.Checked != nil {
			attr("checked", strconv.FormatBool(*n.Checked))
		}
	case *mdast.Table:
		attr("columns", strconv.Itoa(len(n.Alignments)))
	case *mdast.TableCell:
		if n.Alignment != "" {
			attr("align", n.Alignment)
		}
	case *mdast.LatexBlock:
		parts = append(parts, f.styles.Math.Render(quotePreview(n.Content, previewWidth)))
	case *mdast.LatexInline:
		parts = append(parts, f.styles.Math.Render(quotePreview(n.Content, previewWidth)))
	case *mdast.InlineCode:
		parts = append(parts, f.styles.Content.Render(quotePreview(n.Content, previewWidth)))
	case *mdast.Link:
		attr("url", n.URL)
	case *mdast.Image:
		attr("url", n.URL)
		if n.Alt != "" {
			attr("alt", quotePreview(n.Alt, previewWidth))
		}
	case *mdast.Citation:
		if id := n.Data.ID(); id != "" {
			parts = append(parts, f.styles.Citation.Render(quotePreview(id, previewWidth)))
		}
		if n.Data.Authoritative {
			parts = append(parts, f.styles.Citation.Render("authoritative"))
		}
	case *mdast.Text:
		parts = append(parts, f.styles.Content.Render(quotePreview(n.Value, previewWidth)))
	default:
	}

	return strings.Join(parts, " ")
}

// quotePreview quotes s and truncates it to maxLen.
func quotePreview(s string, maxLen int) string {
	return truncateString(strconv.Quote(s), maxLen)
}

// TerminalWidth attempts to get the terminal width from the writer.
func TerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
