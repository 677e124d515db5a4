// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Tree components
	NodeType  lipgloss.Style
	Span      lipgloss.Style
	Attribute lipgloss.Style
	Content   lipgloss.Style
	Branch    lipgloss.Style
	Math      lipgloss.Style
	Citation  lipgloss.Style

	// Patch operations
	OpAppend  lipgloss.Style
	OpReplace lipgloss.Style
	OpReset   lipgloss.Style

	// Table styles
	TableHeader    lipgloss.Style
	TableSeparator lipgloss.Style
	TableKind      lipgloss.Style

	// Misc
	FilePath lipgloss.Style
	Dim      lipgloss.Style
	Bold     lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

// newColorStyles creates styles with ANSI 256 colors.
func newColorStyles() *Styles {
	return &Styles{
		NodeType:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Span:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Attribute: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Content:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Branch:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Math:      lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		Citation:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),

		OpAppend:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		OpReplace: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		OpReset:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),

		TableHeader:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		TableSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		TableKind:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")),

		FilePath: lipgloss.NewStyle().Bold(true),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:     lipgloss.NewStyle().Bold(true),
	}
}

// newNoColorStyles creates styles with no color formatting.
func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		NodeType:       plain,
		Span:           plain,
		Attribute:      plain,
		Content:        plain,
		Branch:         plain,
		Math:           plain,
		Citation:       plain,
		OpAppend:       plain,
		OpReplace:      plain,
		OpReset:        plain,
		TableHeader:    plain,
		TableSeparator: plain,
		TableKind:      plain,
		FilePath:       plain,
		Dim:            plain,
		Bold:           plain,
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		// Check NO_COLOR environment variable (https://no-color.org/)
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
