package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/mdstream/pkg/region"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 5 // KIND, START, END, LEN, PREVIEW
	minKindWidth     = 8
	minOffsetWidth   = 5
	minPreviewWidth  = 20
	heavySeparator   = "="
	defaultTermWidth = 100
)

// RegionRow is a single row in the region table.
type RegionRow struct {
	Kind    string
	Start   string
	End     string
	Len     string
	Preview string
}

// TableFormatter formats detected regions as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

// FormatRegions formats the regions of source as a table followed by a
// summary line. It returns the empty string when there are no regions.
func (t *TableFormatter) FormatRegions(source string, regions []region.Region) string {
	if len(regions) == 0 {
		return ""
	}

	rows := make([]RegionRow, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, RegionRow{
			Kind:    r.Kind.String(),
			Start:   strconv.Itoa(r.Start),
			End:     strconv.Itoa(r.End),
			Len:     strconv.Itoa(r.Len()),
			Preview: strconv.Quote(source[r.Start:r.End]),
		})
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSummary(regions))
	builder.WriteString("\n")

	return builder.String()
}

type columnWidths struct {
	kind    int
	offset  int
	preview int
}

// calculateColumnWidths determines column widths based on content.
func (t *TableFormatter) calculateColumnWidths(rows []RegionRow) columnWidths {
	widths := columnWidths{
		kind:    minKindWidth,
		offset:  minOffsetWidth,
		preview: minPreviewWidth,
	}

	for _, row := range rows {
		widths.kind = max(widths.kind, len(row.Kind))
		widths.offset = max(widths.offset, len(row.Start), len(row.End), len(row.Len))
		widths.preview = max(widths.preview, len(row.Preview))
	}

	// Constrain to terminal width by shrinking the preview.
	if total := t.calculateTotalWidth(widths); total > t.termWidth {
		widths.preview = max(minPreviewWidth, widths.preview-(total-t.termWidth))
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.kind + 3*widths.offset + widths.preview + tablePadding*tableColumnCount
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %*s  %*s  %*s  %-*s",
		widths.kind, "KIND",
		widths.offset, "START",
		widths.offset, "END",
		widths.offset, "LEN",
		widths.preview, "PREVIEW",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, t.calculateTotalWidth(widths)))
}

// formatRow formats a single table row.
func (t *TableFormatter) formatRow(row RegionRow, widths columnWidths) string {
	return fmt.Sprintf(" %s  %*s  %*s  %*s  %s",
		t.styles.TableKind.Render(fmt.Sprintf("%-*s", widths.kind, row.Kind)),
		widths.offset, row.Start,
		widths.offset, row.End,
		widths.offset, row.Len,
		t.styles.Content.Render(truncateString(row.Preview, widths.preview)),
	)
}

// formatSummary counts regions and covered bytes.
func (t *TableFormatter) formatSummary(regions []region.Region) string {
	covered := 0
	for _, r := range regions {
		covered += r.Len()
	}
	return t.styles.Dim.Render(fmt.Sprintf(" %d regions | %d bytes", len(regions), covered))
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}
