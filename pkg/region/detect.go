package region

import (
	"regexp"
	"strings"

	"github.com/yaklabco/mdstream/pkg/syntax"
)

//nolint:gochecknoglobals // compiled patterns are process-wide.
var (
	tableSeparatorPattern = regexp.MustCompile(`^\s*\|?[\s\-:|]+\|\s*$`)
	dollarInlinePattern   = regexp.MustCompile(`(?s)(?:^|\s)(\$.+?\$)(?:\s|$)`)
	citationOpenPattern   = regexp.MustCompile(`(?i)<citation\b[^>]*>`)
	citationClosePattern  = regexp.MustCompile(`(?i)</citation\s*>`)
)

// DetectTables finds runs of lines that contain '|' or look like a table
// separator row. Blank lines inside a run do not end it; the first
// non-blank line without table syntax does. A run still open at the end of
// source extends to the end.
func DetectTables(source string) []Region {
	var regions []Region
	inTable := false
	start, lastEnd := 0, 0

	for _, line := range syntax.BuildLines(source) {
		content := line.Content(source)
		switch {
		case strings.Contains(content, "|") || tableSeparatorPattern.MatchString(content):
			if !inTable {
				inTable = true
				start = line.StartOffset
			}
			lastEnd = line.EndOffset
		case line.IsBlank(source):
		case inTable:
			regions = append(regions, Region{Start: start, End: lastEnd, Kind: KindTable})
			inTable = false
		}
	}

	if inTable {
		regions = append(regions, Region{Start: start, End: len(source), Kind: KindTable})
	}
	return regions
}

// DetectCodeFences finds fenced code blocks. A fence opens on a line that
// starts with three or more backticks or tildes and closes on a line
// starting with at least as many of the same character. An unclosed fence
// extends to the end of source.
func DetectCodeFences(source string) []Region {
	var regions []Region
	var fenceChar byte
	fenceLen, start := 0, 0

	for _, line := range syntax.BuildLines(source) {
		char, length := fenceRun(line.Content(source))
		if length < 3 {
			continue
		}
		if fenceLen == 0 {
			fenceChar, fenceLen, start = char, length, line.StartOffset
			continue
		}
		if char == fenceChar && length >= fenceLen {
			regions = append(regions, Region{Start: start, End: line.EndOffset, Kind: KindCodeFence})
			fenceLen = 0
		}
	}

	if fenceLen > 0 {
		regions = append(regions, Region{Start: start, End: len(source), Kind: KindCodeFence})
	}
	return regions
}

func fenceRun(line string) (byte, int) {
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return 0, 0
	}
	n := 1
	for n < len(line) && line[n] == line[0] {
		n++
	}
	return line[0], n
}

// DetectLatex finds $$...$$ and \[...\] display math, \(...\) inline math,
// and $...$ inline math set off by whitespace or line boundaries. An
// unclosed delimiter extends to the end of source.
func DetectLatex(source string) []Region {
	var regions []Region
	regions = append(regions, delimited(source, "$$", "$$", KindLatex)...)
	regions = append(regions, delimited(source, `\[`, `\]`, KindLatex)...)
	regions = append(regions, delimited(source, `\(`, `\)`, KindLatexInline)...)

	for _, loc := range dollarInlinePattern.FindAllStringSubmatchIndex(source, -1) {
		regions = append(regions, Region{Start: loc[2], End: loc[3], Kind: KindLatexInline})
	}
	return regions
}

func delimited(source, open, closing string, kind Kind) []Region {
	var regions []Region
	pos := 0
	for pos < len(source) {
		start := strings.Index(source[pos:], open)
		if start < 0 {
			break
		}
		start += pos
		end := strings.Index(source[start+len(open):], closing)
		if end < 0 {
			regions = append(regions, Region{Start: start, End: len(source), Kind: kind})
			break
		}
		pos = start + len(open) + end + len(closing)
		regions = append(regions, Region{Start: start, End: pos, Kind: kind})
	}
	return regions
}

// DetectCitations finds <citation>...</citation> elements. Elements
// separated by blanks and at most one line break form one run and one
// region, since the grammar groups them into a single block. An unclosed
// element extends to the end of source.
func DetectCitations(source string) []Region {
	var regions []Region
	pos := 0
	for pos < len(source) {
		open := citationOpenPattern.FindStringIndex(source[pos:])
		if open == nil {
			break
		}
		start := pos + open[0]
		bodyStart := pos + open[1]
		closing := citationClosePattern.FindStringIndex(source[bodyStart:])
		if closing == nil {
			regions = appendCitation(regions, source, Region{Start: start, End: len(source), Kind: KindCitation})
			break
		}
		pos = bodyStart + closing[1]
		regions = appendCitation(regions, source, Region{Start: start, End: pos, Kind: KindCitation})
	}
	return regions
}

// appendCitation extends the last region with r when only a line gap
// separates them.
func appendCitation(regions []Region, source string, r Region) []Region {
	if n := len(regions); n > 0 && lineGap(source[regions[n-1].End:r.Start]) {
		regions[n-1].End = r.End
		return regions
	}
	return append(regions, r)
}

// lineGap reports whether gap holds only spaces, tabs and at most one line
// break.
func lineGap(gap string) bool {
	gap = strings.TrimLeft(gap, " \t")
	gap = strings.TrimPrefix(gap, "\r")
	gap = strings.TrimPrefix(gap, "\n")
	return strings.TrimLeft(gap, " \t") == ""
}
