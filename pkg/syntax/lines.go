package syntax

import "sort"

// LineInfo holds the offsets of a single source line.
type LineInfo struct {
	// StartOffset is the offset of the first byte of the line.
	StartOffset int

	// NewlineStart is the offset of the line terminator (\n or \r\n),
	// or the end of content for an unterminated last line.
	NewlineStart int

	// EndOffset is the offset just past the line terminator.
	EndOffset int
}

// Content returns the line without its terminator.
func (l LineInfo) Content(source string) string {
	return source[l.StartOffset:l.NewlineStart]
}

// IsBlank returns true if the line holds only spaces and tabs.
func (l LineInfo) IsBlank(source string) bool {
	for i := l.StartOffset; i < l.NewlineStart; i++ {
		if source[i] != ' ' && source[i] != '\t' {
			return false
		}
	}
	return true
}

// BuildLines constructs line metadata from source.
// It handles both LF (\n) and CRLF (\r\n) line endings.
// A trailing newline does not produce an extra empty line.
func BuildLines(source string) []LineInfo {
	if len(source) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx := 0; idx < len(source); idx++ {
		if source[idx] != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && source[idx-1] == '\r' {
			newlineStart = idx - 1
		}

		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	if lineStart < len(source) {
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: len(source),
			EndOffset:    len(source),
		})
	}

	return lines
}

// LineIndex returns the index of the line containing offset,
// or -1 if offset lies outside the lines.
func LineIndex(lines []LineInfo, offset int) int {
	idx := sort.Search(len(lines), func(i int) bool {
		return lines[i].EndOffset > offset
	})
	if idx >= len(lines) || offset < lines[idx].StartOffset {
		return -1
	}
	return idx
}

// NextLineStart returns the offset of the line following the one that
// contains offset, or len(source) when there is none.
func NextLineStart(source string, offset int) int {
	for i := max(offset, 0); i < len(source); i++ {
		if source[i] == '\n' {
			return i + 1
		}
	}
	return len(source)
}
