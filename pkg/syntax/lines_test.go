package syntax_test

import (
	"testing"

	"github.com/yaklabco/mdstream/pkg/syntax"
)

func TestBuildLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected []syntax.LineInfo
	}{
		{
			name:     "empty content",
			content:  "",
			expected: []syntax.LineInfo{},
		},
		{
			name:    "single line no newline",
			content: "hello",
			expected: []syntax.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 5},
			},
		},
		{
			name:    "trailing newline adds no empty line",
			content: "hello\n",
			expected: []syntax.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 6},
			},
		},
		{
			name:    "CRLF",
			content: "line1\r\nline2",
			expected: []syntax.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 7},
				{StartOffset: 7, NewlineStart: 12, EndOffset: 12},
			},
		},
		{
			name:    "blank line",
			content: "a\n\nb",
			expected: []syntax.LineInfo{
				{StartOffset: 0, NewlineStart: 1, EndOffset: 2},
				{StartOffset: 2, NewlineStart: 2, EndOffset: 3},
				{StartOffset: 3, NewlineStart: 4, EndOffset: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := syntax.BuildLines(tt.content)
			if len(got) != len(tt.expected) {
				t.Fatalf("BuildLines() returned %d lines, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("line %d = %+v, want %+v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLineInfo_ContentAndBlank(t *testing.T) {
	t.Parallel()

	source := "abc\r\n \t\nx"
	lines := syntax.BuildLines(source)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	if got := lines[0].Content(source); got != "abc" {
		t.Errorf("Content() = %q, want %q", got, "abc")
	}
	if lines[0].IsBlank(source) {
		t.Error("line 0 should not be blank")
	}
	if !lines[1].IsBlank(source) {
		t.Error("line 1 should be blank")
	}
}

func TestLineIndex(t *testing.T) {
	t.Parallel()

	source := "ab\ncd\n"
	lines := syntax.BuildLines(source)

	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{2, 0},
		{3, 1},
		{5, 1},
		{6, -1},
		{-1, -1},
	}

	for _, tt := range tests {
		if got := syntax.LineIndex(lines, tt.offset); got != tt.want {
			t.Errorf("LineIndex(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestNextLineStart(t *testing.T) {
	t.Parallel()

	source := "ab\ncd"
	tests := []struct {
		offset int
		want   int
	}{
		{0, 3},
		{2, 3},
		{3, 5},
		{5, 5},
	}

	for _, tt := range tests {
		if got := syntax.NextLineStart(source, tt.offset); got != tt.want {
			t.Errorf("NextLineStart(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
