package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdstream/pkg/langdetect"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		// go-enry shebang detection runs before the rules.
		{"bash shebang", "#!/bin/bash\necho hello", "bash"},
		{"sh shebang normalizes to bash", "#!/bin/sh\necho hello", "bash"},
		{"python shebang", "#!/usr/bin/env python3\nprint('hello')", "python"},
		{"shebang beats python body", "#!/bin/bash\ndef foo():\n    pass", "bash"},

		// Textual rules.
		{"go", "package main\n\nfunc main() {}", "go"},
		{"python", "def foo():\n    pass\n\nif __name__ == '__main__':\n    foo()", "python"},
		{"python import", "import numpy as np\nx = np.zeros(3)", "python"},
		{"html", "<!DOCTYPE html>\n<html>\n<body></body>\n</html>", "html"},
		{"json", `{"key": "value", "number": 123}`, "json"},
		{"dockerfile", "FROM golang:1.25\nWORKDIR /app\nCOPY . .\nRUN go build", "dockerfile"},
		{"sql", "select * from users where id = 1;", "sql"},
		{"latex environment", "\\begin{align}\na &= b\n\\end{align}", "latex"},
		{"rust", "fn main() {\n    println!(\"hi\");\n}", "rust"},
		{"typescript", "interface User {\n  name: string;\n}", "typescript"},
		{"javascript", "const x = () => 42;\nconsole.log(x());", "javascript"},
		{"yaml", "key: value\nlist:\n  - one\n  - two", "yaml"},

		// Content cut off mid-stream still resolves once the marker is in.
		{"partial go", "package ma", "go"},
		{"partial json", "[{\"id\": 1,", "json"},

		{"empty", "", langdetect.Unknown},
		{"whitespace", "  \n\t\n", langdetect.Unknown},
		{"prose", "just some text without any code patterns", langdetect.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := langdetect.Detect([]byte(tt.content)); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want string
	}{
		{"go", "go"},
		{"golang", "go"},
		{"py", "python"},
		{"sh", "bash"},
		{"JS", "javascript"},
		{"made-up-lang", "made-up-lang"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, langdetect.FromInfo(tt.word))
		})
	}
}
