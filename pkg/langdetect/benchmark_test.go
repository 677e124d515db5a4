package langdetect_test

import (
	"testing"

	"github.com/yaklabco/mdstream/pkg/langdetect"
)

// Code blocks are re-detected on every flush while they stream, so Detect
// runs once per lex of an unlabeled fence.
func benchmarkDetect(b *testing.B, content string) {
	b.Helper()

	data := []byte(content)
	b.ReportAllocs()
	for b.Loop() {
		langdetect.Detect(data)
	}
}

func BenchmarkDetect_Rule(b *testing.B) {
	benchmarkDetect(b, "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n")
}

func BenchmarkDetect_Shebang(b *testing.B) {
	benchmarkDetect(b, "#!/usr/bin/env bash\nset -euo pipefail\n")
}

func BenchmarkDetect_Classifier(b *testing.B) {
	benchmarkDetect(b, "puts 'hello'\n[1, 2, 3].each do |n|\n  puts n\nend\n")
}

func BenchmarkDetect_Prose(b *testing.B) {
	benchmarkDetect(b, "just a sentence that is not code")
}

func BenchmarkFromInfo(b *testing.B) {
	for b.Loop() {
		langdetect.FromInfo("py")
	}
}
