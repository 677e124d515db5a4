// Package langdetect guesses the language of code block content.
// It uses go-enry for shebangs, aliases and the statistical classifier,
// with a table of cheap textual rules tried first. The projector uses it to
// fill in the language of code blocks streamed without an info string.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Unknown is returned when no language can be determined.
const Unknown = "text"

// Fence tags returned by the rules.
const (
	langGo         = "go"
	langPython     = "python"
	langJavaScript = "javascript"
	langTypeScript = "typescript"
	langJSON       = "json"
	langYAML       = "yaml"
	langHTML       = "html"
	langSQL        = "sql"
	langRust       = "rust"
	langDockerfile = "dockerfile"
	langLaTeX      = "latex"
	langBash       = "bash"
)

// sample holds the views of the content the rules inspect.
type sample struct {
	raw     []byte
	text    string
	trimmed []byte
}

// rule reports whether a sample is written in lang.
type rule struct {
	lang  string
	match func(s sample) bool
}

// rules are tried in order; the first match wins.
//
//nolint:gochecknoglobals // static rule table
var rules = []rule{
	{langGo, isGo},
	{langPython, isPython},
	{langHTML, isHTML},
	{langJSON, isJSON},
	{langDockerfile, isDockerfile},
	{langSQL, isSQL},
	{langLaTeX, isLaTeX},
	{langRust, isRust},
	{langTypeScript, isTypeScript},
	{langJavaScript, isJavaScript},
	{langYAML, isYAML},
}

// classifierCandidates bounds the go-enry classifier to languages that
// commonly appear in chat output.
//
//nolint:gochecknoglobals // static candidate list
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile", "TeX",
}

// Detect returns the fence tag of the language content is written in,
// or Unknown.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return Unknown
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	s := sample{raw: content, text: string(content), trimmed: bytes.TrimSpace(content)}
	for _, r := range rules {
		if r.match(s) {
			return r.lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return Unknown
}

// FromInfo maps a fence info word such as "py" or "golang" to the fence tag
// Detect would return, trying language aliases and then file extensions.
// Unrecognized words are returned lowercased.
func FromInfo(word string) string {
	if word == "" {
		return ""
	}
	if lang, ok := enry.GetLanguageByAlias(word); ok {
		return normalize(lang)
	}
	if langs := enry.GetLanguagesByExtension("snippet."+word, nil, nil); len(langs) == 1 {
		return normalize(langs[0])
	}
	return strings.ToLower(word)
}

func isGo(s sample) bool {
	return bytes.HasPrefix(s.trimmed, []byte("package "))
}

func isPython(s sample) bool {
	if strings.Contains(s.text, "def ") && strings.Contains(s.text, "):") {
		return true
	}
	// Go imports use "import (".
	if strings.Contains(s.text, "import ") && !strings.Contains(s.text, "import (") {
		if strings.Contains(s.text, "from ") || strings.HasPrefix(strings.TrimSpace(s.text), "import ") {
			return true
		}
	}
	return strings.Contains(s.text, "__name__") || strings.Contains(s.text, "__main__")
}

func isHTML(s sample) bool {
	lower := bytes.ToLower(s.trimmed)
	for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return true
		}
	}
	return false
}

func isJSON(s sample) bool {
	return (bytes.HasPrefix(s.trimmed, []byte("{")) || bytes.HasPrefix(s.trimmed, []byte("["))) &&
		bytes.Contains(s.trimmed, []byte(`"`))
}

func isDockerfile(s sample) bool {
	return bytes.HasPrefix(s.trimmed, []byte("FROM ")) ||
		(bytes.Contains(s.raw, []byte("\nFROM ")) && bytes.Contains(s.raw, []byte("\nRUN "))) ||
		(bytes.Contains(s.raw, []byte("WORKDIR ")) && bytes.Contains(s.raw, []byte("COPY ")))
}

func isSQL(s sample) bool {
	upper := strings.ToUpper(strings.TrimSpace(s.text))
	for _, keyword := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, keyword) {
			return true
		}
	}
	return false
}

func isLaTeX(s sample) bool {
	return strings.Contains(s.text, `\documentclass`) ||
		strings.Contains(s.text, `\begin{`) && strings.Contains(s.text, `\end{`)
}

func isRust(s sample) bool {
	return strings.Contains(s.text, "fn main()") ||
		strings.Contains(s.text, "println!") ||
		strings.Contains(s.text, "let mut ")
}

func isTypeScript(s sample) bool {
	return strings.Contains(s.text, "interface ") && strings.Contains(s.text, "{") &&
		(strings.Contains(s.text, ": string") || strings.Contains(s.text, ": number"))
}

func isJavaScript(s sample) bool {
	return strings.Contains(s.text, "=>") ||
		strings.Contains(s.text, "const ") ||
		strings.Contains(s.text, "let ") ||
		strings.Contains(s.text, "console.log")
}

// isYAML counts "key: value" lines and root list items.
func isYAML(s sample) bool {
	keys := 0
	for _, line := range bytes.Split(s.raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.Contains(line, []byte("(")) &&
			!bytes.Contains(line, []byte("{")) &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			keys++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			keys++
		}
	}
	return keys >= 2
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	switch lang {
	case "Shell":
		return langBash
	case "TeX":
		return langLaTeX
	default:
		return strings.ToLower(lang)
	}
}
