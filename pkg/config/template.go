package config

import (
	"fmt"
	"strings"
)

// templateEntry is one documented key of the generated template.
type templateEntry struct {
	section string
	key     string
	value   string
	comment string
}

// GenerateTemplate creates a commented configuration file holding the
// defaults. When full is false, only top-level keys are emitted.
func GenerateTemplate(full bool) []byte {
	def := NewConfig()
	entries := []templateEntry{
		{"", "flavor", string(def.Flavor), "Markdown flavor: gfm or commonmark."},
		{"", "log_level", def.LogLevel, "Log level: debug, info, warn or error."},
		{"stream", "flush_threshold", fmt.Sprint(def.Stream.FlushThreshold),
			"Buffered weight that triggers a lex. CJK ideographs weigh 4, ASCII 1, others 2."},
		{"cache", "size", fmt.Sprint(def.Cache.Size), "Number of lex results kept in the process-wide cache."},
		{"latex", "enabled", "true", "Parse $...$, $$...$$, \\(...\\) and \\[...\\] math."},
		{"citations", "enabled", "true", "Parse <citation> blocks and [@id] references."},
		{"code", "detect_language", "true", "Guess the language of code blocks without an info string."},
		{"metrics", "enabled", "false", "Collect Prometheus metrics."},
		{"metrics", "path", def.Metrics.Path, "HTTP path for metrics in serve mode."},
		{"serve", "addr", def.Serve.Addr, "Listen address of the serve command."},
		{"serve", "read_limit", fmt.Sprint(def.Serve.ReadLimit), "Largest accepted client message in bytes."},
	}

	var sb strings.Builder
	sb.WriteString(DefaultTemplateHeader())
	sb.WriteString("\n")

	section := ""
	for _, e := range entries {
		if e.section != "" && !full {
			continue
		}
		indent := ""
		if e.section != "" {
			indent = strings.Repeat(" ", YAMLIndent())
			if e.section != section {
				sb.WriteString("\n" + e.section + ":\n")
				section = e.section
			}
		}
		sb.WriteString(indent + "# " + e.comment + "\n")
		sb.WriteString(indent + e.key + ": " + quote(e.value) + "\n")
	}
	return []byte(sb.String())
}

// quote wraps values YAML would otherwise misread.
func quote(v string) string {
	if strings.ContainsAny(v, ":#/") {
		return fmt.Sprintf("%q", v)
	}
	return v
}

// DefaultTemplateHeader returns the comment placed at the top of generated
// configuration files.
func DefaultTemplateHeader() string {
	return "# mdstream configuration\n# Values shown are the defaults.\n"
}
