// Package citation extracts structured fields from <citation> markup.
//
// A citation element looks like:
//
//	<citation>
//	  <title>...</title>
//	  <url>...</url>
//	  <favicon>...</favicon>
//	  <authoritative/>
//	</citation>
//
// Every field is optional. Tag names match case-insensitively and values may
// span lines.
package citation

import (
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // compiled patterns are process-wide.
var (
	titlePattern         = regexp.MustCompile(`(?is)<title\s*>(.*?)</title\s*>`)
	urlPattern           = regexp.MustCompile(`(?is)<url\s*>(.*?)</url\s*>`)
	faviconPattern       = regexp.MustCompile(`(?is)<favicon\s*>(.*?)</favicon\s*>`)
	authoritativePattern = regexp.MustCompile(`(?i)<authoritative\s*/?>`)
	openPattern          = regexp.MustCompile(`(?i)<citation\b[^>]*>`)
	closePattern         = regexp.MustCompile(`(?i)</citation\s*>`)
)

const rootTag = "citation"

// Data is the parsed content of one citation element.
type Data struct {
	// Title is the trimmed <title> value, nil when absent or empty.
	Title *string `yaml:"title,omitempty" json:"title,omitempty"`

	// URL is the trimmed <url> value, nil when absent or empty.
	URL *string `yaml:"url,omitempty" json:"url,omitempty"`

	// Favicon is the trimmed <favicon> value, nil when absent or empty.
	Favicon *string `yaml:"favicon,omitempty" json:"favicon,omitempty"`

	// Authoritative reports whether an <authoritative/> tag is present.
	Authoritative bool `yaml:"authoritative" json:"authoritative"`

	// Raw is the markup the data was parsed from.
	Raw string `yaml:"raw" json:"raw"`
}

// ID returns a stable identifier for the citation: the URL when present,
// else the title, else the empty string.
func (d Data) ID() string {
	if d.URL != nil {
		return *d.URL
	}
	if d.Title != nil {
		return *d.Title
	}
	return ""
}

// Parse extracts the known fields of a single citation element.
// Parse never fails; missing fields stay nil.
func Parse(raw string) Data {
	return Data{
		Title:         field(titlePattern, raw),
		URL:           field(urlPattern, raw),
		Favicon:       field(faviconPattern, raw),
		Authoritative: authoritativePattern.MatchString(raw),
		Raw:           raw,
	}
}

// Ref builds the data of an inline [@id] reference.
func Ref(id, raw string) Data {
	title := id
	return Data{Title: &title, Raw: raw}
}

func field(pattern *regexp.Regexp, raw string) *string {
	match := pattern.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	value := strings.TrimSpace(match[1])
	if value == "" {
		return nil
	}
	return &value
}

// IsBlock reports whether text, ignoring leading whitespace, starts with a
// <citation> tag and contains a closing </citation> tag.
func IsBlock(text string) bool {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	loc := openPattern.FindStringIndex(trimmed)
	if loc == nil || loc[0] != 0 {
		return false
	}
	return closePattern.MatchString(trimmed[loc[1]:])
}

// Split breaks concatenated citation elements into one string per element.
// Text between elements is dropped. An unterminated trailing element takes
// the rest of raw. Text without any <citation> tag yields nil.
func Split(raw string) []string {
	var parts []string
	pos := 0
	for pos < len(raw) {
		open := openPattern.FindStringIndex(raw[pos:])
		if open == nil {
			break
		}
		start := pos + open[0]
		bodyStart := pos + open[1]
		closing := closePattern.FindStringIndex(raw[bodyStart:])
		if closing == nil {
			parts = append(parts, raw[start:])
			break
		}
		end := bodyStart + closing[1]
		parts = append(parts, raw[start:end])
		pos = end
	}
	return parts
}

// Fields extracts every <tag>value</tag> pair inside raw. Keys are
// lowercased, values trimmed, and pairs with an empty value dropped. The
// enclosing <citation> element is not itself a field. When a tag repeats,
// the first value wins.
func Fields(raw string) map[string]string {
	fields := make(map[string]string)
	pos := 0
	for {
		name, bodyStart, ok := nextOpenTag(raw, pos)
		if !ok {
			return fields
		}
		if name == rootTag {
			pos = bodyStart
			continue
		}
		valueEnd, closeEnd, found := findCloseTag(raw, bodyStart, name)
		if !found {
			pos = bodyStart
			continue
		}
		if value := strings.TrimSpace(raw[bodyStart:valueEnd]); value != "" {
			if _, seen := fields[name]; !seen {
				fields[name] = value
			}
		}
		pos = closeEnd
	}
}

// nextOpenTag finds the next opening tag at or after pos and returns its
// lowercased name and the offset just past its '>'. Self-closing tags and
// closing tags are skipped.
func nextOpenTag(raw string, pos int) (string, int, bool) {
	for pos < len(raw) {
		lt := strings.IndexByte(raw[pos:], '<')
		if lt < 0 {
			return "", 0, false
		}
		start := pos + lt + 1
		end := start
		for end < len(raw) && isNameByte(raw[end]) {
			end++
		}
		if end == start || end >= len(raw) || !isTagBoundary(raw[end]) {
			pos = start
			continue
		}
		gt := strings.IndexByte(raw[end:], '>')
		if gt < 0 {
			return "", 0, false
		}
		closeAt := end + gt
		if raw[closeAt-1] == '/' {
			pos = closeAt + 1
			continue
		}
		return strings.ToLower(raw[start:end]), closeAt + 1, true
	}
	return "", 0, false
}

// findCloseTag finds </name> at or after pos, matching name case-insensitively.
// It returns the offset of the '<' and the offset just past the '>'.
func findCloseTag(raw string, pos int, name string) (int, int, bool) {
	for pos < len(raw) {
		idx := strings.Index(raw[pos:], "</")
		if idx < 0 {
			return 0, 0, false
		}
		start := pos + idx
		nameEnd := start + 2 + len(name)
		if nameEnd <= len(raw) && strings.EqualFold(raw[start+2:nameEnd], name) {
			rest := strings.TrimLeft(raw[nameEnd:], " \t\r\n")
			if strings.HasPrefix(rest, ">") {
				return start, len(raw) - len(rest) + 1, true
			}
		}
		pos = start + 2
	}
	return 0, 0, false
}

func isTagBoundary(c byte) bool {
	return c == '>' || c == '/' || c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':'
}
