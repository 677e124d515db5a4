// Package region finds the spans of multi-line constructs whose meaning can
// change as text is appended: tables, fenced code, LaTeX math and citation
// elements. The incremental controller never reuses a previous parse inside
// such a span.
package region

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is a set of construct kinds. A merged region carries the union of the
// kinds that contributed to it.
type Kind uint8

const (
	KindTable Kind = 1 << iota
	KindCodeFence
	KindLatex
	KindLatexInline
	KindCitation
)

//nolint:gochecknoglobals // static lookup table.
var kindNames = [...]struct {
	kind Kind
	name string
}{
	{KindTable, "table"},
	{KindCodeFence, "codefence"},
	{KindLatex, "latex"},
	{KindLatexInline, "latex-inline"},
	{KindCitation, "citation"},
}

// String joins the names of the kinds in the set with '+'.
func (k Kind) String() string {
	var names []string
	for _, entry := range kindNames {
		if k&entry.kind != 0 {
			names = append(names, entry.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// MarshalText encodes the kind set as its String form.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Has reports whether every kind in other is part of k.
func (k Kind) Has(other Kind) bool {
	return k&other == other
}

// Region is a half-open byte span [Start, End) of source.
type Region struct {
	Start int  `yaml:"start" json:"start"`
	End   int  `yaml:"end" json:"end"`
	Kind  Kind `yaml:"kind" json:"kind"`
}

// String formats the region for diagnostics.
func (r Region) String() string {
	return fmt.Sprintf("%s[%d,%d)", r.Kind, r.Start, r.End)
}

// Len returns the length of the region in bytes.
func (r Region) Len() int {
	return r.End - r.Start
}

// Detector finds regions of one construct kind.
type Detector func(source string) []Region

// Detectors returns the detectors Detect runs, in order.
func Detectors() []Detector {
	return []Detector{DetectTables, DetectCodeFences, DetectLatex, DetectCitations}
}

// Detect runs every detector over source, drops regions that end before
// changeStart, and merges the rest. The result is sorted by Start and
// its regions neither overlap nor touch.
func Detect(source string, changeStart int) []Region {
	var all []Region
	for _, detect := range Detectors() {
		for _, r := range detect(source) {
			if r.End >= changeStart {
				all = append(all, r)
			}
		}
	}
	return Merge(all)
}

// Merge sorts regions by Start and coalesces overlapping or adjacent ones.
// The input slice is reordered.
func Merge(regions []Region) []Region {
	if len(regions) == 0 {
		return nil
	}
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Start < regions[j].Start
	})

	merged := []Region{regions[0]}
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			last.End = max(last.End, r.End)
			last.Kind |= r.Kind
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Fragment is a span of the previous source that may be reused.
type Fragment struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to" json:"to"`
}

// Contains reports whether [from, to) lies inside the fragment.
func (f Fragment) Contains(from, to int) bool {
	return from >= f.From && to <= f.To
}

// Fragments returns the parts of [0, prevLen) not covered by any region.
// regions must be merged.
func Fragments(prevLen int, regions []Region) []Fragment {
	var fragments []Fragment
	lastEnd := 0
	for _, r := range regions {
		if r.Start > lastEnd && lastEnd < prevLen {
			fragments = append(fragments, Fragment{From: lastEnd, To: min(r.Start, prevLen)})
		}
		lastEnd = max(lastEnd, r.End)
	}
	if lastEnd < prevLen {
		fragments = append(fragments, Fragment{From: lastEnd, To: prevLen})
	}
	return fragments
}
