package parser

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DocumentStats contains structural telemetry for a parsed document.
//
// A fresh collector is created for every parse invocation and frozen into
// the ParseResult when the call returns. On failure the counters reflect
// everything observed up to the point of failure. Callers should treat the
// snapshot as read-only.
type DocumentStats struct {
	// TotalNodes is the number of elements created
	TotalNodes int
	// MaxDepth is the deepest nesting level reached (root = 0)
	MaxDepth int
	// TotalAttributes is the number of attributes parsed, duplicates included
	TotalAttributes int
	// TotalTextLength is the total sanitized text length across all nodes
	TotalTextLength int
	// TagCounts maps tag name to occurrence count
	TagCounts map[string]int
	// AttributeCounts maps attribute name to occurrence count
	AttributeCounts map[string]int
	// ParseTime is the elapsed wall-clock duration of the parse call,
	// recorded on every exit path including failures
	ParseTime time.Duration
}

func newDocumentStats() *DocumentStats {
	return &DocumentStats{
		TagCounts:       make(map[string]int),
		AttributeCounts: make(map[string]int),
	}
}

func (s *DocumentStats) recordNode(depth int) {
	s.TotalNodes++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
}

func (s *DocumentStats) recordTag(name string) {
	s.TagCounts[name]++
}

func (s *DocumentStats) recordAttribute(name string) {
	s.TotalAttributes++
	s.AttributeCounts[name]++
}

func (s *DocumentStats) recordText(length int) {
	s.TotalTextLength += length
}

// NameCount pairs a tag or attribute name with its occurrence count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopTags returns the n most frequent tag names in descending count order.
// Ties break alphabetically so the ordering is deterministic.
func (s *DocumentStats) TopTags(n int) []NameCount {
	return topCounts(s.TagCounts, n)
}

// TopAttributes returns the n most frequent attribute names in descending
// count order.
func (s *DocumentStats) TopAttributes(n int) []NameCount {
	return topCounts(s.AttributeCounts, n)
}

func topCounts(counts map[string]int, n int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// reportTopN bounds the frequency listings in Format.
const reportTopN = 5

// Format renders the human-readable statistics report used by the CLI.
func (s *DocumentStats) Format() string {
	title := cases.Title(language.English)

	var b strings.Builder
	b.WriteString("XML Statistics:\n")
	fmt.Fprintf(&b, "  Total nodes: %d\n", s.TotalNodes)
	fmt.Fprintf(&b, "  Maximum depth: %d\n", s.MaxDepth)
	fmt.Fprintf(&b, "  Total attributes: %d\n", s.TotalAttributes)
	fmt.Fprintf(&b, "  Total text length: %d\n", s.TotalTextLength)
	fmt.Fprintf(&b, "  Parse time: %s\n", s.ParseTime)

	sections := []struct {
		heading string
		entries []NameCount
	}{
		{"most common tags", s.TopTags(reportTopN)},
		{"most common attributes", s.TopAttributes(reportTopN)},
	}
	for _, sec := range sections {
		if len(sec.entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", title.String(sec.heading))
		for _, nc := range sec.entries {
			fmt.Fprintf(&b, "  %s: %d\n", nc.Name, nc.Count)
		}
	}
	return b.String()
}
