package citation

import (
	"regexp"
	"strings"
)

// Marker syntaxes that have appeared in generated documents over time.
// All three resolve to the same reference space; the scanner treats
// them interchangeably.
var markerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[cite:([^\]]+)\]`),
	regexp.MustCompile(`\{\{cite:([^}]+)\}\}`),
	regexp.MustCompile(`\[@([^\]\s]+)\]`),
}

// Marker is one citation marker occurrence found in document text.
type Marker struct {
	Ref      string
	Position int
	Raw      string
}

// ScanMarkers finds every citation marker in the text, across all
// supported syntaxes, ordered by position.
func ScanMarkers(text string) []Marker {
	var markers []Marker
	for _, pattern := range markerPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			ref := strings.TrimSpace(text[m[2]:m[3]])
			if ref == "" {
				continue
			}
			markers = append(markers, Marker{
				Ref:      ref,
				Position: m[0],
				Raw:      text[m[0]:m[1]],
			})
		}
	}
	sortMarkers(markers)
	return markers
}

// UniqueRefs collapses markers to distinct references in first-seen
// order, with occurrence counts. A source mentioned ten times still
// resolves once.
func UniqueRefs(markers []Marker) ([]string, map[string]int) {
	counts := make(map[string]int)
	var order []string
	for _, m := range markers {
		if counts[m.Ref] == 0 {
			order = append(order, m.Ref)
		}
		counts[m.Ref]++
	}
	return order, counts
}

func sortMarkers(markers []Marker) {
	// Insertion sort; marker counts per document are small.
	for i := 1; i < len(markers); i++ {
		for j := i; j > 0 && markers[j].Position < markers[j-1].Position; j-- {
			markers[j], markers[j-1] = markers[j-1], markers[j]
		}
	}
}
