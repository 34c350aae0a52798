package score

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultAbbreviations lists period-bearing tokens that must not end a
// sentence. Matching is case-insensitive.
var DefaultAbbreviations = []string{
	"dr.", "mr.", "mrs.", "ms.", "prof.", "st.",
	"etc.", "e.g.", "i.e.", "cf.", "vs.", "al.",
	"vol.", "no.", "pp.", "fig.", "eq.", "sec.", "ch.",
	"jan.", "feb.", "mar.", "apr.", "jun.", "jul.", "aug.", "sep.", "oct.", "nov.", "dec.",
}

// minSentenceLength filters out stray fragments like "3." or "ii.".
const minSentenceLength = 10

const periodPlaceholder = "\x00"

var sentenceBoundary = regexp.MustCompile(`([.?!])\s+`)

// SplitSentences splits text on sentence-ending punctuation followed by
// whitespace, except when the period belongs to a known abbreviation.
// Abbreviation periods are swapped for a placeholder before splitting
// and restored after, which keeps the boundary regex simple. Fragments
// shorter than 10 characters are dropped.
func SplitSentences(text string, abbreviations []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if abbreviations == nil {
		abbreviations = DefaultAbbreviations
	}

	// Longer abbreviations first so "pp." is matched before "p." would be.
	sorted := make([]string, len(abbreviations))
	copy(sorted, abbreviations)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	protected := text
	for _, abbr := range sorted {
		protected = protectAbbreviation(protected, abbr)
	}

	marked := sentenceBoundary.ReplaceAllString(protected, "$1\n")

	var sentences []string
	for _, raw := range strings.Split(marked, "\n") {
		s := strings.TrimSpace(strings.ReplaceAll(raw, periodPlaceholder, "."))
		if len(s) < minSentenceLength {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// protectAbbreviation replaces the periods of each occurrence of abbr
// with a placeholder. An occurrence only counts when it starts at a word
// boundary, so "p." inside "map." is left alone.
func protectAbbreviation(text, abbr string) string {
	lowerText := strings.ToLower(text)
	lowerAbbr := strings.ToLower(abbr)

	var b strings.Builder
	start := 0
	for {
		idx := strings.Index(lowerText[start:], lowerAbbr)
		if idx < 0 {
			b.WriteString(text[start:])
			return b.String()
		}
		idx += start

		atBoundary := idx == 0 || !isWordChar(text[idx-1])
		b.WriteString(text[start:idx])
		segment := text[idx : idx+len(abbr)]
		if atBoundary {
			segment = strings.ReplaceAll(segment, ".", periodPlaceholder)
		}
		b.WriteString(segment)
		start = idx + len(abbr)
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
