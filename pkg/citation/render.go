package citation

import (
	"fmt"
	"sort"
	"strings"
)

// Style selects how inline markers and bibliography entries render.
type Style string

const (
	StyleAuthorDate Style = "author-date"
	StyleNumeric    Style = "numeric"
)

// RenderInline formats an in-text citation. Author-date varies with
// author count: one author by surname, two joined with "&", three or
// more as "et al.". Numeric styles render the externally tracked order
// as "[n]". Missing fields degrade to "Anonymous" and "n.d." instead
// of failing a render mid-document.
func RenderInline(rec *CSLRecord, style Style, order int) string {
	if style == StyleNumeric {
		return fmt.Sprintf("[%d]", order)
	}
	return fmt.Sprintf("(%s, %s)", authorLabel(rec), yearLabel(rec))
}

func authorLabel(rec *CSLRecord) string {
	if rec == nil || len(rec.Author) == 0 {
		return "Anonymous"
	}
	switch len(rec.Author) {
	case 1:
		return familyOrAnonymous(rec.Author[0])
	case 2:
		return familyOrAnonymous(rec.Author[0]) + " & " + familyOrAnonymous(rec.Author[1])
	default:
		return familyOrAnonymous(rec.Author[0]) + " et al."
	}
}

func familyOrAnonymous(name CSLName) string {
	if strings.TrimSpace(name.Family) == "" {
		return "Anonymous"
	}
	return name.Family
}

func yearLabel(rec *CSLRecord) string {
	if rec == nil {
		return "n.d."
	}
	if y := rec.Issued.Year(); y > 0 {
		return fmt.Sprintf("%d", y)
	}
	return "n.d."
}

// RenderBibliographyEntry formats one reference-list entry.
func RenderBibliographyEntry(rec *CSLRecord, style Style, order int) string {
	if rec == nil {
		return ""
	}

	var b strings.Builder
	if style == StyleNumeric {
		fmt.Fprintf(&b, "[%d] ", order)
	}

	b.WriteString(allAuthors(rec))
	fmt.Fprintf(&b, " (%s). ", yearLabel(rec))
	title := rec.Title
	if title == "" {
		title = "Untitled"
	}
	b.WriteString(title)
	if !strings.HasSuffix(title, ".") {
		b.WriteString(".")
	}
	if rec.ContainerTitle != "" {
		b.WriteString(" " + rec.ContainerTitle + ".")
	}
	if rec.DOI != "" {
		b.WriteString(" https://doi.org/" + rec.DOI)
	}
	return b.String()
}

func allAuthors(rec *CSLRecord) string {
	if len(rec.Author) == 0 {
		return "Anonymous"
	}
	names := make([]string, len(rec.Author))
	for i, a := range rec.Author {
		n := familyOrAnonymous(a)
		if a.Given != "" {
			initial := string([]rune(a.Given)[0])
			n = n + ", " + initial + "."
		}
		names[i] = n
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " & " + names[len(names)-1]
}

// BibliographyEntry pairs a record with its first-seen order for
// numeric styles.
type BibliographyEntry struct {
	Record *CSLRecord
	Order  int
}

// RenderBibliography renders the full reference list. Numeric styles
// sort by first-seen order; author-date sorts alphabetically by the
// rendered entry.
func RenderBibliography(entries []BibliographyEntry, style Style) string {
	sorted := make([]BibliographyEntry, len(entries))
	copy(sorted, entries)

	if style == StyleNumeric {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	} else {
		sort.SliceStable(sorted, func(i, j int) bool {
			return authorLabel(sorted[i].Record) < authorLabel(sorted[j].Record)
		})
	}

	lines := make([]string, 0, len(sorted))
	for _, e := range sorted {
		if line := RenderBibliographyEntry(e.Record, style, e.Order); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
