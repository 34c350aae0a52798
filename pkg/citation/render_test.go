package citation

import (
	"strings"
	"testing"
)

func record(title string, year int, authors ...CSLName) *CSLRecord {
	rec := &CSLRecord{Type: "article-journal", Title: title, Author: authors}
	if year > 0 {
		rec.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}
	return rec
}

func TestRenderInline_AuthorDate(t *testing.T) {
	tests := []struct {
		name string
		rec  *CSLRecord
		want string
	}{
		{
			name: "single author",
			rec:  record("T", 2017, CSLName{Family: "Vaswani", Given: "Ashish"}),
			want: "(Vaswani, 2017)",
		},
		{
			name: "two authors",
			rec:  record("T", 2014, CSLName{Family: "Goodfellow"}, CSLName{Family: "Bengio"}),
			want: "(Goodfellow & Bengio, 2014)",
		},
		{
			name: "three authors",
			rec:  record("T", 2018, CSLName{Family: "Devlin"}, CSLName{Family: "Chang"}, CSLName{Family: "Lee"}),
			want: "(Devlin et al., 2018)",
		},
		{
			name: "no authors",
			rec:  record("T", 2019),
			want: "(Anonymous, 2019)",
		},
		{
			name: "no year",
			rec:  record("T", 0, CSLName{Family: "Hinton"}),
			want: "(Hinton, n.d.)",
		},
		{
			name: "nil record",
			rec:  nil,
			want: "(Anonymous, n.d.)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderInline(tt.rec, StyleAuthorDate, 0); got != tt.want {
				t.Errorf("RenderInline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderInline_Numeric(t *testing.T) {
	if got := RenderInline(record("T", 2017), StyleNumeric, 3); got != "[3]" {
		t.Errorf("RenderInline(numeric) = %q, want [3]", got)
	}
}

func TestRenderBibliographyEntry(t *testing.T) {
	rec := record("Attention Is All You Need", 2017, CSLName{Family: "Vaswani", Given: "Ashish"})
	rec.ContainerTitle = "NeurIPS"
	rec.DOI = "10.1000/xyz"

	got := RenderBibliographyEntry(rec, StyleAuthorDate, 0)
	for _, fragment := range []string{"Vaswani, A.", "(2017)", "Attention Is All You Need.", "NeurIPS.", "https://doi.org/10.1000/xyz"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("entry %q missing %q", got, fragment)
		}
	}
}

func TestRenderBibliography_NumericOrder(t *testing.T) {
	entries := []BibliographyEntry{
		{Record: record("Second Paper Title", 2019, CSLName{Family: "Zed"}), Order: 2},
		{Record: record("First Paper Title", 2018, CSLName{Family: "Abel"}), Order: 1},
	}
	got := RenderBibliography(entries, StyleNumeric)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[1]") || !strings.HasPrefix(lines[1], "[2]") {
		t.Errorf("numeric bibliography must sort by first-seen order:\n%s", got)
	}
}

func TestRenderBibliography_AuthorDateAlphabetical(t *testing.T) {
	entries := []BibliographyEntry{
		{Record: record("Zeta Paper", 2019, CSLName{Family: "Zhang"}), Order: 1},
		{Record: record("Alpha Paper", 2018, CSLName{Family: "Adams"}), Order: 2},
	}
	got := RenderBibliography(entries, StyleAuthorDate)
	if strings.Index(got, "Adams") > strings.Index(got, "Zhang") {
		t.Errorf("author-date bibliography must sort alphabetically:\n%s", got)
	}
}
