package citation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "10.1000/xyz", "10.1000/xyz"},
		{"uppercase", "10.1000/XYZ", "10.1000/xyz"},
		{"https url", "https://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"dx url", "http://dx.doi.org/10.1000/xyz", "10.1000/xyz"},
		{"doi prefix", "doi:10.1000/xyz", "10.1000/xyz"},
		{"whitespace", "  10.1000/xyz  ", "10.1000/xyz"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDOI(tt.in); got != tt.want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation stripped", "Attention Is All You Need!", "attention is all you need"},
		{"hyphens become spaces", "Self-Attention Networks", "self attention networks"},
		{"whitespace collapsed", "  deep \t learning  ", "deep learning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCiteKey_Deterministic(t *testing.T) {
	project := uuid.New()

	k1 := CiteKey(project, "", "Attention Is All You Need", 2017)
	k2 := CiteKey(project, "", "attention is all you need!", 2017)
	if k1 != k2 {
		t.Errorf("equivalent titles should derive the same key: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "ref:") {
		t.Errorf("title-based key should carry the ref: prefix, got %q", k1)
	}
	if len(k1) != len("ref:")+16 {
		t.Errorf("expected 16 hex chars after prefix, got %q", k1)
	}

	other := CiteKey(uuid.New(), "", "Attention Is All You Need", 2017)
	if other == k1 {
		t.Errorf("different projects must derive different title-based keys")
	}

	differentYear := CiteKey(project, "", "Attention Is All You Need", 2018)
	if differentYear == k1 {
		t.Errorf("different years must derive different keys")
	}
}

func TestCiteKey_DOIWins(t *testing.T) {
	project := uuid.New()
	k := CiteKey(project, "https://doi.org/10.1000/XYZ", "some title", 2017)
	if k != "doi:10.1000/xyz" {
		t.Errorf("CiteKey with DOI = %q, want doi:10.1000/xyz", k)
	}

	// DOI-based keys ignore the project: the same work cited in two
	// projects still shares a DOI key.
	k2 := CiteKey(uuid.New(), "doi:10.1000/xyz", "other title", 1999)
	if k != k2 {
		t.Errorf("DOI keys should not depend on project or title")
	}
}
