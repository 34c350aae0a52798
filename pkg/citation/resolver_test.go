package citation

import (
	"testing"

	"ai-paperwriter-be/internal/entity"

	"github.com/google/uuid"
)

func source(title string, year int) *entity.Source {
	return &entity.Source{Id: uuid.New(), Title: title, Year: year}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "Attention Is All You Need", "Attention Is All You Need", 1, 1},
		{"case and punctuation", "attention is all you need!", "Attention Is All You Need", 1, 1},
		{"disjoint", "Graph Neural Networks", "Diffusion Language Models", 0, 0},
		{"partial overlap", "Deep Residual Learning", "Residual Learning Frameworks", 0.3, 0.7},
		{"empty", "", "anything", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("TitleSimilarity(%q, %q) = %v, want within [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestRankCandidates_ExactMatchOnly(t *testing.T) {
	match := source("Attention Is All You Need", 2017)
	candidates := []Candidate{
		{Source: match},
		{Source: source("Convolutional Sequence Learning", 2017)},
		{Source: source("A Survey of Unrelated Things", 2017)},
	}

	ranked := RankCandidates("Attention Is All You Need", 2017, candidates)
	if len(ranked) != 1 {
		t.Fatalf("expected only the matching candidate, got %d", len(ranked))
	}
	if ranked[0].Source.Id != match.Id {
		t.Errorf("wrong candidate matched")
	}
	if ranked[0].Score < 1.0 {
		t.Errorf("exact title plus year bonus should exceed 1.0, got %v", ranked[0].Score)
	}
}

func TestRankCandidates_YearBonusBreaksTitleTie(t *testing.T) {
	right := source("Deep Learning Methods", 2015)
	wrong := source("Deep Learning Methods", 2020)
	ranked := RankCandidates("Deep Learning Methods", 2015, []Candidate{
		{Source: wrong},
		{Source: right},
	})
	if len(ranked) != 2 {
		t.Fatalf("expected both candidates above the floor, got %d", len(ranked))
	}
	if ranked[0].Source.Id != right.Id {
		t.Errorf("year match should rank first")
	}
}

func TestRankCandidates_TieBreakPrefersCitedThenLibrary(t *testing.T) {
	a := source("Neural Machine Translation", 2016)
	b := source("Neural Machine Translation", 2016)
	c := source("Neural Machine Translation", 2016)

	ranked := RankCandidates("Neural Machine Translation", 2016, []Candidate{
		{Source: a},
		{Source: b, InLibrary: true},
		{Source: c, AlreadyCited: true},
	})
	if len(ranked) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(ranked))
	}
	if ranked[0].Source.Id != c.Id {
		t.Errorf("already-cited source should win ties")
	}
	if ranked[1].Source.Id != b.Id {
		t.Errorf("library source should beat unaffiliated source")
	}
}

func TestRankCandidates_BelowFloorExcluded(t *testing.T) {
	ranked := RankCandidates("Attention Is All You Need", 2017, []Candidate{
		{Source: source("Partially Attention Related Work", 2017)},
	})
	if len(ranked) != 0 {
		t.Errorf("weak matches must not clear the similarity floor")
	}
}
