package citation

import (
	"sort"
	"strings"

	"ai-paperwriter-be/internal/entity"
)

// SimilarityFloor is the minimum title similarity a fuzzy match must
// clear; below it a reference stays unresolved rather than guessing.
const SimilarityFloor = 0.75

// yearMatchBonus rewards candidates whose publication year matches the
// reference exactly.
const yearMatchBonus = 0.1

// Candidate is one source under consideration for a loose reference,
// annotated with the tie-break signals.
type Candidate struct {
	Source       *entity.Source
	InLibrary    bool
	AlreadyCited bool
}

// ScoredCandidate pairs a candidate with its match score.
type ScoredCandidate struct {
	Candidate
	Score float64
}

// TitleSimilarity measures token overlap between two titles: the size
// of the token intersection over the larger token set. Insensitive to
// case, punctuation and word order.
func TitleSimilarity(a, b string) float64 {
	tokensA := titleTokens(a)
	tokensB := titleTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		setA[t] = true
	}
	overlap := 0
	seen := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		if seen[t] {
			continue
		}
		seen[t] = true
		if setA[t] {
			overlap++
		}
	}

	larger := len(setA)
	if len(seen) > larger {
		larger = len(seen)
	}
	return float64(overlap) / float64(larger)
}

func titleTokens(title string) []string {
	return strings.Fields(NormalizeTitle(title))
}

// RankCandidates scores every candidate against a title+year reference
// and sorts best first. Ties go to sources already cited in the
// project, then to sources in the caller's library. Candidates below
// the similarity floor are excluded entirely.
func RankCandidates(title string, year int, candidates []Candidate) []ScoredCandidate {
	var ranked []ScoredCandidate
	for _, c := range candidates {
		if c.Source == nil {
			continue
		}
		score := TitleSimilarity(title, c.Source.Title)
		if year > 0 && c.Source.Year == year {
			score += yearMatchBonus
		}
		if score < SimilarityFloor {
			continue
		}
		ranked = append(ranked, ScoredCandidate{Candidate: c, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].AlreadyCited != ranked[j].AlreadyCited {
			return ranked[i].AlreadyCited
		}
		if ranked[i].InLibrary != ranked[j].InLibrary {
			return ranked[i].InLibrary
		}
		return ranked[i].Source.Id.String() < ranked[j].Source.Id.String()
	})
	return ranked
}
