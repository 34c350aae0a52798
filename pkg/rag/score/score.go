package score

import (
	"math"
	"sort"
	"strings"

	"ai-paperwriter-be/internal/entity"

	"github.com/google/uuid"
)

// DefaultRRFConstant is the standard smoothing constant for reciprocal
// rank fusion.
const DefaultRRFConstant = 60

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths, empty inputs, or zero magnitudes return 0 instead
// of an error; this runs on the verification hot path.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}

// NormalizeScore maps missing or broken scores to 0 so downstream math
// never propagates NaN.
func NormalizeScore(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

// FusionKey identifies a chunk across result sets. Chunks without an id
// fall back to the source id plus a content prefix, since overlapping
// window chunks from the same source share their opening characters
// only when they are genuinely the same span.
func FusionKey(c *entity.Chunk) string {
	if c.Id != uuid.Nil {
		return c.Id.String()
	}
	prefix := c.Content
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	return c.SourceId.String() + "|" + strings.ToLower(strings.TrimSpace(prefix))
}

// ReciprocalRankFusion merges ranked result sets by rank position:
// each appearance of a chunk at rank r contributes 1/(k+r+1). Raw
// scores never enter the fused score; when the same chunk appears in
// several sets the variant with the highest original score is kept so
// its diagnostic fields survive. Output is sorted by fused score
// descending, ties broken by key ascending for determinism.
func ReciprocalRankFusion(resultSets [][]*entity.Chunk, k int) []*entity.Chunk {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	type fused struct {
		chunk *entity.Chunk
		score float64
		key   string
	}
	accum := make(map[string]*fused)

	for _, set := range resultSets {
		for rank, c := range set {
			if c == nil {
				continue
			}
			key := FusionKey(c)
			contribution := 1.0 / float64(k+rank+1)
			entry, ok := accum[key]
			if !ok {
				accum[key] = &fused{chunk: c, score: contribution, key: key}
				continue
			}
			entry.score += contribution
			if c.Score > entry.chunk.Score {
				entry.chunk = c
			}
		}
	}

	merged := make([]*fused, 0, len(accum))
	for _, entry := range accum {
		merged = append(merged, entry)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].key < merged[j].key
	})

	out := make([]*entity.Chunk, len(merged))
	for i, entry := range merged {
		c := *entry.chunk
		c.Score = entry.score
		out[i] = &c
	}
	return out
}
