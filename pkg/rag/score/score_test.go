package score

import (
	"math"
	"testing"

	"ai-paperwriter-be/internal/entity"

	"github.com/google/uuid"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched lengths", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
		{"zero magnitude", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"regular", 0.75, 0.75},
		{"nan", math.NaN(), 0},
		{"positive inf", math.Inf(1), 0},
		{"negative inf", math.Inf(-1), 0},
		{"negative", -0.3, 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScore(tt.in); got != tt.want {
				t.Errorf("NormalizeScore(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func chunkWithId(id uuid.UUID, score float64) *entity.Chunk {
	return &entity.Chunk{Id: id, SourceId: uuid.New(), Content: "content for " + id.String(), Score: score}
}

func TestReciprocalRankFusion_RankNotScore(t *testing.T) {
	a := chunkWithId(uuid.New(), 0.9)
	b := chunkWithId(uuid.New(), 0.5)
	c := chunkWithId(uuid.New(), 0.1)

	set1 := []*entity.Chunk{a, b, c}
	set2 := []*entity.Chunk{b, a, c}

	fusedOrder := func(sets [][]*entity.Chunk) []uuid.UUID {
		out := ReciprocalRankFusion(sets, DefaultRRFConstant)
		ids := make([]uuid.UUID, len(out))
		for i, ch := range out {
			ids[i] = ch.Id
		}
		return ids
	}

	before := fusedOrder([][]*entity.Chunk{set1, set2})

	// Permute raw scores without touching rank positions; order must not move.
	scrambled1 := []*entity.Chunk{
		{Id: a.Id, SourceId: a.SourceId, Content: a.Content, Score: 0.01},
		{Id: b.Id, SourceId: b.SourceId, Content: b.Content, Score: 0.99},
		{Id: c.Id, SourceId: c.SourceId, Content: c.Content, Score: 0.55},
	}
	scrambled2 := []*entity.Chunk{
		{Id: b.Id, SourceId: b.SourceId, Content: b.Content, Score: 0.02},
		{Id: a.Id, SourceId: a.SourceId, Content: a.Content, Score: 0.98},
		{Id: c.Id, SourceId: c.SourceId, Content: c.Content, Score: 0.44},
	}
	after := fusedOrder([][]*entity.Chunk{scrambled1, scrambled2})

	if len(before) != len(after) {
		t.Fatalf("result length changed: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("position %d changed after score permutation: %v vs %v", i, before[i], after[i])
		}
	}
}

func TestReciprocalRankFusion_AccumulatesAcrossSets(t *testing.T) {
	shared := chunkWithId(uuid.New(), 0.5)
	solo := chunkWithId(uuid.New(), 0.9)

	// shared sits at rank 1 in both sets, solo at rank 0 in one set.
	// 2/(60+2) > 1/(60+1), so the shared chunk must win.
	set1 := []*entity.Chunk{solo, shared}
	set2 := []*entity.Chunk{chunkWithId(uuid.New(), 0.3), shared}

	out := ReciprocalRankFusion([][]*entity.Chunk{set1, set2}, DefaultRRFConstant)
	if len(out) != 3 {
		t.Fatalf("expected 3 fused chunks, got %d", len(out))
	}
	if out[0].Id != shared.Id {
		t.Errorf("expected shared chunk first, got %v", out[0].Id)
	}
}

func TestReciprocalRankFusion_KeepsHighestScoringVariant(t *testing.T) {
	id := uuid.New()
	src := uuid.New()
	low := &entity.Chunk{Id: id, SourceId: src, Content: "text", Score: 0.2, VectorScore: 0.2}
	high := &entity.Chunk{Id: id, SourceId: src, Content: "text", Score: 0.8, VectorScore: 0.8}

	out := ReciprocalRankFusion([][]*entity.Chunk{{low}, {high}}, DefaultRRFConstant)
	if len(out) != 1 {
		t.Fatalf("expected 1 fused chunk, got %d", len(out))
	}
	if out[0].VectorScore != 0.8 {
		t.Errorf("expected the higher-scored variant's fields, got vector score %v", out[0].VectorScore)
	}
}

func TestFusionKey_NoIdFallsBackToContentPrefix(t *testing.T) {
	src := uuid.New()
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	c1 := &entity.Chunk{SourceId: src, Content: string(long) + "tail one"}
	c2 := &entity.Chunk{SourceId: src, Content: string(long) + "different tail"}

	if FusionKey(c1) != FusionKey(c2) {
		t.Errorf("chunks sharing a 100-char prefix should share a fusion key")
	}

	other := &entity.Chunk{SourceId: uuid.New(), Content: string(long)}
	if FusionKey(c1) == FusionKey(other) {
		t.Errorf("different sources must not share a fusion key")
	}
}
