package retriever

import (
	"reflect"
	"testing"

	"ai-paperwriter-be/internal/entity"

	"github.com/google/uuid"
)

func TestDeduplicateChunks(t *testing.T) {
	src := uuid.New()
	a := &entity.Chunk{SourceId: src, Content: "The attention mechanism weighs token pairs globally across the sequence.", Score: 0.9}
	aDup := &entity.Chunk{SourceId: src, Content: "  the Attention   mechanism weighs token pairs globally across the sequence.", Score: 0.4}
	b := &entity.Chunk{SourceId: src, Content: "Recurrent networks process tokens strictly in order.", Score: 0.7}

	got := DeduplicateChunks([]*entity.Chunk{a, aDup, b})
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks after dedup, got %d", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Errorf("dedup must keep the first occurrence in order")
	}
}

func TestDeduplicateChunks_Idempotent(t *testing.T) {
	src := uuid.New()
	chunks := []*entity.Chunk{
		{SourceId: src, Content: "First chunk with enough content to matter.", Score: 0.9},
		{SourceId: src, Content: "first chunk WITH enough content to matter.", Score: 0.5},
		{SourceId: src, Content: "A completely different second chunk.", Score: 0.8},
	}

	once := DeduplicateChunks(chunks)
	twice := DeduplicateChunks(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup is not idempotent: %v vs %v", once, twice)
	}
}

func TestBalanceChunks_PerSourceCapAndLimit(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()
	chunks := []*entity.Chunk{
		{SourceId: s1, Content: "s1 best", Score: 0.9},
		{SourceId: s1, Content: "s1 second", Score: 0.2},
		{SourceId: s2, Content: "s2 best", Score: 0.8},
	}

	got := BalanceChunks(chunks, 1, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].SourceId != s1 || got[0].Score != 0.9 {
		t.Errorf("expected s1@0.9 first, got %v@%v", got[0].SourceId, got[0].Score)
	}
	if got[1].SourceId != s2 || got[1].Score != 0.8 {
		t.Errorf("expected s2@0.8 second, got %v@%v", got[1].SourceId, got[1].Score)
	}
}

func TestBalanceChunks_SortsDescending(t *testing.T) {
	src := uuid.New()
	chunks := []*entity.Chunk{
		{SourceId: src, Content: "low", Score: 0.1},
		{SourceId: uuid.New(), Content: "high", Score: 0.9},
		{SourceId: uuid.New(), Content: "mid", Score: 0.5},
	}

	got := BalanceChunks(chunks, 3, 0)
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("result not sorted descending at %d: %v < %v", i, got[i-1].Score, got[i].Score)
		}
	}
}

func TestBalanceChunks_NoSourceExceedsCap(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()
	var chunks []*entity.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, &entity.Chunk{SourceId: s1, Content: "c", Score: float64(i)})
		chunks = append(chunks, &entity.Chunk{SourceId: s2, Content: "c", Score: float64(i) / 2})
	}

	got := BalanceChunks(chunks, 2, 10)
	counts := map[uuid.UUID]int{}
	for _, c := range got {
		counts[c.SourceId]++
	}
	for src, n := range counts {
		if n > 2 {
			t.Errorf("source %v contributed %d chunks, cap is 2", src, n)
		}
	}
}
