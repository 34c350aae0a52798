package contextbuilder

import (
	"context"
	"strings"
	"testing"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/pkg/embedding"

	"github.com/google/uuid"
)

// stubEmbedder returns a fixed vector per text so compression tests can
// steer similarity without a network call.
type stubEmbedder struct {
	vectors map[string][]float32
	base    []float32
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	vec, ok := s.vectors[text]
	if !ok {
		vec = s.base
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func repeatText(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestBuild_RespectsTokenBudget(t *testing.T) {
	b := NewBuilder(&stubEmbedder{base: []float32{1, 0}}, nopLogger{})

	chunks := []*entity.Chunk{
		{SourceId: uuid.New(), Content: repeatText("alpha", 100), Score: 0.9},  // ~150 tokens
		{SourceId: uuid.New(), Content: repeatText("beta", 100), Score: 0.8},   // ~125 tokens
		{SourceId: uuid.New(), Content: repeatText("gamma", 100), Score: 0.7},  // ~150 tokens
	}

	budget := 200
	res, err := b.Build(context.Background(), chunks, "query", nil, Config{TokenBudget: budget})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// Budget overshoot is bounded by the truncation slack, never a whole chunk.
	if res.Metrics.EstimatedTokens > budget+4 {
		t.Errorf("estimated tokens %d exceed budget %d", res.Metrics.EstimatedTokens, budget)
	}
	if res.Metrics.IncludedChunks >= len(chunks) {
		t.Errorf("expected budgeting to exclude at least one chunk")
	}
	// First chunk always fits a sane budget and must come first.
	if !strings.HasPrefix(res.FormattedContext, "alpha") {
		t.Errorf("highest ranked chunk should open the context")
	}
}

func TestBuild_TruncatesOverflowChunkWhenRemainderMeaningful(t *testing.T) {
	b := NewBuilder(&stubEmbedder{base: []float32{1, 0}}, nopLogger{})

	chunks := []*entity.Chunk{
		{SourceId: uuid.New(), Content: repeatText("first", 50), Score: 0.9},
		{SourceId: uuid.New(), Content: repeatText("second", 200), Score: 0.8},
	}

	res, err := b.Build(context.Background(), chunks, "query", nil, Config{TokenBudget: 150})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.Metrics.TruncatedChunks != 1 {
		t.Errorf("expected 1 truncated chunk, got %d", res.Metrics.TruncatedChunks)
	}
	if res.Metrics.IncludedChunks != 2 {
		t.Errorf("expected both chunks included, got %d", res.Metrics.IncludedChunks)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	b := NewBuilder(&stubEmbedder{base: []float32{1, 0}}, nopLogger{})
	res, err := b.Build(context.Background(), nil, "query", nil, Config{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.FormattedContext != "" {
		t.Errorf("expected empty context, got %q", res.FormattedContext)
	}
}

func TestBuild_SourceTags(t *testing.T) {
	b := NewBuilder(&stubEmbedder{base: []float32{1, 0}}, nopLogger{})

	tagged := uuid.New()
	untagged := uuid.New()
	chunks := []*entity.Chunk{
		{SourceId: tagged, Content: "Attention weighs token pairs globally.", Score: 0.9},
		{SourceId: untagged, Content: "Recurrence processes tokens in order.", Score: 0.8},
	}
	metadata := map[uuid.UUID]*entity.SourceMetadata{
		tagged: {Id: tagged, Authors: []string{"Ashish Vaswani"}, Year: 2017},
	}

	res, err := b.Build(context.Background(), chunks, "query", metadata, Config{IncludeSourceTags: true})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !strings.Contains(res.FormattedContext, "[Vaswani 2017]") {
		t.Errorf("expected author-year tag, got %q", res.FormattedContext)
	}
	if !strings.Contains(res.FormattedContext, "[Source 1]") {
		t.Errorf("expected ordinal tag for metadata-less source, got %q", res.FormattedContext)
	}
}

func TestBuild_GroupBySource(t *testing.T) {
	b := NewBuilder(&stubEmbedder{base: []float32{1, 0}}, nopLogger{})

	s1 := uuid.New()
	s2 := uuid.New()
	chunks := []*entity.Chunk{
		{SourceId: s1, Content: "s1 chunk one padded to length.", Score: 0.9},
		{SourceId: s2, Content: "s2 chunk one padded to length.", Score: 0.85},
		{SourceId: s1, Content: "s1 chunk two padded to length.", Score: 0.4},
	}

	res, err := b.Build(context.Background(), chunks, "query", nil, Config{GroupBySource: true})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	idx1 := strings.Index(res.FormattedContext, "s1 chunk two")
	idx2 := strings.Index(res.FormattedContext, "s2 chunk one")
	if idx1 < 0 || idx2 < 0 {
		t.Fatalf("missing chunks in output: %q", res.FormattedContext)
	}
	// s1's chunks stay contiguous, so its weaker chunk precedes s2's.
	if idx1 > idx2 {
		t.Errorf("same-source chunks should be contiguous")
	}
}

func TestCompress_NeverEmptiesChunk(t *testing.T) {
	query := "attention mechanisms"
	off := []float32{0, 1}
	stub := &stubEmbedder{
		base: off,
		vectors: map[string][]float32{
			query: {1, 0},
			// Every sentence embeds orthogonal to the query; none clears
			// any positive threshold.
		},
	}
	b := NewBuilder(stub, nopLogger{})

	content := "First sentence about something unrelated. Second sentence about another topic entirely. Third sentence rounding out the paragraph nicely."
	chunks := []*entity.Chunk{{SourceId: uuid.New(), Content: content, Score: 0.9}}

	res, err := b.Build(context.Background(), chunks, query, nil, Config{
		Compress:         true,
		MinSentenceScore: 0.9,
		TokenBudget:      1000,
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if strings.TrimSpace(res.FormattedContext) == "" {
		t.Errorf("compression emptied a non-empty chunk")
	}
	if res.Metrics.CompressionRatio <= 0 || res.Metrics.CompressionRatio > 1 {
		t.Errorf("compression ratio out of range: %v", res.Metrics.CompressionRatio)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("abcdefgh"); got != 2 {
		t.Errorf("EstimateTokens() = %d, want 2", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(empty) = %d, want 0", got)
	}
}
