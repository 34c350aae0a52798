package contract

import (
	"context"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps a chunk with its retrieval scores. Score is the
// combined score; the component scores are kept for debugging output.
type ScoredChunk struct {
	Chunk        *entity.Chunk
	Score        float64
	VectorScore  float64
	KeywordScore float64
}

// ChunkSearchParams carries the knobs shared by the search methods.
// SourceIds limits the search scope; empty means all sources.
type ChunkSearchParams struct {
	SourceIds    []uuid.UUID
	Limit        int
	MinScore     float64
	VectorWeight float64
	// ProjectId enables citation boosting: chunks whose source already has
	// a canonical citation in the project get their score multiplied by
	// (1 + BoostFactor). Zero ProjectId disables boosting.
	ProjectId   uuid.UUID
	BoostFactor float64
}

type SourceChunkRepository interface {
	Create(ctx context.Context, chunk *entity.Chunk, embedding []float32) error
	CreateBulk(ctx context.Context, chunks []*entity.Chunk, embeddings [][]float32) error
	DeleteBySourceId(ctx context.Context, sourceId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CountBySource returns chunk counts per source, used to decide when a
	// source has too little indexed content to retrieve from.
	CountBySource(ctx context.Context, sourceIds []uuid.UUID) (map[uuid.UUID]int64, error)
	// VectorSearch ranks chunks by cosine similarity against the query
	// embedding, dropping everything below params.MinScore.
	VectorSearch(ctx context.Context, embedding []float32, params ChunkSearchParams) ([]*ScoredChunk, error)
	// KeywordSearch ranks chunks by full-text relevance against the query.
	KeywordSearch(ctx context.Context, query string, params ChunkSearchParams) ([]*ScoredChunk, error)
	// HybridSearch combines vector and keyword scores in a single query:
	// score = vectorWeight*vector + (1-vectorWeight)*keyword.
	HybridSearch(ctx context.Context, embedding []float32, query string, params ChunkSearchParams) ([]*ScoredChunk, error)
}
