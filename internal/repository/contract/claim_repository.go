package contract

import (
	"context"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ScoredClaim struct {
	Claim *entity.Claim
	Score float64
}

type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim, embedding []float32) error
	CreateBulk(ctx context.Context, claims []*entity.Claim, embeddings [][]float32) error
	DeleteBySourceId(ctx context.Context, sourceId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Claim, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Claim, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// VectorSearch ranks claims by cosine similarity against the query
	// embedding, scoped to the given sources when sourceIds is non-empty.
	VectorSearch(ctx context.Context, embedding []float32, sourceIds []uuid.UUID, limit int, minScore float64) ([]*ScoredClaim, error)
}
