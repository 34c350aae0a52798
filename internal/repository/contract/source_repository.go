package contract

import (
	"context"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SourceRepository interface {
	Create(ctx context.Context, source *entity.Source) error
	Update(ctx context.Context, source *entity.Source) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Source, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Source, error)
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Source, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindByDOI matches on the normalized DOI, case-insensitively.
	// Returns nil when no source carries that DOI.
	FindByDOI(ctx context.Context, doi string) (*entity.Source, error)
	// SearchByTitle returns sources whose title contains the query,
	// newest first.
	SearchByTitle(ctx context.Context, query string, limit int) ([]*entity.Source, error)
}
