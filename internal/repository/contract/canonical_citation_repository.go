package contract

import (
	"context"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CanonicalCitationRepository interface {
	// Upsert inserts the citation unless one already exists for the same
	// (projectId, sourceId) pair. It always leaves the canonical row in
	// *citation and reports whether this call created it. Concurrent
	// callers racing on the same pair all converge on one row.
	Upsert(ctx context.Context, citation *entity.CanonicalCitation) (created bool, err error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanonicalCitation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanonicalCitation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindByProject returns the project's citations ordered by first-seen
	// order, which is the numbering order for numeric styles.
	FindByProject(ctx context.Context, projectId uuid.UUID) ([]*entity.CanonicalCitation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
