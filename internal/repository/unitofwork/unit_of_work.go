package unitofwork

import (
	"context"

	"ai-paperwriter-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SourceRepository() contract.SourceRepository
	SourceChunkRepository() contract.SourceChunkRepository
	ClaimRepository() contract.ClaimRepository
	CanonicalCitationRepository() contract.CanonicalCitationRepository
}
