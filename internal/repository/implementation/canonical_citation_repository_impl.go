package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/mapper"
	"ai-paperwriter-be/internal/model"
	"ai-paperwriter-be/internal/repository/contract"
	"ai-paperwriter-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CanonicalCitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CitationMapper
}

func NewCanonicalCitationRepository(db *gorm.DB) contract.CanonicalCitationRepository {
	return &CanonicalCitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewCitationMapper(),
	}
}

func (r *CanonicalCitationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert is an optimistic insert: try to create the row, let the unique
// index on (project_id, source_id) swallow the race, then read back
// whichever row won. No explicit locking.
func (r *CanonicalCitationRepositoryImpl) Upsert(ctx context.Context, citation *entity.CanonicalCitation) (bool, error) {
	m := r.mapper.ToModel(citation)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "source_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	created := res.RowsAffected > 0

	if !created {
		var existing model.CanonicalCitation
		err := r.db.WithContext(ctx).
			Where("project_id = ? AND source_id = ?", m.ProjectId, m.SourceId).
			First(&existing).Error
		if err != nil {
			return false, fmt.Errorf("read back canonical citation: %w", err)
		}
		m = &existing
	}

	*citation = *r.mapper.ToEntity(m)
	return created, nil
}

func (r *CanonicalCitationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanonicalCitation, error) {
	var m model.CanonicalCitation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CanonicalCitationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanonicalCitation, error) {
	var models []*model.CanonicalCitation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CanonicalCitationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.CanonicalCitation{}).Count(&count).Error
	return count, err
}

func (r *CanonicalCitationRepositoryImpl) FindByProject(ctx context.Context, projectId uuid.UUID) ([]*entity.CanonicalCitation, error) {
	return r.FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "first_seen_order"},
	)
}

func (r *CanonicalCitationRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CanonicalCitation{}, id).Error
}
