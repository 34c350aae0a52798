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
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ClaimRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ClaimMapper
}

func NewClaimRepository(db *gorm.DB) contract.ClaimRepository {
	return &ClaimRepositoryImpl{
		db:     db,
		mapper: mapper.NewClaimMapper(),
	}
}

func (r *ClaimRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ClaimRepositoryImpl) toModel(c *entity.Claim, embedding []float32) *model.Claim {
	return &model.Claim{
		Id:             c.Id,
		SourceId:       c.SourceId,
		ClaimText:      c.ClaimText,
		EvidenceQuote:  c.EvidenceQuote,
		Section:        c.Section,
		ClaimType:      c.ClaimType,
		Confidence:     c.Confidence,
		EmbeddingValue: pgvector.NewVector(embedding),
		CreatedAt:      c.CreatedAt,
	}
}

func (r *ClaimRepositoryImpl) Create(ctx context.Context, claim *entity.Claim, embedding []float32) error {
	m := r.toModel(claim, embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*claim = *r.mapper.ToEntity(m)
	return nil
}

func (r *ClaimRepositoryImpl) CreateBulk(ctx context.Context, claims []*entity.Claim, embeddings [][]float32) error {
	if len(claims) != len(embeddings) {
		return fmt.Errorf("claim/embedding count mismatch: %d vs %d", len(claims), len(embeddings))
	}
	if len(claims) == 0 {
		return nil
	}
	models := make([]*model.Claim, len(claims))
	for i, c := range claims {
		models[i] = r.toModel(c, embeddings[i])
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*claims[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ClaimRepositoryImpl) DeleteBySourceId(ctx context.Context, sourceId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("source_id = ?", sourceId).Delete(&model.Claim{}).Error
}

func (r *ClaimRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Claim, error) {
	var m model.Claim
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ClaimRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Claim, error) {
	var models []*model.Claim
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ClaimRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Claim{}).Count(&count).Error
	return count, err
}

func (r *ClaimRepositoryImpl) VectorSearch(ctx context.Context, embedding []float32, sourceIds []uuid.UUID, limit int, minScore float64) ([]*contract.ScoredClaim, error) {
	if limit <= 0 {
		limit = 10
	}
	queryVector := pgvector.NewVector(embedding)

	type row struct {
		model.Claim
		Score float64
	}
	query := r.db.WithContext(ctx).
		Table("claims").
		Select("claims.*, 1 - (embedding_value <=> ?) as score", queryVector).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, minScore)

	if len(sourceIds) > 0 {
		query = query.Where("source_id IN ?", sourceIds)
	}

	var rows []row
	err := query.Order("score DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredClaim, len(rows))
	for i, res := range rows {
		c := r.mapper.ToEntity(&res.Claim)
		c.Score = res.Score
		scored[i] = &contract.ScoredClaim{Claim: c, Score: res.Score}
	}
	return scored, nil
}
