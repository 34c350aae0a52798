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

type SourceChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SourceChunkMapper
}

func NewSourceChunkRepository(db *gorm.DB) contract.SourceChunkRepository {
	return &SourceChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewSourceChunkMapper(),
	}
}

func (r *SourceChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SourceChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.Chunk, embedding []float32) error {
	m := r.mapper.ToModel(chunk, embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *SourceChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.SourceChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c, embeddings[i])
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *SourceChunkRepositoryImpl) DeleteBySourceId(ctx context.Context, sourceId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("source_id = ?", sourceId).Delete(&model.SourceChunk{}).Error
}

func (r *SourceChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chunk, error) {
	var m model.SourceChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SourceChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var models []*model.SourceChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SourceChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.SourceChunk{}).Count(&count).Error
	return count, err
}

func (r *SourceChunkRepositoryImpl) CountBySource(ctx context.Context, sourceIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		SourceId uuid.UUID
		Total    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("source_chunks").
		Select("source_id, COUNT(*) as total").
		Where("source_id IN ?", sourceIds).
		Group("source_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.SourceId] = r.Total
	}
	return counts, nil
}

// scoredRow is the scan target shared by the search queries.
type scoredRow struct {
	model.SourceChunk
	Score        float64
	VectorScore  float64
	KeywordScore float64
}

func (r *SourceChunkRepositoryImpl) toScored(rows []scoredRow) []*contract.ScoredChunk {
	scored := make([]*contract.ScoredChunk, len(rows))
	for i, row := range rows {
		c := r.mapper.ToEntity(&row.SourceChunk)
		c.Score = row.Score
		c.VectorScore = row.VectorScore
		c.KeywordScore = row.KeywordScore
		scored[i] = &contract.ScoredChunk{
			Chunk:        c,
			Score:        row.Score,
			VectorScore:  row.VectorScore,
			KeywordScore: row.KeywordScore,
		}
	}
	return scored
}

func (r *SourceChunkRepositoryImpl) VectorSearch(ctx context.Context, embedding []float32, params contract.ChunkSearchParams) ([]*contract.ScoredChunk, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	queryVector := pgvector.NewVector(embedding)

	// Cosine distance in pgvector is 1 - cosine_similarity, so the
	// similarity is recovered as 1 - (embedding_value <=> query).
	query := r.db.WithContext(ctx).
		Table("source_chunks").
		Select("source_chunks.*, 1 - (embedding_value <=> ?) as score, 1 - (embedding_value <=> ?) as vector_score, 0.0 as keyword_score", queryVector, queryVector).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, params.MinScore)

	if len(params.SourceIds) > 0 {
		query = query.Where("source_id IN ?", params.SourceIds)
	}

	var rows []scoredRow
	err := query.Order("score DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toScored(rows), nil
}

func (r *SourceChunkRepositoryImpl) KeywordSearch(ctx context.Context, queryText string, params contract.ChunkSearchParams) ([]*contract.ScoredChunk, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}

	// ts_rank is clamped to [0,1] so keyword scores stay comparable with
	// cosine similarity.
	rank := "LEAST(ts_rank(to_tsvector('english', content), websearch_to_tsquery('english', ?)), 1.0)"

	query := r.db.WithContext(ctx).
		Table("source_chunks").
		Select("source_chunks.*, "+rank+" as score, 0.0 as vector_score, "+rank+" as keyword_score", queryText, queryText).
		Where("to_tsvector('english', content) @@ websearch_to_tsquery('english', ?)", queryText)

	if len(params.SourceIds) > 0 {
		query = query.Where("source_id IN ?", params.SourceIds)
	}

	var rows []scoredRow
	err := query.Order("score DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toScored(rows), nil
}

func (r *SourceChunkRepositoryImpl) HybridSearch(ctx context.Context, embedding []float32, queryText string, params contract.ChunkSearchParams) ([]*contract.ScoredChunk, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	vectorWeight := params.VectorWeight
	if vectorWeight <= 0 || vectorWeight > 1 {
		vectorWeight = 0.7
	}
	queryVector := pgvector.NewVector(embedding)

	vectorExpr := "1 - (embedding_value <=> ?)"
	keywordExpr := "COALESCE(LEAST(ts_rank(to_tsvector('english', content), websearch_to_tsquery('english', ?)), 1.0), 0.0)"
	combined := fmt.Sprintf("(? * (%s) + ? * (%s))", vectorExpr, keywordExpr)

	query := r.db.WithContext(ctx).Table("source_chunks")

	boostExpr := ""
	if params.ProjectId != uuid.Nil && params.BoostFactor > 0 {
		// Sources the project already cites get a multiplicative boost, so
		// follow-up sections keep drawing on the same evidence base.
		boostExpr = " * (CASE WHEN cited.source_id IS NOT NULL THEN 1 + ? ELSE 1 END)"
		query = query.Joins(
			"LEFT JOIN (SELECT DISTINCT source_id FROM canonical_citations WHERE project_id = ?) cited ON cited.source_id = source_chunks.source_id",
			params.ProjectId,
		)
	}

	selectArgs := []interface{}{
		vectorWeight, queryVector, 1 - vectorWeight, queryText,
	}
	if boostExpr != "" {
		selectArgs = append(selectArgs, params.BoostFactor)
	}
	selectArgs = append(selectArgs, queryVector, queryText)

	query = query.Select(
		"source_chunks.*, "+combined+boostExpr+" as score, "+vectorExpr+" as vector_score, "+keywordExpr+" as keyword_score",
		selectArgs...,
	)

	// The floor applies to the unboosted combined score: boosting promotes
	// already relevant chunks, it never rescues junk.
	query = query.Where("(? * ("+vectorExpr+") + ? * ("+keywordExpr+")) >= ?",
		vectorWeight, queryVector, 1-vectorWeight, queryText, params.MinScore)

	if len(params.SourceIds) > 0 {
		query = query.Where("source_chunks.source_id IN ?", params.SourceIds)
	}

	var rows []scoredRow
	err := query.Order("score DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toScored(rows), nil
}
