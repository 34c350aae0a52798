package mapper

import (
	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type SourceChunkMapper struct{}

func NewSourceChunkMapper() *SourceChunkMapper {
	return &SourceChunkMapper{}
}

func (m *SourceChunkMapper) ToEntity(c *model.SourceChunk) *entity.Chunk {
	if c == nil {
		return nil
	}
	return &entity.Chunk{
		Id:               c.Id,
		SourceId:         c.SourceId,
		Content:          c.Content,
		ChunkIndex:       c.ChunkIndex,
		EvidenceStrength: entity.EvidenceStrength(c.EvidenceStrength),
		CreatedAt:        c.CreatedAt,
	}
}

// ToModel builds a persistable chunk row. The request-scoped score fields
// are intentionally not carried over.
func (m *SourceChunkMapper) ToModel(c *entity.Chunk, embedding []float32) *model.SourceChunk {
	if c == nil {
		return nil
	}
	return &model.SourceChunk{
		Id:               c.Id,
		SourceId:         c.SourceId,
		Content:          c.Content,
		EmbeddingValue:   pgvector.NewVector(embedding),
		ChunkIndex:       c.ChunkIndex,
		EvidenceStrength: string(c.EvidenceStrength),
		CreatedAt:        c.CreatedAt,
	}
}

func (m *SourceChunkMapper) ToEntities(chunks []*model.SourceChunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
