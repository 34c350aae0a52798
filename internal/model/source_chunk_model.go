package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type SourceChunk struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceId         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Content          string          `gorm:"type:text"`
	EmbeddingValue   pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimensionality
	ChunkIndex       int             `gorm:"default:0"`
	EvidenceStrength string          `gorm:"type:varchar(16);default:'full_text'"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt  `gorm:"index"`
}

func (SourceChunk) TableName() string {
	return "source_chunks"
}
