package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Claim struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceId       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClaimText      string          `gorm:"type:text"`
	EvidenceQuote  string          `gorm:"type:text"`
	Section        string          `gorm:"type:text"`
	ClaimType      string          `gorm:"type:varchar(32)"`
	Confidence     float64         `gorm:"default:0"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (Claim) TableName() string {
	return "claims"
}
