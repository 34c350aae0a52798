package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Source struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string         `gorm:"type:text;not null"`
	Authors   datatypes.JSON `gorm:"type:jsonb"` // []string
	Year      int            `gorm:"index"`
	Doi       string         `gorm:"type:text;index"` // normalized, lowercase, no resolver prefix
	Venue     string         `gorm:"type:text"`
	Abstract  string         `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Source) TableName() string {
	return "sources"
}
