package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CanonicalCitation relies on the composite unique index for the
// optimistic-insert concurrency strategy: concurrent inserts for the same
// (project_id, source_id) pair resolve at the database, not with a lock.
type CanonicalCitation struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_citation_project_source,priority:1"`
	SourceId       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_citation_project_source,priority:2"`
	CiteKey        string         `gorm:"type:text;not null;index"`
	CslRecord      datatypes.JSON `gorm:"type:jsonb"`
	Reason         string         `gorm:"type:text"`
	Quote          string         `gorm:"type:text"`
	FirstSeenOrder int            `gorm:"default:0"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (CanonicalCitation) TableName() string {
	return "canonical_citations"
}
