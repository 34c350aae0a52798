package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySourceID struct {
	SourceID uuid.UUID
}

func (s BySourceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_id = ?", s.SourceID)
}

type BySourceIDs struct {
	SourceIDs []uuid.UUID
}

func (s BySourceIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_id IN ?", s.SourceIDs)
}

type ByProjectID struct {
	ProjectID uuid.UUID
}

func (s ByProjectID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectID)
}

type ByDOI struct {
	DOI string
}

func (s ByDOI) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(doi) = LOWER(?)", s.DOI)
}

type ByCiteKey struct {
	CiteKey string
}

func (s ByCiteKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("cite_key = ?", s.CiteKey)
}

type TitleContains struct {
	Query string
}

func (s TitleContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title ILIKE ?", "%"+s.Query+"%")
}

type BySection struct {
	Section string
}

func (s BySection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("section = ?", s.Section)
}
