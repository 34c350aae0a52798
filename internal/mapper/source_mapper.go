package mapper

import (
	"encoding/json"
	"time"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SourceMapper struct{}

func NewSourceMapper() *SourceMapper {
	return &SourceMapper{}
}

func (m *SourceMapper) ToEntity(s *model.Source) *entity.Source {
	if s == nil {
		return nil
	}

	var authors []string
	if len(s.Authors) > 0 {
		// Malformed author JSON degrades to an empty list, never an error.
		_ = json.Unmarshal(s.Authors, &authors)
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}
	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Source{
		Id:        s.Id,
		Title:     s.Title,
		Authors:   authors,
		Year:      s.Year,
		Doi:       s.Doi,
		Venue:     s.Venue,
		Abstract:  s.Abstract,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *SourceMapper) ToModel(s *entity.Source) *model.Source {
	if s == nil {
		return nil
	}

	authorsJson, _ := json.Marshal(s.Authors)

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}
	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Source{
		Id:        s.Id,
		Title:     s.Title,
		Authors:   datatypes.JSON(authorsJson),
		Year:      s.Year,
		Doi:       s.Doi,
		Venue:     s.Venue,
		Abstract:  s.Abstract,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *SourceMapper) ToEntities(sources []*model.Source) []*entity.Source {
	entities := make([]*entity.Source, len(sources))
	for i, s := range sources {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
