package mapper

import (
	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/model"

	"gorm.io/datatypes"
)

type CitationMapper struct{}

func NewCitationMapper() *CitationMapper {
	return &CitationMapper{}
}

func (m *CitationMapper) ToEntity(c *model.CanonicalCitation) *entity.CanonicalCitation {
	if c == nil {
		return nil
	}
	return &entity.CanonicalCitation{
		Id:             c.Id,
		ProjectId:      c.ProjectId,
		SourceId:       c.SourceId,
		CiteKey:        c.CiteKey,
		CslRecord:      []byte(c.CslRecord),
		Reason:         c.Reason,
		Quote:          c.Quote,
		FirstSeenOrder: c.FirstSeenOrder,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *CitationMapper) ToModel(c *entity.CanonicalCitation) *model.CanonicalCitation {
	if c == nil {
		return nil
	}
	return &model.CanonicalCitation{
		Id:             c.Id,
		ProjectId:      c.ProjectId,
		SourceId:       c.SourceId,
		CiteKey:        c.CiteKey,
		CslRecord:      datatypes.JSON(c.CslRecord),
		Reason:         c.Reason,
		Quote:          c.Quote,
		FirstSeenOrder: c.FirstSeenOrder,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *CitationMapper) ToEntities(citations []*model.CanonicalCitation) []*entity.CanonicalCitation {
	entities := make([]*entity.CanonicalCitation, len(citations))
	for i, c := range citations {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
