package mapper

import (
	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/model"
)

type ClaimMapper struct{}

func NewClaimMapper() *ClaimMapper {
	return &ClaimMapper{}
}

func (m *ClaimMapper) ToEntity(c *model.Claim) *entity.Claim {
	if c == nil {
		return nil
	}
	return &entity.Claim{
		Id:            c.Id,
		SourceId:      c.SourceId,
		ClaimText:     c.ClaimText,
		EvidenceQuote: c.EvidenceQuote,
		Section:       c.Section,
		ClaimType:     c.ClaimType,
		Confidence:    c.Confidence,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *ClaimMapper) ToEntities(claims []*model.Claim) []*entity.Claim {
	entities := make([]*entity.Claim, len(claims))
	for i, c := range claims {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
