package dto

import "github.com/google/uuid"

type SourceRef struct {
	SourceId uuid.UUID `json:"source_id,omitempty"`
	Doi      string    `json:"doi,omitempty"`
	Title    string    `json:"title,omitempty"`
	Year     int       `json:"year,omitempty"`
}

type ResolveSourceRefRequest struct {
	ProjectId uuid.UUID `json:"project_id"`
	Ref       SourceRef `json:"ref" validate:"required"`
}

type ResolveSourceRefResponse struct {
	SourceId *uuid.UUID `json:"source_id"`
	Matched  bool       `json:"matched"`
	Score    float64    `json:"score,omitempty"`
}

type AddCitationRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	Ref       SourceRef `json:"ref" validate:"required"`
	Reason    string    `json:"reason"`
	Quote     string    `json:"quote,omitempty"`
}

type AddCitationResponse struct {
	CanonicalCitationId uuid.UUID `json:"canonical_citation_id"`
	CiteKey             string    `json:"cite_key"`
	IsNew               bool      `json:"is_new"`
}

type RenderBibliographyRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	Style     string    `json:"style" validate:"omitempty,oneof=author-date numeric"`
}

type RenderBibliographyResponse struct {
	Bibliography string `json:"bibliography"`
	Entries      int    `json:"entries"`
}

type RenderInlineRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	SourceId  uuid.UUID `json:"source_id" validate:"required"`
	Style     string    `json:"style" validate:"omitempty,oneof=author-date numeric"`
}

type RenderInlineResponse struct {
	Inline string `json:"inline"`
}

type ScanContentRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	Content   string    `json:"content" validate:"required"`
}

type ScanContentResponse struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	Failed   int      `json:"failed"`
	Refs     []string `json:"refs"`
}
