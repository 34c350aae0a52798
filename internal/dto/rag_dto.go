package dto

import "github.com/google/uuid"

type RetrieveRequest struct {
	Query         string      `json:"query" validate:"required,min=3"`
	SourceIds     []uuid.UUID `json:"source_ids"`
	ProjectId     uuid.UUID   `json:"project_id"`
	Mode          string      `json:"mode" validate:"omitempty,oneof=hybrid vector keyword"`
	Limit         int         `json:"limit" validate:"omitempty,min=1,max=50"`
	MaxPerSource  int         `json:"max_per_source" validate:"omitempty,min=1"`
	MinScore      float64     `json:"min_score"`
	Rerank        bool        `json:"rerank"`
	CitationBoost bool        `json:"citation_boost"`
}

type ChunkResponse struct {
	Id               uuid.UUID `json:"id"`
	SourceId         uuid.UUID `json:"source_id"`
	Content          string    `json:"content"`
	Score            float64   `json:"score"`
	VectorScore      float64   `json:"vector_score,omitempty"`
	KeywordScore     float64   `json:"keyword_score,omitempty"`
	RerankedFrom     float64   `json:"reranked_from,omitempty"`
	EvidenceStrength string    `json:"evidence_strength"`
}

type RetrieveResponse struct {
	Chunks   []ChunkResponse `json:"chunks"`
	UsedMode string          `json:"used_mode"`
	Reranked bool            `json:"reranked"`
}

type BuildContextRequest struct {
	Query         string      `json:"query" validate:"required,min=3"`
	SourceIds     []uuid.UUID `json:"source_ids" validate:"required,min=1"`
	ProjectId     uuid.UUID   `json:"project_id"`
	TokenBudget   int         `json:"token_budget" validate:"omitempty,min=100"`
	Compress      bool        `json:"compress"`
	GroupBySource bool        `json:"group_by_source"`
	IncludeTags   bool        `json:"include_tags"`
}

type BuildContextResponse struct {
	Context          string  `json:"context"`
	IncludedChunks   int     `json:"included_chunks"`
	TruncatedChunks  int     `json:"truncated_chunks"`
	EstimatedTokens  int     `json:"estimated_tokens"`
	CompressionRatio float64 `json:"compression_ratio"`
}

type GenerationContextRequest struct {
	Topic     string      `json:"topic" validate:"required,min=3"`
	SourceIds []uuid.UUID `json:"source_ids" validate:"required,min=1"`
	ProjectId uuid.UUID   `json:"project_id"`
	Limit     int         `json:"limit" validate:"omitempty,min=1,max=50"`
}

type OutlineSection struct {
	Title     string      `json:"title" validate:"required"`
	KeyPoints []string    `json:"key_points"`
	SourceIds []uuid.UUID `json:"source_ids"`
}

type BuildContextsRequest struct {
	Topic     string           `json:"topic" validate:"required,min=3"`
	Outline   []OutlineSection `json:"outline" validate:"required,min=1,dive"`
	SourceIds []uuid.UUID      `json:"source_ids" validate:"required,min=1"`
	ProjectId uuid.UUID        `json:"project_id"`
}

type SectionContext struct {
	Title    string          `json:"title"`
	Chunks   []ChunkResponse `json:"chunks"`
	Fallback string          `json:"fallback,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type EditorContextRequest struct {
	Query     string      `json:"query" validate:"required,min=3"`
	SourceIds []uuid.UUID `json:"source_ids"`
	Limit     int         `json:"limit" validate:"omitempty,min=1,max=30"`
	MinScore  float64     `json:"min_score"`
}

type ClaimResponse struct {
	Id            uuid.UUID `json:"id"`
	SourceId      uuid.UUID `json:"source_id"`
	ClaimText     string    `json:"claim_text"`
	EvidenceQuote string    `json:"evidence_quote,omitempty"`
	Section       string    `json:"section,omitempty"`
	ClaimType     string    `json:"claim_type,omitempty"`
	Confidence    float64   `json:"confidence"`
	Score         float64   `json:"score"`
}

type EditorContextResponse struct {
	Chunks []ChunkResponse `json:"chunks"`
	Claims []ClaimResponse `json:"claims"`
	Cached bool            `json:"cached"`
}

type VerifyCitationRequest struct {
	ClaimText string    `json:"claim_text" validate:"required,min=3"`
	SourceId  uuid.UUID `json:"source_id" validate:"required"`
	Threshold float64   `json:"threshold"`
}

type VerifyCitationResponse struct {
	Verified   bool    `json:"verified"`
	Similarity float64 `json:"similarity"`
	Evidence   string  `json:"evidence,omitempty"`
}

type VerifyAllCitationsRequest struct {
	Content   string      `json:"content" validate:"required"`
	SourceIds []uuid.UUID `json:"source_ids"`
	Threshold float64     `json:"threshold"`
}

type CitationVerification struct {
	Ref        string  `json:"ref"`
	Fragment   string  `json:"fragment"`
	Verified   bool    `json:"verified"`
	Similarity float64 `json:"similarity"`
}

type VerifyAllCitationsResponse struct {
	Results []CitationVerification `json:"results"`
}
