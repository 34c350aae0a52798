package entity

import (
	"time"

	"github.com/google/uuid"
)

// EvidenceStrength labels how much of the underlying source a chunk
// actually covers. Retrieval tags it; consumers decide what to do with it.
type EvidenceStrength string

const (
	EvidenceFullText  EvidenceStrength = "full_text"
	EvidenceAbstract  EvidenceStrength = "abstract"
	EvidenceTitleOnly EvidenceStrength = "title_only"
)

// Chunk is a retrievable span of source content. Score and its sibling
// diagnostic fields are request-scoped and never persisted.
type Chunk struct {
	Id               uuid.UUID
	SourceId         uuid.UUID
	Content          string
	ChunkIndex       int
	Score            float64
	VectorScore      float64
	KeywordScore     float64
	RerankedFrom     float64 // original score before cross-encoder reranking, 0 if not reranked
	EvidenceStrength EvidenceStrength
	CreatedAt        time.Time
}
