package entity

import (
	"time"

	"github.com/google/uuid"
)

// Claim is a pre-extracted assertion attributed to a source. Claims are
// produced by the ingestion side and read-only here.
type Claim struct {
	Id            uuid.UUID
	SourceId      uuid.UUID
	ClaimText     string
	EvidenceQuote string
	Section       string
	ClaimType     string
	Confidence    float64
	Score         float64
	CreatedAt     time.Time
}
