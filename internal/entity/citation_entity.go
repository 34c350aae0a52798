package entity

import (
	"time"

	"github.com/google/uuid"
)

// CanonicalCitation is the single durable record for one cited work within
// a project. Uniqueness on (ProjectId, SourceId) is the central invariant:
// any number of citation markers in a document collapse onto one row.
type CanonicalCitation struct {
	Id             uuid.UUID
	ProjectId      uuid.UUID
	SourceId       uuid.UUID
	CiteKey        string
	CslRecord      []byte // normalized CSL JSON
	Reason         string
	Quote          string
	FirstSeenOrder int
	CreatedAt      time.Time
}
