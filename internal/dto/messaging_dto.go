package dto

import "github.com/google/uuid"

// IngestSourceMessage asks the ingestion consumer to (re)index one source.
type IngestSourceMessage struct {
	SourceId uuid.UUID `json:"source_id"`
}
