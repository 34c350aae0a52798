package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	CitationCreatedType = "CITATION_CREATED"
	IngestRequestedType = "INGEST_SOURCE_REQUESTED"
	// SourceUpdatedType is published by external ingestion pipelines when
	// a source's content changes; receiving it triggers reindexing here.
	SourceUpdatedType = "SOURCE_UPDATED"
)

// NewCitationCreatedEvent fires when a project gains a new canonical
// citation. Duplicate resolutions of the same source do not fire it.
func NewCitationCreatedEvent(projectId, sourceId uuid.UUID, citeKey string) Event {
	return BaseEvent{
		Type: CitationCreatedType,
		Data: map[string]interface{}{
			"project_id": projectId.String(),
			"source_id":  sourceId.String(),
			"cite_key":   citeKey,
		},
		OccurredAt: time.Now(),
	}
}

// NewIngestRequestedEvent fires when retrieval finds a source with no
// indexed chunks, asking the ingestion worker to (re)index it.
func NewIngestRequestedEvent(sourceId uuid.UUID) Event {
	return BaseEvent{
		Type: IngestRequestedType,
		Data: map[string]interface{}{
			"source_id": sourceId.String(),
		},
		OccurredAt: time.Now(),
	}
}
