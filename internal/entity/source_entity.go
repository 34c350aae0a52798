package entity

import (
	"time"

	"github.com/google/uuid"
)

// Source is an ingested work (paper, book, preprint) that chunks and
// claims hang off. Abstract is kept denormalized for the fallback path.
type Source struct {
	Id        uuid.UUID
	Title     string
	Authors   []string
	Year      int
	Doi       string
	Venue     string
	Abstract  string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

// SourceMetadata is the slim projection handed to formatting code.
type SourceMetadata struct {
	Id      uuid.UUID
	Title   string
	Authors []string
	Year    int
	Doi     string
	Venue   string
}

// Metadata projects the formatting-relevant fields of a source.
func (s *Source) Metadata() *SourceMetadata {
	if s == nil {
		return nil
	}
	return &SourceMetadata{
		Id:      s.Id,
		Title:   s.Title,
		Authors: s.Authors,
		Year:    s.Year,
		Doi:     s.Doi,
		Venue:   s.Venue,
	}
}
