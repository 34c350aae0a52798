package citation

import (
	"encoding/json"

	"ai-paperwriter-be/internal/entity"

	"github.com/go-playground/validator/v10"
)

// CSLName is one author in CSL-JSON shape.
type CSLName struct {
	Family string `json:"family" validate:"required"`
	Given  string `json:"given,omitempty"`
}

// CSLDate carries the CSL-JSON date-parts encoding; only the year is
// ever consumed here.
type CSLDate struct {
	DateParts [][]int `json:"date-parts,omitempty"`
}

func (d *CSLDate) Year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// CSLRecord is a normalized bibliographic record, independent of any
// citation style. External metadata is validated here at the boundary
// before anything downstream trusts it.
type CSLRecord struct {
	Type           string    `json:"type" validate:"required"`
	Title          string    `json:"title" validate:"required,min=1"`
	Author         []CSLName `json:"author,omitempty" validate:"dive"`
	Issued         *CSLDate  `json:"issued,omitempty"`
	ContainerTitle string    `json:"container-title,omitempty"`
	DOI            string    `json:"DOI,omitempty"`
}

var validate = validator.New()

func (r *CSLRecord) Validate() error {
	return validate.Struct(r)
}

func (r *CSLRecord) MarshalBytes() ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalRecord(data []byte) (*CSLRecord, error) {
	var rec CSLRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// NewRecordFromSource builds a CSL record from a stored source. Author
// strings are split on the last space into given/family.
func NewRecordFromSource(src *entity.Source) *CSLRecord {
	rec := &CSLRecord{
		Type:           "article-journal",
		Title:          src.Title,
		ContainerTitle: src.Venue,
		DOI:            NormalizeDOI(src.Doi),
	}
	for _, author := range src.Authors {
		rec.Author = append(rec.Author, splitAuthorName(author))
	}
	if src.Year > 0 {
		rec.Issued = &CSLDate{DateParts: [][]int{{src.Year}}}
	}
	return rec
}

func splitAuthorName(name string) CSLName {
	given, family := "", name
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ' ' {
			given, family = name[:i], name[i+1:]
			break
		}
	}
	return CSLName{Family: family, Given: given}
}
