package citation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NormalizeDOI strips the common URL and prefix forms and lowercases,
// so "https://doi.org/10.1000/XYZ" and "doi:10.1000/xyz" compare equal.
func NormalizeDOI(doi string) string {
	d := strings.TrimSpace(strings.ToLower(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		d = strings.TrimPrefix(d, prefix)
	}
	return strings.TrimSpace(d)
}

// NormalizeTitle lowercases, strips punctuation and collapses
// whitespace so near-identical titles hash identically.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '-':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CiteKey derives the deterministic key for a canonical citation. A DOI
// wins when present; otherwise the key hashes (projectId, normalized
// title, year), so retries and concurrent callers always derive the
// same key for the same work.
func CiteKey(projectId uuid.UUID, doi, title string, year int) string {
	if d := NormalizeDOI(doi); d != "" {
		return "doi:" + d
	}
	payload := fmt.Sprintf("%s|%s|%d", projectId.String(), NormalizeTitle(title), year)
	sum := sha256.Sum256([]byte(payload))
	return "ref:" + hex.EncodeToString(sum[:])[:16]
}
