package retriever

import (
	"sort"
	"strings"

	"ai-paperwriter-be/internal/entity"

	"github.com/google/uuid"
)

// fingerprintLength is how much normalized content identifies a chunk.
// Overlapping-window chunks from the same span share their opening
// characters, so a prefix is enough to catch them.
const fingerprintLength = 100

// ContentFingerprint normalizes a chunk's content and truncates it for
// duplicate detection: lowercase, whitespace collapsed to single spaces.
func ContentFingerprint(content string) string {
	fields := strings.Fields(strings.ToLower(content))
	normalized := strings.Join(fields, " ")
	if len(normalized) > fingerprintLength {
		normalized = normalized[:fingerprintLength]
	}
	return normalized
}

// DeduplicateChunks drops chunks whose content fingerprint has been
// seen already, keeping the first (highest ranked) occurrence. It is
// idempotent and preserves order.
func DeduplicateChunks(chunks []*entity.Chunk) []*entity.Chunk {
	seen := make(map[string]bool, len(chunks))
	out := make([]*entity.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c == nil {
			continue
		}
		fp := ContentFingerprint(c.Content)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, c)
	}
	return out
}

// BalanceChunks caps how many chunks a single source contributes, then
// applies the global limit. Input order is score order after sorting,
// so the cap keeps each source's best chunks.
func BalanceChunks(chunks []*entity.Chunk, maxPerSource, limit int) []*entity.Chunk {
	if maxPerSource <= 0 {
		maxPerSource = len(chunks)
	}

	sorted := make([]*entity.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	perSource := make(map[uuid.UUID]int)
	out := make([]*entity.Chunk, 0, len(sorted))
	for _, c := range sorted {
		if perSource[c.SourceId] >= maxPerSource {
			continue
		}
		perSource[c.SourceId]++
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
