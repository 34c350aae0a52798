package contextbuilder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/pkg/logger"
	"ai-paperwriter-be/pkg/embedding"
	"ai-paperwriter-be/pkg/rag/score"

	"github.com/google/uuid"
)

// Config controls how ranked chunks are shaped into prompt text.
type Config struct {
	TokenBudget int
	// Compress scores individual sentences against the query and keeps
	// only the relevant ones. Off by default: isolated sentences lose
	// the context a generator needs for natural paraphrase, so this is
	// a budget-overflow escape valve.
	Compress         bool
	MinSentenceScore float64
	GroupBySource    bool
	IncludeSourceTags bool
}

func (c Config) withDefaults() Config {
	if c.TokenBudget <= 0 {
		c.TokenBudget = 3000
	}
	if c.MinSentenceScore <= 0 {
		c.MinSentenceScore = 0.5
	}
	return c
}

// Metrics reports what budgeting and compression did to the input.
type Metrics struct {
	TotalChunks      int
	IncludedChunks   int
	TruncatedChunks  int
	EstimatedTokens  int
	CompressionRatio float64
}

type BuildResult struct {
	FormattedContext string
	Metrics          Metrics
}

// minTruncatedTokens is the smallest remainder worth truncating into;
// below this the overflowing chunk is dropped instead.
const minTruncatedTokens = 40

type Builder struct {
	embedder embedding.EmbeddingProvider
	log      logger.ILogger
}

func NewBuilder(embedder embedding.EmbeddingProvider, log logger.ILogger) *Builder {
	return &Builder{embedder: embedder, log: log}
}

// EstimateTokens approximates token count as characters over four,
// which tracks English subword tokenizers closely enough for budgeting.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Build shapes ranked chunks into a single prompt-ready context string.
// The input order is trusted as relevance order and never rearranged to
// fit the budget.
func (b *Builder) Build(ctx context.Context, chunks []*entity.Chunk, query string, metadata map[uuid.UUID]*entity.SourceMetadata, cfg Config) (*BuildResult, error) {
	cfg = cfg.withDefaults()

	metrics := Metrics{TotalChunks: len(chunks), CompressionRatio: 1.0}
	if len(chunks) == 0 {
		return &BuildResult{FormattedContext: "", Metrics: metrics}, nil
	}

	working := chunks
	if cfg.Compress {
		working = b.compress(ctx, chunks, query, cfg.MinSentenceScore, &metrics)
	}

	if cfg.GroupBySource {
		working = groupBySource(working)
	}

	var parts []string
	remaining := cfg.TokenBudget
	sourceOrdinal := make(map[uuid.UUID]int)

	for _, c := range working {
		text := c.Content
		if cfg.IncludeSourceTags {
			text = sourceTag(c.SourceId, metadata, sourceOrdinal) + " " + text
		}

		cost := EstimateTokens(text)
		if cost <= remaining {
			parts = append(parts, text)
			remaining -= cost
			metrics.IncludedChunks++
			continue
		}

		// The overflowing chunk gets truncated into the remaining budget
		// when that remainder is still meaningful, otherwise dropped.
		// Either way budgeting stops here; later chunks are lower ranked.
		if remaining >= minTruncatedTokens {
			truncated := truncateToTokens(text, remaining)
			parts = append(parts, truncated)
			metrics.IncludedChunks++
			metrics.TruncatedChunks++
			remaining = 0
		}
		break
	}

	formatted := strings.Join(parts, "\n\n")
	metrics.EstimatedTokens = EstimateTokens(formatted)
	return &BuildResult{FormattedContext: formatted, Metrics: metrics}, nil
}

// compress keeps only the sentences of each chunk that score above the
// threshold against the query embedding. A chunk is never emptied: when
// nothing clears the bar its single best sentence survives. Chunks of
// two or fewer sentences pass through untouched.
func (b *Builder) compress(ctx context.Context, chunks []*entity.Chunk, query string, minScore float64, metrics *Metrics) []*entity.Chunk {
	queryRes, err := b.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		b.log.Warn("contextbuilder", "query embedding failed, skipping compression", map[string]interface{}{"error": err.Error()})
		return chunks
	}
	queryVector := queryRes.Embedding.Values

	originalChars := 0
	compressedChars := 0
	out := make([]*entity.Chunk, 0, len(chunks))

	for _, c := range chunks {
		originalChars += len(c.Content)

		sentences := score.SplitSentences(c.Content, nil)
		if len(sentences) <= 2 {
			compressedChars += len(c.Content)
			out = append(out, c)
			continue
		}

		vectors, err := embedding.GenerateBatch(b.embedder, sentences, embedding.TaskSemanticSimilarity)
		if err != nil {
			b.log.Warn("contextbuilder", "sentence embedding failed, keeping chunk whole", map[string]interface{}{"error": err.Error()})
			compressedChars += len(c.Content)
			out = append(out, c)
			continue
		}

		var kept []string
		bestIdx, bestScore := 0, -1.0
		for i, vec := range vectors {
			sim := score.CosineSimilarity(queryVector, vec)
			if sim > bestScore {
				bestScore = sim
				bestIdx = i
			}
			if sim >= minScore {
				kept = append(kept, sentences[i])
			}
		}
		if len(kept) == 0 {
			kept = []string{sentences[bestIdx]}
		}

		compressed := *c
		compressed.Content = strings.Join(kept, " ")
		compressedChars += len(compressed.Content)
		out = append(out, &compressed)
	}

	if originalChars > 0 {
		metrics.CompressionRatio = float64(compressedChars) / float64(originalChars)
	}
	return out
}

// groupBySource makes same-source chunks contiguous, keeping their
// relative order, with sources ordered by their best chunk's score.
func groupBySource(chunks []*entity.Chunk) []*entity.Chunk {
	type group struct {
		best   float64
		chunks []*entity.Chunk
	}
	groups := make(map[uuid.UUID]*group)
	var order []uuid.UUID

	for _, c := range chunks {
		g, ok := groups[c.SourceId]
		if !ok {
			g = &group{best: c.Score}
			groups[c.SourceId] = g
			order = append(order, c.SourceId)
		}
		if c.Score > g.best {
			g.best = c.Score
		}
		g.chunks = append(g.chunks, c)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].best > groups[order[j]].best
	})

	out := make([]*entity.Chunk, 0, len(chunks))
	for _, src := range order {
		out = append(out, groups[src].chunks...)
	}
	return out
}

// sourceTag renders "[Surname Year]" from metadata, or a stable
// "[Source N]" ordinal when metadata is missing.
func sourceTag(sourceId uuid.UUID, metadata map[uuid.UUID]*entity.SourceMetadata, ordinals map[uuid.UUID]int) string {
	if meta, ok := metadata[sourceId]; ok && meta != nil && len(meta.Authors) > 0 && meta.Year > 0 {
		surname := firstAuthorSurname(meta.Authors[0])
		if surname != "" {
			return fmt.Sprintf("[%s %d]", surname, meta.Year)
		}
	}
	n, ok := ordinals[sourceId]
	if !ok {
		n = len(ordinals) + 1
		ordinals[sourceId] = n
	}
	return fmt.Sprintf("[Source %d]", n)
}

func firstAuthorSurname(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func truncateToTokens(text string, tokens int) string {
	maxChars := tokens * 4
	if len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	// Back off to the last space so the truncation doesn't split a word.
	if idx := strings.LastIndex(cut, " "); idx > maxChars/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}
