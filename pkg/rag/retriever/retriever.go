package retriever

import (
	"context"
	"strings"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/pkg/logger"
	"ai-paperwriter-be/internal/repository/contract"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/pkg/embedding"
	"ai-paperwriter-be/pkg/rag/score"
	"ai-paperwriter-be/pkg/rerank"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeHybrid  Mode = "hybrid"
	ModeVector  Mode = "vector"
	ModeKeyword Mode = "keyword"
)

// Config controls one retrieval request.
type Config struct {
	Mode         Mode
	VectorWeight float64
	MinScore     float64
	// PreRerankLimit is how many candidates to pull from the backend
	// before dedup, rerank and balancing shrink the set.
	PreRerankLimit int
	Limit          int
	MaxPerSource   int
	// CitationBoost promotes chunks from sources the project already
	// cites. Requires ProjectId.
	CitationBoost bool
	BoostFactor   float64
	ProjectId     uuid.UUID
	Rerank           bool
	RerankCandidates int
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeHybrid
	}
	if c.VectorWeight <= 0 || c.VectorWeight > 1 {
		c.VectorWeight = 0.7
	}
	if c.PreRerankLimit <= 0 {
		c.PreRerankLimit = 30
	}
	if c.Limit <= 0 {
		c.Limit = 10
	}
	if c.MaxPerSource <= 0 {
		c.MaxPerSource = 3
	}
	if c.RerankCandidates <= 0 {
		c.RerankCandidates = 20
	}
	if c.BoostFactor <= 0 {
		c.BoostFactor = 0.1
	}
	return c
}

// Result is the outcome of one retrieval, annotated with which path
// actually produced it so callers and debug tooling can see fallbacks.
type Result struct {
	Chunks   []*entity.Chunk
	UsedMode Mode
	Reranked bool
}

type Retriever struct {
	repoFactory unitofwork.RepositoryFactory
	embedder    embedding.EmbeddingProvider
	reranker    rerank.Reranker
	log         logger.ILogger
}

func NewRetriever(
	repoFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	reranker rerank.Reranker,
	log logger.ILogger,
) *Retriever {
	return &Retriever{
		repoFactory: repoFactory,
		embedder:    embedder,
		reranker:    reranker,
		log:         log,
	}
}

// Retrieve runs the full pipeline: search with fallbacks, dedup,
// optional rerank, balance. A query too short to mean anything or an
// empty backend yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, sourceIds []uuid.UUID, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	if len(strings.TrimSpace(query)) < 3 {
		return &Result{Chunks: nil, UsedMode: cfg.Mode}, nil
	}

	scored, usedMode := r.searchWithFallbacks(ctx, query, sourceIds, cfg)

	chunks := make([]*entity.Chunk, len(scored))
	for i, s := range scored {
		chunks[i] = s.Chunk
	}

	chunks = DeduplicateChunks(chunks)

	reranked := false
	if cfg.Rerank && r.reranker != nil && r.reranker.Enabled() && len(chunks) > cfg.Limit {
		chunks, reranked = r.rerankChunks(ctx, query, chunks, cfg)
	}

	chunks = BalanceChunks(chunks, cfg.MaxPerSource, cfg.Limit)

	return &Result{Chunks: chunks, UsedMode: usedMode, Reranked: reranked}, nil
}

// RetrieveMultiQuery retrieves once per query variant and fuses the
// ranked lists with RRF. Fusion replaces reranking here; rank agreement
// across variants is the relevance signal.
func (r *Retriever) RetrieveMultiQuery(ctx context.Context, queries []string, sourceIds []uuid.UUID, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	var resultSets [][]*entity.Chunk
	usedMode := cfg.Mode
	for _, q := range queries {
		if len(strings.TrimSpace(q)) < 3 {
			continue
		}
		scored, mode := r.searchWithFallbacks(ctx, q, sourceIds, cfg)
		if len(scored) == 0 {
			continue
		}
		usedMode = mode
		set := make([]*entity.Chunk, len(scored))
		for i, s := range scored {
			set[i] = s.Chunk
		}
		resultSets = append(resultSets, set)
	}

	fused := score.ReciprocalRankFusion(resultSets, score.DefaultRRFConstant)
	fused = DeduplicateChunks(fused)
	fused = BalanceChunks(fused, cfg.MaxPerSource, cfg.Limit)

	return &Result{Chunks: fused, UsedMode: usedMode}, nil
}

// searchWithFallbacks walks the strategy chain for the configured mode.
// Each failed strategy logs and hands over to the next; only full
// exhaustion returns empty.
func (r *Retriever) searchWithFallbacks(ctx context.Context, query string, sourceIds []uuid.UUID, cfg Config) ([]*contract.ScoredChunk, Mode) {
	repo := r.repoFactory.NewUnitOfWork(ctx).SourceChunkRepository()

	params := contract.ChunkSearchParams{
		SourceIds:    sourceIds,
		Limit:        cfg.PreRerankLimit,
		MinScore:     cfg.MinScore,
		VectorWeight: cfg.VectorWeight,
	}
	if cfg.CitationBoost && cfg.ProjectId != uuid.Nil {
		params.ProjectId = cfg.ProjectId
		params.BoostFactor = cfg.BoostFactor
	}

	var queryVector []float32
	if cfg.Mode != ModeKeyword {
		res, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
		if err != nil {
			r.log.Warn("retriever", "query embedding failed, degrading to keyword search", map[string]interface{}{"error": err.Error()})
		} else {
			queryVector = res.Embedding.Values
		}
	}

	type strategy struct {
		mode Mode
		run  func() ([]*contract.ScoredChunk, error)
	}
	var chain []strategy

	if cfg.Mode == ModeHybrid && queryVector != nil {
		chain = append(chain, strategy{ModeHybrid, func() ([]*contract.ScoredChunk, error) {
			return repo.HybridSearch(ctx, queryVector, query, params)
		}})
	}
	if (cfg.Mode == ModeHybrid || cfg.Mode == ModeVector) && queryVector != nil {
		chain = append(chain, strategy{ModeVector, func() ([]*contract.ScoredChunk, error) {
			return repo.VectorSearch(ctx, queryVector, params)
		}})
	}
	chain = append(chain, strategy{ModeKeyword, func() ([]*contract.ScoredChunk, error) {
		return repo.KeywordSearch(ctx, query, params)
	}})

	for _, s := range chain {
		scored, err := s.run()
		if err != nil {
			r.log.Warn("retriever", "search strategy failed, trying next", map[string]interface{}{
				"mode":  string(s.mode),
				"error": err.Error(),
			})
			continue
		}
		if len(scored) > 0 {
			return scored, s.mode
		}
	}
	return nil, cfg.Mode
}

// rerankChunks sends the top candidates through the cross-encoder and
// replaces scores with its relevance judgments. One attempt only; on
// failure the fused order stands.
func (r *Retriever) rerankChunks(ctx context.Context, query string, chunks []*entity.Chunk, cfg Config) ([]*entity.Chunk, bool) {
	candidates := chunks
	if len(candidates) > cfg.RerankCandidates {
		candidates = candidates[:cfg.RerankCandidates]
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Content
	}

	results, err := r.reranker.Rerank(ctx, query, documents, cfg.Limit*2)
	if err != nil {
		r.log.Warn("retriever", "reranking failed, keeping original order", map[string]interface{}{"error": err.Error()})
		return chunks, false
	}
	if len(results) == 0 {
		return chunks, false
	}

	reranked := make([]*entity.Chunk, 0, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(candidates) {
			continue
		}
		c := *candidates[res.Index]
		c.RerankedFrom = c.Score
		c.Score = res.RelevanceScore
		reranked = append(reranked, &c)
	}
	// Candidates beyond the rerank window keep their original scores and
	// trail the reranked set.
	if len(chunks) > len(candidates) {
		reranked = append(reranked, chunks[len(candidates):]...)
	}
	return reranked, true
}
