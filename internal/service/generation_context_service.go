package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"ai-paperwriter-be/internal/config"
	"ai-paperwriter-be/internal/dto"
	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/pkg/logger"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/pkg/rag/contextbuilder"
	"ai-paperwriter-be/pkg/rag/ragcache"
	"ai-paperwriter-be/pkg/rag/retriever"

	"github.com/google/uuid"
)

// IGenerationContextService is the caching façade used by document
// generation, where overlapping queries recur across many sections.
type IGenerationContextService interface {
	Retrieve(ctx context.Context, req *dto.RetrieveRequest) (*dto.RetrieveResponse, error)
	BuildContext(ctx context.Context, req *dto.BuildContextRequest) (*dto.BuildContextResponse, error)
	GetRelevantChunks(ctx context.Context, topic string, sourceIds []uuid.UUID, limit int, projectId uuid.UUID) ([]*entity.Chunk, error)
	BuildContexts(ctx context.Context, req *dto.BuildContextsRequest) ([]*dto.SectionContext, error)
}

type generationContextService struct {
	uowFactory unitofwork.RepositoryFactory
	retriever  *retriever.Retriever
	builder    *contextbuilder.Builder
	cache      ragcache.Store
	publisher  IPublisherService
	log        logger.ILogger
	cfg        config.RagConfig
}

func NewGenerationContextService(
	uowFactory unitofwork.RepositoryFactory,
	ret *retriever.Retriever,
	builder *contextbuilder.Builder,
	cache ragcache.Store,
	publisher IPublisherService,
	log logger.ILogger,
	cfg config.RagConfig,
) IGenerationContextService {
	return &generationContextService{
		uowFactory: uowFactory,
		retriever:  ret,
		builder:    builder,
		cache:      cache,
		publisher:  publisher,
		log:        log,
		cfg:        cfg,
	}
}

func (gs *generationContextService) Retrieve(ctx context.Context, req *dto.RetrieveRequest) (*dto.RetrieveResponse, error) {
	cfg := retriever.Config{
		Mode:          retriever.Mode(req.Mode),
		VectorWeight:  gs.cfg.VectorWeight,
		MinScore:      req.MinScore,
		Limit:         req.Limit,
		MaxPerSource:  req.MaxPerSource,
		Rerank:        req.Rerank,
		CitationBoost: req.CitationBoost,
		BoostFactor:   gs.cfg.CitationBoost,
		ProjectId:     req.ProjectId,
		PreRerankLimit:   gs.cfg.PreRerankLimit,
		RerankCandidates: gs.cfg.RerankCandidates,
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = gs.cfg.MinScore
	}
	if cfg.Limit <= 0 {
		cfg.Limit = gs.cfg.Limit
	}
	if cfg.MaxPerSource <= 0 {
		cfg.MaxPerSource = gs.cfg.MaxPerSource
	}

	result, err := gs.retriever.Retrieve(ctx, req.Query, req.SourceIds, cfg)
	if err != nil {
		return nil, err
	}

	return &dto.RetrieveResponse{
		Chunks:   toChunkResponses(result.Chunks),
		UsedMode: string(result.UsedMode),
		Reranked: result.Reranked,
	}, nil
}

func (gs *generationContextService) BuildContext(ctx context.Context, req *dto.BuildContextRequest) (*dto.BuildContextResponse, error) {
	chunks, err := gs.GetRelevantChunks(ctx, req.Query, req.SourceIds, gs.cfg.Limit, req.ProjectId)
	if err != nil {
		return nil, err
	}

	metadata, err := gs.loadMetadata(ctx, chunks)
	if err != nil {
		gs.log.Warn("generation_context", "metadata load failed, formatting without tags", map[string]interface{}{"error": err.Error()})
		metadata = nil
	}

	res, err := gs.builder.Build(ctx, chunks, req.Query, metadata, contextbuilder.Config{
		TokenBudget:       req.TokenBudget,
		Compress:          req.Compress,
		MinSentenceScore:  gs.cfg.QualityFloor,
		GroupBySource:     req.GroupBySource,
		IncludeSourceTags: req.IncludeTags,
	})
	if err != nil {
		return nil, err
	}

	return &dto.BuildContextResponse{
		Context:          res.FormattedContext,
		IncludedChunks:   res.Metrics.IncludedChunks,
		TruncatedChunks:  res.Metrics.TruncatedChunks,
		EstimatedTokens:  res.Metrics.EstimatedTokens,
		CompressionRatio: res.Metrics.CompressionRatio,
	}, nil
}

// GetRelevantChunks is the full fallback chain: ensure content is
// indexed, retrieve through the cache, filter junk, fall back to
// abstracts, and enforce the quality floor.
func (gs *generationContextService) GetRelevantChunks(ctx context.Context, topic string, sourceIds []uuid.UUID, limit int, projectId uuid.UUID) ([]*entity.Chunk, error) {
	if limit <= 0 {
		limit = gs.cfg.Limit
	}
	if len(sourceIds) == 0 {
		return nil, &NoRelevantContentError{Topic: topic}
	}

	indexed, err := gs.ensureIndexed(ctx, sourceIds)
	if err != nil {
		gs.log.Warn("generation_context", "index check failed, retrieving anyway", map[string]interface{}{"error": err.Error()})
		indexed = sourceIds
	}

	var retrieved []*entity.Chunk
	if len(indexed) > 0 {
		superset, err := gs.retrieveSuperset(ctx, topic, indexed, projectId)
		if err != nil {
			gs.log.Warn("generation_context", "retrieval failed, falling back to abstracts", map[string]interface{}{"error": err.Error()})
		} else {
			retrieved = gs.filterSuperset(superset, limit)
		}
	}

	kept := make([]*entity.Chunk, 0, len(retrieved))
	for _, c := range retrieved {
		if isJunkChunk(c.Content) {
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) == 0 {
		return gs.abstractFallback(ctx, topic, sourceIds, limit)
	}

	var total float64
	for _, c := range kept {
		total += c.Score
	}
	aggregate := total / float64(len(kept))
	if aggregate < gs.cfg.QualityFloor {
		return nil, &ContentQualityError{Topic: topic, AggregateScore: aggregate, Floor: gs.cfg.QualityFloor}
	}

	return kept, nil
}

// BuildContexts builds one context per outline section. Sections are
// independent: one section exhausting its fallbacks records an error on
// that section only.
func (gs *generationContextService) BuildContexts(ctx context.Context, req *dto.BuildContextsRequest) ([]*dto.SectionContext, error) {
	sections := make([]*dto.SectionContext, 0, len(req.Outline))

	for _, section := range req.Outline {
		query := section.Title
		if len(section.KeyPoints) > 0 {
			query = fmt.Sprintf("%s: %s", section.Title, strings.Join(section.KeyPoints, "; "))
		}

		candidates := section.SourceIds
		if len(candidates) == 0 {
			candidates = req.SourceIds
		}

		chunks, err := gs.GetRelevantChunks(ctx, query, candidates, gs.cfg.Limit, req.ProjectId)

		// A section scoped to a narrow source set gets one widened try
		// against everything before giving up.
		var noContent *NoRelevantContentError
		if errors.As(err, &noContent) && len(section.SourceIds) > 0 {
			chunks, err = gs.GetRelevantChunks(ctx, query, req.SourceIds, gs.cfg.Limit, req.ProjectId)
		}

		sc := &dto.SectionContext{Title: section.Title}
		if err != nil {
			sc.Error = err.Error()
		} else {
			sc.Chunks = toChunkResponses(chunks)
			if len(chunks) > 0 && chunks[0].EvidenceStrength != entity.EvidenceFullText {
				sc.Fallback = string(chunks[0].EvidenceStrength)
			}
		}
		sections = append(sections, sc)
	}

	return sections, nil
}

// ensureIndexed returns the subset of sources that have chunks. When
// none do it triggers ingestion and re-checks once.
func (gs *generationContextService) ensureIndexed(ctx context.Context, sourceIds []uuid.UUID) ([]uuid.UUID, error) {
	repo := gs.uowFactory.NewUnitOfWork(ctx).SourceChunkRepository()

	counts, err := repo.CountBySource(ctx, sourceIds)
	if err != nil {
		return nil, err
	}

	indexed := withChunks(sourceIds, counts)
	if len(indexed) > 0 {
		return indexed, nil
	}

	gs.log.Info("generation_context", "no indexed content, triggering ingestion", map[string]interface{}{
		"sources": len(sourceIds),
	})
	for _, id := range sourceIds {
		if err := gs.publisher.TriggerIngest(ctx, id); err != nil {
			gs.log.Warn("generation_context", "ingest trigger failed", map[string]interface{}{
				"source_id": id.String(),
				"error":     err.Error(),
			})
		}
	}

	// The in-process consumer indexes abstracts quickly; one brief
	// re-check is all the synchronous path affords.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	counts, err = repo.CountBySource(ctx, sourceIds)
	if err != nil {
		return nil, err
	}
	return withChunks(sourceIds, counts), nil
}

func withChunks(sourceIds []uuid.UUID, counts map[uuid.UUID]int64) []uuid.UUID {
	var indexed []uuid.UUID
	for _, id := range sourceIds {
		if counts[id] > 0 {
			indexed = append(indexed, id)
		}
	}
	return indexed
}

// retrieveSuperset fetches (or reuses) a wide, low-threshold result the
// differently-sized callers can all filter down from, so one expensive
// retrieval serves many limits.
func (gs *generationContextService) retrieveSuperset(ctx context.Context, query string, sourceIds []uuid.UUID, projectId uuid.UUID) ([]*entity.Chunk, error) {
	key := supersetCacheKey(string(retriever.ModeHybrid), projectId != uuid.Nil, query, sourceIds)

	if data, ok := gs.cache.Get(ctx, key); ok {
		var cached []*entity.Chunk
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		gs.cache.Delete(ctx, key)
	}

	cfg := retriever.Config{
		Mode:         retriever.ModeHybrid,
		VectorWeight: gs.cfg.VectorWeight,
		// Half the usual floor: the superset keeps what stricter
		// callers would drop, their own filters re-tighten it.
		MinScore:         gs.cfg.MinScore / 2,
		PreRerankLimit:   gs.cfg.PreRerankLimit,
		Limit:            gs.cfg.PreRerankLimit,
		MaxPerSource:     gs.cfg.PreRerankLimit,
		Rerank:           true,
		RerankCandidates: gs.cfg.RerankCandidates,
	}
	if projectId != uuid.Nil {
		cfg.CitationBoost = true
		cfg.BoostFactor = gs.cfg.CitationBoost
		cfg.ProjectId = projectId
	}

	result, err := gs.retriever.Retrieve(ctx, query, sourceIds, cfg)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result.Chunks); err == nil {
		gs.cache.Set(ctx, key, data, time.Duration(gs.cfg.CacheTTLSeconds)*time.Second)
	}
	return result.Chunks, nil
}

func (gs *generationContextService) filterSuperset(superset []*entity.Chunk, limit int) []*entity.Chunk {
	var filtered []*entity.Chunk
	for _, c := range superset {
		if c.Score >= gs.cfg.MinScore {
			filtered = append(filtered, c)
		}
	}
	return retriever.BalanceChunks(filtered, gs.cfg.MaxPerSource, limit)
}

// abstractFallback synthesizes one chunk per source from its abstract.
func (gs *generationContextService) abstractFallback(ctx context.Context, topic string, sourceIds []uuid.UUID, limit int) ([]*entity.Chunk, error) {
	sources, err := gs.uowFactory.NewUnitOfWork(ctx).SourceRepository().FindByIds(ctx, sourceIds)
	if err != nil {
		return nil, &NoRelevantContentError{Topic: topic}
	}

	var chunks []*entity.Chunk
	for _, src := range sources {
		if strings.TrimSpace(src.Abstract) == "" {
			continue
		}
		chunks = append(chunks, &entity.Chunk{
			SourceId:         src.Id,
			Content:          src.Abstract,
			EvidenceStrength: entity.EvidenceAbstract,
		})
		if len(chunks) >= limit {
			break
		}
	}

	if len(chunks) == 0 {
		return nil, &NoRelevantContentError{Topic: topic}
	}

	gs.log.Info("generation_context", "using abstract fallback", map[string]interface{}{
		"topic":  topic,
		"chunks": len(chunks),
	})
	return chunks, nil
}

func (gs *generationContextService) loadMetadata(ctx context.Context, chunks []*entity.Chunk) (map[uuid.UUID]*entity.SourceMetadata, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, c := range chunks {
		if !seen[c.SourceId] {
			seen[c.SourceId] = true
			ids = append(ids, c.SourceId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	sources, err := gs.uowFactory.NewUnitOfWork(ctx).SourceRepository().FindByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	metadata := make(map[uuid.UUID]*entity.SourceMetadata, len(sources))
	for _, src := range sources {
		metadata[src.Id] = src.Metadata()
	}
	return metadata, nil
}

// supersetCacheKey folds the retrieval-identity fields into a stable
// digest. Source ids are sorted so callers passing the same set in a
// different order share the entry.
func supersetCacheKey(mode string, boost bool, query string, sourceIds []uuid.UUID) string {
	ids := make([]string, len(sourceIds))
	for i, id := range sourceIds {
		ids[i] = id.String()
	}
	sort.Strings(ids)

	payload := fmt.Sprintf("%s|%t|%s|%s", mode, boost, strings.ToLower(strings.TrimSpace(query)), strings.Join(ids, ","))
	sum := sha256.Sum256([]byte(payload))
	return "ragctx:" + hex.EncodeToString(sum[:16])
}

// isJunkChunk flags content too short, too sparse, or too devoid of
// letters to ground a paragraph.
func isJunkChunk(content string) bool {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < 40 {
		return true
	}
	if len(strings.Fields(trimmed)) < 5 {
		return true
	}

	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return float64(letters)/float64(len([]rune(trimmed))) < 0.3
}

func toChunkResponses(chunks []*entity.Chunk) []dto.ChunkResponse {
	out := make([]dto.ChunkResponse, len(chunks))
	for i, c := range chunks {
		out[i] = dto.ChunkResponse{
			Id:               c.Id,
			SourceId:         c.SourceId,
			Content:          c.Content,
			Score:            c.Score,
			VectorScore:      c.VectorScore,
			KeywordScore:     c.KeywordScore,
			RerankedFrom:     c.RerankedFrom,
			EvidenceStrength: string(c.EvidenceStrength),
		}
	}
	return out
}
