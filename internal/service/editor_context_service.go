package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"ai-paperwriter-be/internal/dto"
	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/pkg/logger"
	"ai-paperwriter-be/internal/repository/contract"
	"ai-paperwriter-be/internal/repository/specification"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/pkg/citation"
	"ai-paperwriter-be/pkg/embedding"
	"ai-paperwriter-be/pkg/rag/ragcache"
	"ai-paperwriter-be/pkg/rag/score"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// verification window and threshold defaults for inline completion.
const (
	defaultVerifyThreshold = 0.72
	verifyWindowChars      = 300
	editorResultTTL        = 2 * time.Minute
	embeddingTTL           = 15 * time.Minute
	editorDefaultLimit     = 8
	verifyEvidenceLimit    = 20
)

// IEditorContextService is the low-latency façade for inline
// completion: parallel chunk+claim retrieval, aggressive caching, and
// semantic citation verification.
type IEditorContextService interface {
	RetrieveEditorContext(ctx context.Context, req *dto.EditorContextRequest) (*dto.EditorContextResponse, error)
	VerifyCitation(ctx context.Context, req *dto.VerifyCitationRequest) (*dto.VerifyCitationResponse, error)
	VerifyAllCitations(ctx context.Context, req *dto.VerifyAllCitationsRequest) (*dto.VerifyAllCitationsResponse, error)
}

type editorContextService struct {
	uowFactory  unitofwork.RepositoryFactory
	embedder    embedding.EmbeddingProvider
	resultCache ragcache.Store
	embedCache  ragcache.Store
	log         logger.ILogger
	minScore    float64
}

func NewEditorContextService(
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	resultCache ragcache.Store,
	embedCache ragcache.Store,
	log logger.ILogger,
	minScore float64,
) IEditorContextService {
	if minScore <= 0 {
		minScore = 0.35
	}
	return &editorContextService{
		uowFactory:  uowFactory,
		embedder:    embedder,
		resultCache: resultCache,
		embedCache:  embedCache,
		log:         log,
		minScore:    minScore,
	}
}

func (es *editorContextService) RetrieveEditorContext(ctx context.Context, req *dto.EditorContextRequest) (*dto.EditorContextResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = editorDefaultLimit
	}
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = es.minScore
	}

	key := editorCacheKey(req.Query, req.SourceIds, limit, minScore)
	if data, ok := es.resultCache.Get(ctx, key); ok {
		var cached dto.EditorContextResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			cached.Cached = true
			return &cached, nil
		}
		es.resultCache.Delete(ctx, key)
	}

	queryVector, err := es.embedCached(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := es.uowFactory.NewUnitOfWork(ctx)

	// Chunks and claims search in parallel off the same embedding; a
	// failed branch degrades to empty instead of aborting its sibling.
	var chunks []*contract.ScoredChunk
	var claims []*contract.ScoredClaim

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := uow.SourceChunkRepository().VectorSearch(gctx, queryVector, contract.ChunkSearchParams{
			SourceIds: req.SourceIds,
			Limit:     limit,
			MinScore:  minScore,
		})
		if err != nil {
			es.log.Warn("editor_context", "chunk search failed", map[string]interface{}{"error": err.Error()})
			return nil
		}
		chunks = res
		return nil
	})
	g.Go(func() error {
		res, err := uow.ClaimRepository().VectorSearch(gctx, queryVector, req.SourceIds, limit, minScore)
		if err != nil {
			es.log.Warn("editor_context", "claim search failed", map[string]interface{}{"error": err.Error()})
			return nil
		}
		claims = res
		return nil
	})
	_ = g.Wait()

	resp := &dto.EditorContextResponse{
		Chunks: make([]dto.ChunkResponse, 0, len(chunks)),
		Claims: make([]dto.ClaimResponse, 0, len(claims)),
	}
	for _, sc := range chunks {
		resp.Chunks = append(resp.Chunks, toChunkResponses([]*entity.Chunk{sc.Chunk})[0])
	}
	for _, sc := range claims {
		resp.Claims = append(resp.Claims, dto.ClaimResponse{
			Id:            sc.Claim.Id,
			SourceId:      sc.Claim.SourceId,
			ClaimText:     sc.Claim.ClaimText,
			EvidenceQuote: sc.Claim.EvidenceQuote,
			Section:       sc.Claim.Section,
			ClaimType:     sc.Claim.ClaimType,
			Confidence:    sc.Claim.Confidence,
			Score:         sc.Score,
		})
	}

	if data, err := json.Marshal(resp); err == nil {
		es.resultCache.Set(ctx, key, data, editorResultTTL)
	}
	return resp, nil
}

// VerifyCitation checks whether claim text is semantically supported by
// the source's stored evidence. Matching is embedding based: a claim
// that paraphrases a chunk without sharing words still verifies.
func (es *editorContextService) VerifyCitation(ctx context.Context, req *dto.VerifyCitationRequest) (*dto.VerifyCitationResponse, error) {
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = defaultVerifyThreshold
	}

	evidence, err := es.sourceEvidence(ctx, req.SourceId)
	if err != nil {
		return nil, err
	}
	if len(evidence) == 0 {
		return &dto.VerifyCitationResponse{Verified: false, Similarity: 0}, nil
	}

	claimVector, err := es.embedCached(ctx, req.ClaimText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed claim: %w", err)
	}

	best := 0.0
	bestEvidence := ""
	for _, text := range evidence {
		vec, err := es.embedCached(ctx, text)
		if err != nil {
			es.log.Warn("editor_context", "evidence embedding failed", map[string]interface{}{"error": err.Error()})
			continue
		}
		if sim := score.CosineSimilarity(claimVector, vec); sim > best {
			best = sim
			bestEvidence = text
		}
	}

	resp := &dto.VerifyCitationResponse{
		Verified:   best >= threshold,
		Similarity: best,
	}
	if resp.Verified {
		resp.Evidence = bestEvidence
	}
	return resp, nil
}

// VerifyAllCitations verifies each citation marker against the sentence
// fragment that precedes it.
func (es *editorContextService) VerifyAllCitations(ctx context.Context, req *dto.VerifyAllCitationsRequest) (*dto.VerifyAllCitationsResponse, error) {
	markers := citation.ScanMarkers(req.Content)
	resp := &dto.VerifyAllCitationsResponse{Results: make([]dto.CitationVerification, 0, len(markers))}

	for _, m := range markers {
		fragment := precedingFragment(req.Content, m.Position)
		result := dto.CitationVerification{Ref: m.Ref, Fragment: fragment}

		sourceId, err := uuid.Parse(m.Ref)
		if err != nil || fragment == "" {
			resp.Results = append(resp.Results, result)
			continue
		}

		verified, err := es.VerifyCitation(ctx, &dto.VerifyCitationRequest{
			ClaimText: fragment,
			SourceId:  sourceId,
			Threshold: req.Threshold,
		})
		if err != nil {
			es.log.Warn("editor_context", "verification failed for marker", map[string]interface{}{
				"ref":   m.Ref,
				"error": err.Error(),
			})
			resp.Results = append(resp.Results, result)
			continue
		}

		result.Verified = verified.Verified
		result.Similarity = verified.Similarity
		resp.Results = append(resp.Results, result)
	}

	return resp, nil
}

// sourceEvidence gathers the stored chunk and claim texts for one source.
func (es *editorContextService) sourceEvidence(ctx context.Context, sourceId uuid.UUID) ([]string, error) {
	uow := es.uowFactory.NewUnitOfWork(ctx)

	chunks, err := uow.SourceChunkRepository().FindAll(ctx,
		specification.BySourceID{SourceID: sourceId},
		specification.Pagination{Limit: verifyEvidenceLimit},
	)
	if err != nil {
		return nil, err
	}
	claims, err := uow.ClaimRepository().FindAll(ctx,
		specification.BySourceID{SourceID: sourceId},
		specification.Pagination{Limit: verifyEvidenceLimit},
	)
	if err != nil {
		return nil, err
	}

	evidence := make([]string, 0, len(chunks)+len(claims))
	for _, c := range chunks {
		evidence = append(evidence, c.Content)
	}
	for _, c := range claims {
		evidence = append(evidence, c.ClaimText)
	}
	return evidence, nil
}

// embedCached embeds text through the shared embedding cache, keyed by
// a cheap fingerprint so query and verification paths reuse each
// other's vectors.
func (es *editorContextService) embedCached(ctx context.Context, text string) ([]float32, error) {
	key := embeddingCacheKey(text)

	if data, ok := es.embedCache.Get(ctx, key); ok {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
		es.embedCache.Delete(ctx, key)
	}

	res, err := es.embedder.Generate(text, embedding.TaskSemanticSimilarity)
	if err != nil {
		return nil, err
	}
	vec := res.Embedding.Values

	if data, err := json.Marshal(vec); err == nil {
		es.embedCache.Set(ctx, key, data, embeddingTTL)
	}
	return vec, nil
}

func editorCacheKey(query string, sourceIds []uuid.UUID, limit int, minScore float64) string {
	ids := make([]string, len(sourceIds))
	for i, id := range sourceIds {
		ids[i] = id.String()
	}
	sort.Strings(ids)
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("editor:%s|%s|%d|%.2f", normalized, strings.Join(ids, ","), limit, minScore)
}

func embeddingCacheKey(text string) string {
	h := fnv.New64a()
	h.Write([]byte(strings.TrimSpace(text)))
	return fmt.Sprintf("embed:%d:%x", len(text), h.Sum64())
}

// precedingFragment returns the last sentence-like fragment of the
// bounded window before a marker; that fragment is the claim the
// marker backs.
func precedingFragment(content string, position int) string {
	start := position - verifyWindowChars
	if start < 0 {
		start = 0
	}
	window := strings.TrimSpace(content[start:position])
	if window == "" {
		return ""
	}

	sentences := score.SplitSentences(window, nil)
	if len(sentences) > 0 {
		return sentences[len(sentences)-1]
	}
	return window
}
