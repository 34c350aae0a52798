package service

import (
	"context"
	"strings"

	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/repository/contract"
	"ai-paperwriter-be/internal/repository/specification"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/pkg/citation"
	"ai-paperwriter-be/pkg/embedding"
	"ai-paperwriter-be/pkg/events"

	"github.com/google/uuid"
)

// fakeRepos backs the service tests with in-memory repositories. The
// same instance acts as factory and unit of work; transactions are
// no-ops because nothing here can partially fail.
type fakeRepos struct {
	sources   *fakeSourceRepo
	chunks    *fakeChunkRepo
	claims    *fakeClaimRepo
	citations *fakeCitationRepo
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		sources:   &fakeSourceRepo{},
		chunks:    &fakeChunkRepo{counts: map[uuid.UUID]int64{}},
		claims:    &fakeClaimRepo{},
		citations: &fakeCitationRepo{rows: map[string]*entity.CanonicalCitation{}},
	}
}

func (f *fakeRepos) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f }

func (f *fakeRepos) Begin(ctx context.Context) error { return nil }
func (f *fakeRepos) Commit() error                   { return nil }
func (f *fakeRepos) Rollback() error                 { return nil }

func (f *fakeRepos) SourceRepository() contract.SourceRepository { return f.sources }
func (f *fakeRepos) SourceChunkRepository() contract.SourceChunkRepository {
	return f.chunks
}
func (f *fakeRepos) ClaimRepository() contract.ClaimRepository { return f.claims }
func (f *fakeRepos) CanonicalCitationRepository() contract.CanonicalCitationRepository {
	return f.citations
}

type fakeSourceRepo struct {
	rows []*entity.Source
}

func (r *fakeSourceRepo) Create(ctx context.Context, s *entity.Source) error {
	r.rows = append(r.rows, s)
	return nil
}
func (r *fakeSourceRepo) Update(ctx context.Context, s *entity.Source) error { return nil }
func (r *fakeSourceRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }

func (r *fakeSourceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Source, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			for _, s := range r.rows {
				if s.Id == byId.ID {
					return s, nil
				}
			}
		}
	}
	return nil, nil
}

func (r *fakeSourceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Source, error) {
	return r.rows, nil
}

func (r *fakeSourceRepo) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Source, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*entity.Source
	for _, s := range r.rows {
		if want[s.Id] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSourceRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeSourceRepo) FindByDOI(ctx context.Context, doi string) (*entity.Source, error) {
	normalized := citation.NormalizeDOI(doi)
	for _, s := range r.rows {
		if citation.NormalizeDOI(s.Doi) == normalized && normalized != "" {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSourceRepo) SearchByTitle(ctx context.Context, query string, limit int) ([]*entity.Source, error) {
	var out []*entity.Source
	for _, s := range r.rows {
		if strings.Contains(strings.ToLower(s.Title), strings.ToLower(query)) {
			out = append(out, s)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeChunkRepo struct {
	rows    []*entity.Chunk
	scored  []*contract.ScoredChunk
	counts  map[uuid.UUID]int64
	queries int
}

func (r *fakeChunkRepo) Create(ctx context.Context, c *entity.Chunk, e []float32) error {
	r.rows = append(r.rows, c)
	r.counts[c.SourceId]++
	return nil
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.Chunk, embeddings [][]float32) error {
	for _, c := range chunks {
		r.rows = append(r.rows, c)
		r.counts[c.SourceId]++
	}
	return nil
}

func (r *fakeChunkRepo) DeleteBySourceId(ctx context.Context, sourceId uuid.UUID) error {
	var kept []*entity.Chunk
	for _, c := range r.rows {
		if c.SourceId != sourceId {
			kept = append(kept, c)
		}
	}
	r.rows = kept
	delete(r.counts, sourceId)
	return nil
}

func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var sourceId uuid.UUID
	for _, spec := range specs {
		if bySource, ok := spec.(specification.BySourceID); ok {
			sourceId = bySource.SourceID
		}
	}
	if sourceId == uuid.Nil {
		return r.rows, nil
	}
	var out []*entity.Chunk
	for _, c := range r.rows {
		if c.SourceId == sourceId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeChunkRepo) CountBySource(ctx context.Context, sourceIds []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(sourceIds))
	for _, id := range sourceIds {
		out[id] = r.counts[id]
	}
	return out, nil
}

func (r *fakeChunkRepo) VectorSearch(ctx context.Context, embedding []float32, params contract.ChunkSearchParams) ([]*contract.ScoredChunk, error) {
	r.queries++
	return r.scoped(params.SourceIds), nil
}

func (r *fakeChunkRepo) KeywordSearch(ctx context.Context, query string, params contract.ChunkSearchParams) ([]*contract.ScoredChunk, error) {
	r.queries++
	return r.scoped(params.SourceIds), nil
}

func (r *fakeChunkRepo) HybridSearch(ctx context.Context, embedding []float32, query string, params contract.ChunkSearchParams) ([]*contract.ScoredChunk, error) {
	r.queries++
	return r.scoped(params.SourceIds), nil
}

func (r *fakeChunkRepo) scoped(sourceIds []uuid.UUID) []*contract.ScoredChunk {
	if len(sourceIds) == 0 {
		return r.scored
	}
	want := make(map[uuid.UUID]bool, len(sourceIds))
	for _, id := range sourceIds {
		want[id] = true
	}
	var out []*contract.ScoredChunk
	for _, sc := range r.scored {
		if want[sc.Chunk.SourceId] {
			out = append(out, sc)
		}
	}
	return out
}

type fakeClaimRepo struct {
	rows   []*entity.Claim
	scored []*contract.ScoredClaim
}

func (r *fakeClaimRepo) Create(ctx context.Context, c *entity.Claim, e []float32) error {
	r.rows = append(r.rows, c)
	return nil
}

func (r *fakeClaimRepo) CreateBulk(ctx context.Context, claims []*entity.Claim, embeddings [][]float32) error {
	r.rows = append(r.rows, claims...)
	return nil
}

func (r *fakeClaimRepo) DeleteBySourceId(ctx context.Context, sourceId uuid.UUID) error { return nil }

func (r *fakeClaimRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Claim, error) {
	return nil, nil
}

func (r *fakeClaimRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Claim, error) {
	var sourceId uuid.UUID
	for _, spec := range specs {
		if bySource, ok := spec.(specification.BySourceID); ok {
			sourceId = bySource.SourceID
		}
	}
	if sourceId == uuid.Nil {
		return r.rows, nil
	}
	var out []*entity.Claim
	for _, c := range r.rows {
		if c.SourceId == sourceId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClaimRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeClaimRepo) VectorSearch(ctx context.Context, embedding []float32, sourceIds []uuid.UUID, limit int, minScore float64) ([]*contract.ScoredClaim, error) {
	return r.scored, nil
}

type fakeCitationRepo struct {
	rows map[string]*entity.CanonicalCitation
}

func citationKey(projectId, sourceId uuid.UUID) string {
	return projectId.String() + "|" + sourceId.String()
}

func (r *fakeCitationRepo) Upsert(ctx context.Context, c *entity.CanonicalCitation) (bool, error) {
	key := citationKey(c.ProjectId, c.SourceId)
	if existing, ok := r.rows[key]; ok {
		*c = *existing
		return false, nil
	}
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	stored := *c
	r.rows[key] = &stored
	return true, nil
}

func (r *fakeCitationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanonicalCitation, error) {
	var projectId, sourceId uuid.UUID
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByProjectID:
			projectId = s.ProjectID
		case specification.BySourceID:
			sourceId = s.SourceID
		}
	}
	if c, ok := r.rows[citationKey(projectId, sourceId)]; ok {
		return c, nil
	}
	return nil, nil
}

func (r *fakeCitationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanonicalCitation, error) {
	var projectId uuid.UUID
	for _, spec := range specs {
		if byProject, ok := spec.(specification.ByProjectID); ok {
			projectId = byProject.ProjectID
		}
	}
	var out []*entity.CanonicalCitation
	for _, c := range r.rows {
		if projectId == uuid.Nil || c.ProjectId == projectId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCitationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var projectId uuid.UUID
	for _, spec := range specs {
		if byProject, ok := spec.(specification.ByProjectID); ok {
			projectId = byProject.ProjectID
		}
	}
	var n int64
	for _, c := range r.rows {
		if projectId == uuid.Nil || c.ProjectId == projectId {
			n++
		}
	}
	return n, nil
}

func (r *fakeCitationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for key, c := range r.rows {
		if c.Id == id {
			delete(r.rows, key)
		}
	}
	return nil
}

func (r *fakeCitationRepo) FindByProject(ctx context.Context, projectId uuid.UUID) ([]*entity.CanonicalCitation, error) {
	var out []*entity.CanonicalCitation
	for _, c := range r.rows {
		if c.ProjectId == projectId {
			out = append(out, c)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].FirstSeenOrder < out[i].FirstSeenOrder {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// fakePublisher records what was published instead of delivering it.
type fakePublisher struct {
	ingested []uuid.UUID
	events   []events.Event
}

func (p *fakePublisher) TriggerIngest(ctx context.Context, sourceId uuid.UUID) error {
	p.ingested = append(p.ingested, sourceId)
	return nil
}

func (p *fakePublisher) PublishEvent(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

// wordEmbedder maps text to a small bag-of-words vector so tests get
// real cosine geometry: shared vocabulary means high similarity.
type wordEmbedder struct {
	calls int
}

var embedderVocab = []string{
	"attention", "transformer", "recurrence", "translation", "model",
	"networks", "training", "sequence", "architecture", "dispensing",
}

func (e *wordEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.calls++
	lower := strings.ToLower(text)
	values := make([]float32, len(embedderVocab)+1)
	values[len(embedderVocab)] = 0.05 // keeps zero vectors out of cosine
	for i, word := range embedderVocab {
		values[i] = float32(strings.Count(lower, word))
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: values}}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
