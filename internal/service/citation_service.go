package service

import (
	"context"
	"fmt"
	"strings"

	"ai-paperwriter-be/internal/dto"
	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/pkg/logger"
	"ai-paperwriter-be/internal/repository/specification"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/pkg/citation"
	"ai-paperwriter-be/pkg/events"
	"ai-paperwriter-be/pkg/metadata"

	"github.com/google/uuid"
)

const titleSearchLimit = 20

// ICitationService resolves loose references to canonical citations and
// renders them. Add is idempotent per (projectId, sourceId); concurrent
// callers converge on one row.
type ICitationService interface {
	ResolveSourceRef(ctx context.Context, req *dto.ResolveSourceRefRequest) (*dto.ResolveSourceRefResponse, error)
	Add(ctx context.Context, req *dto.AddCitationRequest) (*dto.AddCitationResponse, error)
	RenderInline(ctx context.Context, req *dto.RenderInlineRequest) (*dto.RenderInlineResponse, error)
	RenderBibliography(ctx context.Context, req *dto.RenderBibliographyRequest) (*dto.RenderBibliographyResponse, error)
	ExtractAndCreateFromContent(ctx context.Context, req *dto.ScanContentRequest) (*dto.ScanContentResponse, error)
}

type citationService struct {
	uowFactory unitofwork.RepositoryFactory
	metadata   *metadata.Client
	publisher  IPublisherService
	log        logger.ILogger
}

func NewCitationService(
	uowFactory unitofwork.RepositoryFactory,
	metadataClient *metadata.Client,
	publisher IPublisherService,
	log logger.ILogger,
) ICitationService {
	return &citationService{
		uowFactory: uowFactory,
		metadata:   metadataClient,
		publisher:  publisher,
		log:        log,
	}
}

// ResolveSourceRef maps {doi | title+year | id} to a stored source.
// DOI matching comes first; title matching is fuzzy with a similarity
// floor, preferring sources the project already cites.
func (cs *citationService) ResolveSourceRef(ctx context.Context, req *dto.ResolveSourceRefRequest) (*dto.ResolveSourceRefResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	ref := req.Ref

	if ref.SourceId != uuid.Nil {
		src, err := uow.SourceRepository().FindOne(ctx, specification.ByID{ID: ref.SourceId})
		if err != nil {
			return nil, err
		}
		if src != nil {
			return &dto.ResolveSourceRefResponse{SourceId: &src.Id, Matched: true, Score: 1}, nil
		}
	}

	title := ref.Title
	year := ref.Year

	if doi := citation.NormalizeDOI(ref.Doi); doi != "" {
		src, err := uow.SourceRepository().FindByDOI(ctx, doi)
		if err != nil {
			return nil, err
		}
		if src != nil {
			return &dto.ResolveSourceRefResponse{SourceId: &src.Id, Matched: true, Score: 1}, nil
		}

		// An unknown DOI still helps: its metadata gives us a title and
		// year to fuzzy-match against the local catalog.
		if title == "" && cs.metadata != nil {
			rec, err := cs.metadata.LookupDOI(ctx, doi)
			if err != nil {
				cs.log.Warn("citation", "metadata lookup failed, matching on local data only", map[string]interface{}{
					"doi":   doi,
					"error": err.Error(),
				})
			} else {
				title = rec.Title
				if year == 0 {
					year = rec.Year
				}
			}
		}
	}

	if strings.TrimSpace(title) == "" {
		return &dto.ResolveSourceRefResponse{Matched: false}, nil
	}

	sources, err := uow.SourceRepository().SearchByTitle(ctx, firstTitleWords(title), titleSearchLimit)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return &dto.ResolveSourceRefResponse{Matched: false}, nil
	}

	cited, err := cs.citedSourceSet(ctx, req.ProjectId)
	if err != nil {
		cs.log.Warn("citation", "failed to load cited sources for tie-break", map[string]interface{}{"error": err.Error()})
		cited = nil
	}

	candidates := make([]citation.Candidate, len(sources))
	for i, src := range sources {
		candidates[i] = citation.Candidate{
			Source:       src,
			InLibrary:    true,
			AlreadyCited: cited[src.Id],
		}
	}

	ranked := citation.RankCandidates(title, year, candidates)
	if len(ranked) == 0 {
		return &dto.ResolveSourceRefResponse{Matched: false}, nil
	}

	best := ranked[0]
	return &dto.ResolveSourceRefResponse{SourceId: &best.Source.Id, Matched: true, Score: best.Score}, nil
}

// Add resolves the reference and idempotently persists the canonical
// citation. A lost insert race surfaces as IsNew=false with the
// winner's row, never as an error.
func (cs *citationService) Add(ctx context.Context, req *dto.AddCitationRequest) (*dto.AddCitationResponse, error) {
	resolved, err := cs.ResolveSourceRef(ctx, &dto.ResolveSourceRefRequest{ProjectId: req.ProjectId, Ref: req.Ref})
	if err != nil {
		return nil, err
	}
	if !resolved.Matched || resolved.SourceId == nil {
		return nil, fmt.Errorf("could not resolve source reference for project %s", req.ProjectId)
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	src, err := uow.SourceRepository().FindOne(ctx, specification.ByID{ID: *resolved.SourceId})
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("resolved source %s no longer exists", *resolved.SourceId)
	}

	record := citation.NewRecordFromSource(src)
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bibliographic record for source %s: %w", src.Id, err)
	}
	recordBytes, err := record.MarshalBytes()
	if err != nil {
		return nil, err
	}

	citeKey := citation.CiteKey(req.ProjectId, src.Doi, src.Title, src.Year)

	// First-seen order is only advisory for numeric rendering; an
	// off-by-one under heavy concurrency is harmless because the upsert
	// keeps the winner's value.
	existing, err := uow.CanonicalCitationRepository().Count(ctx, specification.ByProjectID{ProjectID: req.ProjectId})
	if err != nil {
		return nil, err
	}

	canonical := &entity.CanonicalCitation{
		ProjectId:      req.ProjectId,
		SourceId:       src.Id,
		CiteKey:        citeKey,
		CslRecord:      recordBytes,
		Reason:         req.Reason,
		Quote:          req.Quote,
		FirstSeenOrder: int(existing) + 1,
	}

	created, err := uow.CanonicalCitationRepository().Upsert(ctx, canonical)
	if err != nil {
		return nil, err
	}

	if created {
		if err := cs.publisher.PublishEvent(ctx, events.NewCitationCreatedEvent(req.ProjectId, src.Id, canonical.CiteKey)); err != nil {
			cs.log.Warn("citation", "failed to publish citation event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.AddCitationResponse{
		CanonicalCitationId: canonical.Id,
		CiteKey:             canonical.CiteKey,
		IsNew:               created,
	}, nil
}

func (cs *citationService) RenderInline(ctx context.Context, req *dto.RenderInlineRequest) (*dto.RenderInlineResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	canonical, err := uow.CanonicalCitationRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: req.ProjectId},
		specification.BySourceID{SourceID: req.SourceId},
	)
	if err != nil {
		return nil, err
	}
	if canonical == nil {
		return nil, fmt.Errorf("no canonical citation for source %s in project %s", req.SourceId, req.ProjectId)
	}

	rec, err := citation.UnmarshalRecord(canonical.CslRecord)
	if err != nil {
		cs.log.Warn("citation", "corrupt csl record, rendering degraded", map[string]interface{}{
			"citation_id": canonical.Id.String(),
			"error":       err.Error(),
		})
		rec = nil
	}

	return &dto.RenderInlineResponse{
		Inline: citation.RenderInline(rec, styleOrDefault(req.Style), canonical.FirstSeenOrder),
	}, nil
}

func (cs *citationService) RenderBibliography(ctx context.Context, req *dto.RenderBibliographyRequest) (*dto.RenderBibliographyResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	citations, err := uow.CanonicalCitationRepository().FindByProject(ctx, req.ProjectId)
	if err != nil {
		return nil, err
	}

	entries := make([]citation.BibliographyEntry, 0, len(citations))
	for _, c := range citations {
		rec, err := citation.UnmarshalRecord(c.CslRecord)
		if err != nil {
			cs.log.Warn("citation", "skipping corrupt csl record", map[string]interface{}{
				"citation_id": c.Id.String(),
				"error":       err.Error(),
			})
			continue
		}
		entries = append(entries, citation.BibliographyEntry{Record: rec, Order: c.FirstSeenOrder})
	}

	return &dto.RenderBibliographyResponse{
		Bibliography: citation.RenderBibliography(entries, styleOrDefault(req.Style)),
		Entries:      len(entries),
	}, nil
}

// ExtractAndCreateFromContent recovers citations from raw document
// text: every marker is scanned, each distinct reference resolves and
// inserts exactly once no matter how often it is mentioned.
func (cs *citationService) ExtractAndCreateFromContent(ctx context.Context, req *dto.ScanContentRequest) (*dto.ScanContentResponse, error) {
	refs, _ := citation.UniqueRefs(citation.ScanMarkers(req.Content))

	resp := &dto.ScanContentResponse{Refs: refs}
	for _, ref := range refs {
		sourceRef, ok := parseMarkerRef(ref)
		if !ok {
			resp.Failed++
			continue
		}

		added, err := cs.Add(ctx, &dto.AddCitationRequest{
			ProjectId: req.ProjectId,
			Ref:       sourceRef,
			Reason:    "recovered from document content",
		})
		if err != nil {
			cs.log.Warn("citation", "failed to recover citation from content", map[string]interface{}{
				"ref":   ref,
				"error": err.Error(),
			})
			resp.Failed++
			continue
		}
		if added.IsNew {
			resp.Created++
		} else {
			resp.Existing++
		}
	}

	return resp, nil
}

func (cs *citationService) citedSourceSet(ctx context.Context, projectId uuid.UUID) (map[uuid.UUID]bool, error) {
	if projectId == uuid.Nil {
		return nil, nil
	}
	citations, err := cs.uowFactory.NewUnitOfWork(ctx).CanonicalCitationRepository().FindByProject(ctx, projectId)
	if err != nil {
		return nil, err
	}
	cited := make(map[uuid.UUID]bool, len(citations))
	for _, c := range citations {
		cited[c.SourceId] = true
	}
	return cited, nil
}

// parseMarkerRef interprets a marker body as an internal source id or a
// DOI. Anything else is unresolvable.
func parseMarkerRef(ref string) (dto.SourceRef, bool) {
	if id, err := uuid.Parse(ref); err == nil {
		return dto.SourceRef{SourceId: id}, true
	}
	normalized := citation.NormalizeDOI(ref)
	if strings.HasPrefix(normalized, "10.") && strings.Contains(normalized, "/") {
		return dto.SourceRef{Doi: normalized}, true
	}
	return dto.SourceRef{}, false
}

// firstTitleWords keeps the search term short enough for ILIKE to stay
// selective; full similarity scoring happens in memory afterwards.
func firstTitleWords(title string) string {
	fields := strings.Fields(title)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

func styleOrDefault(style string) citation.Style {
	if style == string(citation.StyleNumeric) {
		return citation.StyleNumeric
	}
	return citation.StyleAuthorDate
}
