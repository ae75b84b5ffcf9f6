package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/internal/fulltext"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/ranking"
	"github.com/mnakhyar/pasal/internal/storage"
)

// Engine runs the multi-tier search: identity fast path, metadata tier, then
// the three-tier content fallback. It is stateless across queries; every
// invocation is a pure function of (query, filters, matchCount) plus the
// current store contents.
type Engine struct {
	store    storage.Storage
	identity *identityResolver
	metadata *metadataSearcher
	content  *contentSearcher
	cfg      *config.SearchConfig
	logger   *zap.Logger
}

// NewEngine creates an engine and loads the RegulationType catalog into an
// immutable in-memory table used by the identity resolver.
func NewEngine(
	ctx context.Context,
	store storage.Storage,
	works fulltext.WorkIndex,
	provisions fulltext.ProvisionIndex,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	types, err := store.ListRegulationTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load regulation type catalog: %w", err)
	}
	catalog := newTypeCatalog(types)
	logger.Debug("regulation type catalog loaded", zap.Int("types", catalog.size()))

	scorer := ranking.NewScorer(&ranking.ScoringConfig{
		AuthorityStep:         cfg.AuthorityStep,
		DefaultHierarchyLevel: cfg.DefaultHierarchyLevel,
		RecencyStep:           cfg.RecencyStep,
		RecencyBaseYear:       cfg.RecencyBaseYear,
	})

	return &Engine{
		store:    store,
		identity: &identityResolver{catalog: catalog, store: store, cfg: cfg, logger: logger},
		metadata: &metadataSearcher{works: works, store: store, scorer: scorer, cfg: cfg, logger: logger},
		content:  &contentSearcher{provisions: provisions, store: store, scorer: scorer, cfg: cfg, logger: logger},
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Search answers one query. Tiers run strictly in sequence; a later tier
// only runs when the earlier ones produced no usable rows (identity) or not
// enough rows (metadata, per the early-exit threshold). Store failures
// surface as a single engine-level error; no tier is retried.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if query.MatchCount <= 0 {
		query.MatchCount = e.cfg.DefaultMatchCount
	}
	if query.MatchCount > e.cfg.MaxMatchCount {
		query.MatchCount = e.cfg.MaxMatchCount
	}

	safe := NormalizeQuery(query.Query)
	if safe == "" {
		return e.respond(query, nil, TierNone, startTime), nil
	}
	filter := query.Filter.Normalize()

	// Identity fast path: a recognized citation skips ranking entirely.
	identityCands, err := e.identity.resolve(ctx, safe, filter)
	if err != nil {
		return nil, err
	}
	if len(identityCands) > 0 {
		hits := e.finalize(identityCands, safe, false)
		return e.respond(query, hits, TierIdentity, startTime), nil
	}

	// Metadata tier: title/subject matches, up to MetadataRowCap rows.
	metaCands, err := e.metadata.search(ctx, safe, filter)
	if err != nil {
		return nil, err
	}
	if len(metaCands) >= query.MatchCount {
		// Early exit: content search is the most expensive tier; skip it when
		// metadata alone fills the request.
		hits := e.finalize(metaCands[:query.MatchCount], safe, false)
		return e.respond(query, hits, TierMetadata, startTime), nil
	}

	// Content tiers fill the remainder of the requested row count.
	remaining := query.MatchCount - len(metaCands)
	res, err := e.content.search(ctx, safe, filter, remaining)
	if err != nil {
		return nil, err
	}

	hits := e.finalize(metaCands, safe, false)
	tier := TierNone
	if len(metaCands) > 0 {
		tier = TierMetadata
	}
	if res.outcome == tierRows {
		// A work's representative node can also be a content match; keep the
		// metadata row so each node appears at most once in a response.
		fresh := dropSeenNodes(res.candidates, metaCands)
		if len(fresh) > 0 {
			highlighted := res.tier != TierSubstring
			hits = append(hits, e.finalize(fresh, safe, highlighted)...)
			if len(metaCands) > 0 {
				tier = TierMetadata + "+" + res.tier
			} else {
				tier = res.tier
			}
		}
	}
	return e.respond(query, hits, tier, startTime), nil
}

// dropSeenNodes removes candidates whose node already appears in seen.
func dropSeenNodes(candidates, seen []*models.Candidate) []*models.Candidate {
	if len(seen) == 0 {
		return candidates
	}
	ids := make(map[string]bool, len(seen))
	for _, c := range seen {
		ids[c.NodeID] = true
	}
	out := make([]*models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !ids[c.NodeID] {
			out = append(out, c)
		}
	}
	return out
}

// finalize converts ranked candidates into hits, computing snippets only for
// these survivors. Highlighted snippets are reserved for the operator and
// lenient content tiers; everything else gets the plain excerpt.
func (e *Engine) finalize(candidates []*models.Candidate, safeQuery string, highlighted bool) []*models.SearchHit {
	hits := make([]*models.SearchHit, 0, len(candidates))
	for _, c := range candidates {
		snippet := ""
		if highlighted {
			snippet = BuildSnippet(c.Content, safeQuery, e.cfg)
		}
		if snippet == "" {
			snippet = Excerpt(c.Content, e.cfg.ExcerptLength)
		}
		hits = append(hits, &models.SearchHit{
			NodeID:  c.NodeID,
			WorkID:  c.WorkID,
			Content: c.Content,
			Metadata: models.HitMetadata{
				Type:       c.TypeCode,
				Number:     c.WorkNumber,
				Year:       c.Year,
				PasalLabel: models.NodeLabel(c.NodeType, c.NodeNumber),
			},
			Score:   c.Score,
			Snippet: snippet,
		})
	}
	return hits
}

func (e *Engine) respond(query *models.SearchQuery, hits []*models.SearchHit, tier string, startTime time.Time) *models.SearchResponse {
	if hits == nil {
		hits = []*models.SearchHit{}
	}
	e.logger.Debug("search complete",
		zap.String("query", query.Query),
		zap.String("tier", tier),
		zap.Int("hits", len(hits)))
	return &models.SearchResponse{
		Hits:      hits,
		Total:     len(hits),
		Tier:      tier,
		QueryTime: time.Since(startTime).Milliseconds(),
		Query:     query.Query,
	}
}

// Group arranges a flat response into per-Work groups for display, fetching
// work titles for the group headers.
func (e *Engine) Group(ctx context.Context, resp *models.SearchResponse, page, perPage int) (*models.GroupedResponse, error) {
	titles := make(map[string]string)
	for _, h := range resp.Hits {
		if _, ok := titles[h.WorkID]; ok {
			continue
		}
		w, err := e.store.GetWork(ctx, h.WorkID)
		if err != nil {
			return nil, err
		}
		titles[h.WorkID] = w.Title
	}
	groups := GroupHits(resp.Hits, titles)
	paged := PaginateGroups(groups, page, perPage)
	if paged == nil {
		paged = []*models.GroupedResult{}
	}
	return &models.GroupedResponse{
		Groups:      paged,
		TotalGroups: len(groups),
		Page:        page,
		PerPage:     perPage,
		Tier:        resp.Tier,
		QueryTime:   resp.QueryTime,
		Query:       resp.Query,
	}, nil
}
