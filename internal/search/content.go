package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/internal/fulltext"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/ranking"
	"github.com/mnakhyar/pasal/internal/storage"
)

// Tier names as reported in responses.
const (
	TierIdentity  = "identity"
	TierMetadata  = "metadata"
	TierOperator  = "operator"
	TierLenient   = "lenient"
	TierSubstring = "substring"
	TierNone      = "none"
)

// tierOutcome is the explicit state of one tier in the fallback chain,
// so "first non-empty tier wins" is auditable tier by tier.
type tierOutcome int

const (
	tierNoAttempt tierOutcome = iota
	tierEmpty
	tierRows
)

type tierResult struct {
	tier       string
	outcome    tierOutcome
	candidates []*models.Candidate
}

// contentSearcher finds individual provisions whose body text matches the
// query, trying three progressively more permissive strategies. The first
// strategy producing any row wins; later tiers are fallbacks, not
// complements.
type contentSearcher struct {
	provisions fulltext.ProvisionIndex
	store      storage.Storage
	scorer     *ranking.Scorer
	cfg        *config.SearchConfig
	logger     *zap.Logger
}

// search runs the tier chain and returns the winning tier's top-limit
// candidates. Candidates carry no snippets: snippet extraction happens only
// after ranking and truncation, never on discarded rows.
func (c *contentSearcher) search(ctx context.Context, safeQuery string, filter models.Filter, limit int) (*tierResult, error) {
	for _, run := range []func(context.Context, string, models.Filter, int) (*tierResult, error){
		c.operatorTier,
		c.lenientTier,
		c.substringTier,
	} {
		res, err := run(ctx, safeQuery, filter, limit)
		if err != nil {
			return nil, err
		}
		if res.outcome == tierRows {
			c.logger.Debug("content tier produced rows",
				zap.String("tier", res.tier),
				zap.Int("rows", len(res.candidates)))
			return res, nil
		}
	}
	return &tierResult{tier: TierNone, outcome: tierEmpty}, nil
}

// operatorTier parses the query with the operator-aware parser. Malformed
// operator syntax is recovered locally as "no result" so the lenient tier
// gets its turn; it never fails the request.
func (c *contentSearcher) operatorTier(ctx context.Context, safeQuery string, filter models.Filter, limit int) (*tierResult, error) {
	hits, err := c.provisions.Search(ctx, safeQuery, fulltext.ModeOperator, filter, c.cfg.ContentCandidateCap)
	if err != nil {
		if errors.Is(err, fulltext.ErrBadQuerySyntax) {
			c.logger.Debug("operator tier parse failure, falling through", zap.Error(err))
			return &tierResult{tier: TierOperator, outcome: tierEmpty}, nil
		}
		return nil, err
	}
	return c.rank(ctx, TierOperator, hits, limit)
}

// lenientTier retries with the query as a plain bag of required keywords.
func (c *contentSearcher) lenientTier(ctx context.Context, safeQuery string, filter models.Filter, limit int) (*tierResult, error) {
	hits, err := c.provisions.Search(ctx, safeQuery, fulltext.ModeLenient, filter, c.cfg.ContentCandidateCap)
	if err != nil {
		return nil, err
	}
	return c.rank(ctx, TierLenient, hits, limit)
}

// substringTier is the literal fallback: every query word longer than 2
// characters must appear as a case-insensitive substring. No relevance
// signal exists here, so every surviving row gets the fixed low sentinel
// score. The candidate cap applies before the filter even runs.
func (c *contentSearcher) substringTier(ctx context.Context, safeQuery string, filter models.Filter, limit int) (*tierResult, error) {
	words := substringWords(safeQuery)
	if len(words) == 0 {
		return &tierResult{tier: TierSubstring, outcome: tierEmpty}, nil
	}

	rows, err := c.store.SubstringCandidates(ctx, filter, c.cfg.SubstringCandidateCap)
	if err != nil {
		return nil, err
	}

	var kept []*models.Candidate
	for _, cand := range rows {
		content := strings.ToLower(cand.Content)
		all := true
		for _, w := range words {
			if !strings.Contains(content, w) {
				all = false
				break
			}
		}
		if all {
			cand.Raw = 0
			cand.Score = c.cfg.SubstringScore
			kept = append(kept, cand)
		}
	}
	if len(kept) == 0 {
		return &tierResult{tier: TierSubstring, outcome: tierEmpty}, nil
	}
	sortCandidates(kept)
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return &tierResult{tier: TierSubstring, outcome: tierRows, candidates: kept}, nil
}

// rank hydrates the index hits, applies the shared score formula, and keeps
// the top limit rows with a deterministic tie-break.
func (c *contentSearcher) rank(ctx context.Context, tier string, hits []fulltext.Hit, limit int) (*tierResult, error) {
	if len(hits) == 0 {
		return &tierResult{tier: tier, outcome: tierEmpty}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	rows, err := c.store.CandidatesByNodeIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.Candidate, 0, len(hits))
	for _, h := range hits {
		cand, ok := rows[h.ID]
		if !ok {
			// Index ahead of the store (e.g. mid-reingest); skip quietly.
			continue
		}
		cand.Raw = h.Score
		cand.Score = c.scorer.Score(h.Score, cand.HierarchyLevel, cand.Year)
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 {
		return &tierResult{tier: tier, outcome: tierEmpty}, nil
	}

	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return &tierResult{tier: tier, outcome: tierRows, candidates: candidates}, nil
}

// substringWords returns the lower-cased query words longer than 2
// characters; these all must appear for a substring match.
func substringWords(safeQuery string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(safeQuery)) {
		if len([]rune(w)) > 2 {
			out = append(out, w)
		}
	}
	return out
}
