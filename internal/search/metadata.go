package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/internal/fulltext"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/ranking"
	"github.com/mnakhyar/pasal/internal/storage"
)

// metadataSearcher catches queries that describe a regulation by title or
// subject rather than its body text (e.g. a colloquial law name).
type metadataSearcher struct {
	works  fulltext.WorkIndex
	store  storage.Storage
	scorer *ranking.Scorer
	cfg    *config.SearchConfig
	logger *zap.Logger
}

// search ranks works by title relevance and returns up to MetadataRowCap
// candidates, each represented by the work's lowest sort-order searchable
// node. Works without searchable content are skipped.
func (m *metadataSearcher) search(ctx context.Context, safeQuery string, filter models.Filter) ([]*models.Candidate, error) {
	hits, err := m.works.Search(ctx, safeQuery, filter, m.cfg.MetadataCandidateCap)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	candidates := make([]*models.Candidate, 0, len(hits))
	for _, hit := range hits {
		c, err := m.store.RepresentativeCandidate(ctx, hit.ID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		c.Raw = hit.Score
		c.Score = m.scorer.Score(hit.Score, c.HierarchyLevel, c.Year)
		candidates = append(candidates, c)
	}

	sortCandidates(candidates)
	if len(candidates) > m.cfg.MetadataRowCap {
		candidates = candidates[:m.cfg.MetadataRowCap]
	}
	m.logger.Debug("metadata tier", zap.Int("rows", len(candidates)))
	return candidates, nil
}

// sortCandidates orders by final score descending with node ID ascending as
// the deterministic tie-break.
func sortCandidates(candidates []*models.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].NodeID < candidates[j].NodeID
	})
}
