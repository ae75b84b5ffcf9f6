package search

import (
	"sort"

	"github.com/mnakhyar/pasal/internal/models"
)

// GroupHits merges the flat ordered hit list into one result per Work.
// Within a group the highest-scoring hit becomes the best hit (ties keep the
// earlier hit), node labels are collected in encounter order, and groups are
// ordered by best score descending. Node counts and labels are per distinct
// node: a node appearing under more than one hit is counted once.
func GroupHits(hits []*models.SearchHit, titles map[string]string) []*models.GroupedResult {
	var (
		order  []string
		byWork = make(map[string]*models.GroupedResult)
		seen   = make(map[string]bool, len(hits))
	)
	for _, hit := range hits {
		g, ok := byWork[hit.WorkID]
		if !ok {
			g = &models.GroupedResult{
				WorkID:    hit.WorkID,
				WorkTitle: titles[hit.WorkID],
			}
			byWork[hit.WorkID] = g
			order = append(order, hit.WorkID)
		}
		if g.BestHit == nil || hit.Score > g.BestScore {
			g.BestHit = hit
			g.BestScore = hit.Score
		}
		if !seen[hit.NodeID] {
			seen[hit.NodeID] = true
			g.TotalMatchingNodes++
			g.MatchingNodeLabels = append(g.MatchingNodeLabels, hit.Metadata.PasalLabel)
		}
	}

	groups := make([]*models.GroupedResult, 0, len(byWork))
	for _, id := range order {
		groups = append(groups, byWork[id])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].BestScore > groups[j].BestScore
	})
	return groups
}

// PaginateGroups slices grouped results into one page. Page numbering starts
// at 1; out-of-range pages return an empty slice.
func PaginateGroups(groups []*models.GroupedResult, page, perPage int) []*models.GroupedResult {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	start := (page - 1) * perPage
	if start >= len(groups) {
		return nil
	}
	end := start + perPage
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end]
}
