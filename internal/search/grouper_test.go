package search

import (
	"testing"

	"github.com/mnakhyar/pasal/internal/models"
)

func hit(nodeID, workID, label string, score float64) *models.SearchHit {
	return &models.SearchHit{
		NodeID: nodeID, WorkID: workID, Score: score,
		Metadata: models.HitMetadata{PasalLabel: label},
	}
}

func TestGroupHits(t *testing.T) {
	hits := []*models.SearchHit{
		hit("n1", "w1", "Pasal 1", 2.0),
		hit("n2", "w2", "Pasal 88", 5.0),
		hit("n3", "w1", "Pasal 5", 3.0),
		hit("n4", "w1", "Pasal 9", 3.0), // tie with n3: earlier hit keeps best
	}
	titles := map[string]string{"w1": "UU Ketenagakerjaan", "w2": "PP Pengupahan"}

	groups := GroupHits(hits, titles)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Ordered by best score descending: w2 (5.0) before w1 (3.0).
	if groups[0].WorkID != "w2" || groups[1].WorkID != "w1" {
		t.Fatalf("group order wrong: %s, %s", groups[0].WorkID, groups[1].WorkID)
	}

	w1 := groups[1]
	if w1.BestHit.NodeID != "n3" {
		t.Errorf("best hit = %s, want n3 (first of the tied pair)", w1.BestHit.NodeID)
	}
	if w1.BestScore != w1.BestHit.Score {
		t.Error("bestScore must equal bestHit.score")
	}
	if w1.TotalMatchingNodes != 3 {
		t.Errorf("totalMatchingNodes = %d, want 3", w1.TotalMatchingNodes)
	}
	want := []string{"Pasal 1", "Pasal 5", "Pasal 9"}
	for i, label := range want {
		if w1.MatchingNodeLabels[i] != label {
			t.Errorf("labels out of encounter order: %v", w1.MatchingNodeLabels)
			break
		}
	}
	if w1.WorkTitle != "UU Ketenagakerjaan" {
		t.Errorf("title not attached: %q", w1.WorkTitle)
	}
}

func TestGroupHits_CountsDistinctNodes(t *testing.T) {
	hits := []*models.SearchHit{
		hit("n1", "w1", "Pasal 1", 3.0),
		hit("n1", "w1", "Pasal 1", 2.0), // same node surfaced twice
		hit("n2", "w1", "Pasal 2", 1.0),
	}
	groups := GroupHits(hits, nil)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.TotalMatchingNodes != 2 {
		t.Errorf("totalMatchingNodes = %d, want 2 distinct nodes", g.TotalMatchingNodes)
	}
	want := []string{"Pasal 1", "Pasal 2"}
	if len(g.MatchingNodeLabels) != len(want) {
		t.Fatalf("labels = %v, want %v", g.MatchingNodeLabels, want)
	}
	for i, label := range want {
		if g.MatchingNodeLabels[i] != label {
			t.Errorf("labels = %v, want %v", g.MatchingNodeLabels, want)
			break
		}
	}
	if g.BestHit.Score != 3.0 {
		t.Errorf("best hit score = %v, want 3.0", g.BestHit.Score)
	}
}

func TestGroupHits_BestHitIsMember(t *testing.T) {
	hits := []*models.SearchHit{
		hit("n1", "w1", "Pasal 1", 1.0),
		hit("n2", "w1", "Pasal 2", 9.0),
	}
	groups := GroupHits(hits, nil)
	found := false
	for _, h := range hits {
		if h == groups[0].BestHit {
			found = true
		}
	}
	if !found {
		t.Error("bestHit must be one of the group's hits")
	}
}

func TestPaginateGroups(t *testing.T) {
	var groups []*models.GroupedResult
	for i := 0; i < 7; i++ {
		groups = append(groups, &models.GroupedResult{WorkID: string(rune('a' + i))})
	}

	page1 := PaginateGroups(groups, 1, 3)
	if len(page1) != 3 || page1[0].WorkID != "a" {
		t.Errorf("page 1 wrong: %d rows", len(page1))
	}
	page3 := PaginateGroups(groups, 3, 3)
	if len(page3) != 1 || page3[0].WorkID != "g" {
		t.Errorf("last partial page wrong: %d rows", len(page3))
	}
	if got := PaginateGroups(groups, 4, 3); got != nil {
		t.Errorf("out-of-range page should be empty, got %d rows", len(got))
	}
	if got := PaginateGroups(groups, 0, 0); len(got) != 7 {
		t.Errorf("defaults clamp to page 1/perPage 10, got %d rows", len(got))
	}
}
