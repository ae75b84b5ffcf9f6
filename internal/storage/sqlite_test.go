package storage

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mnakhyar/pasal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedTypeUU(t *testing.T, store *SQLiteStorage) *models.RegulationType {
	t.Helper()
	rt := &models.RegulationType{ID: "rt-uu", Code: "UU", NameLocal: "Undang-Undang", HierarchyLevel: 3}
	if err := store.CreateRegulationType(context.Background(), rt); err != nil {
		t.Fatalf("CreateRegulationType: %v", err)
	}
	return rt
}

func seedWork(t *testing.T, store *SQLiteStorage, id, typeID, number string, year int) *models.Work {
	t.Helper()
	w := &models.Work{
		ID: id, RegulationTypeID: typeID, Number: number, Year: year,
		Status: models.StatusBerlaku,
		Title:  fmt.Sprintf("Undang-Undang Nomor %s Tahun %d", number, year),
	}
	if err := store.CreateWork(context.Background(), w); err != nil {
		t.Fatalf("CreateWork: %v", err)
	}
	return w
}

func TestRegulationTypeCatalog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedTypeUU(t, store)

	rt, err := store.GetRegulationTypeByCode(ctx, "UU")
	if err != nil {
		t.Fatalf("GetRegulationTypeByCode: %v", err)
	}
	if rt.NameLocal != "Undang-Undang" || rt.HierarchyLevel != 3 {
		t.Errorf("unexpected type row: %+v", rt)
	}

	if _, err := store.GetRegulationTypeByCode(ctx, "PERGUB"); err == nil {
		t.Error("expected error for unknown code")
	}

	all, err := store.ListRegulationTypes(ctx)
	if err != nil {
		t.Fatalf("ListRegulationTypes: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 type, got %d", len(all))
	}
}

func TestFindWorks_NumberYearAndFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rt := seedTypeUU(t, store)
	seedWork(t, store, "w-13-2003", rt.ID, "13", 2003)
	seedWork(t, store, "w-13-1992", rt.ID, "13", 1992)
	seedWork(t, store, "w-40-2007", rt.ID, "40", 2007)

	num := "13"
	year := 2003
	works, err := store.FindWorks(ctx, WorkLookup{
		RegulationTypeID: rt.ID, Number: &num, Year: &year, Limit: 3,
	})
	if err != nil {
		t.Fatalf("FindWorks: %v", err)
	}
	if len(works) != 1 || works[0].ID != "w-13-2003" {
		t.Fatalf("expected w-13-2003, got %+v", works)
	}

	// Number only: both number-13 works, newest year first.
	works, err = store.FindWorks(ctx, WorkLookup{RegulationTypeID: rt.ID, Number: &num, Limit: 3})
	if err != nil {
		t.Fatalf("FindWorks number-only: %v", err)
	}
	if len(works) != 2 || works[0].Year != 2003 {
		t.Fatalf("expected 2 works newest first, got %+v", works)
	}

	// Status filter excludes everything (all seeded works are berlaku).
	works, err = store.FindWorks(ctx, WorkLookup{
		RegulationTypeID: rt.ID, Number: &num,
		Filter: models.Filter{Status: models.StatusDicabut}, Limit: 3,
	})
	if err != nil {
		t.Fatalf("FindWorks with status filter: %v", err)
	}
	if len(works) != 0 {
		t.Errorf("expected no works with status filter, got %d", len(works))
	}
}

func TestRepresentativeCandidate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rt := seedTypeUU(t, store)
	w := seedWork(t, store, "w1", rt.ID, "13", 2003)

	nodes := []*models.DocumentNode{
		{ID: "n-bab", WorkID: w.ID, NodeType: models.NodeBab, Number: "I", SortOrder: 1},
		{ID: "n-p2", WorkID: w.ID, NodeType: models.NodePasal, Number: "2", Content: "Pembangunan ketenagakerjaan", SortOrder: 3, ParentID: "n-bab"},
		{ID: "n-p1", WorkID: w.ID, NodeType: models.NodePasal, Number: "1", Content: "Dalam undang-undang ini yang dimaksud", SortOrder: 2, ParentID: "n-bab"},
	}
	if err := store.BatchCreateNodes(ctx, nodes); err != nil {
		t.Fatalf("BatchCreateNodes: %v", err)
	}

	c, err := store.RepresentativeCandidate(ctx, w.ID)
	if err != nil {
		t.Fatalf("RepresentativeCandidate: %v", err)
	}
	if c == nil {
		t.Fatal("expected a representative candidate")
	}
	// The bab container sorts first but is not searchable; n-p1 wins.
	if c.NodeID != "n-p1" {
		t.Errorf("representative = %s, want n-p1", c.NodeID)
	}
	if c.TypeCode != "UU" || c.HierarchyLevel != 3 || c.Year != 2003 {
		t.Errorf("joined metadata wrong: %+v", c)
	}

	// A work without searchable content yields nil, not an error.
	w2 := seedWork(t, store, "w2", rt.ID, "40", 2007)
	c2, err := store.RepresentativeCandidate(ctx, w2.ID)
	if err != nil {
		t.Fatalf("RepresentativeCandidate empty work: %v", err)
	}
	if c2 != nil {
		t.Errorf("expected nil candidate, got %+v", c2)
	}
}

func TestSubstringCandidates_CapAndFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rt := seedTypeUU(t, store)
	w := seedWork(t, store, "w1", rt.ID, "13", 2003)

	var nodes []*models.DocumentNode
	for i := 0; i < 30; i++ {
		nodes = append(nodes, &models.DocumentNode{
			ID: fmt.Sprintf("n-%03d", i), WorkID: w.ID, NodeType: models.NodePasal,
			Number: fmt.Sprintf("%d", i+1), Content: fmt.Sprintf("Ketentuan pasal nomor %d", i+1), SortOrder: i + 1,
		})
	}
	// One empty-content node and one container: both must be excluded.
	nodes = append(nodes,
		&models.DocumentNode{ID: "n-empty", WorkID: w.ID, NodeType: models.NodePasal, SortOrder: 100},
		&models.DocumentNode{ID: "n-bab", WorkID: w.ID, NodeType: models.NodeBab, Content: "BAB I", SortOrder: 0},
	)
	if err := store.BatchCreateNodes(ctx, nodes); err != nil {
		t.Fatalf("BatchCreateNodes: %v", err)
	}

	got, err := store.SubstringCandidates(ctx, models.Filter{}, 10)
	if err != nil {
		t.Fatalf("SubstringCandidates: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("cap not applied: got %d rows", len(got))
	}
	for _, c := range got {
		if !models.IsSearchableNodeType(c.NodeType) || c.Content == "" {
			t.Errorf("non-searchable or empty row leaked: %+v", c)
		}
		if strings.HasPrefix(c.NodeID, "n-bab") || c.NodeID == "n-empty" {
			t.Errorf("excluded node returned: %s", c.NodeID)
		}
	}

	// Type filter with a non-matching code returns nothing.
	got, err = store.SubstringCandidates(ctx, models.Filter{TypeCode: "PP"}, 10)
	if err != nil {
		t.Fatalf("SubstringCandidates filtered: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 rows for PP filter, got %d", len(got))
	}
}

func TestCandidatesByNodeIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rt := seedTypeUU(t, store)
	w := seedWork(t, store, "w1", rt.ID, "13", 2003)
	if err := store.BatchCreateNodes(ctx, []*models.DocumentNode{
		{ID: "n1", WorkID: w.ID, NodeType: models.NodePasal, Number: "1", Content: "isi pasal satu", SortOrder: 1},
		{ID: "n2", WorkID: w.ID, NodeType: models.NodePasal, Number: "2", Content: "isi pasal dua", SortOrder: 2},
	}); err != nil {
		t.Fatalf("BatchCreateNodes: %v", err)
	}

	got, err := store.CandidatesByNodeIDs(ctx, []string{"n2", "n-missing"})
	if err != nil {
		t.Fatalf("CandidatesByNodeIDs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 hydrated row, got %d", len(got))
	}
	if got["n2"] == nil || got["n2"].WorkTitle == "" {
		t.Errorf("hydrated row incomplete: %+v", got["n2"])
	}

	empty, err := store.CandidatesByNodeIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty input should return empty map, got %v, %v", empty, err)
	}
}

func TestCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rt := seedTypeUU(t, store)
	w := seedWork(t, store, "w1", rt.ID, "13", 2003)
	if err := store.BatchCreateNodes(ctx, []*models.DocumentNode{
		{ID: "n1", WorkID: w.ID, NodeType: models.NodePasal, Number: "1", Content: "a", SortOrder: 1},
	}); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountWorks(ctx); n != 1 {
		t.Errorf("CountWorks = %d", n)
	}
	if n, _ := store.CountNodes(ctx); n != 1 {
		t.Errorf("CountNodes = %d", n)
	}
	if err := store.DeleteWork(ctx, w.ID); err != nil {
		t.Fatalf("DeleteWork: %v", err)
	}
	if n, _ := store.CountNodes(ctx); n != 0 {
		t.Errorf("nodes not removed with work, count = %d", n)
	}
}
