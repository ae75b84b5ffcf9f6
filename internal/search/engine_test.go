package search

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/internal/fulltext"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/storage"
)

// spyProvisionIndex counts content-tier searches so tests can assert the
// metadata early exit really skips them.
type spyProvisionIndex struct {
	fulltext.ProvisionIndex
	searches int
}

func (s *spyProvisionIndex) Search(ctx context.Context, query string, mode fulltext.Mode, f models.Filter, limit int) ([]fulltext.Hit, error) {
	s.searches++
	return s.ProvisionIndex.Search(ctx, query, mode, f, limit)
}

type engineFixture struct {
	engine *Engine
	store  *storage.SQLiteStorage
	works  fulltext.WorkIndex
	spy    *spyProvisionIndex
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	dir := t.TempDir()
	works, err := fulltext.NewBleveWorkIndex(filepath.Join(dir, "works"))
	if err != nil {
		t.Fatalf("NewBleveWorkIndex: %v", err)
	}
	t.Cleanup(func() { _ = works.Close() })
	provisions, err := fulltext.NewBleveProvisionIndex(filepath.Join(dir, "provisions"))
	if err != nil {
		t.Fatalf("NewBleveProvisionIndex: %v", err)
	}
	t.Cleanup(func() { _ = provisions.Close() })

	for _, rt := range testTypes() {
		if err := store.CreateRegulationType(ctx, rt); err != nil {
			t.Fatal(err)
		}
	}

	type seed struct {
		work     *models.Work
		typeCode string
		nodes    []*models.DocumentNode
	}
	seeds := []seed{
		{
			work:     &models.Work{ID: "w-uu-13-2003", RegulationTypeID: "rt-uu", Number: "13", Year: 2003, Status: models.StatusBerlaku, Title: "Undang-Undang tentang Ketenagakerjaan"},
			typeCode: "UU",
			nodes: []*models.DocumentNode{
				{ID: "n-uu-p1", WorkID: "w-uu-13-2003", NodeType: models.NodePasal, Number: "1", Content: "Dalam undang undang ini yang dimaksud dengan ketenagakerjaan adalah segala hal yang berhubungan dengan tenaga kerja", SortOrder: 1},
				{ID: "n-uu-p88", WorkID: "w-uu-13-2003", NodeType: models.NodePasal, Number: "88", Content: "Setiap pekerja berhak memperoleh upah minimum yang memenuhi penghidupan yang layak", SortOrder: 2},
				{ID: "n-uu-p89", WorkID: "w-uu-13-2003", NodeType: models.NodePasal, Number: "89", Content: "Upah minimum sebagaimana dimaksud ditetapkan oleh gubernur", SortOrder: 3},
			},
		},
		{
			work:     &models.Work{ID: "w-pp-36-2021", RegulationTypeID: "rt-pp", Number: "36", Year: 2021, Status: models.StatusBerlaku, Title: "Peraturan Pemerintah tentang Pengupahan"},
			typeCode: "PP",
			nodes: []*models.DocumentNode{
				{ID: "n-pp-p1", WorkID: "w-pp-36-2021", NodeType: models.NodePasal, Number: "1", Content: "Upah minimum ditetapkan berdasarkan kondisi ekonomi dan ketenagakerjaan", SortOrder: 1},
			},
		},
	}
	for _, s := range seeds {
		if err := store.CreateWork(ctx, s.work); err != nil {
			t.Fatal(err)
		}
		if err := works.Index(ctx, s.work, s.typeCode); err != nil {
			t.Fatal(err)
		}
		if err := store.BatchCreateNodes(ctx, s.nodes); err != nil {
			t.Fatal(err)
		}
		for _, n := range s.nodes {
			if err := provisions.Index(ctx, n, s.work, s.typeCode); err != nil {
				t.Fatal(err)
			}
		}
	}

	spy := &spyProvisionIndex{ProvisionIndex: provisions}
	engine, err := NewEngine(ctx, store, works, spy, config.DefaultSearchConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &engineFixture{engine: engine, store: store, works: works, spy: spy}
}

func TestEngine_IdentityFastPath(t *testing.T) {
	fx := newEngineFixture(t)
	resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{Query: "UU 13 2003"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Tier != TierIdentity {
		t.Fatalf("tier = %s", resp.Tier)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(resp.Hits))
	}
	hit := resp.Hits[0]
	if hit.NodeID != "n-uu-p1" {
		t.Errorf("representative node = %s", hit.NodeID)
	}
	if hit.Score != fx.engine.cfg.IdentityScore {
		t.Errorf("score = %v, want sentinel", hit.Score)
	}
	if strings.Contains(hit.Snippet, "<mark>") {
		t.Error("identity snippets carry no highlighting")
	}
	if fx.spy.searches != 0 {
		t.Errorf("content tier ran %d times on the identity path", fx.spy.searches)
	}
}

func TestEngine_EmptyQueryContract(t *testing.T) {
	fx := newEngineFixture(t)
	for _, q := range []string{"", "???", "  .,;  "} {
		resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{Query: q})
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(resp.Hits) != 0 || resp.Tier != TierNone {
			t.Errorf("Search(%q) = %d hits, tier %s; want empty/none", q, len(resp.Hits), resp.Tier)
		}
	}
	if fx.spy.searches != 0 {
		t.Error("no tier may run for an empty safe query")
	}
}

func TestEngine_MetadataEarlyExit(t *testing.T) {
	fx := newEngineFixture(t)
	// Title-only vocabulary with matchCount 1: the metadata row fills the
	// request, so content search must never be invoked.
	resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{Query: "pengupahan", MatchCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Tier != TierMetadata {
		t.Fatalf("tier = %s", resp.Tier)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("expected exactly matchCount hits, got %d", len(resp.Hits))
	}
	if fx.spy.searches != 0 {
		t.Errorf("content tier invoked %d times despite early exit", fx.spy.searches)
	}
}

func TestEngine_CombinedTiersNodeAppearsOnce(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	// "ketenagakerjaan" matches the UU title and the content of its
	// representative node. The metadata row wins; the content tier must not
	// surface the same node a second time.
	resp, err := fx.engine.Search(ctx, &models.SearchQuery{Query: "ketenagakerjaan", MatchCount: 10})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Tier != TierMetadata+"+"+TierOperator {
		t.Fatalf("tier = %s, want metadata+operator", resp.Tier)
	}
	seen := make(map[string]bool)
	for _, h := range resp.Hits {
		if seen[h.NodeID] {
			t.Errorf("node %s returned twice in one response", h.NodeID)
		}
		seen[h.NodeID] = true
	}
	if !seen["n-uu-p1"] || !seen["n-pp-p1"] {
		t.Fatalf("expected both works represented, got %v", seen)
	}

	grouped, err := fx.engine.Group(ctx, resp, 1, 10)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	for _, g := range grouped.Groups {
		if g.WorkID != "w-uu-13-2003" {
			continue
		}
		if g.TotalMatchingNodes != 1 {
			t.Errorf("distinct node count = %d, want 1", g.TotalMatchingNodes)
		}
		if len(g.MatchingNodeLabels) != 1 || g.MatchingNodeLabels[0] != "Pasal 1" {
			t.Errorf("labels = %v, want [Pasal 1]", g.MatchingNodeLabels)
		}
	}
}

func TestEngine_MatchCountBoundsFromConfig(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	cfg := config.DefaultSearchConfig()
	cfg.DefaultMatchCount = 2
	cfg.MaxMatchCount = 2
	engine, err := NewEngine(ctx, fx.store, fx.works, fx.spy, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	// Three nodes mention "upah minimum"; the configured cap keeps two.
	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "upah minimum", MatchCount: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 2 {
		t.Errorf("cap of 2 not honored, got %d hits", len(resp.Hits))
	}
	// An absent match count picks up the configured default.
	resp, err = engine.Search(ctx, &models.SearchQuery{Query: "upah minimum"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 2 {
		t.Errorf("default of 2 not honored, got %d hits", len(resp.Hits))
	}
}

func TestEngine_ContentOperatorTier(t *testing.T) {
	fx := newEngineFixture(t)
	resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{Query: "upah minimum", MatchCount: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Tier, TierOperator) {
		t.Fatalf("tier = %s, want operator", resp.Tier)
	}
	if len(resp.Hits) == 0 {
		t.Fatal("expected content hits")
	}
	// Ordered by final score descending.
	for i := 1; i < len(resp.Hits); i++ {
		if resp.Hits[i].Score > resp.Hits[i-1].Score {
			t.Errorf("hits not sorted at %d", i)
		}
	}
	// Tier 1/2 scores always clear the substring sentinel.
	for _, h := range resp.Hits {
		if h.Score <= fx.engine.cfg.SubstringScore {
			t.Errorf("tier-1 score %v under the substring sentinel", h.Score)
		}
		if h.Metadata.PasalLabel == "" {
			t.Error("hit missing node label")
		}
	}
	// Exactly one content-tier call: tier 1 won, tiers 2-3 never ran.
	if fx.spy.searches != 1 {
		t.Errorf("content index searched %d times, want 1", fx.spy.searches)
	}
}

func TestEngine_ContentTypeFilter(t *testing.T) {
	fx := newEngineFixture(t)
	resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{
		Query:  "upah minimum",
		Filter: models.SearchFilter{Type: "UU"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range resp.Hits {
		if h.Metadata.Type != "UU" {
			t.Errorf("filter leaked a %s hit", h.Metadata.Type)
		}
	}
}

func TestEngine_InvalidYearFilterDropped(t *testing.T) {
	fx := newEngineFixture(t)
	resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{
		Query:  "upah minimum",
		Filter: models.SearchFilter{Year: "dua ribu"},
	})
	if err != nil {
		t.Fatalf("unparsable year must not fail the query: %v", err)
	}
	if len(resp.Hits) == 0 {
		t.Error("invalid year filter should be treated as absent")
	}
}

func TestEngine_SubstringFallback(t *testing.T) {
	fx := newEngineFixture(t)
	// "gubernu" is a substring of "gubernur" but never a token, so tiers 1-2
	// find nothing and the literal tier engages.
	resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{Query: "gubernu"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Tier != TierSubstring {
		t.Fatalf("tier = %s, want substring", resp.Tier)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].NodeID != "n-uu-p89" {
		t.Fatalf("unexpected substring hits: %+v", resp.Hits)
	}
	if resp.Hits[0].Score != fx.engine.cfg.SubstringScore {
		t.Errorf("substring hits use the fixed low sentinel, got %v", resp.Hits[0].Score)
	}
	if strings.Contains(resp.Hits[0].Snippet, "<mark>") {
		t.Error("substring snippets are plain excerpts")
	}
	// Tier 1 and tier 2 both attempted before the fallback.
	if fx.spy.searches != 2 {
		t.Errorf("expected 2 index searches before the substring tier, got %d", fx.spy.searches)
	}
}

func TestEngine_NoMatchIsNotAnError(t *testing.T) {
	fx := newEngineFixture(t)
	resp, err := fx.engine.Search(context.Background(), &models.SearchQuery{Query: "zzzyyxx"})
	if err != nil {
		t.Fatalf("no matches must not error: %v", err)
	}
	if len(resp.Hits) != 0 {
		t.Errorf("expected empty hits, got %d", len(resp.Hits))
	}
}

func TestEngine_Idempotent(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	q := func() []string {
		resp, err := fx.engine.Search(ctx, &models.SearchQuery{Query: "upah minimum"})
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]string, len(resp.Hits))
		for i, h := range resp.Hits {
			ids[i] = h.NodeID
		}
		return ids
	}
	first, second := q(), q()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same query returned different orders: %v vs %v", first, second)
	}
}

func TestEngine_Group(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	resp, err := fx.engine.Search(ctx, &models.SearchQuery{Query: "upah minimum"})
	if err != nil {
		t.Fatal(err)
	}
	grouped, err := fx.engine.Group(ctx, resp, 1, 10)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if grouped.TotalGroups == 0 {
		t.Fatal("expected groups")
	}
	for _, g := range grouped.Groups {
		if g.BestHit == nil || g.BestScore != g.BestHit.Score {
			t.Errorf("group invariant broken: %+v", g)
		}
		if g.WorkTitle == "" {
			t.Error("group missing work title")
		}
	}
	for i := 1; i < len(grouped.Groups); i++ {
		if grouped.Groups[i].BestScore > grouped.Groups[i-1].BestScore {
			t.Error("groups not ordered by best score")
		}
	}
}
