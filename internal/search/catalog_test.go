package search

import (
	"testing"

	"github.com/mnakhyar/pasal/internal/models"
)

func testTypes() []*models.RegulationType {
	return []*models.RegulationType{
		{ID: "rt-uud", Code: "UUD", NameLocal: "Undang-Undang Dasar", HierarchyLevel: 1},
		{ID: "rt-tap", Code: "TAP MPR", NameLocal: "Ketetapan Majelis Permusyawaratan Rakyat", HierarchyLevel: 2},
		{ID: "rt-uu", Code: "UU", NameLocal: "Undang-Undang", HierarchyLevel: 3},
		{ID: "rt-perppu", Code: "PERPPU", NameLocal: "Peraturan Pemerintah Pengganti Undang-Undang", HierarchyLevel: 3},
		{ID: "rt-pp", Code: "PP", NameLocal: "Peraturan Pemerintah", HierarchyLevel: 4},
	}
}

func TestCatalog_MatchCode(t *testing.T) {
	c := newTypeCatalog(testTypes())

	if rt := c.matchCode("UU"); rt == nil || rt.ID != "rt-uu" {
		t.Errorf("UU lookup failed: %+v", rt)
	}
	if rt := c.matchCode("TAP MPR"); rt == nil || rt.ID != "rt-tap" {
		t.Errorf("two-token code lookup failed: %+v", rt)
	}
	// Variant spelling falls back to the canonical code.
	if rt := c.matchCode("PERPU"); rt == nil || rt.ID != "rt-perppu" {
		t.Errorf("variant spelling lookup failed: %+v", rt)
	}
	if rt := c.matchCode("KEPMEN"); rt != nil {
		t.Errorf("unknown code should not match, got %+v", rt)
	}
}

func TestCatalog_MatchNamePrefix(t *testing.T) {
	c := newTypeCatalog(testTypes())

	// "undang undang dasar" must beat the shorter "undang undang" prefix.
	if rt := c.matchNamePrefix("undang undang dasar 1945"); rt == nil || rt.ID != "rt-uud" {
		t.Errorf("longest prefix should win, got %+v", rt)
	}
	if rt := c.matchNamePrefix("undang undang 13 2003"); rt == nil || rt.ID != "rt-uu" {
		t.Errorf("statute name prefix failed: %+v", rt)
	}
	if rt := c.matchNamePrefix("peraturan pemerintah 35 2021"); rt == nil || rt.ID != "rt-pp" {
		t.Errorf("pp name prefix failed: %+v", rt)
	}
	if rt := c.matchNamePrefix("upah minimum"); rt != nil {
		t.Errorf("free text should not match a type name, got %+v", rt)
	}
}

func TestNormalizeTypeName(t *testing.T) {
	if got := normalizeTypeName("Undang-Undang"); got != "undang undang" {
		t.Errorf("got %q", got)
	}
	if got := normalizeTypeName("  Peraturan   Pemerintah "); got != "peraturan pemerintah" {
		t.Errorf("got %q", got)
	}
}
