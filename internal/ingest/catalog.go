package ingest

import (
	"context"

	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/storage"
)

// defaultRegulationTypes is the Indonesian instrument hierarchy (UU 12/2011
// ordering; lower level = higher authority). PERPPU shares the statute level.
var defaultRegulationTypes = []*models.RegulationType{
	{ID: "rt-uud", Code: "UUD", NameLocal: "Undang-Undang Dasar", HierarchyLevel: 1},
	{ID: "rt-tap-mpr", Code: "TAP MPR", NameLocal: "Ketetapan Majelis Permusyawaratan Rakyat", HierarchyLevel: 2},
	{ID: "rt-uu", Code: "UU", NameLocal: "Undang-Undang", HierarchyLevel: 3},
	{ID: "rt-perppu", Code: "PERPPU", NameLocal: "Peraturan Pemerintah Pengganti Undang-Undang", HierarchyLevel: 3},
	{ID: "rt-pp", Code: "PP", NameLocal: "Peraturan Pemerintah", HierarchyLevel: 4},
	{ID: "rt-perpres", Code: "PERPRES", NameLocal: "Peraturan Presiden", HierarchyLevel: 5},
	{ID: "rt-perda-prov", Code: "PERDA PROVINSI", NameLocal: "Peraturan Daerah Provinsi", HierarchyLevel: 6},
	{ID: "rt-perda-kab", Code: "PERDA KABUPATEN", NameLocal: "Peraturan Daerah Kabupaten", HierarchyLevel: 7},
	{ID: "rt-permen", Code: "PERMEN", NameLocal: "Peraturan Menteri", HierarchyLevel: 8},
}

// SeedRegulationTypes installs the default instrument catalog when the store
// has none. An already-populated catalog is left untouched.
func SeedRegulationTypes(ctx context.Context, store storage.Storage) error {
	existing, err := store.ListRegulationTypes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, rt := range defaultRegulationTypes {
		if err := store.CreateRegulationType(ctx, rt); err != nil {
			return err
		}
	}
	return nil
}
