// Package models defines core data structures for regulations, queries, and search results.
package models

// RegulationType is one entry of the fixed instrument-type catalog
// (UUD, TAP MPR, UU, PERPU, PP, ...). Reference data: loaded at startup,
// never mutated by the search path.
type RegulationType struct {
	ID             string `json:"id" db:"id"`
	Code           string `json:"code" db:"code"`
	NameLocal      string `json:"name_local" db:"name_local"`
	HierarchyLevel int    `json:"hierarchy_level" db:"hierarchy_level"`
}

// Legal status values for a Work.
const (
	StatusBerlaku      = "berlaku"       // in force
	StatusDiubah       = "diubah"        // amended
	StatusDicabut      = "dicabut"       // revoked
	StatusTidakBerlaku = "tidak_berlaku" // not (yet or no longer) in force
)

// Work is one regulation (e.g. one statute). Number is empty for types
// without a number, such as the constitution.
type Work struct {
	ID               string `json:"id" db:"id"`
	RegulationTypeID string `json:"regulation_type_id" db:"regulation_type_id"`
	Number           string `json:"number" db:"number"`
	Year             int    `json:"year" db:"year"`
	Status           string `json:"status" db:"status"`
	Title            string `json:"title" db:"title"`
}

// Structural node kinds inside a Work. Bab/bagian/paragraf are containers;
// the rest carry text.
const (
	NodeBab             = "bab"
	NodeBagian          = "bagian"
	NodeParagraf        = "paragraf"
	NodePasal           = "pasal"
	NodeAyat            = "ayat"
	NodePembukaan       = "pembukaan"
	NodeIsi             = "isi"
	NodePenjelasanUmum  = "penjelasan_umum"
	NodePenjelasanPasal = "penjelasan_pasal"
)

// searchableNodeTypes are the kinds eligible for content search. Container
// types (bab, bagian, paragraf) are navigation-only.
var searchableNodeTypes = []string{
	NodePasal,
	NodeAyat,
	NodePembukaan,
	NodeIsi,
	NodePenjelasanUmum,
	NodePenjelasanPasal,
}

var searchableNodeTypeSet = func() map[string]bool {
	m := make(map[string]bool, len(searchableNodeTypes))
	for _, t := range searchableNodeTypes {
		m[t] = true
	}
	return m
}()

// IsSearchableNodeType reports whether nodes of the given type are eligible
// for content search and citation.
func IsSearchableNodeType(nodeType string) bool {
	return searchableNodeTypeSet[nodeType]
}

// SearchableNodeTypes returns the searchable node kinds in a stable order,
// suitable for SQL IN clauses.
func SearchableNodeTypes() []string {
	out := make([]string, len(searchableNodeTypes))
	copy(out, searchableNodeTypes)
	return out
}

// DocumentNode is one structural or textual unit inside a Work, arranged as a
// tree via ParentID and ordered by SortOrder (document order).
type DocumentNode struct {
	ID        string `json:"id" db:"id"`
	WorkID    string `json:"work_id" db:"work_id"`
	NodeType  string `json:"node_type" db:"node_type"`
	Number    string `json:"number" db:"number"`
	Content   string `json:"content" db:"content"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
	ParentID  string `json:"parent_id,omitempty" db:"parent_id"`
}

// nodeTypeLabels maps node kinds to their display prefix.
var nodeTypeLabels = map[string]string{
	NodeBab:             "Bab",
	NodeBagian:          "Bagian",
	NodeParagraf:        "Paragraf",
	NodePasal:           "Pasal",
	NodeAyat:            "Ayat",
	NodePembukaan:       "Pembukaan",
	NodeIsi:             "Isi",
	NodePenjelasanUmum:  "Penjelasan Umum",
	NodePenjelasanPasal: "Penjelasan Pasal",
}

// NodeLabel builds the human label for a node, e.g. "Pasal 13" or "Ayat (2)".
func NodeLabel(nodeType, number string) string {
	label, ok := nodeTypeLabels[nodeType]
	if !ok {
		label = nodeType
	}
	if number == "" {
		return label
	}
	if nodeType == NodeAyat {
		return label + " (" + number + ")"
	}
	return label + " " + number
}
