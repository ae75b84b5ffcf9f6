package models

// Candidate is a joined node+work+type row selected for ranking. It carries
// no snippet: snippets are computed only for rows that survive ranking and
// truncation, never for the full candidate set.
type Candidate struct {
	NodeID         string
	WorkID         string
	NodeType       string
	NodeNumber     string
	Content        string
	SortOrder      int
	WorkTitle      string
	WorkNumber     string
	Year           int
	Status         string
	TypeCode       string
	HierarchyLevel int
	// Raw is the matching tier's native relevance value; Score is the final
	// blended score.
	Raw   float64
	Score float64
}

// HitMetadata is the display metadata attached to a hit.
type HitMetadata struct {
	Type       string `json:"type"`
	Number     string `json:"number"`
	Year       int    `json:"year"`
	PasalLabel string `json:"pasal_label"`
}

// SearchHit is one matching text unit, ready for display.
type SearchHit struct {
	NodeID   string      `json:"node_id"`
	WorkID   string      `json:"work_id"`
	Content  string      `json:"content"`
	Metadata HitMetadata `json:"metadata"`
	Score    float64     `json:"score"`
	Snippet  string      `json:"snippet"`
}

// GroupedResult merges the hits of one Work into a single displayable result.
type GroupedResult struct {
	WorkID             string     `json:"work_id"`
	WorkTitle          string     `json:"work_title"`
	BestHit            *SearchHit `json:"best_hit"`
	BestScore          float64    `json:"best_score"`
	TotalMatchingNodes int        `json:"total_matching_nodes"`
	MatchingNodeLabels []string   `json:"matching_node_labels"`
}

// SearchResponse is the engine's flat, ordered answer to one query.
type SearchResponse struct {
	Hits      []*SearchHit `json:"hits"`
	Total     int          `json:"total"`
	Tier      string       `json:"tier"`
	QueryTime int64        `json:"query_time_ms"`
	Query     string       `json:"query"`
}

// GroupedResponse is the outward-facing response: hits grouped by Work and
// paged.
type GroupedResponse struct {
	Groups      []*GroupedResult `json:"groups"`
	TotalGroups int              `json:"total_groups"`
	Page        int              `json:"page"`
	PerPage     int              `json:"per_page"`
	Tier        string           `json:"tier"`
	QueryTime   int64            `json:"query_time_ms"`
	Query       string           `json:"query"`
}
