// Package ranking blends raw textual relevance with document-authority and
// recency signals into the final score.
package ranking

// ScoringConfig holds the weight coefficients for the score formula.
type ScoringConfig struct {
	// AuthorityStep is the per-level boost for higher-authority instrument
	// types (lower hierarchy level number = higher authority).
	AuthorityStep float64
	// DefaultHierarchyLevel is assumed when a type carries no level.
	DefaultHierarchyLevel int
	// RecencyStep is the per-year boost for regulations newer than
	// RecencyBaseYear. Anything at or before the base year gets no boost.
	RecencyStep     float64
	RecencyBaseYear int
}

// DefaultScoringConfig returns the coefficients tuned for the Indonesian
// regulation corpus.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		AuthorityStep:         0.05,
		DefaultHierarchyLevel: 5,
		RecencyStep:           0.005,
		RecencyBaseYear:       1990,
	}
}
