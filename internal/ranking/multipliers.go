package ranking

// AuthorityMultiplier boosts higher-authority instrument types.
type AuthorityMultiplier struct {
	config *ScoringConfig
}

// NewAuthorityMultiplier creates a new AuthorityMultiplier.
func NewAuthorityMultiplier(config *ScoringConfig) *AuthorityMultiplier {
	return &AuthorityMultiplier{config: config}
}

// Name returns the multiplier name.
func (m *AuthorityMultiplier) Name() string {
	return "authority"
}

// Multiplier returns 1 + (10 - hierarchyLevel) * step. A missing level
// (zero or negative) falls back to the configured default.
func (m *AuthorityMultiplier) Multiplier(hierarchyLevel int) float64 {
	if hierarchyLevel <= 0 {
		hierarchyLevel = m.config.DefaultHierarchyLevel
	}
	return 1 + float64(10-hierarchyLevel)*m.config.AuthorityStep
}

// RecencyMultiplier gives a small monotonic boost to newer regulations.
type RecencyMultiplier struct {
	config *ScoringConfig
}

// NewRecencyMultiplier creates a new RecencyMultiplier.
func NewRecencyMultiplier(config *ScoringConfig) *RecencyMultiplier {
	return &RecencyMultiplier{config: config}
}

// Name returns the multiplier name.
func (m *RecencyMultiplier) Name() string {
	return "recency"
}

// Multiplier returns 1 + max(0, year - baseYear) * step, floored at no boost
// for anything at or before the base year.
func (m *RecencyMultiplier) Multiplier(year int) float64 {
	age := year - m.config.RecencyBaseYear
	if age < 0 {
		age = 0
	}
	return 1 + float64(age)*m.config.RecencyStep
}
