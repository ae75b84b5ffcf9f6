package ranking

// Scorer computes finalScore = rawRelevance * authorityWeight * recencyWeight.
// It is shared by the metadata and content search tiers. Identity and
// substring hits use fixed sentinel scores instead.
type Scorer struct {
	authority *AuthorityMultiplier
	recency   *RecencyMultiplier
}

// NewScorer creates a Scorer with the given coefficients. A nil config uses
// the corpus defaults.
func NewScorer(config *ScoringConfig) *Scorer {
	if config == nil {
		config = DefaultScoringConfig()
	}
	return &Scorer{
		authority: NewAuthorityMultiplier(config),
		recency:   NewRecencyMultiplier(config),
	}
}

// Score blends the tier's raw relevance with the authority and recency
// weights. Raw relevance is never negative, so neither is the result.
func (s *Scorer) Score(raw float64, hierarchyLevel, year int) float64 {
	if raw <= 0 {
		return 0
	}
	return raw * s.authority.Multiplier(hierarchyLevel) * s.recency.Multiplier(year)
}
