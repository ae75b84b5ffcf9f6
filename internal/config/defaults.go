package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/pasal/data/db/regulations.db"
	}
	if cfg.Storage.WorkIndexPath == "" {
		cfg.Storage.WorkIndexPath = "/usr/local/var/pasal/data/indices/works"
	}
	if cfg.Storage.ProvisionIndexPath == "" {
		cfg.Storage.ProvisionIndexPath = "/usr/local/var/pasal/data/indices/provisions"
	}
	applySearchDefaults(&cfg.Search)
}

func applySearchDefaults(s *SearchConfig) {
	if s.DefaultMatchCount == 0 {
		s.DefaultMatchCount = 10
	}
	if s.MaxMatchCount == 0 {
		s.MaxMatchCount = 200
	}
	if s.IdentityWorkCap == 0 {
		s.IdentityWorkCap = 3
	}
	if s.MetadataRowCap == 0 {
		s.MetadataRowCap = 5
	}
	if s.MetadataCandidateCap == 0 {
		s.MetadataCandidateCap = 50
	}
	if s.ContentCandidateCap == 0 {
		s.ContentCandidateCap = 500
	}
	if s.SubstringCandidateCap == 0 {
		s.SubstringCandidateCap = 200
	}
	if s.IdentityScore == 0 {
		s.IdentityScore = 1000
	}
	if s.SubstringScore == 0 {
		s.SubstringScore = 0.001
	}
	if s.AuthorityStep == 0 {
		s.AuthorityStep = 0.05
	}
	if s.DefaultHierarchyLevel == 0 {
		s.DefaultHierarchyLevel = 5
	}
	if s.RecencyStep == 0 {
		s.RecencyStep = 0.005
	}
	if s.RecencyBaseYear == 0 {
		s.RecencyBaseYear = 1990
	}
	if s.SnippetMaxSource == 0 {
		s.SnippetMaxSource = 1000
	}
	if s.SnippetMinWords == 0 {
		s.SnippetMinWords = 15
	}
	if s.SnippetMaxWords == 0 {
		s.SnippetMaxWords = 35
	}
	if s.ExcerptLength == 0 {
		s.ExcerptLength = 200
	}
}

// DefaultSearchConfig returns a SearchConfig with all defaults applied.
// Used by tests and by callers that run the engine without a config file.
func DefaultSearchConfig() *SearchConfig {
	var s SearchConfig
	applySearchDefaults(&s)
	return &s
}
