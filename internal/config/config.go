// Package config provides configuration loading and structs for the Pasal server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Corpus  CorpusConfig  `yaml:"corpus"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the full-text indices.
type StorageConfig struct {
	DatabasePath       string `yaml:"database_path"`
	WorkIndexPath      string `yaml:"work_index_path"`
	ProvisionIndexPath string `yaml:"provision_index_path"`
}

// CorpusConfig holds corpus ingestion settings. Directories are watched for
// regulation JSON files when Watch is enabled.
type CorpusConfig struct {
	Directories []string `yaml:"directories"`
	Watch       bool     `yaml:"watch"`
}

// SearchConfig holds the search policy constants. These values were tuned
// against the peraturan.go.id-style corpus; re-tune before pointing the
// engine at a different one.
type SearchConfig struct {
	DefaultMatchCount int `yaml:"default_match_count"`
	MaxMatchCount     int `yaml:"max_match_count"`

	// Per-tier row and candidate caps.
	IdentityWorkCap       int `yaml:"identity_work_cap"`
	MetadataRowCap        int `yaml:"metadata_row_cap"`
	MetadataCandidateCap  int `yaml:"metadata_candidate_cap"`
	ContentCandidateCap   int `yaml:"content_candidate_cap"`
	SubstringCandidateCap int `yaml:"substring_candidate_cap"`

	// Sentinel scores. IdentityScore must stay above anything the scorer can
	// produce; SubstringScore must stay below anything tiers 1-2 can produce.
	IdentityScore  float64 `yaml:"identity_score"`
	SubstringScore float64 `yaml:"substring_score"`

	// Scoring weights.
	AuthorityStep         float64 `yaml:"authority_step"`
	DefaultHierarchyLevel int     `yaml:"default_hierarchy_level"`
	RecencyStep           float64 `yaml:"recency_step"`
	RecencyBaseYear       int     `yaml:"recency_base_year"`

	// Snippet bounds.
	SnippetMaxSource int `yaml:"snippet_max_source"`
	SnippetMinWords  int `yaml:"snippet_min_words"`
	SnippetMaxWords  int `yaml:"snippet_max_words"`
	ExcerptLength    int `yaml:"excerpt_length"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.WorkIndexPath = expandPath(cfg.Storage.WorkIndexPath, configDir)
	cfg.Storage.ProvisionIndexPath = expandPath(cfg.Storage.ProvisionIndexPath, configDir)
	for i := range cfg.Corpus.Directories {
		cfg.Corpus.Directories[i] = expandPath(cfg.Corpus.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
