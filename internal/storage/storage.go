// Package storage defines the persistence interface for the regulation corpus.
package storage

import (
	"context"

	"github.com/mnakhyar/pasal/internal/models"
)

// WorkLookup is a direct Work lookup under one regulation type, as used by
// the identity fast path. Number and Year are optional exact-match criteria;
// Filter is ANDed on top.
type WorkLookup struct {
	RegulationTypeID string
	Number           *string
	Year             *int
	Filter           models.Filter
	Limit            int
}

// Storage defines persistence operations for regulation types, works, and
// document nodes. All search-path reads are read-only.
type Storage interface {
	// Regulation type catalog
	CreateRegulationType(ctx context.Context, rt *models.RegulationType) error
	GetRegulationTypeByCode(ctx context.Context, code string) (*models.RegulationType, error)
	ListRegulationTypes(ctx context.Context) ([]*models.RegulationType, error)

	// Work operations
	CreateWork(ctx context.Context, w *models.Work) error
	GetWork(ctx context.Context, id string) (*models.Work, error)
	DeleteWork(ctx context.Context, id string) error
	FindWorks(ctx context.Context, lookup WorkLookup) ([]*models.Work, error)

	// Node operations
	BatchCreateNodes(ctx context.Context, nodes []*models.DocumentNode) error
	GetNode(ctx context.Context, id string) (*models.DocumentNode, error)
	NodesByWork(ctx context.Context, workID string) ([]*models.DocumentNode, error)
	DeleteNodesByWork(ctx context.Context, workID string) error

	// Search-path reads
	RepresentativeCandidate(ctx context.Context, workID string) (*models.Candidate, error)
	CandidatesByNodeIDs(ctx context.Context, nodeIDs []string) (map[string]*models.Candidate, error)
	SubstringCandidates(ctx context.Context, filter models.Filter, limit int) ([]*models.Candidate, error)

	// Stats
	CountWorks(ctx context.Context) (int64, error)
	CountNodes(ctx context.Context) (int64, error)

	Close() error
}
