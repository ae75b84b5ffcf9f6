// Package fulltext provides the Bleve-backed linguistic indexes for works
// and provisions.
package fulltext

import (
	"context"
	"errors"

	"github.com/mnakhyar/pasal/internal/models"
)

// ErrBadQuerySyntax reports a malformed operator query. The content searcher
// recovers from it by falling through to the lenient tier; it is never
// surfaced to the caller.
var ErrBadQuerySyntax = errors.New("malformed query syntax")

// Mode selects the matching strategy for provision search.
type Mode int

const (
	// ModeOperator parses the query with the operator-aware query-string
	// parser: quoted phrases, implicit AND across bare terms.
	ModeOperator Mode = iota
	// ModeLenient treats the query as a plain bag of required keywords.
	ModeLenient
)

// Hit is a single index hit: the document ID and the index's native
// relevance score.
type Hit struct {
	ID    string
	Score float64
}

// WorkIndex indexes work titles for the metadata search tier.
type WorkIndex interface {
	Index(ctx context.Context, w *models.Work, typeCode string) error
	Delete(ctx context.Context, workID string) error
	Search(ctx context.Context, query string, filter models.Filter, limit int) ([]Hit, error)
	DocCount() (uint64, error)
	Close() error
}

// ProvisionIndex indexes searchable node content for the content search tiers.
type ProvisionIndex interface {
	Index(ctx context.Context, node *models.DocumentNode, w *models.Work, typeCode string) error
	Delete(ctx context.Context, nodeID string) error
	Search(ctx context.Context, query string, mode Mode, filter models.Filter, limit int) ([]Hit, error)
	DocCount() (uint64, error)
	Close() error
}
