package fulltext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/mnakhyar/pasal/internal/models"
)

// workDoc is the indexed shape of a Work. Filter fields are keyword/numeric
// and excluded from _all so free text never matches a status or code.
type workDoc struct {
	Title    string  `json:"title"`
	TypeCode string  `json:"type_code"`
	Status   string  `json:"status"`
	Year     float64 `json:"year"`
}

// provisionDoc is the indexed shape of a searchable DocumentNode.
type provisionDoc struct {
	Content  string  `json:"content"`
	WorkID   string  `json:"work_id"`
	NodeType string  `json:"node_type"`
	TypeCode string  `json:"type_code"`
	Status   string  `json:"status"`
	Year     float64 `json:"year"`
}

// textFieldMapping uses the standard analyzer (lowercase + tokenize, no
// stemming): Indonesian legal vocabulary must match exactly, English
// stemming would mangle it.
func textFieldMapping() *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = standard.Name
	return fm
}

func filterFieldMapping() *mapping.FieldMapping {
	fm := bleve.NewKeywordFieldMapping()
	fm.IncludeInAll = false
	return fm
}

func yearFieldMapping() *mapping.FieldMapping {
	fm := bleve.NewNumericFieldMapping()
	fm.IncludeInAll = false
	return fm
}

func workIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("title", textFieldMapping())
	doc.AddFieldMappingsAt("type_code", filterFieldMapping())
	doc.AddFieldMappingsAt("status", filterFieldMapping())
	doc.AddFieldMappingsAt("year", yearFieldMapping())
	im.DefaultMapping = doc
	return im
}

func provisionIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", textFieldMapping())
	doc.AddFieldMappingsAt("work_id", filterFieldMapping())
	doc.AddFieldMappingsAt("node_type", filterFieldMapping())
	doc.AddFieldMappingsAt("type_code", filterFieldMapping())
	doc.AddFieldMappingsAt("status", filterFieldMapping())
	doc.AddFieldMappingsAt("year", yearFieldMapping())
	im.DefaultMapping = doc
	return im
}

// openOrCreate opens an existing Bleve index at path or creates one with the
// given mapping. An existing index keeps its on-disk mapping; remove the
// directory to force a re-index after mapping changes.
func openOrCreate(path string, im mapping.IndexMapping) (bleve.Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return index, nil
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return index, nil
}

// filterQueries translates the normalized request filter into term/numeric
// queries ANDed with the main query.
func filterQueries(f models.Filter) []blevequery.Query {
	var out []blevequery.Query
	if f.TypeCode != "" {
		tq := bleve.NewTermQuery(strings.ToUpper(f.TypeCode))
		tq.SetField("type_code")
		out = append(out, tq)
	}
	if f.Year != 0 {
		y := float64(f.Year)
		inclusive := true
		nq := bleve.NewNumericRangeInclusiveQuery(&y, &y, &inclusive, &inclusive)
		nq.SetField("year")
		out = append(out, nq)
	}
	if f.Status != "" {
		tq := bleve.NewTermQuery(strings.ToLower(f.Status))
		tq.SetField("status")
		out = append(out, tq)
	}
	return out
}

func withFilters(main blevequery.Query, f models.Filter) blevequery.Query {
	filters := filterQueries(f)
	if len(filters) == 0 {
		return main
	}
	return bleve.NewConjunctionQuery(append([]blevequery.Query{main}, filters...)...)
}

// runSearch executes q with a deterministic tie-break (score desc, doc id asc).
func runSearch(index bleve.Index, q blevequery.Query, limit int) ([]Hit, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.SortBy([]string{"-_score", "_id"})
	results, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}
	out := make([]Hit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = Hit{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// BleveWorkIndex implements WorkIndex using Bleve.
type BleveWorkIndex struct {
	index bleve.Index
}

// NewBleveWorkIndex creates or opens the work-title index at path.
func NewBleveWorkIndex(path string) (*BleveWorkIndex, error) {
	index, err := openOrCreate(path, workIndexMapping())
	if err != nil {
		return nil, err
	}
	return &BleveWorkIndex{index: index}, nil
}

// Index indexes one work's title and filter metadata.
func (b *BleveWorkIndex) Index(ctx context.Context, w *models.Work, typeCode string) error {
	return b.index.Index(w.ID, &workDoc{
		Title:    w.Title,
		TypeCode: strings.ToUpper(typeCode),
		Status:   strings.ToLower(w.Status),
		Year:     float64(w.Year),
	})
}

// Delete removes a work from the index.
func (b *BleveWorkIndex) Delete(ctx context.Context, workID string) error {
	return b.index.Delete(workID)
}

// Search runs a lenient title match with filters and returns up to limit hits.
func (b *BleveWorkIndex) Search(ctx context.Context, query string, f models.Filter, limit int) ([]Hit, error) {
	mq := bleve.NewMatchQuery(query)
	mq.SetField("title")
	return runSearch(b.index, withFilters(mq, f), limit)
}

// DocCount returns the number of indexed works.
func (b *BleveWorkIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveWorkIndex) Close() error {
	return b.index.Close()
}

// BleveProvisionIndex implements ProvisionIndex using Bleve.
type BleveProvisionIndex struct {
	index bleve.Index
}

// NewBleveProvisionIndex creates or opens the provision-content index at path.
func NewBleveProvisionIndex(path string) (*BleveProvisionIndex, error) {
	index, err := openOrCreate(path, provisionIndexMapping())
	if err != nil {
		return nil, err
	}
	return &BleveProvisionIndex{index: index}, nil
}

// Index indexes one searchable node with its work's filter metadata.
// Non-searchable and empty nodes are the caller's job to skip.
func (b *BleveProvisionIndex) Index(ctx context.Context, node *models.DocumentNode, w *models.Work, typeCode string) error {
	return b.index.Index(node.ID, &provisionDoc{
		Content:  node.Content,
		WorkID:   w.ID,
		NodeType: node.NodeType,
		TypeCode: strings.ToUpper(typeCode),
		Status:   strings.ToLower(w.Status),
		Year:     float64(w.Year),
	})
}

// Delete removes a node from the index.
func (b *BleveProvisionIndex) Delete(ctx context.Context, nodeID string) error {
	return b.index.Delete(nodeID)
}

// Search runs the requested matching mode over node content, with filters,
// capped at limit candidates. ModeOperator returns ErrBadQuerySyntax for
// malformed operator syntax so the caller can fall through instead of failing
// the request.
func (b *BleveProvisionIndex) Search(ctx context.Context, query string, mode Mode, f models.Filter, limit int) ([]Hit, error) {
	var main blevequery.Query
	switch mode {
	case ModeOperator:
		qs := bleve.NewQueryStringQuery(rewriteRequiredTerms(query))
		parsed, err := qs.Parse()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBadQuerySyntax, err)
		}
		main = parsed
	case ModeLenient:
		mq := bleve.NewMatchQuery(query)
		mq.SetField("content")
		mq.SetOperator(blevequery.MatchQueryOperatorAnd)
		main = mq
	default:
		return nil, fmt.Errorf("unknown search mode %d", mode)
	}
	return runSearch(b.index, withFilters(main, f), limit)
}

// DocCount returns the number of indexed provisions.
func (b *BleveProvisionIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveProvisionIndex) Close() error {
	return b.index.Close()
}

// rewriteRequiredTerms makes every bare term required (implicit AND) while
// leaving quoted phrases and explicit +/- operators untouched.
func rewriteRequiredTerms(q string) string {
	var out []string
	for _, tok := range splitQuoted(q) {
		if strings.HasPrefix(tok, "+") || strings.HasPrefix(tok, "-") {
			out = append(out, tok)
			continue
		}
		out = append(out, "+"+tok)
	}
	return strings.Join(out, " ")
}

// splitQuoted splits on whitespace but keeps double-quoted segments together,
// quotes included.
func splitQuoted(s string) []string {
	var (
		out     []string
		current strings.Builder
		inQuote bool
	)
	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			current.WriteRune(r)
		case r == ' ' && !inQuote:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return out
}
