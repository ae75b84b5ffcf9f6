// Package ingest loads regulation JSON files into the store and the
// full-text indexes.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/fulltext"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/storage"
)

// NodeInput is one node of the regulation tree as it appears on disk.
// Children are nested; document order is the depth-first traversal order.
type NodeInput struct {
	ID       string       `json:"id,omitempty"`
	NodeType string       `json:"node_type"`
	Number   string       `json:"number,omitempty"`
	Content  string       `json:"content,omitempty"`
	Children []*NodeInput `json:"children,omitempty"`
}

// RegulationInput is the on-disk JSON shape of one regulation: work
// metadata plus the structural node tree.
type RegulationInput struct {
	ID     string       `json:"id,omitempty"`
	Type   string       `json:"type"` // regulation type code, e.g. "UU"
	Number string       `json:"number,omitempty"`
	Year   int          `json:"year"`
	Status string       `json:"status,omitempty"`
	Title  string       `json:"title"`
	Nodes  []*NodeInput `json:"nodes"`
}

// Ingestor writes regulations into sqlite and both bleve indexes. It is the
// single write path; the search engine never mutates the corpus.
type Ingestor struct {
	store      storage.Storage
	works      fulltext.WorkIndex
	provisions fulltext.ProvisionIndex
	logger     *zap.Logger
}

func NewIngestor(store storage.Storage, works fulltext.WorkIndex, provisions fulltext.ProvisionIndex, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{store: store, works: works, provisions: provisions, logger: logger}
}

// IngestFile loads one regulation JSON file. An existing work with the same
// ID (or, when the file carries no ID, the same type/number/year) is
// replaced. Returns the work ID.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read regulation file: %w", err)
	}
	var input RegulationInput
	if err := json.Unmarshal(data, &input); err != nil {
		return "", fmt.Errorf("failed to parse regulation file %s: %w", path, err)
	}
	return ing.Ingest(ctx, &input)
}

// Ingest stores one parsed regulation.
func (ing *Ingestor) Ingest(ctx context.Context, input *RegulationInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}

	rt, err := ing.store.GetRegulationTypeByCode(ctx, strings.ToUpper(strings.TrimSpace(input.Type)))
	if err != nil {
		return "", fmt.Errorf("unknown regulation type %q: %w", input.Type, err)
	}

	workID := input.ID
	if workID == "" {
		if existing, err := ing.findByCitation(ctx, rt.ID, input); err != nil {
			return "", err
		} else if existing != "" {
			workID = existing
		} else {
			workID = uuid.NewString()
		}
	}
	// Replace, not merge: re-ingesting a work drops its previous nodes.
	if _, err := ing.store.GetWork(ctx, workID); err == nil {
		if err := ing.RemoveWork(ctx, workID); err != nil {
			return "", err
		}
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = models.StatusBerlaku
	}
	work := &models.Work{
		ID:               workID,
		RegulationTypeID: rt.ID,
		Number:           strings.TrimSpace(input.Number),
		Year:             input.Year,
		Status:           status,
		Title:            strings.TrimSpace(input.Title),
	}
	if err := ing.store.CreateWork(ctx, work); err != nil {
		return "", fmt.Errorf("failed to store work: %w", err)
	}
	if err := ing.works.Index(ctx, work, rt.Code); err != nil {
		return "", fmt.Errorf("failed to index work title: %w", err)
	}

	nodes := flattenTree(workID, input.Nodes)
	if err := ing.store.BatchCreateNodes(ctx, nodes); err != nil {
		return "", fmt.Errorf("failed to store nodes: %w", err)
	}
	indexed := 0
	for _, n := range nodes {
		if !models.IsSearchableNodeType(n.NodeType) || n.Content == "" {
			continue
		}
		if err := ing.provisions.Index(ctx, n, work, rt.Code); err != nil {
			return "", fmt.Errorf("failed to index node %s: %w", n.ID, err)
		}
		indexed++
	}

	ing.logger.Info("regulation ingested",
		zap.String("work_id", workID),
		zap.String("title", work.Title),
		zap.Int("nodes", len(nodes)),
		zap.Int("indexed", indexed))
	return workID, nil
}

// IngestDirectory loads every .json file under dir, recursively. Files that
// fail to parse are skipped with a warning so one bad file cannot block a
// corpus load. Returns the number of regulations ingested.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if _, err := ing.IngestFile(ctx, path); err != nil {
			ing.logger.Warn("skipping regulation file", zap.String("path", path), zap.Error(err))
		} else {
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to walk corpus directory: %w", err)
	}
	return count, nil
}

// RemoveWork deletes a work and its nodes from the store and both indexes.
func (ing *Ingestor) RemoveWork(ctx context.Context, workID string) error {
	nodes, err := ing.store.NodesByWork(ctx, workID)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err := ing.provisions.Delete(ctx, n.ID); err != nil {
			return fmt.Errorf("failed to deindex node %s: %w", n.ID, err)
		}
	}
	if err := ing.works.Delete(ctx, workID); err != nil {
		return fmt.Errorf("failed to deindex work %s: %w", workID, err)
	}
	if err := ing.store.DeleteNodesByWork(ctx, workID); err != nil {
		return err
	}
	return ing.store.DeleteWork(ctx, workID)
}

// findByCitation looks up an existing work by (type, number, year) so that
// ID-less files replace their previous ingest instead of duplicating.
func (ing *Ingestor) findByCitation(ctx context.Context, typeID string, input *RegulationInput) (string, error) {
	lookup := storage.WorkLookup{RegulationTypeID: typeID, Limit: 1}
	if n := strings.TrimSpace(input.Number); n != "" {
		lookup.Number = &n
	}
	if input.Year != 0 {
		y := input.Year
		lookup.Year = &y
	}
	works, err := ing.store.FindWorks(ctx, lookup)
	if err != nil {
		return "", err
	}
	if len(works) == 0 {
		return "", nil
	}
	return works[0].ID, nil
}

func validateInput(input *RegulationInput) error {
	if strings.TrimSpace(input.Type) == "" {
		return fmt.Errorf("regulation input missing type")
	}
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("regulation input missing title")
	}
	if input.Year <= 0 {
		return fmt.Errorf("regulation input missing year")
	}
	return nil
}

// flattenTree assigns document order by depth-first traversal and fills in
// generated IDs and parent links.
func flattenTree(workID string, roots []*NodeInput) []*models.DocumentNode {
	var out []*models.DocumentNode
	order := 0
	var walk func(n *NodeInput, parentID string)
	walk = func(n *NodeInput, parentID string) {
		id := n.ID
		if id == "" {
			id = uuid.NewString()
		}
		order++
		out = append(out, &models.DocumentNode{
			ID:        id,
			WorkID:    workID,
			NodeType:  strings.ToLower(strings.TrimSpace(n.NodeType)),
			Number:    strings.TrimSpace(n.Number),
			Content:   strings.TrimSpace(n.Content),
			SortOrder: order,
			ParentID:  parentID,
		})
		for _, child := range n.Children {
			walk(child, id)
		}
	}
	for _, root := range roots {
		walk(root, "")
	}
	return out
}
