// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mnakhyar/pasal/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS regulation_types (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name_local TEXT NOT NULL,
		hierarchy_level INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS works (
		id TEXT PRIMARY KEY,
		regulation_type_id TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL,
		status TEXT NOT NULL,
		title TEXT NOT NULL,
		FOREIGN KEY (regulation_type_id) REFERENCES regulation_types(id)
	);

	CREATE INDEX IF NOT EXISTS idx_works_type_number_year ON works(regulation_type_id, number, year);
	CREATE INDEX IF NOT EXISTS idx_works_year ON works(year);

	CREATE TABLE IF NOT EXISTS document_nodes (
		id TEXT PRIMARY KEY,
		work_id TEXT NOT NULL,
		node_type TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL,
		parent_id TEXT,
		FOREIGN KEY (work_id) REFERENCES works(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_work_sort ON document_nodes(work_id, sort_order);
	CREATE INDEX IF NOT EXISTS idx_nodes_type ON document_nodes(node_type);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateRegulationType inserts a catalog entry.
func (s *SQLiteStorage) CreateRegulationType(ctx context.Context, rt *models.RegulationType) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO regulation_types (id, code, name_local, hierarchy_level) VALUES (?, ?, ?, ?)`,
		rt.ID, rt.Code, rt.NameLocal, rt.HierarchyLevel,
	)
	return err
}

// GetRegulationTypeByCode returns the catalog entry for a code.
func (s *SQLiteStorage) GetRegulationTypeByCode(ctx context.Context, code string) (*models.RegulationType, error) {
	var rt models.RegulationType
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name_local, hierarchy_level FROM regulation_types WHERE code = ?`, code,
	).Scan(&rt.ID, &rt.Code, &rt.NameLocal, &rt.HierarchyLevel)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("regulation type not found: %s", code)
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListRegulationTypes returns the whole catalog ordered by hierarchy level.
func (s *SQLiteStorage) ListRegulationTypes(ctx context.Context) ([]*models.RegulationType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name_local, hierarchy_level FROM regulation_types ORDER BY hierarchy_level, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RegulationType
	for rows.Next() {
		var rt models.RegulationType
		if err := rows.Scan(&rt.ID, &rt.Code, &rt.NameLocal, &rt.HierarchyLevel); err != nil {
			return nil, err
		}
		out = append(out, &rt)
	}
	return out, rows.Err()
}

// CreateWork inserts a work.
func (s *SQLiteStorage) CreateWork(ctx context.Context, w *models.Work) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO works (id, regulation_type_id, number, year, status, title)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.RegulationTypeID, w.Number, w.Year, w.Status, w.Title,
	)
	return err
}

// GetWork returns a work by ID.
func (s *SQLiteStorage) GetWork(ctx context.Context, id string) (*models.Work, error) {
	var w models.Work
	err := s.db.QueryRowContext(ctx,
		`SELECT id, regulation_type_id, number, year, status, title FROM works WHERE id = ?`, id,
	).Scan(&w.ID, &w.RegulationTypeID, &w.Number, &w.Year, &w.Status, &w.Title)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("work not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWork removes a work and, via cascade, its nodes.
func (s *SQLiteStorage) DeleteWork(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM document_nodes WHERE work_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, id)
	return err
}

// FindWorks performs the identity fast-path lookup: exact number and/or year
// under one regulation type, with the request filter ANDed on top.
func (s *SQLiteStorage) FindWorks(ctx context.Context, lookup WorkLookup) ([]*models.Work, error) {
	query := `SELECT w.id, w.regulation_type_id, w.number, w.year, w.status, w.title
		FROM works w
		JOIN regulation_types rt ON rt.id = w.regulation_type_id
		WHERE w.regulation_type_id = ?`
	args := []interface{}{lookup.RegulationTypeID}

	if lookup.Number != nil {
		query += ` AND w.number = ?`
		args = append(args, *lookup.Number)
	}
	if lookup.Year != nil {
		query += ` AND w.year = ?`
		args = append(args, *lookup.Year)
	}
	query, args = appendFilter(query, args, lookup.Filter)

	query += ` ORDER BY w.year DESC, w.id`
	if lookup.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, lookup.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Work
	for rows.Next() {
		var w models.Work
		if err := rows.Scan(&w.ID, &w.RegulationTypeID, &w.Number, &w.Year, &w.Status, &w.Title); err != nil {
			return nil, err
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// BatchCreateNodes inserts nodes in one transaction.
func (s *SQLiteStorage) BatchCreateNodes(ctx context.Context, nodes []*models.DocumentNode) error {
	if len(nodes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_nodes (id, work_id, node_type, number, content, sort_order, parent_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, n := range nodes {
		var parent interface{}
		if n.ParentID != "" {
			parent = n.ParentID
		}
		if _, err := stmt.ExecContext(ctx, n.ID, n.WorkID, n.NodeType, n.Number, n.Content, n.SortOrder, parent); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetNode returns a node by ID.
func (s *SQLiteStorage) GetNode(ctx context.Context, id string) (*models.DocumentNode, error) {
	var n models.DocumentNode
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, work_id, node_type, number, content, sort_order, parent_id
		 FROM document_nodes WHERE id = ?`, id,
	).Scan(&n.ID, &n.WorkID, &n.NodeType, &n.Number, &n.Content, &n.SortOrder, &parent)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	n.ParentID = parent.String
	return &n, nil
}

// NodesByWork returns all nodes of a work in document order.
func (s *SQLiteStorage) NodesByWork(ctx context.Context, workID string) ([]*models.DocumentNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, work_id, node_type, number, content, sort_order, parent_id
		 FROM document_nodes WHERE work_id = ? ORDER BY sort_order`, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DocumentNode
	for rows.Next() {
		var n models.DocumentNode
		var parent sql.NullString
		if err := rows.Scan(&n.ID, &n.WorkID, &n.NodeType, &n.Number, &n.Content, &n.SortOrder, &parent); err != nil {
			return nil, err
		}
		n.ParentID = parent.String
		out = append(out, &n)
	}
	return out, rows.Err()
}

// DeleteNodesByWork removes all nodes of a work.
func (s *SQLiteStorage) DeleteNodesByWork(ctx context.Context, workID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM document_nodes WHERE work_id = ?`, workID)
	return err
}

// candidateColumns is the joined projection shared by the candidate queries.
const candidateColumns = `d.id, d.work_id, d.node_type, d.number, d.content, d.sort_order,
	w.title, w.number, w.year, w.status, rt.code, rt.hierarchy_level`

const candidateJoin = `FROM document_nodes d
	JOIN works w ON w.id = d.work_id
	JOIN regulation_types rt ON rt.id = w.regulation_type_id`

func scanCandidate(rows interface {
	Scan(dest ...interface{}) error
}) (*models.Candidate, error) {
	var c models.Candidate
	if err := rows.Scan(&c.NodeID, &c.WorkID, &c.NodeType, &c.NodeNumber, &c.Content, &c.SortOrder,
		&c.WorkTitle, &c.WorkNumber, &c.Year, &c.Status, &c.TypeCode, &c.HierarchyLevel); err != nil {
		return nil, err
	}
	return &c, nil
}

func searchableInClause() (string, []interface{}) {
	types := models.SearchableNodeTypes()
	placeholders := strings.Repeat("?,", len(types))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(types))
	for i, t := range types {
		args[i] = t
	}
	return placeholders, args
}

func appendFilter(query string, args []interface{}, f models.Filter) (string, []interface{}) {
	if f.TypeCode != "" {
		query += ` AND rt.code = ?`
		args = append(args, strings.ToUpper(f.TypeCode))
	}
	if f.Year != 0 {
		query += ` AND w.year = ?`
		args = append(args, f.Year)
	}
	if f.Status != "" {
		query += ` AND w.status = ?`
		args = append(args, f.Status)
	}
	return query, args
}

// RepresentativeCandidate returns the lowest sort-order searchable node of a
// work with its joined work and type metadata, or nil when the work has no
// searchable content.
func (s *SQLiteStorage) RepresentativeCandidate(ctx context.Context, workID string) (*models.Candidate, error) {
	in, inArgs := searchableInClause()
	query := `SELECT ` + candidateColumns + ` ` + candidateJoin + `
		WHERE d.work_id = ? AND d.node_type IN (` + in + `) AND d.content <> ''
		ORDER BY d.sort_order LIMIT 1`
	args := append([]interface{}{workID}, inArgs...)

	row := s.db.QueryRowContext(ctx, query, args...)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CandidatesByNodeIDs hydrates candidate rows for the given node IDs.
func (s *SQLiteStorage) CandidatesByNodeIDs(ctx context.Context, nodeIDs []string) (map[string]*models.Candidate, error) {
	out := make(map[string]*models.Candidate, len(nodeIDs))
	if len(nodeIDs) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?,", len(nodeIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(nodeIDs))
	for i, id := range nodeIDs {
		args[i] = id
	}

	query := `SELECT ` + candidateColumns + ` ` + candidateJoin + `
		WHERE d.id IN (` + placeholders + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out[c.NodeID] = c
	}
	return out, rows.Err()
}

// SubstringCandidates selects up to limit searchable nodes matching the
// filter, in node-id order. The cap is applied before any matching so the
// literal-substring tier's worst case stays bounded.
func (s *SQLiteStorage) SubstringCandidates(ctx context.Context, filter models.Filter, limit int) ([]*models.Candidate, error) {
	in, inArgs := searchableInClause()
	query := `SELECT ` + candidateColumns + ` ` + candidateJoin + `
		WHERE d.node_type IN (` + in + `) AND d.content <> ''`
	args := inArgs
	query, args = appendFilter(query, args, filter)
	query += ` ORDER BY d.id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountWorks returns the number of works.
func (s *SQLiteStorage) CountWorks(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM works`).Scan(&n)
	return n, err
}

// CountNodes returns the number of document nodes.
func (s *SQLiteStorage) CountNodes(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_nodes`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
