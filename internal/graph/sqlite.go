package graph

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"patchbay/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	ops
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) a SQLite-backed graph store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open graph database: %w", err)
	}
	// The driver serializes writers; a single connection avoids lock
	// contention between a transaction and ad-hoc reads.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{ops: ops{db: db}, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate graph database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		handle_id INTEGER PRIMARY KEY,
		label TEXT NOT NULL,
		properties JSON NOT NULL DEFAULT '{}',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_id INTEGER NOT NULL REFERENCES nodes(handle_id) ON DELETE CASCADE,
		to_id INTEGER NOT NULL REFERENCES nodes(handle_id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		properties JSON NOT NULL DEFAULT '{}',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id, type);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id, type);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Seed the meta-root nodes at their reserved ids.
	for _, m := range domain.MetaTypes() {
		_, err := s.db.Exec(
			`INSERT OR IGNORE INTO nodes (handle_id, label, properties) VALUES (?, 'meta', ?)`,
			MetaRootID(m), fmt.Sprintf(`{"name":%q}`, string(m)))
		if err != nil {
			return err
		}
	}
	return nil
}

// InTransaction runs fn inside one atomic transaction.
func (s *SQLiteStore) InTransaction(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTransactionFailure, err)
	}

	if err := fn(&sqliteTx{ops: ops{db: tx}}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrTransactionFailure, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqliteTx exposes the operation set bound to an open transaction.
type sqliteTx struct {
	ops
}

var _ Tx = (*sqliteTx)(nil)

// dbtx abstracts *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ops holds the shared query implementations.
type ops struct {
	db dbtx
}

func (o ops) CreateNode(ctx context.Context, node *Node) error {
	data, err := marshalProperties(node.Properties)
	if err != nil {
		return fmt.Errorf("marshal node properties: %w", err)
	}

	var exists int
	err = o.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM nodes WHERE handle_id = ?`, node.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check node %d: %w", node.ID, err)
	}
	if exists > 0 {
		return fmt.Errorf("node %d: %w", node.ID, domain.ErrNodeExists)
	}

	_, err = o.db.ExecContext(ctx,
		`INSERT INTO nodes (handle_id, label, properties) VALUES (?, ?, ?)`,
		node.ID, node.Label, data)
	if err != nil {
		return fmt.Errorf("create node %d: %w", node.ID, err)
	}
	return nil
}

func (o ops) GetNode(ctx context.Context, id int64) (*Node, error) {
	var (
		label string
		data  []byte
	)
	err := o.db.QueryRowContext(ctx,
		`SELECT label, properties FROM nodes WHERE handle_id = ?`, id).Scan(&label, &data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get node %d: %w", id, err)
	}

	props, err := unmarshalProperties(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal node %d properties: %w", id, err)
	}
	return &Node{ID: id, Label: label, Properties: props}, nil
}

func (o ops) SetNodeProperties(ctx context.Context, id int64, props map[string]domain.Value) error {
	node, err := o.GetNode(ctx, id)
	if err != nil {
		return err
	}
	if node.Properties == nil {
		node.Properties = make(map[string]domain.Value, len(props))
	}
	for k, v := range props {
		node.Properties[k] = v
	}

	data, err := marshalProperties(node.Properties)
	if err != nil {
		return fmt.Errorf("marshal node properties: %w", err)
	}
	_, err = o.db.ExecContext(ctx,
		`UPDATE nodes SET properties = ?, updated_at = CURRENT_TIMESTAMP WHERE handle_id = ?`,
		data, id)
	if err != nil {
		return fmt.Errorf("update node %d: %w", id, err)
	}
	return nil
}

func (o ops) DeleteNode(ctx context.Context, id int64) error {
	res, err := o.db.ExecContext(ctx, `DELETE FROM nodes WHERE handle_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete node %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (o ops) CreateEdge(ctx context.Context, from, to int64, edgeType domain.EdgeType, props map[string]domain.Value) (*domain.Edge, error) {
	data, err := marshalProperties(props)
	if err != nil {
		return nil, fmt.Errorf("marshal edge properties: %w", err)
	}

	res, err := o.db.ExecContext(ctx,
		`INSERT INTO edges (from_id, to_id, type, properties) VALUES (?, ?, ?, ?)`,
		from, to, string(edgeType), data)
	if err != nil {
		return nil, fmt.Errorf("create edge %d -[%s]-> %d: %w", from, edgeType, to, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create edge %d -[%s]-> %d: %w", from, edgeType, to, err)
	}
	return &domain.Edge{ID: id, FromID: from, ToID: to, Type: edgeType, Properties: props}, nil
}

func (o ops) GetEdge(ctx context.Context, id int64) (*domain.Edge, error) {
	row := o.db.QueryRowContext(ctx,
		`SELECT id, from_id, to_id, type, properties FROM edges WHERE id = ?`, id)
	edge, err := scanEdge(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("edge %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get edge %d: %w", id, err)
	}
	return edge, nil
}

func (o ops) DeleteEdge(ctx context.Context, id int64) error {
	res, err := o.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete edge %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete edge %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("edge %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (o ops) GetEdges(ctx context.Context, from, to int64, edgeType domain.EdgeType) ([]domain.Edge, error) {
	return o.queryEdges(ctx,
		`SELECT id, from_id, to_id, type, properties FROM edges WHERE from_id = ? AND to_id = ? AND type = ?`,
		from, to, string(edgeType))
}

func (o ops) OutgoingEdges(ctx context.Context, from int64, edgeType domain.EdgeType) ([]domain.Edge, error) {
	return o.queryEdges(ctx,
		`SELECT id, from_id, to_id, type, properties FROM edges WHERE from_id = ? AND type = ?`,
		from, string(edgeType))
}

func (o ops) IncomingEdges(ctx context.Context, to int64, edgeType domain.EdgeType) ([]domain.Edge, error) {
	return o.queryEdges(ctx,
		`SELECT id, from_id, to_id, type, properties FROM edges WHERE to_id = ? AND type = ?`,
		to, string(edgeType))
}

func (o ops) queryEdges(ctx context.Context, query string, args ...any) ([]domain.Edge, error) {
	rows, err := o.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		edge, err := scanEdge(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, *edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}

func scanEdge(scan func(dest ...any) error) (*domain.Edge, error) {
	var (
		edge     domain.Edge
		edgeType string
		data     []byte
	)
	if err := scan(&edge.ID, &edge.FromID, &edge.ToID, &edgeType, &data); err != nil {
		return nil, err
	}
	props, err := unmarshalProperties(data)
	if err != nil {
		return nil, err
	}
	edge.Type = domain.EdgeType(edgeType)
	edge.Properties = props
	return &edge, nil
}

func marshalProperties(props map[string]domain.Value) ([]byte, error) {
	native := make(map[string]any, len(props))
	for k, v := range props {
		native[k] = v.Native()
	}
	return json.Marshal(native)
}

func unmarshalProperties(data []byte) (map[string]domain.Value, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return domain.CoerceProperties(raw), nil
}
