// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/packmap/packmap/internal/callgraph"
	"github.com/packmap/packmap/internal/extract"
	"github.com/packmap/packmap/pkg/nsid"

	_ "modernc.org/sqlite"
)

const (
	// DefaultFileName is the database file name used inside an output
	// directory.
	DefaultFileName = "packmap.db"

	schemaVersion = 1
)

// ErrGraphNotFound is returned when no graph is stored under a name.
var ErrGraphNotFound = errors.New("graph not found")

type (
	// Store is a SQLite-backed graph store.
	Store struct {
		db   *sql.DB
		path string
	}

	// GraphInfo summarizes one stored graph.
	GraphInfo struct {
		Name      string
		Nodes     int
		Edges     int
		CreatedAt time.Time
	}
)

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect for every
	// statement.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS graphs (
		name TEXT PRIMARY KEY,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		graph TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		category TEXT NOT NULL,
		PRIMARY KEY (graph, id),
		FOREIGN KEY (graph) REFERENCES graphs(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS edges (
		graph TEXT NOT NULL,
		seq INTEGER NOT NULL,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		provenance TEXT NOT NULL,
		label TEXT,
		color TEXT,
		scheduled INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (graph, seq),
		FOREIGN KEY (graph) REFERENCES graphs(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(graph, source);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(graph, target);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveGraph stores g under name, replacing a previous graph of that name.
func (s *Store) SaveGraph(ctx context.Context, name string, g *callgraph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM graphs WHERE name = ?", name); err != nil {
		return fmt.Errorf("clear graph %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO graphs (name, node_count, edge_count, created_at) VALUES (?, ?, ?, ?)",
		name, g.Order(), g.Size(), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert graph %s: %w", name, err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, "INSERT INTO nodes (graph, seq, id, category) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer nodeStmt.Close() //nolint:errcheck // closed with the transaction

	for i, n := range g.Nodes() {
		if _, err := nodeStmt.ExecContext(ctx, name, i, n.ID.String(), n.Category.String()); err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (graph, seq, source, target, provenance, label, color, scheduled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer edgeStmt.Close() //nolint:errcheck // closed with the transaction

	for i, e := range g.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, name, i, e.From.String(), e.To.String(),
			e.Provenance.String(), e.Label, e.Color, e.Scheduled,
		); err != nil {
			return fmt.Errorf("insert edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	return tx.Commit()
}

// LoadGraph reads the graph stored under name.
func (s *Store) LoadGraph(ctx context.Context, name string) (*callgraph.Graph, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM graphs WHERE name = ?", name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query graph %s: %w", name, err)
	}

	g := callgraph.New()
	if err := s.loadNodes(ctx, name, g); err != nil {
		return nil, err
	}
	if err := s.loadEdges(ctx, name, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) loadNodes(ctx context.Context, name string, g *callgraph.Graph) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, category FROM nodes WHERE graph = ? ORDER BY seq", name)
	if err != nil {
		return fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	for rows.Next() {
		var id, category string
		if err := rows.Scan(&id, &category); err != nil {
			return fmt.Errorf("scan node: %w", err)
		}
		cat := callgraph.Plain
		if category == callgraph.Virtual.String() {
			cat = callgraph.Virtual
		}
		g.AddNode(nsid.ID(id), cat)
	}
	return rows.Err()
}

func (s *Store) loadEdges(ctx context.Context, name string, g *callgraph.Graph) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, provenance, COALESCE(label, ''), COALESCE(color, ''), scheduled
		FROM edges WHERE graph = ? ORDER BY seq
	`, name)
	if err != nil {
		return fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	for rows.Next() {
		var (
			e          callgraph.Edge
			from, to   string
			provenance string
		)
		if err := rows.Scan(&from, &to, &provenance, &e.Label, &e.Color, &e.Scheduled); err != nil {
			return fmt.Errorf("scan edge: %w", err)
		}
		e.From, e.To = nsid.ID(from), nsid.ID(to)
		e.Provenance = parseProvenance(provenance)
		g.AddEdge(e)
	}
	return rows.Err()
}

// Graphs lists stored graphs ordered by name.
func (s *Store) Graphs(ctx context.Context) ([]GraphInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, node_count, edge_count, created_at FROM graphs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query graphs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []GraphInfo
	for rows.Next() {
		var info GraphInfo
		if err := rows.Scan(&info.Name, &info.Nodes, &info.Edges, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Callers returns the distinct sources of edges into id within graph name.
func (s *Store) Callers(ctx context.Context, name string, id nsid.ID) ([]nsid.ID, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source FROM edges WHERE graph = ? AND target = ? GROUP BY source ORDER BY MIN(seq)",
		name, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query callers: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []nsid.ID
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scan caller: %w", err)
		}
		out = append(out, nsid.ID(src))
	}
	return out, rows.Err()
}

func parseProvenance(s string) extract.Provenance {
	for _, p := range []extract.Provenance{extract.FromScript, extract.FromTag, extract.FromAdvancement} {
		if p.String() == s {
			return p
		}
	}
	return extract.FromScript
}
