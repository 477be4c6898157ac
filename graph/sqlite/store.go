// Package sqlite provides a persistent graph.Store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/c360studio/semspore/graph"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS triples (
	s_kind     INTEGER NOT NULL,
	s          TEXT    NOT NULL,
	p          TEXT    NOT NULL,
	o_kind     INTEGER NOT NULL,
	o          TEXT    NOT NULL,
	o_datatype TEXT    NOT NULL DEFAULT '',
	o_lang     TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (s_kind, s, p, o_kind, o, o_datatype, o_lang)
);
CREATE INDEX IF NOT EXISTS idx_triples_p ON triples(p);
CREATE INDEX IF NOT EXISTS idx_triples_o ON triples(o);
CREATE TABLE IF NOT EXISTS namespaces (
	prefix TEXT PRIMARY KEY,
	iri    TEXT NOT NULL
);`

// Store persists triples and namespace bindings in a SQLite database.
type Store struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	closed bool
}

var _ graph.Store = (*Store)(nil)

// Open opens or creates the database at path. An empty path selects
// "semspore.db"; ":memory:" keeps everything in memory.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "semspore.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return graph.ErrClosed
	}
	return nil
}

// Has implements graph.Store.
func (s *Store) Has(ctx context.Context, t graph.Triple) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM triples
		 WHERE s_kind=? AND s=? AND p=? AND o_kind=? AND o=? AND o_datatype=? AND o_lang=?`,
		tripleArgs(t)...).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has triple: %w", err)
	}
	return n > 0, nil
}

// Add implements graph.Store. The batch is applied in one transaction.
func (s *Store) Add(ctx context.Context, triples ...graph.Triple) (retErr error) {
	if err := s.check(); err != nil {
		return err
	}
	for _, t := range triples {
		if err := graph.ValidateTriple(t); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO triples(s_kind, s, p, o_kind, o, o_datatype, o_lang) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, t := range triples {
		if _, err := stmt.ExecContext(ctx, tripleArgs(t)...); err != nil {
			return fmt.Errorf("insert %s: %w", t, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Remove implements graph.Store.
func (s *Store) Remove(ctx context.Context, t graph.Triple) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM triples
		 WHERE s_kind=? AND s=? AND p=? AND o_kind=? AND o=? AND o_datatype=? AND o_lang=?`,
		tripleArgs(t)...)
	if err != nil {
		return fmt.Errorf("remove %s: %w", t, err)
	}
	return nil
}

// RemoveSubject implements graph.Store.
func (s *Store) RemoveSubject(ctx context.Context, subject graph.Term) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM triples WHERE s_kind=? AND s=?`, int(subject.Kind), subject.Value)
	if err != nil {
		return 0, fmt.Errorf("remove subject %s: %w", subject, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// Match implements graph.Store.
func (s *Store) Match(ctx context.Context, subj, pred, obj graph.Term) ([]graph.Triple, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if !subj.IsZero() {
		where = append(where, "s_kind=?", "s=?")
		args = append(args, int(subj.Kind), subj.Value)
	}
	if !pred.IsZero() {
		where = append(where, "p=?")
		args = append(args, pred.Value)
	}
	if !obj.IsZero() {
		where = append(where, "o_kind=?", "o=?", "o_datatype=?", "o_lang=?")
		args = append(args, int(obj.Kind), obj.Value, obj.Datatype, obj.Lang)
	}
	query := `SELECT s_kind, s, p, o_kind, o, o_datatype, o_lang FROM triples`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []graph.Triple
	for rows.Next() {
		var (
			sKind, oKind int
			t            graph.Triple
		)
		if err := rows.Scan(&sKind, &t.Subject.Value, &t.Predicate.Value,
			&oKind, &t.Object.Value, &t.Object.Datatype, &t.Object.Lang); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		t.Subject.Kind = graph.TermKind(sKind)
		t.Predicate.Kind = graph.KindIRI
		t.Object.Kind = graph.TermKind(oKind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	graph.SortTriples(out)
	return out, nil
}

// Namespaces implements graph.Store.
func (s *Store) Namespaces(ctx context.Context) (map[string]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT prefix, iri FROM namespaces`)
	if err != nil {
		return nil, fmt.Errorf("select namespaces: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := make(map[string]string)
	for rows.Next() {
		var prefix, iri string
		if err := rows.Scan(&prefix, &iri); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[prefix] = iri
	}
	return out, rows.Err()
}

// Bind implements graph.Store.
func (s *Store) Bind(ctx context.Context, prefix, iri string) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO namespaces(prefix, iri) VALUES(?,?) ON CONFLICT(prefix) DO UPDATE SET iri=excluded.iri`,
		prefix, iri)
	if err != nil {
		return fmt.Errorf("bind %s: %w", prefix, err)
	}
	return nil
}

// Len implements graph.Store.
func (s *Store) Len(ctx context.Context) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM triples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func tripleArgs(t graph.Triple) []any {
	return []any{
		int(t.Subject.Kind), t.Subject.Value,
		t.Predicate.Value,
		int(t.Object.Kind), t.Object.Value, t.Object.Datatype, t.Object.Lang,
	}
}
