// Package store keeps the results of closure runs in a SQLite database so
// that runs can be listed and compared later.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dhamidi/classdeps/closure"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrAmbiguous = errors.New("ambiguous run id")
)

type Run struct {
	ID        string
	CreatedAt time.Time
	Roots     []string
	Classpath []string
	Count     int
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		roots TEXT NOT NULL,
		classpath TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deps (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		class TEXT NOT NULL,
		base TEXT NOT NULL,
		PRIMARY KEY (run_id, class)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one closure run and returns it with a fresh id.
func (s *Store) Save(roots, classpath []string, deps closure.DependencySet) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Roots:     roots,
		Classpath: classpath,
		Count:     len(deps),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, created_at, roots, classpath) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), strings.Join(roots, "\n"), strings.Join(classpath, "\n"))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO deps (run_id, class, base) VALUES (?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare deps: %w", err)
	}
	defer stmt.Close()
	for _, class := range deps.Sorted() {
		if _, err := stmt.Exec(run.ID, class, deps[class]); err != nil {
			return Run{}, fmt.Errorf("insert dep %s: %w", class, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.created_at, r.roots, r.classpath, COUNT(d.class)
		FROM runs r LEFT JOIN deps d ON d.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run              Run
			created          int64
			roots, classpath string
		)
		if err := rows.Scan(&run.ID, &created, &roots, &classpath, &run.Count); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(0, created)
		run.Roots = splitLines(roots)
		run.Classpath = splitLines(classpath)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Resolve expands an id prefix to the id of exactly one run.
func (s *Store) Resolve(prefix string) (string, error) {
	rows, err := s.db.Query(`SELECT id FROM runs WHERE id LIKE ? || '%' ESCAPE '\' LIMIT 2`,
		escapeLike(prefix))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", prefix, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("resolve %s: %w", prefix, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve %s: %w", prefix, err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
}

func (s *Store) Deps(id string) (closure.DependencySet, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rows, err := s.db.Query(`SELECT class, base FROM deps WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load deps of %s: %w", id, err)
	}
	defer rows.Close()

	deps := closure.DependencySet{}
	for rows.Next() {
		var class, base string
		if err := rows.Scan(&class, &base); err != nil {
			return nil, fmt.Errorf("scan dep: %w", err)
		}
		deps[class] = base
	}
	return deps, rows.Err()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
