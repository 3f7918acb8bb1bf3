// Package snapshot archives fetched datasets in a local SQLite database so
// reports can be rerun without hitting the API again.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrEmpty is returned when the archive holds no runs yet.
var ErrEmpty = errors.New("snapshot store is empty")

// Run identifies one archived fetch.
type Run struct {
	ID        string
	FetchedAt time.Time
}

// Store manages the SQLite archive of fetch runs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database and initializes the schema.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	db.SetMaxOpenConns(2)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fetch_runs (
		id         TEXT PRIMARY KEY,
		fetched_at TEXT NOT NULL,
		payload    BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetch_runs_fetched_at ON fetch_runs(fetched_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save archives one fetched dataset payload and returns the run id.
func (s *Store) Save(payload []byte, fetchedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO fetch_runs (id, fetched_at, payload) VALUES (?, ?, ?)`,
		id, fetchedAt.UTC().Format(time.RFC3339Nano), payload,
	)
	if err != nil {
		return "", fmt.Errorf("save fetch run: %w", err)
	}
	return id, nil
}

// Latest returns the most recently archived payload.
func (s *Store) Latest() ([]byte, Run, error) {
	row := s.db.QueryRow(
		`SELECT id, fetched_at, payload FROM fetch_runs ORDER BY fetched_at DESC LIMIT 1`,
	)
	var (
		run       Run
		fetchedAt string
		payload   []byte
	)
	if err := row.Scan(&run.ID, &fetchedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Run{}, ErrEmpty
		}
		return nil, Run{}, fmt.Errorf("load latest fetch run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, Run{}, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	run.FetchedAt = t
	return payload, run, nil
}

// List returns all archived runs, newest first.
func (s *Store) List() ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, fetched_at FROM fetch_runs ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list fetch runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			fetchedAt string
		)
		if err := rows.Scan(&run.ID, &fetchedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
		}
		run.FetchedAt = t
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
