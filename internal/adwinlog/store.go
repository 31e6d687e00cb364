// Package adwinlog persists drift events to a SQLite database for
// later audit: WAL pragmas, a single write connection, and a Tx
// helper, with a small migration guard for the one table this package
// owns. It never persists window state, only the fact that a drift
// occurred, when, and what it cost -- the window itself stays
// in-memory-only, so the core engine's non-durability is preserved.
package adwinlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Event is one recorded drift: a stream's window was pruned at
// OccurredAt, dropping Dropped samples, moving the live count from
// NobsBefore to NobsAfter and the mean from MeanBefore to MeanAfter.
type Event struct {
	StreamKey  string
	OccurredAt time.Time
	Dropped    float64
	NobsBefore int64
	NobsAfter  int64
	MeanBefore float64
	MeanAfter  float64
}

// Store is a SQLite-backed drift event log.
type Store struct {
	db   *sql.DB
	once sync.Once
}

// Open opens (or creates) a SQLite database at path and applies WAL
// journaling, a bounded busy timeout, and a single write connection,
// since SQLite performs best that way.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("adwinlog: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("adwinlog: ping %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("adwinlog: exec %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		_, err = s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS drift_events (
				id           INTEGER  PRIMARY KEY AUTOINCREMENT,
				stream_key   TEXT     NOT NULL,
				occurred_at  DATETIME NOT NULL,
				dropped      REAL     NOT NULL,
				nobs_before  INTEGER  NOT NULL,
				nobs_after   INTEGER  NOT NULL,
				mean_before  REAL     NOT NULL,
				mean_after   REAL     NOT NULL
			)
		`)
		if err != nil {
			return
		}
		_, err = s.db.ExecContext(ctx,
			`CREATE INDEX IF NOT EXISTS idx_drift_events_stream ON drift_events(stream_key, occurred_at)`,
		)
	})
	if err != nil {
		return fmt.Errorf("adwinlog: migrate: %w", err)
	}
	return nil
}

// Tx executes fn within a database transaction, committing on success
// and rolling back on error.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("adwinlog: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("adwinlog: rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

// InsertEvent records one drift event.
func (s *Store) InsertEvent(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drift_events (
			stream_key, occurred_at, dropped, nobs_before, nobs_after, mean_before, mean_after
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.StreamKey, e.OccurredAt, e.Dropped, e.NobsBefore, e.NobsAfter, e.MeanBefore, e.MeanAfter,
	)
	if err != nil {
		return fmt.Errorf("adwinlog: insert event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent drift events for a stream key, in
// descending order of occurrence. Pass an empty key to list across all
// streams.
func (s *Store) ListEvents(ctx context.Context, streamKey string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if streamKey == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT stream_key, occurred_at, dropped, nobs_before, nobs_after, mean_before, mean_after
			FROM drift_events ORDER BY occurred_at DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT stream_key, occurred_at, dropped, nobs_before, nobs_after, mean_before, mean_after
			FROM drift_events WHERE stream_key = ? ORDER BY occurred_at DESC LIMIT ?`, streamKey, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("adwinlog: list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.StreamKey, &e.OccurredAt, &e.Dropped, &e.NobsBefore, &e.NobsAfter, &e.MeanBefore, &e.MeanAfter); err != nil {
			return nil, fmt.Errorf("adwinlog: scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
