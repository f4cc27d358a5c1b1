package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/claude/ironlog/internal/event"
	_ "modernc.org/sqlite"
)

// SQLite is the single-file event store used for local installs.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite event store at path. The schema must already be
// in place; run RunMigrations first.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ReadAll returns every event in append order.
func (s *SQLite) ReadAll(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM events ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var result []event.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e, err := event.Unmarshal([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decoding event %d: %w", len(result), err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Append inserts events in a single transaction.
func (s *SQLite) Append(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows, err := toRows(events)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (id, type, exercise, week_index, workout_index, payload) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID.String(), r.Type, r.Exercise, r.Week, r.Workout, string(r.Payload)); err != nil {
			return fmt.Errorf("inserting %s event: %w", r.Type, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %d events: %w", len(events), err)
	}
	return nil
}
