package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/ironlog/internal/event"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the PostgreSQL event store. It wraps a pgxpool.Pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// ReadAll returns every event in append order.
func (db *DB) ReadAll(ctx context.Context) ([]event.Event, error) {
	rows, err := db.Pool.Query(ctx, `SELECT payload FROM events ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var result []event.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e, err := event.Unmarshal(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding event %d: %w", len(result), err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Append batch-inserts events in a single transaction.
func (db *DB) Append(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows, err := toRows(events)
	if err != nil {
		return err
	}

	query := `INSERT INTO events (id, type, exercise, week_index, workout_index, payload) VALUES `
	args := make([]any, 0, len(rows)*6)
	valueStrings := make([]string, 0, len(rows))
	for i, r := range rows {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.ID, r.Type, r.Exercise, r.Week, r.Workout, string(r.Payload))
	}
	query += strings.Join(valueStrings, ",")

	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("appending %d events: %w", len(events), err)
	}
	return nil
}
