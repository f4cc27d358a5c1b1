// Package storage persists the append-only event log.
//
// Every store keeps events in append order, assigns each one a UUID row ID and
// writes the events of a single Append call in one transaction.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironlog/internal/event"
	"github.com/google/uuid"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned for a database driver other than sqlite or
// postgres.
var ErrUnknownDriver = errors.New("unknown database driver")

// Store is an event log backed by a database.
type Store interface {
	ReadAll(ctx context.Context) ([]event.Event, error)
	Append(ctx context.Context, events []event.Event) error
	Close() error
}

// Open connects to the event store for driver. For sqlite, dsn is a file path.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		return New(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// row is the column set shared by the SQL stores.
type row struct {
	ID       uuid.UUID
	Type     string
	Exercise *string
	Week     int
	Workout  int
	Payload  []byte
}

// toRows validates and encodes events for insertion.
func toRows(events []event.Event) ([]row, error) {
	rows := make([]row, 0, len(events))
	for i, e := range events {
		if err := event.Validate(e); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		payload, err := event.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encoding event %d: %w", i, err)
		}
		r := row{ID: uuid.New(), Type: string(e.Kind()), Payload: payload}
		if name, ok := event.ExerciseOf(e); ok {
			r.Exercise = &name
		}
		r.Week, r.Workout = event.Indices(e)
		rows = append(rows, r)
	}
	return rows, nil
}
