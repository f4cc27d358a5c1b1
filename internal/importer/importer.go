// Package importer moves an event log between a JSON file and an event store.
// The file format is a JSON array of events in append order, the same form
// the history endpoint returns.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/event"
)

// ErrStoreNotEmpty is returned when importing into a log that already has
// events and Append was not requested.
var ErrStoreNotEmpty = errors.New("event store is not empty")

// ErrDuplicateCompletion is returned when the imported events would complete
// the same exercise or workout slot twice.
var ErrDuplicateCompletion = errors.New("duplicate completion")

// Store is the event log an import reads and writes.
type Store interface {
	ReadAll(ctx context.Context) ([]event.Event, error)
	Append(ctx context.Context, events []event.Event) error
}

// Stats tracks import progress.
type Stats struct {
	EventsRead     int
	EventsAppended int
	Existing       int
	ByType         map[event.Type]int
}

// Options control an import.
type Options struct {
	// DryRun decodes and validates without writing.
	DryRun bool
	// Append allows importing after events already in the store.
	Append bool
}

// Importer reads event files and appends them to a store.
type Importer struct {
	store Store
	log   *slog.Logger
	opts  Options
	stats Stats
}

// New creates a new Importer.
func New(store Store, log *slog.Logger, opts Options) *Importer {
	return &Importer{store: store, log: log, opts: opts, stats: Stats{ByType: map[event.Type]int{}}}
}

// ImportFile imports the events stored at path.
func (imp *Importer) ImportFile(ctx context.Context, path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading %s: %w", path, err)
	}
	return imp.Import(ctx, data)
}

// Import appends the JSON event list in data as a single batch, so either
// every event lands or none do.
func (imp *Importer) Import(ctx context.Context, data []byte) (*Stats, error) {
	events, err := event.UnmarshalList(data)
	if err != nil {
		return &imp.stats, err
	}
	imp.stats.EventsRead = len(events)
	for i, e := range events {
		if err := event.Validate(e); err != nil {
			return &imp.stats, fmt.Errorf("event %d: %w", i, err)
		}
		imp.stats.ByType[e.Kind()]++
	}

	existing, err := imp.store.ReadAll(ctx)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading store: %w", err)
	}
	imp.stats.Existing = len(existing)
	if len(existing) > 0 && !imp.opts.Append {
		return &imp.stats, fmt.Errorf("%w: %d events present", ErrStoreNotEmpty, len(existing))
	}
	if err := checkCompletions(existing, events); err != nil {
		return &imp.stats, err
	}

	if imp.opts.DryRun {
		imp.log.Info("dry run: skipping append", "events", len(events))
		return &imp.stats, nil
	}
	if len(events) == 0 {
		return &imp.stats, nil
	}
	if err := imp.store.Append(ctx, events); err != nil {
		return &imp.stats, fmt.Errorf("appending events: %w", err)
	}
	imp.stats.EventsAppended = len(events)
	imp.log.Info("events imported", "events", len(events), "existing", len(existing))
	return &imp.stats, nil
}

type exerciseSlot struct {
	exercise      string
	week, workout int
}

type workoutSlot struct {
	week, workout int
}

// checkCompletions replays existing then incoming and fails on the first
// incoming event that completes an exercise or workout slot already completed.
func checkCompletions(existing, incoming []event.Event) error {
	exercises := map[exerciseSlot]bool{}
	workouts := map[workoutSlot]bool{}
	complete := func(e event.Event) (dup bool) {
		switch e := e.(type) {
		case event.ExerciseCompleted:
			k := exerciseSlot{e.Exercise, e.WeekIndex, e.WorkoutIndex}
			dup, exercises[k] = exercises[k], true
		case event.WorkoutCompleted:
			k := workoutSlot{e.WeekIndex, e.WorkoutIndex}
			dup, workouts[k] = workouts[k], true
		}
		return dup
	}

	for _, e := range existing {
		complete(e)
	}
	for i, e := range incoming {
		if complete(e) {
			week, workout := event.Indices(e)
			return fmt.Errorf("%w: event %d (%s) at week %d, workout %d",
				ErrDuplicateCompletion, i, e.Kind(), week, workout)
		}
	}
	return nil
}

// Export writes every event in the store to w as an indented JSON array.
func Export(ctx context.Context, store Store, w io.Writer) (int, error) {
	events, err := store.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading store: %w", err)
	}
	wire, err := event.ToWire(events)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return 0, fmt.Errorf("writing events: %w", err)
	}
	return len(events), nil
}
