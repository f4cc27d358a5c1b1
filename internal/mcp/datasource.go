package mcp

import (
	"context"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/tracker"
)

// DataSource abstracts the training log for MCP tools. Both *tracker.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	LogSet(ctx context.Context, exercise string, reps int, weight float64) ([]event.Event, error)
	CompleteExercise(ctx context.Context, exercise string, fb tracker.Feedback) ([]event.Event, error)
	CompleteWorkout(ctx context.Context) ([]event.Event, error)
	CurrentWorkout(ctx context.Context) (tracker.WorkoutView, error)
	History(ctx context.Context) ([]event.Event, error)
}

// Compile-time check: *tracker.Service satisfies DataSource.
var _ DataSource = (*tracker.Service)(nil)
