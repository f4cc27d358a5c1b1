package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/storage"
)

const eventsJSON = `[
  {"type": "exercise_started", "exercise": "Squat", "week_index": 0, "workout_index": 0, "feedback": {}},
  {"type": "set", "exercise": "Squat", "reps": 5, "weight": 100, "timestamp": "2025-10-21T18:04:05Z", "week_index": 0, "workout_index": 0},
  {"type": "exercise_completed", "exercise": "Squat", "week_index": 0, "workout_index": 0, "feedback": {"joint_pain": 0, "pump": 2, "workload": 2}},
  {"type": "workout_completed", "week_index": 0, "workout_index": 0}
]`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestImportIntoEmptyStore verifies every event is appended in order and
// counted by type.
func TestImportIntoEmptyStore(t *testing.T) {
	store := storage.NewMemory()
	stats, err := New(store, discard(), Options{}).Import(context.Background(), []byte(eventsJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.EventsRead != 4 || stats.EventsAppended != 4 {
		t.Errorf("stats = %+v, want 4 read and appended", stats)
	}
	if stats.ByType[event.TypeSetLogged] != 1 || stats.ByType[event.TypeWorkoutCompleted] != 1 {
		t.Errorf("by type = %v", stats.ByType)
	}

	events, _ := store.ReadAll(context.Background())
	if len(events) != 4 {
		t.Fatalf("store has %d events, want 4", len(events))
	}
	set, ok := events[1].(event.SetLogged)
	if !ok {
		t.Fatalf("events[1] = %T, want SetLogged", events[1])
	}
	if !set.Timestamp.Equal(time.Date(2025, 10, 21, 18, 4, 5, 0, time.UTC)) {
		t.Errorf("timestamp = %v", set.Timestamp)
	}
}

// TestImportNonEmptyStore verifies the store is protected from duplicate
// imports unless appending is requested.
func TestImportNonEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory(event.ExerciseStarted{Exercise: "Bench Press", WeekIndex: 0, WorkoutIndex: 1, Feedback: map[string]int{}})

	_, err := New(store, discard(), Options{}).Import(ctx, []byte(eventsJSON))
	if !errors.Is(err, ErrStoreNotEmpty) {
		t.Fatalf("err = %v, want ErrStoreNotEmpty", err)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d events, want 1", store.Len())
	}

	stats, err := New(store, discard(), Options{Append: true}).Import(ctx, []byte(eventsJSON))
	if err != nil {
		t.Fatalf("append import: %v", err)
	}
	if stats.Existing != 1 || store.Len() != 5 {
		t.Errorf("existing = %d, store = %d; want 1 and 5", stats.Existing, store.Len())
	}
}

// TestImportDryRun verifies nothing is written.
func TestImportDryRun(t *testing.T) {
	store := storage.NewMemory()
	stats, err := New(store, discard(), Options{DryRun: true}).Import(context.Background(), []byte(eventsJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.EventsRead != 4 || stats.EventsAppended != 0 || store.Len() != 0 {
		t.Errorf("stats = %+v, store = %d", stats, store.Len())
	}
}

// TestImportInvalid verifies malformed files are rejected before any write.
func TestImportInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"type":`},
		{"unknown type", `[{"type": "rest_day"}]`},
		{"zero reps", `[{"type": "set", "exercise": "Squat", "reps": 0, "weight": 100, "week_index": 0, "workout_index": 0}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemory()
			if _, err := New(store, discard(), Options{}).Import(context.Background(), []byte(tt.data)); err == nil {
				t.Error("expected error")
			}
			if store.Len() != 0 {
				t.Errorf("store has %d events, want 0", store.Len())
			}
		})
	}
}

// TestImportDuplicateCompletions verifies a file cannot complete the same
// exercise or workout slot twice, on its own or together with the store.
func TestImportDuplicateCompletions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		existing []event.Event
		data     string
	}{
		{
			name: "exercise twice in file",
			data: `[
  {"type": "exercise_completed", "exercise": "Squat", "week_index": 0, "workout_index": 0, "feedback": {}},
  {"type": "exercise_completed", "exercise": "Squat", "week_index": 0, "workout_index": 0, "feedback": {}}
]`,
		},
		{
			name: "workout twice in file",
			data: `[
  {"type": "workout_completed", "week_index": 1, "workout_index": 0},
  {"type": "workout_completed", "week_index": 1, "workout_index": 0}
]`,
		},
		{
			name:     "workout already in store",
			existing: []event.Event{event.WorkoutCompleted{WeekIndex: 0, WorkoutIndex: 0}},
			data:     eventsJSON,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemory(tt.existing...)
			_, err := New(store, discard(), Options{Append: true}).Import(ctx, []byte(tt.data))
			if !errors.Is(err, ErrDuplicateCompletion) {
				t.Fatalf("err = %v, want ErrDuplicateCompletion", err)
			}
			if store.Len() != len(tt.existing) {
				t.Errorf("store has %d events, want %d", store.Len(), len(tt.existing))
			}
		})
	}

	// The same exercise may be completed again in a different slot.
	store := storage.NewMemory()
	data := `[
  {"type": "exercise_completed", "exercise": "Squat", "week_index": 0, "workout_index": 0, "feedback": {}},
  {"type": "exercise_completed", "exercise": "Squat", "week_index": 1, "workout_index": 0, "feedback": {}}
]`
	if _, err := New(store, discard(), Options{}).Import(ctx, []byte(data)); err != nil {
		t.Fatalf("distinct slots: %v", err)
	}
}

// TestExportRoundTrip verifies an export can be imported into a fresh store.
func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := storage.NewMemory()
	if _, err := New(src, discard(), Options{}).Import(ctx, []byte(eventsJSON)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := Export(ctx, src, &buf)
	if err != nil || n != 4 {
		t.Fatalf("Export = %d, %v", n, err)
	}

	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := storage.NewMemory()
	if _, err := New(dst, discard(), Options{}).ImportFile(ctx, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	want, _ := src.ReadAll(ctx)
	got, _ := dst.ReadAll(ctx)
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		a, _ := event.Marshal(want[i])
		b, _ := event.Marshal(got[i])
		if !bytes.Equal(a, b) {
			t.Errorf("event %d = %s, want %s", i, b, a)
		}
	}
}

// TestImportFileMissing verifies a missing file is an error.
func TestImportFileMissing(t *testing.T) {
	_, err := New(storage.NewMemory(), discard(), Options{}).ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
