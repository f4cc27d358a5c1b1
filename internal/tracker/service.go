// Package tracker is the application service around the training core. It
// loads the log and template, runs a command handler and appends the result.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/ironlog/internal/command"
	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/plan"
	"github.com/claude/ironlog/internal/prescription"
	"github.com/claude/ironlog/internal/state"
)

// EventStore is the append-only log the service reads and writes.
type EventStore interface {
	ReadAll(ctx context.Context) ([]event.Event, error)
	Append(ctx context.Context, events []event.Event) error
}

// TemplateProvider supplies the training template.
type TemplateProvider interface {
	Template(ctx context.Context) (plan.Template, error)
}

// ErrInvalidFeedback is returned when a feedback rating is outside 0-3.
var ErrInvalidFeedback = errors.New("feedback ratings must be between 0 and 3")

// Feedback is the trainee's rating of a completed exercise, each 0-3.
type Feedback struct {
	JointPain int `json:"joint_pain"`
	Pump      int `json:"pump"`
	Workload  int `json:"workload"`
}

// Validate checks every rating is within 0-3.
func (f Feedback) Validate() error {
	for _, r := range []struct {
		name string
		v    int
	}{{"joint_pain", f.JointPain}, {"pump", f.Pump}, {"workload", f.Workload}} {
		if r.v < 0 || r.v > 3 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidFeedback, r.name, r.v)
		}
	}
	return nil
}

// Map converts feedback to the form stored on ExerciseCompleted events.
func (f Feedback) Map() map[string]int {
	return map[string]int{
		"joint_pain": f.JointPain,
		"pump":       f.Pump,
		"workload":   f.Workload,
	}
}

// Service serializes commands against one event store. Every command holds
// the service lock across read, decide and append, so the log has a single
// writer per Service.
type Service struct {
	store     EventStore
	templates TemplateProvider
	handler   *command.Handler
	strategy  prescription.Strategy
	log       *slog.Logger

	mu sync.Mutex
}

// NewService creates a Service. A nil handler or strategy falls back to the
// defaults.
func NewService(store EventStore, templates TemplateProvider, handler *command.Handler, strategy prescription.Strategy, log *slog.Logger) *Service {
	if handler == nil {
		handler = command.New()
	}
	if strategy == nil {
		strategy = prescription.FeedbackBased
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     store,
		templates: templates,
		handler:   handler,
		strategy:  strategy,
		log:       log,
	}
}

// AsRejection reports whether err is a domain rejection and returns it.
func AsRejection(err error) (*command.Rejection, bool) {
	var rej *command.Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// LogSet records a performed set and returns the appended events.
func (s *Service) LogSet(ctx context.Context, exercise string, reps int, weight float64) ([]event.Event, error) {
	return s.execute(ctx, "log_set", func(events []event.Event, tpl plan.Template) command.Decision {
		return s.handler.LogSet(events, tpl, exercise, reps, weight)
	})
}

// CompleteExercise closes an exercise of the current workout with feedback.
func (s *Service) CompleteExercise(ctx context.Context, exercise string, fb Feedback) ([]event.Event, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	return s.execute(ctx, "complete_exercise", func(events []event.Event, tpl plan.Template) command.Decision {
		return s.handler.CompleteExercise(events, tpl, exercise, fb.Map())
	})
}

// CompleteWorkout closes the current workout.
func (s *Service) CompleteWorkout(ctx context.Context) ([]event.Event, error) {
	return s.execute(ctx, "complete_workout", func(events []event.Event, tpl plan.Template) command.Decision {
		return s.handler.CompleteWorkout(events, tpl)
	})
}

// History returns the full event log in append order.
func (s *Service) History(ctx context.Context) ([]event.Event, error) {
	events, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return events, nil
}

// Template returns the configured training template.
func (s *Service) Template(ctx context.Context) (plan.Template, error) {
	tpl, err := s.templates.Template(ctx)
	if err != nil {
		return plan.Template{}, fmt.Errorf("loading template: %w", err)
	}
	return tpl, nil
}

// Position resolves the workout slot currently in progress.
func (s *Service) Position(ctx context.Context) (state.Position, error) {
	events, tpl, err := s.snapshot(ctx)
	if err != nil {
		return state.Position{}, err
	}
	return state.CurrentPosition(events, s.handler.Plan(tpl)), nil
}

func (s *Service) snapshot(ctx context.Context) ([]event.Event, plan.Template, error) {
	events, err := s.History(ctx)
	if err != nil {
		return nil, plan.Template{}, err
	}
	tpl, err := s.Template(ctx)
	if err != nil {
		return nil, plan.Template{}, err
	}
	return events, tpl, nil
}

// execute runs decide against a consistent snapshot and appends the accepted
// events while holding the service lock.
func (s *Service) execute(ctx context.Context, name string, decide func([]event.Event, plan.Template) command.Decision) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, tpl, err := s.snapshot(ctx)
	if err != nil {
		commandsTotal.WithLabelValues(name, outcomeError).Inc()
		return nil, err
	}

	d := decide(events, tpl)
	if !d.Accepted() {
		commandsTotal.WithLabelValues(name, outcomeRejected).Inc()
		s.log.Info("command rejected", "command", name, "code", d.Rejection.Code, "reason", d.Rejection.Message)
		return nil, d.Err()
	}

	if err := s.store.Append(ctx, d.Events); err != nil {
		commandsTotal.WithLabelValues(name, outcomeError).Inc()
		s.log.Error("appending events", "command", name, "error", err)
		return nil, fmt.Errorf("appending events: %w", err)
	}
	commandsTotal.WithLabelValues(name, outcomeAccepted).Inc()
	eventsAppended.Add(float64(len(d.Events)))
	s.log.Debug("command accepted", "command", name, "events", len(d.Events))
	return d.Events, nil
}
