// Package command validates training commands against the derived state and
// the plan, and decides which events to append.
//
// Handlers are pure: they read the event snapshot and template they are given
// and return a Decision. Appending the events is the caller's job, as is
// making sure no other writer appends in between.
package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/plan"
	"github.com/claude/ironlog/internal/state"
)

// Handler decides log-set, complete-exercise and complete-workout commands.
type Handler struct {
	weeks   int
	now     func() time.Time
	matcher NameMatcher
}

// Option configures a Handler.
type Option func(*Handler)

// WithWeeks sets the number of weeks the template is expanded into.
func WithWeeks(weeks int) Option {
	return func(h *Handler) { h.weeks = weeks }
}

// WithClock overrides the timestamp source for SetLogged events.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithMatcher overrides the fuzzy matcher used for exercise suggestions.
func WithMatcher(m NameMatcher) Option {
	return func(h *Handler) { h.matcher = m }
}

// New returns a Handler with defaults: plan.DefaultWeeks, time.Now and
// LevenshteinMatcher.
func New(opts ...Option) *Handler {
	h := &Handler{
		weeks:   plan.DefaultWeeks,
		now:     time.Now,
		matcher: LevenshteinMatcher{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.weeks <= 0 {
		h.weeks = plan.DefaultWeeks
	}
	return h
}

// Weeks is the plan length this handler resolves positions against.
func (h *Handler) Weeks() int {
	return h.weeks
}

// Plan expands tpl with the handler's plan length.
func (h *Handler) Plan(tpl plan.Template) plan.Plan {
	return tpl.Plan(h.weeks)
}

// LogSet records a performed set at the current position. The first set of an
// exercise in a workout slot is preceded by an ExerciseStarted event.
func (h *Handler) LogSet(events []event.Event, tpl plan.Template, exercise string, reps int, weight float64) Decision {
	if !tpl.HasExercise(exercise) {
		return h.unknownExercise(exercise, tpl.ExerciseNames())
	}
	if reps <= 0 || weight <= 0 {
		return Reject(Rejection{
			Code:    CodeInvalidSet,
			Message: fmt.Sprintf("reps and weight must be positive (got %d reps, %g weight)", reps, weight),
		})
	}

	pos := state.CurrentPosition(events, h.Plan(tpl))
	st := state.Exercise(events, exercise, pos.Week, pos.Workout)
	if st.Completed {
		return Reject(Rejection{
			Code:    CodeExerciseAlreadyComplete,
			Message: fmt.Sprintf("cannot log set: exercise '%s' already completed for week %d, workout %d", exercise, pos.Week, pos.Workout),
		})
	}

	var out []event.Event
	if len(st.Sets) == 0 {
		out = append(out, event.ExerciseStarted{
			Exercise:     exercise,
			WeekIndex:    pos.Week,
			WorkoutIndex: pos.Workout,
			Feedback:     map[string]int{},
		})
	}
	out = append(out, event.SetLogged{
		Exercise:     exercise,
		Reps:         reps,
		Weight:       weight,
		Timestamp:    h.now(),
		WeekIndex:    pos.Week,
		WorkoutIndex: pos.Workout,
	})
	return Accept(out...)
}

// CompleteExercise closes an exercise of the current workout once enough sets
// are logged, recording the trainee's feedback.
func (h *Handler) CompleteExercise(events []event.Event, tpl plan.Template, exercise string, feedback map[string]int) Decision {
	pos := state.CurrentPosition(events, h.Plan(tpl))
	st := state.Exercise(events, exercise, pos.Week, pos.Workout)

	workout, ok := h.Plan(tpl).Workout(pos.Week, pos.Workout)
	if !ok {
		return noWorkout(pos)
	}
	ex, ok := workout.Exercise(exercise)
	if !ok {
		return Reject(Rejection{
			Code:    CodeExerciseNotInWorkout,
			Message: fmt.Sprintf("exercise '%s' not found in workout %d", exercise, pos.Workout),
		})
	}

	required := ex.RequiredSets()
	if len(st.Sets) < required {
		return Reject(Rejection{
			Code:    CodeInsufficientSets,
			Message: fmt.Sprintf("cannot complete '%s': only %d of %d sets completed", exercise, len(st.Sets), required),
		})
	}
	if st.Completed {
		return Reject(Rejection{
			Code:    CodeExerciseAlreadyComplete,
			Message: fmt.Sprintf("exercise '%s' already completed", exercise),
		})
	}

	return Accept(event.ExerciseCompleted{
		Exercise:     exercise,
		WeekIndex:    pos.Week,
		WorkoutIndex: pos.Workout,
		Feedback:     event.CloneFeedback(feedback),
	})
}

// CompleteWorkout closes the current workout once every exercise in it is
// completed.
func (h *Handler) CompleteWorkout(events []event.Event, tpl plan.Template) Decision {
	pos := state.CurrentPosition(events, h.Plan(tpl))
	workout, ok := h.Plan(tpl).Workout(pos.Week, pos.Workout)
	if !ok {
		return noWorkout(pos)
	}

	st := state.Workout(events, workout.ExerciseNames(), pos.Week, pos.Workout)
	if len(st.MissingExercises) > 0 {
		missing := st.MissingExercises.Sorted()
		return Reject(Rejection{
			Code:    CodeWorkoutIncomplete,
			Message: "cannot complete workout: missing exercises: " + strings.Join(missing, ", "),
			Missing: missing,
		})
	}
	if st.Completed {
		return Reject(Rejection{
			Code:    CodeWorkoutAlreadyComplete,
			Message: fmt.Sprintf("workout %d already completed", pos.Workout),
		})
	}

	return Accept(event.WorkoutCompleted{WeekIndex: pos.Week, WorkoutIndex: pos.Workout})
}

func (h *Handler) unknownExercise(exercise string, names []string) Decision {
	if best, score := h.matcher.Best(exercise, names); best != "" && score > SuggestThreshold {
		return Reject(Rejection{
			Code:       CodeUnknownExercise,
			Message:    fmt.Sprintf("exercise '%s' not in template, did you mean '%s'?", exercise, best),
			Suggestion: best,
		})
	}
	return Reject(Rejection{
		Code:    CodeUnknownExercise,
		Message: "unknown exercise: " + exercise,
	})
}

func noWorkout(pos state.Position) Decision {
	return Reject(Rejection{
		Code:    CodeWorkoutNotFound,
		Message: fmt.Sprintf("no workout found at week %d, workout %d", pos.Week, pos.Workout),
	})
}
