// Package state derives exercise and workout progress from the event log.
//
// Everything here is a pure function of its inputs: events are first filtered
// to a scope, then folded from a fresh initial state. Nothing is cached or
// persisted; callers recompute on every query.
package state

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/claude/ironlog/internal/event"
)

// ExerciseState is the derived progress of one exercise in one workout slot.
type ExerciseState struct {
	Exercise     string            `json:"exercise"`
	WeekIndex    int               `json:"week_index"`
	WorkoutIndex int               `json:"workout_index"`
	Started      bool              `json:"started"`
	Completed    bool              `json:"completed"`
	Sets         []event.SetLogged `json:"sets"`
}

// WorkoutState is the derived progress of one (week, workout) slot.
type WorkoutState struct {
	WeekIndex          int     `json:"week_index"`
	WorkoutIndex       int     `json:"workout_index"`
	Completed          bool    `json:"completed"`
	CompletedExercises NameSet `json:"completed_exercises"`
	MissingExercises   NameSet `json:"missing_exercises"`
}

// NameSet is an unordered set of exercise names. Its methods return new sets
// and never modify the receiver.
type NameSet map[string]struct{}

// NewNameSet builds a set from names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// With returns a copy of s including name.
func (s NameSet) With(name string) NameSet {
	out := make(NameSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[name] = struct{}{}
	return out
}

// Without returns a copy of s excluding name.
func (s NameSet) Without(name string) NameSet {
	out := make(NameSet, len(s))
	for k := range s {
		if k != name {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s NameSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Scope selects the events relevant to one query. An empty Exercise matches
// events of any exercise and workout-level events.
type Scope struct {
	Exercise string
	Week     int
	Workout  int
}

// ExerciseScope selects one exercise in one workout slot.
func ExerciseScope(exercise string, week, workout int) Scope {
	return Scope{Exercise: exercise, Week: week, Workout: workout}
}

// WorkoutScope selects every event of one workout slot.
func WorkoutScope(week, workout int) Scope {
	return Scope{Week: week, Workout: workout}
}

// Matches reports whether e falls inside the scope.
func (s Scope) Matches(e event.Event) bool {
	week, workout := event.Indices(e)
	if week != s.Week || workout != s.Workout {
		return false
	}
	if s.Exercise == "" {
		return true
	}
	name, ok := event.ExerciseOf(e)
	return ok && name == s.Exercise
}

// Filter returns the events inside scope, in log order.
func Filter(events []event.Event, scope Scope) []event.Event {
	var out []event.Event
	for _, e := range events {
		if scope.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// FoldExercise applies one event to exercise state.
func FoldExercise(s ExerciseState, e event.Event) ExerciseState {
	switch e := e.(type) {
	case event.ExerciseStarted:
		s.Started = true
	case event.SetLogged:
		s.Sets = append(slices.Clip(s.Sets), e)
	case event.ExerciseCompleted:
		s.Completed = true
	case event.WorkoutCompleted:
	default:
		panic(fmt.Sprintf("state: unhandled event %T", e))
	}
	return s
}

// FoldWorkout applies one event to workout state.
func FoldWorkout(s WorkoutState, e event.Event) WorkoutState {
	switch e := e.(type) {
	case event.ExerciseCompleted:
		s.CompletedExercises = s.CompletedExercises.With(e.Exercise)
		s.MissingExercises = s.MissingExercises.Without(e.Exercise)
	case event.WorkoutCompleted:
		s.Completed = true
	case event.ExerciseStarted, event.SetLogged:
	default:
		panic(fmt.Sprintf("state: unhandled event %T", e))
	}
	return s
}

// Exercise derives the state of exercise in slot (week, workout).
func Exercise(events []event.Event, exercise string, week, workout int) ExerciseState {
	s := ExerciseState{Exercise: exercise, WeekIndex: week, WorkoutIndex: workout}
	for _, e := range Filter(events, ExerciseScope(exercise, week, workout)) {
		s = FoldExercise(s, e)
	}
	return s
}

// Workout derives the state of slot (week, workout), seeded with the names of
// the exercises the plan requires there.
func Workout(events []event.Event, required []string, week, workout int) WorkoutState {
	s := WorkoutState{
		WeekIndex:          week,
		WorkoutIndex:       workout,
		CompletedExercises: NameSet{},
		MissingExercises:   NewNameSet(required...),
	}
	for _, e := range Filter(events, WorkoutScope(week, workout)) {
		s = FoldWorkout(s, e)
	}
	return s
}
