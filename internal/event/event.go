// Package event defines the immutable facts appended to the training log.
//
// The four event types form a closed union: only the types declared here
// implement Event. Consumers dispatch with a type switch that lists every
// case; a default branch is unreachable for well-formed programs.
package event

import (
	"fmt"
	"time"
)

// Type is the wire discriminator stored in the "type" field.
type Type string

const (
	TypeSetLogged         Type = "set"
	TypeExerciseStarted   Type = "exercise_started"
	TypeExerciseCompleted Type = "exercise_completed"
	TypeWorkoutCompleted  Type = "workout_completed"
)

// Event is a fact in the append-only log.
type Event interface {
	Kind() Type
	sealed()
}

// SetLogged records one performed set.
type SetLogged struct {
	Exercise     string    `json:"exercise"`
	Reps         int       `json:"reps"`
	Weight       float64   `json:"weight"`
	Timestamp    time.Time `json:"timestamp"`
	WeekIndex    int       `json:"week_index"`
	WorkoutIndex int       `json:"workout_index"`
}

// ExerciseStarted marks the first set of an exercise in a workout slot.
type ExerciseStarted struct {
	Exercise     string         `json:"exercise"`
	WeekIndex    int            `json:"week_index"`
	WorkoutIndex int            `json:"workout_index"`
	Feedback     map[string]int `json:"feedback"`
}

// ExerciseCompleted closes an exercise and carries the trainee's feedback
// (joint_pain, pump, workload on a 0-3 scale).
type ExerciseCompleted struct {
	Exercise     string         `json:"exercise"`
	WeekIndex    int            `json:"week_index"`
	WorkoutIndex int            `json:"workout_index"`
	Feedback     map[string]int `json:"feedback"`
}

// WorkoutCompleted closes a (week, workout) slot.
type WorkoutCompleted struct {
	WeekIndex    int `json:"week_index"`
	WorkoutIndex int `json:"workout_index"`
}

func (SetLogged) Kind() Type         { return TypeSetLogged }
func (ExerciseStarted) Kind() Type   { return TypeExerciseStarted }
func (ExerciseCompleted) Kind() Type { return TypeExerciseCompleted }
func (WorkoutCompleted) Kind() Type  { return TypeWorkoutCompleted }

func (SetLogged) sealed()         {}
func (ExerciseStarted) sealed()   {}
func (ExerciseCompleted) sealed() {}
func (WorkoutCompleted) sealed()  {}

// Indices returns the (week, workout) slot an event belongs to.
func Indices(e Event) (week, workout int) {
	switch e := e.(type) {
	case SetLogged:
		return e.WeekIndex, e.WorkoutIndex
	case ExerciseStarted:
		return e.WeekIndex, e.WorkoutIndex
	case ExerciseCompleted:
		return e.WeekIndex, e.WorkoutIndex
	case WorkoutCompleted:
		return e.WeekIndex, e.WorkoutIndex
	default:
		panic(fmt.Sprintf("event: unknown event %T", e))
	}
}

// ExerciseOf returns the exercise name for exercise-level events. The second
// result is false for workout-level events.
func ExerciseOf(e Event) (string, bool) {
	switch e := e.(type) {
	case SetLogged:
		return e.Exercise, true
	case ExerciseStarted:
		return e.Exercise, true
	case ExerciseCompleted:
		return e.Exercise, true
	case WorkoutCompleted:
		return "", false
	default:
		panic(fmt.Sprintf("event: unknown event %T", e))
	}
}

// CloneFeedback copies a feedback map so the stored event does not alias
// caller-owned memory. A nil map becomes an empty one.
func CloneFeedback(feedback map[string]int) map[string]int {
	out := make(map[string]int, len(feedback))
	for k, v := range feedback {
		out[k] = v
	}
	return out
}

// Validate checks the field invariants of a single event.
func Validate(e Event) error {
	switch e := e.(type) {
	case SetLogged:
		if e.Exercise == "" {
			return fmt.Errorf("set: exercise is required")
		}
		if e.Reps <= 0 {
			return fmt.Errorf("set: reps must be positive, got %d", e.Reps)
		}
		if e.Weight <= 0 {
			return fmt.Errorf("set: weight must be positive, got %g", e.Weight)
		}
	case ExerciseStarted:
		if e.Exercise == "" {
			return fmt.Errorf("exercise_started: exercise is required")
		}
	case ExerciseCompleted:
		if e.Exercise == "" {
			return fmt.Errorf("exercise_completed: exercise is required")
		}
	case WorkoutCompleted:
	default:
		return fmt.Errorf("unknown event %T", e)
	}
	week, workout := Indices(e)
	if week < 0 || workout < 0 {
		return fmt.Errorf("%s: negative index (week %d, workout %d)", e.Kind(), week, workout)
	}
	return nil
}
