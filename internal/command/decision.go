package command

import "github.com/claude/ironlog/internal/event"

// Rejection codes. Callers branch on the code; the message is for humans.
const (
	CodeUnknownExercise         = "UNKNOWN_EXERCISE"
	CodeInvalidSet              = "INVALID_SET"
	CodeExerciseAlreadyComplete = "EXERCISE_ALREADY_COMPLETED"
	CodeExerciseNotInWorkout    = "EXERCISE_NOT_IN_WORKOUT"
	CodeInsufficientSets        = "INSUFFICIENT_SETS"
	CodeWorkoutNotFound         = "WORKOUT_NOT_FOUND"
	CodeWorkoutIncomplete       = "WORKOUT_INCOMPLETE"
	CodeWorkoutAlreadyComplete  = "WORKOUT_ALREADY_COMPLETED"
)

// Decision is the pure outcome of handling a command: either the events to
// append, in order, or a rejection.
type Decision struct {
	Events    []event.Event
	Rejection *Rejection
}

// Rejection captures why a command was declined.
type Rejection struct {
	Code       string   `json:"code"`
	Message    string   `json:"error"`
	Suggestion string   `json:"suggestion,omitempty"`
	Missing    []string `json:"missing,omitempty"`
}

// Error implements error so rejections can travel through service layers.
func (r *Rejection) Error() string {
	return r.Message
}

// Accept returns a decision that emits the provided events.
func Accept(events ...event.Event) Decision {
	return Decision{Events: append([]event.Event(nil), events...)}
}

// Reject returns a decision that carries the rejection.
func Reject(r Rejection) Decision {
	return Decision{Rejection: &r}
}

// Accepted reports whether the command produced events.
func (d Decision) Accepted() bool {
	return d.Rejection == nil
}

// Err returns the rejection as an error, or nil when accepted.
func (d Decision) Err() error {
	if d.Rejection == nil {
		return nil
	}
	return d.Rejection
}
