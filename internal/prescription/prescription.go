// Package prescription computes the reps and weight recommended for the next
// occurrence of an exercise.
//
// Prescriptions always derive from the last completed prior occurrence. Sets
// and completions recorded in the workout slot currently in progress are
// ignored, so the numbers shown to the trainee do not move mid-workout.
package prescription

import (
	"fmt"
	"math"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/plan"
)

// DefaultStaticMultiplier is the load increase applied by the static strategy
// when none is configured.
const DefaultStaticMultiplier = 1.025

// Strategy names accepted by ByName.
const (
	StrategyFeedback = "feedback"
	StrategyStatic   = "static"
)

// Prescription is the recommendation for one upcoming set. Nil fields mean the
// plan leaves that value to the trainee.
type Prescription struct {
	PrescribedReps   *int     `json:"prescribed_reps"`
	PrescribedWeight *float64 `json:"prescribed_weight"`
}

// Strategy computes the prescriptions for one exercise from its baseline and
// the log. Implementations must ignore facts recorded at (week, workout).
type Strategy func(exercise string, baseline []Prescription, sets []event.SetLogged, completions []event.ExerciseCompleted, week, workout int) []Prescription

// ByName resolves a configured strategy name.
func ByName(name string, staticMultiplier float64) (Strategy, error) {
	switch name {
	case "", StrategyFeedback:
		return FeedbackBased, nil
	case StrategyStatic:
		if staticMultiplier <= 0 {
			staticMultiplier = DefaultStaticMultiplier
		}
		return Static(staticMultiplier), nil
	default:
		return nil, fmt.Errorf("unknown progression strategy %q", name)
	}
}

// FeedbackBased adjusts load and volume from the last completion's feedback.
//
// The weight multiplier is taken from the first matching rule: joint pain of 3
// or more (0.90), joint pain of 2 (0.95), workload 0 (1.10), workload 3 (0.98),
// pump of 2 or more with workload 2 (1.05), otherwise 1.025. Workload 0 adds a
// set and workload 3 drops one, never going below a single set. Reps are
// carried over unchanged.
func FeedbackBased(exercise string, baseline []Prescription, sets []event.SetLogged, completions []event.ExerciseCompleted, week, workout int) []Prescription {
	last, completion, ok := lastCompleted(exercise, sets, completions, week, workout)
	if !ok || len(last) == 0 {
		return baseline
	}

	jointPain := feedbackValue(completion.Feedback, "joint_pain", 0)
	pump := feedbackValue(completion.Feedback, "pump", 2)
	workload := feedbackValue(completion.Feedback, "workload", 2)

	multiplier := weightMultiplier(jointPain, pump, workload)
	count := max(1, len(last)+setDelta(workload))

	out := make([]Prescription, count)
	for i := range out {
		base := last[min(i, len(last)-1)]
		out[i] = Prescription{
			PrescribedReps:   ptr(base.Reps),
			PrescribedWeight: ptr(Round1(base.Weight * multiplier)),
		}
	}
	return out
}

// Static scales every set of the last completed occurrence by a fixed
// multiplier, reps included. Feedback is ignored.
func Static(multiplier float64) Strategy {
	return func(exercise string, baseline []Prescription, sets []event.SetLogged, completions []event.ExerciseCompleted, week, workout int) []Prescription {
		last, _, ok := lastCompleted(exercise, sets, completions, week, workout)
		if !ok || len(last) == 0 {
			return baseline
		}
		out := make([]Prescription, len(last))
		for i, s := range last {
			out[i] = Prescription{
				PrescribedReps:   ptr(int(float64(s.Reps)*multiplier + 0.5)),
				PrescribedWeight: ptr(Round1(s.Weight * multiplier)),
			}
		}
		return out
	}
}

// ForWorkout applies strategy to every exercise in baseline independently.
func ForWorkout(baseline map[string][]Prescription, sets []event.SetLogged, completions []event.ExerciseCompleted, week, workout int, strategy Strategy) map[string][]Prescription {
	if strategy == nil {
		strategy = FeedbackBased
	}
	out := make(map[string][]Prescription, len(baseline))
	for name, base := range baseline {
		out[name] = strategy(name, base, sets, completions, week, workout)
	}
	return out
}

// FromEvents splits a log into the two inputs a Strategy consumes, preserving
// log order.
func FromEvents(events []event.Event) ([]event.SetLogged, []event.ExerciseCompleted) {
	var sets []event.SetLogged
	var completions []event.ExerciseCompleted
	for _, e := range events {
		switch e := e.(type) {
		case event.SetLogged:
			sets = append(sets, e)
		case event.ExerciseCompleted:
			completions = append(completions, e)
		}
	}
	return sets, completions
}

// FromPlan converts a template's prescribed sets into a baseline.
func FromPlan(sets []plan.SetPrescription) []Prescription {
	out := make([]Prescription, len(sets))
	for i, s := range sets {
		out[i] = Prescription{PrescribedReps: s.PrescribedReps, PrescribedWeight: s.PrescribedWeight}
	}
	return out
}

// Baseline maps every exercise of a workout to its template prescriptions.
func Baseline(w plan.Workout) map[string][]Prescription {
	out := make(map[string][]Prescription, len(w.Exercises))
	for _, ex := range w.Exercises {
		out[ex.Name] = FromPlan(ex.Sets)
	}
	return out
}

// Round1 rounds x to one decimal place, halves up.
func Round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// lastCompleted finds the most recent completion of exercise outside the
// current slot and returns the sets logged under it.
func lastCompleted(exercise string, sets []event.SetLogged, completions []event.ExerciseCompleted, week, workout int) ([]event.SetLogged, event.ExerciseCompleted, bool) {
	var last event.ExerciseCompleted
	found := false
	for _, c := range completions {
		if c.Exercise != exercise || (c.WeekIndex == week && c.WorkoutIndex == workout) {
			continue
		}
		last, found = c, true
	}
	if !found {
		return nil, event.ExerciseCompleted{}, false
	}

	var out []event.SetLogged
	for _, s := range sets {
		if s.Exercise == exercise && s.WeekIndex == last.WeekIndex && s.WorkoutIndex == last.WorkoutIndex {
			out = append(out, s)
		}
	}
	return out, last, true
}

func weightMultiplier(jointPain, pump, workload int) float64 {
	switch {
	case jointPain >= 3:
		return 0.90
	case jointPain == 2:
		return 0.95
	case workload == 0:
		return 1.10
	case workload == 3:
		return 0.98
	case pump >= 2 && workload == 2:
		return 1.05
	default:
		return 1.025
	}
}

func setDelta(workload int) int {
	switch workload {
	case 0:
		return 1
	case 3:
		return -1
	default:
		return 0
	}
}

func feedbackValue(feedback map[string]int, key string, def int) int {
	if v, ok := feedback[key]; ok {
		return v
	}
	return def
}

func ptr[T any](v T) *T {
	return &v
}
