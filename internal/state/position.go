package state

import (
	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/plan"
)

// Position is a (week, workout) slot in the plan.
type Position struct {
	Week    int `json:"week_index"`
	Workout int `json:"workout_index"`
}

// CurrentPosition resolves the slot in progress from WorkoutCompleted facts.
//
// The week is the highest completed week, advanced by one once all of its
// scheduled workouts are completed. The workout is one past the highest
// completed workout in that week. Both are clamped to the plan, so a finished
// plan keeps resolving to its final slot.
func CurrentPosition(events []event.Event, p plan.Plan) Position {
	if len(p.Weeks) == 0 {
		return Position{}
	}

	week := 0
	for _, e := range events {
		if wc, ok := e.(event.WorkoutCompleted); ok && wc.WeekIndex > week {
			week = wc.WeekIndex
		}
	}

	completed := 0
	for _, e := range events {
		if wc, ok := e.(event.WorkoutCompleted); ok && wc.WeekIndex == week {
			completed++
		}
	}
	if completed >= p.WorkoutsInWeek(week) {
		week++
	}
	week = clamp(week, 0, p.LastWeek())

	workout := 0
	highest, found := -1, false
	for _, e := range events {
		if wc, ok := e.(event.WorkoutCompleted); ok && wc.WeekIndex == week {
			if !found || wc.WorkoutIndex > highest {
				highest, found = wc.WorkoutIndex, true
			}
		}
	}
	if found {
		workout = clamp(highest+1, 0, max(0, p.WorkoutsInWeek(week)-1))
	}

	return Position{Week: week, Workout: workout}
}

// PlanFinished reports whether the final slot of the plan has been completed.
// CurrentPosition keeps returning that slot either way.
func PlanFinished(events []event.Event, p plan.Plan) bool {
	last := p.LastWeek()
	if last < 0 {
		return false
	}
	lastWorkout := p.WorkoutsInWeek(last) - 1
	for _, e := range events {
		if wc, ok := e.(event.WorkoutCompleted); ok && wc.WeekIndex == last && wc.WorkoutIndex == lastWorkout {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
