// Package plan holds the static training plan: a template of workouts that is
// expanded into a fixed number of weeks. Plans are built once from
// configuration and never change while the event log is replayed.
package plan

import (
	"fmt"
	"strings"
)

// DefaultWeeks is the mesocycle length used when none is configured.
const DefaultWeeks = 4

// SetPrescription is one prescribed set slot. Either field may be absent.
type SetPrescription struct {
	PrescribedReps   *int     `yaml:"prescribed_reps" json:"prescribed_reps"`
	PrescribedWeight *float64 `yaml:"prescribed_weight" json:"prescribed_weight"`
}

// Exercise is a named movement with its prescribed sets.
type Exercise struct {
	Name string            `yaml:"name" json:"name"`
	Sets []SetPrescription `yaml:"sets" json:"sets"`
}

// RequiredSets is the number of sets that must be logged before the exercise
// can be completed. An exercise without prescribed sets still needs one.
func (e Exercise) RequiredSets() int {
	return max(1, len(e.Sets))
}

// Workout is an ordered list of exercises at a fixed position in the week.
type Workout struct {
	Index     int        `yaml:"-" json:"index"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

// Exercise looks up an exercise of this workout by name.
func (w Workout) Exercise(name string) (Exercise, bool) {
	for _, ex := range w.Exercises {
		if ex.Name == name {
			return ex, true
		}
	}
	return Exercise{}, false
}

// ExerciseNames returns the workout's exercise names in plan order.
func (w Workout) ExerciseNames() []string {
	names := make([]string, 0, len(w.Exercises))
	for _, ex := range w.Exercises {
		names = append(names, ex.Name)
	}
	return names
}

// Template is the reusable definition a plan is built from.
type Template struct {
	Name     string    `yaml:"name" json:"name"`
	Workouts []Workout `yaml:"workouts" json:"workouts"`
}

// ExerciseNames returns every distinct exercise name in the template, in
// first-seen order.
func (t Template) ExerciseNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, w := range t.Workouts {
		for _, ex := range w.Exercises {
			if seen[ex.Name] {
				continue
			}
			seen[ex.Name] = true
			names = append(names, ex.Name)
		}
	}
	return names
}

// HasExercise reports whether name appears anywhere in the template.
func (t Template) HasExercise(name string) bool {
	for _, w := range t.Workouts {
		if _, ok := w.Exercise(name); ok {
			return true
		}
	}
	return false
}

// Validate rejects templates that cannot produce a usable plan.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name is required")
	}
	if len(t.Workouts) == 0 {
		return fmt.Errorf("template %q has no workouts", t.Name)
	}
	for i, w := range t.Workouts {
		if len(w.Exercises) == 0 {
			return fmt.Errorf("template %q: workout %d has no exercises", t.Name, i)
		}
		seen := make(map[string]bool, len(w.Exercises))
		for j, ex := range w.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("template %q: workout %d exercise %d has no name", t.Name, i, j)
			}
			if seen[ex.Name] {
				return fmt.Errorf("template %q: workout %d lists %q twice", t.Name, i, ex.Name)
			}
			seen[ex.Name] = true
		}
	}
	return nil
}

// Plan expands the template into weeks. Every week references the same
// workouts; workout indices are assigned from their position.
func (t Template) Plan(weeks int) Plan {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	workouts := make([]Workout, len(t.Workouts))
	for i, w := range t.Workouts {
		w.Index = i
		workouts[i] = w
	}
	p := Plan{TemplateName: t.Name, Weeks: make([]Week, weeks)}
	for i := range p.Weeks {
		p.Weeks[i] = Week{Index: i, Workouts: workouts}
	}
	return p
}

// Week is one repetition of the template's workouts.
type Week struct {
	Index    int
	Workouts []Workout
}

// Plan is the full weeks x workouts schedule.
type Plan struct {
	TemplateName string
	Weeks        []Week
}

// LastWeek is the index of the final week, or -1 for an empty plan.
func (p Plan) LastWeek() int {
	return len(p.Weeks) - 1
}

// WorkoutsInWeek is the number of workouts scheduled in week, or 0 when the
// week is outside the plan.
func (p Plan) WorkoutsInWeek(week int) int {
	if week < 0 || week >= len(p.Weeks) {
		return 0
	}
	return len(p.Weeks[week].Workouts)
}

// Workout returns the workout scheduled at (week, workout).
func (p Plan) Workout(week, workout int) (Workout, bool) {
	if week < 0 || week >= len(p.Weeks) {
		return Workout{}, false
	}
	ws := p.Weeks[week].Workouts
	if workout < 0 || workout >= len(ws) {
		return Workout{}, false
	}
	return ws[workout], true
}
