package tracker

import (
	"context"
	"fmt"

	"github.com/claude/ironlog/internal/prescription"
	"github.com/claude/ironlog/internal/state"
)

// WorkoutView is the workout in progress: what to do next and what has been
// done so far.
type WorkoutView struct {
	Template     string         `json:"template"`
	WeekIndex    int            `json:"week_index"`
	WorkoutIndex int            `json:"workout_index"`
	Weeks        int            `json:"weeks"`
	IsCompleted  bool           `json:"is_completed"`
	PlanFinished bool           `json:"plan_finished"`
	Exercises    []ExerciseView `json:"exercises"`
}

// ExerciseView is one exercise of the workout in progress.
type ExerciseView struct {
	Name           string                      `json:"name"`
	PrescribedSets []prescription.Prescription `json:"prescribed_sets"`
	LoggedSets     []LoggedSet                 `json:"logged_sets"`
	IsStarted      bool                        `json:"is_started"`
	IsCompleted    bool                        `json:"is_completed"`
}

// LoggedSet is a set already performed in the workout in progress.
type LoggedSet struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// CurrentWorkout builds the view of the workout in progress. Prescriptions
// come from completed prior occurrences only.
func (s *Service) CurrentWorkout(ctx context.Context) (WorkoutView, error) {
	events, tpl, err := s.snapshot(ctx)
	if err != nil {
		return WorkoutView{}, err
	}

	p := s.handler.Plan(tpl)
	pos := state.CurrentPosition(events, p)
	workout, ok := p.Workout(pos.Week, pos.Workout)
	if !ok {
		return WorkoutView{}, fmt.Errorf("no workout at week %d, workout %d", pos.Week, pos.Workout)
	}

	sets, completions := prescription.FromEvents(events)
	rx := prescription.ForWorkout(prescription.Baseline(workout), sets, completions, pos.Week, pos.Workout, s.strategy)
	ws := state.Workout(events, workout.ExerciseNames(), pos.Week, pos.Workout)

	view := WorkoutView{
		Template:     tpl.Name,
		WeekIndex:    pos.Week,
		WorkoutIndex: pos.Workout,
		Weeks:        len(p.Weeks),
		IsCompleted:  ws.Completed,
		PlanFinished: state.PlanFinished(events, p),
		Exercises:    make([]ExerciseView, 0, len(workout.Exercises)),
	}
	for _, ex := range workout.Exercises {
		es := state.Exercise(events, ex.Name, pos.Week, pos.Workout)
		logged := make([]LoggedSet, 0, len(es.Sets))
		for _, set := range es.Sets {
			logged = append(logged, LoggedSet{Reps: set.Reps, Weight: set.Weight})
		}
		prescribed := rx[ex.Name]
		if prescribed == nil {
			prescribed = []prescription.Prescription{}
		}
		view.Exercises = append(view.Exercises, ExerciseView{
			Name:           ex.Name,
			PrescribedSets: prescribed,
			LoggedSets:     logged,
			IsStarted:      es.Started,
			IsCompleted:    es.Completed,
		})
	}
	return view, nil
}
