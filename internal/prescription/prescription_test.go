package prescription

import (
	"testing"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rx(reps int, weight float64) Prescription {
	return Prescription{PrescribedReps: &reps, PrescribedWeight: &weight}
}

func set(exercise string, reps int, weight float64, week, workout int) event.SetLogged {
	return event.SetLogged{Exercise: exercise, Reps: reps, Weight: weight, WeekIndex: week, WorkoutIndex: workout}
}

func done(exercise string, week, workout int, feedback map[string]int) event.ExerciseCompleted {
	return event.ExerciseCompleted{Exercise: exercise, WeekIndex: week, WorkoutIndex: workout, Feedback: feedback}
}

// requireSets asserts every prescription carries the given reps and weight.
func requireSets(t *testing.T, got []Prescription, n, reps int, weight float64) {
	t.Helper()
	require.Len(t, got, n)
	for i, p := range got {
		require.NotNil(t, p.PrescribedReps, "set %d reps", i)
		require.NotNil(t, p.PrescribedWeight, "set %d weight", i)
		assert.Equal(t, reps, *p.PrescribedReps, "set %d reps", i)
		assert.InDelta(t, weight, *p.PrescribedWeight, 1e-9, "set %d weight", i)
	}
}

// TestFeedbackBasedStandardProgression: good pump with a hard workload adds 5%.
func TestFeedbackBasedStandardProgression(t *testing.T) {
	baseline := []Prescription{rx(10, 100)}
	sets := []event.SetLogged{set("Squat", 10, 100, 0, 0)}
	completions := []event.ExerciseCompleted{done("Squat", 0, 0, map[string]int{"joint_pain": 0, "pump": 2, "workload": 2})}

	got := FeedbackBased("Squat", baseline, sets, completions, 0, 1)
	requireSets(t, got, 1, 10, 105.0)
}

// TestFeedbackBasedTooEasy: workload 0 adds a set and 10%.
func TestFeedbackBasedTooEasy(t *testing.T) {
	baseline := []Prescription{rx(10, 100)}
	sets := []event.SetLogged{set("Squat", 10, 100, 0, 0)}
	completions := []event.ExerciseCompleted{done("Squat", 0, 0, map[string]int{"joint_pain": 0, "pump": 2, "workload": 0})}

	got := FeedbackBased("Squat", baseline, sets, completions, 0, 1)
	requireSets(t, got, 2, 10, 110.0)
}

// TestFeedbackBasedTooHard: workload 3 drops a set and 2%.
func TestFeedbackBasedTooHard(t *testing.T) {
	baseline := []Prescription{rx(10, 100)}
	sets := []event.SetLogged{
		set("Squat", 10, 100, 0, 0),
		set("Squat", 10, 100, 0, 0),
		set("Squat", 10, 100, 0, 0),
	}
	completions := []event.ExerciseCompleted{done("Squat", 0, 0, map[string]int{"joint_pain": 0, "pump": 2, "workload": 3})}

	got := FeedbackBased("Squat", baseline, sets, completions, 0, 1)
	requireSets(t, got, 2, 10, 98.0)
}

// TestFeedbackBasedMultiplierRules verifies the first matching rule picks the multiplier
// and set delta, with missing ratings taking their defaults.
func TestFeedbackBasedMultiplierRules(t *testing.T) {
	tests := []struct {
		name     string
		feedback map[string]int
		weight   float64
		count    int
	}{
		{"high joint pain wins over easy workload", map[string]int{"joint_pain": 3, "workload": 0}, 90, 2},
		{"medium joint pain", map[string]int{"joint_pain": 2, "pump": 3, "workload": 2}, 95, 1},
		{"low pump pushed", map[string]int{"pump": 1, "workload": 2}, 102.5, 1},
		{"pretty good workload", map[string]int{"pump": 2, "workload": 1}, 102.5, 1},
		{"defaults", map[string]int{}, 105, 1},
		{"nil feedback", nil, 105, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets := []event.SetLogged{set("Row", 8, 100, 0, 0)}
			completions := []event.ExerciseCompleted{done("Row", 0, 0, tt.feedback)}
			got := FeedbackBased("Row", nil, sets, completions, 1, 0)
			requireSets(t, got, tt.count, 8, tt.weight)
		})
	}
}

// TestFeedbackBasedExtraSetCopiesLast verifies added sets repeat the last
// logged set and existing sets keep their own values.
func TestFeedbackBasedExtraSetCopiesLast(t *testing.T) {
	sets := []event.SetLogged{set("Bench", 8, 60, 0, 0), set("Bench", 6, 70, 0, 0)}
	completions := []event.ExerciseCompleted{done("Bench", 0, 0, map[string]int{"workload": 0})}

	got := FeedbackBased("Bench", nil, sets, completions, 0, 1)
	require.Len(t, got, 3)
	assert.Equal(t, 8, *got[0].PrescribedReps)
	assert.InDelta(t, 66.0, *got[0].PrescribedWeight, 1e-9)
	assert.Equal(t, 6, *got[1].PrescribedReps)
	assert.InDelta(t, 77.0, *got[1].PrescribedWeight, 1e-9)
	assert.Equal(t, got[1], got[2])
}

// TestFeedbackBasedNeverBelowOneSet verifies a too-hard rating on a single set keeps one
// set rather than dropping to zero.
func TestFeedbackBasedNeverBelowOneSet(t *testing.T) {
	sets := []event.SetLogged{set("Dip", 12, 20, 0, 0)}
	completions := []event.ExerciseCompleted{done("Dip", 0, 0, map[string]int{"workload": 3})}

	got := FeedbackBased("Dip", nil, sets, completions, 0, 1)
	requireSets(t, got, 1, 12, 19.6)
}

// TestColdStartReturnsBaseline verifies both strategies pass the baseline
// through untouched when nothing has been completed yet.
func TestColdStartReturnsBaseline(t *testing.T) {
	reps := 5
	baseline := []Prescription{rx(5, 100), {PrescribedReps: &reps}}
	sets := []event.SetLogged{set("Squat", 5, 100, 0, 0)}

	for name, strategy := range map[string]Strategy{"feedback": FeedbackBased, "static": Static(1.1)} {
		t.Run(name, func(t *testing.T) {
			got := strategy("Squat", baseline, sets, nil, 0, 0)
			assert.Equal(t, baseline, got)
		})
	}
}

// TestCurrentScopeExcluded verifies facts logged in the slot in progress never
// change the prescription, even when they are the latest completion.
func TestCurrentScopeExcluded(t *testing.T) {
	baseline := []Prescription{rx(10, 100)}
	sets := []event.SetLogged{
		set("Squat", 10, 100, 0, 0),
		set("Squat", 10, 200, 1, 0),
		set("Squat", 10, 200, 1, 0),
	}
	prior := done("Squat", 0, 0, map[string]int{"pump": 2, "workload": 2})
	current := done("Squat", 1, 0, map[string]int{"workload": 0})

	withoutCurrent := FeedbackBased("Squat", baseline, sets, []event.ExerciseCompleted{prior}, 1, 0)
	withCurrent := FeedbackBased("Squat", baseline, sets, []event.ExerciseCompleted{prior, current}, 1, 0)
	assert.Equal(t, withoutCurrent, withCurrent)
	requireSets(t, withCurrent, 1, 10, 105.0)

	// Only a completion in the current slot is a cold start.
	got := FeedbackBased("Squat", baseline, sets, []event.ExerciseCompleted{current}, 1, 0)
	assert.Equal(t, baseline, got)
}

// TestLatestCompletionWins verifies only the most recent prior completion drives the
// prescription.
func TestLatestCompletionWins(t *testing.T) {
	sets := []event.SetLogged{set("Squat", 5, 100, 0, 0), set("Squat", 5, 120, 1, 0)}
	completions := []event.ExerciseCompleted{
		done("Squat", 0, 0, map[string]int{"workload": 2}),
		done("Squat", 1, 0, map[string]int{"joint_pain": 3}),
	}
	got := FeedbackBased("Squat", nil, sets, completions, 2, 0)
	requireSets(t, got, 1, 5, 108.0)
}

// TestCompletionWithoutSetsReturnsBaseline verifies a completion with no logged sets
// leaves the baseline unchanged.
func TestCompletionWithoutSetsReturnsBaseline(t *testing.T) {
	baseline := []Prescription{rx(3, 50)}
	completions := []event.ExerciseCompleted{done("Squat", 0, 0, nil)}
	assert.Equal(t, baseline, FeedbackBased("Squat", baseline, nil, completions, 0, 1))
}

// TestStatic verifies static progression scales reps and weight of the last
// completed occurrence and ignores feedback.
func TestStatic(t *testing.T) {
	sets := []event.SetLogged{set("Press", 10, 40, 0, 0), set("Press", 9, 40, 0, 0)}
	completions := []event.ExerciseCompleted{done("Press", 0, 0, map[string]int{"workload": 0})}

	got := Static(DefaultStaticMultiplier)("Press", nil, sets, completions, 0, 1)
	require.Len(t, got, 2)
	assert.Equal(t, 10, *got[0].PrescribedReps)
	assert.Equal(t, 9, *got[1].PrescribedReps)
	assert.InDelta(t, 41.0, *got[0].PrescribedWeight, 1e-9)

	got = Static(1.2)("Press", nil, sets, completions, 0, 1)
	assert.Equal(t, 12, *got[0].PrescribedReps)
	assert.Equal(t, 11, *got[1].PrescribedReps)
	assert.InDelta(t, 48.0, *got[1].PrescribedWeight, 1e-9)
}

// TestForWorkoutIsPerExercise verifies each exercise only sees its own history.
func TestForWorkoutIsPerExercise(t *testing.T) {
	baseline := map[string][]Prescription{
		"Squat": {rx(5, 100)},
		"Bench": {rx(8, 60)},
	}
	sets := []event.SetLogged{set("Squat", 5, 100, 0, 0)}
	completions := []event.ExerciseCompleted{done("Squat", 0, 0, map[string]int{"workload": 0})}

	got := ForWorkout(baseline, sets, completions, 1, 0, nil)
	require.Len(t, got, 2)
	requireSets(t, got["Squat"], 2, 5, 110)
	assert.Equal(t, baseline["Bench"], got["Bench"])
}

// TestFromEvents splits a mixed log into sets and completions.
func TestFromEvents(t *testing.T) {
	events := []event.Event{
		event.ExerciseStarted{Exercise: "Squat"},
		set("Squat", 5, 100, 0, 0),
		done("Squat", 0, 0, nil),
		event.WorkoutCompleted{},
		set("Squat", 5, 105, 0, 1),
	}
	sets, completions := FromEvents(events)
	require.Len(t, sets, 2)
	assert.Equal(t, 105.0, sets[1].Weight)
	require.Len(t, completions, 1)
}

// TestBaselineFromPlan verifies absent reps or weight stay absent in the baseline.
func TestBaselineFromPlan(t *testing.T) {
	reps, weight := 5, 100.0
	w := plan.Workout{Exercises: []plan.Exercise{
		{Name: "Squat", Sets: []plan.SetPrescription{{PrescribedReps: &reps, PrescribedWeight: &weight}, {}}},
		{Name: "Plank"},
	}}
	got := Baseline(w)
	require.Len(t, got["Squat"], 2)
	assert.Equal(t, 5, *got["Squat"][0].PrescribedReps)
	assert.Nil(t, got["Squat"][1].PrescribedWeight)
	assert.Empty(t, got["Plank"])
}

// TestRound1 verifies half-up rounding to one decimal.
func TestRound1(t *testing.T) {
	assert.Equal(t, 102.5, Round1(102.5))
	assert.Equal(t, 0.1, Round1(0.05))
	assert.Equal(t, 41.0, Round1(40*1.025))
	assert.Equal(t, 61.5, Round1(61.54))
}

// TestByName verifies strategy lookup by config name, with feedback as the
// default and unknown names rejected.
func TestByName(t *testing.T) {
	s, err := ByName("", 0)
	require.NoError(t, err)
	assert.NotNil(t, s)

	s, err = ByName(StrategyStatic, 0)
	require.NoError(t, err)
	sets := []event.SetLogged{set("Squat", 10, 100, 0, 0)}
	got := s("Squat", nil, sets, []event.ExerciseCompleted{done("Squat", 0, 0, nil)}, 0, 1)
	requireSets(t, got, 1, 10, 102.5)

	_, err = ByName("linear", 0)
	assert.Error(t, err)
}
