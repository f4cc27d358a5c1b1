package mcp

import (
	"context"
	"errors"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/tracker"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolLogSet = mcp.NewTool("log_set",
	mcp.WithDescription("Record one performed set of an exercise in the current workout. The first set of an exercise also marks it started."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name exactly as in the template (e.g. 'Bench Press')")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions performed"), mcp.Min(1)),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Load used"), mcp.Min(0)),
)

var toolCompleteExercise = mcp.NewTool("complete_exercise",
	mcp.WithDescription("Close an exercise of the current workout and rate it. Requires at least as many logged sets as prescribed. Ratings drive the next prescription."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithNumber("joint_pain", mcp.Required(), mcp.Description("0 none, 3 severe"), mcp.Min(0), mcp.Max(3)),
	mcp.WithNumber("pump", mcp.Required(), mcp.Description("0 none, 3 great"), mcp.Min(0), mcp.Max(3)),
	mcp.WithNumber("workload", mcp.Required(), mcp.Description("0 too easy, 2 about right, 3 too hard"), mcp.Min(0), mcp.Max(3)),
)

var toolCompleteWorkout = mcp.NewTool("complete_workout",
	mcp.WithDescription("Close the current workout once every exercise is completed. Advances to the next workout in the plan."),
)

var toolGetCurrentWorkout = mcp.NewTool("get_current_workout",
	mcp.WithDescription("The workout in progress: week and workout index, prescribed sets (reps and weight) and sets logged so far for each exercise."),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Events of the training log in the order they were recorded, newest last."),
	mcp.WithString("exercise", mcp.Description("Only events for this exercise (exact name)")),
	mcp.WithNumber("limit", mcp.Description("Return only the most recent N events. Defaults to all."), mcp.Min(0)),
)

// --- Tool handlers ---

func (h *handlers) logSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}

	events, err := h.ds.LogSet(ctx, exercise, reps, weight)
	return h.commandResult("log_set", events, err)
}

func (h *handlers) completeExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	var fb tracker.Feedback
	for _, f := range []struct {
		name string
		dst  *int
	}{{"joint_pain", &fb.JointPain}, {"pump", &fb.Pump}, {"workload", &fb.Workload}} {
		v, err := req.RequireInt(f.name)
		if err != nil {
			return mcp.NewToolResultError(f.name + " parameter is required"), nil
		}
		*f.dst = v
	}

	events, err := h.ds.CompleteExercise(ctx, exercise, fb)
	return h.commandResult("complete_exercise", events, err)
}

func (h *handlers) completeWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := h.ds.CompleteWorkout(ctx)
	return h.commandResult("complete_workout", events, err)
}

func (h *handlers) getCurrentWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := h.ds.CurrentWorkout(ctx)
	if err != nil {
		h.log.Error("mcp get_current_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(view)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := h.ds.History(ctx)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if name := req.GetString("exercise", ""); name != "" {
		filtered := events[:0:0]
		for _, e := range events {
			if ex, ok := event.ExerciseOf(e); ok && ex == name {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if limit := req.GetInt("limit", 0); limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	wire, err := event.ToWire(events)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	result, err := mcp.NewToolResultJSON(map[string]any{"events": wire})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// commandResult reports a command outcome. Rejections are tool errors whose
// body keeps the code, suggestion and missing exercises so the model can
// correct itself.
func (h *handlers) commandResult(name string, events []event.Event, err error) (*mcp.CallToolResult, error) {
	if rej, ok := tracker.AsRejection(err); ok {
		result, jerr := mcp.NewToolResultJSON(rej)
		if jerr != nil {
			return mcp.NewToolResultError(rej.Message), nil
		}
		result.IsError = true
		return result, nil
	}
	if errors.Is(err, tracker.ErrInvalidFeedback) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		h.log.Error("mcp "+name, "error", err)
		return mcp.NewToolResultError("command failed: " + err.Error()), nil
	}

	wire, err := event.ToWire(events)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	result, err := mcp.NewToolResultJSON(map[string]any{"success": true, "events": wire})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
