package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/tracker"
)

// commandResponse is the body of every command endpoint.
type commandResponse struct {
	Success    bool              `json:"success"`
	Events     []json.RawMessage `json:"events,omitempty"`
	Error      string            `json:"error,omitempty"`
	Code       string            `json:"code,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Missing    []string          `json:"missing,omitempty"`
}

type templateExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
}

type templateWorkout struct {
	Index     int                `json:"index"`
	Exercises []templateExercise `json:"exercises"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleCurrentWorkout(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.CurrentWorkout(r.Context())
	if err != nil {
		s.log.Error("current workout error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	pos, err := s.svc.Position(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.History(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	wire, err := event.ToWire(events)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": wire})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.svc.Template(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	workouts := make([]templateWorkout, 0, len(tpl.Workouts))
	for i, wo := range tpl.Workouts {
		tw := templateWorkout{Index: i, Exercises: make([]templateExercise, 0, len(wo.Exercises))}
		for _, ex := range wo.Exercises {
			tw.Exercises = append(tw.Exercises, templateExercise{Name: ex.Name, Sets: len(ex.Sets)})
		}
		workouts = append(workouts, tw)
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": tpl.Name, "workouts": workouts})
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req logSetRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, commandResponse{Error: err.Error()})
		return
	}
	events, err := s.svc.LogSet(r.Context(), req.Exercise, *req.Reps, *req.Weight)
	s.writeCommandResult(w, r, "log_set", events, err)
}

func (s *Server) handleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	var req completeExerciseRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, commandResponse{Error: err.Error()})
		return
	}
	fb := tracker.Feedback{JointPain: *req.JointPain, Pump: *req.Pump, Workload: *req.Workload}
	events, err := s.svc.CompleteExercise(r.Context(), req.Exercise, fb)
	s.writeCommandResult(w, r, "complete_exercise", events, err)
}

func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.CompleteWorkout(r.Context())
	s.writeCommandResult(w, r, "complete_workout", events, err)
}

// writeCommandResult maps a command outcome to a response: 200 with the
// appended events, 422 for domain rejections, 400 for bad input and 500 for
// everything else.
func (s *Server) writeCommandResult(w http.ResponseWriter, r *http.Request, name string, events []event.Event, err error) {
	if rej, ok := tracker.AsRejection(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, commandResponse{
			Error:      rej.Message,
			Code:       rej.Code,
			Suggestion: rej.Suggestion,
			Missing:    rej.Missing,
		})
		return
	}
	if errors.Is(err, tracker.ErrInvalidFeedback) {
		writeJSON(w, http.StatusBadRequest, commandResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.log.Error("command error", "command", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, commandResponse{Error: err.Error()})
		return
	}

	wire, err := event.ToWire(events)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, commandResponse{Error: err.Error()})
		return
	}
	s.log.Info("command applied", "command", name, "user", userInfoFromContext(r).Login, "events", len(events))
	writeJSON(w, http.StatusOK, commandResponse{Success: true, Events: wire})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
