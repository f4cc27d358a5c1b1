package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/ironlog/internal/command"
	"github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/plan"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/tracker"
)

const testTemplate = `
name: full-body
workouts:
  - exercises:
      - name: Squat
        sets:
          - prescribed_reps: 5
            prescribed_weight: 100
      - name: Bench Press
        sets:
          - prescribed_reps: 8
            prescribed_weight: 60
  - exercises:
      - name: Deadlift
        sets:
          - prescribed_reps: 3
            prescribed_weight: 140
`

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	tpl, err := plan.ParseTemplate([]byte(testTemplate))
	if err != nil {
		t.Fatalf("parsing template: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := tracker.NewService(storage.NewMemory(), plan.Static{T: tpl}, command.New(), nil, log)
	return New(svc, apiKey, log)
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
}

// TestHealth verifies the liveness endpoint.
func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, ""), http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale client is configured.
func TestHandleMeDefault(t *testing.T) {
	rec := do(t, newTestServer(t, ""), http.MethodGet, "/api/v1/me", "")
	var info UserInfo
	decode(t, rec, &info)
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
}

// TestLogSetFlow verifies the first set returns two events, the second one,
// and the current workout reflects both.
func TestLogSetFlow(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/v1/sets", `{"exercise":"Squat","reps":5,"weight":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success bool             `json:"success"`
		Events  []map[string]any `json:"events"`
	}
	decode(t, rec, &resp)
	if !resp.Success || len(resp.Events) != 2 {
		t.Fatalf("response = %+v, want success with 2 events", resp)
	}
	if resp.Events[0]["type"] != "exercise_started" || resp.Events[1]["type"] != "set" {
		t.Errorf("event types = %v, %v", resp.Events[0]["type"], resp.Events[1]["type"])
	}

	rec = do(t, s, http.MethodPost, "/api/v1/sets", `{"exercise":"Squat","reps":5,"weight":102.5}`)
	decode(t, rec, &resp)
	if len(resp.Events) != 1 {
		t.Errorf("second set emitted %d events, want 1", len(resp.Events))
	}

	rec = do(t, s, http.MethodGet, "/api/v1/current-workout", "")
	var view tracker.WorkoutView
	decode(t, rec, &view)
	if len(view.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(view.Exercises))
	}
	if got := len(view.Exercises[0].LoggedSets); got != 2 {
		t.Errorf("logged sets = %d, want 2", got)
	}
	if !view.Exercises[0].IsStarted || view.Exercises[1].IsStarted {
		t.Errorf("started flags = %v, %v", view.Exercises[0].IsStarted, view.Exercises[1].IsStarted)
	}
}

// TestLogSetRejections verifies domain rejections come back as 422 with their
// code and bad payloads as 400.
func TestLogSetRejections(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"typo", `{"exercise":"Bench Pres","reps":8,"weight":60}`, http.StatusUnprocessableEntity, command.CodeUnknownExercise},
		{"zero reps", `{"exercise":"Squat","reps":0,"weight":100}`, http.StatusUnprocessableEntity, command.CodeInvalidSet},
		{"missing weight", `{"exercise":"Squat","reps":5}`, http.StatusBadRequest, ""},
		{"not json", `reps=5`, http.StatusBadRequest, ""},
		{"unknown field", `{"exercise":"Squat","reps":5,"weight":100,"rpe":8}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/sets", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			var resp commandResponse
			decode(t, rec, &resp)
			if resp.Success {
				t.Error("success = true")
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Error == "" {
				t.Error("error message empty")
			}
		})
	}
}

// TestSuggestionInResponse verifies the fuzzy suggestion reaches the client.
func TestSuggestionInResponse(t *testing.T) {
	rec := do(t, newTestServer(t, ""), http.MethodPost, "/api/v1/sets", `{"exercise":"Bench Pres","reps":8,"weight":60}`)
	var resp commandResponse
	decode(t, rec, &resp)
	if resp.Suggestion != "Bench Press" {
		t.Errorf("suggestion = %q, want %q", resp.Suggestion, "Bench Press")
	}
}

// TestCompleteWorkoutFlow drives a workout to completion over HTTP and checks
// the position advances.
func TestCompleteWorkoutFlow(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/v1/workouts/complete", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp commandResponse
	decode(t, rec, &resp)
	if resp.Code != command.CodeWorkoutIncomplete || len(resp.Missing) != 2 {
		t.Errorf("response = %+v", resp)
	}

	for _, ex := range []string{"Squat", "Bench Press"} {
		if rec := do(t, s, http.MethodPost, "/api/v1/sets", `{"exercise":"`+ex+`","reps":5,"weight":50}`); rec.Code != http.StatusOK {
			t.Fatalf("log %s: status %d body %s", ex, rec.Code, rec.Body)
		}
		body := `{"exercise":"` + ex + `","joint_pain":0,"pump":2,"workload":2}`
		if rec := do(t, s, http.MethodPost, "/api/v1/exercises/complete", body); rec.Code != http.StatusOK {
			t.Fatalf("complete %s: status %d body %s", ex, rec.Code, rec.Body)
		}
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/workouts/complete", ""); rec.Code != http.StatusOK {
		t.Fatalf("complete workout: status %d body %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/position", "")
	var pos struct {
		Week    int `json:"week_index"`
		Workout int `json:"workout_index"`
	}
	decode(t, rec, &pos)
	if pos.Week != 0 || pos.Workout != 1 {
		t.Errorf("position = %+v, want (0,1)", pos)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history", "")
	var history struct {
		Events []map[string]any `json:"events"`
	}
	decode(t, rec, &history)
	if len(history.Events) != 7 {
		t.Errorf("history has %d events, want 7", len(history.Events))
	}
}

// TestCompleteExerciseValidation verifies feedback outside 0-3 never reaches
// the service.
func TestCompleteExerciseValidation(t *testing.T) {
	s := newTestServer(t, "")
	for _, body := range []string{
		`{"exercise":"Squat","joint_pain":0,"pump":2,"workload":4}`,
		`{"exercise":"Squat","joint_pain":-1,"pump":2,"workload":2}`,
		`{"exercise":"Squat","pump":2,"workload":2}`,
		`{"joint_pain":0,"pump":2,"workload":2}`,
	} {
		rec := do(t, s, http.MethodPost, "/api/v1/exercises/complete", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

// TestCommandsRequireAPIKey verifies write endpoints are guarded when a key is
// configured while reads stay open.
func TestCommandsRequireAPIKey(t *testing.T) {
	s := newTestServer(t, "k3y")

	if rec := do(t, s, http.MethodPost, "/api/v1/sets", `{"exercise":"Squat","reps":5,"weight":100}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/sets", `{"exercise":"Squat","reps":5,"weight":100}`, "X-API-Key", "k3y"); rec.Code != http.StatusOK {
		t.Errorf("with key: status = %d, want 200", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/current-workout", ""); rec.Code != http.StatusOK {
		t.Errorf("read without key: status = %d, want 200", rec.Code)
	}
}

// TestMCPRequiresAPIKey verifies the MCP transport is guarded like the command
// endpoints, since its tools append events.
func TestMCPRequiresAPIKey(t *testing.T) {
	s := newTestServer(t, "k3y")
	s.MountMCP(mcp.NewHTTPHandler(mcp.New(s.svc, "test", s.log)))

	call := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"log_set","arguments":{"exercise":"Squat","reps":5,"weight":100}}}`
	accept := "application/json, text/event-stream"

	if rec := do(t, s, http.MethodPost, "/mcp", call, "Accept", accept); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/mcp", call, "Accept", accept, "X-API-Key", "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}
	events, err := s.svc.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("unauthenticated MCP call appended %d events", len(events))
	}

	rec := do(t, s, http.MethodPost, "/mcp", call, "Accept", accept, "X-API-Key", "k3y")
	if rec.Code != http.StatusOK {
		t.Fatalf("with key: status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	events, err = s.svc.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("events after log_set = %d, want 2", len(events))
	}
}

// TestTemplateEndpoint verifies the template summary lists set counts.
func TestTemplateEndpoint(t *testing.T) {
	rec := do(t, newTestServer(t, ""), http.MethodGet, "/api/v1/template", "")
	var body struct {
		Name     string            `json:"name"`
		Workouts []templateWorkout `json:"workouts"`
	}
	decode(t, rec, &body)
	if body.Name != "full-body" || len(body.Workouts) != 2 {
		t.Fatalf("template = %+v", body)
	}
	if body.Workouts[1].Index != 1 || body.Workouts[1].Exercises[0].Name != "Deadlift" || body.Workouts[1].Exercises[0].Sets != 1 {
		t.Errorf("workout 1 = %+v", body.Workouts[1])
	}
}

// TestMetricsEndpoint verifies command counters are exported.
func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	do(t, s, http.MethodPost, "/api/v1/workouts/complete", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ironlog_commands_total") {
		t.Error("ironlog_commands_total not exported")
	}
}
