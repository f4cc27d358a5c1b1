package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/command"
	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/tracker"
)

// HTTPClient implements DataSource by calling the IronLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the log lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey is
// sent on command requests when non-empty.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// commandReply mirrors the body of the command endpoints.
type commandReply struct {
	Success    bool              `json:"success"`
	Events     []json.RawMessage `json:"events"`
	Error      string            `json:"error"`
	Code       string            `json:"code"`
	Suggestion string            `json:"suggestion"`
	Missing    []string          `json:"missing"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	return body, nil
}

// command posts a command and turns a 422 reply back into a rejection, so
// callers see the same errors as with a local service.
func (c *HTTPClient) command(ctx context.Context, path string, payload any) ([]event.Event, error) {
	status, body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var reply commandReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	switch {
	case status == http.StatusUnprocessableEntity && reply.Code != "":
		return nil, &command.Rejection{
			Code:       reply.Code,
			Message:    reply.Error,
			Suggestion: reply.Suggestion,
			Missing:    reply.Missing,
		}
	case status != http.StatusOK:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, reply.Error)
	}

	events := make([]event.Event, 0, len(reply.Events))
	for i, raw := range reply.Events {
		e, err := event.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("httpclient: decode event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func (c *HTTPClient) LogSet(ctx context.Context, exercise string, reps int, weight float64) ([]event.Event, error) {
	return c.command(ctx, "/api/v1/sets", map[string]any{
		"exercise": exercise,
		"reps":     reps,
		"weight":   weight,
	})
}

func (c *HTTPClient) CompleteExercise(ctx context.Context, exercise string, fb tracker.Feedback) ([]event.Event, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	return c.command(ctx, "/api/v1/exercises/complete", map[string]any{
		"exercise":   exercise,
		"joint_pain": fb.JointPain,
		"pump":       fb.Pump,
		"workload":   fb.Workload,
	})
}

func (c *HTTPClient) CompleteWorkout(ctx context.Context) ([]event.Event, error) {
	return c.command(ctx, "/api/v1/workouts/complete", nil)
}

func (c *HTTPClient) CurrentWorkout(ctx context.Context) (tracker.WorkoutView, error) {
	body, err := c.get(ctx, "/api/v1/current-workout")
	if err != nil {
		return tracker.WorkoutView{}, err
	}

	var view tracker.WorkoutView
	if err := json.Unmarshal(body, &view); err != nil {
		return tracker.WorkoutView{}, fmt.Errorf("httpclient: decode current workout: %w", err)
	}
	return view, nil
}

func (c *HTTPClient) History(ctx context.Context) ([]event.Event, error) {
	body, err := c.get(ctx, "/api/v1/history")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	events, err := event.UnmarshalList(resp.Events)
	if err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return events, nil
}
