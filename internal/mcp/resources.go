package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/ironlog/internal/event"
	"github.com/mark3labs/mcp-go/mcp"
)

const recentEventsLimit = 50

func (h *handlers) currentWorkoutResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	view, err := h.ds.CurrentWorkout(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, view)
}

func (h *handlers) recentEvents(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	events, err := h.ds.History(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) > recentEventsLimit {
		events = events[len(events)-recentEventsLimit:]
	}
	wire, err := event.ToWire(events)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, wire)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
