package mcp

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronLog training log. Call get_current_workout to see what is prescribed, log each performed set with log_set, "+
			"rate every exercise with complete_exercise and close the session with complete_workout. Rejections carry a code and, "+
			"for misspelled exercises, a suggestion."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolLogSet, Handler: h.logSet},
		server.ServerTool{Tool: toolCompleteExercise, Handler: h.completeExercise},
		server.ServerTool{Tool: toolCompleteWorkout, Handler: h.completeWorkout},
		server.ServerTool{Tool: toolGetCurrentWorkout, Handler: h.getCurrentWorkout},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentWorkout, Handler: h.currentWorkoutResource},
		server.ServerResource{Resource: resRecentEvents, Handler: h.recentEvents},
	)

	return s
}

// NewHTTPHandler serves the MCP server over the streamable HTTP transport,
// ready to be mounted on the API router.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithStateLess(true))
}

// ServeStdio runs the MCP server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentWorkout = mcp.NewResource(
	"ironlog://current_workout",
	"Current Workout",
	mcp.WithResourceDescription("The workout in progress with prescribed and logged sets per exercise"),
	mcp.WithMIMEType("application/json"),
)

var resRecentEvents = mcp.NewResource(
	"ironlog://recent_events",
	"Recent Events",
	mcp.WithResourceDescription("The last 50 events of the training log"),
	mcp.WithMIMEType("application/json"),
)
