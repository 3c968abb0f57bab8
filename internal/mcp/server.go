// Package mcp exposes personal records and workout history as MCP tools.
package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Option configures the MCP server.
type Option func(*handlers)

// WithClock overrides the time source used for default date ranges.
func WithClock(now func() time.Time) Option {
	return func(h *handlers) { h.now = now }
}

// New creates an MCP server with all tools and resources registered.
func New(recs RecordSource, hist HistorySource, version string, log *slog.Logger, opts ...Option) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracker. Query personal records, workout history and training statistics from the local log."),
	)

	h := newHandlers(recs, hist, log, opts...)

	s.AddTools(
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolListRecordExercises, Handler: h.listRecordExercises},
		server.ServerTool{Tool: toolGetRecentRecords, Handler: h.getRecentRecords},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// ServeStdio runs s on stdin/stdout until the input closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	recs RecordSource
	hist HistorySource
	log  *slog.Logger
	now  func() time.Time
}

func newHandlers(recs RecordSource, hist HistorySource, log *slog.Logger, opts ...Option) *handlers {
	h := &handlers{recs: recs, hist: hist, log: log, now: time.Now}
	for _, o := range opts {
		o(h)
	}
	return h
}

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
