package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) recentWorkouts(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := h.now()
	start := end.AddDate(0, 0, -14)

	workouts := h.hist.HistoryBetween(start.Format(models.DateLayout), end.Format(models.DateLayout))
	if workouts == nil {
		workouts = []models.Workout{}
	}

	data, err := json.Marshal(workouts)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
