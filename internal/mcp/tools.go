package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the days before now.
func defaultTimeRange(startStr, endStr string, now time.Time, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(models.DateLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal records for one exercise: heaviest weight per rep count, most reps per weight, best set volume, estimated 1RM and fastest time."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive, e.g. 'bench press')")),
)

var toolListRecordExercises = mcp.NewTool("list_record_exercises",
	mcp.WithDescription("List every exercise that has at least one personal record, with its record count."),
)

var toolGetRecentRecords = mcp.NewTool("get_recent_records",
	mcp.WithDescription("Personal records set recently, most recent first."),
	mcp.WithNumber("days", mcp.Description("Look-back window in days. Defaults to 30."), mcp.Min(1)),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Logged workouts with every exercise and set (reps, weight, time)."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'squat')")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Training totals: workouts, sets, volume, workouts this week and the weekly streak."),
)

// recordView is a stored record plus its display strings.
type recordView struct {
	models.PersonalRecord
	Label string `json:"label"`
	Value string `json:"value"`
}

type exerciseSummary struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
}

type recentView struct {
	Exercise string `json:"exercise"`
	recordView
}

func viewOf(r models.PersonalRecord) recordView {
	return recordView{PersonalRecord: r, Label: records.Describe(r), Value: records.Format(r)}
}

// --- Tool handlers ---

func (h *handlers) getPersonalRecords(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil || strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	ex := h.recs.Records(name)
	views := make([]recordView, 0, len(ex.Records))
	for _, r := range ex.Records {
		views = append(views, viewOf(r))
	}

	return jsonResult(map[string]any{"exercise": ex.Name, "records": views})
}

func (h *handlers) listRecordExercises(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises := h.recs.Exercises()
	out := make([]exerciseSummary, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, exerciseSummary{Name: ex.Name, Records: len(ex.Records)})
	}
	return jsonResult(out)
}

func (h *handlers) getRecentRecords(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 30)
	if days < 1 {
		return mcp.NewToolResultError("days must be at least 1"), nil
	}

	recent := h.recs.Recent(days, h.now())
	out := make([]recentView, 0, len(recent))
	for _, r := range recent {
		out = append(out, recentView{Exercise: r.Exercise, recordView: viewOf(r.Record)})
	}
	return jsonResult(out)
}

func (h *handlers) getWorkoutHistory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), h.now(), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts := h.hist.HistoryBetween(start.Format(models.DateLayout), end.Format(models.DateLayout))
	filter := strings.ToLower(strings.TrimSpace(req.GetString("exercise", "")))

	out := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if filter != "" {
			var kept []models.WorkoutExercise
			for _, ex := range w.Exercises {
				if strings.Contains(strings.ToLower(ex.Name), filter) {
					kept = append(kept, ex)
				}
			}
			if len(kept) == 0 {
				continue
			}
			w.Exercises = kept
		}
		out = append(out, w)
	}

	h.log.Debug("mcp get_workout_history", "workouts", len(out), "filter", filter)
	return jsonResult(out)
}

func (h *handlers) getTrainingStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.hist.Stats())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
