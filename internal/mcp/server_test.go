package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/kvstore"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/mark3labs/mcp-go/mcp"
)

var testNow = time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := kvstore.NewMemory()
	clock := func() time.Time { return testNow }
	tr := tracker.New(kv, log, tracker.WithClock(clock))
	store := records.NewStore(kv, log)
	det := records.NewDetector(store, log)

	for _, w := range []struct {
		date string
		ex   string
		kg   models.Num
	}{
		{"2024-04-01", "Bench Press", 90},
		{"2024-06-01", "Bench Press", 100},
		{"2024-06-10", "Back Squat", 140},
	} {
		saved, err := tr.SaveWorkout(w.date, []models.WorkoutExercise{
			{Name: w.ex, Sets: []models.Set{{Reps: 5, Weight: w.kg, Completed: true}}},
		})
		if err != nil {
			t.Fatalf("SaveWorkout: %v", err)
		}
		det.CheckWorkout(saved)
	}
	return newHandlers(store, tr, log, WithClock(clock))
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool error: %v", err)
	}
	if res.IsError || out == nil {
		return res
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	if err := json.Unmarshal([]byte(text.Text), out); err != nil {
		t.Fatalf("decoding %q: %v", text.Text, err)
	}
	return res
}

func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "", testNow, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.Equal(testNow) || !start.Equal(testNow.AddDate(0, 0, -7)) {
		t.Errorf("range = %v..%v", start, end)
	}

	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31", testNow, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Format(models.DateLayout) != "2024-01-01" || end.Format(models.DateLayout) != "2024-01-31" {
		t.Errorf("range = %v..%v", start, end)
	}

	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "", testNow, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = defaultTimeRange("not-a-date", "", testNow, 7); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestGetPersonalRecords(t *testing.T) {
	h := newTestHandlers(t)

	var got struct {
		Exercise string       `json:"exercise"`
		Records  []recordView `json:"records"`
	}
	callTool(t, h.getPersonalRecords, map[string]any{"exercise": "BENCH PRESS"}, &got)
	if got.Exercise != "Bench Press" {
		t.Errorf("exercise = %q", got.Exercise)
	}
	var found bool
	for _, r := range got.Records {
		if r.Type == models.RecordMaxWeightReps {
			found = true
			if r.Weight != 100 || r.Value != "100 kg × 5" {
				t.Errorf("max_weight_reps = %v (%q), want 100 kg × 5", r.Weight, r.Value)
			}
		}
	}
	if !found {
		t.Error("missing max_weight_reps record")
	}

	res := callTool(t, h.getPersonalRecords, map[string]any{}, nil)
	if !res.IsError {
		t.Error("expected error result without exercise")
	}
}

func TestListRecordExercises(t *testing.T) {
	h := newTestHandlers(t)
	var got []exerciseSummary
	callTool(t, h.listRecordExercises, nil, &got)
	if len(got) != 2 || got[0].Name != "Back Squat" || got[1].Name != "Bench Press" {
		t.Fatalf("exercises = %+v", got)
	}
	if got[0].Records == 0 {
		t.Error("Back Squat has no records")
	}
}

func TestGetRecentRecords(t *testing.T) {
	h := newTestHandlers(t)

	var got []recentView
	callTool(t, h.getRecentRecords, map[string]any{"days": 5}, &got)
	for _, r := range got {
		if r.Exercise != "Back Squat" {
			t.Errorf("unexpected exercise %q in 5-day window", r.Exercise)
		}
	}
	if len(got) == 0 {
		t.Fatal("no recent records")
	}

	res := callTool(t, h.getRecentRecords, map[string]any{"days": 0}, nil)
	if !res.IsError {
		t.Error("expected error result for days=0")
	}
}

func TestGetWorkoutHistory(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		name  string
		args  map[string]any
		dates []string
	}{
		{"default window", nil, []string{"2024-06-01", "2024-06-10"}},
		{"explicit range", map[string]any{"start": "2024-01-01", "end": "2024-05-01"}, []string{"2024-04-01"}},
		{"exercise filter", map[string]any{"start": "2024-01-01", "exercise": "squat"}, []string{"2024-06-10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []models.Workout
			callTool(t, h.getWorkoutHistory, tt.args, &got)
			if len(got) != len(tt.dates) {
				t.Fatalf("workouts = %d, want %d", len(got), len(tt.dates))
			}
			for i, w := range got {
				if w.Date != tt.dates[i] {
					t.Errorf("[%d] date = %q, want %q", i, w.Date, tt.dates[i])
				}
			}
		})
	}

	res := callTool(t, h.getWorkoutHistory, map[string]any{"start": "yesterday"}, nil)
	if !res.IsError {
		t.Error("expected error result for bad date")
	}
}

func TestGetTrainingStats(t *testing.T) {
	h := newTestHandlers(t)
	var got tracker.Stats
	callTool(t, h.getTrainingStats, nil, &got)
	if got.TotalWorkouts != 3 || got.TotalSets != 3 {
		t.Errorf("stats = %+v", got)
	}
	if got.LastWorkout != "2024-06-10" {
		t.Errorf("LastWorkout = %q", got.LastWorkout)
	}
}

func TestRecentWorkoutsResource(t *testing.T) {
	h := newTestHandlers(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "liftlog://recent_workouts"

	contents, err := h.recentWorkouts(context.Background(), req)
	if err != nil {
		t.Fatalf("recentWorkouts: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents)
	var got []models.Workout
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("workouts = %d, want 2", len(got))
	}
}
