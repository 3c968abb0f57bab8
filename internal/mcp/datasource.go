package mcp

import (
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/tracker"
)

// RecordSource is the read side of the personal record store.
type RecordSource interface {
	Records(name string) models.ExerciseRecords
	Exercises() []models.ExerciseRecords
	Recent(days int, now time.Time) []records.RecentRecord
}

// HistorySource is the read side of the workout tracker.
type HistorySource interface {
	HistoryBetween(start, end string) []models.Workout
	Stats() tracker.Stats
}

var (
	_ RecordSource  = (*records.Store)(nil)
	_ HistorySource = (*tracker.Tracker)(nil)
)
