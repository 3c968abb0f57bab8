package tracker

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Stats summarizes the workout history.
type Stats struct {
	TotalWorkouts    int     `json:"total_workouts"`
	TotalSets        int     `json:"total_sets"`
	TotalVolume      float64 `json:"total_volume"`
	WorkoutsThisWeek int     `json:"workouts_this_week"`
	WeekStreak       int     `json:"week_streak"`
	LastWorkout      string  `json:"last_workout,omitempty"`
}

// Stats computes totals and the weekly streak: the number of consecutive
// weeks (Monday start) with at least one workout, ending this week or last.
func (t *Tracker) Stats() Stats {
	history := t.History()
	now := t.now()

	var st Stats
	weeks := make(map[time.Time]bool)
	thisWeek := weekStart(now)

	for _, w := range history {
		d, err := time.Parse(models.DateLayout, w.Date)
		if err != nil {
			continue
		}
		st.TotalWorkouts++
		st.TotalSets += w.SetCount()
		st.TotalVolume += w.Volume()
		ws := weekStart(d)
		weeks[ws] = true
		if ws.Equal(thisWeek) {
			st.WorkoutsThisWeek++
		}
		if w.Date > st.LastWorkout {
			st.LastWorkout = w.Date
		}
	}

	cursor := thisWeek
	if !weeks[cursor] {
		cursor = cursor.AddDate(0, 0, -7)
	}
	for weeks[cursor] {
		st.WeekStreak++
		cursor = cursor.AddDate(0, 0, -7)
	}
	return st
}

// weekStart returns midnight UTC of the Monday on or before t.
func weekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
