package models

import (
	"fmt"
	"time"
)

// Set is a single logged set. Any of reps, weight or time may be blank.
type Set struct {
	Reps      Num    `json:"reps"`
	Weight    Num    `json:"weight"`
	Time      string `json:"time"`
	Completed bool   `json:"completed"`
}

// Meaningful reports whether the set carries any data. Blank sets are never
// written to history or checked for records.
func (s Set) Meaningful() bool {
	return !s.Reps.IsZero() || !s.Weight.IsZero() || s.Time != ""
}

// Volume returns weight*reps (0 when either is blank).
func (s Set) Volume() float64 {
	return s.Weight.Float() * s.Reps.Float()
}

// WorkoutExercise is one exercise inside a workout. Its identity for records
// and history is Name, compared case-insensitively.
type WorkoutExercise struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Equipment string `json:"equipment"`
	Sets      []Set  `json:"sets"`
}

// Workout is a history entry. History holds at most one entry per Date.
type Workout struct {
	Date      string            `json:"date"`
	Exercises []WorkoutExercise `json:"exercises"`
}

// SetCount returns the number of sets across all exercises.
func (w Workout) SetCount() int {
	n := 0
	for _, ex := range w.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// Volume returns the summed weight*reps across all sets.
func (w Workout) Volume() float64 {
	var v float64
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			v += s.Volume()
		}
	}
	return v
}

// ActiveProgram tracks progress through a multi-week training program.
type ActiveProgram struct {
	ProgramID     string   `json:"programId"`
	CurrentWeek   int      `json:"currentWeek"`
	CurrentDay    int      `json:"currentDay"`
	StartedAt     string   `json:"startedAt"`
	CompletedDays []string `json:"completedDays"`
}

// DayKey returns the completed-day key for a program position ("w2d3").
func DayKey(week, day int) string {
	return fmt.Sprintf("w%dd%d", week, day)
}

// IsDayCompleted reports whether the given program day was completed.
func (p *ActiveProgram) IsDayCompleted(week, day int) bool {
	key := DayKey(week, day)
	for _, k := range p.CompletedDays {
		if k == key {
			return true
		}
	}
	return false
}

// DateLayout is the calendar-date layout used for history entries.
const DateLayout = "2006-01-02"

// TimestampLayout matches the browser's Date.toISOString output.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t the way the browser app stores timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO timestamp. It accepts any RFC 3339 variant.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
