package tracker

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// StartProgram begins programID at week 1, day 1, replacing any active program.
func (t *Tracker) StartProgram(programID string) (models.ActiveProgram, error) {
	if programID == "" {
		return models.ActiveProgram{}, fmt.Errorf("program id is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p := &models.ActiveProgram{
		ProgramID:     programID,
		CurrentWeek:   1,
		CurrentDay:    1,
		StartedAt:     models.FormatTimestamp(t.now()),
		CompletedDays: []string{},
	}
	t.st.ActiveProgram = p
	return *p, t.saveLocked()
}

// ActiveProgram returns a copy of the active program, or nil.
func (t *Tracker) ActiveProgram() *models.ActiveProgram {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneProgram(t.st.ActiveProgram)
}

// CompleteProgramDay marks week/day as done. A day is recorded at most once;
// the returned bool is false when it was already complete.
func (t *Tracker) CompleteProgramDay(week, day int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.st.ActiveProgram
	if p == nil {
		return false, ErrNoProgram
	}
	if p.IsDayCompleted(week, day) {
		return false, nil
	}
	p.CompletedDays = append(p.CompletedDays, models.DayKey(week, day))
	return true, t.saveLocked()
}

// SetProgramPosition moves the program cursor to week/day.
func (t *Tracker) SetProgramPosition(week, day int) error {
	if week < 1 || day < 1 {
		return fmt.Errorf("invalid program position w%dd%d", week, day)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.st.ActiveProgram
	if p == nil {
		return ErrNoProgram
	}
	p.CurrentWeek, p.CurrentDay = week, day
	return t.saveLocked()
}

// StopProgram clears the active program.
func (t *Tracker) StopProgram() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.ActiveProgram = nil
	return t.saveLocked()
}

func cloneProgram(p *models.ActiveProgram) *models.ActiveProgram {
	if p == nil {
		return nil
	}
	out := *p
	if p.CompletedDays != nil {
		out.CompletedDays = append([]string{}, p.CompletedDays...)
	}
	return &out
}
