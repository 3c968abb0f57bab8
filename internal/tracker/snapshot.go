package tracker

import (
	"encoding/json"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// Snapshot builds the sync document for the full local dataset.
func (t *Tracker) Snapshot() *models.SyncDocument {
	t.mu.RLock()
	defer t.mu.RUnlock()

	doc := &models.SyncDocument{
		Version:   models.SyncDocumentVersion,
		Workouts:  make([]models.Workout, len(t.st.Workouts)),
		Exercises: cloneExercises(t.st.CurrentWorkout.Exercises),
		Progress:  append([]json.RawMessage{}, t.st.Progress...),
		Settings:  models.Settings{ActiveProgram: cloneProgram(t.st.ActiveProgram)},
		CreatedAt: t.st.CreatedAt,
		LastSync:  t.st.LastSync,
	}
	for i, w := range t.st.Workouts {
		doc.Workouts[i] = models.Workout{Date: w.Date, Exercises: cloneExercises(w.Exercises)}
	}
	doc.Normalize()
	return doc
}

// Apply overwrites local state with doc wholesale: history, in-progress
// exercises, active program and sync timestamps. No field-level merge.
func (t *Tracker) Apply(doc *models.SyncDocument) error {
	if doc == nil {
		return fmt.Errorf("apply: nil document")
	}
	c, err := doc.Clone()
	if err != nil {
		return fmt.Errorf("apply: copying document: %w", err)
	}
	c.Normalize()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.Workouts = c.Workouts
	t.st.CurrentWorkout = CurrentWorkout{Exercises: c.Exercises}
	t.st.ActiveProgram = c.Settings.ActiveProgram
	t.st.Progress = c.Progress
	t.st.CreatedAt = c.CreatedAt
	t.st.LastSync = c.LastSync
	return t.saveLocked()
}

// MarkSynced records the lastSync stamp of a successful push.
func (t *Tracker) MarkSynced(lastSync string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.LastSync = lastSync
	return t.saveLocked()
}

// LastSync returns the stored lastSync stamp ("" when never synced).
func (t *Tracker) LastSync() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.st.LastSync
}
