package models

import (
	"encoding/json"
	"time"
)

// SyncDocumentVersion is the schema version written into every document.
const SyncDocumentVersion = "1.0"

// Settings carries the synced application settings.
type Settings struct {
	ActiveProgram *ActiveProgram `json:"activeProgram"`
}

// SyncDocument is the full local dataset as exchanged with the remote
// document store. LastSync is the only conflict-resolution signal.
type SyncDocument struct {
	Version   string            `json:"version"`
	Workouts  []Workout         `json:"workouts"`
	Exercises []WorkoutExercise `json:"exercises"`
	Progress  []json.RawMessage `json:"progress"`
	Settings  Settings          `json:"settings"`
	CreatedAt string            `json:"createdAt"`
	LastSync  string            `json:"lastSync"`
}

// LastSyncTime returns LastSync as a time. A missing or unparseable value is
// the Unix epoch, so any stamped document is newer.
func (d *SyncDocument) LastSyncTime() time.Time {
	if d == nil || d.LastSync == "" {
		return time.Unix(0, 0).UTC()
	}
	t, err := ParseTimestamp(d.LastSync)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// Clone returns a deep copy made through a JSON round trip.
func (d *SyncDocument) Clone() (*SyncDocument, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out SyncDocument
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Normalize replaces nil slices with empty ones so that a document encodes
// identically however it was built.
func (d *SyncDocument) Normalize() {
	if d.Version == "" {
		d.Version = SyncDocumentVersion
	}
	if d.Workouts == nil {
		d.Workouts = []Workout{}
	}
	for i := range d.Workouts {
		d.Workouts[i].Exercises = normalizeExercises(d.Workouts[i].Exercises)
	}
	d.Exercises = normalizeExercises(d.Exercises)
	if d.Progress == nil {
		d.Progress = []json.RawMessage{}
	}
	if p := d.Settings.ActiveProgram; p != nil && p.CompletedDays == nil {
		p.CompletedDays = []string{}
	}
}

func normalizeExercises(in []WorkoutExercise) []WorkoutExercise {
	if in == nil {
		return []WorkoutExercise{}
	}
	for i := range in {
		if in[i].Sets == nil {
			in[i].Sets = []Set{}
		}
	}
	return in
}
