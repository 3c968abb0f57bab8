// Package ingest holds what the importers share.
package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int      `json:"sessions_received"`
	WorkoutsSaved    int      `json:"workouts_saved"`
	SetsImported     int      `json:"sets_imported"`
	WarmupsSkipped   int      `json:"warmups_skipped"`
	RecordExercises  int      `json:"record_exercises"`
	Dates            []string `json:"dates,omitempty"`
	Message          string   `json:"message,omitempty"`
}
