package records

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/kvstore"
	"github.com/claude/liftlog/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDetector(t *testing.T) (*Detector, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	log := testLogger()
	return NewDetector(NewStore(kv, log), log), kv
}

func set(reps, weight float64) models.Set {
	return models.Set{Reps: models.Num(reps), Weight: models.Num(weight), Completed: true}
}

func findAchievement(got []models.Achievement, typ models.RecordType) *models.Achievement {
	for i := range got {
		if got[i].Type == typ {
			return &got[i]
		}
	}
	return nil
}

// TestFirstSetBreaksEveryCategory verifies that the first weighted set for an
// exercise sets all four strength records.
func TestFirstSetBreaksEveryCategory(t *testing.T) {
	d, _ := newTestDetector(t)
	got := d.Check("Bench Press", set(5, 100), "2024-01-01")
	if len(got) != 4 {
		t.Fatalf("got %d achievements, want 4: %+v", len(got), got)
	}
	for _, typ := range []models.RecordType{
		models.RecordMaxWeightReps, models.RecordMaxRepsWeight, models.RecordMaxVolume, models.RecordMax1RM,
	} {
		a := findAchievement(got, typ)
		if a == nil {
			t.Errorf("missing %s", typ)
			continue
		}
		if a.Date != "2024-01-01" {
			t.Errorf("%s date = %q", typ, a.Date)
		}
	}
	if a := findAchievement(got, models.RecordMaxVolume); a.Volume != 500 || a.PreviousVolume != nil {
		t.Errorf("volume = %v prev = %v, want 500 and nil", a.Volume, a.PreviousVolume)
	}
}

// TestEqualSetIsNotARecord verifies ties never count as records.
func TestEqualSetIsNotARecord(t *testing.T) {
	d, _ := newTestDetector(t)
	d.Check("Squat", set(10, 100), "2024-01-01")
	got := d.Check("Squat", set(10, 100), "2024-01-02")
	if len(got) != 0 {
		t.Errorf("repeat set produced %d achievements, want 0: %+v", len(got), got)
	}
}

// TestMoreRepsAtSameWeight verifies the max_reps_weight record reports the
// previous rep count.
func TestMoreRepsAtSameWeight(t *testing.T) {
	d, _ := newTestDetector(t)
	d.Check("Deadlift", set(5, 100), "2024-01-01")
	got := d.Check("Deadlift", set(8, 100), "2024-01-08")

	a := findAchievement(got, models.RecordMaxRepsWeight)
	if a == nil {
		t.Fatalf("no max_reps_weight achievement in %+v", got)
	}
	if a.Reps != 8 {
		t.Errorf("reps = %v, want 8", a.Reps)
	}
	if a.PreviousReps == nil || *a.PreviousReps != 5 {
		t.Errorf("previousReps = %v, want 5", a.PreviousReps)
	}
	// 8 reps was never done before, so max_weight_reps is new (no previous).
	if w := findAchievement(got, models.RecordMaxWeightReps); w == nil || w.PreviousWeight != nil {
		t.Errorf("max_weight_reps = %+v, want new record without previous", w)
	}
}

// TestHeavierAtSameReps verifies max_weight_reps is keyed by exact reps.
func TestHeavierAtSameReps(t *testing.T) {
	d, _ := newTestDetector(t)
	d.Check("Row", set(10, 60), "2024-01-01")
	got := d.Check("Row", set(10, 62.5), "2024-01-02")
	a := findAchievement(got, models.RecordMaxWeightReps)
	if a == nil || a.PreviousWeight == nil || *a.PreviousWeight != 60 || a.Weight != 62.5 {
		t.Fatalf("max_weight_reps = %+v, want 62.5 over 60", a)
	}

	// Lighter set at a different rep count creates its own record.
	got = d.Check("Row", set(12, 50), "2024-01-03")
	if a := findAchievement(got, models.RecordMaxWeightReps); a == nil || a.PreviousWeight != nil {
		t.Errorf("12-rep record = %+v, want fresh record", a)
	}
	if findAchievement(got, models.RecordMaxVolume) != nil {
		t.Error("600 volume should not beat 625")
	}

	recs := d.Store().Records("row")
	n := 0
	for _, r := range recs.Records {
		if r.Type == models.RecordMaxWeightReps {
			n++
		}
	}
	if n != 2 {
		t.Errorf("max_weight_reps entries = %d, want 2", n)
	}
}

// TestFastestTime verifies lower times win regardless of format and that an
// unreadable time is skipped without affecting other categories.
func TestFastestTime(t *testing.T) {
	d, _ := newTestDetector(t)

	got := d.Check("Plank", models.Set{Time: "1:30"}, "2024-01-01")
	if len(got) != 1 || got[0].Type != models.RecordFastestTime {
		t.Fatalf("first time = %+v", got)
	}
	if got := d.Check("Plank", models.Set{Time: "95"}, "2024-01-02"); len(got) != 0 {
		t.Errorf("slower time produced %+v", got)
	}
	got = d.Check("Plank", models.Set{Time: "85"}, "2024-01-03")
	if len(got) != 1 || got[0].PreviousTime == nil || *got[0].PreviousTime != "1:30" {
		t.Fatalf("faster time = %+v, want previous 1:30", got)
	}

	if got := d.Check("Plank", models.Set{Time: "fast"}, "2024-01-04"); len(got) != 0 {
		t.Errorf("invalid time produced %+v", got)
	}
}

// TestBlankFieldsSkipCategories verifies weight-only or reps-only sets do not
// trigger the strength categories.
func TestBlankFieldsSkipCategories(t *testing.T) {
	d, kv := newTestDetector(t)
	if got := d.Check("Curl", models.Set{Weight: 20}, "2024-01-01"); len(got) != 0 {
		t.Errorf("weight-only set produced %+v", got)
	}
	if got := d.Check("Curl", models.Set{Reps: 12}, "2024-01-01"); len(got) != 0 {
		t.Errorf("reps-only set produced %+v", got)
	}
	if _, err := kv.Get(StorageKey); err == nil {
		t.Error("store written although no record was broken")
	}
}

// TestRecordsPersist verifies records survive a reload through the kv store
// and that lookups are case-insensitive.
func TestRecordsPersist(t *testing.T) {
	kv := kvstore.NewMemory()
	log := testLogger()
	d := NewDetector(NewStore(kv, log), log)
	d.Check("Overhead Press", set(5, 50), "2024-02-01")

	reloaded := NewStore(kv, log)
	recs := reloaded.Records("overhead press")
	if len(recs.Records) != 4 {
		t.Fatalf("reloaded records = %d, want 4", len(recs.Records))
	}
	if recs.Name != "Overhead Press" {
		t.Errorf("name = %q, want original casing", recs.Name)
	}

	empty := reloaded.Records("Unknown Lift")
	if empty.Records == nil || len(empty.Records) != 0 {
		t.Errorf("unknown exercise records = %#v, want empty list", empty.Records)
	}
}

// TestCorruptStoreLoadsEmpty verifies unparseable persisted JSON is discarded.
func TestCorruptStoreLoadsEmpty(t *testing.T) {
	kv := kvstore.NewMemory()
	if err := kv.Set(StorageKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	s := NewStore(kv, testLogger())
	if got := s.Exercises(); len(got) != 0 {
		t.Errorf("exercises = %+v, want none", got)
	}
}

// TestCheckWorkoutUsesCompletedSets verifies only completed non-blank sets are
// evaluated when a workout is finished.
func TestCheckWorkoutUsesCompletedSets(t *testing.T) {
	d, _ := newTestDetector(t)
	w := models.Workout{
		Date: "2024-03-01",
		Exercises: []models.WorkoutExercise{
			{Name: "Squat", Sets: []models.Set{
				set(5, 100),
				{Reps: 5, Weight: 140, Completed: false},
				{},
			}},
			{Name: "Lunge", Sets: []models.Set{{Reps: 10, Weight: 20}}},
		},
	}
	got := d.CheckWorkout(w)
	if len(got) != 1 || got[0].Exercise != "Squat" {
		t.Fatalf("CheckWorkout = %+v, want only Squat", got)
	}
	for _, a := range got[0].Achievements {
		if a.Weight == 140 {
			t.Errorf("incomplete set counted: %+v", a)
		}
	}
}

// TestBackfillAndRecent rebuilds from history out of order and checks the
// recent-records projection.
func TestBackfillAndRecent(t *testing.T) {
	d, _ := newTestDetector(t)
	d.Check("Stale", set(1, 1), "2020-01-01")

	history := []models.Workout{
		{Date: "2024-05-10", Exercises: []models.WorkoutExercise{{Name: "Bench", Sets: []models.Set{{Reps: 5, Weight: 90}}}}},
		{Date: "2024-05-01", Exercises: []models.WorkoutExercise{{Name: "Bench", Sets: []models.Set{{Reps: 5, Weight: 80}}}}},
		{Date: "2024-04-01", Exercises: []models.WorkoutExercise{{Name: "Squat", Sets: []models.Set{{Reps: 5, Weight: 120}}}}},
	}
	if n := d.Backfill(history); n != 2 {
		t.Fatalf("Backfill = %d exercises, want 2", n)
	}
	if recs := d.Store().Records("Stale"); len(recs.Records) != 0 {
		t.Error("backfill kept records not present in history")
	}

	bench := d.Store().Records("bench")
	for _, r := range bench.Records {
		if r.Type == models.RecordMaxWeightReps && r.Weight != 90 {
			t.Errorf("bench 5-rep max = %v, want 90", r.Weight)
		}
	}

	now := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)
	recent := d.Store().Recent(7, now)
	if len(recent) == 0 {
		t.Fatal("no recent records")
	}
	for _, r := range recent {
		if r.Record.Date != "2024-05-10" {
			t.Errorf("recent record dated %s, want only 2024-05-10", r.Record.Date)
		}
	}

	recent = d.Store().Recent(60, now)
	for i := 1; i < len(recent); i++ {
		if recent[i-1].Record.Date < recent[i].Record.Date {
			t.Fatalf("recent not sorted most-recent-first: %s before %s", recent[i-1].Record.Date, recent[i].Record.Date)
		}
	}

	ex := d.Store().Exercises()
	if len(ex) != 2 || ex[0].Name != "Bench" || ex[1].Name != "Squat" {
		t.Errorf("Exercises = %+v, want Bench, Squat", ex)
	}
}

// failingKV reads like a normal store but refuses every write.
type failingKV struct {
	*kvstore.Memory
}

func (failingKV) Set(string, []byte) error { return errors.New("disk full") }

// TestSaveFailureKeepsMemoryAuthoritative verifies that when persisting
// records fails, detection still reports achievements and later checks
// compare against the in-memory records.
func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	log := testLogger()
	store := NewStore(failingKV{kvstore.NewMemory()}, log)
	d := NewDetector(store, log)

	got := d.Check("Bench Press", set(5, 100), "2024-01-01")
	if len(got) != 4 {
		t.Fatalf("got %d achievements, want 4: %+v", len(got), got)
	}
	recs := store.Records("Bench Press")
	if len(recs.Records) != 4 {
		t.Fatalf("records = %+v, want 4", recs.Records)
	}

	got = d.Check("Bench Press", set(5, 110), "2024-01-08")
	a := findAchievement(got, models.RecordMaxWeightReps)
	if a == nil {
		t.Fatalf("missing %s in %+v", models.RecordMaxWeightReps, got)
	}
	if a.PreviousWeight == nil || *a.PreviousWeight != 100 {
		t.Errorf("previous weight = %v, want 100", a.PreviousWeight)
	}
	if n := len(store.Exercises()); n != 1 {
		t.Errorf("exercises = %d, want 1", n)
	}
}
