package records

import (
	"log/slog"
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// Detector decides which record categories a newly logged set breaks and
// updates the Store. It is owned by the application root.
type Detector struct {
	store *Store
	log   *slog.Logger
}

// NewDetector creates a Detector writing to store.
func NewDetector(store *Store, log *slog.Logger) *Detector {
	return &Detector{store: store, log: log}
}

// Store returns the record store the detector writes to.
func (d *Detector) Store() *Store { return d.store }

// Check evaluates one set for exerciseName achieved on date and returns every
// record it broke (zero to five). The store is persisted only when at least
// one record was broken. Ties never count.
func (d *Detector) Check(exerciseName string, set models.Set, date string) []models.Achievement {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	out := d.checkLocked(exerciseName, set, date)
	if len(out) > 0 {
		d.store.saveLocked()
	}
	return out
}

// CheckWorkout runs Check over every completed, non-blank set of w in order
// and groups the results by exercise. Exercises with no new records are
// omitted.
func (d *Detector) CheckWorkout(w models.Workout) []models.ExerciseAchievements {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	var out []models.ExerciseAchievements
	for _, ex := range w.Exercises {
		var got []models.Achievement
		for _, set := range ex.Sets {
			if !set.Completed || !set.Meaningful() {
				continue
			}
			got = append(got, d.checkLocked(ex.Name, set, w.Date)...)
		}
		if len(got) > 0 {
			out = append(out, models.ExerciseAchievements{Exercise: ex.Name, Achievements: got})
		}
	}
	if len(out) > 0 {
		d.store.saveLocked()
	}
	return out
}

// Backfill discards the current records and rebuilds them from history,
// oldest workout first. Every non-blank history set counts. Returns the
// number of exercises that ended up with records.
func (d *Detector) Backfill(history []models.Workout) int {
	sorted := make([]models.Workout, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	d.store.data = make(map[string]*models.ExerciseRecords)
	for _, w := range sorted {
		for _, ex := range w.Exercises {
			for _, set := range ex.Sets {
				if !set.Meaningful() {
					continue
				}
				d.checkLocked(ex.Name, set, w.Date)
			}
		}
	}

	n := 0
	for _, ex := range d.store.data {
		if len(ex.Records) > 0 {
			n++
		}
	}
	d.store.saveLocked()
	d.log.Info("personal records rebuilt", "workouts", len(sorted), "exercises", n)
	return n
}

// checkLocked is Check without locking or saving. Caller holds d.store.mu.
func (d *Detector) checkLocked(exerciseName string, set models.Set, date string) []models.Achievement {
	key := NormalizeKey(exerciseName)
	if key == "" {
		return nil
	}
	ex := d.store.entryLocked(key, exerciseName)

	var out []models.Achievement
	weight, reps := set.Weight.Float(), set.Reps.Float()

	if weight != 0 && reps != 0 {
		// Heaviest weight at this exact rep count.
		idx := findRecord(ex, models.RecordMaxWeightReps, func(r models.PersonalRecord) bool { return r.Reps == reps })
		if idx < 0 || weight > ex.Records[idx].Weight {
			a := models.Achievement{Type: models.RecordMaxWeightReps, Weight: weight, Reps: reps, Date: date}
			if idx >= 0 {
				a.PreviousWeight = ptr(ex.Records[idx].Weight)
			}
			putRecord(ex, idx, models.PersonalRecord{
				Type: models.RecordMaxWeightReps, Weight: weight, Reps: reps, Date: date, Set: set,
			})
			out = append(out, a)
		}

		// Most reps at this exact weight.
		idx = findRecord(ex, models.RecordMaxRepsWeight, func(r models.PersonalRecord) bool { return r.Weight == weight })
		if idx < 0 || reps > ex.Records[idx].Reps {
			a := models.Achievement{Type: models.RecordMaxRepsWeight, Weight: weight, Reps: reps, Date: date}
			if idx >= 0 {
				a.PreviousReps = ptr(ex.Records[idx].Reps)
			}
			putRecord(ex, idx, models.PersonalRecord{
				Type: models.RecordMaxRepsWeight, Weight: weight, Reps: reps, Date: date, Set: set,
			})
			out = append(out, a)
		}

		volume := weight * reps
		idx = findRecord(ex, models.RecordMaxVolume, nil)
		if idx < 0 || volume > ex.Records[idx].Volume {
			a := models.Achievement{Type: models.RecordMaxVolume, Volume: volume, Weight: weight, Reps: reps, Date: date}
			if idx >= 0 {
				a.PreviousVolume = ptr(ex.Records[idx].Volume)
			}
			putRecord(ex, idx, models.PersonalRecord{
				Type: models.RecordMaxVolume, Volume: volume, Weight: weight, Reps: reps, Date: date, Set: set,
			})
			out = append(out, a)
		}

		if orm := OneRepMax(weight, reps); orm > 0 {
			idx = findRecord(ex, models.RecordMax1RM, nil)
			if idx < 0 || orm > ex.Records[idx].OneRM {
				a := models.Achievement{Type: models.RecordMax1RM, OneRM: orm, Weight: weight, Reps: reps, Date: date}
				if idx >= 0 {
					a.PreviousOneRM = ptr(ex.Records[idx].OneRM)
				}
				putRecord(ex, idx, models.PersonalRecord{
					Type: models.RecordMax1RM, OneRM: orm, Weight: weight, Reps: reps, Date: date, Set: set,
				})
				out = append(out, a)
			}
		}
	}

	if set.Time != "" {
		secs, err := ParseTime(set.Time)
		if err != nil {
			d.log.Warn("skipping fastest-time check", "exercise", exerciseName, "time", set.Time, "error", err)
			return out
		}
		idx := findRecord(ex, models.RecordFastestTime, nil)
		if idx < 0 || secs < recordSeconds(ex.Records[idx]) {
			a := models.Achievement{Type: models.RecordFastestTime, Time: set.Time, Date: date}
			if idx >= 0 {
				prev := ex.Records[idx].Time
				a.PreviousTime = &prev
			}
			putRecord(ex, idx, models.PersonalRecord{
				Type: models.RecordFastestTime, Time: set.Time, Seconds: secs, Date: date, Set: set,
			})
			out = append(out, a)
		}
	}

	return out
}

// findRecord returns the index of the first record of type t accepted by
// match (any record of that type when match is nil), or -1.
func findRecord(ex *models.ExerciseRecords, t models.RecordType, match func(models.PersonalRecord) bool) int {
	for i, r := range ex.Records {
		if r.Type != t {
			continue
		}
		if match == nil || match(r) {
			return i
		}
	}
	return -1
}

func putRecord(ex *models.ExerciseRecords, idx int, r models.PersonalRecord) {
	if idx >= 0 {
		ex.Records[idx] = r
		return
	}
	ex.Records = append(ex.Records, r)
}

// recordSeconds returns the stored seconds, re-deriving them from Time for
// records written before Seconds existed.
func recordSeconds(r models.PersonalRecord) int {
	if r.Seconds > 0 {
		return r.Seconds
	}
	secs, err := ParseTime(r.Time)
	if err != nil {
		// An unreadable stored time is beaten by any valid one.
		return int(^uint(0) >> 1)
	}
	return secs
}

func ptr[T any](v T) *T { return &v }
