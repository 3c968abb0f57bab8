// Package tracker holds the local workout state: history, the in-progress
// workout, the active program and small per-user preferences.
package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/kvstore"
	"github.com/claude/liftlog/internal/models"
)

// Storage keys. Each is a separate JSON document in the kv store.
const (
	KeyWorkoutData     = "workoutData"
	KeyFavorites       = "favorites"
	KeyRecentExercises = "recentExercises"
	KeyAutoStartTimer  = "autoStartTimer"
)

// maxRecent caps the recently-used exercise list.
const maxRecent = 10

// ErrNoExercise is returned when an exercise index is out of range.
var ErrNoExercise = errors.New("no such exercise")

// ErrNoSet is returned when a set index is out of range.
var ErrNoSet = errors.New("no such set")

// ErrNoProgram is returned by program operations when none is active.
var ErrNoProgram = errors.New("no active program")

// ErrInvalidSet is returned when a set carries a non-finite reps or weight.
var ErrInvalidSet = errors.New("invalid set values")

// CurrentWorkout is the workout being logged right now.
type CurrentWorkout struct {
	Exercises []models.WorkoutExercise `json:"exercises"`
}

// state is the persisted shape of KeyWorkoutData.
type state struct {
	Workouts       []models.Workout      `json:"workouts"`
	CurrentWorkout CurrentWorkout        `json:"currentWorkout"`
	ActiveProgram  *models.ActiveProgram `json:"activeProgram"`
	Progress       []json.RawMessage     `json:"progress"`
	CreatedAt      string                `json:"createdAt"`
	LastSync       string                `json:"lastSync"`
}

// Tracker owns the local workout state. It is safe for concurrent use.
type Tracker struct {
	kv  kvstore.Store
	log *slog.Logger
	now func() time.Time

	mu        sync.RWMutex
	st        state
	favorites []string
	recent    []string
	autoStart bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker and loads persisted state from kv.
func New(kv kvstore.Store, log *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{kv: kv, log: log, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	t.load()
	return t
}

// load reads every document. Missing or corrupt documents fall back to
// empty defaults.
func (t *Tracker) load() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.st = state{}
	t.readJSON(KeyWorkoutData, &t.st)
	if t.st.CreatedAt == "" {
		t.st.CreatedAt = models.FormatTimestamp(t.now())
	}

	t.favorites = nil
	t.readJSON(KeyFavorites, &t.favorites)
	t.recent = nil
	t.readJSON(KeyRecentExercises, &t.recent)
	t.autoStart = false
	t.readJSON(KeyAutoStartTimer, &t.autoStart)
}

func (t *Tracker) readJSON(key string, v any) {
	err := kvstore.GetJSON(t.kv, key, v)
	if err == nil || errors.Is(err, kvstore.ErrNotFound) {
		return
	}
	t.log.Warn("local data corrupt, using defaults", "key", key, "error", err)
	switch p := v.(type) {
	case *state:
		*p = state{}
	case *[]string:
		*p = nil
	case *bool:
		*p = false
	}
}

// saveLocked persists the workout document. Caller holds t.mu.
func (t *Tracker) saveLocked() error {
	if err := kvstore.SetJSON(t.kv, KeyWorkoutData, t.st); err != nil {
		t.log.Error("saving workout data", "error", err)
		return fmt.Errorf("saving workout data: %w", err)
	}
	return nil
}

// --- In-progress workout ---

// CurrentWorkout returns a copy of the in-progress workout.
func (t *Tracker) CurrentWorkout() CurrentWorkout {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return CurrentWorkout{Exercises: cloneExercises(t.st.CurrentWorkout.Exercises)}
}

// AddExercise appends an exercise with one blank set to the in-progress
// workout and records it as recently used. Returns its index.
func (t *Tracker) AddExercise(name, category, equipment string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("exercise name is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.CurrentWorkout.Exercises = append(t.st.CurrentWorkout.Exercises, models.WorkoutExercise{
		Name:      name,
		Category:  category,
		Equipment: equipment,
		Sets:      []models.Set{{}},
	})
	t.touchRecentLocked(name)
	return len(t.st.CurrentWorkout.Exercises) - 1, t.saveLocked()
}

// RemoveExercise drops the exercise at idx from the in-progress workout.
func (t *Tracker) RemoveExercise(idx int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ex := t.st.CurrentWorkout.Exercises
	if idx < 0 || idx >= len(ex) {
		return ErrNoExercise
	}
	t.st.CurrentWorkout.Exercises = append(ex[:idx], ex[idx+1:]...)
	return t.saveLocked()
}

// LogSet writes s into the exercise's set list. setIdx == len(sets) appends.
func (t *Tracker) LogSet(exIdx, setIdx int, s models.Set) error {
	if !s.Reps.Finite() || !s.Weight.Finite() {
		return ErrInvalidSet
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ex := t.st.CurrentWorkout.Exercises
	if exIdx < 0 || exIdx >= len(ex) {
		return ErrNoExercise
	}
	sets := ex[exIdx].Sets
	switch {
	case setIdx == len(sets):
		ex[exIdx].Sets = append(sets, s)
	case setIdx >= 0 && setIdx < len(sets):
		sets[setIdx] = s
	default:
		return ErrNoSet
	}
	return t.saveLocked()
}

// CompleteSet marks a set done or not done.
func (t *Tracker) CompleteSet(exIdx, setIdx int, done bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ex := t.st.CurrentWorkout.Exercises
	if exIdx < 0 || exIdx >= len(ex) {
		return ErrNoExercise
	}
	if setIdx < 0 || setIdx >= len(ex[exIdx].Sets) {
		return ErrNoSet
	}
	ex[exIdx].Sets[setIdx].Completed = done
	return t.saveLocked()
}

// ClearCurrentWorkout discards the in-progress workout.
func (t *Tracker) ClearCurrentWorkout() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.CurrentWorkout = CurrentWorkout{}
	return t.saveLocked()
}

// --- History ---

// SaveWorkout writes a history entry for date. Blank sets are dropped and an
// existing entry on the same date is replaced in place.
func (t *Tracker) SaveWorkout(date string, exercises []models.WorkoutExercise) (models.Workout, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.Workout{}, fmt.Errorf("invalid workout date %q: %w", date, err)
	}

	w := models.Workout{Date: date, Exercises: make([]models.WorkoutExercise, 0, len(exercises))}
	for _, ex := range exercises {
		kept := make([]models.Set, 0, len(ex.Sets))
		for _, s := range ex.Sets {
			if s.Meaningful() {
				kept = append(kept, s)
			}
		}
		ex.Sets = kept
		w.Exercises = append(w.Exercises, ex)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	replaced := false
	for i := range t.st.Workouts {
		if t.st.Workouts[i].Date == date {
			t.st.Workouts[i] = w
			replaced = true
			break
		}
	}
	if !replaced {
		t.st.Workouts = append(t.st.Workouts, w)
	}
	return w, t.saveLocked()
}

// History returns every history entry sorted by date, oldest first.
func (t *Tracker) History() []models.Workout {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.Workout, len(t.st.Workouts))
	for i, w := range t.st.Workouts {
		out[i] = models.Workout{Date: w.Date, Exercises: cloneExercises(w.Exercises)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// HistoryBetween returns entries with start <= date <= end (YYYY-MM-DD).
func (t *Tracker) HistoryBetween(start, end string) []models.Workout {
	var out []models.Workout
	for _, w := range t.History() {
		if w.Date >= start && w.Date <= end {
			out = append(out, w)
		}
	}
	return out
}

// WorkoutOn returns the history entry for date.
func (t *Tracker) WorkoutOn(date string) (models.Workout, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, w := range t.st.Workouts {
		if w.Date == date {
			return models.Workout{Date: w.Date, Exercises: cloneExercises(w.Exercises)}, true
		}
	}
	return models.Workout{}, false
}

// DeleteWorkout removes the history entry for date. Returns false when none existed.
func (t *Tracker) DeleteWorkout(date string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, w := range t.st.Workouts {
		if w.Date == date {
			t.st.Workouts = append(t.st.Workouts[:i], t.st.Workouts[i+1:]...)
			return true, t.saveLocked()
		}
	}
	return false, nil
}

// --- Preferences ---

// ToggleFavorite adds or removes name from favorites. Returns the new state.
func (t *Tracker) ToggleFavorite(name string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, f := range t.favorites {
		if strings.EqualFold(f, name) {
			t.favorites = append(t.favorites[:i], t.favorites[i+1:]...)
			return false, kvstore.SetJSON(t.kv, KeyFavorites, t.favorites)
		}
	}
	t.favorites = append(t.favorites, name)
	return true, kvstore.SetJSON(t.kv, KeyFavorites, t.favorites)
}

// Favorites returns the favorite exercise names.
func (t *Tracker) Favorites() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.favorites...)
}

// RecentExercises returns recently used exercise names, most recent first.
func (t *Tracker) RecentExercises() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.recent...)
}

func (t *Tracker) touchRecentLocked(name string) {
	out := []string{name}
	for _, r := range t.recent {
		if !strings.EqualFold(r, name) {
			out = append(out, r)
		}
	}
	if len(out) > maxRecent {
		out = out[:maxRecent]
	}
	t.recent = out
	if err := kvstore.SetJSON(t.kv, KeyRecentExercises, t.recent); err != nil {
		t.log.Error("saving recent exercises", "error", err)
	}
}

// AutoStartTimer reports whether the rest timer starts when a set completes.
func (t *Tracker) AutoStartTimer() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.autoStart
}

// SetAutoStartTimer stores the auto-start-timer flag.
func (t *Tracker) SetAutoStartTimer(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoStart = on
	return kvstore.SetJSON(t.kv, KeyAutoStartTimer, on)
}

// Clear removes every local document.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, k := range []string{KeyWorkoutData, KeyFavorites, KeyRecentExercises, KeyAutoStartTimer} {
		if err := t.kv.Remove(k); err != nil {
			return fmt.Errorf("clearing %s: %w", k, err)
		}
	}
	t.st = state{CreatedAt: models.FormatTimestamp(t.now())}
	t.favorites, t.recent, t.autoStart = nil, nil, false
	return nil
}

func cloneExercises(in []models.WorkoutExercise) []models.WorkoutExercise {
	if in == nil {
		return nil
	}
	out := make([]models.WorkoutExercise, len(in))
	for i, ex := range in {
		out[i] = ex
		if ex.Sets != nil {
			out[i].Sets = make([]models.Set, len(ex.Sets))
			copy(out[i].Sets, ex.Sets)
		}
	}
	return out
}
