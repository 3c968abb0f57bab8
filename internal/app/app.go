// Package app is the application root. It constructs and owns the tracker,
// the record store and detector, the sync client and the auto-sync
// scheduler, and exposes the user intents that drive them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/autosync"
	"github.com/claude/liftlog/internal/gist"
	"github.com/claude/liftlog/internal/kvstore"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/tracker"
)

// ErrEmptyWorkout is returned by FinishWorkout when nothing is in progress.
var ErrEmptyWorkout = errors.New("no exercises in the current workout")

// App wires the components together.
type App struct {
	Tracker   *tracker.Tracker
	Records   *records.Store
	Detector  *records.Detector
	Syncer    *gist.Syncer
	Scheduler *autosync.Scheduler

	log *slog.Logger
	now func() time.Time
}

type options struct {
	now          func() time.Time
	syncInterval time.Duration
}

// Option configures an App.
type Option func(*options)

// WithClock overrides the wall clock for every component.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSyncInterval overrides the auto-sync interval.
func WithSyncInterval(d time.Duration) Option {
	return func(o *options) { o.syncInterval = d }
}

// New builds an App on top of kv, talking to the document store through api.
func New(kv kvstore.Store, api *gist.API, log *slog.Logger, opts ...Option) *App {
	o := options{now: time.Now, syncInterval: autosync.DefaultInterval}
	for _, fn := range opts {
		fn(&o)
	}

	recs := records.NewStore(kv, log.With("component", "records"))
	syncer := gist.NewSyncer(api, kv, log.With("component", "sync"), gist.WithClock(o.now))
	return &App{
		Tracker:   tracker.New(kv, log.With("component", "tracker"), tracker.WithClock(o.now)),
		Records:   recs,
		Detector:  records.NewDetector(recs, log.With("component", "records")),
		Syncer:    syncer,
		Scheduler: autosync.New(syncer, log.With("component", "autosync"), autosync.WithInterval(o.syncInterval)),
		log:       log,
		now:       o.now,
	}
}

// FinishResult is what finishing a workout produced.
type FinishResult struct {
	Workout      models.Workout
	Achievements []models.ExerciseAchievements
}

// FinishWorkout saves the in-progress workout to history on date (today when
// empty), checks its completed sets for personal records and clears the
// in-progress workout.
func (a *App) FinishWorkout(date string) (FinishResult, error) {
	cur := a.Tracker.CurrentWorkout()
	if len(cur.Exercises) == 0 {
		return FinishResult{}, ErrEmptyWorkout
	}
	if date == "" {
		date = a.now().Format(models.DateLayout)
	}

	w, err := a.Tracker.SaveWorkout(date, cur.Exercises)
	if err != nil {
		return FinishResult{}, err
	}
	achievements := a.Detector.CheckWorkout(w)
	if err := a.Tracker.ClearCurrentWorkout(); err != nil {
		return FinishResult{}, err
	}

	n := 0
	for _, ea := range achievements {
		n += len(ea.Achievements)
	}
	a.log.Info("workout finished", "date", date, "exercises", len(w.Exercises), "records", n)
	return FinishResult{Workout: w, Achievements: achievements}, nil
}

// SaveWorkout writes a history entry directly, replacing any entry on date.
func (a *App) SaveWorkout(date string, exercises []models.WorkoutExercise) (models.Workout, error) {
	return a.Tracker.SaveWorkout(date, exercises)
}

// Connect stores token and locates (or creates) the remote document. An
// invalid token leaves the client disconnected.
func (a *App) Connect(ctx context.Context, token string) error {
	if err := a.Syncer.SetToken(token); err != nil {
		return err
	}
	snap := a.Tracker.Snapshot()
	created, err := a.Syncer.Initialize(ctx, snap)
	if err != nil {
		if gist.IsAuth(err) {
			if derr := a.Disconnect(); derr != nil {
				a.log.Error("clearing credentials", "error", derr)
			}
		}
		return fmt.Errorf("connecting: %w", err)
	}
	if created {
		return a.Tracker.MarkSynced(snap.LastSync)
	}
	return nil
}

// Disconnect stops auto-sync and forgets the token and document ID.
func (a *App) Disconnect() error {
	a.Scheduler.Stop()
	return a.Syncer.Disconnect()
}

// IsConnected reports whether a token is stored.
func (a *App) IsConnected() bool {
	return a.Syncer.IsConnected()
}

// SyncNow runs one reconciliation and applies its outcome locally. An auth
// failure disconnects.
func (a *App) SyncNow(ctx context.Context) (gist.Result, error) {
	res, err := a.Syncer.Sync(ctx, a.Tracker.Snapshot())
	if err != nil {
		if gist.IsAuth(err) {
			if derr := a.Disconnect(); derr != nil {
				a.log.Error("clearing credentials", "error", derr)
			}
		}
		return gist.Result{}, err
	}
	if res.Action == gist.ActionDownloaded {
		if err := a.applyRemote(res.Data); err != nil {
			return res, err
		}
	}
	a.onResult(res)
	return res, nil
}

// StartAutoSync starts the background scheduler.
func (a *App) StartAutoSync() {
	a.Scheduler.Start(a.Tracker.Snapshot, a.applyRemote, a.onResult)
}

// StopAutoSync stops the background scheduler.
func (a *App) StopAutoSync() {
	a.Scheduler.Stop()
}

// ClearAllData removes local workout data and personal records. Sync
// credentials are kept.
func (a *App) ClearAllData() error {
	if err := a.Tracker.Clear(); err != nil {
		return err
	}
	a.Records.Clear()
	a.log.Info("local data cleared")
	return nil
}

// Close stops background work.
func (a *App) Close() {
	a.Scheduler.Stop()
}

// applyRemote overwrites local state with a downloaded document and rebuilds
// personal records from its history.
func (a *App) applyRemote(doc *models.SyncDocument) error {
	if err := a.Tracker.Apply(doc); err != nil {
		return fmt.Errorf("applying remote data: %w", err)
	}
	a.Detector.Backfill(doc.Workouts)
	return nil
}

func (a *App) onResult(res gist.Result) {
	switch res.Action {
	case gist.ActionUploaded, gist.ActionCreated:
		if err := a.Tracker.MarkSynced(res.Data.LastSync); err != nil {
			a.log.Error("recording sync time", "error", err)
		}
	}
	a.log.Info("sync complete", "action", string(res.Action))
}
