// Package autosync runs the sync client on a fixed interval in the
// background.
package autosync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/gist"
	"github.com/claude/liftlog/internal/models"
)

// DefaultInterval is the time between background syncs.
const DefaultInterval = 5 * time.Minute

// Syncer is the part of the sync client the scheduler drives.
type Syncer interface {
	HasToken() bool
	Sync(ctx context.Context, local *models.SyncDocument) (gist.Result, error)
	Disconnect() error
}

// Callbacks wire the scheduler into the host application.
type (
	// SnapshotFunc returns the current local dataset.
	SnapshotFunc func() *models.SyncDocument
	// ApplyFunc replaces local state with a downloaded document.
	ApplyFunc func(*models.SyncDocument) error
	// ResultFunc observes every successful sync. May be nil.
	ResultFunc func(gist.Result)
)

// Scheduler runs one sync per interval. Start and Stop are safe to call from
// any goroutine.
type Scheduler struct {
	syncer   Syncer
	log      *slog.Logger
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a stopped Scheduler.
func New(syncer Syncer, log *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{syncer: syncer, log: log, interval: DefaultInterval}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start begins the background loop, stopping any loop already running.
func (s *Scheduler) Start(get SnapshotFunc, apply ApplyFunc, onResult ResultFunc) {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("auto-sync started", "interval", s.interval.String())
		for {
			select {
			case <-ctx.Done():
				s.log.Info("auto-sync stopped")
				return
			case <-ticker.C:
				s.Tick(ctx, get, apply, onResult)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. Safe to call when not
// running; must not be called from a scheduler callback.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the background loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Tick performs one background sync. It never returns an error: failures
// are logged, and an auth failure drops the stored credentials.
func (s *Scheduler) Tick(ctx context.Context, get SnapshotFunc, apply ApplyFunc, onResult ResultFunc) {
	if !s.syncer.HasToken() {
		return
	}

	res, err := s.syncer.Sync(ctx, get())
	switch {
	case err == nil:
	case errors.Is(err, gist.ErrSyncInProgress):
		s.log.Debug("auto-sync skipped, sync in progress")
		return
	case gist.IsAuth(err):
		s.log.Warn("auto-sync auth failed, disconnecting", "error", err)
		if err := s.syncer.Disconnect(); err != nil {
			s.log.Error("clearing credentials", "error", err)
		}
		return
	default:
		s.log.Warn("auto-sync failed", "error", err)
		return
	}

	if res.Action == gist.ActionDownloaded {
		if err := apply(res.Data); err != nil {
			s.log.Error("applying downloaded data", "error", err)
			return
		}
	}
	s.log.Debug("auto-sync complete", "action", string(res.Action))
	if onResult != nil {
		onResult(res)
	}
}
