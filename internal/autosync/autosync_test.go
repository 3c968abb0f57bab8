package autosync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/gist"
	"github.com/claude/liftlog/internal/models"
	"go.uber.org/goleak"
)

// TestMain verifies no scheduler goroutine outlives the tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSyncer struct {
	mu           sync.Mutex
	token        bool
	result       gist.Result
	err          error
	calls        int
	disconnected bool
}

func (f *fakeSyncer) HasToken() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSyncer) Sync(_ context.Context, _ *models.SyncDocument) (gist.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeSyncer) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = false
	f.disconnected = true
	return nil
}

func (f *fakeSyncer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func snapshot() *models.SyncDocument { return &models.SyncDocument{} }

func TestTickWithoutTokenIsNoop(t *testing.T) {
	f := &fakeSyncer{}
	s := New(f, quiet())
	s.Tick(context.Background(), snapshot, func(*models.SyncDocument) error {
		t.Error("apply called")
		return nil
	}, func(gist.Result) { t.Error("onResult called") })

	if f.callCount() != 0 {
		t.Errorf("sync calls = %d, want 0", f.callCount())
	}
}

// TestTickAppliesDownloadBeforeResult verifies apply runs first and receives
// the remote document.
func TestTickAppliesDownloadBeforeResult(t *testing.T) {
	remote := &models.SyncDocument{LastSync: "2024-05-01T08:00:00.000Z"}
	f := &fakeSyncer{token: true, result: gist.Result{Action: gist.ActionDownloaded, Data: remote}}
	s := New(f, quiet())

	var order []string
	s.Tick(context.Background(), snapshot,
		func(doc *models.SyncDocument) error {
			if doc != remote {
				t.Error("apply got a different document")
			}
			order = append(order, "apply")
			return nil
		},
		func(res gist.Result) { order = append(order, "result:"+string(res.Action)) },
	)

	if len(order) != 2 || order[0] != "apply" || order[1] != "result:downloaded" {
		t.Errorf("call order = %v", order)
	}
}

func TestTickSwallowsErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantDisconnect bool
	}{
		{"network", &gist.SyncError{Status: 502, Err: errors.New("bad gateway")}, false},
		{"in progress", gist.ErrSyncInProgress, false},
		{"auth", &gist.AuthError{Status: 401, Err: errors.New("bad credentials")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSyncer{token: true, err: tt.err}
			s := New(f, quiet())
			s.Tick(context.Background(), snapshot, nil, func(gist.Result) { t.Error("onResult called on error") })
			if f.disconnected != tt.wantDisconnect {
				t.Errorf("disconnected = %v, want %v", f.disconnected, tt.wantDisconnect)
			}
		})
	}
}

// TestStartRunsTicksUntilStop verifies the loop keeps ticking through errors
// and exits on Stop.
func TestStartRunsTicksUntilStop(t *testing.T) {
	f := &fakeSyncer{token: true, err: errors.New("offline")}
	s := New(f, quiet(), WithInterval(5*time.Millisecond))

	s.Start(snapshot, nil, nil)
	if !s.Running() {
		t.Fatal("not running after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.callCount() < 3 {
		t.Fatalf("sync calls = %d, want >= 3", f.callCount())
	}

	s.Stop()
	if s.Running() {
		t.Error("running after Stop")
	}
	n := f.callCount()
	time.Sleep(30 * time.Millisecond)
	if f.callCount() != n {
		t.Errorf("ticks continued after Stop: %d -> %d", n, f.callCount())
	}
}

// TestStartTwiceKeepsOneLoop verifies a second Start replaces the first loop;
// goleak in TestMain catches a leaked first loop.
func TestStartTwiceKeepsOneLoop(t *testing.T) {
	f := &fakeSyncer{token: true, result: gist.Result{Action: gist.ActionSynced}}
	s := New(f, quiet(), WithInterval(time.Hour))

	s.Start(snapshot, nil, nil)
	s.Start(snapshot, nil, nil)
	s.Stop()
	s.Stop()

	if s.Running() {
		t.Error("running after Stop")
	}
}

func TestStopWhenNeverStarted(t *testing.T) {
	s := New(&fakeSyncer{}, quiet())
	s.Stop()
	if s.Running() {
		t.Error("running without Start")
	}
}
