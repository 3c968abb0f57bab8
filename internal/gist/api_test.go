package gist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestAPIStatusMapping verifies non-2xx responses map to the typed errors.
func TestAPIStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusUnauthorized, IsAuth, "AuthError"},
		{http.StatusForbidden, IsAuth, "AuthError"},
		{http.StatusNotFound, IsNotFound, "NotFoundError"},
		{http.StatusGone, IsNotFound, "NotFoundError"},
		{http.StatusInternalServerError, isSyncError(http.StatusInternalServerError), "SyncError"},
		{http.StatusUnprocessableEntity, isSyncError(http.StatusUnprocessableEntity), "SyncError"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"nope"}`, tt.status)
			}))
			defer srv.Close()

			_, err := NewAPI(srv.URL, 0).GetDocument(context.Background(), "abc")
			if !tt.check(err) {
				t.Errorf("err = %v, want %s", err, tt.name)
			}
		})
	}
}

func isSyncError(status int) func(error) bool {
	return func(err error) bool {
		var se *SyncError
		return errors.As(err, &se) && se.Status == status
	}
}

// TestAPITimeoutIsSyncError verifies a timed-out request surfaces as a
// retryable SyncError with no status.
func TestAPITimeoutIsSyncError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewAPI(srv.URL, 50*time.Millisecond).ListDocuments(context.Background())
	var se *SyncError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SyncError", err)
	}
	if se.Status != 0 {
		t.Errorf("status = %d, want 0", se.Status)
	}
}

func TestAPISendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"login":"alice"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/", 0)
	api.SetToken("secret")
	u, err := api.VerifyToken(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
	}
	if u.Login != "alice" {
		t.Errorf("login = %q, want alice", u.Login)
	}
}
