package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/liftlog/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tokens := map[string]string{"tok-alice": "alice", "tok-bob": "bob"}
	return New(storage.NewMemory(), tokens, discardLogger(), WithMetrics(prometheus.NewRegistry()))
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHandleUser(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/user", "tok-alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice" {
		t.Errorf("login = %q, want %q", info.Login, "alice")
	}

	if rec := doRequest(t, s, http.MethodGet, "/user", "bogus", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
}

// TestDocumentLifecycle covers create, list, get and patch through the router.
func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/documents", "tok-alice", map[string]any{
		"description": "LiftLog Workout Data",
		"public":      false,
		"files": map[string]any{
			"liftlog-data.json": map[string]string{"content": `{"version":"1.0"}`},
			"notes.txt":         map[string]string{"content": "keep me"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created documentJSON
	json.NewDecoder(rec.Body).Decode(&created)
	if created.ID == "" {
		t.Fatal("created document has no id")
	}

	rec = doRequest(t, s, http.MethodGet, "/documents", "tok-alice", nil)
	var list []documentJSON
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 || list[0].Description != "LiftLog Workout Data" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Files["liftlog-data.json"].Content != nil {
		t.Error("list response should not carry file content")
	}

	rec = doRequest(t, s, http.MethodPatch, "/documents/"+created.ID, "tok-alice", map[string]any{
		"files": map[string]any{"liftlog-data.json": map[string]string{"content": `{"version":"1.0","workouts":[]}`}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, s, http.MethodGet, "/documents/"+created.ID, "tok-alice", nil)
	var got documentJSON
	json.NewDecoder(rec.Body).Decode(&got)
	if c := got.Files["liftlog-data.json"].Content; c == nil || !strings.Contains(*c, "workouts") {
		t.Errorf("patched content = %v", c)
	}
	if c := got.Files["notes.txt"].Content; c == nil || *c != "keep me" {
		t.Errorf("untouched file content = %v, want %q", c, "keep me")
	}

	if rec := doRequest(t, s, http.MethodGet, "/documents/"+created.ID, "tok-bob", nil); rec.Code != http.StatusNotFound {
		t.Errorf("other owner status = %d, want 404", rec.Code)
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer tok-alice")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/documents", "tok-alice", map[string]any{"description": "x"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("no files status = %d, want 422", rec.Code)
	}
}

func TestHealthAndMetricsUnauthenticated(t *testing.T) {
	s := newTestServer(t)
	if rec := doRequest(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	doRequest(t, s, http.MethodGet, "/user", "tok-alice", nil)
	rec := doRequest(t, s, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "liftlog_docstore_requests_total") {
		t.Error("metrics output missing request counter")
	}
}
