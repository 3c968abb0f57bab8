package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
)

var redisNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockRedis(t *testing.T) (*Redis, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	r := NewRedis(client)
	r.now = func() time.Time { return redisNow }
	r.newID = func() string { return "doc-1" }
	return r, mock
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// TestRedisCreate verifies Create writes the document and indexes it under
// its owner.
func TestRedisCreate(t *testing.T) {
	r, mock := newMockRedis(t)
	want := Document{
		ID:          "doc-1",
		Owner:       "alice",
		Description: "LiftLog Workout Data",
		Files:       map[string]string{"liftlog-data.json": `{"version":"1.0"}`},
		CreatedAt:   redisNow,
		UpdatedAt:   redisNow,
	}

	mock.ExpectSet(redisDocPrefix+"doc-1", mustJSON(t, want), 0).SetVal("OK")
	mock.ExpectSAdd(redisOwnerPrefix+"alice", "doc-1").SetVal(1)

	got, err := r.Create(context.Background(), "alice", want.Description, false, want.Files)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "doc-1" || got.Owner != "alice" {
		t.Errorf("created = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// TestRedisGetOwnerMismatch verifies a document owned by someone else is
// reported as not found.
func TestRedisGetOwnerMismatch(t *testing.T) {
	r, mock := newMockRedis(t)
	stored := Document{ID: "doc-1", Owner: "alice", Files: map[string]string{}, CreatedAt: redisNow, UpdatedAt: redisNow}

	mock.ExpectGet(redisDocPrefix + "doc-1").SetVal(mustJSON(t, stored))
	if _, err := r.Get(context.Background(), "bob", "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	mock.ExpectGet(redisDocPrefix + "missing").SetErr(redis.Nil)
	if _, err := r.Get(context.Background(), "alice", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// TestRedisUpdateMergesFiles verifies Update keeps files it was not given.
func TestRedisUpdateMergesFiles(t *testing.T) {
	r, mock := newMockRedis(t)
	created := redisNow.Add(-time.Hour)
	stored := Document{
		ID:        "doc-1",
		Owner:     "alice",
		Files:     map[string]string{"a": "1", "b": "2"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	updated := stored
	updated.Files = map[string]string{"a": "3", "b": "2"}
	updated.UpdatedAt = redisNow

	mock.ExpectGet(redisDocPrefix + "doc-1").SetVal(mustJSON(t, stored))
	mock.ExpectSet(redisDocPrefix+"doc-1", mustJSON(t, updated), 0).SetVal("OK")

	got, err := r.Update(context.Background(), "alice", "doc-1", map[string]string{"a": "3"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Files["a"] != "3" || got.Files["b"] != "2" {
		t.Errorf("files = %v", got.Files)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// TestRedisListSkipsDangling verifies IDs whose document vanished are skipped.
func TestRedisListSkipsDangling(t *testing.T) {
	r, mock := newMockRedis(t)
	doc := Document{ID: "doc-1", Owner: "alice", Description: "d", Files: map[string]string{}, CreatedAt: redisNow, UpdatedAt: redisNow}

	mock.ExpectSMembers(redisOwnerPrefix + "alice").SetVal([]string{"doc-1", "gone"})
	mock.ExpectGet(redisDocPrefix + "doc-1").SetVal(mustJSON(t, doc))
	mock.ExpectGet(redisDocPrefix + "gone").SetErr(redis.Nil)

	list, err := r.List(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "doc-1" {
		t.Errorf("list = %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
