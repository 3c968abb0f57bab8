package kvstore

import (
	"errors"
	"testing"
)

func testStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := s.Set("a", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("a", []byte("two")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("Get(a) = %q, want %q", got, "two")
	}

	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove err = %v, want ErrNotFound", err)
	}
	if err := s.Remove("a"); err != nil {
		t.Errorf("Remove(absent) err = %v, want nil", err)
	}
}

// TestMemoryStore exercises the get/set/remove contract on the in-memory store.
func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemory())
}

// TestSQLiteStore exercises the same contract against a real database file
// and verifies values survive a reopen.
func TestSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, s)

	if err := s.Set("persist", []byte(`{"x":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Get("persist")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"x":1}` {
		t.Errorf("after reopen = %q", got)
	}
}

// TestJSONHelpers verifies GetJSON/SetJSON round trip and GetString defaults.
func TestJSONHelpers(t *testing.T) {
	s := NewMemory()
	type doc struct {
		Name string `json:"name"`
	}
	if err := SetJSON(s, "doc", doc{Name: "squat"}); err != nil {
		t.Fatal(err)
	}
	var d doc
	if err := GetJSON(s, "doc", &d); err != nil {
		t.Fatal(err)
	}
	if d.Name != "squat" {
		t.Errorf("name = %q, want squat", d.Name)
	}

	if err := s.Set("bad", []byte("{")); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(s, "bad", &d); err == nil {
		t.Error("expected decode error for corrupt JSON")
	}

	v, err := GetString(s, "nothing")
	if err != nil || v != "" {
		t.Errorf("GetString(absent) = %q, %v; want empty, nil", v, err)
	}
}
