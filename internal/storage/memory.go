package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Backend. Contents are lost on exit.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]*Document
	now  func() time.Time
}

// Compile-time check: *Memory satisfies Backend.
var _ Backend = (*Memory)(nil)

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*Document), now: time.Now}
}

func (m *Memory) List(_ context.Context, owner string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0)
	for _, d := range m.docs {
		if d.Owner == owner {
			out = append(out, cloneDoc(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) Create(_ context.Context, owner, description string, public bool, files map[string]string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	d := &Document{
		ID:          newID(),
		Owner:       owner,
		Description: description,
		Public:      public,
		Files:       copyFiles(files),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.docs[d.ID] = d
	out := cloneDoc(d)
	return &out, nil
}

func (m *Memory) Get(_ context.Context, owner, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[id]
	if !ok || d.Owner != owner {
		return nil, ErrNotFound
	}
	out := cloneDoc(d)
	return &out, nil
}

func (m *Memory) Update(_ context.Context, owner, id string, files map[string]string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok || d.Owner != owner {
		return nil, ErrNotFound
	}
	for name, content := range files {
		d.Files[name] = content
	}
	d.UpdatedAt = m.now().UTC()
	out := cloneDoc(d)
	return &out, nil
}

func (m *Memory) Close() error { return nil }

func cloneDoc(d *Document) Document {
	out := *d
	out.Files = copyFiles(d.Files)
	return out
}
