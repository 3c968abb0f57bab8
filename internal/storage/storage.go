// Package storage holds the document store backends served by the docstore
// HTTP server: in-memory, Postgres and Redis.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist or belongs to
// another owner.
var ErrNotFound = errors.New("storage: document not found")

// Document is a stored document. Files maps file name to content.
type Document struct {
	ID          string            `json:"id"`
	Owner       string            `json:"owner"`
	Description string            `json:"description"`
	Public      bool              `json:"public"`
	Files       map[string]string `json:"files"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Backend persists documents. Every operation is scoped to owner.
type Backend interface {
	List(ctx context.Context, owner string) ([]Document, error)
	Create(ctx context.Context, owner, description string, public bool, files map[string]string) (*Document, error)
	Get(ctx context.Context, owner, id string) (*Document, error)
	// Update replaces the content of each given file and keeps the rest.
	Update(ctx context.Context, owner, id string, files map[string]string) (*Document, error)
	Close() error
}

func newID() string {
	return uuid.NewString()
}

func copyFiles(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
