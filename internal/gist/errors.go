package gist

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned by Sync when another reconciliation is still
// running on the same Syncer.
var ErrSyncInProgress = errors.New("gist: sync already in progress")

// errNoToken is wrapped in an AuthError when no bearer token is stored.
var errNoToken = errors.New("no token configured")

// AuthError means the bearer token is missing, invalid or expired. Callers
// must drop stored credentials and re-authenticate; it is never retried.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gist: authentication failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("gist: authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError means a document ID no longer resolves. The Syncer clears
// its cached ID so the next sync runs discovery again.
type NotFoundError struct {
	ID     string
	Status int
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gist: document %q not found (status %d): %v", e.ID, e.Status, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// SyncError is a retryable network or HTTP failure. Status is 0 for
// transport errors and timeouts.
type SyncError struct {
	Status int
	Err    error
}

func (e *SyncError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gist: sync failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("gist: sync failed: %v", e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// ValidationError means remote document content is malformed.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gist: invalid document: %s: %v", e.Reason, e.Err)
	}
	return "gist: invalid document: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsAuth reports whether err is or wraps an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
