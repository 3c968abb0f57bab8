// Package gist is the sync client for the remote document store. API speaks
// the HTTP contract; Syncer reconciles the local dataset against one remote
// document using last-write-wins on lastSync.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds every request made by API.
const DefaultTimeout = 30 * time.Second

// File is one named file inside a document.
type File struct {
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content"`
}

// Document is a remote document. List responses may omit file content.
type Document struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]File `json:"files"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// User is the identity returned by the token verification endpoint.
type User struct {
	Login string `json:"login"`
}

type createRequest struct {
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]File `json:"files"`
}

type updateRequest struct {
	Files map[string]File `json:"files"`
}

// API is a thin client for the document store HTTP contract.
// Non-2xx responses are mapped to AuthError (401, 403), NotFoundError
// (404, 410) or SyncError (everything else, including transport failures).
type API struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPI creates an API client for baseURL. A zero timeout uses DefaultTimeout.
func NewAPI(baseURL string, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request.
func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// VerifyToken checks the bearer token against GET /user.
func (a *API) VerifyToken(ctx context.Context) (*User, error) {
	var u User
	if err := a.do(ctx, http.MethodGet, "/user", "", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListDocuments returns the caller's document summaries.
func (a *API) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := a.do(ctx, http.MethodGet, "/documents", "", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateDocument creates a private document with the given files.
func (a *API) CreateDocument(ctx context.Context, description string, files map[string]string) (*Document, error) {
	req := createRequest{Description: description, Files: toFiles(files)}
	var doc Document
	if err := a.do(ctx, http.MethodPost, "/documents", "", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocument fetches a document with full file content.
func (a *API) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := a.do(ctx, http.MethodGet, "/documents/"+id, id, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument replaces the content of the given files.
func (a *API) UpdateDocument(ctx context.Context, id string, files map[string]string) (*Document, error) {
	var doc Document
	if err := a.do(ctx, http.MethodPatch, "/documents/"+id, id, updateRequest{Files: toFiles(files)}, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func toFiles(files map[string]string) map[string]File {
	out := make(map[string]File, len(files))
	for name, content := range files {
		out[name] = File{Content: content}
	}
	return out
}

// do sends one request. id is only used to fill NotFoundError.
func (a *API) do(ctx context.Context, method, path, id string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gist: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gist: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &SyncError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &SyncError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cause := fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Status: resp.StatusCode, Err: cause}
		case http.StatusNotFound, http.StatusGone:
			return &NotFoundError{ID: id, Status: resp.StatusCode, Err: cause}
		default:
			return &SyncError{Status: resp.StatusCode, Err: cause}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &SyncError{Status: resp.StatusCode, Err: fmt.Errorf("decode %s %s: %w", method, path, err)}
	}
	return nil
}
