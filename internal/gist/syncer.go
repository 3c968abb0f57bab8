package gist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/claude/liftlog/internal/kvstore"
	"github.com/claude/liftlog/internal/models"
)

const (
	// Description identifies the app's document among the user's documents.
	Description = "LiftLog Workout Data"
	// FileName is the file inside the document holding the JSON dataset.
	FileName = "liftlog-data.json"

	// KeyToken and KeyDocumentID hold cached credentials in the kv store.
	KeyToken      = "gistToken"
	KeyDocumentID = "gistId"
)

// Action is the outcome of one Sync call.
type Action string

const (
	ActionCreated    Action = "created"
	ActionUploaded   Action = "uploaded"
	ActionDownloaded Action = "downloaded"
	ActionSynced     Action = "synced"
)

// Result is returned by Sync. Data is the remote document for
// ActionDownloaded and the (stamped) local document otherwise.
type Result struct {
	Action Action
	Data   *models.SyncDocument
}

// Syncer reconciles a local SyncDocument with one remote document.
// Only one Sync runs at a time; overlapping calls get ErrSyncInProgress.
type Syncer struct {
	api *API
	kv  kvstore.Store
	log *slog.Logger
	now func() time.Time

	inFlight atomic.Bool

	mu         sync.Mutex
	token      string
	docID      string
	lastPushed string
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClock overrides the clock used to stamp lastSync.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// NewSyncer creates a Syncer and restores the cached token and document ID.
func NewSyncer(api *API, kv kvstore.Store, log *slog.Logger, opts ...Option) *Syncer {
	s := &Syncer{api: api, kv: kv, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}

	var err error
	if s.token, err = kvstore.GetString(kv, KeyToken); err != nil {
		log.Warn("reading cached token", "error", err)
	}
	if s.docID, err = kvstore.GetString(kv, KeyDocumentID); err != nil {
		log.Warn("reading cached document id", "error", err)
	}
	api.SetToken(s.token)
	return s
}

// SetToken stores a new bearer token. The cached document ID is kept and
// re-verified on the next sync.
func (s *Syncer) SetToken(token string) error {
	if token == "" {
		return &AuthError{Err: errNoToken}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	s.token = token
	s.api.SetToken(token)
	return nil
}

// HasToken reports whether a bearer token is stored.
func (s *Syncer) HasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// IsConnected reports whether the client holds credentials for the store.
func (s *Syncer) IsConnected() bool {
	return s.HasToken()
}

// DocumentID returns the cached remote document ID ("" when unknown).
func (s *Syncer) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docID
}

// Disconnect forgets the token, the document ID and the push fingerprint.
func (s *Syncer) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.docID, s.lastPushed = "", "", ""
	s.api.SetToken("")
	var errs []error
	for _, k := range []string{KeyToken, KeyDocumentID} {
		if err := s.kv.Remove(k); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Initialize verifies the token and locates the remote document: the cached
// ID if it still resolves, else a document with Description, else a new
// document seeded with local. created is true only in the last case, where
// local has already been uploaded and stamped.
func (s *Syncer) Initialize(ctx context.Context, local *models.SyncDocument) (created bool, err error) {
	if !s.HasToken() {
		return false, &AuthError{Err: errNoToken}
	}
	user, err := s.api.VerifyToken(ctx)
	if err != nil {
		return false, err
	}
	s.log.Debug("token verified", "login", user.Login)

	if id := s.DocumentID(); id != "" {
		_, err := s.api.GetDocument(ctx, id)
		if err == nil {
			return false, nil
		}
		if IsAuth(err) {
			return false, err
		}
		s.log.Warn("cached document unavailable, searching", "id", id, "error", err)
		s.setDocumentID("")
	}

	docs, err := s.api.ListDocuments(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if d.Description == Description {
			s.log.Info("found existing document", "id", d.ID)
			s.setDocumentID(d.ID)
			return false, nil
		}
	}

	if local == nil {
		return false, &ValidationError{Reason: "no local data to seed a new document"}
	}
	local.Normalize()
	local.LastSync = models.FormatTimestamp(s.now())
	content, err := encode(local)
	if err != nil {
		return false, err
	}
	doc, err := s.api.CreateDocument(ctx, Description, map[string]string{FileName: content})
	if err != nil {
		return false, err
	}
	s.log.Info("created document", "id", doc.ID)
	s.setDocumentID(doc.ID)
	s.setFingerprint(content)
	return true, nil
}

// Sync reconciles local with the remote document. On ActionUploaded and
// ActionCreated local.LastSync is stamped in place. On ActionDownloaded the
// caller must replace its local state with Result.Data.
func (s *Syncer) Sync(ctx context.Context, local *models.SyncDocument) (Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	if local == nil {
		return Result{}, &ValidationError{Reason: "nil local document"}
	}
	local.Normalize()

	if s.DocumentID() == "" {
		created, err := s.Initialize(ctx, local)
		if err != nil {
			return Result{}, err
		}
		if created {
			return Result{Action: ActionCreated, Data: local}, nil
		}
	}

	remote, err := s.Pull(ctx)
	if err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return Result{}, err
		}
		s.log.Warn("remote document invalid, uploading local data", "error", err)
		if err := s.Push(ctx, local); err != nil {
			return Result{}, err
		}
		return Result{Action: ActionUploaded, Data: local}, nil
	}

	localTime, remoteTime := local.LastSyncTime(), remote.LastSyncTime()
	switch {
	case remoteTime.After(localTime):
		return Result{Action: ActionDownloaded, Data: remote}, nil
	case localTime.After(remoteTime) || s.changed(local):
		if err := s.Push(ctx, local); err != nil {
			return Result{}, err
		}
		return Result{Action: ActionUploaded, Data: local}, nil
	default:
		return Result{Action: ActionSynced, Data: local}, nil
	}
}

// Push stamps doc.LastSync with the current time and replaces the remote
// file content with doc.
func (s *Syncer) Push(ctx context.Context, doc *models.SyncDocument) error {
	id := s.DocumentID()
	if id == "" {
		return &NotFoundError{Err: errors.New("no document id cached")}
	}
	doc.Normalize()
	doc.LastSync = models.FormatTimestamp(s.now())
	content, err := encode(doc)
	if err != nil {
		return err
	}
	if _, err := s.api.UpdateDocument(ctx, id, map[string]string{FileName: content}); err != nil {
		if IsNotFound(err) {
			s.setDocumentID("")
		}
		return err
	}
	s.setFingerprint(content)
	s.log.Debug("pushed document", "id", id, "last_sync", doc.LastSync)
	return nil
}

// Pull fetches and decodes the remote document. A vanished document clears
// the cached ID and returns NotFoundError.
func (s *Syncer) Pull(ctx context.Context) (*models.SyncDocument, error) {
	id := s.DocumentID()
	if id == "" {
		return nil, &NotFoundError{Err: errors.New("no document id cached")}
	}
	doc, err := s.api.GetDocument(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			s.setDocumentID("")
		}
		return nil, err
	}

	f, ok := doc.Files[FileName]
	if !ok {
		return nil, &ValidationError{Reason: "missing file " + FileName}
	}
	remote, err := decode(f.Content)
	if err != nil {
		return nil, err
	}
	content, err := encode(remote)
	if err != nil {
		return nil, &ValidationError{Reason: "content cannot be re-encoded", Err: err}
	}
	s.setFingerprint(content)
	return remote, nil
}

// changed reports whether local differs from the last pushed or pulled content.
func (s *Syncer) changed(local *models.SyncDocument) bool {
	content, err := encode(local)
	if err != nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return content != s.lastPushed
}

func (s *Syncer) setDocumentID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docID = id
	var err error
	if id == "" {
		err = s.kv.Remove(KeyDocumentID)
	} else {
		err = s.kv.Set(KeyDocumentID, []byte(id))
	}
	if err != nil {
		s.log.Error("caching document id", "error", err)
	}
}

func (s *Syncer) setFingerprint(content string) {
	s.mu.Lock()
	s.lastPushed = content
	s.mu.Unlock()
}

// encode is the canonical serialization used both on the wire and as the
// change fingerprint. Field order follows the SyncDocument struct.
func encode(doc *models.SyncDocument) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("gist: encode document: %w", err)
	}
	return string(data), nil
}

func decode(content string) (*models.SyncDocument, error) {
	var doc models.SyncDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, &ValidationError{Reason: "content is not a sync document", Err: err}
	}
	if doc.Version == "" {
		return nil, &ValidationError{Reason: "missing version"}
	}
	if doc.Workouts == nil {
		return nil, &ValidationError{Reason: "missing workouts"}
	}
	doc.Normalize()
	return &doc, nil
}
