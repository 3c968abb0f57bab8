package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// fileJSON is one file in a document response or request.
type fileJSON struct {
	Filename string  `json:"filename,omitempty"`
	Size     int     `json:"size"`
	Content  *string `json:"content,omitempty"`
}

// documentJSON is the wire shape of a document.
type documentJSON struct {
	ID          string              `json:"id"`
	Owner       string              `json:"owner"`
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]fileJSON `json:"files"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

type fileInput struct {
	Content string `json:"content"`
}

type createInput struct {
	Description string               `json:"description"`
	Public      bool                 `json:"public"`
	Files       map[string]fileInput `json:"files"`
}

type updateInput struct {
	Files map[string]fileInput `json:"files"`
}

func toDocumentJSON(d *storage.Document, withContent bool) documentJSON {
	out := documentJSON{
		ID:          d.ID,
		Owner:       d.Owner,
		Description: d.Description,
		Public:      d.Public,
		Files:       make(map[string]fileJSON, len(d.Files)),
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for name, content := range d.Files {
		f := fileJSON{Filename: name, Size: len(content)}
		if withContent {
			c := content
			f.Content = &c
		}
		out.Files[name] = f
	}
	return out
}

func flattenFiles(in map[string]fileInput) map[string]string {
	out := make(map[string]string, len(in))
	for name, f := range in {
		out[name] = f.Content
	}
	return out
}

func errorBody(msg string) map[string]string {
	return map[string]string{"message": msg}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context(), userInfoFromContext(r).Login)
	if err != nil {
		s.log.Error("listing documents", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UpdatedAt.After(docs[j].UpdatedAt) })

	out := make([]documentJSON, len(docs))
	for i := range docs {
		out[i] = toDocumentJSON(&docs[i], false)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Problems parsing JSON"))
		return
	}
	if len(in.Files) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("files are required"))
		return
	}

	d, err := s.store.Create(r.Context(), userInfoFromContext(r).Login, in.Description, in.Public, flattenFiles(in.Files))
	if err != nil {
		s.log.Error("creating document", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	if s.metrics != nil {
		s.metrics.CounterDocumentsCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, toDocumentJSON(d, true))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), userInfoFromContext(r).Login, chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("Not Found"))
		return
	}
	if err != nil {
		s.log.Error("getting document", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, toDocumentJSON(d, true))
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var in updateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Problems parsing JSON"))
		return
	}
	if len(in.Files) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("files are required"))
		return
	}

	d, err := s.store.Update(r.Context(), userInfoFromContext(r).Login, chi.URLParam(r, "id"), flattenFiles(in.Files))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("Not Found"))
		return
	}
	if err != nil {
		s.log.Error("updating document", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	if s.metrics != nil {
		s.metrics.CounterDocumentsUpdated.Inc()
	}
	writeJSON(w, http.StatusOK, toDocumentJSON(d, true))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
