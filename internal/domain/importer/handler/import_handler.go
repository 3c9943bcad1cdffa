// Package handler exposes the bulk-import pipeline over HTTP for the
// browser wizard.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enrollhub/onboarding-api/internal/domain/importer/matcher"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/session"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/validator"
	"github.com/enrollhub/onboarding-api/internal/domain/schema"
	"github.com/enrollhub/onboarding-api/internal/domain/wizard"
	"github.com/enrollhub/onboarding-api/pkg/storage"
)

// maxUploadBytes bounds a single wizard upload. The whole dataset is held
// in memory and reviewed by a human, so this is generous already.
const maxUploadBytes = 32 << 20

// ImportHandler serves the import session endpoints.
type ImportHandler struct {
	store       *SessionStore
	coordinator *wizard.Coordinator
	archive     storage.Archive
	logger      *slog.Logger
}

// NewImportHandler creates the import HTTP handler.
func NewImportHandler(store *SessionStore, coordinator *wizard.Coordinator, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{store: store, coordinator: coordinator, logger: logger}
}

// WithArchive enables raw upload archival.
func (h *ImportHandler) WithArchive(archive storage.Archive) *ImportHandler {
	h.archive = archive
	return h
}

// Routes mounts the import endpoints on a chi router.
func (h *ImportHandler) Routes(r chi.Router) {
	r.Post("/import/{profile}/file", h.UploadFile)
	r.Get("/import/sessions/{id}", h.GetSession)
	r.Post("/import/sessions/{id}/mappings", h.AddMapping)
	r.Put("/import/sessions/{id}/mappings/{index}", h.EditMapping)
	r.Delete("/import/sessions/{id}/mappings/{index}", h.DeleteMapping)
	r.Post("/import/sessions/{id}/rows/{index}/toggle", h.ToggleRow)
	r.Post("/import/sessions/{id}/exclude-invalid", h.ToggleExcludeInvalid)
	r.Post("/import/sessions/{id}/preview", h.RequestPreview)
	r.Post("/import/sessions/{id}/commit", h.Commit)
}

type sessionResponse struct {
	ID                uuid.UUID               `json:"id"`
	Profile           schema.ProfileID        `json:"profile"`
	FileName          string                  `json:"file_name"`
	Headers           []string                `json:"headers"`
	RowCount          int                     `json:"row_count"`
	Mappings          []matcher.ColumnMapping `json:"mappings"`
	RowStates         []validator.RowState    `json:"row_states"`
	Issues            []validator.Issue       `json:"issues"`
	ExcludeAllInvalid bool                    `json:"exclude_all_invalid"`
}

func snapshot(sess *session.Session) sessionResponse {
	return sessionResponse{
		ID:                sess.ID,
		Profile:           sess.Profile.ID,
		FileName:          sess.FileName,
		Headers:           sess.Headers,
		RowCount:          len(sess.Rows),
		Mappings:          sess.Mappings,
		RowStates:         sess.RowStates,
		Issues:            sess.Issues,
		ExcludeAllInvalid: sess.ExcludeAllInvalid,
	}
}

// UploadFile starts a new import session from a multipart upload. A parse
// failure still creates the session so the client can render the issue, but
// responds 422.
func (h *ImportHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	profileID := schema.ProfileID(chi.URLParam(r, "profile"))
	profile, err := schema.Get(profileID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	uploadsTotal.WithLabelValues(string(profileID)).Inc()

	if h.archive != nil {
		if _, err := h.archive.Save(r.Context(), string(profileID), header.Filename, bytes.NewReader(data)); err != nil {
			h.logger.Warn("failed to archive upload", "file", header.Filename, "error", err)
		}
	}

	sess := session.New(profile)
	loadErr := sess.LoadFile(header.Filename, data)
	h.store.Put(sess)

	if loadErr != nil {
		parseFailures.Inc()
		h.logger.Warn("upload rejected at parse",
			"profile", profileID, "file", header.Filename, "error", loadErr)
		writeJSON(w, http.StatusUnprocessableEntity, snapshot(sess))
		return
	}

	writeJSON(w, http.StatusCreated, snapshot(sess))
}

// GetSession returns the current session snapshot.
func (h *ImportHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// AddMapping appends a default manual mapping.
func (h *ImportHandler) AddMapping(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.AddMapping(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

type editMappingRequest struct {
	SourceColumn string `json:"source_column"`
	TargetField  string `json:"target_field"`
}

// EditMapping replaces the mapping at the given index with a manual one.
func (h *ImportHandler) EditMapping(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	var req editMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.EditMapping(index, req.SourceColumn, req.TargetField); err != nil {
		var mappingErr *session.MappingError
		if errors.As(err, &mappingErr) {
			writeError(w, http.StatusUnprocessableEntity, mappingErr.Message)
			return
		}
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// DeleteMapping removes a mapping without re-validating rows.
func (h *ImportHandler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.DeleteMapping(index); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// ToggleRow flips one row's exclusion flag.
func (h *ImportHandler) ToggleRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.ToggleRowExclusion(index); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// ToggleExcludeInvalid flips the bulk exclude-all-invalid toggle.
func (h *ImportHandler) ToggleExcludeInvalid(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	sess.ToggleExcludeAllInvalid()
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// RequestPreview gates the preview transition on mapping completeness.
func (h *ImportHandler) RequestPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if issue := sess.RequestPreview(); issue != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"issue": issue})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Commit transforms the included rows, hands them to the wizard step, and
// drops the session.
func (h *ImportHandler) Commit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if issue := sess.RequestPreview(); issue != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"issue": issue})
		return
	}

	records := sess.Commit()
	if err := h.coordinator.CompleteStep(sess.Profile.ID, records); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rowsCommitted.WithLabelValues(string(sess.Profile.ID)).Add(float64(len(records)))
	h.store.Delete(sess.ID)
	h.logger.Info("import committed",
		"profile", sess.Profile.ID, "records", len(records), "session", sess.ID)

	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *ImportHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	sess, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (h *ImportHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return 0, false
	}
	return index, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
