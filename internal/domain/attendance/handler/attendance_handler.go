// Package handler exposes the attendance bulk importer over HTTP.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/enrollhub/onboarding-api/internal/domain/attendance"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/parser"
	"github.com/enrollhub/onboarding-api/internal/domain/wizard"
	"github.com/enrollhub/onboarding-api/pkg/storage"
)

const maxUploadBytes = 32 << 20

// AttendanceHandler serves the all-or-nothing attendance import endpoint.
type AttendanceHandler struct {
	importer    *attendance.Importer
	coordinator *wizard.Coordinator
	archive     storage.Archive
	logger      *slog.Logger
}

// NewAttendanceHandler creates the attendance HTTP handler.
func NewAttendanceHandler(importer *attendance.Importer, coordinator *wizard.Coordinator, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{importer: importer, coordinator: coordinator, logger: logger}
}

// WithArchive enables raw upload archival.
func (h *AttendanceHandler) WithArchive(archive storage.Archive) *AttendanceHandler {
	h.archive = archive
	return h
}

// Routes mounts the attendance endpoints on a chi router.
func (h *AttendanceHandler) Routes(r chi.Router) {
	r.Post("/attendance/import", h.Import)
}

// Import parses the uploaded sheet, runs the domain importer, and either
// finalizes the whole batch or rejects it with the first row errors.
func (h *AttendanceHandler) Import(w http.ResponseWriter, r *http.Request) {
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

	if h.archive != nil {
		if _, err := h.archive.Save(r.Context(), "attendance", header.Filename, bytes.NewReader(data)); err != nil {
			h.logger.Warn("failed to archive upload", "file", header.Filename, "error", err)
		}
	}

	grid, err := parser.SheetGrid(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	records, err := h.importer.Import(r.Context(), grid)
	if err != nil {
		var batchErr *attendance.BatchError
		if errors.As(err, &batchErr) {
			h.logger.Warn("attendance batch rejected",
				"file", header.Filename, "failed_rows", batchErr.Total)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"rejected":    true,
				"failed_rows": batchErr.Total,
				"errors":      batchErr.Errors,
			})
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.coordinator.CompleteAttendanceImport(records)
	h.logger.Info("attendance batch accepted",
		"file", header.Filename, "records", len(records))

	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
