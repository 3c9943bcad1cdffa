// Package handler exposes the wizard finalization endpoint.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/enrollhub/onboarding-api/internal/domain/wizard"
)

// WizardHandler serves the final submission step of the onboarding wizard.
type WizardHandler struct {
	coordinator *wizard.Coordinator
	logger      *slog.Logger
}

// NewWizardHandler creates the wizard HTTP handler.
func NewWizardHandler(coordinator *wizard.Coordinator, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{coordinator: coordinator, logger: logger}
}

// Routes mounts the wizard endpoints on a chi router.
func (h *WizardHandler) Routes(r chi.Router) {
	r.Post("/wizard/submit", h.Submit)
	r.Get("/wizard/collections", h.Collections)
}

// Submit persists every collected record in dependency order. Inserts made
// before a failure are kept; the response reports how far submission got.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	result := h.coordinator.Submit(r.Context())
	if result.Failed {
		h.logger.Error("wizard submission failed",
			"inserted", result.Inserted, "error", result.Error)
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}

	h.logger.Info("wizard submission complete", "inserted", result.Inserted)
	writeJSON(w, http.StatusOK, result)
}

// Collections reports how many records each wizard step has staged so far.
func (h *WizardHandler) Collections(w http.ResponseWriter, r *http.Request) {
	c := h.coordinator.Collections()
	writeJSON(w, http.StatusOK, map[string]int{
		"districts":   len(c.Districts),
		"schools":     len(c.Schools),
		"staff":       len(c.Staff),
		"students":    len(c.Students),
		"classrooms":  len(c.Classrooms),
		"enrollments": len(c.Enrollments),
		"attendance":  len(c.Attendance),
		"assessments": len(c.Assessments),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
