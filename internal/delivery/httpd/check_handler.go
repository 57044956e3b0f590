package httpd

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openlms/plagiarism-service/internal/models"
	"github.com/openlms/plagiarism-service/internal/service"
)

// TriggerCheck schedules a full recompute for one assignment and returns
// immediately. The caller polls the report endpoint for the outcome.
func (h *Handler) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignment_id")
	requestedBy := r.Header.Get("X-User-ID")

	if err := h.checkService.ScheduleCheck(r.Context(), assignmentID, requestedBy); err != nil {
		if errors.Is(err, service.ErrInvalidAssignmentID) {
			writeError(w, http.StatusBadRequest, "Invalid assignment id")
			return
		}

		h.logger.Error().Err(err).Str("assignment_id", assignmentID).Msg("Failed to schedule plagiarism check")
		writeError(w, http.StatusInternalServerError, "Failed to schedule plagiarism check")
		return
	}

	writeJSON(w, http.StatusAccepted, models.TriggerCheckResponse{
		Message:      "Plagiarism check scheduled",
		AssignmentID: assignmentID,
	})
}
