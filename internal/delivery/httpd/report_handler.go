package httpd

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openlms/plagiarism-service/internal/service"
)

// GetAssignmentReport returns the stored report for one assignment. The
// threshold query parameter filters the listed matches only; the counters in
// the report ignore it.
func (h *Handler) GetAssignmentReport(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignment_id")
	threshold := getFloatQueryParam(r, "threshold", h.defaultThreshold)

	report, err := h.reportService.GetAssignmentReport(r.Context(), assignmentID, threshold)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAssignmentID) {
			writeError(w, http.StatusBadRequest, "Invalid assignment id")
			return
		}

		h.logger.Error().Err(err).Str("assignment_id", assignmentID).Msg("Failed to build plagiarism report")
		writeError(w, http.StatusInternalServerError, "Failed to build plagiarism report")
		return
	}

	writeSuccess(w, report)
}

func (h *Handler) GetSubmissionMatches(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")

	matches, err := h.reportService.GetSubmissionMatches(r.Context(), submissionID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubmissionID) {
			writeError(w, http.StatusBadRequest, "Invalid submission id")
			return
		}

		h.logger.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to load submission matches")
		writeError(w, http.StatusInternalServerError, "Failed to load submission matches")
		return
	}

	writeSuccess(w, matches)
}
