package httpd

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlms/plagiarism-service/internal/repository"
	"github.com/openlms/plagiarism-service/internal/service"
	"github.com/openlms/plagiarism-service/internal/worker"
)

type Handler struct {
	checkService     service.CheckService
	reportService    service.ReportService
	matchRepo        repository.MatchRepository
	rabbitRepo       repository.RabbitMQRepository
	checkWorker      worker.CheckWorker
	defaultThreshold float64
	logger           zerolog.Logger
}

func NewHandler(
	checkService service.CheckService,
	reportService service.ReportService,
	matchRepo repository.MatchRepository,
	rabbitRepo repository.RabbitMQRepository,
	checkWorker worker.CheckWorker,
	defaultThreshold float64,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		checkService:     checkService,
		reportService:    reportService,
		matchRepo:        matchRepo,
		rabbitRepo:       rabbitRepo,
		checkWorker:      checkWorker,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	// Health check
	router.Get("/health", h.HealthCheck)
	router.Get("/status", h.GetServiceStatus)

	// Versioned API
	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/assignments/{assignment_id}", func(r chi.Router) {
			r.Post("/plagiarism-check", h.TriggerCheck)
			r.Get("/plagiarism-report", h.GetAssignmentReport)
		})

		api.Get("/submissions/{submission_id}/plagiarism-report", h.GetSubmissionMatches)
	})
}

func getFloatQueryParam(r *http.Request, key string, defaultValue float64) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
