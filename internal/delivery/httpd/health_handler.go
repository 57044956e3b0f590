package httpd

import (
	"net/http"
	"time"

	"github.com/openlms/plagiarism-service/internal/models"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "plagiarism-service",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}

	writeJSON(w, http.StatusOK, response)
}

// GetServiceStatus reports dependency health and worker load. Degraded
// dependencies flip the status but the endpoint still answers 200 so probes
// can read the detail.
func (h *Handler) GetServiceStatus(w http.ResponseWriter, r *http.Request) {
	stats := h.checkWorker.GetStats()

	status := models.HealthCheckResponse{
		Status:        "healthy",
		Database:      h.matchRepo.Ping(r.Context()) == nil,
		RabbitMQ:      !h.rabbitRepo.IsClosed(),
		ActiveWorkers: stats.ActiveWorkers,
		QueueLength:   stats.QueueLength,
		Timestamp:     time.Now().UTC(),
	}

	if !status.Database || !status.RabbitMQ {
		status.Status = "degraded"
	}

	writeSuccess(w, status)
}
