package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health check endpoint
type HealthHandler struct {
	logger *slog.Logger
	checks map[string]HealthCheck
}

// NewHealthHandler creates a new health handler. Checks are optional.
func NewHealthHandler(logger *slog.Logger, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		checks: checks,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}
	status := http.StatusOK

	if len(h.checks) > 0 {
		response.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				h.logger.Warn("health check failed", "check", name, "error", err)
				response.Checks[name] = "unhealthy"
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Checks[name] = "ok"
		}
	}

	WriteJSON(w, status, response, h.logger)
}
