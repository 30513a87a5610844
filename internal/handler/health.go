package handler

import (
	"net/http"
)

// ReadinessCheck reports whether a dependency is usable. An empty reason
// means ready.
type ReadinessCheck func() (ready bool, reason string)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checks []ReadinessCheck
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		checks: checks,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.checks {
		if ready, reason := check(); !ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": reason,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
