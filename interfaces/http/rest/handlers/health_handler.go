package handlers

import (
	"context"
	"net/http"
	"time"

	"insights-backend/application/ports"
	"insights-backend/pkg/common"

	"go.uber.org/zap"
)

const readinessTimeout = 3 * time.Second

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	checks map[string]ports.HealthChecker
	logger *zap.Logger
}

// NewHealthHandler creates a health handler. Nil checkers are skipped.
func NewHealthHandler(checks map[string]ports.HealthChecker, logger *zap.Logger) *HealthHandler {
	active := make(map[string]ports.HealthChecker, len(checks))
	for name, check := range checks {
		if check != nil {
			active[name] = check
		}
	}
	return &HealthHandler{checks: active, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready handles GET /ready. Every dependency is probed; any failure makes
// the service not ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			status[name] = "unavailable"
			ready = false
			continue
		}
		status[name] = "ok"
	}

	code := http.StatusOK
	overall := "ready"
	if !ready {
		code = http.StatusServiceUnavailable
		overall = "not_ready"
	}
	common.RespondJSON(w, code, map[string]interface{}{
		"status":       overall,
		"dependencies": status,
	})
}
