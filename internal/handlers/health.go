package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports backing-store connectivity for readiness probes.
type Pinger func(ctx context.Context) error

// HealthHandlers serves liveness and readiness endpoints.
type HealthHandlers struct {
	started time.Time
	ping    Pinger
}

// NewHealthHandlers constructs health handlers. A nil pinger makes the
// readiness probe unconditionally healthy.
func NewHealthHandlers(ping Pinger) *HealthHandlers {
	return &HealthHandlers{
		started: time.Now(),
		ping:    ping,
	}
}

// Healthz reports process liveness with uptime.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the backing database accepts connections.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			writeJSONResponse(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ready"})
}
