package handlers

import (
	"context"
	"net/http"
	"time"
)

type HealthHandler struct {
	// Ping checks the backing store; nil means there is none.
	Ping func(ctx context.Context) error
}

// Health reports liveness and, when a store is configured, its reachability.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
