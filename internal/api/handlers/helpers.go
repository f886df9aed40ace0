package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/services"
)

// CycleHeader selects the cycle a request works on; absent means the default cycle.
const CycleHeader = "X-Cycle-ID"

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.L().Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// allowMethod answers 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeJSON reads exactly one JSON object into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func cycleFor(w http.ResponseWriter, r *http.Request, reg *services.CycleRegistry) (*services.Cycle, bool) {
	c, err := reg.Get(r.Header.Get(CycleHeader))
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return c, true
}

// writeServiceError maps service sentinels onto HTTP statuses. Unknown errors
// are logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnknownCycle),
		errors.Is(err, services.ErrUnknownRoute),
		errors.Is(err, services.ErrUnknownVehicle):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNoInput),
		errors.Is(err, services.ErrReasonRequired):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotReady),
		errors.Is(err, services.ErrVehicleInUse),
		errors.Is(err, services.ErrNoPendingViolation),
		errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		obs.L().Error("request failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, status, "internal server error")
		return
	}
	writeError(w, r, status, err.Error())
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
