package handlers

import (
	"net/http"

	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/services"
)

type CycleHandler struct {
	Registry   *services.CycleRegistry
	AllowReset bool
}

// Cycles lists cycle IDs on GET and opens a fresh cycle on POST.
func (h *CycleHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, r, http.StatusOK, dto.ListCyclesResponse{CycleIDs: h.Registry.IDs()})
	case http.MethodPost:
		c := h.Registry.Create()
		w.Header().Set(CycleHeader, c.ID())
		writeJSON(w, r, http.StatusCreated, dto.CycleResponse{CycleID: c.ID()})
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *CycleHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toStatus(c.Status()))
}

// Reset clears the selected cycle. Non-default cycles are discarded entirely.
func (h *CycleHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if !h.AllowReset {
		writeError(w, r, http.StatusForbidden, "reset is disabled")
		return
	}
	if err := h.Registry.Remove(r.Header.Get(CycleHeader)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
}
