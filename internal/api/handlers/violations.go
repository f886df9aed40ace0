package handlers

import (
	"context"
	"net/http"

	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/normalize"
	"route-assignment-service/internal/services"
)

type ViolationHandler struct {
	Registry *services.CycleRegistry
}

func (h *ViolationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}

	vl := c.ListViolations()
	writeJSON(w, r, http.StatusOK, dto.ListViolationsResponse{
		Pending:    toViolations(vl.Pending),
		Authorized: toViolations(vl.Authorized),
	})
}

func (h *ViolationHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "authorized", (*services.Cycle).AuthorizeViolation)
}

func (h *ViolationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "rejected", (*services.Cycle).RejectViolation)
}

func (h *ViolationHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	outcome string,
	apply func(*services.Cycle, context.Context, string, string, string) error,
) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}

	var req dto.ViolationDecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RouteCode == "" || req.VIN == "" {
		writeError(w, r, http.StatusBadRequest, "route_code and vin are required")
		return
	}

	if err := apply(c, r.Context(), req.RouteCode, req.VIN, req.Reason); err != nil {
		writeServiceError(w, r, err)
		return
	}

	code := normalize.NormalizeRouteCode(req.RouteCode)
	for _, a := range c.Assignments() {
		if a.RouteCode == code {
			writeJSON(w, r, http.StatusOK, map[string]any{"status": outcome, "assignment": toAssignment(a)})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"status": outcome})
}
