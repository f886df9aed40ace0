package handlers

import (
	"net/http"

	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/ports"
	"route-assignment-service/internal/services"
)

type AssignmentHandler struct {
	Registry *services.CycleRegistry
	// HistoryRepo may be nil when nothing is persisted.
	HistoryRepo ports.AssignmentRepository
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}

	res, err := c.AssignVehicles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toAssignResponse(res))
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ListAssignmentsResponse{Assignments: toAssignments(c.Assignments())})
}

func (h *AssignmentHandler) Manual(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}

	var req dto.ManualAssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RouteCode == "" || req.VIN == "" {
		writeError(w, r, http.StatusBadRequest, "route_code and vin are required")
		return
	}

	res, err := c.ManualAssign(r.Context(), req.RouteCode, req.VIN)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ManualAssignResponse{
		Assignment: toAssignment(res.Assignment),
		Violations: toViolations(res.Violations),
		Warnings:   nonNil(res.Warnings),
	})
}

// History lists what was persisted for the selected cycle.
func (h *AssignmentHandler) History(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.HistoryRepo == nil {
		writeError(w, r, http.StatusServiceUnavailable, "assignment history is not configured")
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}

	entries, err := h.HistoryRepo.ListAssignments(r.Context(), c.ID())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListHistoryResponse{CycleID: c.ID(), Entries: make([]dto.HistoryEntryResponse, 0, len(entries))}
	for _, e := range entries {
		res.Entries = append(res.Entries, dto.HistoryEntryResponse{
			RouteCode:   e.RouteCode,
			VIN:         e.VIN,
			ServiceType: e.ServiceType,
			DriverName:  e.DriverName,
			Status:      string(e.Status),
			AssignedAt:  e.AssignedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}
