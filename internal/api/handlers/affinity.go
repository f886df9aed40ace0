package handlers

import (
	"net/http"

	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/ports"
)

type AffinityHandler struct {
	Repo ports.AffinityRepository
}

func (h *AffinityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.Repo == nil {
		writeError(w, r, http.StatusServiceUnavailable, "affinity store is not configured")
		return
	}

	stats, err := h.Repo.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListAffinityStatsResponse{Stats: make([]dto.AffinityStatResponse, 0, len(stats))}
	for _, s := range stats {
		res.Stats = append(res.Stats, dto.AffinityStatResponse{
			DriverName: s.DriverName,
			VIN:        s.VIN,
			Count:      s.Count,
			LastUsed:   s.LastUsed,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}
