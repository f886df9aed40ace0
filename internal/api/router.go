package api

import (
	"context"
	"net/http"

	"route-assignment-service/internal/api/handlers"
	"route-assignment-service/internal/ports"
	"route-assignment-service/internal/services"
)

// Deps are the collaborators of the HTTP API. Affinity, History and Ping may be nil.
type Deps struct {
	Registry   *services.CycleRegistry
	Affinity   ports.AffinityRepository
	History    ports.AssignmentRepository
	Ping       func(ctx context.Context) error
	AllowReset bool
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{Ping: d.Ping}
	cycles := &handlers.CycleHandler{Registry: d.Registry, AllowReset: d.AllowReset}
	uploads := &handlers.UploadHandler{Registry: d.Registry}
	assignments := &handlers.AssignmentHandler{Registry: d.Registry, HistoryRepo: d.History}
	violations := &handlers.ViolationHandler{Registry: d.Registry}
	affinity := &handlers.AffinityHandler{Repo: d.Affinity}

	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/cycles", cycles.Cycles)
	mux.HandleFunc("/status", cycles.Status)
	mux.HandleFunc("/reset", cycles.Reset)

	mux.HandleFunc("/uploads/dop", uploads.RoutePlan)
	mux.HandleFunc("/uploads/fleet", uploads.Fleet)
	mux.HandleFunc("/uploads/cortex", uploads.DriverAssignments)
	mux.HandleFunc("/uploads/route-sheets", uploads.LoadManifests)

	mux.HandleFunc("/assign-vehicles", assignments.Assign)
	mux.HandleFunc("/assignments", assignments.List)
	mux.HandleFunc("/assignments/manual", assignments.Manual)
	mux.HandleFunc("/assignments/history", assignments.History)

	mux.HandleFunc("/violations", violations.List)
	mux.HandleFunc("/violations/authorize", violations.Authorize)
	mux.HandleFunc("/violations/reject", violations.Reject)

	mux.HandleFunc("/affinity-stats", affinity.Stats)

	return requestIDMiddleware(loggingMiddleware(mux))
}
