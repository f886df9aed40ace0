package dto

import "time"

type ViolationResponse struct {
	RouteCode    string     `json:"route_code"`
	VIN          string     `json:"vin"`
	Kind         string     `json:"kind"`
	Detail       string     `json:"detail"`
	Authorized   bool       `json:"authorized"`
	Reason       string     `json:"reason,omitempty"`
	AuthorizedAt *time.Time `json:"authorized_at,omitempty"`
}

type AssignmentResponse struct {
	RouteCode            string              `json:"route_code"`
	VIN                  string              `json:"vin,omitempty"`
	VehicleName          string              `json:"vehicle_name,omitempty"`
	RequestedServiceType string              `json:"requested_service_type"`
	AssignedServiceType  string              `json:"assigned_service_type,omitempty"`
	DriverName           string              `json:"driver_name,omitempty"`
	Status               string              `json:"status"`
	Violations           []ViolationResponse `json:"violations"`
	Warnings             []string            `json:"warnings"`
	FallbackUsed         bool                `json:"fallback_used"`
	AffinityUsed         bool                `json:"affinity_used"`
}

type VehicleOptionResponse struct {
	VIN         string `json:"vin"`
	Name        string `json:"name"`
	ServiceType string `json:"service_type"`
	Electric    bool   `json:"electric"`
}

type FailedRouteResponse struct {
	RouteCode        string                  `json:"route_code"`
	ServiceType      string                  `json:"service_type"`
	Status           string                  `json:"status"`
	Reason           string                  `json:"reason"`
	Violations       []ViolationResponse     `json:"violations"`
	EligibleVehicles []VehicleOptionResponse `json:"eligible_vehicles"`
}

type AssignResponse struct {
	Assignments   []AssignmentResponse  `json:"assignments"`
	AssignedCount int                   `json:"assigned_count"`
	TotalRoutes   int                   `json:"total_routes"`
	SuccessRate   float64               `json:"success_rate"`
	FallbacksUsed int                   `json:"fallbacks_used"`
	FailedRoutes  []FailedRouteResponse `json:"failed_routes"`
}

type ListAssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

type ManualAssignRequest struct {
	RouteCode string `json:"route_code"`
	VIN       string `json:"vin"`
}

type ManualAssignResponse struct {
	Assignment AssignmentResponse  `json:"assignment"`
	Violations []ViolationResponse `json:"violations"`
	Warnings   []string            `json:"warnings"`
}

type HistoryEntryResponse struct {
	RouteCode   string    `json:"route_code"`
	VIN         string    `json:"vin,omitempty"`
	ServiceType string    `json:"service_type"`
	DriverName  string    `json:"driver_name,omitempty"`
	Status      string    `json:"status"`
	AssignedAt  time.Time `json:"assigned_at"`
}

type ListHistoryResponse struct {
	CycleID string                 `json:"cycle_id"`
	Entries []HistoryEntryResponse `json:"entries"`
}
