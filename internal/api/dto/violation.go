package dto

import "time"

type ViolationDecisionRequest struct {
	RouteCode string `json:"route_code"`
	VIN       string `json:"vin"`
	Reason    string `json:"reason"`
}

type ListViolationsResponse struct {
	Pending    []ViolationResponse `json:"pending"`
	Authorized []ViolationResponse `json:"authorized"`
}

type AffinityStatResponse struct {
	DriverName string    `json:"driver_name"`
	VIN        string    `json:"vin"`
	Count      int       `json:"count"`
	LastUsed   time.Time `json:"last_used"`
}

type ListAffinityStatsResponse struct {
	Stats []AffinityStatResponse `json:"stats"`
}
