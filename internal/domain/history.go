package domain

import "time"

// AffinityRecord is one observed driver-vehicle pairing.
type AffinityRecord struct {
	DriverName string
	VIN        string
	RouteCode  string
	AssignedAt time.Time
}

// AffinityStat aggregates a driver's use of one vehicle.
type AffinityStat struct {
	DriverName string
	VIN        string
	Count      int
	LastUsed   time.Time
}

// AssignmentHistoryEntry is the persisted form of one route's assignment.
type AssignmentHistoryEntry struct {
	CycleID     string
	RouteCode   string
	VIN         string
	ServiceType string
	DriverName  string
	Status      AssignmentStatus
	AssignedAt  time.Time
}
