package domain

// Represents one planned route from the day-of-plan sheet.
// A RouteRecord is created by the route plan parser and is immutable afterwards.
// RouteCode is canonical and unique within one ingest cycle.
type RouteRecord struct {
	Operator           string
	RouteCode          string
	ServiceType        string
	Wave               string
	StagingLocation    string
	DurationMinutes    int
	Zones              *int
	Packages           *int
	CommercialPackages *int
}

// Represents one row of the driver-assignment export.
// RouteCode references a RouteRecord; ServiceType is cross-checked against it.
type DriverAssignmentRecord struct {
	RouteCode      string
	TransporterID  string
	DriverName     string
	Operator       string
	ProgressStatus string
	ServiceType    string
}
