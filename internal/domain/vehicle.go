package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StatusOperational is the status assumed when the fleet sheet has none.
const StatusOperational = "OPERATIONAL"

// Fleet vehicle eligible for assignment.
// Grounded vehicles are dropped at parse time and never become records.
type VehicleRecord struct {
	VIN         string
	Name        string
	ServiceType string
	Status      string
	Electric    bool
	MaxBags     int
	CubicFeet   decimal.Decimal
}

// Operational reports whether the vehicle may be offered as a candidate.
func (v VehicleRecord) Operational() bool {
	s := strings.ToUpper(strings.TrimSpace(v.Status))
	return s == "" || s == StatusOperational
}
