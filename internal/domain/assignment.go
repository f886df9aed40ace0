package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTransition = errors.New("invalid assignment transition")

type AssignmentStatus string

const (
	StatusUnassigned         AssignmentStatus = "unassigned"
	StatusAutoAssigned       AssignmentStatus = "auto-assigned"
	StatusPendingViolation   AssignmentStatus = "pending-violation"
	StatusAuthorizedAssigned AssignmentStatus = "authorized-assigned"
	StatusUnresolved         AssignmentStatus = "unresolved"
	StatusManuallyAssigned   AssignmentStatus = "manually-assigned"
)

// Allowed status transitions. Terminal states have no entry.
var transitions = map[AssignmentStatus][]AssignmentStatus{
	StatusUnassigned: {
		StatusAutoAssigned,
		StatusPendingViolation,
		StatusAuthorizedAssigned,
		StatusUnresolved,
	},
	StatusPendingViolation: {
		StatusAuthorizedAssigned,
		StatusUnresolved,
		StatusManuallyAssigned,
	},
	StatusUnresolved: {StatusManuallyAssigned},
}

func (s AssignmentStatus) CanTransition(to AssignmentStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type ViolationKind string

const (
	ViolationElectric ViolationKind = "electric"
	ViolationCapacity ViolationKind = "capacity"
)

// A constraint breach incurred by pairing a route with a vehicle.
// Unauthorized violations block the pairing.
type Violation struct {
	RouteCode    string
	VIN          string
	Kind         ViolationKind
	Detail       string
	Authorized   bool
	Reason       string
	AuthorizedAt *time.Time
}

// Result of matching one route to a vehicle within a cycle.
// VIN is empty until the route is resolved.
type Assignment struct {
	RouteCode            string
	VIN                  string
	VehicleName          string
	RequestedServiceType string
	AssignedServiceType  string
	DriverName           string
	Status               AssignmentStatus
	Violations           []Violation
	Warnings             []string
	FallbackUsed         bool
	AffinityUsed         bool
}

// Transition moves the assignment to a new status, enforcing the state machine.
func (a *Assignment) Transition(to AssignmentStatus) error {
	from := a.Status
	if from == "" {
		from = StatusUnassigned
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: route %s %s -> %s", ErrInvalidTransition, a.RouteCode, from, to)
	}
	a.Status = to
	return nil
}

// Assigned reports whether the route holds a vehicle.
func (a Assignment) Assigned() bool {
	switch a.Status {
	case StatusAutoAssigned, StatusAuthorizedAssigned, StatusManuallyAssigned:
		return a.VIN != ""
	}
	return false
}

// Pending returns the violations still awaiting authorization.
func (a Assignment) Pending() []Violation {
	var out []Violation
	for _, v := range a.Violations {
		if !v.Authorized {
			out = append(out, v)
		}
	}
	return out
}
