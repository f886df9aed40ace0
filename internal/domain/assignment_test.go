package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAssignmentTransitions(t *testing.T) {
	// build test data
	a := &Assignment{RouteCode: "CX105"}

	// unassigned -> pending -> authorized
	if err := a.Transition(StatusPendingViolation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Transition(StatusAuthorizedAssigned); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// authorized-assigned is terminal
	err := a.Transition(StatusUnresolved)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if a.Status != StatusAuthorizedAssigned {
		t.Errorf("status = %s, want %s", a.Status, StatusAuthorizedAssigned)
	}
}

func TestAssignmentUnresolvedOnlyManual(t *testing.T) {
	a := &Assignment{RouteCode: "CX106", Status: StatusUnresolved}

	if err := a.Transition(StatusAutoAssigned); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unresolved -> auto-assigned should fail, got %v", err)
	}
	if err := a.Transition(StatusManuallyAssigned); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Transition(StatusUnresolved); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("manually-assigned should be terminal, got %v", err)
	}
}

func TestAssignmentAssignedAndPending(t *testing.T) {
	a := Assignment{
		RouteCode: "CX107",
		VIN:       "VIN9",
		Status:    StatusPendingViolation,
		Violations: []Violation{
			{RouteCode: "CX107", VIN: "VIN9", Kind: ViolationElectric},
			{RouteCode: "CX107", VIN: "VIN9", Kind: ViolationCapacity, Authorized: true},
		},
	}

	if a.Assigned() {
		t.Errorf("pending assignment must not count as assigned")
	}
	if got := len(a.Pending()); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
	if a.Pending()[0].Kind != ViolationElectric {
		t.Errorf("pending kind = %s, want electric", a.Pending()[0].Kind)
	}
}

func TestManifestTotals(t *testing.T) {
	m := LoadManifestRecord{
		RouteCode: "CX105",
		Bags: []BagEntry{
			{Zone: "B-7.3B", Code: "4564", Color: "NAV", Count: 3},
			{Zone: "B-7.4A", Code: "4565", Color: "BLK", Count: 5},
		},
		Overflow: []OverflowEntry{{Zone: "A-16.1T", Code: "A-16.1T", Count: 4}},
	}

	if m.TotalBags() != 2 {
		t.Errorf("bags = %d, want 2", m.TotalBags())
	}
	if m.TotalPackages() != 12 {
		t.Errorf("packages = %d, want 12", m.TotalPackages())
	}
}

func TestVehicleOperational(t *testing.T) {
	v := VehicleRecord{VIN: "V1", Status: " operational ", CubicFeet: decimal.NewFromInt(100)}
	if !v.Operational() {
		t.Errorf("expected operational")
	}
	v.Status = "IN_MAINTENANCE"
	if v.Operational() {
		t.Errorf("expected non-operational")
	}
	v.Status = ""
	if !v.Operational() {
		t.Errorf("empty status defaults to operational")
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
