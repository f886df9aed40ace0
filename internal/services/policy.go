package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy holds the business thresholds of an assignment pass.
type Policy struct {
	// Aggregate service-type utilization above this ratio adds a warning.
	CapacityWarn decimal.Decimal
	// Per-vehicle load above this ratio is a blocking capacity violation.
	CapacityBlock decimal.Decimal
	// Volume assumed per package when sizing a route.
	PackageCubicFeet decimal.Decimal
	// How far back a driver's previous vehicle still counts for affinity.
	AffinityWindow time.Duration
	// Per-type chain overrides; see FallbackChain.
	FallbackChains map[string][]string
}

func DefaultPolicy() Policy {
	return Policy{
		CapacityWarn:     decimal.RequireFromString("0.85"),
		CapacityBlock:    decimal.NewFromInt(1),
		PackageCubicFeet: decimal.RequireFromString("0.35"),
		AffinityWindow:   7 * 24 * time.Hour,
	}
}
