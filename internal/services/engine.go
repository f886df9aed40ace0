package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/normalize"
)

// AuthKey identifies one route-vehicle pairing.
type AuthKey struct {
	RouteCode string
	VIN       string
}

// Authorization is a caller's approval of every violation of one pairing.
type Authorization struct {
	Reason string
	At     time.Time
}

// AssignInput is everything one assignment pass reads. The engine does no I/O;
// driver preferences are looked up by the caller beforehand.
type AssignInput struct {
	Routes    []domain.RouteRecord
	Vehicles  []domain.VehicleRecord
	Manifests []domain.LoadManifestRecord
	// Route code to driver name.
	Drivers map[string]string
	// Driver name to recently used VINs, most preferred first.
	Preferred  map[string][]string
	Authorized map[AuthKey]Authorization
	// Pairings the caller turned down; never proposed again.
	Rejected map[AuthKey]bool
	// Caller-made assignments kept as-is while their vehicle still exists.
	Fixed map[string]domain.Assignment
}

// VehicleOption is a vehicle offered to the caller for manual assignment.
type VehicleOption struct {
	VIN         string
	Name        string
	ServiceType string
	Electric    bool
}

// FailedRoute describes a route the pass could not auto-assign.
type FailedRoute struct {
	RouteCode        string
	ServiceType      string
	Status           domain.AssignmentStatus
	Reason           string
	Violations       []domain.Violation
	EligibleVehicles []VehicleOption
}

type AssignResult struct {
	Assignments   []domain.Assignment
	AssignedCount int
	TotalRoutes   int
	SuccessRate   float64
	FallbacksUsed int
	Failed        []FailedRoute
}

// AssignmentEngine matches routes to vehicles through an ordered pipeline of
// pure stages: eligibility, affinity, electric constraint, capacity.
type AssignmentEngine struct {
	catalog *normalize.Catalog
	policy  Policy
}

func NewAssignmentEngine(cat *normalize.Catalog, policy Policy) *AssignmentEngine {
	if cat == nil {
		cat = normalize.DefaultCatalog()
	}
	return &AssignmentEngine{catalog: cat, policy: policy}
}

func (e *AssignmentEngine) Policy() Policy { return e.policy }

type candidate struct {
	vehicle    domain.VehicleRecord
	rank       int
	affinity   bool
	violations []domain.Violation
	warnings   []string
}

func (c candidate) blockedBy(kind domain.ViolationKind) bool {
	for _, v := range c.violations {
		if v.Kind == kind && !v.Authorized {
			return true
		}
	}
	return false
}

func (c candidate) blocked() bool {
	for _, v := range c.violations {
		if !v.Authorized {
			return true
		}
	}
	return false
}

func (c candidate) usesAuthorization() bool {
	for _, v := range c.violations {
		if v.Authorized {
			return true
		}
	}
	return false
}

// routeDemand is what one route asks of a vehicle.
type routeDemand struct {
	route         domain.RouteRecord
	chain         []string
	electric      bool
	preferredVINs []string
	bags          int
	packages      int
	volume        decimal.Decimal
}

// pass is the state shared by routes within one Assign call.
type pass struct {
	engine    *AssignmentEngine
	in        AssignInput
	manifests map[string]domain.LoadManifestRecord
	used      map[string]string
	loaded    map[string]decimal.Decimal
	fleetCap  map[string]decimal.Decimal
}

type stage func(p *pass, d *routeDemand, cands []candidate) []candidate

var pipeline = []stage{eligibilityStage, affinityStage, electricStage, capacityStage}

// Assign runs one pass over the routes in input order.
// A vehicle is never given to two routes; pending proposals do not reserve it.
func (e *AssignmentEngine) Assign(in AssignInput) AssignResult {
	p := &pass{
		engine:    e,
		in:        in,
		manifests: make(map[string]domain.LoadManifestRecord, len(in.Manifests)),
		used:      make(map[string]string),
		loaded:    make(map[string]decimal.Decimal),
		fleetCap:  make(map[string]decimal.Decimal),
	}
	for _, m := range in.Manifests {
		p.manifests[m.RouteCode] = m
	}
	byVIN := make(map[string]domain.VehicleRecord, len(in.Vehicles))
	for _, v := range in.Vehicles {
		byVIN[v.VIN] = v
		if v.Operational() {
			p.fleetCap[v.ServiceType] = p.fleetCap[v.ServiceType].Add(v.CubicFeet)
		}
	}

	kept := make(map[string]domain.Assignment)
	for _, r := range in.Routes {
		f, ok := in.Fixed[r.RouteCode]
		if !ok || !f.Assigned() {
			continue
		}
		v, exists := byVIN[f.VIN]
		if !exists || p.used[f.VIN] != "" {
			continue
		}
		p.used[f.VIN] = r.RouteCode
		p.loaded[v.ServiceType] = p.loaded[v.ServiceType].Add(p.demand(r).volume)
		kept[r.RouteCode] = f
	}

	res := AssignResult{TotalRoutes: len(in.Routes)}
	for _, r := range in.Routes {
		a, ok := kept[r.RouteCode]
		if !ok {
			a = p.assignRoute(r)
		}
		if a.Assigned() {
			res.AssignedCount++
		}
		if a.FallbackUsed {
			res.FallbacksUsed++
		}
		res.Assignments = append(res.Assignments, a)
	}

	for i, a := range res.Assignments {
		if a.Status != domain.StatusPendingViolation && a.Status != domain.StatusUnresolved {
			continue
		}
		res.Failed = append(res.Failed, FailedRoute{
			RouteCode:        a.RouteCode,
			ServiceType:      a.RequestedServiceType,
			Status:           a.Status,
			Reason:           failureReason(a, in.Routes[i], p),
			Violations:       a.Pending(),
			EligibleVehicles: p.options(a.RequestedServiceType),
		})
	}

	if res.TotalRoutes > 0 {
		res.SuccessRate = math.Round(float64(res.AssignedCount)/float64(res.TotalRoutes)*1000) / 10
	}
	return res
}

func (p *pass) demand(r domain.RouteRecord) routeDemand {
	d := routeDemand{
		route:    r,
		chain:    FallbackChain(p.engine.catalog, r.ServiceType, p.engine.policy.FallbackChains),
		electric: p.engine.catalog.IsElectric(r.ServiceType),
	}
	if driver := p.in.Drivers[r.RouteCode]; driver != "" {
		d.preferredVINs = p.in.Preferred[driver]
	}

	m, hasManifest := p.manifests[r.RouteCode]
	switch {
	case hasManifest && m.TotalBags() > 0:
		d.bags = m.TotalBags()
	case r.Zones != nil:
		d.bags = *r.Zones
	}
	switch {
	case hasManifest && m.TotalPackages() > 0:
		d.packages = m.TotalPackages()
	case r.Packages != nil:
		d.packages = *r.Packages
	}
	d.volume = p.engine.policy.PackageCubicFeet.Mul(decimal.NewFromInt(int64(d.packages)))
	return d
}

func (p *pass) assignRoute(r domain.RouteRecord) domain.Assignment {
	// Fresh assignments start unassigned; every outcome below is a legal first transition.
	a := domain.Assignment{
		RouteCode:            r.RouteCode,
		RequestedServiceType: r.ServiceType,
		DriverName:           p.in.Drivers[r.RouteCode],
		Status:               domain.StatusUnassigned,
	}

	d := p.demand(r)
	cands := make([]candidate, 0, len(p.in.Vehicles))
	for _, v := range p.in.Vehicles {
		cands = append(cands, candidate{vehicle: v, rank: -1})
	}
	for _, s := range pipeline {
		cands = s(p, &d, cands)
	}

	if len(cands) == 0 {
		a.Status = domain.StatusUnresolved
		return a
	}

	var overCapacity *candidate
	for i := range cands {
		c := &cands[i]
		switch {
		case c.blockedBy(domain.ViolationElectric):
			p.propose(&a, c)
			return a
		case c.blocked():
			if overCapacity == nil {
				overCapacity = c
			}
		default:
			p.take(&a, c, d)
			return a
		}
	}
	p.propose(&a, overCapacity)
	return a
}

func (p *pass) fill(a *domain.Assignment, c *candidate) {
	a.VIN = c.vehicle.VIN
	a.VehicleName = c.vehicle.Name
	a.AssignedServiceType = c.vehicle.ServiceType
	a.Violations = c.violations
	a.Warnings = c.warnings
	a.FallbackUsed = c.rank > 0
	a.AffinityUsed = c.affinity
}

func (p *pass) take(a *domain.Assignment, c *candidate, d routeDemand) {
	p.fill(a, c)
	a.Status = domain.StatusAutoAssigned
	if c.usesAuthorization() {
		a.Status = domain.StatusAuthorizedAssigned
	}
	p.used[c.vehicle.VIN] = a.RouteCode
	st := c.vehicle.ServiceType
	p.loaded[st] = p.loaded[st].Add(d.volume)
}

func (p *pass) propose(a *domain.Assignment, c *candidate) {
	p.fill(a, c)
	a.Status = domain.StatusPendingViolation
}

// options lists unused operational vehicles of exactly the given service type.
func (p *pass) options(serviceType string) []VehicleOption {
	var out []VehicleOption
	for _, v := range p.in.Vehicles {
		if v.ServiceType != serviceType || !v.Operational() || p.used[v.VIN] != "" {
			continue
		}
		out = append(out, VehicleOption{VIN: v.VIN, Name: v.Name, ServiceType: v.ServiceType, Electric: v.Electric})
	}
	return out
}

func failureReason(a domain.Assignment, r domain.RouteRecord, p *pass) string {
	if a.Status == domain.StatusUnresolved {
		chain := FallbackChain(p.engine.catalog, r.ServiceType, p.engine.policy.FallbackChains)
		return fmt.Sprintf("No available vehicle for service types: %s", strings.Join(chain, ", "))
	}
	kinds := make([]string, 0, len(a.Violations))
	for _, v := range a.Pending() {
		kinds = append(kinds, string(v.Kind))
	}
	return fmt.Sprintf("Vehicle %s requires authorization: %s", a.VIN, strings.Join(domain.Dedupe(kinds), ", "))
}

// eligibilityStage keeps unused operational vehicles whose type is in the
// route's chain, ordered by chain position and then fleet order.
func eligibilityStage(p *pass, d *routeDemand, cands []candidate) []candidate {
	out := make([]candidate, 0, len(cands))
	for rank, st := range d.chain {
		for _, c := range cands {
			v := c.vehicle
			if v.ServiceType != st || !v.Operational() || p.used[v.VIN] != "" {
				continue
			}
			if p.in.Rejected[AuthKey{RouteCode: d.route.RouteCode, VIN: v.VIN}] {
				continue
			}
			c.rank = rank
			out = append(out, c)
		}
	}
	return out
}

// affinityStage moves the highest ranked of the driver's recent vehicles that
// is still a candidate to the front. An electric vehicle is never promoted
// onto a non-electric route.
func affinityStage(_ *pass, d *routeDemand, cands []candidate) []candidate {
	for _, vin := range d.preferredVINs {
		for i, c := range cands {
			if c.vehicle.VIN != vin {
				continue
			}
			if c.vehicle.Electric && !d.electric {
				break
			}
			c.affinity = true
			out := make([]candidate, 0, len(cands))
			out = append(out, c)
			out = append(out, cands[:i]...)
			return append(out, cands[i+1:]...)
		}
	}
	return cands
}

func electricStage(p *pass, d *routeDemand, cands []candidate) []candidate {
	if d.electric {
		return cands
	}
	for i := range cands {
		v := cands[i].vehicle
		if !v.Electric {
			continue
		}
		cands[i].violations = append(cands[i].violations, p.violation(d, v, domain.ViolationElectric,
			fmt.Sprintf("Electric vehicle %s on non-electric route %s (%s)", v.VIN, d.route.RouteCode, d.route.ServiceType)))
	}
	return cands
}

func capacityStage(p *pass, d *routeDemand, cands []candidate) []candidate {
	policy := p.engine.policy
	for i := range cands {
		v := cands[i].vehicle
		if loadRatio(d, v).GreaterThan(policy.CapacityBlock) {
			cands[i].violations = append(cands[i].violations, p.violation(d, v, domain.ViolationCapacity,
				fmt.Sprintf("Route %s needs %d bags / %s cu ft; vehicle %s holds %d bags / %s cu ft",
					d.route.RouteCode, d.bags, d.volume.StringFixed(1), v.VIN, v.MaxBags, v.CubicFeet.StringFixed(1))))
		}

		total := p.fleetCap[v.ServiceType]
		if !total.IsPositive() {
			continue
		}
		util := p.loaded[v.ServiceType].Add(d.volume).Div(total)
		if util.GreaterThan(policy.CapacityWarn) {
			cands[i].warnings = append(cands[i].warnings,
				fmt.Sprintf("%s utilization reaches %s%% with route %s", v.ServiceType,
					util.Mul(decimal.NewFromInt(100)).StringFixed(0), d.route.RouteCode))
		}
	}
	return cands
}

// loadRatio is the larger of the bag and volume ratios; unknown limits count as zero load.
func loadRatio(d *routeDemand, v domain.VehicleRecord) decimal.Decimal {
	ratio := decimal.Zero
	if v.MaxBags > 0 {
		ratio = decimal.NewFromInt(int64(d.bags)).Div(decimal.NewFromInt(int64(v.MaxBags)))
	}
	if v.CubicFeet.IsPositive() {
		ratio = decimal.Max(ratio, d.volume.Div(v.CubicFeet))
	}
	return ratio
}

func (p *pass) violation(d *routeDemand, v domain.VehicleRecord, kind domain.ViolationKind, detail string) domain.Violation {
	viol := domain.Violation{RouteCode: d.route.RouteCode, VIN: v.VIN, Kind: kind, Detail: detail}
	if auth, ok := p.in.Authorized[AuthKey{RouteCode: d.route.RouteCode, VIN: v.VIN}]; ok {
		at := auth.At
		viol.Authorized = true
		viol.Reason = auth.Reason
		viol.AuthorizedAt = &at
	}
	return viol
}
