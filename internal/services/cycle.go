package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ingest"
	"route-assignment-service/internal/normalize"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"
)

var (
	ErrNoInput            = errors.New("no input bytes")
	ErrNotReady           = errors.New("route plan and fleet must be uploaded before assignment")
	ErrUnknownRoute       = errors.New("unknown route")
	ErrUnknownVehicle     = errors.New("unknown vehicle")
	ErrVehicleInUse       = errors.New("vehicle already assigned")
	ErrNoPendingViolation = errors.New("no pending violation")
	ErrReasonRequired     = errors.New("authorization reason required")
)

// Upload is one already-read input file.
type Upload struct {
	Name string
	Data []byte
}

// CycleDeps are the collaborators of a cycle. Affinity and History may be nil.
type CycleDeps struct {
	Catalog  *normalize.Catalog
	Engine   *AssignmentEngine
	Sheets   ports.SheetReader
	Text     ports.TextExtractor
	Affinity ports.AffinityRepository
	History  ports.AssignmentRepository
	Ingest   ingest.Options
	Now      func() time.Time
}

type IngestResult struct {
	Source        domain.Source
	RecordsParsed int
	Skipped       int
	Errors        []string
	Warnings      []string
}

type SourceStatus struct {
	Uploaded  bool
	Records   int
	Skipped   int
	Errors    []string
	Warnings  []string
	UpdatedAt time.Time
}

type Status struct {
	CycleID            string
	Sources            map[domain.Source]SourceStatus
	ValidationErrors   []string
	ValidationWarnings []string
	LastUpdated        time.Time
	ReadyToAssign      bool
}

type ManualResult struct {
	Assignment domain.Assignment
	Violations []domain.Violation
	Warnings   []string
}

type ViolationList struct {
	Pending    []domain.Violation
	Authorized []domain.Violation
}

type sourceState struct {
	uploaded  bool
	records   int
	skipped   int
	errors    []string
	warnings  []string
	updatedAt time.Time
}

// Cycle owns the ingest state of one batch of uploads and the assignments made
// from it. Every exported method runs as a single critical section.
type Cycle struct {
	id   string
	deps CycleDeps

	mu          sync.Mutex
	sources     map[domain.Source]*sourceState
	routes      []domain.RouteRecord
	vehicles    []domain.VehicleRecord
	drivers     []domain.DriverAssignmentRecord
	manifests   []domain.LoadManifestRecord
	assignments []domain.Assignment
	authorized  map[AuthKey]Authorization
	approved    map[AuthKey][]domain.Violation
	rejected    map[AuthKey]bool
	lastUpdated time.Time
}

func NewCycle(id string, deps CycleDeps) *Cycle {
	if deps.Catalog == nil {
		deps.Catalog = normalize.DefaultCatalog()
	}
	if deps.Engine == nil {
		deps.Engine = NewAssignmentEngine(deps.Catalog, DefaultPolicy())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Ingest.Catalog = deps.Catalog

	c := &Cycle{id: id, deps: deps}
	c.resetLocked()
	return c
}

func (c *Cycle) ID() string { return c.id }

func (c *Cycle) resetLocked() {
	c.sources = make(map[domain.Source]*sourceState, len(domain.Sources))
	for _, s := range domain.Sources {
		c.sources[s] = &sourceState{}
	}
	c.routes, c.vehicles, c.drivers, c.manifests = nil, nil, nil, nil
	c.assignments = nil
	c.authorized = make(map[AuthKey]Authorization)
	c.approved = make(map[AuthKey][]domain.Violation)
	c.rejected = make(map[AuthKey]bool)
	c.lastUpdated = time.Time{}
}

// Reset clears everything the cycle holds.
func (c *Cycle) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	obs.L().Info("cycle reset", zap.String("cycle_id", c.id))
}

func (c *Cycle) IngestRoutePlan(ctx context.Context, in Upload) (res IngestResult, err error) {
	defer obs.Time(ctx, "cycle.ingest_route_plan")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	return ingestSheet(ctx, c, domain.SourceRoutePlan, in, ingest.ParseRoutePlan, func(recs []domain.RouteRecord) {
		c.routes = recs
	})
}

func (c *Cycle) IngestFleet(ctx context.Context, in Upload) (res IngestResult, err error) {
	defer obs.Time(ctx, "cycle.ingest_fleet")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	return ingestSheet(ctx, c, domain.SourceFleet, in, ingest.ParseFleet, func(recs []domain.VehicleRecord) {
		c.vehicles = recs
	})
}

func (c *Cycle) IngestDriverAssignments(ctx context.Context, in Upload) (res IngestResult, err error) {
	defer obs.Time(ctx, "cycle.ingest_driver_assignments")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	return ingestSheet(ctx, c, domain.SourceDriverAssignments, in, ingest.ParseDriverAssignments, func(recs []domain.DriverAssignmentRecord) {
		c.drivers = recs
	})
}

// ingestSheet reads, parses and stores one tabular source. A structural failure
// leaves the source with zero records and the failure as its only error.
func ingestSheet[T any](
	ctx context.Context,
	c *Cycle,
	source domain.Source,
	in Upload,
	parse func([][]string, ingest.Options) (ingest.Result[T], error),
	store func([]T),
) (IngestResult, error) {
	if len(in.Data) == 0 {
		return IngestResult{Source: source}, fmt.Errorf("ingest %s: %w", source, ErrNoInput)
	}

	var parsed ingest.Result[T]
	rows, err := c.deps.Sheets.ReadRows(ctx, in.Name, in.Data)
	if err == nil {
		parsed, err = parse(rows, c.deps.Ingest)
	}
	if err != nil {
		parsed = ingest.Result[T]{Errors: []string{fmt.Sprintf("%s: %v", in.Name, err)}}
	}

	store(parsed.Records)
	res := c.recordSource(source, len(parsed.Records), parsed.Skipped, parsed.Errors, parsed.Warnings)

	obs.L().Info("source ingested",
		zap.String("cycle_id", c.id),
		zap.String("source", string(source)),
		zap.String("file", in.Name),
		zap.Int("records", res.RecordsParsed),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// IngestLoadManifests parses every file and keeps the first manifest seen per route.
func (c *Cycle) IngestLoadManifests(ctx context.Context, files []Upload) (res IngestResult, err error) {
	defer obs.Time(ctx, "cycle.ingest_load_manifests")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	nonEmpty := 0
	for _, f := range files {
		if len(f.Data) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return IngestResult{Source: domain.SourceLoadManifests}, fmt.Errorf("ingest %s: %w", domain.SourceLoadManifests, ErrNoInput)
	}

	var (
		records     []domain.LoadManifestRecord
		errs, warns []string
		seen        = make(map[string]string)
	)
	for _, f := range files {
		if len(f.Data) == 0 {
			errs = append(errs, fmt.Sprintf("%s: file is empty.", f.Name))
			continue
		}
		text, err := c.deps.Text.ExtractText(ctx, f.Name, f.Data)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		parsed, err := ingest.ParseLoadManifestText(text, c.deps.Ingest)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		for _, e := range parsed.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", f.Name, e))
		}
		for _, w := range parsed.Warnings {
			warns = append(warns, fmt.Sprintf("%s: %s", f.Name, w))
		}
		for _, m := range parsed.Records {
			if first, dup := seen[m.RouteCode]; dup {
				errs = append(errs, fmt.Sprintf("%s: Route %s already loaded from %s; first kept.", f.Name, m.RouteCode, first))
				continue
			}
			seen[m.RouteCode] = f.Name
			records = append(records, m)
		}
	}

	c.manifests = records
	res = c.recordSource(domain.SourceLoadManifests, len(records), 0, errs, warns)

	obs.L().Info("source ingested",
		zap.String("cycle_id", c.id),
		zap.String("source", string(domain.SourceLoadManifests)),
		zap.Int("files", len(files)),
		zap.Int("records", res.RecordsParsed),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (c *Cycle) recordSource(source domain.Source, records, skipped int, errs, warns []string) IngestResult {
	now := c.deps.Now()
	errs, warns = domain.Dedupe(errs), domain.Dedupe(warns)
	c.sources[source] = &sourceState{
		uploaded:  true,
		records:   records,
		skipped:   skipped,
		errors:    errs,
		warnings:  warns,
		updatedAt: now,
	}
	c.lastUpdated = now
	return IngestResult{
		Source:        source,
		RecordsParsed: records,
		Skipped:       skipped,
		Errors:        errs,
		Warnings:      warns,
	}
}

// Status reports per-source state plus the cross-file findings.
func (c *Cycle) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		CycleID:     c.id,
		Sources:     make(map[domain.Source]SourceStatus, len(c.sources)),
		LastUpdated: c.lastUpdated,
	}
	uploaded := make(map[domain.Source]bool, len(c.sources))
	var errs, warns []string
	for _, s := range domain.Sources {
		ss := c.sources[s]
		uploaded[s] = ss.uploaded
		st.Sources[s] = SourceStatus{
			Uploaded:  ss.uploaded,
			Records:   ss.records,
			Skipped:   ss.skipped,
			Errors:    append([]string(nil), ss.errors...),
			Warnings:  append([]string(nil), ss.warnings...),
			UpdatedAt: ss.updatedAt,
		}
		for _, e := range ss.errors {
			errs = append(errs, fmt.Sprintf("%s: %s", s, e))
		}
		for _, w := range ss.warnings {
			warns = append(warns, fmt.Sprintf("%s: %s", s, w))
		}
	}

	warns = append(warns, ValidateCrossFile(CrossFileInput{
		Uploaded:  uploaded,
		Routes:    c.routes,
		Vehicles:  c.vehicles,
		Drivers:   c.drivers,
		Manifests: c.manifests,
	})...)

	st.ValidationErrors = domain.Dedupe(errs)
	st.ValidationWarnings = domain.Dedupe(warns)
	st.ReadyToAssign = len(c.routes) > 0 && len(c.vehicles) > 0
	return st
}

// AssignVehicles runs an assignment pass. Manual and authorized assignments from
// earlier passes are kept while their vehicle is still in the fleet.
func (c *Cycle) AssignVehicles(ctx context.Context) (res AssignResult, err error) {
	defer obs.Time(ctx, "cycle.assign_vehicles")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.routes) == 0 || len(c.vehicles) == 0 {
		return AssignResult{}, fmt.Errorf("assign vehicles: %w", ErrNotReady)
	}

	drivers := make(map[string]string, len(c.drivers))
	for _, d := range c.drivers {
		drivers[d.RouteCode] = d.DriverName
	}

	fixed := make(map[string]domain.Assignment)
	for _, a := range c.assignments {
		if a.Status == domain.StatusManuallyAssigned || a.Status == domain.StatusAuthorizedAssigned {
			fixed[a.RouteCode] = a
		}
	}

	res = c.deps.Engine.Assign(AssignInput{
		Routes:     c.routes,
		Vehicles:   c.vehicles,
		Manifests:  c.manifests,
		Drivers:    drivers,
		Preferred:  c.preferredVehicles(ctx, drivers),
		Authorized: c.authorized,
		Rejected:   c.rejected,
		Fixed:      fixed,
	})
	held := make(map[string]string, len(c.assignments))
	for _, a := range c.assignments {
		if a.Assigned() {
			held[a.RouteCode] = a.VIN
		}
	}
	var changed []domain.Assignment
	for _, a := range res.Assignments {
		if a.Assigned() && held[a.RouteCode] != a.VIN {
			changed = append(changed, a)
		}
	}

	c.assignments = append([]domain.Assignment(nil), res.Assignments...)
	c.lastUpdated = c.deps.Now()

	c.persist(ctx, changed)

	obs.L().Info("vehicles assigned",
		zap.String("cycle_id", c.id),
		zap.Int("assigned", res.AssignedCount),
		zap.Int("total", res.TotalRoutes),
		zap.Int("fallbacks", res.FallbacksUsed),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

// preferredVehicles looks up each driver's recent vehicles. Lookup failures
// only cost the preference, so they are logged and skipped.
func (c *Cycle) preferredVehicles(ctx context.Context, drivers map[string]string) map[string][]string {
	out := make(map[string][]string)
	if c.deps.Affinity == nil {
		return out
	}
	since := c.deps.Now().Add(-c.deps.Engine.Policy().AffinityWindow)

	names := make([]string, 0, len(drivers))
	for _, name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range domain.Dedupe(names) {
		vins, err := c.deps.Affinity.PreferredVehicles(ctx, name, since)
		if err != nil {
			obs.L().Warn("affinity lookup failed", zap.String("driver", name), zap.Error(err))
			continue
		}
		if len(vins) > 0 {
			out[name] = vins
		}
	}
	return out
}

// persist records driver usage for newly made assignments and saves the whole
// cycle's assignment history.
// Storage failures are logged; the in-memory cycle stays authoritative.
func (c *Cycle) persist(ctx context.Context, changed []domain.Assignment) {
	now := c.deps.Now()

	if c.deps.Affinity != nil {
		var usage []domain.AffinityRecord
		for _, a := range changed {
			if a.Assigned() && a.DriverName != "" {
				usage = append(usage, domain.AffinityRecord{DriverName: a.DriverName, VIN: a.VIN, RouteCode: a.RouteCode, AssignedAt: now})
			}
		}
		if len(usage) > 0 {
			if err := c.deps.Affinity.RecordUsage(ctx, usage); err != nil {
				obs.L().Warn("record affinity failed", zap.String("cycle_id", c.id), zap.Error(err))
			}
		}
	}

	if c.deps.History != nil {
		entries := make([]domain.AssignmentHistoryEntry, 0, len(c.assignments))
		for _, a := range c.assignments {
			entries = append(entries, domain.AssignmentHistoryEntry{
				CycleID:     c.id,
				RouteCode:   a.RouteCode,
				VIN:         a.VIN,
				ServiceType: a.AssignedServiceType,
				DriverName:  a.DriverName,
				Status:      a.Status,
				AssignedAt:  now,
			})
		}
		if err := c.deps.History.SaveAssignments(ctx, entries); err != nil {
			obs.L().Warn("save assignment history failed", zap.String("cycle_id", c.id), zap.Error(err))
		}
	}
}

// Assignments returns a copy of the current assignments in route order.
func (c *Cycle) Assignments() []domain.Assignment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Assignment(nil), c.assignments...)
}

func (c *Cycle) assignmentIndex(routeCode string) int {
	for i, a := range c.assignments {
		if a.RouteCode == routeCode {
			return i
		}
	}
	return -1
}

func (c *Cycle) vehicle(vin string) (domain.VehicleRecord, bool) {
	for _, v := range c.vehicles {
		if v.VIN == vin {
			return v, true
		}
	}
	return domain.VehicleRecord{}, false
}

// holder returns the route currently holding vin, if any.
func (c *Cycle) holder(vin string) string {
	for _, a := range c.assignments {
		if a.Assigned() && a.VIN == vin {
			return a.RouteCode
		}
	}
	return ""
}

// ManualAssign gives a route a caller-chosen vehicle, bypassing the fallback
// chain and the service-type filter. Electric and capacity mismatches are
// reported but do not block.
func (c *Cycle) ManualAssign(ctx context.Context, routeCode, vin string) (res ManualResult, err error) {
	defer obs.Time(ctx, "cycle.manual_assign")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	routeCode = normalize.NormalizeRouteCode(routeCode)
	vin = strings.ToUpper(strings.TrimSpace(vin))

	i := c.assignmentIndex(routeCode)
	if i < 0 {
		return ManualResult{}, fmt.Errorf("manual assign: %w: %s", ErrUnknownRoute, routeCode)
	}
	v, ok := c.vehicle(vin)
	if !ok {
		return ManualResult{}, fmt.Errorf("manual assign: %w: %s", ErrUnknownVehicle, vin)
	}
	if h := c.holder(vin); h != "" && h != routeCode {
		return ManualResult{}, fmt.Errorf("manual assign: %w: %s holds %s", ErrVehicleInUse, h, vin)
	}

	a := c.assignments[i]
	if err := a.Transition(domain.StatusManuallyAssigned); err != nil {
		return ManualResult{}, fmt.Errorf("manual assign: %w", err)
	}

	route := c.route(routeCode)
	now := c.deps.Now()
	var violations []domain.Violation
	var warnings []string
	if v.Electric && !c.deps.Catalog.IsElectric(route.ServiceType) {
		violations = append(violations, domain.Violation{
			Kind:   domain.ViolationElectric,
			Detail: fmt.Sprintf("Electric vehicle %s on non-electric route %s (%s)", vin, routeCode, route.ServiceType),
		})
	}
	if ratio := c.manualLoadRatio(route, v); ratio.GreaterThan(c.deps.Engine.Policy().CapacityBlock) {
		violations = append(violations, domain.Violation{
			Kind:   domain.ViolationCapacity,
			Detail: fmt.Sprintf("Route %s exceeds capacity of vehicle %s (%s%%)", routeCode, vin, ratio.Shift(2).StringFixed(0)),
		})
	}
	if !v.Operational() {
		warnings = append(warnings, fmt.Sprintf("Vehicle %s status is %s.", vin, v.Status))
	}
	if v.ServiceType != route.ServiceType {
		warnings = append(warnings, fmt.Sprintf("Vehicle %s is %s; route %s requires %s.", vin, v.ServiceType, routeCode, route.ServiceType))
	}
	for j := range violations {
		at := now
		violations[j].RouteCode, violations[j].VIN = routeCode, vin
		violations[j].Authorized, violations[j].Reason, violations[j].AuthorizedAt = true, "manual override", &at
		warnings = append(warnings, violations[j].Detail)
	}
	if len(violations) > 0 {
		c.approved[AuthKey{RouteCode: routeCode, VIN: vin}] = violations
	}

	a.VIN = vin
	a.VehicleName = v.Name
	a.AssignedServiceType = v.ServiceType
	a.Violations = violations
	a.Warnings = warnings
	a.FallbackUsed = false
	a.AffinityUsed = false
	c.assignments[i] = a
	c.lastUpdated = now

	c.persist(ctx, []domain.Assignment{a})

	obs.L().Info("manual assignment",
		zap.String("cycle_id", c.id),
		zap.String("route", routeCode),
		zap.String("vin", vin),
		zap.Int("violations", len(violations)),
	)
	return ManualResult{Assignment: a, Violations: violations, Warnings: warnings}, nil
}

func (c *Cycle) route(code string) domain.RouteRecord {
	for _, r := range c.routes {
		if r.RouteCode == code {
			return r
		}
	}
	return domain.RouteRecord{RouteCode: code}
}

func (c *Cycle) manualLoadRatio(r domain.RouteRecord, v domain.VehicleRecord) decimal.Decimal {
	p := &pass{
		engine:    c.deps.Engine,
		manifests: make(map[string]domain.LoadManifestRecord, len(c.manifests)),
	}
	for _, m := range c.manifests {
		p.manifests[m.RouteCode] = m
	}
	d := p.demand(r)
	return loadRatio(&d, v)
}

// AuthorizeViolation approves the pending pairing of a route and vehicle and
// assigns the vehicle when it is still free.
func (c *Cycle) AuthorizeViolation(ctx context.Context, routeCode, vin, reason string) (err error) {
	defer obs.Time(ctx, "cycle.authorize_violation")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	routeCode = normalize.NormalizeRouteCode(routeCode)
	vin = strings.ToUpper(strings.TrimSpace(vin))
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("authorize violation: %w", ErrReasonRequired)
	}

	i := c.assignmentIndex(routeCode)
	if i < 0 || c.assignments[i].Status != domain.StatusPendingViolation || c.assignments[i].VIN != vin {
		return fmt.Errorf("authorize violation: %w: route %s vehicle %s", ErrNoPendingViolation, routeCode, vin)
	}
	if h := c.holder(vin); h != "" {
		return fmt.Errorf("authorize violation: %w: %s holds %s", ErrVehicleInUse, h, vin)
	}

	a := c.assignments[i]
	if err := a.Transition(domain.StatusAuthorizedAssigned); err != nil {
		return fmt.Errorf("authorize violation: %w", err)
	}

	now := c.deps.Now()
	key := AuthKey{RouteCode: routeCode, VIN: vin}
	c.authorized[key] = Authorization{Reason: reason, At: now}

	violations := make([]domain.Violation, len(a.Violations))
	for j, v := range a.Violations {
		at := now
		v.Authorized, v.Reason, v.AuthorizedAt = true, reason, &at
		violations[j] = v
	}
	a.Violations = violations
	c.approved[key] = violations
	c.assignments[i] = a
	c.lastUpdated = now

	c.persist(ctx, []domain.Assignment{a})

	obs.L().Info("violation authorized",
		zap.String("cycle_id", c.id),
		zap.String("route", routeCode),
		zap.String("vin", vin),
		zap.String("reason", reason),
	)
	return nil
}

// RejectViolation turns down a pending pairing. The route becomes unresolved and
// later passes do not propose that vehicle for it again.
func (c *Cycle) RejectViolation(ctx context.Context, routeCode, vin, reason string) (err error) {
	defer obs.Time(ctx, "cycle.reject_violation")(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	routeCode = normalize.NormalizeRouteCode(routeCode)
	vin = strings.ToUpper(strings.TrimSpace(vin))

	i := c.assignmentIndex(routeCode)
	if i < 0 || c.assignments[i].Status != domain.StatusPendingViolation || c.assignments[i].VIN != vin {
		return fmt.Errorf("reject violation: %w: route %s vehicle %s", ErrNoPendingViolation, routeCode, vin)
	}

	a := c.assignments[i]
	if err := a.Transition(domain.StatusUnresolved); err != nil {
		return fmt.Errorf("reject violation: %w", err)
	}
	a.VIN, a.VehicleName, a.AssignedServiceType = "", "", ""
	a.Violations = nil
	a.Warnings = append(a.Warnings, fmt.Sprintf("Vehicle %s rejected: %s", vin, strings.TrimSpace(reason)))
	c.assignments[i] = a
	c.rejected[AuthKey{RouteCode: routeCode, VIN: vin}] = true
	c.lastUpdated = c.deps.Now()

	obs.L().Info("violation rejected",
		zap.String("cycle_id", c.id),
		zap.String("route", routeCode),
		zap.String("vin", vin),
	)
	return nil
}

// ListViolations returns pending violations in route order and approved ones
// ordered by route then vehicle.
func (c *Cycle) ListViolations() ViolationList {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out ViolationList
	for _, a := range c.assignments {
		if a.Status == domain.StatusPendingViolation {
			out.Pending = append(out.Pending, a.Pending()...)
		}
	}

	keys := make([]AuthKey, 0, len(c.approved))
	for k := range c.approved {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].RouteCode != keys[j].RouteCode {
			return keys[i].RouteCode < keys[j].RouteCode
		}
		return keys[i].VIN < keys[j].VIN
	})
	for _, k := range keys {
		out.Authorized = append(out.Authorized, c.approved[k]...)
	}
	return out
}
