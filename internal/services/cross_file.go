package services

import (
	"fmt"
	"sort"

	"route-assignment-service/internal/domain"
)

// CrossFileInput is the parsed content of one cycle. Uploaded reports which
// sources were ingested; checks involving a missing source are skipped.
type CrossFileInput struct {
	Uploaded  map[domain.Source]bool
	Routes    []domain.RouteRecord
	Vehicles  []domain.VehicleRecord
	Drivers   []domain.DriverAssignmentRecord
	Manifests []domain.LoadManifestRecord
}

var sourceLabels = map[domain.Source]string{
	domain.SourceRoutePlan:         "Route plan",
	domain.SourceFleet:             "Fleet",
	domain.SourceDriverAssignments: "Driver assignments",
	domain.SourceLoadManifests:     "Load manifests",
}

// ValidateCrossFile checks the sources against each other. Every finding is a
// warning; the list is deduplicated and ordered by check, then by route order.
func ValidateCrossFile(in CrossFileInput) []string {
	var out []string

	for _, s := range domain.Sources {
		if !in.Uploaded[s] {
			out = append(out, fmt.Sprintf("%s not uploaded yet.", sourceLabels[s]))
		}
	}

	plan := make(map[string]domain.RouteRecord, len(in.Routes))
	for _, r := range in.Routes {
		plan[r.RouteCode] = r
	}
	manifests := make(map[string]domain.LoadManifestRecord, len(in.Manifests))
	for _, m := range in.Manifests {
		manifests[m.RouteCode] = m
	}

	hasPlan := in.Uploaded[domain.SourceRoutePlan]

	if hasPlan && in.Uploaded[domain.SourceLoadManifests] {
		for _, r := range in.Routes {
			if _, ok := manifests[r.RouteCode]; !ok {
				out = append(out, fmt.Sprintf("Route %s is in the route plan but has no load manifest.", r.RouteCode))
			}
		}
		for _, m := range in.Manifests {
			r, ok := plan[m.RouteCode]
			if !ok {
				out = append(out, fmt.Sprintf("Route %s has a load manifest but is not in the route plan.", m.RouteCode))
				continue
			}
			if m.ServiceType != "" && m.ServiceType != r.ServiceType {
				out = append(out, fmt.Sprintf("Route %s service type mismatch: route plan '%s', load manifest '%s'.",
					r.RouteCode, r.ServiceType, m.ServiceType))
			}
		}
	}

	if hasPlan && in.Uploaded[domain.SourceDriverAssignments] {
		for _, da := range in.Drivers {
			r, ok := plan[da.RouteCode]
			if !ok {
				out = append(out, fmt.Sprintf("Route %s has a driver assignment but is not in the route plan.", da.RouteCode))
				continue
			}
			if da.ServiceType != r.ServiceType {
				out = append(out, fmt.Sprintf("Route %s service type mismatch: route plan '%s', driver assignments '%s'.",
					r.RouteCode, r.ServiceType, da.ServiceType))
			}
		}
	}

	if hasPlan && in.Uploaded[domain.SourceFleet] {
		operational := make(map[string]int)
		for _, v := range in.Vehicles {
			if v.Operational() {
				operational[v.ServiceType]++
			}
		}
		demand := make(map[string]int)
		for _, r := range in.Routes {
			demand[r.ServiceType]++
		}
		types := make([]string, 0, len(demand))
		for st := range demand {
			types = append(types, st)
		}
		sort.Strings(types)
		for _, st := range types {
			if operational[st] == 0 {
				out = append(out, fmt.Sprintf("No operational vehicles of service type '%s' for %d route(s).", st, demand[st]))
			}
		}
	}

	return domain.Dedupe(out)
}
