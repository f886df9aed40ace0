package domain

// Source identifies one of the four ingest inputs.
type Source string

const (
	SourceRoutePlan         Source = "route_plan"
	SourceFleet             Source = "fleet"
	SourceDriverAssignments Source = "driver_assignments"
	SourceLoadManifests     Source = "load_manifests"
)

// Sources lists every ingest source in pipeline order.
var Sources = []Source{SourceRoutePlan, SourceFleet, SourceDriverAssignments, SourceLoadManifests}

// Dedupe drops repeated messages while keeping first-seen order.
func Dedupe(msgs []string) []string {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
