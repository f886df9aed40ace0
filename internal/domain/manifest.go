package domain

// One bag row of a load manifest.
type BagEntry struct {
	Zone  string
	Code  string
	Color string
	Count int
}

// One overflow row of a load manifest.
type OverflowEntry struct {
	Zone  string
	Code  string
	Count int
}

// Load manifest for a single route, extracted from route sheet text.
// Bags and Overflow keep the order in which they appear on the sheet.
type LoadManifestRecord struct {
	RouteCode       string
	StagingLocation string
	ServiceType     string
	WaveTime        string
	Bags            []BagEntry
	Overflow        []OverflowEntry
}

func (m LoadManifestRecord) TotalBags() int { return len(m.Bags) }

// TotalPackages sums bag and overflow package counts.
func (m LoadManifestRecord) TotalPackages() int {
	total := 0
	for _, b := range m.Bags {
		total += b.Count
	}
	for _, o := range m.Overflow {
		total += o.Count
	}
	return total
}
