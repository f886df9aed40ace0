package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/normalize"
)

var (
	stagingPattern     = regexp.MustCompile(`(?i)\b(STG\.[A-Z0-9.]+)`)
	routeHeaderPattern = regexp.MustCompile(`^\s*([A-Z]{2,3}\d{2,5})\s+([A-Z][A-Z0-9]{1,9})(?:\s*[•–|-]\s*(.+?))?\s*$`)
	wavePattern        = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s*[AP]M)\b`)
	bagPattern         = regexp.MustCompile(`\b([A-Z]-\d+(?:\.\d+)?[A-Z])\s+([A-Za-z]+)\s+(\d{4})\s+(\d+)\b`)
	overflowPattern    = regexp.MustCompile(`\b([A-Z]-\d+(?:\.\d+)?[A-Z])\s+(\d+)\b`)
)

var bagColorCodes = map[string]string{
	"NAVY":   "NAV",
	"BLACK":  "BLK",
	"YELLOW": "YEL",
	"ORANGE": "ORG",
	"GREEN":  "GRN",
	"WHITE":  "WHI",
	"RED":    "RED",
	"BLUE":   "BLU",
	"GRAY":   "GRY",
	"GREY":   "GRY",
	"PINK":   "PNK",
	"PURPLE": "PUR",
}

// ColorCode maps a bag color name to its three-letter code.
func ColorCode(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if c, ok := bagColorCodes[n]; ok {
		return c
	}
	if len(n) > 3 {
		return n[:3]
	}
	return n
}

// ParseLoadManifestText extracts route manifests from already-extracted text.
// It has no side effects. Bag and overflow lines attach to the nearest preceding
// route header; a staging line is held for the next header. A repeated route keeps
// its first manifest.
func ParseLoadManifestText(text string, opts Options) (Result[domain.LoadManifestRecord], error) {
	var res Result[domain.LoadManifestRecord]
	if strings.TrimSpace(text) == "" {
		return res, fmt.Errorf("parse load manifest: %w", ErrNoText)
	}

	cat := opts.catalog()
	var (
		cur            *domain.LoadManifestRecord
		skipping       bool
		pendingStaging string
		headers        int
		seen           = make(map[string]bool)
	)

	flush := func() {
		if cur == nil {
			return
		}
		if len(cur.Bags) == 0 && len(cur.Overflow) == 0 {
			res.warnf("Route %s: manifest has no bag or overflow entries.", cur.RouteCode)
		}
		res.Records = append(res.Records, *cur)
		cur = nil
	}

	for i, line := range strings.Split(text, "\n") {
		lineNum := i + 1
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := routeHeaderPattern.FindStringSubmatch(line); m != nil {
			headers++
			flush()
			code, err := normalize.RouteCode(m[1])
			if err != nil {
				res.errorf("Line %d: Route code '%s' is invalid.", lineNum, m[1])
				skipping, pendingStaging = true, ""
				continue
			}
			if seen[code] {
				res.errorf("Line %d: Route %s appears in more than one manifest; first kept.", lineNum, code)
				skipping, pendingStaging = true, ""
				continue
			}
			seen[code] = true
			skipping = false

			cur = &domain.LoadManifestRecord{RouteCode: code, StagingLocation: pendingStaging}
			pendingStaging = ""
			if raw := strings.TrimSpace(m[3]); raw != "" {
				if st, err := cat.ServiceType(raw); err == nil {
					cur.ServiceType = st
				} else {
					res.warnf("Line %d: Service type '%s' for route %s is unrecognized.", lineNum, raw, code)
				}
			}
			continue
		}

		if m := stagingPattern.FindStringSubmatch(line); m != nil {
			pendingStaging = strings.ToUpper(strings.TrimRight(m[1], "."))
			continue
		}

		if cur != nil && cur.WaveTime == "" {
			if m := wavePattern.FindStringSubmatch(line); m != nil {
				cur.WaveTime = strings.ToUpper(m[1])
			}
		}

		bags := bagPattern.FindAllStringSubmatchIndex(line, -1)
		rest := line
		for j := len(bags) - 1; j >= 0; j-- {
			rest = rest[:bags[j][0]] + " " + rest[bags[j][1]:]
		}
		overflow := overflowPattern.FindAllStringSubmatch(rest, -1)
		if len(bags) == 0 && len(overflow) == 0 {
			continue
		}

		if skipping {
			continue
		}
		if cur == nil {
			res.errorf("Line %d: Bag or overflow entry appears before any route header.", lineNum)
			continue
		}

		for _, idx := range bags {
			zone := line[idx[2]:idx[3]]
			count, _ := strconv.Atoi(line[idx[8]:idx[9]])
			if hasBag(cur.Bags, zone) {
				continue
			}
			cur.Bags = append(cur.Bags, domain.BagEntry{
				Zone:  zone,
				Code:  line[idx[6]:idx[7]],
				Color: ColorCode(line[idx[4]:idx[5]]),
				Count: count,
			})
		}
		for _, m := range overflow {
			count, _ := strconv.Atoi(m[2])
			if hasBag(cur.Bags, m[1]) || hasOverflow(cur.Overflow, m[1]) {
				continue
			}
			cur.Overflow = append(cur.Overflow, domain.OverflowEntry{Zone: m[1], Code: m[1], Count: count})
		}
	}
	flush()

	if headers == 0 {
		return res, fmt.Errorf("parse load manifest: %w", ErrNoRouteHeader)
	}
	return res, nil
}

func hasBag(bags []domain.BagEntry, zone string) bool {
	for _, b := range bags {
		if b.Zone == zone {
			return true
		}
	}
	return false
}

func hasOverflow(entries []domain.OverflowEntry, zone string) bool {
	for _, o := range entries {
		if o.Zone == zone {
			return true
		}
	}
	return false
}
