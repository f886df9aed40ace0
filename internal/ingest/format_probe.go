package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var routeCodePattern = regexp.MustCompile(`^[A-Z]{2,3}\d{2,5}$`)

// CellPattern reports whether a data cell looks like a given field's values.
type CellPattern func(string) bool

func looksLikeRouteCode(s string) bool {
	return routeCodePattern.MatchString(strings.TrimSpace(s))
}

// looksLikePersonName accepts two or three capitalized alphabetic words.
func looksLikePersonName(s string) bool {
	parts := strings.Fields(s)
	if len(parts) < 2 || len(parts) > 3 {
		return false
	}
	for _, p := range parts {
		r := []rune(p)
		if !unicode.IsUpper(r[0]) {
			return false
		}
		for _, c := range r {
			if !unicode.IsLetter(c) && c != '-' && c != '\'' {
				return false
			}
		}
	}
	return true
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

const (
	probeSampleRows = 5
	probeMinScore   = 0.5
)

// ProbeColumns refines a positional layout for headerless sheets by scoring the
// first data rows of every column against per-field patterns. A field moves only
// when its best column matches more than half of the non-empty samples; the field
// previously holding that column takes over the vacated one.
func ProbeColumns(rows [][]string, start int, cols map[string]int, probes []FieldPattern) map[string]int {
	out := make(map[string]int, len(cols))
	for f, c := range cols {
		out[f] = c
	}

	end := start + probeSampleRows
	if end > len(rows) {
		end = len(rows)
	}
	if start >= end {
		return out
	}

	width := 0
	for _, r := range rows[start:end] {
		if len(r) > width {
			width = len(r)
		}
	}

	fixed := make(map[int]bool)
	for _, p := range probes {
		bestCol, bestScore := -1, probeMinScore
		for col := 0; col < width; col++ {
			if fixed[col] {
				continue
			}
			if s := scoreColumn(rows[start:end], col, p.Match); s > bestScore {
				bestCol, bestScore = col, s
			}
		}
		if bestCol < 0 {
			continue
		}

		prev, had := out[p.Field]
		for f, c := range out {
			if c == bestCol && f != p.Field {
				if had {
					out[f] = prev
				} else {
					delete(out, f)
				}
			}
		}
		out[p.Field] = bestCol
		fixed[bestCol] = true
	}

	return out
}

// FieldPattern pairs a field with the pattern its values follow.
type FieldPattern struct {
	Field string
	Match CellPattern
}

func scoreColumn(rows [][]string, col int, match CellPattern) float64 {
	seen, hits := 0, 0
	for _, r := range rows {
		if col >= len(r) {
			continue
		}
		v := strings.TrimSpace(r[col])
		if v == "" {
			continue
		}
		seen++
		if match(v) {
			hits++
		}
	}
	if seen == 0 {
		return 0
	}
	return float64(hits) / float64(seen)
}
