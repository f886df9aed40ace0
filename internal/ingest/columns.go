package ingest

import (
	"strings"
	"unicode"
)

const (
	defaultSearchRows = 25
	defaultMinHits    = 2
)

// FieldAliases names a semantic field and the header texts that identify it.
type FieldAliases struct {
	Field   string
	Aliases []string
}

// ColumnMapper locates a header row in a sheet and maps semantic fields to columns.
// It holds no per-sheet state and is shared by every tabular parser.
type ColumnMapper struct {
	Fields     []FieldAliases
	SearchRows int
	MinHits    int
}

// Layout is the outcome of column mapping for one sheet.
// Columns holds only fields that resolved to a column.
type Layout struct {
	Columns        map[string]int
	HeaderRow      int
	DataStart      int
	HeaderDetected bool
}

// DetectHeader returns the index of the row with the most field hits within the
// search window. Ties go to the earliest row; fewer than MinHits means no header.
func (m ColumnMapper) DetectHeader(rows [][]string) (int, bool) {
	aliases := m.normalizedAliases()

	limit := m.searchRows()
	if limit > len(rows) {
		limit = len(rows)
	}

	bestRow, bestHits := -1, 0
	for i := 0; i < limit; i++ {
		cells := normalizeRow(rows[i])
		hits := 0
		for _, fa := range aliases {
			if rowHasAlias(cells, fa) {
				hits++
			}
		}
		// Strictly greater keeps the earliest row on ties.
		if hits > bestHits {
			bestRow, bestHits = i, hits
		}
	}

	if bestRow < 0 || bestHits < m.minHits() {
		return -1, false
	}
	return bestRow, true
}

// Map resolves every field to a column. With no detectable header the positional
// fallback is returned as-is and data starts at row 0. With a header, exact alias
// matches win over substring matches and no column is given to two fields; fields
// absent from the header keep their fallback column when it is still free.
func (m ColumnMapper) Map(rows [][]string, fallback map[string]int) Layout {
	headerRow, ok := m.DetectHeader(rows)
	if !ok {
		cols := make(map[string]int, len(fallback))
		for f, c := range fallback {
			cols[f] = c
		}
		return Layout{Columns: cols, HeaderRow: -1, DataStart: 0}
	}

	header := normalizeRow(rows[headerRow])
	aliases := m.normalizedAliases()
	cols := make(map[string]int, len(aliases))
	claimed := make(map[int]bool, len(header))

	assign := func(match func(cell string, alias string) bool) {
		for i, fa := range aliases {
			field := m.Fields[i].Field
			if _, done := cols[field]; done {
				continue
			}
			for col, cell := range header {
				if claimed[col] || cell == "" {
					continue
				}
				if anyAlias(cell, fa, match) {
					cols[field] = col
					claimed[col] = true
					break
				}
			}
		}
	}
	assign(func(cell, alias string) bool { return cell == alias })
	assign(strings.Contains)

	for _, fa := range m.Fields {
		if _, done := cols[fa.Field]; done {
			continue
		}
		if c, ok := fallback[fa.Field]; ok && !claimed[c] {
			cols[fa.Field] = c
			claimed[c] = true
		}
	}

	return Layout{
		Columns:        cols,
		HeaderRow:      headerRow,
		DataStart:      headerRow + 1,
		HeaderDetected: true,
	}
}

// Cell returns the trimmed value of field in row, or "" when unmapped or out of range.
func (l Layout) Cell(row []string, field string) string {
	col, ok := l.Columns[field]
	if !ok || col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func (m ColumnMapper) searchRows() int {
	if m.SearchRows <= 0 {
		return defaultSearchRows
	}
	return m.SearchRows
}

func (m ColumnMapper) minHits() int {
	if m.MinHits <= 0 {
		return defaultMinHits
	}
	return m.MinHits
}

func (m ColumnMapper) normalizedAliases() [][]string {
	out := make([][]string, len(m.Fields))
	for i, f := range m.Fields {
		for _, a := range f.Aliases {
			if n := normalizeHeader(a); n != "" {
				out[i] = append(out[i], n)
			}
		}
	}
	return out
}

func rowHasAlias(cells []string, aliases []string) bool {
	for _, cell := range cells {
		if cell != "" && anyAlias(cell, aliases, strings.Contains) {
			return true
		}
	}
	return false
}

func anyAlias(cell string, aliases []string, match func(string, string) bool) bool {
	for _, a := range aliases {
		if match(cell, a) {
			return true
		}
	}
	return false
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = normalizeHeader(c)
	}
	return out
}

// normalizeHeader lowercases, keeps letters, digits and spaces, and collapses whitespace.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
