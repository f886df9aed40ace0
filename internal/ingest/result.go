package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"route-assignment-service/internal/normalize"
)

// Structural errors: the whole source is rejected and no records are admitted.
var (
	ErrNoRows              = errors.New("sheet has no rows")
	ErrInsufficientColumns = errors.New("sheet has insufficient columns")
	ErrNoText              = errors.New("document has no text")
	ErrNoRouteHeader       = errors.New("no route header found")
)

// Result carries the records of one source plus row-level diagnostics.
// Skipped counts rows excluded on purpose (not errors), such as grounded vehicles.
type Result[T any] struct {
	Records  []T
	Errors   []string
	Warnings []string
	Skipped  int
}

func (r *Result[T]) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result[T]) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Options configures every parser.
type Options struct {
	Catalog    *normalize.Catalog
	SearchRows int
	MinHits    int
}

func (o Options) catalog() *normalize.Catalog {
	if o.Catalog == nil {
		return normalize.DefaultCatalog()
	}
	return o.Catalog
}

func (o Options) mapper(fields []FieldAliases) ColumnMapper {
	return ColumnMapper{Fields: fields, SearchRows: o.SearchRows, MinHits: o.MinHits}
}

// checkShape rejects sheets without rows or narrower than minCols.
func checkShape(rows [][]string, minCols int) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width < minCols {
		return fmt.Errorf("%w: expected at least %d, got %d", ErrInsufficientColumns, minCols, width)
	}
	return nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseCount accepts integers and integral floats ("12", "12.0").
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(f), nil
}

// parseOptionalCount returns nil for empty cells.
func parseOptionalCount(s string) (*int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := parseCount(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
