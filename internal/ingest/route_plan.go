package ingest

import (
	"fmt"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/normalize"
)

const (
	fieldOperator     = "operator"
	fieldRouteCode    = "route_code"
	fieldServiceType  = "service_type"
	fieldWave         = "wave"
	fieldStaging      = "staging_location"
	fieldDuration     = "route_duration"
	fieldZones        = "num_zones"
	fieldPackages     = "num_packages"
	fieldCommercial   = "num_commercial_pkgs"
	routePlanMinWidth = 7
)

// Commercial precedes packages so "Num Commercial Pkgs" is not taken as the package column.
var routePlanFields = []FieldAliases{
	{Field: fieldOperator, Aliases: []string{"dsp", "operator", "company"}},
	{Field: fieldRouteCode, Aliases: []string{"route code", "routecode", "route"}},
	{Field: fieldServiceType, Aliases: []string{"service type", "servicetype", "service"}},
	{Field: fieldWave, Aliases: []string{"wave"}},
	{Field: fieldStaging, Aliases: []string{"staging location", "staging"}},
	{Field: fieldDuration, Aliases: []string{"route duration", "duration", "minutes"}},
	{Field: fieldZones, Aliases: []string{"num zones", "zones"}},
	{Field: fieldCommercial, Aliases: []string{"commercial"}},
	{Field: fieldPackages, Aliases: []string{"num packages", "packages", "pkgs"}},
}

var routePlanFallback = map[string]int{
	fieldOperator:    0,
	fieldRouteCode:   1,
	fieldServiceType: 2,
	fieldWave:        3,
	fieldStaging:     4,
	fieldDuration:    5,
	fieldZones:       6,
	fieldPackages:    7,
	fieldCommercial:  8,
}

// ParseRoutePlan turns day-of-plan rows into RouteRecords.
// Malformed rows are reported and skipped; duplicate route codes keep the first row.
func ParseRoutePlan(rows [][]string, opts Options) (Result[domain.RouteRecord], error) {
	var res Result[domain.RouteRecord]
	if err := checkShape(rows, routePlanMinWidth); err != nil {
		return res, fmt.Errorf("parse route plan: %w", err)
	}

	layout := opts.mapper(routePlanFields).Map(rows, routePlanFallback)
	if !layout.HeaderDetected {
		layout.Columns = ProbeColumns(rows, layout.DataStart, layout.Columns, []FieldPattern{
			{Field: fieldRouteCode, Match: looksLikeRouteCode},
		})
	}

	cat := opts.catalog()
	firstSeen := make(map[string]int)

	for i := layout.DataStart; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if blankRow(row) {
			continue
		}

		operator := layout.Cell(row, fieldOperator)
		if operator == "" {
			res.errorf("Row %d: DSP is empty.", rowNum)
			continue
		}

		rawCode := layout.Cell(row, fieldRouteCode)
		code, err := normalize.RouteCode(rawCode)
		if err != nil {
			res.errorf("Row %d: Route code '%s' is invalid: must be 4-5 characters.", rowNum, rawCode)
			continue
		}

		rawService := layout.Cell(row, fieldServiceType)
		serviceType, err := cat.ServiceType(rawService)
		if err != nil {
			res.errorf("Row %d: Service type '%s' is unrecognized.", rowNum, rawService)
			continue
		}

		rawDuration := layout.Cell(row, fieldDuration)
		duration, err := parseCount(rawDuration)
		if err != nil {
			res.errorf("Row %d: Route duration '%s' is not a valid number.", rowNum, rawDuration)
			continue
		}

		if first, dup := firstSeen[code]; dup {
			res.errorf("Row %d: Route code %s duplicates row %d.", rowNum, code, first)
			continue
		}

		rec := domain.RouteRecord{
			Operator:        operator,
			RouteCode:       code,
			ServiceType:     serviceType,
			Wave:            layout.Cell(row, fieldWave),
			StagingLocation: layout.Cell(row, fieldStaging),
			DurationMinutes: duration,
		}

		for _, opt := range []struct {
			field string
			dst   **int
		}{
			{fieldZones, &rec.Zones},
			{fieldPackages, &rec.Packages},
			{fieldCommercial, &rec.CommercialPackages},
		} {
			raw := layout.Cell(row, opt.field)
			n, err := parseOptionalCount(raw)
			if err != nil {
				res.warnf("Row %d: %s '%s' is not a number; ignored.", rowNum, opt.field, raw)
				continue
			}
			*opt.dst = n
		}

		firstSeen[code] = rowNum
		res.Records = append(res.Records, rec)
	}

	return res, nil
}
