package ingest

import (
	"fmt"
	"strings"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/normalize"
)

const (
	fieldTransporterID  = "transporter_id"
	fieldDriverName     = "driver_name"
	fieldProgress       = "progress_status"
	driverMinWidth      = 6
	missingDriverMarker = "missing"
)

var driverAssignmentFields = []FieldAliases{
	{Field: fieldRouteCode, Aliases: []string{"route code", "routecode", "route"}},
	{Field: fieldOperator, Aliases: []string{"dsp", "operator", "company"}},
	{Field: fieldTransporterID, Aliases: []string{"transporter id", "transporter", "driver id"}},
	{Field: fieldDriverName, Aliases: []string{"driver name", "driver"}},
	{Field: fieldProgress, Aliases: []string{"route progress", "progress", "status"}},
	{Field: fieldServiceType, Aliases: []string{"delivery service type", "service type", "service"}},
}

var driverAssignmentFallback = map[string]int{
	fieldRouteCode:     0,
	fieldOperator:      1,
	fieldTransporterID: 2,
	fieldDriverName:    3,
	fieldProgress:      4,
	fieldServiceType:   5,
}

// ParseDriverAssignments turns the driver-assignment export into records.
// A route listed twice keeps its first driver; the repeat is a warning.
func ParseDriverAssignments(rows [][]string, opts Options) (Result[domain.DriverAssignmentRecord], error) {
	var res Result[domain.DriverAssignmentRecord]
	if err := checkShape(rows, driverMinWidth); err != nil {
		return res, fmt.Errorf("parse driver assignments: %w", err)
	}

	layout := opts.mapper(driverAssignmentFields).Map(rows, driverAssignmentFallback)
	if !layout.HeaderDetected {
		layout.Columns = ProbeColumns(rows, layout.DataStart, layout.Columns, []FieldPattern{
			{Field: fieldRouteCode, Match: looksLikeRouteCode},
			{Field: fieldDriverName, Match: looksLikePersonName},
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

		transporter := layout.Cell(row, fieldTransporterID)
		if transporter == "" {
			res.errorf("Row %d: Transporter ID is empty.", rowNum)
			continue
		}
		driver := layout.Cell(row, fieldDriverName)
		if driver == "" || strings.EqualFold(driver, missingDriverMarker) {
			res.errorf("Row %d: Driver name is empty or missing.", rowNum)
			continue
		}
		rawCode := layout.Cell(row, fieldRouteCode)
		code, err := normalize.RouteCode(rawCode)
		if err != nil {
			res.errorf("Row %d: Route code '%s' is invalid or empty.", rowNum, rawCode)
			continue
		}
		rawService := layout.Cell(row, fieldServiceType)
		serviceType, err := cat.ServiceType(rawService)
		if err != nil {
			res.errorf("Row %d: Service type '%s' is unrecognized.", rowNum, rawService)
			continue
		}
		if first, dup := firstSeen[code]; dup {
			res.warnf("Row %d: Route %s already assigned at row %d; ignored.", rowNum, code, first)
			continue
		}

		firstSeen[code] = rowNum
		res.Records = append(res.Records, domain.DriverAssignmentRecord{
			RouteCode:      code,
			TransporterID:  transporter,
			DriverName:     driver,
			Operator:       layout.Cell(row, fieldOperator),
			ProgressStatus: layout.Cell(row, fieldProgress),
			ServiceType:    serviceType,
		})
	}

	return res, nil
}
