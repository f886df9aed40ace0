package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"route-assignment-service/internal/domain"
)

const (
	fieldVIN         = "vin"
	fieldVehicleName = "vehicle_name"
	fieldStatus      = "operational_status"
	fieldFuelType    = "fuel_type"
	fieldMaxBags     = "max_bags"
	fieldCubicFeet   = "cubic_feet"
	fleetMinWidth    = 3
	groundedToken    = "GROUNDED"
)

var fleetFields = []FieldAliases{
	{Field: fieldVIN, Aliases: []string{"vin"}},
	{Field: fieldServiceType, Aliases: []string{"service type", "servicetype", "vehicle type", "type"}},
	{Field: fieldVehicleName, Aliases: []string{"vehicle name", "vehiclename", "name"}},
	{Field: fieldStatus, Aliases: []string{"operational status", "status"}},
	{Field: fieldFuelType, Aliases: []string{"fuel type", "fuel", "powertrain"}},
	{Field: fieldMaxBags, Aliases: []string{"max bags", "bags"}},
	{Field: fieldCubicFeet, Aliases: []string{"cubic feet", "cargo volume", "cu ft"}},
}

var fleetFallback = map[string]int{
	fieldVIN:         0,
	fieldServiceType: 1,
	fieldVehicleName: 2,
	fieldStatus:      11,
}

// electricTokens mark a vehicle as electric when they appear as a whole word in
// its fuel type or display name.
var electricTokens = map[string]bool{"ELECTRIC": true, "EV": true, "BEV": true, "RIVIAN": true}

// ParseFleet turns fleet inventory rows into VehicleRecords. Rows whose combined
// text contains GROUNDED are excluded before validation and counted as skipped.
// Capacity limits come from the catalog unless the sheet overrides them.
func ParseFleet(rows [][]string, opts Options) (Result[domain.VehicleRecord], error) {
	var res Result[domain.VehicleRecord]
	if err := checkShape(rows, fleetMinWidth); err != nil {
		return res, fmt.Errorf("parse fleet: %w", err)
	}

	layout := opts.mapper(fleetFields).Map(rows, fleetFallback)
	cat := opts.catalog()
	firstSeen := make(map[string]int)

	for i := layout.DataStart; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if blankRow(row) {
			continue
		}
		if strings.Contains(strings.ToUpper(strings.Join(row, " ")), groundedToken) {
			res.Skipped++
			continue
		}

		vin := strings.ToUpper(layout.Cell(row, fieldVIN))
		if vin == "" {
			res.errorf("Row %d: VIN is empty.", rowNum)
			continue
		}
		name := layout.Cell(row, fieldVehicleName)
		if name == "" {
			res.errorf("Row %d: Vehicle name is empty.", rowNum)
			continue
		}
		rawService := layout.Cell(row, fieldServiceType)
		if rawService == "" {
			res.errorf("Row %d: Service type is empty.", rowNum)
			continue
		}
		serviceType, err := cat.ServiceType(rawService)
		if err != nil {
			res.errorf("Row %d: Service type '%s' is unrecognized.", rowNum, rawService)
			continue
		}
		if first, dup := firstSeen[vin]; dup {
			res.errorf("Row %d: VIN %s duplicates row %d.", rowNum, vin, first)
			continue
		}

		status := strings.ToUpper(layout.Cell(row, fieldStatus))
		if status == "" {
			status = domain.StatusOperational
		}

		rec := domain.VehicleRecord{
			VIN:         vin,
			Name:        name,
			ServiceType: serviceType,
			Status:      status,
			Electric:    cat.IsElectric(serviceType) || mentionsElectric(layout.Cell(row, fieldFuelType), name),
		}
		if st, ok := cat.Lookup(serviceType); ok {
			rec.MaxBags = st.MaxBags
			rec.CubicFeet = st.CubicFeet
		}

		if raw := layout.Cell(row, fieldMaxBags); raw != "" {
			if n, err := parseCount(raw); err == nil && n > 0 {
				rec.MaxBags = n
			} else {
				res.warnf("Row %d: max bags '%s' is not a positive number; catalog value kept.", rowNum, raw)
			}
		}
		if raw := layout.Cell(row, fieldCubicFeet); raw != "" {
			if d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "")); err == nil && d.IsPositive() {
				rec.CubicFeet = d
			} else {
				res.warnf("Row %d: cubic feet '%s' is not a positive number; catalog value kept.", rowNum, raw)
			}
		}

		firstSeen[vin] = rowNum
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func mentionsElectric(texts ...string) bool {
	for _, t := range texts {
		words := strings.FieldsFunc(strings.ToUpper(t), func(r rune) bool {
			return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
		})
		for _, w := range words {
			if electricTokens[w] {
				return true
			}
		}
	}
	return false
}
