package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/normalize"
)

func allUploaded() map[domain.Source]bool {
	out := make(map[domain.Source]bool)
	for _, s := range domain.Sources {
		out[s] = true
	}
	return out
}

func TestValidateCrossFile(t *testing.T) {
	broken := vehicle("VIN3", normalize.ExtraLargeVan, false)
	broken.Status = "IN_MAINTENANCE"

	got := ValidateCrossFile(CrossFileInput{
		Uploaded: allUploaded(),
		Routes: []domain.RouteRecord{
			route("CX101", normalize.CustomDeliveryVan14),
			route("CX102", normalize.ExtraLargeVan),
			route("CX103", normalize.ExtraLargeVan),
		},
		Vehicles: []domain.VehicleRecord{vehicle("VIN1", normalize.CustomDeliveryVan14, false), broken},
		Drivers: []domain.DriverAssignmentRecord{
			{RouteCode: "CX101", ServiceType: normalize.CustomDeliveryVan14},
		},
		Manifests: []domain.LoadManifestRecord{
			{RouteCode: "CX101", ServiceType: normalize.P31DeliveryTruck},
			{RouteCode: "CX102"},
			{RouteCode: "CX103"},
			{RouteCode: "CX404"},
			{RouteCode: "CX404"},
		},
	})

	assert.Equal(t, []string{
		"Route CX101 service type mismatch: route plan '" + normalize.CustomDeliveryVan14 + "', load manifest '" + normalize.P31DeliveryTruck + "'.",
		"Route CX404 has a load manifest but is not in the route plan.",
		"No operational vehicles of service type '" + normalize.ExtraLargeVan + "' for 2 route(s).",
	}, got)
}

func TestValidateCrossFileNothingUploaded(t *testing.T) {
	got := ValidateCrossFile(CrossFileInput{})
	assert.Equal(t, []string{
		"Route plan not uploaded yet.",
		"Fleet not uploaded yet.",
		"Driver assignments not uploaded yet.",
		"Load manifests not uploaded yet.",
	}, got)
}
