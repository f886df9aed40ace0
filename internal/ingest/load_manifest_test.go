package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/normalize"
)

const manifestFixture = `Route Sheets
STG.Q12.1
CX105 NDAY • 4WD P31
DLV3 • TUE, FEB 17, 2026 • CYCLE_1 • 10:20 AM
1 B-7.3B Navy 4564 3   A-16.1T 4
2 B-7.4A Black 4565 5
3 B-7.3B Navy 4564 3
A-29.7T 2
STG.Q12.2
CX106 NDAY – Custom Delivery Van 14ft
DLV3 • TUE, FEB 17, 2026 • CYCLE_1 • 10:40 am
1 E-2.1C Teal 1234 7
CX107 NDAY
CX105 NDAY • 4WD P31
1 B-1.1A Red 9999 1
`

func TestParseLoadManifestText(t *testing.T) {
	res, err := ParseLoadManifestText(manifestFixture, Options{})
	require.NoError(t, err)

	require.Len(t, res.Records, 3)

	assert.Equal(t, domain.LoadManifestRecord{
		RouteCode:       "CX105",
		StagingLocation: "STG.Q12.1",
		ServiceType:     normalize.P31DeliveryTruck,
		WaveTime:        "10:20 AM",
		Bags: []domain.BagEntry{
			{Zone: "B-7.3B", Code: "4564", Color: "NAV", Count: 3},
			{Zone: "B-7.4A", Code: "4565", Color: "BLK", Count: 5},
		},
		Overflow: []domain.OverflowEntry{
			{Zone: "A-16.1T", Code: "A-16.1T", Count: 4},
			{Zone: "A-29.7T", Code: "A-29.7T", Count: 2},
		},
	}, res.Records[0])
	assert.Equal(t, 14, res.Records[0].TotalPackages())

	cx106 := res.Records[1]
	assert.Equal(t, "STG.Q12.2", cx106.StagingLocation)
	assert.Equal(t, normalize.CustomDeliveryVan14, cx106.ServiceType)
	assert.Equal(t, "10:40 AM", cx106.WaveTime)
	require.Len(t, cx106.Bags, 1)
	assert.Equal(t, "TEA", cx106.Bags[0].Color)

	assert.Equal(t, "CX107", res.Records[2].RouteCode)
	assert.Empty(t, res.Records[2].StagingLocation)

	assert.Equal(t, []string{"Route CX107: manifest has no bag or overflow entries."}, res.Warnings)
	assert.Equal(t, []string{"Line 14: Route CX105 appears in more than one manifest; first kept."}, res.Errors)
}

func TestParseLoadManifestEntryBeforeHeader(t *testing.T) {
	res, err := ParseLoadManifestText("B-7.3B Navy 4564 3\nCX200 NDAY\nB-1.1A 2\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Line 1: Bag or overflow entry appears before any route header."}, res.Errors)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []domain.OverflowEntry{{Zone: "B-1.1A", Code: "B-1.1A", Count: 2}}, res.Records[0].Overflow)
}

func TestParseLoadManifestUnknownServiceTypeWarns(t *testing.T) {
	res, err := ParseLoadManifestText("CX300 NDAY • Zeppelin\nB-1.1A 2\n", Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Empty(t, res.Records[0].ServiceType)
	assert.Equal(t, []string{"Line 1: Service type 'Zeppelin' for route CX300 is unrecognized."}, res.Warnings)
}

func TestParseLoadManifestEmpty(t *testing.T) {
	_, err := ParseLoadManifestText(" \n\t", Options{})
	assert.True(t, errors.Is(err, ErrNoText))
}

func TestParseLoadManifestWithoutRouteHeader(t *testing.T) {
	// Lines glued together by a lossy extraction never match a header.
	res, err := ParseLoadManifestText("STG.Q12.1CX105 NDAY - 4WD P31 Delivery Truck1 B-7.3B Navy 4564 3A-16.1T 4\n", Options{})
	assert.True(t, errors.Is(err, ErrNoRouteHeader))
	assert.Empty(t, res.Records)
}

func TestColorCode(t *testing.T) {
	assert.Equal(t, "GRY", ColorCode("grey"))
	assert.Equal(t, "GRY", ColorCode("Gray"))
	assert.Equal(t, "TEA", ColorCode("teal"))
	assert.Equal(t, "RE", ColorCode("re"))
}
