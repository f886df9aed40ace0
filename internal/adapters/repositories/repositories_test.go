package repositories

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/db"
)

var day0 = time.Date(2026, 2, 10, 6, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn))
	// Idempotent.
	require.NoError(t, InitSchema(context.Background(), conn))
	return conn
}

func usage(driver, vin string, days int) domain.AffinityRecord {
	return domain.AffinityRecord{DriverName: driver, VIN: vin, RouteCode: "CX101", AssignedAt: day0.AddDate(0, 0, days)}
}

func TestAffinityPreferredVehicles(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLAffinityRepository(openTestDB(t), db.SQLite)

	require.NoError(t, repo.RecordUsage(ctx, []domain.AffinityRecord{
		usage("Ana Ruiz", "VIN1", 0),
		usage("Ana Ruiz", "VIN1", 1),
		usage("Ana Ruiz", "VIN2", 5),
		usage("Ben Cole", "VIN3", 5),
		{DriverName: "", VIN: "VIN9", AssignedAt: day0},
	}))

	vins, err := repo.PreferredVehicles(ctx, "Ana Ruiz", day0.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, []string{"VIN1", "VIN2"}, vins, "most frequent vehicle ranks first")

	vins, err = repo.PreferredVehicles(ctx, "Ana Ruiz", day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"VIN2"}, vins, "stale vehicles fall out of the window")

	vins, err = repo.PreferredVehicles(ctx, "Cara Diaz", day0)
	require.NoError(t, err)
	assert.Empty(t, vins)
}

func TestAffinityStatsAndPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLAffinityRepository(openTestDB(t), db.SQLite)

	require.NoError(t, repo.RecordUsage(ctx, []domain.AffinityRecord{
		usage("Ben Cole", "VIN3", 0),
		usage("Ana Ruiz", "VIN2", 3),
		usage("Ana Ruiz", "VIN1", 1),
		usage("Ana Ruiz", "VIN1", 2),
	}))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AffinityStat{
		{DriverName: "Ana Ruiz", VIN: "VIN1", Count: 2, LastUsed: day0.AddDate(0, 0, 2)},
		{DriverName: "Ana Ruiz", VIN: "VIN2", Count: 1, LastUsed: day0.AddDate(0, 0, 3)},
		{DriverName: "Ben Cole", VIN: "VIN3", Count: 1, LastUsed: day0},
	}, stats)

	n, err := repo.Prune(ctx, day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestAssignmentHistoryReplacesCycle(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLAssignmentRepository(openTestDB(t), db.SQLite)

	entry := func(cycle, routeCode, vin string, status domain.AssignmentStatus) domain.AssignmentHistoryEntry {
		return domain.AssignmentHistoryEntry{
			CycleID: cycle, RouteCode: routeCode, VIN: vin, ServiceType: "svc",
			DriverName: "Ana Ruiz", Status: status, AssignedAt: day0,
		}
	}

	require.NoError(t, repo.SaveAssignments(ctx, []domain.AssignmentHistoryEntry{
		entry("c1", "CX102", "VIN2", domain.StatusAutoAssigned),
		entry("c1", "CX101", "VIN1", domain.StatusAutoAssigned),
		entry("c1", "CX103", "", domain.StatusUnresolved),
	}))
	require.NoError(t, repo.SaveAssignments(ctx, []domain.AssignmentHistoryEntry{
		entry("c2", "CX900", "VIN9", domain.StatusManuallyAssigned),
	}))
	require.NoError(t, repo.SaveAssignments(ctx, []domain.AssignmentHistoryEntry{
		entry("c1", "CX101", "VIN4", domain.StatusAuthorizedAssigned),
		entry("c1", "CX102", "VIN2", domain.StatusAutoAssigned),
	}))

	got, err := repo.ListAssignments(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []domain.AssignmentHistoryEntry{
		entry("c1", "CX101", "VIN4", domain.StatusAuthorizedAssigned),
		entry("c1", "CX102", "VIN2", domain.StatusAutoAssigned),
	}, got)

	other, err := repo.ListAssignments(ctx, "c2")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	none, err := repo.ListAssignments(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveAssignmentsRejectsMixedCycles(t *testing.T) {
	repo := NewSQLAssignmentRepository(openTestDB(t), db.SQLite)
	err := repo.SaveAssignments(context.Background(), []domain.AssignmentHistoryEntry{
		{CycleID: "c1", RouteCode: "CX101"},
		{CycleID: "c2", RouteCode: "CX102"},
	})
	assert.ErrorContains(t, err, "belongs to cycle")
}

func TestNilDB(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, InitSchema(ctx, nil))
	_, err := (&SQLAffinityRepository{}).PreferredVehicles(ctx, "Ana Ruiz", day0)
	assert.Error(t, err)
	_, err = (&SQLAssignmentRepository{}).ListAssignments(ctx, "c1")
	assert.Error(t, err)
}

func TestSeedAffinityFromJSON(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "affinity.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"driver_name": " Ana Ruiz ", "vin": "vin1", "route_code": "cx 101", "assigned_at": "2026-02-10T06:00:00Z"},
		{"driver_name": "Ana Ruiz", "vin": "VIN1", "route_code": "CX102", "assigned_at": "2026-02-11T06:00:00Z"}
	]`), 0o600))

	n, err := SeedAffinityFromJSON(ctx, conn, db.SQLite, good)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	vins, err := NewSQLAffinityRepository(conn, db.SQLite).PreferredVehicles(ctx, "Ana Ruiz", day0.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, []string{"VIN1"}, vins)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"driver_name": "Ana Ruiz", "vin": ""}]`), 0o600))
	_, err = SeedAffinityFromJSON(ctx, conn, db.SQLite, bad)
	assert.ErrorContains(t, err, "vin cannot be empty")
}
