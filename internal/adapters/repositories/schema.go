package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/normalize"
	"route-assignment-service/internal/platform/db"
)

// InitSchema creates the history tables. Both dialects accept the same DDL.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createAffinityQuery := `
	CREATE TABLE IF NOT EXISTS affinity_history (
		driver_name TEXT NOT NULL,
		vin TEXT NOT NULL,
		route_code TEXT NOT NULL,
		assigned_at BIGINT NOT NULL
	);
	`

	createAffinityIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_affinity_history_driver_assigned
	ON affinity_history(driver_name, assigned_at);
	`

	createAssignmentQuery := `
	CREATE TABLE IF NOT EXISTS assignment_history (
		cycle_id TEXT NOT NULL,
		route_code TEXT NOT NULL,
		vin TEXT NOT NULL,
		service_type TEXT NOT NULL,
		driver_name TEXT NOT NULL,
		status TEXT NOT NULL,
		assigned_at BIGINT NOT NULL,
		PRIMARY KEY (cycle_id, route_code)
	);
	`

	statements := []string{
		createAffinityQuery,
		createAffinityIndexQuery,
		createAssignmentQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type AffinitySeed struct {
	DriverName string    `json:"driver_name"`
	VIN        string    `json:"vin"`
	RouteCode  string    `json:"route_code"`
	AssignedAt time.Time `json:"assigned_at"`
}

// SeedAffinityFromJSON loads driver usage exported from another depot.
func SeedAffinityFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed affinity: read %q: %w", jsonPath, err)
	}

	var data []AffinitySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed affinity: parse json: %w", err)
	}

	records := make([]domain.AffinityRecord, 0, len(data))
	for i, item := range data {
		driver := strings.TrimSpace(item.DriverName)
		if driver == "" {
			return 0, fmt.Errorf("seed affinity: item at index %d: driver_name cannot be empty", i+1)
		}

		vin := strings.ToUpper(strings.TrimSpace(item.VIN))
		if vin == "" {
			return 0, fmt.Errorf("seed affinity: item at index %d: vin cannot be empty", i+1)
		}

		if item.AssignedAt.IsZero() {
			return 0, fmt.Errorf("seed affinity: item at index %d: assigned_at is required", i+1)
		}

		records = append(records, domain.AffinityRecord{
			DriverName: driver,
			VIN:        vin,
			RouteCode:  normalize.NormalizeRouteCode(item.RouteCode),
			AssignedAt: item.AssignedAt,
		})
	}

	repo := NewSQLAffinityRepository(conn, dialect)
	if err := repo.RecordUsage(ctx, records); err != nil {
		return 0, fmt.Errorf("seed affinity: %w", err)
	}

	return len(records), nil
}
