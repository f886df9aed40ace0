package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/db"
	"route-assignment-service/internal/platform/obs"
)

// SQLAssignmentRepository keeps the latest assignment of every route per cycle.
type SQLAssignmentRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLAssignmentRepository(conn *sql.DB, dialect db.Dialect) *SQLAssignmentRepository {
	return &SQLAssignmentRepository{DB: conn, Dialect: dialect}
}

// SaveAssignments replaces the stored rows of the entries' cycle.
func (s *SQLAssignmentRepository) SaveAssignments(ctx context.Context, entries []domain.AssignmentHistoryEntry) (err error) {
	defer obs.Time(ctx, "assignments.Save")(&err)

	if s.DB == nil {
		return errors.New("save assignments: db is nil")
	}
	if len(entries) == 0 {
		return nil
	}

	cycleID := entries[0].CycleID
	for i, e := range entries {
		if e.CycleID != cycleID {
			return fmt.Errorf("save assignments: entry #%d belongs to cycle %q, want %q", i+1, e.CycleID, cycleID)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save assignments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.Dialect.Rebind(`DELETE FROM assignment_history WHERE cycle_id = ?;`), cycleID); err != nil {
		return fmt.Errorf("save assignments: clear cycle %q: %w", cycleID, err)
	}

	q := s.Dialect.Rebind(`
	INSERT INTO assignment_history (
		cycle_id,
		route_code,
		vin,
		service_type,
		driver_name,
		status,
		assigned_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (cycle_id, route_code)
	DO UPDATE SET
		vin = excluded.vin,
		service_type = excluded.service_type,
		driver_name = excluded.driver_name,
		status = excluded.status,
		assigned_at = excluded.assigned_at;
	`)

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("save assignments: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.CycleID,
			e.RouteCode,
			e.VIN,
			e.ServiceType,
			e.DriverName,
			string(e.Status),
			e.AssignedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("save assignments: upsert route=%s: %w", e.RouteCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save assignments: commit tx: %w", err)
	}

	return nil
}

func (s *SQLAssignmentRepository) ListAssignments(ctx context.Context, cycleID string) (_ []domain.AssignmentHistoryEntry, err error) {
	defer obs.Time(ctx, "assignments.List")(&err)

	if s.DB == nil {
		return nil, errors.New("list assignments: db is nil")
	}

	q := s.Dialect.Rebind(`
	SELECT cycle_id, route_code, vin, service_type, driver_name, status, assigned_at
	FROM assignment_history
	WHERE cycle_id = ?
	ORDER BY route_code;
	`)

	rows, err := s.DB.QueryContext(ctx, q, cycleID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: query assignment_history table: %w", err)
	}
	defer rows.Close()

	out := []domain.AssignmentHistoryEntry{}
	for rows.Next() {
		var e domain.AssignmentHistoryEntry
		var status string
		var at int64
		if err := rows.Scan(&e.CycleID, &e.RouteCode, &e.VIN, &e.ServiceType, &e.DriverName, &status, &at); err != nil {
			return nil, fmt.Errorf("list assignments: scan rows: %w", err)
		}
		e.Status = domain.AssignmentStatus(status)
		e.AssignedAt = time.Unix(at, 0).UTC()
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: iterate rows: %w", err)
	}

	return out, nil
}
