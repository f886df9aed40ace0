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

// SQLAffinityRepository stores one row per driver-vehicle usage and ranks
// vehicles by how often and how recently a driver took them.
type SQLAffinityRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLAffinityRepository(conn *sql.DB, dialect db.Dialect) *SQLAffinityRepository {
	return &SQLAffinityRepository{DB: conn, Dialect: dialect}
}

func (s *SQLAffinityRepository) RecordUsage(ctx context.Context, records []domain.AffinityRecord) (err error) {
	defer obs.Time(ctx, "affinity.RecordUsage")(&err)

	if s.DB == nil {
		return errors.New("record affinity: db is nil")
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record affinity: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.Dialect.Rebind(`
	INSERT INTO affinity_history (driver_name, vin, route_code, assigned_at)
	VALUES (?, ?, ?, ?);
	`)

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("record affinity: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.DriverName == "" || r.VIN == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, r.DriverName, r.VIN, r.RouteCode, r.AssignedAt.Unix()); err != nil {
			return fmt.Errorf("record affinity: insert driver=%q vin=%s: %w", r.DriverName, r.VIN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record affinity: commit tx: %w", err)
	}

	return nil
}

func (s *SQLAffinityRepository) PreferredVehicles(ctx context.Context, driverName string, since time.Time) (_ []string, err error) {
	defer obs.Time(ctx, "affinity.PreferredVehicles")(&err)

	if s.DB == nil {
		return nil, errors.New("preferred vehicles: db is nil")
	}
	if driverName == "" {
		return nil, nil
	}

	q := s.Dialect.Rebind(`
	SELECT vin
	FROM affinity_history
	WHERE driver_name = ?
	GROUP BY vin
	HAVING MAX(assigned_at) > ?
	ORDER BY COUNT(*) DESC, MAX(assigned_at) DESC, vin;
	`)

	rows, err := s.DB.QueryContext(ctx, q, driverName, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("preferred vehicles: query driver=%q: %w", driverName, err)
	}
	defer rows.Close()

	var vins []string
	for rows.Next() {
		var vin string
		if err := rows.Scan(&vin); err != nil {
			return nil, fmt.Errorf("preferred vehicles: scan rows: %w", err)
		}
		vins = append(vins, vin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("preferred vehicles: iterate rows: %w", err)
	}

	return vins, nil
}

func (s *SQLAffinityRepository) Prune(ctx context.Context, before time.Time) (_ int64, err error) {
	defer obs.Time(ctx, "affinity.Prune")(&err)

	if s.DB == nil {
		return 0, errors.New("prune affinity: db is nil")
	}

	q := s.Dialect.Rebind(`DELETE FROM affinity_history WHERE assigned_at < ?;`)
	res, err := s.DB.ExecContext(ctx, q, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune affinity: delete: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune affinity: rows affected: %w", err)
	}
	return n, nil
}

func (s *SQLAffinityRepository) Stats(ctx context.Context) (_ []domain.AffinityStat, err error) {
	defer obs.Time(ctx, "affinity.Stats")(&err)

	if s.DB == nil {
		return nil, errors.New("affinity stats: db is nil")
	}

	q := `
	SELECT driver_name, vin, COUNT(*), MAX(assigned_at)
	FROM affinity_history
	GROUP BY driver_name, vin
	ORDER BY driver_name, COUNT(*) DESC, vin;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("affinity stats: query affinity_history table: %w", err)
	}
	defer rows.Close()

	var out []domain.AffinityStat
	for rows.Next() {
		var st domain.AffinityStat
		var last int64
		if err := rows.Scan(&st.DriverName, &st.VIN, &st.Count, &last); err != nil {
			return nil, fmt.Errorf("affinity stats: scan rows: %w", err)
		}
		st.LastUsed = time.Unix(last, 0).UTC()
		out = append(out, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("affinity stats: iterate rows: %w", err)
	}

	return out, nil
}
