package ports

import (
	"context"
	"route-assignment-service/internal/domain"
	"time"
)

// Port: persisted driver-vehicle usage history.
type AffinityRepository interface {
	// Record one usage per (driver, vehicle) pair.
	RecordUsage(ctx context.Context, records []domain.AffinityRecord) error
	// Return the driver's vehicles last used after since, most frequently used first.
	PreferredVehicles(ctx context.Context, driverName string, since time.Time) ([]string, error)
	// Remove usage recorded before the cutoff and report how many rows went.
	Prune(ctx context.Context, before time.Time) (int64, error)
	// Summarize usage per (driver, vehicle).
	Stats(ctx context.Context) ([]domain.AffinityStat, error)
}
