package ports

import (
	"context"
	"route-assignment-service/internal/domain"
)

// Port: persisted results of assignment passes.
type AssignmentRepository interface {
	// Replace the stored assignments of a cycle.
	SaveAssignments(ctx context.Context, entries []domain.AssignmentHistoryEntry) error
	// List stored assignments of a cycle ordered by route code.
	ListAssignments(ctx context.Context, cycleID string) ([]domain.AssignmentHistoryEntry, error)
}
