package repository

import (
	"context"
	"time"

	"aircheck/internal/domain"
)

// ProjectRepository handles persistence of uploaded project descriptors.
// Reports themselves are never stored; only the schedule input is.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, limit int) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes projects last updated before the cutoff and
	// returns how many were removed. Used by the retention janitor.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the number of stored projects
	Count(ctx context.Context) (int, error)
}
