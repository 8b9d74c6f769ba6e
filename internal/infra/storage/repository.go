package storage

import (
	"context"
	"time"

	"github.com/vietddude/autodash/internal/core/domain"
)

// RunRepository stores the history of action runs.
type RunRepository interface {
	// Save records a finished run
	Save(ctx context.Context, run *domain.RunRecord) error

	// Recent returns up to limit runs, newest first
	Recent(ctx context.Context, limit int) ([]*domain.RunRecord, error)

	// LastByAction returns the newest run of an action, or nil if none exists
	LastByAction(ctx context.Context, action domain.ActionName) (*domain.RunRecord, error)

	// DeleteOlderThan removes runs started before cutoff and returns how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
