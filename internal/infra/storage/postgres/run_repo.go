package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/autodash/internal/core/domain"
)

// RunRepo implements storage.RunRepository using PostgreSQL.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new PostgreSQL run repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

type runRow struct {
	ID         string    `db:"id"`
	Action     string    `db:"action"`
	OK         bool      `db:"ok"`
	Kind       string    `db:"kind"`
	Message    string    `db:"message"`
	Trigger    string    `db:"trigger"`
	StartedAt  time.Time `db:"started_at"`
	DurationMS int64     `db:"duration_ms"`
}

func (r runRow) toDomain() *domain.RunRecord {
	return &domain.RunRecord{
		ID:        r.ID,
		Action:    domain.ActionName(r.Action),
		OK:        r.OK,
		Kind:      domain.ErrorKind(r.Kind),
		Message:   r.Message,
		Trigger:   r.Trigger,
		StartedAt: r.StartedAt,
		Duration:  time.Duration(r.DurationMS) * time.Millisecond,
	}
}

const insertRun = `
INSERT INTO action_runs (id, action, ok, kind, message, trigger, started_at, duration_ms)
VALUES (:id, :action, :ok, :kind, :message, :trigger, :started_at, :duration_ms)`

// Save records a finished run.
func (r *RunRepo) Save(ctx context.Context, run *domain.RunRecord) error {
	row := runRow{
		ID:         run.ID,
		Action:     string(run.Action),
		OK:         run.OK,
		Kind:       string(run.Kind),
		Message:    run.Message,
		Trigger:    run.Trigger,
		StartedAt:  run.StartedAt,
		DurationMS: run.Duration.Milliseconds(),
	}
	if _, err := r.db.NamedExecContext(ctx, insertRun, row); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Recent returns the newest runs first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, action, ok, kind, message, trigger, started_at, duration_ms
		 FROM action_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*domain.RunRecord, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toDomain())
	}
	return runs, nil
}

// LastByAction returns the newest run of action, or nil.
func (r *RunRepo) LastByAction(ctx context.Context, action domain.ActionName) (*domain.RunRecord, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, action, ok, kind, message, trigger, started_at, duration_ms
		 FROM action_runs WHERE action = $1 ORDER BY started_at DESC LIMIT 1`, string(action))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}
	return row.toDomain(), nil
}

// DeleteOlderThan prunes runs started before cutoff.
func (r *RunRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM action_runs WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}
	return n, nil
}
