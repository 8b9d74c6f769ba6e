package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/autodash/internal/core/domain"
)

// RunRepo keeps run history in process. It is the default when no database is configured.
type RunRepo struct {
	mu   sync.RWMutex
	runs []*domain.RunRecord
}

func NewRunRepo() *RunRepo {
	return &RunRepo{}
}

func (r *RunRepo) Save(ctx context.Context, run *domain.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.runs = append(r.runs, &cp)
	return nil
}

func (r *RunRepo) Recent(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.RunRecord, len(r.runs))
	copy(out, r.runs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RunRepo) LastByAction(ctx context.Context, action domain.ActionName) (*domain.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last *domain.RunRecord
	for _, run := range r.runs {
		if run.Action != action {
			continue
		}
		if last == nil || run.StartedAt.After(last.StartedAt) {
			last = run
		}
	}
	return last, nil
}

func (r *RunRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.runs[:0]
	var removed int64
	for _, run := range r.runs {
		if run.StartedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, run)
	}
	r.runs = kept
	return removed, nil
}
