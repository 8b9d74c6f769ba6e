// Package scheduler runs named tasks periodically.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-co-op/gocron/v2"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/metrics"
)

// TriggerFunc runs the named task.
type TriggerFunc func(ctx context.Context, task string) error

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
	trigger   TriggerFunc

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	jobs   map[string]string
}

// New creates a new scheduler instance.
func New(trigger TriggerFunc) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		trigger:   trigger,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]string),
	}, nil
}

// Register schedules every task with a positive interval. Trigger-only tasks are skipped.
func (s *Scheduler) Register(tasks []config.TaskConfig) error {
	for _, t := range tasks {
		if t.Interval <= 0 {
			continue
		}
		if err := s.Schedule(t); err != nil {
			return err
		}
	}
	return nil
}

// Schedule adds one periodic task and returns once the job is registered.
func (s *Scheduler) Schedule(t config.TaskConfig) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(t.Interval),
		gocron.NewTask(s.execute, t.Name),
		gocron.WithName(t.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule task %q: %w", t.Name, err)
	}

	s.mu.Lock()
	s.jobs[t.Name] = job.ID().String()
	s.mu.Unlock()

	slog.Info("Scheduled task", "task", t.Name, "action", t.Action, "interval", t.Interval)
	return nil
}

// Jobs returns the scheduled task names mapped to job ids.
func (s *Scheduler) Jobs() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.jobs))
	for k, v := range s.jobs {
		out[k] = v
	}
	return out
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", "jobs", len(s.Jobs()))
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	s.cancel()
	return s.scheduler.Shutdown()
}

// execute is called by gocron to run a scheduled task.
func (s *Scheduler) execute(task string) {
	metrics.ScheduledTasksTotal.WithLabelValues(task).Inc()
	slog.Info("Executing scheduled task", "task", task)

	if err := s.trigger(s.ctx, task); err != nil {
		slog.Error("Scheduled task failed", "task", task, "error", err)
	}
}
