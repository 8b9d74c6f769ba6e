package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
)

// RunTask runs the action bound to a named task. The inner result is attached as Nested so
// callers can apply it like a direct run.
func (s *Service) RunTask(ctx context.Context, name string) domain.Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Failure(domain.ActionTask, domain.KindInput, "Please enter a task name to trigger.")
	}
	t, ok := s.tasks[name]
	if !ok {
		return domain.Failure(domain.ActionTask, domain.KindInput, fmt.Sprintf("Unknown task '%s'.", name))
	}

	s.log.Info("Running scheduled task now", "task", name, "action", t.Action)
	inner := s.Execute(ctx, TaskRequest(t, TriggerTask))

	var res domain.Result
	if inner.OK {
		res = domain.Success(domain.ActionTask, fmt.Sprintf("Task '%s' executed successfully.", name))
	} else {
		res = domain.Failure(domain.ActionTask, inner.Kind, fmt.Sprintf("Task '%s' failed: %s", name, inner.Message))
	}
	res.Nested = []domain.Result{inner}
	return res
}

// TaskRequest builds the request a task stands for.
func TaskRequest(t config.TaskConfig, trigger string) Request {
	return Request{
		Action:  domain.ActionName(t.Action),
		Trigger: trigger,
		City:    t.City,
		URL:     t.URL,
		Query:   t.Query,
	}
}

// Tasks returns the configured tasks sorted by name.
func (s *Service) Tasks() []config.TaskConfig {
	out := make([]config.TaskConfig, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
