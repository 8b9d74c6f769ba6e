// Package actions implements the dashboard's action functions. Every action returns a
// domain.Result; none of them panics or returns an error to the caller.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/retry"
	"github.com/vietddude/autodash/internal/infra/drive"
	"github.com/vietddude/autodash/internal/infra/llm"
	"github.com/vietddude/autodash/internal/infra/mail"
	"github.com/vietddude/autodash/internal/infra/pdf"
	"github.com/vietddude/autodash/internal/infra/storage"
	"github.com/vietddude/autodash/internal/infra/telemetry"
	"github.com/vietddude/autodash/internal/metrics"
)

// Trigger values recorded with each run.
const (
	TriggerUI        = "ui"
	TriggerCLI       = "cli"
	TriggerScheduler = "scheduler"
	TriggerTask      = "task"
)

// JSONFetcher fetches and decodes a JSON document.
type JSONFetcher interface {
	GetJSON(ctx context.Context, endpoint string, query url.Values, out any) error
}

// StatusChecker reports the HTTP status of a URL.
type StatusChecker interface {
	Check(ctx context.Context, target string) (int, error)
}

// CloudStorage is the subset of the Drive client used by backups.
type CloudStorage interface {
	FindFolder(ctx context.Context, title string) (string, bool, error)
	CreateFolder(ctx context.Context, title string) (string, error)
	Upload(ctx context.Context, folderID, localPath string) (drive.UploadedFile, error)
}

// Mailer sends one message.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Deps are the collaborators. A nil collaborator makes its actions report a configuration error.
type Deps struct {
	BTC        JSONFetcher
	ETH        JSONFetcher
	Weather    JSONFetcher
	News       JSONFetcher
	Uptime     StatusChecker
	Summarizer llm.Summarizer
	Storage    CloudStorage
	Mailer     Mailer
	Telemetry  telemetry.Source
	PDF        pdf.Extractor
	History    storage.RunRepository

	Now   func() time.Time
	Sleep retry.Sleeper
	NewID func() string
}

// Request names an action and carries its inputs.
type Request struct {
	Action  domain.ActionName
	Trigger string

	City     string
	URL      string
	Query    string
	Backup   BackupRequest
	Email    EmailRequest
	Document *Document
	Task     string
}

// Service runs actions and records every run.
type Service struct {
	cfg   *config.AppConfig
	deps  Deps
	tasks map[string]config.TaskConfig
	log   *slog.Logger
}

// NewService creates a Service. Missing clock, sleeper and id generator get real defaults.
func NewService(cfg *config.AppConfig, deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = retry.SleepContext
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	tasks := make(map[string]config.TaskConfig, len(cfg.Scheduler.Tasks))
	for _, t := range cfg.Scheduler.Tasks {
		tasks[t.Name] = t
	}

	return &Service{
		cfg:   cfg,
		deps:  deps,
		tasks: tasks,
		log:   slog.Default().With("component", "actions"),
	}
}

// Execute dispatches req, stamps timing, and records the run.
func (s *Service) Execute(ctx context.Context, req Request) domain.Result {
	start := s.deps.Now()

	var res domain.Result
	switch req.Action {
	case domain.ActionBTCPrice:
		res = s.BTCPrice(ctx)
	case domain.ActionETHPrice:
		res = s.ETHPrice(ctx)
	case domain.ActionWeather:
		res = s.Weather(ctx, req.City)
	case domain.ActionNews:
		res = s.News(ctx, req.Query)
	case domain.ActionUptime:
		res = s.Uptime(ctx, req.URL)
	case domain.ActionPDFSummary:
		res = s.SummarizePDF(ctx, req.Document)
	case domain.ActionBackup:
		res = s.Backup(ctx, req.Backup)
	case domain.ActionEmail:
		res = s.SendEmail(ctx, req.Email)
	case domain.ActionMachineReport:
		res = s.MachineReport(ctx)
	case domain.ActionTask:
		res = s.RunTask(ctx, req.Task)
	default:
		res = domain.Failure(req.Action, domain.KindInput, fmt.Sprintf("Unknown action '%s'.", req.Action))
	}

	res.StartedAt = start
	res.Duration = s.deps.Now().Sub(start)
	s.record(ctx, res, req.Trigger)
	return res
}

func (s *Service) record(ctx context.Context, res domain.Result, trigger string) {
	if trigger == "" {
		trigger = TriggerUI
	}

	outcome := "success"
	if !res.OK {
		outcome = "error"
		metrics.ActionErrorsTotal.WithLabelValues(string(res.Action), string(res.Kind)).Inc()
	}
	metrics.ActionRunsTotal.WithLabelValues(string(res.Action), outcome, trigger).Inc()
	metrics.ActionLatency.WithLabelValues(string(res.Action)).Observe(res.Duration.Seconds())

	attrs := []any{"action", res.Action, "ok", res.OK, "duration", res.Duration, "trigger", trigger}
	if res.OK {
		s.log.Info("Action finished", attrs...)
	} else {
		s.log.Warn("Action failed", append(attrs, "kind", res.Kind, "message", res.Message)...)
	}

	if s.deps.History == nil {
		return
	}
	if err := s.deps.History.Save(ctx, domain.NewRunRecord(s.deps.NewID(), res, trigger)); err != nil {
		s.log.Error("Failed to save run history", "action", res.Action, "error", err)
	}
}

// retryOpts wires retry attempts into metrics, logs, and the injected sleeper.
func (s *Service) retryOpts(op string) []retry.Option {
	return []retry.Option{
		retry.WithSleeper(s.deps.Sleep),
		retry.OnRetry(func(attempt int, delay time.Duration, err error) {
			metrics.RetriesTotal.WithLabelValues(op).Inc()
			s.log.Warn("Retrying", "operation", op, "attempt", attempt, "delay", delay, "error", err)
		}),
	}
}

func (s *Service) policy() retry.Policy {
	return s.cfg.Retry
}
