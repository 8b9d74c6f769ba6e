package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/vietddude/autodash/internal/actions"
	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/session"
	"github.com/vietddude/autodash/internal/core/worker"
	"github.com/vietddude/autodash/internal/dashboard"
	"github.com/vietddude/autodash/internal/infra/drive"
	"github.com/vietddude/autodash/internal/infra/llm"
	"github.com/vietddude/autodash/internal/infra/mail"
	"github.com/vietddude/autodash/internal/infra/pdf"
	"github.com/vietddude/autodash/internal/infra/provider"
	redisclient "github.com/vietddude/autodash/internal/infra/redis"
	"github.com/vietddude/autodash/internal/infra/storage"
	"github.com/vietddude/autodash/internal/infra/storage/memory"
	"github.com/vietddude/autodash/internal/infra/storage/postgres"
	"github.com/vietddude/autodash/internal/infra/telemetry"
	"github.com/vietddude/autodash/internal/scheduler"
)

// App is the main application struct that manages the dashboard lifecycle.
type App struct {
	cfg         *config.AppConfig
	service     *actions.Service
	dash        *dashboard.Dashboard
	server      *dashboard.Server
	scheduler   *scheduler.Scheduler
	pruner      *worker.Pruner
	providers   []*provider.HTTPProvider
	history     storage.RunRepository
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// New creates an App with all dependencies initialized.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	app := &App{cfg: cfg, log: slog.Default()}

	// 1. Run history
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		app.db = db
		app.history = postgres.NewRunRepo(db)
		slog.Info("Using PostgreSQL run history")
	} else {
		app.history = memory.NewRunRepo()
		slog.Info("Using memory run history")
	}

	// 2. Session state
	var store session.Store
	switch cfg.Session.Backend {
	case "redis":
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redisClient = client
		store = redisclient.NewSessionStore(client, cfg.Session.Key)
		slog.Info("Using Redis session store", "key", cfg.Session.Key)
	default:
		store = session.NewMemoryStore()
	}

	// 3. Collaborators
	registry := provider.NewRegistry()

	deps := actions.Deps{
		BTC:       app.addProvider(registry, "coindesk", cfg.Crypto.Timeout),
		ETH:       app.addProvider(registry, "coingecko", cfg.Crypto.Timeout),
		Weather:   app.addProvider(registry, "openweathermap", cfg.Weather.Timeout),
		News:      app.addProvider(registry, "newsapi", cfg.News.Timeout),
		Uptime:    app.addProvider(registry, "uptime", cfg.Uptime.Timeout),
		Telemetry: telemetry.NewSystemSource(),
		PDF:       pdf.NewTextExtractor(),
		History:   app.history,
	}

	if summarizer := newSummarizer(ctx, cfg.LLM); summarizer != nil {
		deps.Summarizer = summarizer
	}

	if cfg.Drive.Enabled {
		client, err := OpenDrive(ctx, cfg.Drive, nil)
		switch {
		case errors.Is(err, drive.ErrNotAuthorized):
			slog.Warn("Google Drive not authorized, run `autodash drive-auth` to enable backups")
		case err != nil:
			slog.Warn("Google Drive unavailable, backups disabled", "error", err)
		default:
			deps.Storage = client
		}
	}

	if cfg.Mail.Username != "" && cfg.Mail.Password != "" {
		deps.Mailer = mail.NewSMTPSender(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Timeout:  cfg.Mail.Timeout,
		})
	}

	// 4. Presentation
	app.service = actions.NewService(cfg, deps)
	app.dash = dashboard.New(app.service, store)

	server, err := dashboard.NewServer(cfg, app.dash, app.service, dashboard.NewMonitor(registry), app.history)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.server = server

	// 5. Background work
	sched, err := scheduler.New(app.triggerTask)
	if err != nil {
		app.Close()
		return nil, err
	}
	if err := sched.Register(cfg.Scheduler.Tasks); err != nil {
		app.Close()
		return nil, err
	}
	app.scheduler = sched
	app.pruner = worker.NewPruner(cfg.History.Retention, app.history)

	return app, nil
}

func (a *App) addProvider(registry *provider.Registry, name string, timeout time.Duration) *provider.HTTPProvider {
	p := provider.NewHTTPProvider(name, timeout)
	registry.Add(p)
	a.providers = append(a.providers, p)
	return p
}

func newSummarizer(ctx context.Context, cfg config.LLMConfig) llm.Summarizer {
	if cfg.Provider == "gemini" && config.IsUnset(cfg.APIKey, config.PlaceholderGeminiKey) {
		slog.Warn("LLM API key not set, summaries disabled")
		return nil
	}
	s, err := llm.New(ctx, llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		slog.Warn("Failed to initialize LLM, summaries disabled", "provider", cfg.Provider, "error", err)
		return nil
	}
	slog.Info("LLM initialized", "summarizer", s.Name())
	return s
}

// OpenDrive builds a Drive client from stored credentials. With a nil authorizer an absent
// token yields drive.ErrNotAuthorized instead of an interactive flow.
func OpenDrive(ctx context.Context, cfg config.DriveConfig, authorizer drive.Authorizer) (*drive.Client, error) {
	oauthCfg, err := drive.LoadOAuthConfig(cfg.ClientSecrets)
	if err != nil {
		return nil, err
	}
	mgr := drive.NewCredentialManager(oauthCfg, drive.NewFileTokenStore(cfg.TokenFile), authorizer)
	ts, err := mgr.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return drive.NewClient(ctx, ts)
}

// triggerTask runs a named task through the dashboard so session state follows.
func (a *App) triggerTask(ctx context.Context, name string) error {
	out, err := a.dash.Run(ctx, actions.Request{
		Action:  domain.ActionTask,
		Task:    name,
		Trigger: actions.TriggerScheduler,
	})
	if err != nil {
		return err
	}
	if out.Warning != "" {
		return errors.New(out.Warning)
	}
	for _, res := range out.Results {
		if !res.OK {
			return fmt.Errorf("%s: %s", res.Kind, res.Message)
		}
	}
	return nil
}

// Dashboard returns the presentation layer, used by one-shot CLI runs.
func (a *App) Dashboard() *dashboard.Dashboard {
	return a.dash
}

// History returns the run history repository.
func (a *App) History() storage.RunRepository {
	return a.history
}

// Start launches the web server and background workers.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Dashboard server failed", "error", err)
			os.Exit(1)
		}
	}()
	a.log.Info("Dashboard listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)

	a.scheduler.Start()
	go a.pruner.Start(ctx)

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}
	return nil
}

// Stop shuts the server and workers down and releases resources.
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if err := a.server.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := a.scheduler.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}
	a.Close()
	return errors.Join(errs...)
}

// Close releases connections without touching the server or scheduler.
func (a *App) Close() {
	for _, p := range a.providers {
		_ = p.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}
