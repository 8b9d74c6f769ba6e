package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/autodash/internal/actions"
	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/session"
	"github.com/vietddude/autodash/internal/infra/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// ActionCrypto refreshes both prices with one press.
const ActionCrypto = "crypto"

const timeLayout = "2006-01-02 15:04:05"

// TaskLister lists the named tasks shown on the page.
type TaskLister interface {
	Tasks() []config.TaskConfig
}

// Server provides the dashboard page, a small JSON API, and health endpoints.
type Server struct {
	cfg     *config.AppConfig
	dash    *Dashboard
	tasks   TaskLister
	monitor *Monitor
	history storage.RunRepository
	tmpl    *template.Template
	server  *http.Server
	log     *slog.Logger
}

// NewServer creates a new dashboard server. history may be nil.
func NewServer(cfg *config.AppConfig, dash *Dashboard, tasks TaskLister, monitor *Monitor, history storage.RunRepository) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.Local().Format(timeLayout)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		cfg:     cfg,
		dash:    dash,
		tasks:   tasks,
		monitor: monitor,
		history: history,
		tmpl:    tmpl,
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:           http.NewCrossOriginProtection().Handler(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: slog.Default().With("component", "server"),
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /actions/{name}", s.handleAction)
	mux.HandleFunc("POST /api/actions/{name}", s.handleAPIAction)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type resultView struct {
	Action  domain.ActionName
	OK      bool
	Kind    domain.ErrorKind
	Message string
}

type pageData struct {
	Title    string
	State    session.State
	Results  []resultView
	Warning  string
	Error    string
	Tasks    []config.TaskConfig
	Runs     []*domain.RunRecord
	Defaults defaultsView
	Now      string
}

type defaultsView struct {
	City        string
	URL         string
	Query       string
	SourceDir   string
	OutputDir   string
	DriveFolder string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state, err := s.dash.State(r.Context())
	if err != nil {
		s.log.Error("Failed to load session", "error", err)
		state = session.NewState()
	}
	s.render(w, r, http.StatusOK, Outcome{State: state}, "")
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.requests(w, r)
	if err != nil {
		state, _ := s.dash.State(r.Context())
		s.render(w, r, http.StatusBadRequest, Outcome{State: state}, err.Error())
		return
	}

	out, err := s.dash.Run(r.Context(), reqs...)
	if err != nil {
		s.log.Error("Action run failed", "error", err)
		s.render(w, r, http.StatusInternalServerError, out, err.Error())
		return
	}
	s.render(w, r, http.StatusOK, out, "")
}

func (s *Server) handleAPIAction(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.requests(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	for i := range reqs {
		reqs[i].Trigger = actions.TriggerCLI
	}

	out, err := s.dash.Run(r.Context(), reqs...)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if out.Warning != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.dash.State(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []*domain.RunRecord{})
		return
	}
	if name := r.URL.Query().Get("action"); name != "" {
		s.handleLastRun(w, r, domain.ActionName(name))
		return
	}
	limit := s.cfg.History.PageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	runs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleLastRun answers /api/runs?action=name with the newest run of that action.
func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request, action domain.ActionName) {
	if !action.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown action %q", action)})
		return
	}
	run, err := s.history.LastByAction(r.Context(), action)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs recorded for " + string(action)})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth()
	status := http.StatusOK
	if report.SystemStatus == StatusCritical {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.CheckHealth())
}

// requests turns a form post into action requests.
func (s *Server) requests(w http.ResponseWriter, r *http.Request) ([]actions.Request, error) {
	name := r.PathValue("name")
	if name == ActionCrypto {
		return []actions.Request{
			{Action: domain.ActionBTCPrice, Trigger: actions.TriggerUI},
			{Action: domain.ActionETHPrice, Trigger: actions.TriggerUI},
		}, nil
	}

	action := domain.ActionName(name)
	if !action.Valid() {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	req := actions.Request{Action: action, Trigger: actions.TriggerUI}

	if action == domain.ActionPDFSummary {
		doc, err := s.readUpload(w, r)
		if err != nil {
			return nil, err
		}
		req.Document = doc
		return []actions.Request{req}, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	req.City = r.FormValue("city")
	req.URL = r.FormValue("url")
	req.Query = r.FormValue("query")
	req.Task = r.FormValue("task")
	req.Backup = actions.BackupRequest{
		SourceDir:   r.FormValue("source_dir"),
		OutputDir:   r.FormValue("output_dir"),
		DriveFolder: r.FormValue("drive_folder"),
	}
	req.Email = actions.EmailRequest{
		To:      r.FormValue("to"),
		Subject: r.FormValue("subject"),
		Body:    r.FormValue("body"),
	}
	return []actions.Request{req}, nil
}

// readUpload returns nil without error when no file was attached.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*actions.Document, error) {
	limit := s.cfg.PDF.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid upload: %w", err)
	}

	f, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &actions.Document{Name: hdr.Filename, Data: data}, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, out Outcome, errMsg string) {
	data := pageData{
		Title:   s.cfg.Server.Title,
		State:   out.State,
		Warning: out.Warning,
		Error:   errMsg,
		Tasks:   s.tasks.Tasks(),
		Defaults: defaultsView{
			City:        s.cfg.Weather.DefaultCity,
			URL:         s.cfg.Uptime.DefaultURL,
			Query:       s.cfg.News.DefaultQuery,
			SourceDir:   s.cfg.Backup.SourceDir,
			OutputDir:   s.cfg.Backup.OutputDir,
			DriveFolder: s.cfg.Backup.DriveFolder,
		},
		Now: time.Now().Format(timeLayout),
	}
	for _, res := range out.Results {
		data.Results = append(data.Results, resultView{Action: res.Action, OK: res.OK, Kind: res.Kind, Message: res.Message})
	}
	if s.history != nil {
		runs, err := s.history.Recent(r.Context(), s.cfg.History.PageSize)
		if err != nil {
			s.log.Warn("Failed to load run history", "error", err)
		}
		data.Runs = runs
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.log.Error("Failed to render page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
