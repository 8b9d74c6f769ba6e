// Package dashboard is the presentation layer: it owns the session state, serialises
// action runs, and serves the web page.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vietddude/autodash/internal/actions"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/session"
)

// Runner executes one action request.
type Runner interface {
	Execute(ctx context.Context, req actions.Request) domain.Result
}

// Outcome is what one button press produced.
type Outcome struct {
	Results []domain.Result
	Warning string
	State   session.State
}

// Dashboard runs actions one at a time and applies their results to the session state.
type Dashboard struct {
	mu     sync.Mutex
	runner Runner
	store  session.Store
	now    func() time.Time
	log    *slog.Logger
}

// New creates a Dashboard.
func New(runner Runner, store session.Store) *Dashboard {
	return &Dashboard{
		runner: runner,
		store:  store,
		now:    time.Now,
		log:    slog.Default().With("component", "dashboard"),
	}
}

// State returns the current session state.
func (d *Dashboard) State(ctx context.Context) (session.State, error) {
	return d.store.Load(ctx)
}

// Run validates and executes reqs in order under the dashboard lock. Input problems are
// returned as a warning and no action runs.
func (d *Dashboard) Run(ctx context.Context, reqs ...actions.Request) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, err := d.store.Load(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load session: %w", err)
	}

	for _, req := range reqs {
		if w := Validate(req); w != "" {
			return Outcome{Warning: w, State: state}, nil
		}
	}

	out := Outcome{Results: make([]domain.Result, 0, len(reqs))}
	changed := false
	for _, req := range reqs {
		res := d.runner.Execute(ctx, req)
		out.Results = append(out.Results, res)
		if d.apply(&state, res) {
			changed = true
		}
	}

	if changed {
		state.UpdatedAt = d.now()
		if err := d.store.Save(ctx, state); err != nil {
			return out, fmt.Errorf("save session: %w", err)
		}
	}
	out.State = state
	return out, nil
}

// apply writes successful results into the slot their action owns, walking nested results.
func (d *Dashboard) apply(state *session.State, res domain.Result) bool {
	changed := false
	for _, n := range res.Nested {
		if d.apply(state, n) {
			changed = true
		}
	}
	if !res.OK {
		return changed
	}
	key, ok := session.KeyFor(res.Action)
	if !ok {
		return changed
	}
	if err := state.Set(key, DisplayValue(res)); err != nil {
		d.log.Error("Failed to update session", "key", key, "error", err)
		return changed
	}
	return true
}

// Validate returns a warning for requests the page must not submit.
func Validate(req actions.Request) string {
	switch req.Action {
	case domain.ActionEmail:
		if strings.TrimSpace(req.Email.To) == "" || strings.TrimSpace(req.Email.Body) == "" {
			return "Please fill in recipient and message for the email."
		}
	case domain.ActionPDFSummary:
		if req.Document == nil || len(req.Document.Data) == 0 {
			return "Please upload a PDF file first."
		}
	case domain.ActionTask:
		if strings.TrimSpace(req.Task) == "" {
			return "Please enter a task name to trigger."
		}
	}
	return ""
}

var printer = message.NewPrinter(language.English)

// FormatUSD renders v as "$1,234.56".
func FormatUSD(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// DisplayValue is the string a result shows in its session slot.
func DisplayValue(res domain.Result) string {
	if res.Value != nil && (res.Action == domain.ActionBTCPrice || res.Action == domain.ActionETHPrice) {
		return FormatUSD(*res.Value)
	}
	return res.Message
}
