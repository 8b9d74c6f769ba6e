// Package llm wraps language-model completion collaborators behind Summarizer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/vietddude/autodash/internal/core/domain"
)

// Summarizer turns text into a free-text summary following instruction.
type Summarizer interface {
	Summarize(ctx context.Context, instruction, text string) (string, error)
	Name() string
}

// ErrBlocked is returned when the model refuses to answer on safety grounds.
var ErrBlocked = errors.New("response blocked by safety settings")

// Classify maps a raw model error onto the domain taxonomy. Quota exhaustion and safety
// rejections are permanent; everything else is treated as a retryable network failure.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != domain.KindNone {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindNetwork, op, "model call timed out", err)
	}

	lower := strings.ToLower(err.Error())

	switch {
	case statusCode(err) == http.StatusTooManyRequests,
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "resource_exhausted"),
		strings.Contains(lower, "rate limit"):
		return domain.NewError(domain.KindQuota, op, "", err)
	case errors.Is(err, ErrBlocked),
		strings.Contains(lower, "blocked"),
		strings.Contains(lower, "safety"):
		return domain.NewError(domain.KindSafety, op, "", err)
	default:
		return domain.NewError(domain.KindNetwork, op, "", err)
	}
}

// statusPattern finds the HTTP status in the error formats of the supported clients:
// "429 You exceeded...", "Error 429, Message: ..." and "error, status code: 429, ...".
var statusPattern = regexp.MustCompile(`(?i)^(?:error )?(\d{3})\b|status code:?\s*(\d{3})\b`)

// statusCode returns the HTTP status carried by err, or 0.
func statusCode(err error) int {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	code := m[1]
	if code == "" {
		code = m[2]
	}
	n, _ := strconv.Atoi(code)
	return n
}

// Config selects a backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the Summarizer named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Summarizer, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiSummarizer(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAISummarizer(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
