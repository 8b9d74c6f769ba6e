package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/retry"
)

// TruncationMarker is appended to text cut down to a summarization cap.
const TruncationMarker = "\n... [Content truncated for summarization]"

// MsgLLMKeyMissing is returned when no summarizer is configured.
const MsgLLMKeyMissing = "Please set your Google Gemini API key (llm.api_key or GEMINI_API_KEY) for summarization."

// MsgBlocked is shown when the model refuses the content.
const MsgBlocked = "Content blocked by safety settings. Cannot summarize."

// Truncate keeps the first limit characters of s and appends TruncationMarker. Text within
// the limit, or a non-positive limit, leaves s untouched.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 {
		return s, false
	}
	r := []rune(s)
	if len(r) <= limit {
		return s, false
	}
	return string(r[:limit]) + TruncationMarker, true
}

func (s *Service) summarizerReady() bool {
	if s.deps.Summarizer == nil {
		return false
	}
	if s.cfg.LLM.Provider == "gemini" {
		return !config.IsUnset(s.cfg.LLM.APIKey, config.PlaceholderGeminiKey)
	}
	return true
}

// summarize runs one retried completion bounded by the configured LLM timeout.
func (s *Service) summarize(ctx context.Context, op, instruction, text string) (string, error) {
	return retry.Do(ctx, s.policy(), func(ctx context.Context) (string, error) {
		if s.cfg.LLM.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.LLM.Timeout)
			defer cancel()
		}
		out, err := s.deps.Summarizer.Summarize(ctx, instruction, text)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil
	}, s.retryOpts(op)...)
}

// llmFailureMessage renders quota and safety failures the same way for every flow.
func llmFailureMessage(err error, fallback string) string {
	switch domain.KindOf(err) {
	case domain.KindQuota:
		return fmt.Sprintf("LLM Quota Exceeded. Please try again later. (Error: %v)", err)
	case domain.KindSafety:
		return MsgBlocked
	default:
		return fmt.Sprintf(fallback, err)
	}
}
