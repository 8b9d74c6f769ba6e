package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiSummarizer generates summaries using Google's Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer creates a Gemini-backed summarizer.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	model = strings.TrimPrefix(model, "models/")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiSummarizer{
		client: client,
		model:  model,
	}, nil
}

// Summarize sends instruction followed by text as a single user turn.
func (g *GeminiSummarizer) Summarize(ctx context.Context, instruction, text string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(instruction+text), nil)
	if err != nil {
		return "", Classify(g.Name(), err)
	}

	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", Classify(g.Name(), fmt.Errorf("%w: %s", ErrBlocked, fb.BlockReason))
	}
	for _, c := range result.Candidates {
		if c != nil && c.FinishReason == genai.FinishReasonSafety {
			return "", Classify(g.Name(), ErrBlocked)
		}
	}

	out := strings.TrimSpace(result.Text())
	if out == "" {
		return "", Classify(g.Name(), fmt.Errorf("empty response from %s", g.model))
	}
	return out, nil
}

// Name returns the summarizer name.
func (g *GeminiSummarizer) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}
