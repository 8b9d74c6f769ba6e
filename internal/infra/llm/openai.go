package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
)

// OpenAISummarizer talks to any OpenAI-compatible chat endpoint through eino.
type OpenAISummarizer struct {
	model     *openai.ChatModel
	modelName string
}

// NewOpenAISummarizer creates a chat-model-backed summarizer.
func NewOpenAISummarizer(ctx context.Context, apiKey, model, baseURL string) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return &OpenAISummarizer{model: cm, modelName: model}, nil
}

// Summarize sends instruction as the system turn and text as the user turn.
func (o *OpenAISummarizer) Summarize(ctx context.Context, instruction, text string) (string, error) {
	out, err := o.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(instruction),
		schema.UserMessage(text),
	})
	if err != nil {
		return "", Classify(o.Name(), err)
	}
	if out == nil {
		return "", Classify(o.Name(), fmt.Errorf("empty response from %s", o.modelName))
	}

	if out.ResponseMeta != nil && out.ResponseMeta.FinishReason == "content_filter" {
		return "", Classify(o.Name(), ErrBlocked)
	}

	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "", Classify(o.Name(), fmt.Errorf("empty response from %s", o.modelName))
	}
	return content, nil
}

// Name returns the summarizer name.
func (o *OpenAISummarizer) Name() string {
	return fmt.Sprintf("openai:%s", o.modelName)
}
