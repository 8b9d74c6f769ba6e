package actions

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/infra/pdf"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		limit     int
		want      string
		truncated bool
	}{
		{"under cap", "hello", 10, "hello", false},
		{"at cap", "hello", 5, "hello", false},
		{"over cap", "hello world", 5, "hello" + TruncationMarker, true},
		{"runes", "héllo wörld", 7, "héllo w" + TruncationMarker, true},
		{"disabled", "hello", 0, "hello", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestSummarizePDF_TruncatesOverCap(t *testing.T) {
	cfg := testConfig()
	cfg.PDF.MaxTextLength = 20
	page := strings.Repeat("a", 30)
	llm := &fakeSummarizer{reply: "  short summary  "}
	svc, _ := newTestService(t, cfg, Deps{Summarizer: llm, PDF: &fakeExtractor{pages: []string{page}}})

	res := svc.SummarizePDF(context.Background(), &Document{Name: "report.pdf", Data: []byte("%PDF")})

	require.True(t, res.OK, res.Message)
	require.Len(t, llm.inputs, 1)
	assert.Equal(t, strings.Repeat("a", 20)+TruncationMarker, llm.inputs[0])
	assert.Equal(t, "**Summary of 'report.pdf':**\n\nshort summary", res.Message)
}

func TestSummarizePDF_UnderCapUnmodified(t *testing.T) {
	llm := &fakeSummarizer{reply: "ok"}
	svc, _ := newTestService(t, testConfig(), Deps{Summarizer: llm, PDF: &fakeExtractor{pages: []string{"one", "", "two"}}})

	res := svc.SummarizePDF(context.Background(), &Document{Name: "a.pdf", Data: []byte("%PDF")})

	require.True(t, res.OK)
	assert.Equal(t, []string{"one\ntwo\n"}, llm.inputs)
}

func TestSummarizePDF_Failures(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(*config.AppConfig)
		doc     *Document
		pages   []string
		extErr  error
		llmErrs []error
		kind    domain.ErrorKind
		message string
	}{
		{
			name:    "placeholder key",
			cfg:     func(c *config.AppConfig) { c.LLM.APIKey = config.PlaceholderGeminiKey },
			doc:     &Document{Name: "a.pdf", Data: []byte("x")},
			kind:    domain.KindConfig,
			message: MsgLLMKeyMissing,
		},
		{
			name:    "no file",
			kind:    domain.KindInput,
			message: "Please upload a PDF file to summarize.",
		},
		{
			name:    "invalid pdf",
			doc:     &Document{Name: "a.pdf", Data: []byte("x")},
			extErr:  pdf.ErrInvalidPDF,
			kind:    domain.KindParse,
			message: "Error reading PDF file. It might be corrupted or not a valid PDF.",
		},
		{
			name:    "no text",
			doc:     &Document{Name: "a.pdf", Data: []byte("x")},
			pages:   []string{"", "  "},
			kind:    domain.KindParse,
			message: "Could not extract text from the PDF. It might be an image-based PDF, password-protected, or empty.",
		},
		{
			name:    "safety",
			doc:     &Document{Name: "a.pdf", Data: []byte("x")},
			pages:   []string{"text"},
			llmErrs: []error{domain.NewError(domain.KindSafety, "llm", "", errBoom)},
			kind:    domain.KindSafety,
			message: MsgBlocked,
		},
		{
			name:    "quota",
			doc:     &Document{Name: "a.pdf", Data: []byte("x")},
			pages:   []string{"text"},
			llmErrs: []error{domain.NewError(domain.KindQuota, "llm", "", errBoom)},
			kind:    domain.KindQuota,
			message: "LLM Quota Exceeded. Please try again later. (Error: boom)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			llm := &fakeSummarizer{reply: "ok", errs: tt.llmErrs}
			svc, _ := newTestService(t, cfg, Deps{Summarizer: llm, PDF: &fakeExtractor{pages: tt.pages, err: tt.extErr}})

			res := svc.SummarizePDF(context.Background(), tt.doc)

			assert.False(t, res.OK)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.message, res.Message)
			if tt.kind == domain.KindSafety || tt.kind == domain.KindQuota {
				assert.Len(t, llm.inputs, 1, "permanent llm errors are not retried")
			}
		})
	}
}

func TestNews_SummarizesLeadingArticles(t *testing.T) {
	body, err := json.Marshal(newsResponse{Status: "ok", Articles: []newsArticle{
		{Title: "First", Description: "d1", Content: "c1", URL: "https://a"},
		{Title: "Second", URL: "https://b"},
		{Title: "Third"},
		{Title: "Fourth"},
	}})
	require.NoError(t, err)
	news := jsonFetcher(string(body))
	llm := &fakeSummarizer{reply: "sum", errs: []error{nil, domain.NewError(domain.KindQuota, "llm", "", errBoom)}}
	svc, _ := newTestService(t, testConfig(), Deps{News: news, Summarizer: llm})

	res := svc.News(context.Background(), "go")

	require.True(t, res.OK, res.Message)
	assert.Len(t, llm.inputs, 3)
	assert.Equal(t, "Title: First\nDescription: d1\nContent: c1", llm.inputs[0])
	assert.Equal(t, "Title: Second\nDescription: No Description\nContent: ", llm.inputs[1])
	assert.True(t, strings.HasPrefix(res.Message, "### Top News Headlines:\n**1. [First](https://a)**\n   - sum"))
	assert.Contains(t, res.Message, "**2. [Second](https://b)**\n   - LLM Quota Exceeded.")
	assert.Contains(t, res.Message, "**3. [Third](#)**\n   - sum")
	assert.NotContains(t, res.Message, "Fourth")
	assert.Equal(t, "go", news.last.Get("q"))
}

func TestNews_NoArticles(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), Deps{News: jsonFetcher(`{"articles":[]}`), Summarizer: &fakeSummarizer{}})

	res := svc.News(context.Background(), "nothing")

	assert.True(t, res.OK)
	assert.Equal(t, "No news found for 'nothing'.", res.Message)
}

func TestNews_KeysChecked(t *testing.T) {
	cfg := testConfig()
	cfg.News.APIKey = config.PlaceholderNewsKey
	news := jsonFetcher(`{}`)
	svc, _ := newTestService(t, cfg, Deps{News: news, Summarizer: &fakeSummarizer{}})
	res := svc.News(context.Background(), "go")
	assert.Equal(t, MsgNewsKeyMissing, res.Message)
	assert.Zero(t, news.Calls())

	svc, _ = newTestService(t, testConfig(), Deps{News: news})
	res = svc.News(context.Background(), "go")
	assert.Equal(t, MsgLLMKeyMissing, res.Message)
	assert.Zero(t, news.Calls())
}
