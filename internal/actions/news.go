package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/retry"
)

// MsgNewsKeyMissing is returned without any network call when the key is unset.
const MsgNewsKeyMissing = "Please set your NewsAPI.org API key (news.api_key or NEWSAPI_API_KEY)."

const newsInstruction = "Summarize the following news article briefly (1-2 sentences), " +
	"highlighting the main topic and outcome: "

type newsResponse struct {
	Status   string        `json:"status"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
}

// News fetches headlines for query and summarizes the leading articles one by one.
// A failed summary is reported inline and does not fail the action.
func (s *Service) News(ctx context.Context, query string) domain.Result {
	nc := s.cfg.News
	if config.IsUnset(nc.APIKey, config.PlaceholderNewsKey) || s.deps.News == nil {
		return domain.Failure(domain.ActionNews, domain.KindConfig, MsgNewsKeyMissing)
	}
	if !s.summarizerReady() {
		return domain.Failure(domain.ActionNews, domain.KindConfig, MsgLLMKeyMissing)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		query = nc.DefaultQuery
	}
	params := url.Values{"q": {query}, "language": {nc.Language}, "apiKey": {nc.APIKey}}

	articles, err := retry.Do(ctx, s.policy(), func(ctx context.Context) ([]newsArticle, error) {
		var resp newsResponse
		if err := s.deps.News.GetJSON(ctx, nc.URL, params, &resp); err != nil {
			return nil, err
		}
		return resp.Articles, nil
	}, s.retryOpts("news_fetch")...)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.KindNone {
			kind = domain.KindNetwork
		}
		return domain.Failure(domain.ActionNews, kind, fmt.Sprintf("Error fetching news from NewsAPI: %v", err))
	}

	if len(articles) == 0 {
		return domain.Success(domain.ActionNews, fmt.Sprintf("No news found for '%s'.", query))
	}
	if nc.NumArticles > 0 && len(articles) > nc.NumArticles {
		articles = articles[:nc.NumArticles]
	}

	parts := make([]string, 0, len(articles))
	for i, a := range articles {
		title := orDefault(a.Title, "No Title")
		text := fmt.Sprintf("Title: %s\nDescription: %s\nContent: %s",
			title, orDefault(a.Description, "No Description"), a.Content)
		text, _ = Truncate(text, nc.MaxInputLength)

		summary, err := s.summarize(ctx, "news_summary", newsInstruction, text)
		if err != nil {
			summary = llmFailureMessage(err, "Could not summarize article (LLM Error: %v)")
		}

		parts = append(parts, fmt.Sprintf("**%d. [%s](%s)**\n   - %s", i+1, title, orDefault(a.URL, "#"), summary))
	}

	return domain.Success(domain.ActionNews, "### Top News Headlines:\n"+strings.Join(parts, "\n\n"))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
