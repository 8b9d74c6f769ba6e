package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/metrics"
)

// maxBodySnippet bounds how much of an error body ends up in messages.
const maxBodySnippet = 256

// HTTPProvider performs JSON GETs against one collaborator and tracks its health.
type HTTPProvider struct {
	name       string
	httpClient *http.Client

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int

	Monitor *ProviderMonitor
}

// NewHTTPProvider creates a provider whose every request is bounded by timeout.
func NewHTTPProvider(name string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name: name,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: HealthStatus{
			Name:      name,
			Available: true,
		},
		Monitor: NewProviderMonitor(),
	}
}

// GetJSON issues a GET to endpoint with query merged into any existing query string and
// decodes the JSON body into out. Non-2xx responses and transport failures are KindNetwork,
// undecodable bodies are KindParse.
func (p *HTTPProvider) GetJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	target, err := withQuery(endpoint, query)
	if err != nil {
		return domain.NewError(domain.KindConfig, p.name, "invalid endpoint", err)
	}

	resp, latency, err := p.do(ctx, target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.recordFailure()
		return domain.NewError(domain.KindNetwork, p.name, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests || p.Monitor.DetectThrottlePattern(string(body)) {
			p.Monitor.RecordThrottle(parseRetryAfter(resp.Header.Get("Retry-After")))
		}
		p.recordFailure()
		return domain.Errorf(domain.KindNetwork, p.name, "http %d: %s", resp.StatusCode, snippet(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		p.recordFailure()
		return domain.NewError(domain.KindParse, p.name, "parse response", err)
	}

	p.recordSuccess(latency)
	return nil
}

// Check issues a GET and reports the status code without judging it. Only transport
// failures are errors.
func (p *HTTPProvider) Check(ctx context.Context, target string) (int, error) {
	if _, err := url.ParseRequestURI(target); err != nil {
		return 0, domain.NewError(domain.KindInput, p.name, "invalid url", err)
	}

	resp, latency, err := p.do(ctx, target)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	p.recordSuccess(latency)
	return resp.StatusCode, nil
}

func (p *HTTPProvider) do(ctx context.Context, target string) (*http.Response, time.Duration, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		p.recordFailure()
		return nil, 0, domain.NewError(domain.KindInput, p.name, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "autodash/1.0")

	resp, err := p.httpClient.Do(req)
	latency := time.Since(start)
	metrics.HTTPLatency.WithLabelValues(p.name).Observe(latency.Seconds())
	if err != nil {
		p.recordFailure()
		metrics.HTTPCallsTotal.WithLabelValues(p.name, "error").Inc()
		if errors.Is(err, context.Canceled) {
			return nil, latency, err
		}
		return nil, latency, domain.NewError(domain.KindNetwork, p.name, "request failed", err)
	}
	metrics.HTTPCallsTotal.WithLabelValues(p.name, strconv.Itoa(resp.StatusCode)).Inc()
	p.Monitor.RecordRequest(latency)
	return resp, latency, nil
}

// GetName returns the provider's name.
func (p *HTTPProvider) GetName() string {
	return p.name
}

// GetHealth returns the provider's health status.
func (p *HTTPProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h := p.health
	stats := p.Monitor.GetStats()
	h.MonitorStats = &stats
	return h
}

// IsAvailable checks if the provider is available.
func (p *HTTPProvider) IsAvailable() bool {
	p.mu.RLock()
	available := p.health.Available
	p.mu.RUnlock()
	return available && p.Monitor.CheckProviderStatus() != StatusThrottled
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.Requests = p.requestCount
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	p.health.Latency = p.totalLatency / time.Duration(p.successCount)
}

func (p *HTTPProvider) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.Requests = p.requestCount
	p.health.LastFailureAt = time.Now()
	p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
}

func withQuery(endpoint string, query url.Values) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if len(query) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

func snippet(body []byte) string {
	if len(body) > maxBodySnippet {
		return fmt.Sprintf("%s...", body[:maxBodySnippet])
	}
	return string(body)
}
