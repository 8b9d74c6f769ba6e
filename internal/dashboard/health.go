package dashboard

import (
	"sync"
	"time"

	"github.com/vietddude/autodash/internal/infra/provider"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ProviderHealth is the health of one collaborator.
type ProviderHealth struct {
	Name        string        `json:"name"`
	Status      SystemStatus  `json:"status"`
	Available   bool          `json:"available"`
	ErrorRate   float64       `json:"error_rate"`
	Latency     time.Duration `json:"latency"`
	Requests    int           `json:"requests"`
	Throttled   bool          `json:"throttled"`
	RetryAfter  time.Duration `json:"retry_after,omitempty"`
	LastFailure time.Time     `json:"last_failure_at,omitzero"`
	LastSuccess time.Time     `json:"last_success_at,omitzero"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus              `json:"system_status"`
	Providers    map[string]ProviderHealth `json:"providers"`
}

// Monitor derives health from the provider registry. Reports are cached briefly.
type Monitor struct {
	registry *provider.Registry
	ttl      time.Duration

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport HealthReport
}

// NewMonitor creates a Monitor over registry.
func NewMonitor(registry *provider.Registry) *Monitor {
	return &Monitor{registry: registry, ttl: 10 * time.Second}
}

// CheckHealth evaluates every registered provider. Worst status wins.
func (m *Monitor) CheckHealth() HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < m.ttl && m.lastReport.Providers != nil {
		return m.lastReport
	}

	report := HealthReport{SystemStatus: StatusHealthy, Providers: make(map[string]ProviderHealth)}
	for _, p := range m.registry.All() {
		h := p.GetHealth()
		ph := ProviderHealth{
			Name:        h.Name,
			Status:      StatusHealthy,
			Available:   p.IsAvailable(),
			ErrorRate:   h.ErrorRate,
			Latency:     h.Latency,
			Requests:    h.Requests,
			LastFailure: h.LastFailureAt,
			LastSuccess: h.LastSuccessAt,
		}
		if h.MonitorStats != nil {
			ph.Throttled = h.MonitorStats.Status == provider.StatusThrottled
			ph.RetryAfter = h.MonitorStats.RetryAfter
		}

		switch {
		case !ph.Available:
			ph.Status = StatusCritical
		case ph.Throttled || ph.ErrorRate > 0.2:
			ph.Status = StatusDegraded
		}
		report.Providers[ph.Name] = ph

		if ph.Status == StatusCritical {
			report.SystemStatus = StatusCritical
		} else if ph.Status == StatusDegraded && report.SystemStatus == StatusHealthy {
			report.SystemStatus = StatusDegraded
		}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
