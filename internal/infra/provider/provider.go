// Package provider implements the outbound HTTP collaborators used by actions.
//
// This package contains:
//   - HTTPProvider: JSON-over-HTTP client with per-provider health tracking
//   - ProviderMonitor: latency and throttle tracking
//   - Registry: the set of providers reported on the health endpoint
package provider

import (
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Name          string        `json:"name"`
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	Requests      int           `json:"requests"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}

// Provider is anything that reports health.
type Provider interface {
	// GetName returns provider identifier (e.g., "coindesk", "openweathermap")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool
}

// Registry collects providers for health reporting.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Add registers p under its name, replacing any previous provider with that name.
func (r *Registry) Add(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.GetName()] = p
}

// All returns providers sorted by name.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}
