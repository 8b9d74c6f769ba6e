package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionRunsTotal tracks action invocations by outcome
	ActionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodash_action_runs_total",
			Help: "Total number of action runs",
		},
		[]string{"action", "outcome", "trigger"},
	)

	// ActionErrorsTotal tracks failed actions by error kind
	ActionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodash_action_errors_total",
			Help: "Total number of failed action runs",
		},
		[]string{"action", "kind"},
	)

	// ActionLatency tracks end-to-end action latency including retries
	ActionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autodash_action_latency_seconds",
			Help:    "Action latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	// RetriesTotal tracks retry attempts per operation
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodash_retries_total",
			Help: "Total number of retried collaborator calls",
		},
		[]string{"operation"},
	)

	// HTTPCallsTotal tracks outbound HTTP calls per provider
	HTTPCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodash_http_calls_total",
			Help: "Total number of outbound HTTP calls",
		},
		[]string{"provider", "status"},
	)

	// HTTPLatency tracks outbound HTTP call latency
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autodash_http_latency_seconds",
			Help:    "Outbound HTTP latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// ScheduledTasksTotal tracks scheduler executions
	ScheduledTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodash_scheduled_tasks_total",
			Help: "Total number of scheduled task executions",
		},
		[]string{"task"},
	)

	// DBConnectionPoolUsage tracks the percentage of used database connections
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autodash_db_connection_pool_usage_percent",
			Help: "Percentage of database connections in use",
		},
	)
)
