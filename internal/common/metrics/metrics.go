// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntakeSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of inbound lead submissions by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of submissions rejected by a fixed-window limiter",
		},
		[]string{"scope"},
	)

	DedupeHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedupe_hits_total",
			Help: "Total number of agent submissions short-circuited by the dedupe window",
		},
	)

	// LeadWriteFailures tracks writes swallowed on the public path; those
	// never surface to the caller, so this counter is the operational signal.
	LeadWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_write_failures_total",
			Help: "Total number of failed lead writes to the backing store",
		},
		[]string{"channel"},
	)

	StoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_requests_total",
			Help: "Total number of backing-store API requests",
		},
		[]string{"table", "operation", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route"},
	)
)
