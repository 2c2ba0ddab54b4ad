// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Launch metrics
	LaunchesTotal      *prometheus.CounterVec
	ConfirmationsTotal prometheus.Counter
	PostsCreated       prometheus.Counter

	// Fee metrics
	FeeOperationsTotal  *prometheus.CounterVec
	LamportsClaimed     prometheus.Counter
	LamportsDistributed prometheus.Counter

	// Upstream metrics
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec

	// Storage metrics
	StoreWriteErrors *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Health metrics
	TokensTracked prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "agent_launchpad"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		LaunchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "requests_total",
			Help:      "Launch requests by outcome (ok or error code)",
		}, []string{"outcome"}),
		ConfirmationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "confirmations_total",
			Help:      "Mint confirmations recorded",
		}),
		PostsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "posts_created_total",
			Help:      "Social posts published on behalf of agents",
		}),
		FeeOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "operations_total",
			Help:      "Fee claims and distributions by outcome",
		}, []string{"operation", "outcome"}),
		LamportsClaimed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "lamports_claimed_total",
			Help:      "Lamports measured on confirmed claims",
		}),
		LamportsDistributed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "lamports_distributed_total",
			Help:      "Lamports sent to fee split recipients",
		}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Latency of calls to external services",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"service", "method"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Failed calls to external services",
		}, []string{"service", "method"}),
		StoreWriteErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "write_errors_total",
			Help:      "Failed record store writes",
		}, []string{"collection"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		TokensTracked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "tokens",
			Help:      "Tokens in the registry at the last listing",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordLaunch records a launch outcome ("ok" or an error code).
func RecordLaunch(outcome string) {
	DefaultMetrics.LaunchesTotal.WithLabelValues(outcome).Inc()
}

// RecordConfirmation increments the confirmation counter.
func RecordConfirmation() {
	DefaultMetrics.ConfirmationsTotal.Inc()
}

// RecordPostCreated increments the posts created counter.
func RecordPostCreated() {
	DefaultMetrics.PostsCreated.Inc()
}

// RecordClaim records a claim outcome and the measured amount.
func RecordClaim(outcome string, lamports uint64) {
	DefaultMetrics.FeeOperationsTotal.WithLabelValues("claim", outcome).Inc()
	DefaultMetrics.LamportsClaimed.Add(float64(lamports))
}

// RecordDistribution records a distribution outcome and the amount sent.
func RecordDistribution(outcome string, lamports uint64) {
	DefaultMetrics.FeeOperationsTotal.WithLabelValues("distribute", outcome).Inc()
	DefaultMetrics.LamportsDistributed.Add(float64(lamports))
}

// ObserveUpstream records latency and failure of one external call.
func ObserveUpstream(service, method string, start time.Time, err error) {
	DefaultMetrics.UpstreamLatency.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
	if err != nil {
		DefaultMetrics.UpstreamErrors.WithLabelValues(service, method).Inc()
	}
}

// RecordStoreWriteError counts a failed record store write.
func RecordStoreWriteError(collection string) {
	DefaultMetrics.StoreWriteErrors.WithLabelValues(collection).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route string, status int, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
	DefaultMetrics.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// SetTokensTracked updates the registry size gauge.
func SetTokensTracked(n int) {
	DefaultMetrics.TokensTracked.Set(float64(n))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
