package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded by Metrics.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshSkipped = "no_refresh_token"
)

// Metrics records client-side request and recovery counters. A nil *Metrics
// records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	expirations     prometheus.Counter
}

// NewMetrics creates the client collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_client_requests_total",
				Help: "Total number of API requests sent, including retries",
			},
			[]string{"method", "status", "visibility"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lms_client_request_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_client_token_refresh_total",
				Help: "Token refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		expirations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lms_client_session_expired_total",
				Help: "Sessions cleared after an unrecoverable 401",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.requestDuration, m.refreshes, m.expirations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRequest(method string, status int, public bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	visibility := "protected"
	if public {
		visibility = "public"
	}
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, statusLabel, visibility).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeExpired() {
	if m == nil {
		return
	}
	m.expirations.Inc()
}
