// Package observability holds the process-wide Prometheus collectors.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	classificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nurture",
		Subsystem: "selection",
		Name:      "classified_records_total",
		Help:      "Milestone records classified, by urgency tier.",
	}, []string{"tier"})

	loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nurture",
		Subsystem: "session",
		Name:      "logins_total",
		Help:      "Login attempts, by outcome.",
	}, []string{"outcome"})

	catalogReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nurture",
		Subsystem: "catalog",
		Name:      "reloads_total",
		Help:      "Catalog reloads triggered by the override directory watcher.",
	}, []string{"result"})

	challengesSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nurture",
		Subsystem: "session",
		Name:      "challenges_swept_total",
		Help:      "Expired one-time-code challenges removed by the sweep worker.",
	})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nurture",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route pattern and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		classificationsTotal,
		loginsTotal,
		catalogReloadsTotal,
		challengesSweptTotal,
		httpRequestDuration,
	)
}

// RecordClassification counts one record assigned to tier.
func RecordClassification(tier string) {
	classificationsTotal.WithLabelValues(tier).Inc()
}

// RecordLogin counts a login attempt. Outcome is "success", "rejected" or "error".
func RecordLogin(outcome string) {
	loginsTotal.WithLabelValues(outcome).Inc()
}

// RecordCatalogReload counts a watcher-triggered reload.
func RecordCatalogReload(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	catalogReloadsTotal.WithLabelValues(result).Inc()
}

// RecordChallengesSwept adds n to the swept challenge counter.
func RecordChallengesSwept(n int64) {
	if n <= 0 {
		return
	}
	challengesSweptTotal.Add(float64(n))
}

// ObserveHTTPRequest records the latency of one request.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
