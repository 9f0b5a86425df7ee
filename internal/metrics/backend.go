package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkghttp "github.com/futig/rafiq-frontend/pkg/http"
)

var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Calls to the Rafiq-AI backend by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of calls to the Rafiq-AI backend",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	InFlightRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_in_flight_requests",
			Help:      "Backend calls currently waiting for an answer",
		},
		[]string{"operation"},
	)

	StaleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Backend responses dropped because a newer request superseded them",
		},
		[]string{"operation"},
	)

	WatchedFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watched_files_total",
			Help:      "Files seen by the folder watcher by outcome",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		BackendRequestsTotal,
		BackendRequestDuration,
		InFlightRequests,
		StaleResponsesTotal,
		WatchedFilesTotal,
	)
}

// ObserveBackend starts timing a backend call; the returned func records its outcome.
func ObserveBackend(operation string) func(err error) {
	start := time.Now()
	InFlightRequests.WithLabelValues(operation).Inc()

	return func(err error) {
		InFlightRequests.WithLabelValues(operation).Dec()
		BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		BackendRequestsTotal.WithLabelValues(operation, statusLabel(err)).Inc()
	}
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return strconv.Itoa(httpErr.StatusCode)
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return "network_error"
	}

	var decErr *pkghttp.DecodeError
	if errors.As(err, &decErr) {
		return "decode_error"
	}

	return "error"
}
