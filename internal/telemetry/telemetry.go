// Package telemetry provides Prometheus instrumentation for simulation runs
// and the HTTP API.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SimulationsTotal counts simulation runs by kind (calculate, compare,
	// sweep) and outcome.
	SimulationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pprbtc_simulations_total",
		Help: "Total number of portfolio simulations",
	}, []string{"kind", "outcome"})

	SimulationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pprbtc_simulation_duration_seconds",
		Help:    "Portfolio simulation latency in seconds, price loading included",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"kind"})

	// TrajectoryPoints tracks how many dates each simulation walked.
	TrajectoryPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pprbtc_trajectory_points",
		Help:    "Number of aligned dates per simulation",
		Buckets: prometheus.ExponentialBuckets(16, 2, 10),
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pprbtc_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pprbtc_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveSimulation records one finished run of the given kind.
func ObserveSimulation(kind string, start time.Time, points int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SimulationsTotal.WithLabelValues(kind, outcome).Inc()
	SimulationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err == nil && points > 0 {
		TrajectoryPoints.Observe(float64(points))
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics, labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
