package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"artillery-sim/internal/trajectory"
)

var (
	shotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artillery_shots_total",
			Help: "Total number of shots flown.",
		},
		[]string{"model"},
	)

	shotErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artillery_shot_errors_total",
			Help: "Total number of shots that failed to land.",
		},
		[]string{"model"},
	)

	shotSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artillery_shot_steps",
			Help:    "Integration steps per shot.",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		},
	)

	shotHangSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artillery_shot_hang_seconds",
			Help:    "Simulated time of flight per shot.",
			Buckets: prometheus.LinearBuckets(0, 10, 13),
		},
	)

	shotRangeMeters = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artillery_shot_range_meters",
			Help:    "Ground distance per shot.",
			Buckets: prometheus.LinearBuckets(0, 2500, 13),
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artillery_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artillery_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

func init() {
	prometheus.MustRegister(shotsTotal)
	prometheus.MustRegister(shotErrorsTotal)
	prometheus.MustRegister(shotSteps)
	prometheus.MustRegister(shotHangSeconds)
	prometheus.MustRegister(shotRangeMeters)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveShot records one landed shot.
func ObserveShot(model string, res trajectory.Result) {
	shotsTotal.WithLabelValues(model).Inc()
	shotSteps.Observe(float64(res.Steps))
	shotHangSeconds.Observe(res.HangTime)
	shotRangeMeters.Observe(res.Distance)
}

// ObserveShotError records a shot that returned an error.
func ObserveShotError(model string) {
	shotErrorsTotal.WithLabelValues(model).Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		path := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}

var exactRoutes = map[string]bool{
	"/":           true,
	"/healthz":    true,
	"/metrics":    true,
	"/api/shots":  true,
	"/api/range":  true,
	"/api/tables": true,
}

// normalizeRoute maps a request path to a bounded set of label values.
func normalizeRoute(path string) string {
	if exactRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/api/tables/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/api/tables/{name}"
	}
	return "other"
}
