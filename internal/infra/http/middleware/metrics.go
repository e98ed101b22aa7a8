package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_emails_sent_total",
			Help: "Total number of outbound emails by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	unsubscribes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_unsubscribes_total",
			Help: "Total number of unsubscribes by source",
		},
		[]string{"source"},
	)

	engineCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_engine_cycles_total",
			Help: "Total number of completed engine cycles",
		},
	)

	engineCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outreach_engine_cycle_duration_seconds",
			Help:    "Duration of engine cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	engineFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_engine_lead_failures_total",
			Help: "Total number of leads skipped inside a cycle due to errors",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordEmailSent(kind, status string) {
	emailsSent.WithLabelValues(kind, status).Inc()
}

func RecordUnsubscribe(source string) {
	unsubscribes.WithLabelValues(source).Inc()
}

// CycleStats carries the engine cycle outcome counts into the metrics.
// Kept local so this package stays free of domain imports.
type CycleStats struct {
	FollowUpsSent     int
	MeetingLinksSent  int
	AlternativeOffers int
	Unsubscribed      int
	Failures          int
}

func RecordCycle(stats CycleStats, seconds float64) {
	engineCycles.Inc()
	engineCycleDuration.Observe(seconds)
	engineFailures.Add(float64(stats.Failures))

	emailsSent.WithLabelValues("follow_up", "success").Add(float64(stats.FollowUpsSent))
	emailsSent.WithLabelValues("meeting_invite", "success").Add(float64(stats.MeetingLinksSent))
	emailsSent.WithLabelValues("alternative_offer", "success").Add(float64(stats.AlternativeOffers))
	unsubscribes.WithLabelValues("automated").Add(float64(stats.Unsubscribed))
}
