package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	saveDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	bodySizeBuckets     = []float64{100, 1024, 10240, 102400, 1048576}
)

// Metrics holds all Prometheus metric instruments for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSizeBytes  *prometheus.HistogramVec
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Editor metrics
	EditorSessionsActive    prometheus.Gauge
	EditorMutationsTotal    *prometheus.CounterVec
	EditorHistoryStepsTotal *prometheus.CounterVec
	PageSavesTotal          *prometheus.CounterVec
	PageSaveDuration        prometheus.Histogram

	// Funnel metrics
	LeadSubmissionsTotal    *prometheus.CounterVec
	ContactSubmissionsTotal prometheus.Counter

	// Payment metrics
	CheckoutSessionsTotal *prometheus.CounterVec
	WebhookEventsTotal    *prometheus.CounterVec

	// System metrics
	SeedReloadTotal *prometheus.CounterVec
	PagesLoaded     prometheus.Gauge
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPRequestSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_http_request_size_bytes",
			Help:    "HTTP request body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPResponseSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),

		// Editor
		EditorSessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studio_editor_sessions_active",
			Help: "Number of live editor sessions.",
		}),
		EditorMutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_editor_mutations_total",
			Help: "Total number of editor content mutations.",
		}, []string{"operation", "status"}),
		EditorHistoryStepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_editor_history_steps_total",
			Help: "Total number of undo and redo steps taken.",
		}, []string{"direction"}),
		PageSavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_page_saves_total",
			Help: "Total number of page save attempts.",
		}, []string{"status"}),
		PageSaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studio_page_save_duration_seconds",
			Help:    "Page save duration in seconds.",
			Buckets: saveDurationBuckets,
		}),

		// Funnel
		LeadSubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_lead_submissions_total",
			Help: "Total number of lead submissions.",
		}, []string{"product_type", "status"}),
		ContactSubmissionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_contact_submissions_total",
			Help: "Total number of contact form submissions.",
		}),

		// Payment
		CheckoutSessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_checkout_sessions_total",
			Help: "Total number of checkout sessions created.",
		}, []string{"status"}),
		WebhookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_webhook_events_total",
			Help: "Total number of payment webhook events received.",
		}, []string{"event_type", "status"}),

		// System
		SeedReloadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_seed_reload_total",
			Help: "Total seed page reloads.",
		}, []string{"status"}),
		PagesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studio_pages_loaded",
			Help: "Number of pages currently persisted.",
		}),
	}

	reg.MustRegister(
		// HTTP
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSizeBytes,
		m.HTTPResponseSizeBytes,
		// Editor
		m.EditorSessionsActive,
		m.EditorMutationsTotal,
		m.EditorHistoryStepsTotal,
		m.PageSavesTotal,
		m.PageSaveDuration,
		// Funnel
		m.LeadSubmissionsTotal,
		m.ContactSubmissionsTotal,
		// Payment
		m.CheckoutSessionsTotal,
		m.WebhookEventsTotal,
		// System
		m.SeedReloadTotal,
		m.PagesLoaded,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration, reqSize, respSize int) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
	m.HTTPRequestSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(reqSize))
	m.HTTPResponseSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(respSize))
}

// RecordEditorMutation records a content mutation against an editor session.
func (m *Metrics) RecordEditorMutation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EditorMutationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHistoryStep records an undo or redo step.
func (m *Metrics) RecordHistoryStep(direction string) {
	m.EditorHistoryStepsTotal.WithLabelValues(direction).Inc()
}

// RecordPageSave records a page save attempt.
func (m *Metrics) RecordPageSave(err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PageSavesTotal.WithLabelValues(status).Inc()
	m.PageSaveDuration.Observe(duration.Seconds())
}

// RecordLeadSubmission records a lead submission.
func (m *Metrics) RecordLeadSubmission(productType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LeadSubmissionsTotal.WithLabelValues(productType, status).Inc()
}

// RecordContactSubmission records a contact form submission.
func (m *Metrics) RecordContactSubmission() {
	m.ContactSubmissionsTotal.Inc()
}

// RecordCheckoutSession records a checkout session creation attempt.
func (m *Metrics) RecordCheckoutSession(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CheckoutSessionsTotal.WithLabelValues(status).Inc()
}

// RecordWebhookEvent records a received payment webhook event.
func (m *Metrics) RecordWebhookEvent(eventType, status string) {
	m.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
}

// RecordSeedReload records a seed page reload.
func (m *Metrics) RecordSeedReload(status string) {
	m.SeedReloadTotal.WithLabelValues(status).Inc()
}

// SetPagesLoaded sets the number of persisted pages.
func (m *Metrics) SetPagesLoaded(count float64) {
	m.PagesLoaded.Set(count)
}

// SetEditorSessions sets the number of live editor sessions.
func (m *Metrics) SetEditorSessions(count float64) {
	m.EditorSessionsActive.Set(count)
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics using
// chi's route pattern (not the actual URL path) to avoid label cardinality
// explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		pathPattern := routePattern(r)
		reqSize := 0
		if r.ContentLength > 0 {
			reqSize = int(r.ContentLength)
		}

		m.RecordHTTPRequest(r.Method, pathPattern, sw.status, duration, reqSize, sw.bytes)
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	// chi route patterns have trailing /*, remove it.
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture status and bytes.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
