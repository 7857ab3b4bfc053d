package monitoring

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ssr"

// Render outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeExportError = "export_error"
	OutcomeInterrupted = "interrupted"
	OutcomeBusy        = "busy"
	OutcomeInvalid     = "invalid_bundle"
	OutcomeError       = "error"
)

// Store outcomes used as the "outcome" label of store metrics.
const (
	StoreOutcomeUnavailable = "unavailable"
	StoreOutcomeCanceled    = "canceled"
)

// Metrics holds all Prometheus metrics of the server. Each instance owns its
// registry so tests and multiple servers never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Render metrics
	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	ExportErrors   *prometheus.CounterVec

	// Reviews metrics
	ReviewsAdded  *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec

	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current counter values for the health endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalRenders  int64   `json:"total_renders"`
	FailedRenders int64   `json:"failed_renders"`
	RenderSeconds float64 `json:"render_seconds"`
}

// NewMetrics creates a metrics collector with its own registry, including
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "route"},
		),

		Renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of page renders by outcome",
			},
			[]string{"outcome"},
		),
		RenderDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Page render duration in seconds",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		ExportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_errors_total",
				Help:      "Total number of failed render function calls by export",
			},
			[]string{"export"},
		),

		ReviewsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_added_total",
				Help:      "Total number of reviews stored by target",
			},
			[]string{"target"},
		),
		StoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "review_store_duration_seconds",
				Help:      "Review store call duration in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"operation", "outcome"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry all metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WatchLimiter exports the render limiter occupancy.
func (m *Metrics) WatchLimiter(l *ssr.Limiter) {
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "render_slots",
			Help:      "Number of render slots",
		},
		func() float64 { return float64(l.Size()) },
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "render_slots_in_use",
			Help:      "Number of renders currently running",
		},
		func() float64 { return float64(l.InUse()) },
	)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// ObserveRender records a finished render. It implements ssr.Observer.
func (m *Metrics) ObserveRender(duration time.Duration, err error) {
	outcome := Outcome(err)
	m.Renders.WithLabelValues(outcome).Inc()
	m.RenderDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRenders++
	m.snapshot.RenderSeconds += duration.Seconds()
	if outcome != OutcomeOK {
		m.snapshot.FailedRenders++
	}
	m.mu.Unlock()
}

// ObserveExportError records a failed render function. It implements
// ssr.Observer.
func (m *Metrics) ObserveExportError(name string) {
	m.ExportErrors.WithLabelValues(name).Inc()
}

// RecordReview records a stored review
func (m *Metrics) RecordReview(target string) {
	m.ReviewsAdded.WithLabelValues(target).Inc()
}

// ObserveStore records a finished review store call
func (m *Metrics) ObserveStore(operation string, duration time.Duration, err error) {
	m.StoreDuration.WithLabelValues(operation, StoreOutcome(err)).Observe(duration.Seconds())
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Uptime returns the time since the collector was created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Outcome classifies a render error into a metrics label.
func Outcome(err error) string {
	var exportErr *ssr.ExportError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ssr.ErrRenderInterrupted),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return OutcomeInterrupted
	case errors.Is(err, ssr.ErrLimiterTimeout), errors.Is(err, ssr.ErrLimiterClosed):
		return OutcomeBusy
	case errors.Is(err, ssr.ErrInvalidBundle), errors.Is(err, ssr.ErrNoExports):
		return OutcomeInvalid
	case errors.As(err, &exportErr):
		return OutcomeExportError
	default:
		return OutcomeError
	}
}

// StoreOutcome classifies a review store error into a metrics label.
func StoreOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return StoreOutcomeUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StoreOutcomeCanceled
	default:
		return OutcomeError
	}
}

var _ ssr.Observer = (*Metrics)(nil)
