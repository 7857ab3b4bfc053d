package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GriffinCanCode/zvenigorodok/internal/domain/review"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	exportErr := multierror.Append(nil, &ssr.ExportError{Name: "App", Err: errors.New("boom")})

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"export error", exportErr, OutcomeExportError},
		{"interrupted", fmt.Errorf("%w: %w", ssr.ErrRenderInterrupted, context.DeadlineExceeded), OutcomeInterrupted},
		{"deadline", context.DeadlineExceeded, OutcomeInterrupted},
		{"limiter timeout", fmt.Errorf("acquire render slot: %w", ssr.ErrLimiterTimeout), OutcomeBusy},
		{"invalid bundle", fmt.Errorf("%w: syntax", ssr.ErrInvalidBundle), OutcomeInvalid},
		{"no exports", ssr.ErrNoExports, OutcomeInvalid},
		{"other", errors.New("unknown"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestObserveRender(t *testing.T) {
	m := NewMetrics()

	m.ObserveRender(10*time.Millisecond, nil)
	m.ObserveRender(20*time.Millisecond, ssr.ErrNoExports)
	m.ObserveExportError("App")
	m.ObserveExportError("App")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExportErrors.WithLabelValues("App")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRenders)
	assert.Equal(t, int64(1), snap.FailedRenders)
	assert.InDelta(t, 0.03, snap.RenderSeconds, 1e-9)
}

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordReview("Tyres")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ReviewsAdded.WithLabelValues("Tyres")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReviewsAdded.WithLabelValues("Tyres")))
}

func TestWatchLimiter(t *testing.T) {
	m := NewMetrics()
	limiter := ssr.NewLimiter(3, time.Second)
	defer limiter.Close()

	m.WatchLimiter(limiter)
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		if len(f.GetMetric()) == 1 && f.GetMetric()[0].GetGauge() != nil {
			values[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, 3.0, values["ssr_render_slots"])
	assert.Equal(t, 1.0, values["ssr_render_slots_in_use"])
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "<html></html>") })

	for _, path := range []string{"/health", "/some/page", "/other/page"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", pageRoute, "200")))
	assert.Equal(t, int64(3), m.Snapshot().TotalRequests)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ssr_http_requests_total")
	assert.Contains(t, rec.Body.String(), "ssr_uptime_seconds")
}

func TestStoreOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ok", nil, OutcomeOK},
		{"circuit open", fmt.Errorf("insert review: %w", resilience.ErrCircuitOpen), StoreOutcomeUnavailable},
		{"half-open busy", resilience.ErrTooManyRequests, StoreOutcomeUnavailable},
		{"canceled", context.Canceled, StoreOutcomeCanceled},
		{"other", errors.New("connection reset"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StoreOutcome(tt.err))
		})
	}
}

type flakyStore struct {
	review.MemoryStore
	err error
}

func (s *flakyStore) Insert(ctx context.Context, r review.Review) error {
	if s.err != nil {
		return s.err
	}
	return s.MemoryStore.Insert(ctx, r)
}

func TestInstrumentStore(t *testing.T) {
	m := NewMetrics()
	inner := &flakyStore{}
	store := InstrumentStore(inner, m)
	ctx := context.Background()

	r := review.Review{ID: "rev_1", Text: "ok", User: "u", Date: time.Now(), Target: review.Tyres}
	require.NoError(t, store.Insert(ctx, r))

	inner.err = resilience.ErrCircuitOpen
	assert.ErrorIs(t, store.Insert(ctx, r), resilience.ErrCircuitOpen)

	reviews, err := store.List(ctx, review.Filter{})
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	// insert/ok, insert/unavailable, list/ok
	assert.Equal(t, 3, testutil.CollectAndCount(m.StoreDuration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `ssr_review_store_duration_seconds_count{operation="insert",outcome="unavailable"} 1`)
	assert.Contains(t, body, `ssr_review_store_duration_seconds_count{operation="list",outcome="ok"} 1`)
}
