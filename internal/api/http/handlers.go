package http

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/zvenigorodok/internal/domain/review"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
)

// Renderer renders pages from request parameters.
type Renderer interface {
	RenderToString(ctx context.Context, params ssr.Params) (string, error)
	Stats() map[string]interface{}
}

// Config holds handler settings.
type Config struct {
	// RenderTimeout bounds a single page render. Zero disables the bound.
	RenderTimeout time.Duration
	// IsDev exposes render error details on the error page.
	IsDev bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	renderer Renderer
	reviews  *review.Service
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	logger   *zap.Logger
	cfg      Config
	started  time.Time
}

// NewHandlers creates a new handlers instance. metrics and tracer may be nil.
func NewHandlers(renderer Renderer, reviews *review.Service, metrics *monitoring.Metrics, tracer *tracing.Tracer, logger *zap.Logger, cfg Config) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		renderer: renderer,
		reviews:  reviews,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
		cfg:      cfg,
		started:  time.Now(),
	}
}
