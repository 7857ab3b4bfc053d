package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	handlers "github.com/GriffinCanCode/zvenigorodok/internal/api/http"
	"github.com/GriffinCanCode/zvenigorodok/internal/api/middleware"
	"github.com/GriffinCanCode/zvenigorodok/internal/domain/review"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/config"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/logging"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/storage/postgres"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

// Server wraps the HTTP listeners and their dependencies
type Server struct {
	router   *gin.Engine
	renderer *ssr.Renderer
	limiter  *ssr.Limiter
	reviews  *review.Service
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	servers  []*http.Server
}

// NewServer loads the render bundle, connects the review store and builds
// the router. The render platform must already be initialised.
func NewServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if !ssr.Initialized() {
		return nil, ssr.ErrNotInitialized
	}

	logger.Info("Initializing SSR server",
		zap.String("port", cfg.Server.Port),
		zap.String("dir", cfg.Server.ClientDir),
		zap.Bool("tls", cfg.TLS.Enabled()),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("ssr", logger.Named("trace"))

	bundle, err := ssr.LoadBundle(cfg.Server.ClientDir, cfg.Render.Entrypoint)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	limiter := ssr.NewLimiter(cfg.Render.MaxConcurrent, cfg.Render.WaitTimeout)
	metrics.WatchLimiter(limiter)

	renderer, err := ssr.New(bundle,
		ssr.WithLimiter(limiter),
		ssr.WithObserver(metrics),
		ssr.WithLogger(logger.Named("ssr")),
	)
	if err != nil {
		limiter.Close()
		tracer.Close()
		return nil, err
	}

	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		limiter.Close()
		tracer.Close()
		return nil, err
	}
	reviews := review.NewService(monitoring.InstrumentStore(store, metrics),
		review.WithRecorder(metrics),
		review.WithLogger(logger.Named("reviews")),
	)

	s := &Server{
		renderer: renderer,
		limiter:  limiter,
		reviews:  reviews,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}
	s.router = s.buildRouter()

	if err := s.buildListeners(); err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("Server initialized successfully",
		zap.Strings("exports", renderer.Exports()),
		zap.Int("render_slots", limiter.Size()),
	)

	return s, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *logging.Logger) (review.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, reviews are kept in memory")
		return review.NewMemoryStore(), nil
	}
	return postgres.Open(ctx, cfg.DatabaseURL, cfg.Table, logger.Named("postgres"))
}

func (s *Server) buildRouter() *gin.Engine {
	cfg := s.config

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(s.logger.Logger))
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(middleware.RequestLogger(s.logger.Named("http")))
	router.Use(monitoring.Middleware(s.metrics))
	if cfg.Logging.Development {
		router.Use(middleware.CORS(middleware.PermissiveCORSConfig()))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}
	if cfg.TLS.Enabled() && cfg.TLS.RedirectHTTPS && !cfg.Logging.Development {
		tlsPort, _ := strconv.Atoi(cfg.TLS.Port)
		router.Use(middleware.RedirectHTTPS(tlsPort))
	}
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	h := handlers.NewHandlers(s.renderer, s.reviews, s.metrics, s.tracer, s.logger.Named("handlers"), handlers.Config{
		RenderTimeout: cfg.Render.Timeout,
		IsDev:         cfg.Logging.Development,
	})

	// Static assets produced by the client build
	dir := cfg.Server.ClientDir
	serveStatic(router, "/styles", filepath.Join(dir, "ssr", "styles"), cfg.Static.MaxAge)
	serveStatic(router, "/images", filepath.Join(dir, "ssr", "images"), cfg.Static.MaxAge)
	serveStatic(router, "/scripts", filepath.Join(dir, "client"), cfg.Static.MaxAge)

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api")
	api.GET("/get_reviews", h.GetReviews)
	api.POST("/add_review", h.AddReview)

	// Every other GET is a page
	router.NoRoute(middleware.NoStore(), middleware.Compress(middleware.DefaultCompressMinSize), h.Page)

	return router
}

// serveStatic serves root under prefix with directory listings. Missing
// files answer 404 instead of falling through to the page renderer.
func serveStatic(router *gin.Engine, prefix, root string, maxAge time.Duration) {
	fileServer := http.StripPrefix(prefix, http.FileServer(gin.Dir(root, true)))
	handler := func(c *gin.Context) {
		fileServer.ServeHTTP(c.Writer, c.Request)
	}

	group := router.Group(prefix, middleware.CacheControl(maxAge))
	group.GET("/*filepath", handler)
	group.HEAD("/*filepath", handler)
}

func (s *Server) buildListeners() error {
	cfg := s.config

	s.servers = append(s.servers, s.newHTTPServer(net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	if !cfg.TLS.Enabled() {
		return nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return fmt.Errorf("load TLS certificate: %w", err)
	}

	srv := s.newHTTPServer(net.JoinHostPort(cfg.Server.Host, cfg.TLS.Port))
	srv.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	s.servers = append(s.servers, srv)
	return nil
}

func (s *Server) newHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          zap.NewStdLog(s.logger.Named("net/http")),
	}
}

// Handler returns the router, e.g. for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Renderer returns the page renderer
func (s *Server) Renderer() *ssr.Renderer {
	return s.renderer
}

// Run serves until ctx is cancelled or a listener fails, then shuts every
// listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range s.servers {
		srv := srv
		g.Go(func() error {
			s.logger.Info("Starting listener",
				zap.String("addr", srv.Addr),
				zap.Bool("tls", srv.TLSConfig != nil))

			var err error
			if srv.TLSConfig != nil {
				err = srv.ListenAndServeTLS("", "")
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	s.logger.Info("Shutting down listeners...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var result *multierror.Error
	for _, srv := range s.servers {
		if err := srv.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}
	return result.ErrorOrNil()
}

// Close releases the renderer, store and tracer
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.limiter.Close(); err != nil {
		s.logger.Error("Failed to close render limiter", zap.Error(err))
	}
	s.reviews.Close()
	s.tracer.Close()

	_ = s.logger.Sync()

	return nil
}
