package ssr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Observer receives render outcomes, e.g. for metrics.
type Observer interface {
	ObserveRender(duration time.Duration, err error)
	ObserveExportError(name string)
}

// Renderer renders a fixed bundle. It is safe for concurrent use: the only
// state shared between calls is the immutable compiled program.
type Renderer struct {
	bundle   Bundle
	program  *goja.Program
	exports  []string
	limiter  *Limiter
	observer Observer
	logger   *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLimiter bounds concurrent renders.
func WithLimiter(l *Limiter) Option {
	return func(r *Renderer) {
		r.limiter = l
	}
}

// WithObserver reports every render to o.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		r.observer = o
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New compiles bundle and evaluates it once to verify that it produces an
// export object. Any failure here means a broken deployment artifact.
func New(bundle Bundle, opts ...Option) (*Renderer, error) {
	cfg, err := defaultPlatform.config()
	if err != nil {
		return nil, err
	}

	program, err := compile(bundle.Name(), bundle.Source())
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		bundle:  bundle,
		program: program,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.exports, err = discoverExports(cfg, program)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Render bundle loaded",
		zap.String("bundle", bundle.Name()),
		zap.Int("size", bundle.Size()),
		zap.Strings("exports", r.exports),
	)
	return r, nil
}

// Bundle returns the bundle the renderer was built from.
func (r *Renderer) Bundle() Bundle {
	return r.bundle
}

// Exports returns the callable export names found when the bundle was
// loaded.
func (r *Renderer) Exports() []string {
	return append([]string(nil), r.exports...)
}

// Stats returns renderer statistics
func (r *Renderer) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"bundle":  r.bundle.Name(),
		"size":    r.bundle.Size(),
		"exports": len(r.exports),
	}
	if r.limiter != nil {
		stats["limiter"] = r.limiter.Stats()
	}
	return stats
}

// RenderToString runs every render function of the bundle with params in a
// fresh isolate and returns their concatenated output. When some exports
// fail, the output of the others is returned together with the error.
func (r *Renderer) RenderToString(ctx context.Context, params Params) (string, error) {
	if r.limiter != nil {
		if err := r.limiter.Acquire(ctx); err != nil {
			err = fmt.Errorf("acquire render slot: %w", err)
			if r.observer != nil {
				r.observer.ObserveRender(0, err)
			}
			return "", err
		}
		defer r.limiter.Release()
	}

	start := time.Now()
	out, err := render(ctx, r.program, params)
	duration := time.Since(start)

	if err != nil {
		r.logger.Error("Render failed",
			zap.String("bundle", r.bundle.Name()),
			zap.Duration("duration", duration),
			zap.Int("partial_bytes", len(out)),
			zap.Error(err),
		)
	}
	if r.observer != nil {
		r.observer.ObserveRender(duration, err)
		for _, name := range failedExports(err) {
			r.observer.ObserveExportError(name)
		}
	}
	return out, err
}

// OneShotRender compiles and renders source once. It is meant for ad-hoc
// execution outside the request path.
func OneShotRender(ctx context.Context, source string, params Params) (string, error) {
	program, err := compile("one-shot.js", source)
	if err != nil {
		return "", err
	}
	return render(ctx, program, params)
}

func compile(name, source string) (*goja.Program, error) {
	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return program, nil
}

func render(ctx context.Context, program *goja.Program, params Params) (string, error) {
	cfg, err := defaultPlatform.config()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", interrupted(err)
	}

	iso := newIsolate(ctx, cfg)
	defer iso.close()

	exports, err := evaluate(ctx, iso, program)
	if err != nil {
		return "", err
	}
	return invokeAll(ctx, iso, exports, params)
}

func evaluate(ctx context.Context, iso *isolate, program *goja.Program) (ExportMap, error) {
	result, err := iso.run(ctx, program)
	if err != nil {
		return ExportMap{}, err
	}

	var exports ExportMap
	err = iso.guard(func() (err error) {
		exports, err = reflectExports(iso.vm, result)
		return err
	})
	if err != nil && !errors.Is(err, ErrNoExports) {
		err = fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return exports, err
}

func discoverExports(cfg PlatformConfig, program *goja.Program) ([]string, error) {
	iso := newIsolate(context.Background(), cfg)
	defer iso.close()

	exports, err := evaluate(context.Background(), iso, program)
	if err != nil {
		return nil, err
	}
	return exports.Names(), nil
}

func failedExports(err error) []string {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return nil
	}
	names := make([]string, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		var ee *ExportError
		if errors.As(e, &ee) {
			names = append(names, ee.Name)
		}
	}
	return names
}
