package ssr

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	ErrNotInitialized     = errors.New("ssr platform is not initialized")
	ErrAlreadyInitialized = errors.New("ssr platform is already initialized")
)

// defaultMaxCallStackSize bounds JS recursion so a runaway bundle fails with
// a stack overflow instead of exhausting the goroutine stack.
const defaultMaxCallStackSize = 4096

// PlatformConfig holds the settings shared by every isolate in the process.
type PlatformConfig struct {
	MaxCallStackSize int
	Logger           *zap.Logger // receives console.* output from bundles
}

// PlatformOption configures the platform during Initialize.
type PlatformOption func(*PlatformConfig)

// WithMaxCallStackSize overrides the JS call stack limit of every isolate.
func WithMaxCallStackSize(size int) PlatformOption {
	return func(cfg *PlatformConfig) {
		cfg.MaxCallStackSize = size
	}
}

// WithConsoleLogger routes console output of bundles to logger.
func WithConsoleLogger(logger *zap.Logger) PlatformOption {
	return func(cfg *PlatformConfig) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// Platform is the process-wide VM state. It can be initialized exactly once.
type Platform struct {
	once  sync.Once
	ready atomic.Bool
	cfg   PlatformConfig
}

var defaultPlatform Platform

// Initialize sets up the platform. Only the first call has an effect; later
// calls return ErrAlreadyInitialized.
func (p *Platform) Initialize(opts ...PlatformOption) error {
	err := ErrAlreadyInitialized
	p.once.Do(func() {
		cfg := PlatformConfig{
			MaxCallStackSize: defaultMaxCallStackSize,
			Logger:           zap.NewNop(),
		}
		for _, opt := range opts {
			opt(&cfg)
		}
		p.cfg = cfg
		p.ready.Store(true)
		err = nil
	})
	return err
}

// Initialized reports whether Initialize has completed.
func (p *Platform) Initialized() bool {
	return p.ready.Load()
}

func (p *Platform) config() (PlatformConfig, error) {
	if !p.ready.Load() {
		return PlatformConfig{}, ErrNotInitialized
	}
	return p.cfg, nil
}

// Initialize sets up the process-wide platform. Call it once from process
// bootstrap before any render traffic.
func Initialize(opts ...PlatformOption) error {
	return defaultPlatform.Initialize(opts...)
}

// MustInitialize is like Initialize but panics on error.
func MustInitialize(opts ...PlatformOption) {
	if err := Initialize(opts...); err != nil {
		panic(err)
	}
}

// Initialized reports whether the process-wide platform is ready.
func Initialized() bool {
	return defaultPlatform.Initialized()
}
