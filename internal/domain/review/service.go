package review

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/GriffinCanCode/zvenigorodok/internal/shared/id"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Recorder receives stored reviews, e.g. for metrics.
type Recorder interface {
	RecordReview(target string)
}

// Service validates, sanitises and stores reviews.
type Service struct {
	store    Store
	policy   *bluemonday.Policy
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithRecorder reports every stored review to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the clock used for missing review dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a review service on top of store
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		policy: bluemonday.StrictPolicy(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add sanitises r, assigns an id, fills a missing date and stores it.
// Markup is stripped from text and user since both end up in rendered pages.
func (s *Service) Add(ctx context.Context, r Review) (Review, error) {
	r.Text = s.sanitize(r.Text)
	r.User = s.sanitize(r.User)
	if r.Date.IsZero() {
		r.Date = s.now()
	}
	r.Date = r.Date.UTC().Truncate(time.Second)

	if err := r.Validate(); err != nil {
		return Review{}, err
	}

	r.ID = id.NewReviewID()
	if err := s.store.Insert(ctx, r); err != nil {
		s.logger.Error("Failed to store review",
			zap.String("target", r.Target.String()),
			zap.Error(err))
		return Review{}, fmt.Errorf("store review: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordReview(r.Target.String())
	}
	s.logger.Debug("Review stored",
		zap.String("id", r.ID.String()),
		zap.String("target", r.Target.String()))

	return r, nil
}

// sanitize drops every tag and keeps the text as plain characters; the
// page renderer escapes on output.
func (s *Service) sanitize(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

// List returns reviews, optionally only those for target. An empty target
// lists everything.
func (s *Service) List(ctx context.Context, target string) ([]Review, error) {
	var filter Filter
	if target != "" {
		t, err := ParseTarget(target)
		if err != nil {
			return nil, err
		}
		filter.Target = t
	}

	reviews, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Close releases the underlying store.
func (s *Service) Close() {
	s.store.Close()
}
