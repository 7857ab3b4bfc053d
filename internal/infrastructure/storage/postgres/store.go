// Package postgres stores reviews in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/zvenigorodok/internal/domain/review"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/zvenigorodok/internal/shared/id"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "reviews"

const connectTimeout = 10 * time.Second

// Store is a review.Store backed by a pgx connection pool.
type Store struct {
	pool    *pgxpool.Pool
	queries queries
	breaker *resilience.Breaker
	logger  *zap.Logger
}

type queries struct {
	create string
	index  string
	insert string
	list   string
	byType string
}

func newQueries(table string) queries {
	if table == "" {
		table = DefaultTable
	}
	ident := pgx.Identifier{table}.Sanitize()
	index := pgx.Identifier{table + "_target_idx"}.Sanitize()

	return queries{
		create: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id     TEXT PRIMARY KEY,
	text   TEXT NOT NULL,
	"user" TEXT NOT NULL,
	date   TIMESTAMPTZ NOT NULL,
	target TEXT NOT NULL
)`, ident),
		index:  fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (target)`, index, ident),
		insert: fmt.Sprintf(`INSERT INTO %s (id, text, "user", date, target) VALUES ($1, $2, $3, $4, $5)`, ident),
		list:   fmt.Sprintf(`SELECT id, text, "user", date, target FROM %s ORDER BY id`, ident),
		byType: fmt.Sprintf(`SELECT id, text, "user", date, target FROM %s WHERE target = $1 ORDER BY id`, ident),
	}
}

// Open connects to databaseURL and makes sure the reviews table exists.
func Open(ctx context.Context, databaseURL, table string, logger *zap.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{
		pool:    pool,
		queries: newQueries(table),
		breaker: newBreaker(logger),
		logger:  logger,
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Review store connected",
		zap.String("host", cfg.ConnConfig.Host),
		zap.String("database", cfg.ConnConfig.Database),
		zap.Int32("max_conns", cfg.MaxConns))

	return s, nil
}

func newBreaker(logger *zap.Logger) *resilience.Breaker {
	return resilience.New("review-store", resilience.Settings{
		Timeout: 15 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Review store circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, s.queries.create); err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	if _, err := s.pool.Exec(ctx, s.queries.index); err != nil {
		return fmt.Errorf("create reviews index: %w", err)
	}
	return nil
}

// Insert stores a review
func (s *Store) Insert(ctx context.Context, r review.Review) error {
	err := s.breaker.Execute(func() error {
		_, err := s.pool.Exec(ctx, s.queries.insert,
			r.ID.String(), r.Text, r.User, r.Date, r.Target.String())
		return err
	})
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// List returns reviews ordered by id, which is submission order.
func (s *Store) List(ctx context.Context, filter review.Filter) ([]review.Review, error) {
	return resilience.Call(s.breaker, func() ([]review.Review, error) {
		var (
			rows pgx.Rows
			err  error
		)
		if filter.Target != "" {
			rows, err = s.pool.Query(ctx, s.queries.byType, filter.Target.String())
		} else {
			rows, err = s.pool.Query(ctx, s.queries.list)
		}
		if err != nil {
			return nil, fmt.Errorf("query reviews: %w", err)
		}

		reviews, err := pgx.CollectRows(rows, scanReview)
		if err != nil {
			return nil, fmt.Errorf("scan reviews: %w", err)
		}
		return reviews, nil
	})
}

// Close closes the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var (
		r      review.Review
		rid    string
		target string
	)
	if err := row.Scan(&rid, &r.Text, &r.User, &r.Date, &target); err != nil {
		return review.Review{}, err
	}

	t, err := review.ParseTarget(target)
	if err != nil {
		return review.Review{}, err
	}
	r.ID = id.ReviewID(rid)
	r.Target = t
	r.Date = r.Date.UTC()
	return r, nil
}

var _ review.Store = (*Store)(nil)
