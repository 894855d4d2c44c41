package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/repository"
)

// pgxPool is the subset of *pgxpool.Pool used by the storage.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool        pgxPool
	logger      *slog.Logger
	lockTimeout time.Duration
}

// Option customizes Storage.
type Option func(*Storage)

// WithLockTimeout bounds how long a transaction waits for row locks.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Storage) { s.lockTimeout = d }
}

type orderRepository struct {
	storage *Storage
}

type partnerRepository struct {
	storage *Storage
}

type paymentReviewRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger, opts ...Option) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	for _, opt := range opts {
		opt(storage)
	}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Partners() repository.PartnerRepository {
	return &partnerRepository{storage: s}
}

func (s *Storage) PaymentReviews() repository.PaymentReviewRepository {
	return &paymentReviewRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS partners (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            active BOOLEAN NOT NULL DEFAULT TRUE,
            completed_jobs BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            customer_id UUID NOT NULL,
            partner_id UUID,
            service JSONB NOT NULL,
            schedule JSONB NOT NULL,
            contact JSONB NOT NULL,
            amount NUMERIC(18,2) NOT NULL,
            currency TEXT NOT NULL,
            payment_method TEXT NOT NULL DEFAULT '',
            gateway_transaction_id TEXT NOT NULL DEFAULT '',
            gateway_response_code TEXT NOT NULL DEFAULT '',
            reconciled_channel TEXT NOT NULL DEFAULT '',
            paid_at TIMESTAMPTZ,
            reconciliation_status TEXT NOT NULL,
            status TEXT NOT NULL,
            status_history JSONB NOT NULL DEFAULT '[]',
            cancellation_reason TEXT,
            cancelled_at TIMESTAMPTZ,
            completion_requested_at TIMESTAMPTZ,
            partners_notified_at TIMESTAMPTZ,
            payment_polled_at TIMESTAMPTZ,
            version BIGINT NOT NULL DEFAULT 1,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payment_reviews (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            channel TEXT NOT NULL,
            reported_amount NUMERIC(18,2) NOT NULL,
            expected_amount NUMERIC(18,2) NOT NULL,
            transaction_id TEXT NOT NULL DEFAULT '',
            outcome_code TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_partner ON orders(partner_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapTxError(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = mapTxError(tx.Commit(ctx))
		}
	}()

	if s.lockTimeout > 0 {
		if _, err = tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, fmt.Sprintf("%dms", s.lockTimeout.Milliseconds())); err != nil {
			return err
		}
	}

	err = mapTxError(fn(tx))
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

// Transient PostgreSQL failures that a caller may retry with fresh state.
var transientCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := transientCodes[pgErr.Code]; ok {
			return domainErrors.Wrap(domainErrors.CodeConflict, "transaction aborted", err)
		}
		if pgErr.Code == "23505" {
			return domainErrors.Wrap(domainErrors.CodeAlreadyExists, "duplicate key", err)
		}
	}
	return err
}
