package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	ListAvailable(ctx context.Context, limit int) ([]model.Order, error)
	// CompareAndSwap persists t.Order only if the stored status and version still equal the
	// expected ones, appending t.Entry to the history and, when requested, crediting the
	// assigned partner in the same transaction. A lost race yields a conflict error.
	CompareAndSwap(ctx context.Context, t model.Transition) error
	// RecordPaymentAttempt stores a pending, failed or mismatched gateway outcome while the
	// order is still pending_payment at a.ExpectedVersion. A lost race yields a conflict error.
	RecordPaymentAttempt(ctx context.Context, a model.PaymentAttempt) error
	// SelectPendingPayments returns unpaid orders created and last polled before cutoff, marking them polled.
	SelectPendingPayments(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
	// ClaimForFanout returns reconciled unassigned orders whose partners were not notified yet and marks them.
	ClaimForFanout(ctx context.Context, limit int) ([]model.Order, error)
	ReleaseFanout(ctx context.Context, id uuid.UUID) error
}
