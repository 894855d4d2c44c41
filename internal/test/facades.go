package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// PaymentFacadeStub mimics poller interactions with the booking facade.
type PaymentFacadeStub struct {
	Orders          [][]model.Order
	PendingFn       func(context.Context, int) ([]model.Order, error)
	StatusFn        func(context.Context, uuid.UUID) (model.PaymentSignal, error)
	ReconcileFn     func(context.Context, model.PaymentSignal) (model.ReconciliationResult, error)
	Reconciled      []model.PaymentSignal
	mu              sync.Mutex
	ordersCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *PaymentFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *PaymentFacadeStub) Unlock() { s.mu.Unlock() }

// PendingPayments returns batches from configured queue.
func (s *PaymentFacadeStub) PendingPayments(ctx context.Context, limit int) ([]model.Order, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.ordersCallCount, 1)
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// PaymentStatus returns configured gateway answer or a settled payment.
func (s *PaymentFacadeStub) PaymentStatus(ctx context.Context, orderID uuid.UUID) (model.PaymentSignal, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, orderID)
	}
	return model.PaymentSignal{
		OrderID:           orderID,
		OutcomeCode:       "200",
		TransactionStatus: "settlement",
		Channel:           model.ChannelPoll,
	}, nil
}

// ReconcilePayment records reconcile requests.
func (s *PaymentFacadeStub) ReconcilePayment(ctx context.Context, signal model.PaymentSignal) (model.ReconciliationResult, error) {
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, signal)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reconciled = append(s.Reconciled, signal)
	return model.ReconciliationResult{Outcome: model.ReconciliationConfirmed}, nil
}

// FanoutFacadeStub counts dispatch rounds. Rounds returns the delivered count per call in order, then zero.
type FanoutFacadeStub struct {
	Rounds []int
	Err    error
	calls  atomic.Int32
}

// DispatchNotifications returns the next configured round.
func (s *FanoutFacadeStub) DispatchNotifications(ctx context.Context, limit int) (int, error) {
	call := int(s.calls.Add(1))
	if s.Err != nil {
		return 0, s.Err
	}
	if call <= len(s.Rounds) {
		return s.Rounds[call-1], nil
	}
	return 0, nil
}

// Calls returns the number of dispatch rounds.
func (s *FanoutFacadeStub) Calls() int {
	return int(s.calls.Load())
}
