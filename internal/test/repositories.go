package test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
)

// OrderRepositoryStub wraps a real repository and lets tests override single calls.
type OrderRepositoryStub struct {
	repository.OrderRepository

	GetFn                  func(context.Context, uuid.UUID) (*model.Order, error)
	CompareAndSwapFn       func(context.Context, model.Transition) error
	RecordPaymentAttemptFn func(context.Context, model.PaymentAttempt) error
	ClaimForFanoutFn       func(context.Context, int) ([]model.Order, error)
	ReleaseFanoutFn        func(context.Context, uuid.UUID) error
}

// Get delegates to override or the wrapped repository.
func (s *OrderRepositoryStub) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return s.OrderRepository.Get(ctx, id)
}

// CompareAndSwap delegates to override or the wrapped repository.
func (s *OrderRepositoryStub) CompareAndSwap(ctx context.Context, t model.Transition) error {
	if s.CompareAndSwapFn != nil {
		return s.CompareAndSwapFn(ctx, t)
	}
	return s.OrderRepository.CompareAndSwap(ctx, t)
}

// RecordPaymentAttempt delegates to override or the wrapped repository.
func (s *OrderRepositoryStub) RecordPaymentAttempt(ctx context.Context, a model.PaymentAttempt) error {
	if s.RecordPaymentAttemptFn != nil {
		return s.RecordPaymentAttemptFn(ctx, a)
	}
	return s.OrderRepository.RecordPaymentAttempt(ctx, a)
}

// ClaimForFanout delegates to override or the wrapped repository.
func (s *OrderRepositoryStub) ClaimForFanout(ctx context.Context, limit int) ([]model.Order, error) {
	if s.ClaimForFanoutFn != nil {
		return s.ClaimForFanoutFn(ctx, limit)
	}
	return s.OrderRepository.ClaimForFanout(ctx, limit)
}

// ReleaseFanout delegates to override or the wrapped repository.
func (s *OrderRepositoryStub) ReleaseFanout(ctx context.Context, id uuid.UUID) error {
	if s.ReleaseFanoutFn != nil {
		return s.ReleaseFanoutFn(ctx, id)
	}
	return s.OrderRepository.ReleaseFanout(ctx, id)
}

// PartnerRepositoryStub returns a fixed partner list.
type PartnerRepositoryStub struct {
	Partners []model.Partner
	Err      error
}

// Upsert appends or replaces the partner.
func (s *PartnerRepositoryStub) Upsert(ctx context.Context, partner *model.Partner) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Partners {
		if s.Partners[i].ID == partner.ID {
			s.Partners[i] = *partner
			return nil
		}
	}
	s.Partners = append(s.Partners, *partner)
	return nil
}

// Get finds the partner by id.
func (s *PartnerRepositoryStub) Get(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Partners {
		if s.Partners[i].ID == id {
			p := s.Partners[i]
			return &p, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListActive returns active partners or the configured error.
func (s *PartnerRepositoryStub) ListActive(ctx context.Context) ([]model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Partner
	for _, p := range s.Partners {
		if p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

// NotificationSinkStub records pushed notifications. Pushes for partners listed in
// FailFor fail with Err.
type NotificationSinkStub struct {
	mu      sync.Mutex
	Pushed  []model.PartnerNotification
	FailFor map[uuid.UUID]bool
	Err     error
}

// Push records n unless its partner is configured to fail.
func (s *NotificationSinkStub) Push(ctx context.Context, n model.PartnerNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFor[n.PartnerID] {
		return s.Err
	}
	s.Pushed = append(s.Pushed, n)
	return nil
}

// List returns notifications for partnerID, newest first.
func (s *NotificationSinkStub) List(ctx context.Context, partnerID uuid.UUID, limit int) ([]model.PartnerNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.PartnerNotification
	for i := len(s.Pushed) - 1; i >= 0; i-- {
		if s.Pushed[i].PartnerID != partnerID {
			continue
		}
		result = append(result, s.Pushed[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Count returns the number of recorded notifications.
func (s *NotificationSinkStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Pushed)
}

// TriggerStub counts fan-out triggers.
type TriggerStub struct {
	mu    sync.Mutex
	Calls int
}

// Trigger records a call.
func (s *TriggerStub) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
}

// Count returns the number of recorded triggers.
func (s *TriggerStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls
}

var (
	_ repository.OrderRepository        = (*OrderRepositoryStub)(nil)
	_ repository.PartnerRepository      = (*PartnerRepositoryStub)(nil)
	_ repository.NotificationRepository = (*NotificationSinkStub)(nil)
)
