// Package memory provides an in-process order store with the same compare-and-swap
// semantics as the PostgreSQL store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
)

type orderRecord struct {
	order      *model.Order
	notifiedAt *time.Time
	polledAt   *time.Time
}

// Storage keeps orders, partners and payment reviews in memory.
type Storage struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*orderRecord
	partners map[uuid.UUID]*model.Partner
	reviews  []model.PaymentReview
	now      func() time.Time
}

// New creates an empty store.
func New() *Storage {
	return &Storage{
		orders:   make(map[uuid.UUID]*orderRecord),
		partners: make(map[uuid.UUID]*model.Partner),
		now:      time.Now,
	}
}

func (s *Storage) Orders() repository.OrderRepository { return &orderRepository{storage: s} }

func (s *Storage) Partners() repository.PartnerRepository { return &partnerRepository{storage: s} }

func (s *Storage) PaymentReviews() repository.PaymentReviewRepository {
	return &paymentReviewRepository{storage: s}
}

// HealthCheck always succeeds.
func (s *Storage) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Storage) Close() {}

type orderRepository struct {
	storage *Storage
}

type partnerRepository struct {
	storage *Storage
}

type paymentReviewRepository struct {
	storage *Storage
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	s.orders[order.ID] = &orderRecord{order: order.Clone()}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return rec.order.Clone(), nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.Order
	for _, rec := range s.orders {
		o := rec.order
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.PartnerID != nil && !o.AssignedTo(*filter.PartnerID) {
			continue
		}
		result = append(result, *o.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *orderRepository) ListAvailable(ctx context.Context, limit int) ([]model.Order, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.Order
	for _, rec := range s.orders {
		if rec.order.Status == model.OrderStatusPendingConfirmation && rec.order.Unassigned() {
			result = append(result, *rec.order.Clone())
		}
	}
	sortOldestFirst(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *orderRepository) CompareAndSwap(ctx context.Context, t model.Transition) error {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[t.Order.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if rec.order.Status != t.ExpectedStatus || rec.order.Version != t.ExpectedVersion {
		return domainErrors.New(domainErrors.CodeConflict, "order was modified concurrently")
	}

	next := t.Order.Clone()
	next.StatusHistory = append(append([]model.StatusHistoryEntry(nil), rec.order.StatusHistory...), t.Entry)
	next.Version = rec.order.Version + 1

	if t.CreditPartner && next.PartnerID != nil {
		p, ok := s.partners[*next.PartnerID]
		if !ok {
			// Unregistered partners stay out of the fan-out list until they register.
			p = &model.Partner{ID: *next.PartnerID, CreatedAt: s.now()}
			s.partners[p.ID] = p
		}
		p.CompletedJobs++
	}

	rec.order = next
	return nil
}

func (r *orderRepository) RecordPaymentAttempt(ctx context.Context, a model.PaymentAttempt) error {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[a.OrderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if rec.order.Status != model.OrderStatusPendingPayment || rec.order.Version != a.ExpectedVersion {
		return domainErrors.New(domainErrors.CodeConflict, "order was modified concurrently")
	}

	next := rec.order.Clone()
	next.Payment.ReconciliationStatus = a.Status
	next.Payment.GatewayResponseCode = a.ResponseCode
	next.Payment.GatewayTransactionID = a.TransactionID
	next.Payment.Channel = a.Channel
	next.Version++
	next.UpdatedAt = a.At
	rec.order = next
	return nil
}

func (r *orderRepository) SelectPendingPayments(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	var picked []*orderRecord
	for _, rec := range s.orders {
		if rec.order.Status != model.OrderStatusPendingPayment || rec.order.CreatedAt.After(cutoff) {
			continue
		}
		if rec.polledAt != nil && rec.polledAt.After(cutoff) {
			continue
		}
		picked = append(picked, rec)
	}
	return s.markBatch(picked, limit, func(rec *orderRecord, now time.Time) { rec.polledAt = &now }), nil
}

func (r *orderRepository) ClaimForFanout(ctx context.Context, limit int) ([]model.Order, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	var picked []*orderRecord
	for _, rec := range s.orders {
		if rec.order.Status == model.OrderStatusPendingConfirmation && rec.order.Unassigned() && rec.notifiedAt == nil {
			picked = append(picked, rec)
		}
	}
	return s.markBatch(picked, limit, func(rec *orderRecord, now time.Time) { rec.notifiedAt = &now }), nil
}

func (r *orderRepository) ReleaseFanout(ctx context.Context, id uuid.UUID) error {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	rec.notifiedAt = nil
	return nil
}

// markBatch must be called with s.mu held.
func (s *Storage) markBatch(picked []*orderRecord, limit int, mark func(*orderRecord, time.Time)) []model.Order {
	sort.Slice(picked, func(i, j int) bool { return picked[i].order.CreatedAt.Before(picked[j].order.CreatedAt) })
	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}
	now := s.now()
	result := make([]model.Order, 0, len(picked))
	for _, rec := range picked {
		mark(rec, now)
		result = append(result, *rec.order.Clone())
	}
	return result
}

func sortOldestFirst(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
}

// --- PartnerRepository implementation ---

func (r *partnerRepository) Upsert(ctx context.Context, partner *model.Partner) error {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.partners[partner.ID]; ok {
		existing.Name = partner.Name
		existing.Active = partner.Active
		partner.CompletedJobs = existing.CompletedJobs
		partner.CreatedAt = existing.CreatedAt
		return nil
	}
	stored := *partner
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	partner.CreatedAt = stored.CreatedAt
	s.partners[partner.ID] = &stored
	return nil
}

func (r *partnerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *partnerRepository) ListActive(ctx context.Context) ([]model.Partner, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Partner
	for _, p := range s.partners {
		if p.Active {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// --- PaymentReviewRepository implementation ---

func (r *paymentReviewRepository) Create(ctx context.Context, review *model.PaymentReview) error {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now()
	}
	s.reviews = append(s.reviews, *review)
	return nil
}

func (r *paymentReviewRepository) List(ctx context.Context, limit int) ([]model.PaymentReview, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.PaymentReview, 0, len(s.reviews))
	for i := len(s.reviews) - 1; i >= 0; i-- {
		result = append(result, s.reviews[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
