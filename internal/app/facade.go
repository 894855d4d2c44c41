package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
	"github.com/polkiloo/homebooking/internal/pkg/auth"
	"github.com/polkiloo/homebooking/internal/usecase"
)

var errPollingDisabled = errors.New("gateway status polling is disabled")

// BookingFacade is the single entry point used by HTTP handlers and workers.
type BookingFacade struct {
	orders     *usecase.OrderUseCase
	reconciler *usecase.ReconciliationUseCase
	fanout     *usecase.FanoutUseCase
	partners   *usecase.PartnerUseCase
	tokens     auth.Strategy
	gateway    gateway.Client
	verifier   *gateway.Verifier
	store      repository.Factory
	pollMinAge time.Duration
	now        func() time.Time
}

// FacadeDeps groups BookingFacade collaborators.
type FacadeDeps struct {
	Orders     *usecase.OrderUseCase
	Reconciler *usecase.ReconciliationUseCase
	Fanout     *usecase.FanoutUseCase
	Partners   *usecase.PartnerUseCase
	Tokens     auth.Strategy
	Gateway    gateway.Client
	Verifier   *gateway.Verifier
	Store      repository.Factory
	PollMinAge time.Duration
}

// NewBookingFacade constructs BookingFacade. Gateway may be nil when polling is disabled.
func NewBookingFacade(d FacadeDeps) *BookingFacade {
	return &BookingFacade{
		orders:     d.Orders,
		reconciler: d.Reconciler,
		fanout:     d.Fanout,
		partners:   d.Partners,
		tokens:     d.Tokens,
		gateway:    d.Gateway,
		verifier:   d.Verifier,
		store:      d.Store,
		pollMinAge: d.PollMinAge,
		now:        time.Now,
	}
}

func (f *BookingFacade) ParseToken(token string) (model.Actor, error) {
	return f.tokens.ParseToken(token)
}

func (f *BookingFacade) CreateOrder(ctx context.Context, actor model.Actor, in usecase.CreateOrderInput) (*model.Order, error) {
	return f.orders.Create(ctx, actor, in)
}

func (f *BookingFacade) Order(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return f.orders.Get(ctx, actor, id)
}

func (f *BookingFacade) Orders(ctx context.Context, actor model.Actor, status model.OrderStatus, limit int) ([]model.Order, error) {
	return f.orders.List(ctx, actor, status, limit)
}

func (f *BookingFacade) AvailableOrders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error) {
	return f.orders.ListAvailable(ctx, actor, limit)
}

func (f *BookingFacade) ClaimOrder(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return f.orders.Claim(ctx, actor, id)
}

func (f *BookingFacade) StartWork(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return f.orders.StartWork(ctx, actor, id)
}

func (f *BookingFacade) CancelOrder(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (*model.Order, error) {
	return f.orders.Cancel(ctx, actor, id, usecase.CancelInput{Reason: reason})
}

func (f *BookingFacade) RequestCompletion(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return f.orders.RequestCompletion(ctx, actor, id)
}

func (f *BookingFacade) ConfirmCompletion(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return f.orders.ConfirmCompletion(ctx, actor, id)
}

// NotifyPayment verifies and applies a server-to-server gateway notification.
func (f *BookingFacade) NotifyPayment(ctx context.Context, n gateway.Notification) (model.ReconciliationResult, error) {
	if err := f.verifier.Verify(n); err != nil {
		return model.ReconciliationResult{}, err
	}
	signal, err := n.Signal(model.ChannelNotify)
	if err != nil {
		return model.ReconciliationResult{}, err
	}
	return f.reconciler.Reconcile(ctx, signal)
}

// ReturnPayment applies the outcome carried by the customer's return redirect.
// The redirect passes through the customer's browser, so with verification enabled
// an unsigned redirect is replaced by the gateway's own status report.
func (f *BookingFacade) ReturnPayment(ctx context.Context, n gateway.Notification) (model.ReconciliationResult, error) {
	if !f.verifier.Enabled() || n.SignatureKey != "" {
		if err := f.verifier.Verify(n); err != nil {
			return model.ReconciliationResult{}, err
		}
		signal, err := n.Signal(model.ChannelReturn)
		if err != nil {
			return model.ReconciliationResult{}, err
		}
		return f.reconciler.Reconcile(ctx, signal)
	}

	if f.gateway == nil {
		return model.ReconciliationResult{}, domainErrors.New(domainErrors.CodeUnauthenticated, "unsigned return redirect")
	}
	id, err := uuid.Parse(strings.TrimSpace(n.OrderID))
	if err != nil {
		return model.ReconciliationResult{}, domainErrors.New(domainErrors.CodeValidation, "order_id must be a uuid")
	}
	signal, err := f.gateway.Status(ctx, id)
	if err != nil {
		if errors.Is(err, gateway.ErrTransactionNotFound) {
			return model.ReconciliationResult{}, domainErrors.Wrap(domainErrors.CodeNotFound, "transaction unknown to gateway", err)
		}
		return model.ReconciliationResult{}, fmt.Errorf("fetch gateway status: %w", err)
	}
	signal.Channel = model.ChannelReturn
	return f.reconciler.Reconcile(ctx, signal)
}

func (f *BookingFacade) ReconcilePayment(ctx context.Context, signal model.PaymentSignal) (model.ReconciliationResult, error) {
	return f.reconciler.Reconcile(ctx, signal)
}

// PendingPayments selects unpaid orders older than the configured minimum age.
func (f *BookingFacade) PendingPayments(ctx context.Context, limit int) ([]model.Order, error) {
	return f.reconciler.PendingPayments(ctx, f.now().Add(-f.pollMinAge), limit)
}

func (f *BookingFacade) PaymentStatus(ctx context.Context, orderID uuid.UUID) (model.PaymentSignal, error) {
	if f.gateway == nil {
		return model.PaymentSignal{}, errPollingDisabled
	}
	return f.gateway.Status(ctx, orderID)
}

func (f *BookingFacade) PaymentReviews(ctx context.Context, actor model.Actor, limit int) ([]model.PaymentReview, error) {
	return f.reconciler.Reviews(ctx, actor, limit)
}

func (f *BookingFacade) DispatchNotifications(ctx context.Context, limit int) (int, error) {
	return f.fanout.Dispatch(ctx, limit)
}

func (f *BookingFacade) Notifications(ctx context.Context, actor model.Actor, limit int) ([]model.PartnerNotification, error) {
	return f.fanout.Notifications(ctx, actor, limit)
}

func (f *BookingFacade) UpsertPartner(ctx context.Context, actor model.Actor, id uuid.UUID, in usecase.PartnerInput) (*model.Partner, error) {
	return f.partners.Upsert(ctx, actor, id, in)
}

func (f *BookingFacade) PartnerProfile(ctx context.Context, actor model.Actor) (*model.Partner, error) {
	return f.partners.Profile(ctx, actor)
}

func (f *BookingFacade) HealthCheck(ctx context.Context) error {
	return f.store.HealthCheck(ctx)
}
