package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/adapter/gateway"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/usecase"
)

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, actor model.Actor, in usecase.CreateOrderInput) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	Orders(ctx context.Context, actor model.Actor, status model.OrderStatus, limit int) ([]model.Order, error)
	AvailableOrders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error)
	ClaimOrder(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	StartWork(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	CancelOrder(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (*model.Order, error)
	RequestCompletion(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	ConfirmCompletion(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
}

// PaymentFacade provides gateway callbacks and the review queue.
type PaymentFacade interface {
	ReturnPayment(ctx context.Context, n gateway.Notification) (model.ReconciliationResult, error)
	NotifyPayment(ctx context.Context, n gateway.Notification) (model.ReconciliationResult, error)
	PaymentReviews(ctx context.Context, actor model.Actor, limit int) ([]model.PaymentReview, error)
}

// PartnerFacade provides partner profile, notification and registry operations.
type PartnerFacade interface {
	Notifications(ctx context.Context, actor model.Actor, limit int) ([]model.PartnerNotification, error)
	PartnerProfile(ctx context.Context, actor model.Actor) (*model.Partner, error)
	UpsertPartner(ctx context.Context, actor model.Actor, id uuid.UUID, in usecase.PartnerInput) (*model.Partner, error)
}

// HealthFacade reports readiness of backing stores.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// BookingFacade aggregates the full set of operations used across handlers.
type BookingFacade interface {
	ParseToken(token string) (model.Actor, error)
	OrderFacade
	PaymentFacade
	PartnerFacade
	HealthFacade
}
