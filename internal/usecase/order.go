package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
)

const defaultCurrency = "IDR"

// CreateOrderInput is a booking request from a customer.
type CreateOrderInput struct {
	ServiceID       string `validate:"required,max=64"`
	ServiceName     string `validate:"required,max=200"`
	Category        string `validate:"required,max=64"`
	Date            string `validate:"required,datetime=2006-01-02"`
	Time            string `validate:"required,datetime=15:04"`
	DurationMinutes int    `validate:"gte=0,lte=1440"`
	Recurring       bool
	ContactName     string `validate:"required,max=200"`
	Phone           string `validate:"required,max=32"`
	Address         string `validate:"required,max=500"`
	Amount          decimal.Decimal
	Currency        string `validate:"omitempty,len=3,alpha"`
	PaymentMethod   string `validate:"max=64"`
}

var maxAmount = decimal.New(1, 16)

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders      repository.OrderRepository
	coordinator *Coordinator
	retries     int
	now         func() time.Time
}

// NewOrderUseCase constructs OrderUseCase. retries bounds internal re-reads after a lost race.
func NewOrderUseCase(orders repository.OrderRepository, coordinator *Coordinator, retries int) *OrderUseCase {
	if retries < 0 {
		retries = 0
	}
	return &OrderUseCase{orders: orders, coordinator: coordinator, retries: retries, now: time.Now}
}

// Create books a new order in pending_payment for the calling customer.
func (u *OrderUseCase) Create(ctx context.Context, actor model.Actor, in CreateOrderInput) (*model.Order, error) {
	if actor.Role != model.RoleCustomer {
		return nil, domainErrors.New(domainErrors.CodeUnauthorized, "only customers can book orders")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, domainErrors.New(domainErrors.CodeValidation, "Amount: must be positive")
	}
	// Amounts are stored as NUMERIC(18,2); anything the column would round or reject is refused here.
	if in.Amount.Exponent() < -2 && !in.Amount.Equal(in.Amount.Truncate(2)) {
		return nil, domainErrors.New(domainErrors.CodeValidation, "Amount: at most 2 decimal places")
	}
	if in.Amount.GreaterThanOrEqual(maxAmount) {
		return nil, domainErrors.New(domainErrors.CodeValidation, "Amount: too large")
	}

	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	now := u.now().UTC()
	order := &model.Order{
		ID:         uuid.New(),
		CustomerID: actor.ID,
		Service:    model.ServiceDescriptor{ID: in.ServiceID, Name: in.ServiceName, Category: in.Category},
		Schedule:   model.Schedule{Date: in.Date, Time: in.Time, DurationMinutes: in.DurationMinutes, Recurring: in.Recurring},
		Contact:    model.Contact{Name: in.ContactName, Phone: in.Phone, Address: in.Address},
		Payment: model.Payment{
			Amount:               in.Amount,
			Currency:             currency,
			Method:               in.PaymentMethod,
			ReconciliationStatus: model.ReconciliationUnpaid,
		},
		Status: model.OrderStatusPendingPayment,
		StatusHistory: []model.StatusHistoryEntry{
			{Status: model.OrderStatusPendingPayment, At: now, Note: "order created", Actor: model.RoleCustomer},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns the order if actor may see it.
func (u *OrderUseCase) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	order, err := u.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, domainErrors.New(domainErrors.CodeUnauthorized, "order belongs to someone else")
	}
	return order, nil
}

func canView(actor model.Actor, order *model.Order) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleCustomer:
		return order.CustomerID == actor.ID
	case model.RolePartner:
		return order.AssignedTo(actor.ID) ||
			(order.Unassigned() && order.Status == model.OrderStatusPendingConfirmation)
	}
	return false
}

// List returns actor's orders, newest first, optionally narrowed to one status.
func (u *OrderUseCase) List(ctx context.Context, actor model.Actor, status model.OrderStatus, limit int) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domainErrors.New(domainErrors.CodeValidation, "unknown status "+string(status))
	}
	filter := model.OrderFilter{Status: status, Limit: limit}
	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleCustomer:
		filter.CustomerID = &actor.ID
	case model.RolePartner:
		filter.PartnerID = &actor.ID
	default:
		return nil, domainErrors.ErrUnauthorized
	}
	return u.orders.List(ctx, filter)
}

// ListAvailable returns paid, unassigned orders partners can claim.
func (u *OrderUseCase) ListAvailable(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error) {
	if actor.Role != model.RolePartner {
		return nil, domainErrors.New(domainErrors.CodeUnauthorized, "only partners can browse available orders")
	}
	return u.orders.ListAvailable(ctx, limit)
}

// Claim assigns the order to the calling partner. Exactly one concurrent claimant wins;
// the others get a conflict.
func (u *OrderUseCase) Claim(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return u.coordinator.Apply(ctx, TransitionRequest{
		OrderID: id,
		Event:   model.EventPartnerClaims,
		Actor:   actor,
		Check: func(o *model.Order) error {
			if actor.Role == model.RolePartner && !o.Unassigned() && !o.AssignedTo(actor.ID) {
				return domainErrors.New(domainErrors.CodeConflict, "order already taken by someone else")
			}
			return nil
		},
		Mutate: func(o *model.Order, _ time.Time) {
			partnerID := actor.ID
			o.PartnerID = &partnerID
		},
		Retries: u.retries,
	})
}

// StartWork moves a confirmed order into progress.
func (u *OrderUseCase) StartWork(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return u.coordinator.Apply(ctx, TransitionRequest{
		OrderID: id,
		Event:   model.EventWorkStarted,
		Actor:   actor,
		Check:   assignedPartnerOnly(actor),
		Retries: u.retries,
	})
}

// CancelInput carries the customer's cancellation reason. The reason is optional.
type CancelInput struct {
	Reason string `validate:"max=500"`
}

// Cancel cancels the order on behalf of its customer.
func (u *OrderUseCase) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, in CancelInput) (*model.Order, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return u.coordinator.Apply(ctx, TransitionRequest{
		OrderID: id,
		Event:   model.EventCustomerCancels,
		Actor:   actor,
		Note:    in.Reason,
		Check:   owningCustomerOnly(actor),
		Mutate: func(o *model.Order, now time.Time) {
			o.Cancellation = &model.Cancellation{Reason: in.Reason, At: now}
		},
		Retries: u.retries,
	})
}

func assignedPartnerOnly(actor model.Actor) func(*model.Order) error {
	return func(o *model.Order) error {
		if actor.Role == model.RolePartner && !o.AssignedTo(actor.ID) {
			return domainErrors.New(domainErrors.CodeUnauthorized, "order is assigned to another partner")
		}
		return nil
	}
}

func owningCustomerOnly(actor model.Actor) func(*model.Order) error {
	return func(o *model.Order) error {
		if actor.Role == model.RoleCustomer && o.CustomerID != actor.ID {
			return domainErrors.New(domainErrors.CodeUnauthorized, "order belongs to another customer")
		}
		return nil
	}
}
