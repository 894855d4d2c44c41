package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus describes the booking lifecycle.
type OrderStatus string

const (
	OrderStatusPendingPayment            OrderStatus = "pending_payment"
	OrderStatusPendingConfirmation       OrderStatus = "pending_confirmation"
	OrderStatusConfirmed                 OrderStatus = "confirmed"
	OrderStatusInProgress                OrderStatus = "in_progress"
	OrderStatusPendingCompletionApproval OrderStatus = "pending_completion_approval"
	OrderStatusCompleted                 OrderStatus = "completed"
	OrderStatusCancelled                 OrderStatus = "cancelled"
)

// OrderStatuses lists every lifecycle state in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPendingConfirmation,
	OrderStatusConfirmed,
	OrderStatusInProgress,
	OrderStatusPendingCompletionApproval,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ServiceDescriptor is the service snapshot taken at booking time.
type ServiceDescriptor struct {
	ID       string
	Name     string
	Category string
}

// Schedule describes when the job happens.
type Schedule struct {
	Date            string
	Time            string
	DurationMinutes int
	Recurring       bool
}

// Contact is the on-site contact snapshot.
type Contact struct {
	Name    string
	Phone   string
	Address string
}

// ReconciliationStatus tracks whether a gateway outcome has been applied.
type ReconciliationStatus string

const (
	ReconciliationUnpaid   ReconciliationStatus = "unpaid"
	ReconciliationPending  ReconciliationStatus = "pending"
	ReconciliationFailed   ReconciliationStatus = "failed"
	ReconciliationSettled  ReconciliationStatus = "settled"
	ReconciliationMismatch ReconciliationStatus = "mismatch"
)

// Payment holds the recorded charge and the reconciled gateway outcome.
type Payment struct {
	Amount               decimal.Decimal
	Currency             string
	Method               string
	GatewayTransactionID string
	GatewayResponseCode  string
	Channel              PaymentChannel
	PaidAt               *time.Time
	ReconciliationStatus ReconciliationStatus
}

// StatusHistoryEntry is one append-only lifecycle record.
type StatusHistoryEntry struct {
	Status OrderStatus
	At     time.Time
	Note   string
	Actor  Role
}

// Cancellation is present only for cancelled orders.
type Cancellation struct {
	Reason string
	At     time.Time
}

// Order is the booking aggregate.
type Order struct {
	ID                    uuid.UUID
	CustomerID            uuid.UUID
	PartnerID             *uuid.UUID
	Service               ServiceDescriptor
	Schedule              Schedule
	Contact               Contact
	Payment               Payment
	Status                OrderStatus
	StatusHistory         []StatusHistoryEntry
	Cancellation          *Cancellation
	CompletionRequestedAt *time.Time
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.PartnerID != nil {
		id := *o.PartnerID
		c.PartnerID = &id
	}
	if o.Payment.PaidAt != nil {
		at := *o.Payment.PaidAt
		c.Payment.PaidAt = &at
	}
	if o.Cancellation != nil {
		cancellation := *o.Cancellation
		c.Cancellation = &cancellation
	}
	if o.CompletionRequestedAt != nil {
		at := *o.CompletionRequestedAt
		c.CompletionRequestedAt = &at
	}
	c.StatusHistory = append([]StatusHistoryEntry(nil), o.StatusHistory...)
	return &c
}

// AssignedTo reports whether partnerID is the assigned partner.
func (o *Order) AssignedTo(partnerID uuid.UUID) bool {
	return o.PartnerID != nil && *o.PartnerID == partnerID
}

// Unassigned reports whether no partner has claimed the order.
func (o *Order) Unassigned() bool {
	return o.PartnerID == nil
}

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	Status     OrderStatus
	CustomerID *uuid.UUID
	PartnerID  *uuid.UUID
	Limit      int
}

// Transition is a compare-and-swap write of a mutated order.
type Transition struct {
	Order           *Order
	ExpectedStatus  OrderStatus
	ExpectedVersion int64
	Entry           StatusHistoryEntry
	CreditPartner   bool
}

// PaymentAttempt records a non-settling gateway outcome on an order that is still
// pending_payment. It touches payment fields only: no status change, no history entry.
type PaymentAttempt struct {
	OrderID         uuid.UUID
	ExpectedVersion int64
	Status          ReconciliationStatus
	ResponseCode    string
	TransactionID   string
	Channel         PaymentChannel
	At              time.Time
}
