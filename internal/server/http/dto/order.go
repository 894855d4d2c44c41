package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServicePayload is the service snapshot chosen by the customer.
type ServicePayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SchedulePayload describes when the job happens.
type SchedulePayload struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Recurring       bool   `json:"recurring"`
}

// ContactPayload is the on-site contact.
type ContactPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PaymentRequest carries the amount the customer is charged.
type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Method   string          `json:"method,omitempty"`
}

// CreateOrderRequest describes a booking payload.
type CreateOrderRequest struct {
	Service  ServicePayload  `json:"service"`
	Schedule SchedulePayload `json:"schedule"`
	Contact  ContactPayload  `json:"contact"`
	Payment  PaymentRequest  `json:"payment"`
}

// CancelOrderRequest carries the customer's cancellation reason.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// PaymentResponse is the recorded charge and its reconciled outcome.
type PaymentResponse struct {
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Method               string          `json:"method,omitempty"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
	GatewayResponseCode  string          `json:"gateway_response_code,omitempty"`
	Channel              string          `json:"channel,omitempty"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	ReconciliationStatus string          `json:"reconciliation_status"`
}

// StatusHistoryEntry is one lifecycle record.
type StatusHistoryEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	Note   string    `json:"note,omitempty"`
	Actor  string    `json:"actor,omitempty"`
}

// CancellationResponse is present on cancelled orders.
type CancellationResponse struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID                    string                `json:"id"`
	CustomerID            string                `json:"customer_id"`
	PartnerID             *string               `json:"partner_id,omitempty"`
	Service               ServicePayload        `json:"service"`
	Schedule              SchedulePayload       `json:"schedule"`
	Contact               ContactPayload        `json:"contact"`
	Payment               PaymentResponse       `json:"payment"`
	Status                string                `json:"status"`
	StatusHistory         []StatusHistoryEntry  `json:"status_history"`
	Cancellation          *CancellationResponse `json:"cancellation,omitempty"`
	CompletionRequestedAt *time.Time            `json:"completion_requested_at,omitempty"`
	Version               int64                 `json:"version"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}
