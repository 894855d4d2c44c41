package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationResponse reports what a gateway callback did to the order.
type ReconciliationResponse struct {
	Outcome string `json:"outcome"`
	OrderID string `json:"order_id"`
	Status  string `json:"status,omitempty"`
}

// PaymentReviewResponse is a flagged gateway report awaiting manual reconciliation.
type PaymentReviewResponse struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"order_id"`
	Channel        string          `json:"channel"`
	ReportedAmount decimal.Decimal `json:"reported_amount"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	OutcomeCode    string          `json:"outcome_code,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
