package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentChannel names the path a gateway outcome arrived through.
type PaymentChannel string

const (
	ChannelReturn PaymentChannel = "return"
	ChannelNotify PaymentChannel = "notify"
	ChannelPoll   PaymentChannel = "poll"
)

// Valid reports whether c is a known channel.
func (c PaymentChannel) Valid() bool {
	return c == ChannelReturn || c == ChannelNotify || c == ChannelPoll
}

// PaymentOutcome is the normalized gateway verdict.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomePending PaymentOutcome = "pending"
	PaymentOutcomeFailure PaymentOutcome = "failure"
)

// ClassifyOutcome maps gateway status fields to an outcome.
// The transaction status wins when present; otherwise the response code decides.
func ClassifyOutcome(code, transactionStatus string) PaymentOutcome {
	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "capture", "settlement":
		return PaymentOutcomeSuccess
	case "pending", "authorize":
		return PaymentOutcomePending
	case "":
	default:
		return PaymentOutcomeFailure
	}
	switch strings.TrimSpace(code) {
	case "00", "200":
		return PaymentOutcomeSuccess
	case "201":
		return PaymentOutcomePending
	}
	return PaymentOutcomeFailure
}

// PaymentSignal is one outcome report from the gateway.
type PaymentSignal struct {
	OrderID           uuid.UUID
	Amount            decimal.Decimal
	OutcomeCode       string
	TransactionStatus string
	TransactionID     string
	Channel           PaymentChannel
}

// Outcome normalizes the signal's status fields.
func (s PaymentSignal) Outcome() PaymentOutcome {
	return ClassifyOutcome(s.OutcomeCode, s.TransactionStatus)
}

// ReconciliationOutcome tells the caller what a reconcile call did.
type ReconciliationOutcome string

const (
	ReconciliationConfirmed         ReconciliationOutcome = "confirmed"
	ReconciliationAlreadyReconciled ReconciliationOutcome = "already_reconciled"
	ReconciliationPaymentPending    ReconciliationOutcome = "payment_pending"
	ReconciliationPaymentFailed     ReconciliationOutcome = "payment_failed"
)

// ReconciliationResult carries the outcome and the order as observed after the call.
type ReconciliationResult struct {
	Outcome ReconciliationOutcome
	Order   *Order
}

// PaymentReview flags a gateway report that needs manual reconciliation.
type PaymentReview struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Channel        PaymentChannel
	ReportedAmount decimal.Decimal
	ExpectedAmount decimal.Decimal
	TransactionID  string
	OutcomeCode    string
	CreatedAt      time.Time
}
