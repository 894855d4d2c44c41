package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is a service provider eligible to claim jobs.
type Partner struct {
	ID            uuid.UUID
	Name          string
	Active        bool
	CompletedJobs int64
	CreatedAt     time.Time
}

// PartnerNotification announces a claimable order to one partner.
type PartnerNotification struct {
	PartnerID   uuid.UUID
	OrderID     uuid.UUID
	ServiceName string
	Category    string
	Date        string
	Time        string
	Amount      decimal.Decimal
	Currency    string
	CreatedAt   time.Time
}

// NewPartnerNotification builds the notice for order addressed to partnerID.
func NewPartnerNotification(partnerID uuid.UUID, order *Order, now time.Time) PartnerNotification {
	return PartnerNotification{
		PartnerID:   partnerID,
		OrderID:     order.ID,
		ServiceName: order.Service.Name,
		Category:    order.Service.Category,
		Date:        order.Schedule.Date,
		Time:        order.Schedule.Time,
		Amount:      order.Payment.Amount,
		Currency:    order.Payment.Currency,
		CreatedAt:   now,
	}
}
