package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartnerRequest registers or updates a partner.
type PartnerRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// PartnerResponse describes a partner profile.
type PartnerResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Active        bool      `json:"active"`
	CompletedJobs int64     `json:"completed_jobs"`
	CreatedAt     time.Time `json:"created_at"`
}

// NotificationResponse announces a claimable order.
type NotificationResponse struct {
	OrderID     string          `json:"order_id"`
	ServiceName string          `json:"service_name"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
}
