package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// JSONB column layouts. Kept separate from the domain model so the
// stored format does not change with Go field names.

type serviceRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type scheduleRecord struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Recurring       bool   `json:"recurring"`
}

type contactRecord struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type historyRecord struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	Note   string    `json:"note,omitempty"`
	Actor  string    `json:"actor,omitempty"`
}

const orderColumns = `id::text, customer_id::text, partner_id::text, service, schedule, contact,
       amount::text, currency, payment_method, gateway_transaction_id, gateway_response_code,
       reconciled_channel, paid_at, reconciliation_status, status, status_history,
       cancellation_reason, cancelled_at, completion_requested_at, version, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                                   model.Order
		id, customerID, amount              string
		partnerID, cancellationReason       *string
		service, schedule, contact, history []byte
		channel, reconciliation, status     string
		cancelledAt                         *time.Time
	)
	err := row.Scan(
		&id, &customerID, &partnerID, &service, &schedule, &contact,
		&amount, &o.Payment.Currency, &o.Payment.Method, &o.Payment.GatewayTransactionID, &o.Payment.GatewayResponseCode,
		&channel, &o.Payment.PaidAt, &reconciliation, &status, &history,
		&cancellationReason, &cancelledAt, &o.CompletionRequestedAt, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decode order id: %w", err)
	}
	if o.CustomerID, err = uuid.Parse(customerID); err != nil {
		return nil, fmt.Errorf("decode customer id: %w", err)
	}
	if partnerID != nil {
		pid, err := uuid.Parse(*partnerID)
		if err != nil {
			return nil, fmt.Errorf("decode partner id: %w", err)
		}
		o.PartnerID = &pid
	}
	if o.Payment.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	o.Payment.Channel = model.PaymentChannel(channel)
	o.Payment.ReconciliationStatus = model.ReconciliationStatus(reconciliation)
	o.Status = model.OrderStatus(status)
	if cancellationReason != nil && cancelledAt != nil {
		o.Cancellation = &model.Cancellation{Reason: *cancellationReason, At: *cancelledAt}
	}

	var (
		svc  serviceRecord
		sch  scheduleRecord
		cnt  contactRecord
		hist []historyRecord
	)
	if err := json.Unmarshal(service, &svc); err != nil {
		return nil, fmt.Errorf("decode service: %w", err)
	}
	if err := json.Unmarshal(schedule, &sch); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	if err := json.Unmarshal(contact, &cnt); err != nil {
		return nil, fmt.Errorf("decode contact: %w", err)
	}
	if err := json.Unmarshal(history, &hist); err != nil {
		return nil, fmt.Errorf("decode status history: %w", err)
	}
	o.Service = model.ServiceDescriptor(svc)
	o.Schedule = model.Schedule(sch)
	o.Contact = model.Contact(cnt)
	o.StatusHistory = make([]model.StatusHistoryEntry, 0, len(hist))
	for _, h := range hist {
		o.StatusHistory = append(o.StatusHistory, model.StatusHistoryEntry{
			Status: model.OrderStatus(h.Status),
			At:     h.At,
			Note:   h.Note,
			Actor:  model.Role(h.Actor),
		})
	}
	return &o, nil
}

func encodeHistory(entries ...model.StatusHistoryEntry) ([]byte, error) {
	records := make([]historyRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, historyRecord{Status: string(e.Status), At: e.At.UTC(), Note: e.Note, Actor: string(e.Actor)})
	}
	return json.Marshal(records)
}

type orderSnapshots struct {
	service, schedule, contact, history []byte
}

func encodeSnapshots(o *model.Order) (orderSnapshots, error) {
	var (
		snap orderSnapshots
		err  error
	)
	if snap.service, err = json.Marshal(serviceRecord(o.Service)); err != nil {
		return snap, err
	}
	if snap.schedule, err = json.Marshal(scheduleRecord(o.Schedule)); err != nil {
		return snap, err
	}
	if snap.contact, err = json.Marshal(contactRecord(o.Contact)); err != nil {
		return snap, err
	}
	if snap.history, err = encodeHistory(o.StatusHistory...); err != nil {
		return snap, err
	}
	return snap, nil
}

func uuidText(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
