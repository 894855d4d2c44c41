package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
)

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	snap, err := encodeSnapshots(order)
	if err != nil {
		return err
	}
	const query = `INSERT INTO orders (id, customer_id, service, schedule, contact, amount, currency, payment_method,
                       reconciliation_status, status, status_history, version, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.storage.pool.Exec(ctx, query,
		order.ID.String(), order.CustomerID.String(), snap.service, snap.schedule, snap.contact,
		order.Payment.Amount.String(), order.Payment.Currency, order.Payment.Method,
		string(order.Payment.ReconciliationStatus), string(order.Status), snap.history,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	return mapTxError(err)
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, filter.CustomerID.String())
		conditions = append(conditions, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.PartnerID != nil {
		args = append(args, filter.PartnerID.String())
		conditions = append(conditions, fmt.Sprintf("partner_id=$%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryOrders(ctx, r.storage.pool, query, args...)
}

func (r *orderRepository) ListAvailable(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE status=$1 AND partner_id IS NULL
              ORDER BY created_at
              LIMIT $2`
	return r.queryOrders(ctx, r.storage.pool, query, string(model.OrderStatusPendingConfirmation), limit)
}

func (r *orderRepository) CompareAndSwap(ctx context.Context, t model.Transition) error {
	entry, err := encodeHistory(t.Entry)
	if err != nil {
		return err
	}
	o := t.Order

	var cancellationReason *string
	var cancelledAt *time.Time
	if o.Cancellation != nil {
		cancellationReason = &o.Cancellation.Reason
		cancelledAt = &o.Cancellation.At
	}

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const updateQuery = `UPDATE orders SET
                status=$4, partner_id=$5, gateway_transaction_id=$6, gateway_response_code=$7,
                reconciled_channel=$8, paid_at=$9, reconciliation_status=$10,
                cancellation_reason=$11, cancelled_at=$12, completion_requested_at=$13,
                status_history = status_history || $14::jsonb,
                version = version + 1, updated_at=$15
            WHERE id=$1 AND status=$2 AND version=$3`
		tag, err := tx.Exec(ctx, updateQuery,
			o.ID.String(), string(t.ExpectedStatus), t.ExpectedVersion,
			string(o.Status), uuidText(o.PartnerID), o.Payment.GatewayTransactionID, o.Payment.GatewayResponseCode,
			string(o.Payment.Channel), o.Payment.PaidAt, string(o.Payment.ReconciliationStatus),
			cancellationReason, cancelledAt, o.CompletionRequestedAt,
			entry, o.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.New(domainErrors.CodeConflict, "order was modified concurrently")
		}

		if t.CreditPartner && o.PartnerID != nil {
			const creditQuery = `INSERT INTO partners (id, active, completed_jobs)
                                 VALUES ($1, FALSE, 1)
                                 ON CONFLICT (id) DO UPDATE SET completed_jobs = partners.completed_jobs + 1`
			if _, err := tx.Exec(ctx, creditQuery, o.PartnerID.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) RecordPaymentAttempt(ctx context.Context, a model.PaymentAttempt) error {
	const query = `UPDATE orders SET
            reconciliation_status=$4, gateway_response_code=$5, gateway_transaction_id=$6,
            reconciled_channel=$7, version = version + 1, updated_at=$8
        WHERE id=$1 AND status=$2 AND version=$3`
	tag, err := r.storage.pool.Exec(ctx, query,
		a.OrderID.String(), string(model.OrderStatusPendingPayment), a.ExpectedVersion,
		string(a.Status), a.ResponseCode, a.TransactionID, string(a.Channel), a.At,
	)
	if err != nil {
		return mapTxError(err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.New(domainErrors.CodeConflict, "order was modified concurrently")
	}
	return nil
}

func (r *orderRepository) SelectPendingPayments(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	selectQuery := `SELECT ` + orderColumns + ` FROM orders
                    WHERE status=$1 AND created_at <= $2 AND (payment_polled_at IS NULL OR payment_polled_at <= $2)
                    ORDER BY created_at
                    LIMIT $3
                    FOR UPDATE SKIP LOCKED`
	const markQuery = `UPDATE orders SET payment_polled_at=NOW() WHERE id = ANY($1::uuid[])`
	return r.claimBatch(ctx, selectQuery, markQuery, string(model.OrderStatusPendingPayment), cutoff, limit)
}

func (r *orderRepository) ClaimForFanout(ctx context.Context, limit int) ([]model.Order, error) {
	selectQuery := `SELECT ` + orderColumns + ` FROM orders
                    WHERE status=$1 AND partner_id IS NULL AND partners_notified_at IS NULL
                    ORDER BY updated_at
                    LIMIT $2
                    FOR UPDATE SKIP LOCKED`
	const markQuery = `UPDATE orders SET partners_notified_at=NOW() WHERE id = ANY($1::uuid[])`
	return r.claimBatch(ctx, selectQuery, markQuery, string(model.OrderStatusPendingConfirmation), limit)
}

func (r *orderRepository) ReleaseFanout(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE orders SET partners_notified_at=NULL WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// claimBatch locks matching rows, marks them with markQuery and returns them.
func (r *orderRepository) claimBatch(ctx context.Context, selectQuery, markQuery string, args ...any) ([]model.Order, error) {
	var orders []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		orders, err = r.queryOrders(ctx, tx, selectQuery, args...)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}
		ids := make([]string, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID.String())
		}
		_, err = tx.Exec(ctx, markQuery, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) queryOrders(ctx context.Context, q querier, query string, args ...any) ([]model.Order, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
