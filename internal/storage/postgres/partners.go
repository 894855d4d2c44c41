package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
)

func (r *partnerRepository) Upsert(ctx context.Context, partner *model.Partner) error {
	const query = `INSERT INTO partners (id, name, active)
                   VALUES ($1, $2, $3)
                   ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active
                   RETURNING completed_jobs, created_at`
	row := r.storage.pool.QueryRow(ctx, query, partner.ID.String(), partner.Name, partner.Active)
	if err := row.Scan(&partner.CompletedJobs, &partner.CreatedAt); err != nil {
		return mapTxError(err)
	}
	return nil
}

func (r *partnerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	const query = `SELECT id::text, name, active, completed_jobs, created_at FROM partners WHERE id=$1`
	p, err := scanPartner(r.storage.pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *partnerRepository) ListActive(ctx context.Context) ([]model.Partner, error) {
	const query = `SELECT id::text, name, active, completed_jobs, created_at FROM partners
                   WHERE active ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanPartner(row pgx.Row) (*model.Partner, error) {
	var (
		p  model.Partner
		id string
	)
	if err := row.Scan(&id, &p.Name, &p.Active, &p.CompletedJobs, &p.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("decode partner id: %w", err)
	}
	p.ID = parsed
	return &p, nil
}

func (r *paymentReviewRepository) Create(ctx context.Context, review *model.PaymentReview) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	const query = `INSERT INTO payment_reviews (id, order_id, channel, reported_amount, expected_amount, transaction_id, outcome_code)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING created_at`
	row := r.storage.pool.QueryRow(ctx, query,
		review.ID.String(), review.OrderID.String(), string(review.Channel),
		review.ReportedAmount.String(), review.ExpectedAmount.String(),
		review.TransactionID, review.OutcomeCode,
	)
	if err := row.Scan(&review.CreatedAt); err != nil {
		return mapTxError(err)
	}
	return nil
}

func (r *paymentReviewRepository) List(ctx context.Context, limit int) ([]model.PaymentReview, error) {
	const query = `SELECT id::text, order_id::text, channel, reported_amount::text, expected_amount::text,
                          transaction_id, outcome_code, created_at
                   FROM payment_reviews
                   ORDER BY created_at DESC
                   LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PaymentReview
	for rows.Next() {
		var (
			rv                   model.PaymentReview
			id, orderID, channel string
			reported, expected   string
		)
		if err := rows.Scan(&id, &orderID, &channel, &reported, &expected, &rv.TransactionID, &rv.OutcomeCode, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if rv.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("decode review id: %w", err)
		}
		if rv.OrderID, err = uuid.Parse(orderID); err != nil {
			return nil, fmt.Errorf("decode order id: %w", err)
		}
		if rv.ReportedAmount, err = decimal.NewFromString(reported); err != nil {
			return nil, fmt.Errorf("decode reported amount: %w", err)
		}
		if rv.ExpectedAmount, err = decimal.NewFromString(expected); err != nil {
			return nil, fmt.Errorf("decode expected amount: %w", err)
		}
		rv.Channel = model.PaymentChannel(channel)
		result = append(result, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
