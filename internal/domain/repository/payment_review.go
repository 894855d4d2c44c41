package repository

import (
	"context"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// PaymentReviewRepository stores gateway reports that need manual reconciliation.
type PaymentReviewRepository interface {
	Create(ctx context.Context, review *model.PaymentReview) error
	List(ctx context.Context, limit int) ([]model.PaymentReview, error)
}
