package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// PartnerRepository describes partner eligibility and job counters.
type PartnerRepository interface {
	Upsert(ctx context.Context, partner *model.Partner) error
	Get(ctx context.Context, id uuid.UUID) (*model.Partner, error)
	ListActive(ctx context.Context) ([]model.Partner, error)
}
