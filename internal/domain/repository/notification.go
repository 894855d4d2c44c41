package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// NotificationRepository is the partner notification sink.
type NotificationRepository interface {
	Push(ctx context.Context, n model.PartnerNotification) error
	List(ctx context.Context, partnerID uuid.UUID, limit int) ([]model.PartnerNotification, error)
}
