package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// RequestCompletion records that the assigned partner finished the job.
func (u *OrderUseCase) RequestCompletion(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return u.coordinator.Apply(ctx, TransitionRequest{
		OrderID: id,
		Event:   model.EventCompletionRequested,
		Actor:   actor,
		Check:   assignedPartnerOnly(actor),
		Mutate: func(o *model.Order, now time.Time) {
			at := now
			o.CompletionRequestedAt = &at
		},
		Retries: u.retries,
	})
}

// ConfirmCompletion closes the order and credits the partner's job counter in the same write.
func (u *OrderUseCase) ConfirmCompletion(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return u.coordinator.Apply(ctx, TransitionRequest{
		OrderID:       id,
		Event:         model.EventCustomerConfirmsCompletion,
		Actor:         actor,
		Check:         owningCustomerOnly(actor),
		CreditPartner: true,
		Retries:       u.retries,
	})
}
