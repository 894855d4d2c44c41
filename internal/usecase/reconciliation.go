package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
	"github.com/polkiloo/homebooking/internal/metrics"
)

// FanoutTrigger wakes partner notification delivery.
type FanoutTrigger interface {
	Trigger()
}

// ReconciliationUseCase applies gateway payment outcomes to orders. Every channel
// (redirect return, server notify, status poll) goes through Reconcile.
type ReconciliationUseCase struct {
	orders      repository.OrderRepository
	reviews     repository.PaymentReviewRepository
	coordinator *Coordinator
	trigger     FanoutTrigger
	logger      *slog.Logger
	metrics     *metrics.Recorder
	now         func() time.Time
}

// NewReconciliationUseCase constructs ReconciliationUseCase.
func NewReconciliationUseCase(
	orders repository.OrderRepository,
	reviews repository.PaymentReviewRepository,
	coordinator *Coordinator,
	trigger FanoutTrigger,
	logger *slog.Logger,
	recorder *metrics.Recorder,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		orders:      orders,
		reviews:     reviews,
		coordinator: coordinator,
		trigger:     trigger,
		logger:      logger,
		metrics:     recorder,
		now:         time.Now,
	}
}

// Reconcile applies one gateway report. Repeated or late reports for an order that
// already left pending_payment return ReconciliationAlreadyReconciled without error.
func (u *ReconciliationUseCase) Reconcile(ctx context.Context, signal model.PaymentSignal) (model.ReconciliationResult, error) {
	if !signal.Channel.Valid() {
		return model.ReconciliationResult{}, domainErrors.New(domainErrors.CodeValidation, "unknown payment channel")
	}
	log := u.logger.With(
		slog.String("order_id", signal.OrderID.String()),
		slog.String("channel", string(signal.Channel)),
	)

	order, err := u.orders.Get(ctx, signal.OrderID)
	if err != nil {
		return model.ReconciliationResult{}, err
	}

	if order.Status != model.OrderStatusPendingPayment {
		log.Info("payment already reconciled", slog.String("status", string(order.Status)))
		return u.result(signal, model.ReconciliationAlreadyReconciled, order), nil
	}

	if !signal.Amount.Equal(order.Payment.Amount) {
		review := &model.PaymentReview{
			OrderID:        order.ID,
			Channel:        signal.Channel,
			ReportedAmount: signal.Amount,
			ExpectedAmount: order.Payment.Amount,
			TransactionID:  signal.TransactionID,
			OutcomeCode:    signal.OutcomeCode,
		}
		if err := u.reviews.Create(ctx, review); err != nil {
			return model.ReconciliationResult{}, fmt.Errorf("record payment review: %w", err)
		}
		log.Warn("payment amount mismatch",
			slog.String("reported", signal.Amount.String()),
			slog.String("expected", order.Payment.Amount.String()),
			slog.String("review_id", review.ID.String()),
		)
		if _, err := u.recordAttempt(ctx, order, signal, model.ReconciliationMismatch); err != nil && !errors.Is(err, domainErrors.ErrConflict) {
			return model.ReconciliationResult{}, fmt.Errorf("record payment mismatch: %w", err)
		}
		u.metrics.Reconciliation(string(signal.Channel), string(domainErrors.CodeAmountMismatch))
		return model.ReconciliationResult{}, domainErrors.New(domainErrors.CodeAmountMismatch,
			fmt.Sprintf("reported %s, expected %s", signal.Amount, order.Payment.Amount))
	}

	switch signal.Outcome() {
	case model.PaymentOutcomeFailure:
		log.Info("payment failed at gateway", slog.String("code", signal.OutcomeCode))
		return u.settleAttempt(ctx, order, signal, model.ReconciliationFailed, model.ReconciliationPaymentFailed)
	case model.PaymentOutcomePending:
		return u.settleAttempt(ctx, order, signal, model.ReconciliationPending, model.ReconciliationPaymentPending)
	}

	updated, err := u.coordinator.Apply(ctx, TransitionRequest{
		OrderID:  order.ID,
		Event:    model.EventPaymentConfirmed,
		Actor:    model.GatewayActor,
		Expected: model.OrderStatusPendingPayment,
		Note:     "payment confirmed via " + string(signal.Channel),
		Mutate: func(o *model.Order, now time.Time) {
			paidAt := now
			o.Payment.GatewayTransactionID = signal.TransactionID
			o.Payment.GatewayResponseCode = signal.OutcomeCode
			o.Payment.Channel = signal.Channel
			o.Payment.PaidAt = &paidAt
			o.Payment.ReconciliationStatus = model.ReconciliationSettled
		},
	})
	if err != nil {
		if !errors.Is(err, domainErrors.ErrConflict) && !errors.Is(err, domainErrors.ErrInvalidTransition) {
			return model.ReconciliationResult{}, err
		}
		// Another channel won the race; report its result.
		latest, getErr := u.orders.Get(ctx, order.ID)
		if getErr != nil {
			return model.ReconciliationResult{}, err
		}
		if latest.Status == model.OrderStatusPendingPayment {
			return model.ReconciliationResult{}, err
		}
		log.Info("payment reconciled concurrently", slog.String("status", string(latest.Status)))
		return u.result(signal, model.ReconciliationAlreadyReconciled, latest), nil
	}

	if u.trigger != nil && updated.Unassigned() {
		u.trigger.Trigger()
	}
	return u.result(signal, model.ReconciliationConfirmed, updated), nil
}

// PendingPayments returns unpaid orders older than cutoff that are due for a status poll.
func (u *ReconciliationUseCase) PendingPayments(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	return u.orders.SelectPendingPayments(ctx, cutoff, limit)
}

// Reviews lists amount mismatches awaiting manual reconciliation.
func (u *ReconciliationUseCase) Reviews(ctx context.Context, actor model.Actor, limit int) ([]model.PaymentReview, error) {
	if actor.Role != model.RoleAdmin {
		return nil, domainErrors.New(domainErrors.CodeUnauthorized, "payment reviews are admin only")
	}
	return u.reviews.List(ctx, limit)
}

// settleAttempt records a non-settling outcome. When another report wins the race the
// latest stored state decides the result.
func (u *ReconciliationUseCase) settleAttempt(
	ctx context.Context,
	order *model.Order,
	signal model.PaymentSignal,
	status model.ReconciliationStatus,
	outcome model.ReconciliationOutcome,
) (model.ReconciliationResult, error) {
	updated, err := u.recordAttempt(ctx, order, signal, status)
	if err == nil {
		return u.result(signal, outcome, updated), nil
	}
	if !errors.Is(err, domainErrors.ErrConflict) {
		return model.ReconciliationResult{}, err
	}
	latest, getErr := u.orders.Get(ctx, order.ID)
	if getErr != nil {
		return model.ReconciliationResult{}, err
	}
	if latest.Status != model.OrderStatusPendingPayment {
		return u.result(signal, model.ReconciliationAlreadyReconciled, latest), nil
	}
	return u.result(signal, outcome, latest), nil
}

func (u *ReconciliationUseCase) recordAttempt(
	ctx context.Context,
	order *model.Order,
	signal model.PaymentSignal,
	status model.ReconciliationStatus,
) (*model.Order, error) {
	attempt := model.PaymentAttempt{
		OrderID:         order.ID,
		ExpectedVersion: order.Version,
		Status:          status,
		ResponseCode:    signal.OutcomeCode,
		TransactionID:   signal.TransactionID,
		Channel:         signal.Channel,
		At:              u.now(),
	}
	if err := u.orders.RecordPaymentAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	updated := order.Clone()
	updated.Payment.ReconciliationStatus = status
	updated.Payment.GatewayResponseCode = signal.OutcomeCode
	updated.Payment.GatewayTransactionID = signal.TransactionID
	updated.Payment.Channel = signal.Channel
	updated.Version++
	updated.UpdatedAt = attempt.At
	return updated, nil
}

func (u *ReconciliationUseCase) result(signal model.PaymentSignal, outcome model.ReconciliationOutcome, order *model.Order) model.ReconciliationResult {
	u.metrics.Reconciliation(string(signal.Channel), string(outcome))
	return model.ReconciliationResult{Outcome: outcome, Order: order}
}
