package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
	"github.com/polkiloo/homebooking/internal/domain/statemachine"
	"github.com/polkiloo/homebooking/internal/metrics"
)

// TransitionRequest describes one lifecycle step applied through the Coordinator.
type TransitionRequest struct {
	OrderID uuid.UUID
	Event   model.Event
	Actor   model.Actor
	// Expected, when set, must equal the stored status or the call fails with a conflict.
	Expected model.OrderStatus
	Note     string
	// Check runs against the loaded order before the role check, and before the state table
	// unless the order is terminal. Ownership lives here.
	Check func(order *model.Order) error
	// Mutate applies event-specific field changes to the copy being written.
	Mutate        func(order *model.Order, now time.Time)
	CreditPartner bool
	// Retries bounds re-reads after a lost compare-and-swap. Zero surfaces the conflict at once.
	Retries int
}

// Coordinator serialises transitions per order with optimistic compare-and-swap writes.
type Coordinator struct {
	orders  repository.OrderRepository
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewCoordinator constructs Coordinator.
func NewCoordinator(orders repository.OrderRepository, logger *slog.Logger, recorder *metrics.Recorder) *Coordinator {
	return &Coordinator{orders: orders, logger: logger, metrics: recorder, now: time.Now}
}

// Apply loads the order, validates the event and writes the result if nobody raced it.
func (c *Coordinator) Apply(ctx context.Context, req TransitionRequest) (*model.Order, error) {
	var err error
	for attempt := 0; attempt <= req.Retries; attempt++ {
		var (
			order *model.Order
			stale bool
		)
		order, stale, err = c.applyOnce(ctx, req)
		if err == nil {
			c.metrics.Transition(string(req.Event), "ok")
			return order, nil
		}
		if !stale {
			break
		}
		c.logger.Debug("transition lost race, retrying",
			slog.String("order_id", req.OrderID.String()),
			slog.String("event", string(req.Event)),
			slog.Int("attempt", attempt+1),
		)
	}
	c.metrics.Transition(string(req.Event), string(domainErrors.CodeOf(err)))
	return nil, err
}

func (c *Coordinator) applyOnce(ctx context.Context, req TransitionRequest) (*model.Order, bool, error) {
	current, err := c.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, false, err
	}

	// Terminal orders reject every event before ownership is considered. Elsewhere the
	// ownership check wins, so a rival partner learns the order is taken.
	if current.Status.Terminal() {
		_, err := statemachine.Decide(current.Status, req.Event, req.Actor.Role)
		return nil, false, err
	}

	if req.Check != nil {
		if err := req.Check(current); err != nil {
			return nil, false, err
		}
	}

	decision, err := statemachine.Decide(current.Status, req.Event, req.Actor.Role)
	if err != nil {
		return nil, false, err
	}

	if req.Expected != "" && current.Status != req.Expected {
		return nil, false, domainErrors.New(domainErrors.CodeConflict,
			fmt.Sprintf("order is %s, expected %s", current.Status, req.Expected))
	}

	now := c.now().UTC()
	next := current.Clone()
	next.Status = decision.To
	next.UpdatedAt = now
	if req.Mutate != nil {
		req.Mutate(next, now)
	}

	note := req.Note
	if note == "" {
		note = decision.Note
	}
	entry := model.StatusHistoryEntry{Status: decision.To, At: now, Note: note, Actor: req.Actor.Role}
	next.StatusHistory = append(next.StatusHistory, entry)

	err = c.orders.CompareAndSwap(ctx, model.Transition{
		Order:           next,
		ExpectedStatus:  current.Status,
		ExpectedVersion: current.Version,
		Entry:           entry,
		CreditPartner:   req.CreditPartner,
	})
	if err != nil {
		return nil, errors.Is(err, domainErrors.ErrConflict), err
	}
	next.Version = current.Version + 1

	c.logger.Info("order transitioned",
		slog.String("order_id", next.ID.String()),
		slog.String("event", string(req.Event)),
		slog.String("from", string(decision.From)),
		slog.String("to", string(decision.To)),
		slog.String("actor", string(req.Actor.Role)),
	)
	return next, false, nil
}
