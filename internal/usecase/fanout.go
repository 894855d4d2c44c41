package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
	"github.com/polkiloo/homebooking/internal/metrics"
)

// FanoutSignal is a non-blocking wake-up for the fan-out dispatcher.
type FanoutSignal struct {
	ch chan struct{}
}

// NewFanoutSignal constructs FanoutSignal.
func NewFanoutSignal() *FanoutSignal {
	return &FanoutSignal{ch: make(chan struct{}, 1)}
}

// Trigger requests a dispatch round. Extra triggers while one is pending are coalesced.
func (s *FanoutSignal) Trigger() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C is the channel the dispatcher waits on.
func (s *FanoutSignal) C() <-chan struct{} {
	return s.ch
}

// FanoutUseCase notifies every active partner about newly claimable orders.
type FanoutUseCase struct {
	orders      repository.OrderRepository
	partners    repository.PartnerRepository
	sink        repository.NotificationRepository
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Recorder
	now         func() time.Time
}

// NewFanoutUseCase constructs FanoutUseCase. concurrency bounds parallel pushes per order.
func NewFanoutUseCase(
	orders repository.OrderRepository,
	partners repository.PartnerRepository,
	sink repository.NotificationRepository,
	concurrency int,
	logger *slog.Logger,
	recorder *metrics.Recorder,
) *FanoutUseCase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FanoutUseCase{
		orders:      orders,
		partners:    partners,
		sink:        sink,
		concurrency: concurrency,
		logger:      logger,
		metrics:     recorder,
		now:         time.Now,
	}
}

// Dispatch claims up to limit orders awaiting fan-out and notifies active partners.
// It returns the number of notifications delivered. Delivery failures never touch order state.
func (u *FanoutUseCase) Dispatch(ctx context.Context, limit int) (int, error) {
	orders, err := u.orders.ClaimForFanout(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	partners, err := u.partners.ListActive(ctx)
	if err != nil {
		for _, o := range orders {
			u.release(ctx, o.ID)
		}
		return 0, err
	}
	if len(partners) == 0 {
		u.logger.Warn("no active partners to notify", slog.Int("orders", len(orders)))
		return 0, nil
	}

	delivered := 0
	for i := range orders {
		delivered += u.notifyPartners(ctx, &orders[i], partners)
	}
	return delivered, nil
}

func (u *FanoutUseCase) notifyPartners(ctx context.Context, order *model.Order, partners []model.Partner) int {
	var (
		g         errgroup.Group
		delivered atomic.Int64
	)
	g.SetLimit(u.concurrency)
	now := u.now().UTC()

	for _, p := range partners {
		p := p
		g.Go(func() error {
			n := model.NewPartnerNotification(p.ID, order, now)
			if err := u.sink.Push(ctx, n); err != nil {
				u.logger.Warn("partner notification failed",
					slog.String("order_id", order.ID.String()),
					slog.String("partner_id", p.ID.String()),
					slog.String("error", err.Error()),
				)
				u.metrics.Notification(false)
				return nil
			}
			delivered.Add(1)
			u.metrics.Notification(true)
			return nil
		})
	}
	_ = g.Wait()

	count := int(delivered.Load())
	if count == 0 {
		u.release(ctx, order.ID)
		return 0
	}
	u.logger.Info("partners notified",
		slog.String("order_id", order.ID.String()),
		slog.Int("delivered", count),
		slog.Int("partners", len(partners)),
	)
	return count
}

func (u *FanoutUseCase) release(ctx context.Context, id uuid.UUID) {
	if err := u.orders.ReleaseFanout(ctx, id); err != nil {
		u.logger.Error("release fan-out claim failed",
			slog.String("order_id", id.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Notifications returns the calling partner's most recent notifications.
func (u *FanoutUseCase) Notifications(ctx context.Context, actor model.Actor, limit int) ([]model.PartnerNotification, error) {
	if actor.Role != model.RolePartner {
		return nil, domainErrors.New(domainErrors.CodeUnauthorized, "notifications are for partners")
	}
	return u.sink.List(ctx, actor.ID, limit)
}
