package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/config"
	"github.com/polkiloo/homebooking/internal/domain/repository"
	"github.com/polkiloo/homebooking/internal/metrics"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewCoordinator,
	NewFanoutSignal,
	func(s *FanoutSignal) FanoutTrigger { return s },
	func(orders repository.OrderRepository, coordinator *Coordinator, cfg *config.Config) *OrderUseCase {
		return NewOrderUseCase(orders, coordinator, cfg.TransitionRetries)
	},
	NewReconciliationUseCase,
	newFanoutUseCase,
	NewPartnerUseCase,
)

type fanoutParams struct {
	fx.In

	Orders   repository.OrderRepository
	Partners repository.PartnerRepository
	Sink     repository.NotificationRepository
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

func newFanoutUseCase(p fanoutParams) *FanoutUseCase {
	return NewFanoutUseCase(p.Orders, p.Partners, p.Sink, p.Config.WorkerPoolSize, p.Logger, p.Metrics)
}
