// Package storage selects the order store backend from configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/config"
	"github.com/polkiloo/homebooking/internal/domain/repository"
	"github.com/polkiloo/homebooking/internal/storage/memory"
	"github.com/polkiloo/homebooking/internal/storage/postgres"
)

// Module wires the configured storage and its repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
		func(f repository.Factory) repository.PartnerRepository { return f.Partners() },
		func(f repository.Factory) repository.PaymentReviewRepository { return f.PaymentReviews() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (repository.Factory, error) {
	switch p.Config.StorageDriver {
	case config.StorageDriverPostgres:
		st, err := postgres.New(p.Ctx, p.Config.DatabaseURI, p.Logger, postgres.WithLockTimeout(p.Config.LockTimeout))
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StorageDriverMemory:
		p.Logger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", p.Config.StorageDriver)
	}
}

func registerLifecycle(lc fx.Lifecycle, f repository.Factory) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			f.Close()
			return nil
		},
	})
}
