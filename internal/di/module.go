package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/adapter/gateway"
	"github.com/polkiloo/homebooking/internal/adapter/notifications"
	"github.com/polkiloo/homebooking/internal/app"
	"github.com/polkiloo/homebooking/internal/config"
	"github.com/polkiloo/homebooking/internal/logger"
	"github.com/polkiloo/homebooking/internal/metrics"
	"github.com/polkiloo/homebooking/internal/pkg/auth"
	"github.com/polkiloo/homebooking/internal/server/http/router"
	"github.com/polkiloo/homebooking/internal/storage"
	"github.com/polkiloo/homebooking/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		storage.Module,
		gateway.Module,
		notifications.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
