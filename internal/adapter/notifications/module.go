package notifications

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/config"
	"github.com/polkiloo/homebooking/internal/domain/repository"
)

// Module provides the partner notification sink: redis when REDIS_URL is set, memory otherwise.
var Module = fx.Provide(newSink)

type sinkParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newSink(p sinkParams) (repository.NotificationRepository, error) {
	if p.Config.RedisURL == "" {
		p.Logger.Warn("redis url is empty, partner notifications are kept in memory")
		return NewMemorySink(p.Config.NotificationTTL, p.Config.NotificationLimit), nil
	}
	sink, err := NewRedisSink(context.Background(), p.Config.RedisURL, p.Config.NotificationTTL, p.Config.NotificationLimit)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sink.Close()
		},
	})
	return sink, nil
}
