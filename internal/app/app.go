package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/adapter/gateway"
	"github.com/polkiloo/homebooking/internal/config"
	"github.com/polkiloo/homebooking/internal/domain/repository"
	"github.com/polkiloo/homebooking/internal/pkg/auth"
	"github.com/polkiloo/homebooking/internal/usecase"
	"github.com/polkiloo/homebooking/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newBookingFacade,
		newHTTPServer,
		newPaymentPoller,
		newFanoutDispatcher,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Orders     *usecase.OrderUseCase
	Reconciler *usecase.ReconciliationUseCase
	Fanout     *usecase.FanoutUseCase
	Partners   *usecase.PartnerUseCase
	Tokens     auth.Strategy
	Gateway    gateway.Client
	Verifier   *gateway.Verifier
	Store      repository.Factory
	Config     *config.Config
}

func newBookingFacade(p facadeParams) *BookingFacade {
	return NewBookingFacade(FacadeDeps{
		Orders:     p.Orders,
		Reconciler: p.Reconciler,
		Fanout:     p.Fanout,
		Partners:   p.Partners,
		Tokens:     p.Tokens,
		Gateway:    p.Gateway,
		Verifier:   p.Verifier,
		Store:      p.Store,
		PollMinAge: p.Config.PaymentPollMinAge,
	})
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *BookingFacade
	Signal *usecase.FanoutSignal
	Config *config.Config
	Logger *slog.Logger
}

func newPaymentPoller(p workerParams) *worker.PaymentPoller {
	return worker.NewPaymentPoller(
		p.Facade,
		p.Config.PaymentPollInterval,
		p.Config.PollBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

func newFanoutDispatcher(p workerParams) *worker.FanoutDispatcher {
	return worker.NewFanoutDispatcher(
		p.Facade,
		p.Signal.C(),
		p.Config.FanoutInterval,
		p.Config.FanoutBatchSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Poller     *worker.PaymentPoller
	Dispatcher *worker.FanoutDispatcher
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	polling := p.Config.PaymentPollingEnabled()
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting homebooking",
				slog.String("addr", p.Server.Addr),
				slog.Bool("payment_polling", polling),
			)
			// The start context carries the fx start timeout.
			runCtx := context.WithoutCancel(ctx)
			if polling {
				p.Poller.Start(runCtx)
			}
			p.Dispatcher.Start(runCtx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if polling {
				p.Poller.Stop()
			}
			p.Dispatcher.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("homebooking stopped")
			return nil
		},
	})
}
