package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the poller.
type PaymentFacade interface {
	PendingPayments(ctx context.Context, limit int) ([]model.Order, error)
	PaymentStatus(ctx context.Context, orderID uuid.UUID) (model.PaymentSignal, error)
	ReconcilePayment(ctx context.Context, signal model.PaymentSignal) (model.ReconciliationResult, error)
}

// PaymentPoller asks the gateway about orders stuck in pending_payment and feeds
// the answers into reconciliation as the poll channel.
type PaymentPoller struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentPoller constructs the poller worker pool.
func NewPaymentPoller(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentPoller {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PaymentPoller{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background polling.
func (p *PaymentPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentPoller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentPoller) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentPoller) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.PendingPayments(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending payments failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *PaymentPoller) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *PaymentPoller) handleOrder(ctx context.Context, order model.Order) {
	orderID := slog.String("order_id", order.ID.String())

	signal, err := p.facade.PaymentStatus(ctx, order.ID)
	if err != nil {
		var tm gateway.TooManyRequestsError
		switch {
		case errors.As(err, &tm):
			p.logger.Warn("gateway rate limited", slog.Duration("retry_after", tm.RetryAfter))
			sleep(ctx, tm.RetryAfter)
		case errors.Is(err, gateway.ErrTransactionNotFound):
			p.logger.Debug("gateway has no transaction yet", orderID)
		default:
			p.logger.Error("gateway status fetch failed", orderID, slog.String("error", err.Error()))
		}
		return
	}

	result, err := p.facade.ReconcilePayment(ctx, signal)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAmountMismatch) {
			p.logger.Warn("polled payment amount mismatch", orderID, slog.String("error", err.Error()))
			return
		}
		p.logger.Error("reconcile polled payment failed", orderID, slog.String("error", err.Error()))
		return
	}
	p.logger.Debug("polled payment reconciled", orderID, slog.String("outcome", string(result.Outcome)))
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
