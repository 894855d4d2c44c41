package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FanoutFacade exposes partner notification dispatch to the worker.
type FanoutFacade interface {
	DispatchNotifications(ctx context.Context, limit int) (int, error)
}

// FanoutDispatcher runs notification rounds when signalled after a reconciliation
// and on a periodic sweep for orders whose fan-out never completed.
type FanoutDispatcher struct {
	facade    FanoutFacade
	signal    <-chan struct{}
	interval  time.Duration
	batchSize int
	logger    *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewFanoutDispatcher constructs the dispatcher. signal may be nil.
func NewFanoutDispatcher(facade FanoutFacade, signal <-chan struct{}, interval time.Duration, batchSize int, logger *slog.Logger) *FanoutDispatcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &FanoutDispatcher{
		facade:    facade,
		signal:    signal,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Start launches the dispatch loop.
func (d *FanoutDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.run(runCtx)
}

// Stop waits for the loop to finish its current round.
func (d *FanoutDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *FanoutDispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.signal:
			d.drain(ctx)
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// drain dispatches batches until a round delivers nothing.
func (d *FanoutDispatcher) drain(ctx context.Context) {
	for ctx.Err() == nil {
		delivered, err := d.facade.DispatchNotifications(ctx, d.batchSize)
		if err != nil {
			d.logger.Error("partner fan-out failed", slog.String("error", err.Error()))
			return
		}
		if delivered == 0 {
			return
		}
	}
}
