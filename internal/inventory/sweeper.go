package inventory

import (
	"context"
	"time"

	"bookworm/pkg/logger"
)

// Sweeper periodically releases expired reservations. It is the only
// mechanism that protects against abandoned carts permanently locking stock.
type Sweeper struct {
	service  Service
	interval time.Duration
	logger   *logger.Logger
	done     chan struct{}
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger.GetDefault(),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It runs until Stop is called or the context
// is cancelled.
func (sw *Sweeper) Start(ctx context.Context) {
	go sw.run(ctx)
	sw.logger.Info("Inventory sweeper started", "interval", sw.interval.String())
}

// Stop terminates the sweep loop.
func (sw *Sweeper) Stop() {
	close(sw.done)
	sw.logger.Info("Inventory sweeper stopped")
}

func (sw *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.sweep(ctx)
		case <-sw.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	released, err := sw.service.SweepExpired(ctx)
	if err != nil {
		sw.logger.WithError(err).Error("Expiry sweep failed")
		return
	}
	if released > 0 {
		sw.logger.Info("Expiry sweep released reservations", "count", released)
	}
}
