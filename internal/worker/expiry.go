package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/internal/notify"
	"github.com/bookstock/inventory-service/internal/reservation"
	"github.com/bookstock/inventory-service/pkg/logger"
)

// ExpiryWorker periodically expires overdue reservations and drains the
// notification outbox. One sweep failing never stops the loop.
type ExpiryWorker struct {
	reservations reservation.UseCase
	notifier     notify.UseCase
	logger       logger.Logger
	interval     time.Duration
	drainLimit   int
}

func NewExpiryWorker(
	reservations reservation.UseCase,
	notifier notify.UseCase,
	log logger.Logger,
	interval time.Duration,
	drainLimit int,
) *ExpiryWorker {
	return &ExpiryWorker{
		reservations: reservations,
		notifier:     notifier,
		logger:       log,
		interval:     interval,
		drainLimit:   drainLimit,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	w.logger.Info("starting expiry worker", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopping expiry worker")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("expiry sweep panicked", zap.Any("panic", r))
		}
	}()

	expired, err := w.reservations.ExpireSweep(ctx)
	if err != nil {
		w.logger.Error("expiry sweep failed", zap.Error(err))
	} else if expired > 0 {
		w.logger.Info("expired overdue reservations", zap.Int("count", expired))
	}

	result, err := w.notifier.Drain(ctx, w.drainLimit)
	if err != nil {
		w.logger.Error("notification drain failed", zap.Error(err))
		return
	}
	if result.Scanned > 0 {
		w.logger.Info("drained notification outbox",
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.Int("scanned", result.Scanned))
	}
}
