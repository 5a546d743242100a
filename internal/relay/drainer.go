package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"tgrelay/internal/metrics"
	"tgrelay/internal/models"
	"tgrelay/internal/tracing"
)

// Drainer periodically flushes the inbound queue to the destination
// chat. Each cycle forwards at most one batch, strictly in arrival
// order, with a pause between consecutive sends so the relay stays
// inside Telegram's per-chat rate limits.
type Drainer struct {
	engine  *Engine
	queue   *Queue
	config  models.RelayConfig
	logger  *logrus.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewDrainer creates a queue drainer. The config is expected to have
// been validated and defaulted by the config loader.
func NewDrainer(engine *Engine, queue *Queue, config models.RelayConfig, logger *logrus.Logger) *Drainer {
	return &Drainer{
		engine: engine,
		queue:  queue,
		config: config,
		logger: logger,
	}
}

// Start begins the background drain loop.
func (d *Drainer) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("drainer is already running")
	}

	if d.config.Mode == models.RelayModeImmediate {
		d.logger.Info("Relay runs in immediate mode, drainer not started")
		return nil
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running = true

	d.wg.Add(1)
	go d.drainLoop()

	d.logger.WithFields(logrus.Fields{
		"interval_sec": d.config.DrainIntervalSec,
		"batch_size":   d.config.DrainBatchSize,
	}).Info("Queue drainer started")

	return nil
}

// Stop gracefully stops the drain loop, waiting for an in-flight cycle
// to finish.
func (d *Drainer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	d.logger.Info("Stopping queue drainer...")
	d.cancel()
	d.wg.Wait()
	d.running = false
	d.logger.Info("Queue drainer stopped")
}

// IsRunning returns whether the drain loop is currently active.
func (d *Drainer) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

func (d *Drainer) drainLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(time.Duration(d.config.DrainIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			if err := d.DrainOnce(d.ctx); err != nil {
				d.logger.WithError(err).Error("Drain cycle failed")
			}
		}
	}
}

// DrainOnce runs a single drain cycle: skip entirely when no destination
// is bound, otherwise forward one batch in arrival order with the
// configured pause between entries. Per-message failures are absorbed by
// the forward itself; only store-level failures abort the cycle.
func (d *Drainer) DrainOnce(ctx context.Context) error {
	ctx, span := tracing.WithOtelTracing(ctx, "drain_cycle")
	defer span.End()

	destID, destSet, err := d.engine.Destination(ctx)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to read destination binding: %w", err)
	}
	if !destSet {
		d.logger.WithField(LogFieldComponent, "drainer").
			Debug("No destination chat bound, skipping drain cycle")
		return nil
	}

	entries, err := d.queue.ListOrdered(ctx, d.config.DrainBatchSize)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to list queued messages: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	tracing.AddSpanAttributes(ctx, attribute.Int("drain.batch_size", len(entries)))

	d.logger.WithFields(logrus.Fields{
		LogFieldComponent: "drainer",
		"batch":           len(entries),
	}).Info("Draining queued messages")
	metrics.IncrementCounter("relay_drain_cycles_total", nil, "Total non-empty drain cycles")

	pause := time.Duration(d.config.DrainPauseSec) * time.Second
	for i, entry := range entries {
		if entry.Message.MessageID == 0 {
			// Undecodable entry; drop it so the queue keeps moving.
			d.logger.WithFields(logrus.Fields{
				LogFieldComponent: "drainer",
				LogFieldQueueKey:  entry.Key,
			}).Warn("Discarding corrupt queue entry")
			if err := d.queue.Remove(ctx, entry.Key); err != nil {
				return err
			}
			continue
		}

		if err := d.engine.ForwardQueued(ctx, entry.Key, entry.Message, destID); err != nil {
			return err
		}

		if i < len(entries)-1 && pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}
	}

	return nil
}
