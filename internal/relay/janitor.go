package relay

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tgrelay/internal/constants"
	"tgrelay/internal/metrics"
)

// Purger removes expired rows from the store.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired ledger records so the store never
// accumulates dead rows. Expired entries are already invisible to reads;
// this only reclaims space.
type Janitor struct {
	store       Purger
	intervalMin int
	logger      *logrus.Logger
	stopCh      chan struct{}
}

func NewJanitor(store Purger, intervalMin int, logger *logrus.Logger) *Janitor {
	if intervalMin <= 0 {
		intervalMin = constants.DefaultJanitorIntervalMin
	}
	return &Janitor{
		store:       store,
		intervalMin: intervalMin,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(j.intervalMin) * time.Minute)
	defer ticker.Stop()

	j.logger.Info("Starting expiry janitor")

	j.runPurge(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Janitor context cancelled, stopping")
			return
		case <-j.stopCh:
			j.logger.Info("Janitor stop signal received, stopping")
			return
		case <-ticker.C:
			j.runPurge(ctx)
		}
	}
}

func (j *Janitor) Stop() {
	close(j.stopCh)
}

func (j *Janitor) runPurge(ctx context.Context) {
	purged, err := j.store.PurgeExpired(ctx)
	if err != nil {
		j.logger.WithError(err).Error("Failed to purge expired entries")
		return
	}
	if purged > 0 {
		metrics.AddToCounter("relay_purged_entries_total", float64(purged), nil, "Total expired entries purged")
		j.logger.WithField("purged", purged).Info("Purged expired entries")
	}
}
