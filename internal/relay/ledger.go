package relay

import (
	"context"
	"time"

	"tgrelay/internal/constants"
	"tgrelay/internal/models"
)

// Store is the key/value contract the relay coordinates through. Every
// operation is individually atomic; the relay never assumes multi-key
// transactions exist.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	PutWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	ListPrefix(ctx context.Context, prefix string, limit int) ([]models.KVEntry, error)
}

// Ledger is the time-bounded idempotency record: it remembers which
// origin messages have already been forwarded so a retried drain cycle
// never double-sends. Records expire after the configured retention so
// storage stays bounded while covering realistic retry windows.
type Ledger struct {
	store Store
	ttl   time.Duration
}

// NewLedger creates a dedup ledger over the given store.
func NewLedger(store Store, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = time.Duration(constants.DefaultLedgerTTLHours) * time.Hour
	}
	return &Ledger{store: store, ttl: ttl}
}

// IsForwarded reports whether the origin message already has a live
// ledger record.
func (l *Ledger) IsForwarded(ctx context.Context, chatID, messageID int64) (bool, error) {
	_, found, err := l.store.Get(ctx, models.LedgerKey(constants.LedgerKeyPrefix, chatID, messageID))
	if err != nil {
		return false, err
	}
	return found, nil
}

// MarkForwarded records a successful forward. Idempotent: marking twice
// just refreshes the expiry. Callers must only mark after the outbound
// collaborator confirmed the send, so failed attempts stay retryable.
func (l *Ledger) MarkForwarded(ctx context.Context, chatID, messageID int64) error {
	return l.store.PutWithTTL(ctx, models.LedgerKey(constants.LedgerKeyPrefix, chatID, messageID), "true", l.ttl)
}
