package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tgrelay/internal/constants"
	"tgrelay/internal/models"
)

// queueTimestampLayout is RFC 3339 with fixed-width nanoseconds.
// time.RFC3339Nano trims trailing zeros, which would break the
// lexicographic-equals-chronological property the queue depends on.
const queueTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Queue is the ordered inbound buffer. Each entry's key embeds a
// fixed-layout UTC timestamp so that ascending key order equals arrival
// order, which is the only ordering guarantee the store offers.
type Queue struct {
	store Store
	now   func() time.Time
}

// NewQueue creates an inbound queue over the given store.
func NewQueue(store Store) *Queue {
	return &Queue{store: store, now: time.Now}
}

// QueuedEntry pairs a decoded queued message with the store key it was
// read under, so the caller can remove exactly what it processed.
type QueuedEntry struct {
	Key     string
	Message models.QueuedMessage
}

// Enqueue records an inbound message for a later drain cycle. The key
// carries the enqueue timestamp; the value carries only the fields a
// forward needs.
func (q *Queue) Enqueue(ctx context.Context, msg models.QueuedMessage) (string, error) {
	timestamp := q.now().UTC().Format(queueTimestampLayout)
	key := models.QueueKey(constants.QueueKeyPrefix, timestamp, msg.MessageID)

	value, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode queued message: %w", err)
	}
	if err := q.store.Put(ctx, key, string(value)); err != nil {
		return "", fmt.Errorf("failed to enqueue message: %w", err)
	}
	return key, nil
}

// ListOrdered returns up to limit queued entries in arrival order.
// Entries whose stored value no longer parses are returned with their
// key and a zero message so the caller can discard them explicitly.
func (q *Queue) ListOrdered(ctx context.Context, limit int) ([]QueuedEntry, error) {
	raw, err := q.store.ListPrefix(ctx, constants.QueueKeyPrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	entries := make([]QueuedEntry, 0, len(raw))
	for _, e := range raw {
		entry := QueuedEntry{Key: e.Key}
		if err := json.Unmarshal([]byte(e.Value), &entry.Message); err != nil {
			// Leave the message zero-valued; the drain cycle deletes the
			// key so a corrupt entry cannot wedge the queue.
			entries = append(entries, entry)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Remove deletes one queue entry. Removing an already-removed key is
// not an error.
func (q *Queue) Remove(ctx context.Context, key string) error {
	if err := q.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove queue entry %q: %w", key, err)
	}
	return nil
}
