package relay

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgrelay/internal/constants"
	"tgrelay/internal/models"
)

func TestQueueEnqueueAndList(t *testing.T) {
	store := newMemStore()
	queue := NewQueue(store)
	ctx := context.Background()

	key, err := queue.Enqueue(ctx, models.QueuedMessage{FromChatID: 100, MessageID: 1, IsText: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, constants.QueueKeyPrefix))

	entries, err := queue.ListOrdered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, key, entries[0].Key)
	assert.Equal(t, int64(100), entries[0].Message.FromChatID)
	assert.Equal(t, int64(1), entries[0].Message.MessageID)
	assert.True(t, entries[0].Message.IsText)
}

func TestQueuePreservesArrivalOrder(t *testing.T) {
	store := newMemStore()
	queue := NewQueue(store)
	ctx := context.Background()

	// Deterministic clock so key timestamps are strictly increasing
	// regardless of scheduler jitter.
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tick := 0
	queue.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	// Message IDs deliberately out of numeric order: arrival order must
	// win over ID order.
	ids := []int64{50, 3, 999, 12, 7}
	for _, id := range ids {
		_, err := queue.Enqueue(ctx, models.QueuedMessage{FromChatID: 100, MessageID: id, IsText: true})
		require.NoError(t, err)
	}

	entries, err := queue.ListOrdered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, entries[i].Message.MessageID)
	}
}

func TestQueueOrderSurvivesTrailingZeroTimestamps(t *testing.T) {
	store := newMemStore()
	queue := NewQueue(store)
	ctx := context.Background()

	// 100ms then 150ms past the second: a trimmed-fraction layout would
	// order ".1" after ".15".
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(100 * time.Millisecond),
		base.Add(150 * time.Millisecond),
	}
	i := 0
	queue.now = func() time.Time {
		ts := times[i]
		i++
		return ts
	}

	_, err := queue.Enqueue(ctx, models.QueuedMessage{FromChatID: 100, MessageID: 1, IsText: true})
	require.NoError(t, err)
	_, err = queue.Enqueue(ctx, models.QueuedMessage{FromChatID: 100, MessageID: 2, IsText: true})
	require.NoError(t, err)

	entries, err := queue.ListOrdered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Message.MessageID)
	assert.Equal(t, int64(2), entries[1].Message.MessageID)
}

func TestQueueListRespectsLimit(t *testing.T) {
	store := newMemStore()
	queue := NewQueue(store)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tick := 0
	queue.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	for i := int64(1); i <= 25; i++ {
		_, err := queue.Enqueue(ctx, models.QueuedMessage{FromChatID: 100, MessageID: i, IsText: true})
		require.NoError(t, err)
	}

	entries, err := queue.ListOrdered(ctx, 20)
	require.NoError(t, err)
	require.Len(t, entries, 20)
	// The oldest 20, in order.
	assert.Equal(t, int64(1), entries[0].Message.MessageID)
	assert.Equal(t, int64(20), entries[19].Message.MessageID)
}

func TestQueueRemove(t *testing.T) {
	store := newMemStore()
	queue := NewQueue(store)
	ctx := context.Background()

	key, err := queue.Enqueue(ctx, models.QueuedMessage{FromChatID: 100, MessageID: 1, IsText: true})
	require.NoError(t, err)

	require.NoError(t, queue.Remove(ctx, key))

	entries, err := queue.ListOrdered(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Removing again is harmless.
	require.NoError(t, queue.Remove(ctx, key))
}

func TestQueueListSurfacesCorruptEntries(t *testing.T) {
	store := newMemStore()
	queue := NewQueue(store)
	ctx := context.Background()

	key := models.QueueKey(constants.QueueKeyPrefix, "2026-08-28T12:00:00Z", 1)
	require.NoError(t, store.Put(ctx, key, "{corrupt"))

	entries, err := queue.ListOrdered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, key, entries[0].Key)
	assert.Zero(t, entries[0].Message.MessageID)
}
