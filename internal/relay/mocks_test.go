package relay

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tgrelay/internal/models"
)

// memStore is an in-memory Store with the same visibility rules as the
// real one: expired entries are invisible to reads, prefix listings
// come back in ascending key order.
type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry

	getErr    error
	putErr    error
	deleteErr error
	listErr   error
}

type memEntry struct {
	value     string
	expiresAt *time.Time
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]memEntry)}
}

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || (e.expiresAt != nil && time.Now().After(*e.expiresAt)) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *memStore) Put(ctx context.Context, key, value string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{value: value}
	return nil
}

func (s *memStore) PutWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expires := time.Now().Add(ttl)
	s.entries[key] = memEntry{value: value, expiresAt: &expires}
	return nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memStore) ListPrefix(ctx context.Context, prefix string, limit int) ([]models.KVEntry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if e.expiresAt != nil && time.Now().After(*e.expiresAt) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if limit < len(keys) {
		keys = keys[:limit]
	}

	entries := make([]models.KVEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, models.KVEntry{Key: k, Value: s.entries[k].value})
	}
	return entries, nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sentMessage records one SendMessage call.
type sentMessage struct {
	ChatID  int64
	Text    string
	ReplyTo int64
}

// copiedMessage records one CopyMessage call.
type copiedMessage struct {
	ToChatID   int64
	FromChatID int64
	MessageID  int64
	Caption    string
	ReplyTo    int64
}

// mockClient captures outbound calls and can fail them on demand.
type mockClient struct {
	mu       sync.Mutex
	sent     []sentMessage
	copied   []copiedMessage
	sendErr  error
	copyErr  error
	copyErrs map[int64]error
}

func newMockClient() *mockClient {
	return &mockClient{copyErrs: make(map[int64]error)}
}

func (c *mockClient) SendMessage(ctx context.Context, chatID int64, text string, replyToMessageID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentMessage{ChatID: chatID, Text: text, ReplyTo: replyToMessageID})
	return nil
}

func (c *mockClient) CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64, caption string, replyToMessageID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.copyErrs[messageID]; ok {
		return err
	}
	if c.copyErr != nil {
		return c.copyErr
	}
	c.copied = append(c.copied, copiedMessage{
		ToChatID:   toChatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
		Caption:    caption,
		ReplyTo:    replyToMessageID,
	})
	return nil
}

func (c *mockClient) sentMessages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *mockClient) copiedMessages() []copiedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]copiedMessage, len(c.copied))
	copy(out, c.copied)
	return out
}
