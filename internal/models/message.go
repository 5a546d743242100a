package models

import "fmt"

// QueuedMessage is one inbound message waiting to be relayed. The store
// value keeps only what the forward needs; the full update is never
// persisted.
type QueuedMessage struct {
	FromChatID int64 `json:"from_chat_id"`
	MessageID  int64 `json:"message_id"`
	IsText     bool  `json:"is_text"`
}

// ProvenanceTag links a relayed copy back to its origin chat and message.
// It is serialized as compact JSON behind a zero-width marker inside the
// copy's caption.
type ProvenanceTag struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// KVEntry is one stored key/value pair returned by ordered prefix
// listings.
type KVEntry struct {
	Key   string
	Value string
}

// LedgerKey derives the dedup ledger key for an origin message.
func LedgerKey(prefix string, chatID, messageID int64) string {
	return fmt.Sprintf("%s%d_%d", prefix, chatID, messageID)
}

// QueueKey derives the ordered queue key for an inbound message. The
// timestamp must be a fixed-layout sortable string so that lexicographic
// key order equals arrival order.
func QueueKey(prefix, timestamp string, messageID int64) string {
	return fmt.Sprintf("%s%s_%d", prefix, timestamp, messageID)
}
