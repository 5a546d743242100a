package relay

import (
	"encoding/json"
	"strings"

	apperrors "tgrelay/internal/errors"
	"tgrelay/internal/models"
)

// TagMarker is a zero-width space. It renders as nothing in every
// Telegram client, so a tagged caption looks like plain text to humans
// while the payload after the marker stays machine-recoverable, and it
// survives copyMessage and reply quoting because it lives in the caption
// itself rather than in message metadata.
const TagMarker = "\u200b"

// EncodeTag serializes a provenance tag for embedding in an outgoing
// text or caption. Deterministic and side-effect free.
func EncodeTag(chatID, messageID int64) string {
	payload, _ := json.Marshal(models.ProvenanceTag{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return TagMarker + string(payload)
}

// DecodeTag scans text for an embedded provenance tag. It returns
// (nil, nil) when no marker is present: most destination messages are
// ordinary conversation and carry no tag. A marker followed by a payload
// that does not parse is the reportable malformed-tag condition and
// returns a TAG_DECODE error.
func DecodeTag(text string) (*models.ProvenanceTag, error) {
	idx := strings.Index(text, TagMarker)
	if idx < 0 {
		return nil, nil
	}

	payload := text[idx+len(TagMarker):]
	var tag models.ProvenanceTag
	if err := json.Unmarshal([]byte(payload), &tag); err != nil {
		return nil, apperrors.NewTagDecodeError(err)
	}

	return &tag, nil
}
