package validation

import (
	"strconv"
	"unicode"

	"tgrelay/internal/errors"
)

// Telegram chat IDs fit in int64; supergroup and channel IDs are negative
// with a -100 prefix, so a leading minus sign is valid.
const maxChatIDLength = 20

// ValidateChatID validates the textual chat identifier passed to the
// /set command and returns its numeric value.
func ValidateChatID(raw string) (int64, error) {
	if raw == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "chat ID cannot be empty")
	}

	if len(raw) > maxChatIDLength {
		return 0, errors.New(errors.ErrCodeInvalidInput, "chat ID too long")
	}

	body := raw
	if body[0] == '-' {
		body = body[1:]
	}
	if body == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "chat ID must contain digits")
	}
	for _, char := range body {
		if !unicode.IsDigit(char) {
			return 0, errors.New(errors.ErrCodeInvalidInput, "chat ID must contain only digits")
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInvalidInput, "chat ID is not a valid integer")
	}
	if id == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "chat ID cannot be zero")
	}

	return id, nil
}
