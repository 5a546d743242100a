package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tgrelay/internal/errors"
)

func TestEncodeTag(t *testing.T) {
	tag := EncodeTag(12345, 678)

	assert.True(t, strings.HasPrefix(tag, TagMarker))
	assert.Equal(t, TagMarker+`{"chat_id":12345,"message_id":678}`, tag)
}

func TestEncodeTagDeterministic(t *testing.T) {
	assert.Equal(t, EncodeTag(-100123, 1), EncodeTag(-100123, 1))
}

func TestDecodeTag(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantChat  int64
		wantMsg   int64
		wantNil   bool
		wantError bool
	}{
		{
			name:     "tag only",
			text:     EncodeTag(42, 7),
			wantChat: 42,
			wantMsg:  7,
		},
		{
			name:     "tag after visible text",
			text:     "Hello from a user" + EncodeTag(99, 3),
			wantChat: 99,
			wantMsg:  3,
		},
		{
			name:     "negative group chat ID",
			text:     EncodeTag(-1001234567890, 55),
			wantChat: -1001234567890,
			wantMsg:  55,
		},
		{
			name:    "no marker",
			text:    "just an ordinary message",
			wantNil: true,
		},
		{
			name:    "empty text",
			text:    "",
			wantNil: true,
		},
		{
			name:      "marker with malformed payload",
			text:      TagMarker + "{not json",
			wantError: true,
		},
		{
			name:      "marker with empty payload",
			text:      TagMarker,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := DecodeTag(tt.text)

			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeTagDecode, apperrors.GetCode(err))
				return
			}
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, tag)
				return
			}
			require.NotNil(t, tag)
			assert.Equal(t, tt.wantChat, tag.ChatID)
			assert.Equal(t, tt.wantMsg, tag.MessageID)
		})
	}
}

func TestDecodeTagRoundTrip(t *testing.T) {
	tag, err := DecodeTag("Can you help me?" + EncodeTag(123456789, 42))
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, int64(123456789), tag.ChatID)
	assert.Equal(t, int64(42), tag.MessageID)
}
