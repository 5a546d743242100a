package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChatID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"positive user ID", "123456789", 123456789, false},
		{"negative group ID", "-100123456", -100123456, false},
		{"supergroup ID", "-1001234567890", -1001234567890, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"negative zero", "-0", 0, true},
		{"bare minus", "-", 0, true},
		{"letters", "abc", 0, true},
		{"mixed", "123x", 0, true},
		{"embedded space", "12 34", 0, true},
		{"plus sign", "+123", 0, true},
		{"too long", strings.Repeat("9", 21), 0, true},
		{"overflow", "99999999999999999999", 0, true},
		{"unicode digits only rejected", "１２３", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateChatID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
