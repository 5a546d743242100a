package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEncryptionSecret = "test-encryption-secret-at-least-32-chars"

func TestEncryptorDisabledPassthrough(t *testing.T) {
	t.Setenv("TGRELAY_ENABLE_ENCRYPTION", "false")

	enc, err := NewEncryptor()
	require.NoError(t, err)

	out, err := enc.EncryptIfEnabled("plain value")
	require.NoError(t, err)
	assert.Equal(t, "plain value", out)

	out, err = enc.DecryptIfEnabled("plain value")
	require.NoError(t, err)
	assert.Equal(t, "plain value", out)
}

func TestEncryptorRoundTrip(t *testing.T) {
	t.Setenv("TGRELAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGRELAY_ENCRYPTION_SECRET", testEncryptionSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)

	plaintext := `{"from_chat_id":100,"message_id":1,"is_text":true}`
	ciphertext, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptorNonceUniqueness(t *testing.T) {
	t.Setenv("TGRELAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGRELAY_ENCRYPTION_SECRET", testEncryptionSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)

	first, err := enc.Encrypt("same input")
	require.NoError(t, err)
	second, err := enc.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestEncryptorRequiresSecret(t *testing.T) {
	t.Setenv("TGRELAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGRELAY_ENCRYPTION_SECRET", "")

	_, err := NewEncryptor()
	assert.Error(t, err)
}

func TestEncryptorRejectsShortSecret(t *testing.T) {
	t.Setenv("TGRELAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGRELAY_ENCRYPTION_SECRET", "too short")

	_, err := NewEncryptor()
	assert.Error(t, err)
}

func TestEncryptorRejectsTamperedCiphertext(t *testing.T) {
	t.Setenv("TGRELAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGRELAY_ENCRYPTION_SECRET", testEncryptionSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)

	_, err = enc.Decrypt("bm90IHJlYWwgY2lwaGVydGV4dCBhdCBhbGwsIHNvcnJ5")
	assert.Error(t, err)

	_, err = enc.Decrypt("not base64 at all!!!")
	assert.Error(t, err)
}

func TestDatabaseWithEncryptionEnabled(t *testing.T) {
	t.Setenv("TGRELAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("TGRELAY_ENCRYPTION_SECRET", testEncryptionSecret)

	dbPath := filepath.Join(t.TempDir(), "enc.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Put(ctx, "message_001", `{"from_chat_id":100}`))

	value, found, err := db.Get(ctx, "message_001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"from_chat_id":100}`, value)

	// Prefix listing still works: keys stay in the clear.
	entries, err := db.ListPrefix(ctx, "message_", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, `{"from_chat_id":100}`, entries[0].Value)
}
