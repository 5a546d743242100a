package migrations

// InitialSchema is the full store schema. The store is a single key/value
// table: the relay's queue ordering comes from key ordering, so the only
// index that matters is the primary key itself.
const InitialSchema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_kv_entries_expires_at ON kv_entries(expires_at);
`

// GetInitialSchema returns the initial database schema.
func GetInitialSchema() string {
	return InitialSchema
}
