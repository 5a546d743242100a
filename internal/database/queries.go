package database

// Key/value store queries. Expired rows are filtered on read and removed
// by PurgeExpired; deletion is never load-bearing for correctness.
//
// Expiry comparisons use strftime with %f rather than CURRENT_TIMESTAMP:
// the latter has whole-second precision, which would make short TTLs
// visible for up to a second past their expiry.
const (
	upsertEntryQuery = `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`

	selectEntryQuery = `
		SELECT value FROM kv_entries
		WHERE key = ? AND (expires_at IS NULL OR expires_at > strftime('%Y-%m-%d %H:%M:%f', 'now'))
	`

	deleteEntryQuery = `
		DELETE FROM kv_entries WHERE key = ?
	`

	selectPrefixOrderedQuery = `
		SELECT key, value FROM kv_entries
		WHERE key >= ? AND key < ?
		  AND (expires_at IS NULL OR expires_at > strftime('%Y-%m-%d %H:%M:%f', 'now'))
		ORDER BY key ASC
		LIMIT ?
	`

	purgeExpiredQuery = `
		DELETE FROM kv_entries
		WHERE expires_at IS NOT NULL AND expires_at <= strftime('%Y-%m-%d %H:%M:%f', 'now')
	`
)
