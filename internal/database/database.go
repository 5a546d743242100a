package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"tgrelay/internal/migrations"
	"tgrelay/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Database is a SQLite-backed key/value store with per-key expiry and
// lexicographically ordered prefix listing. Keys are stored in the clear
// so prefix scans preserve arrival ordering; values may be encrypted at
// rest when TGRELAY_ENABLE_ENCRYPTION is set.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(migrations.GetInitialSchema()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Ping reports whether the underlying store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Put stores a value under key with no expiry, overwriting any previous
// value.
func (d *Database) Put(ctx context.Context, key, value string) error {
	return d.put(ctx, key, value, nil)
}

// PutWithTTL stores a value that expires after ttl. Expired entries are
// invisible to reads immediately and physically removed by PurgeExpired.
func (d *Database) PutWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	expiresAt := time.Now().UTC().Add(ttl)
	return d.put(ctx, key, value, &expiresAt)
}

// expiryLayout matches the strftime('%Y-%m-%d %H:%M:%f') format the
// queries compare against, so expiry comparisons are plain fixed-width
// string comparisons.
const expiryLayout = "2006-01-02 15:04:05.000"

func (d *Database) put(ctx context.Context, key, value string, expiresAt *time.Time) error {
	encrypted, err := d.encryptor.EncryptIfEnabled(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	var expires interface{}
	if expiresAt != nil {
		expires = expiresAt.UTC().Format(expiryLayout)
	}

	return retryableStoreOperation(ctx, func() error {
		_, err := d.db.ExecContext(ctx, upsertEntryQuery, key, encrypted, expires)
		if err != nil {
			return fmt.Errorf("failed to put %q: %w", key, err)
		}
		return nil
	}, "put")
}

// Get returns the value stored under key, or ("", false, nil) when the
// key is absent or expired.
func (d *Database) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := retryableStoreOperation(ctx, func() error {
		return d.db.QueryRowContext(ctx, selectEntryQuery, key).Scan(&value)
	}, "get")

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}

	decrypted, err := d.encryptor.DecryptIfEnabled(value)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt value for %q: %w", key, err)
	}
	return decrypted, true, nil
}

// Delete removes the entry under key. Deleting an absent key is not an
// error.
func (d *Database) Delete(ctx context.Context, key string) error {
	return retryableStoreOperation(ctx, func() error {
		if _, err := d.db.ExecContext(ctx, deleteEntryQuery, key); err != nil {
			return fmt.Errorf("failed to delete %q: %w", key, err)
		}
		return nil
	}, "delete")
}

// ListPrefix returns up to limit live entries whose keys start with
// prefix, in ascending key order. This is the ordering guarantee the
// inbound queue is built on.
func (d *Database) ListPrefix(ctx context.Context, prefix string, limit int) ([]models.KVEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	// The upper bound is prefix with 0xFF appended, which is greater than
	// every key extending prefix in byte order.
	upper := prefix + "\xff"

	rows, err := d.db.QueryContext(ctx, selectPrefixOrderedQuery, prefix, upper, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list prefix %q: %w", prefix, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []models.KVEntry
	for rows.Next() {
		var e models.KVEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Value, err = d.encryptor.DecryptIfEnabled(e.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt value for %q: %w", e.Key, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prefix %q: %w", prefix, err)
	}

	return entries, nil
}

// PurgeExpired physically removes expired rows and returns the number
// deleted.
func (d *Database) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := d.db.ExecContext(ctx, purgeExpiredQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired entries: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
