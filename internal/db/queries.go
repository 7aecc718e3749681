package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrKeyNotFound is returned by GetValue when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// GetValue returns the value stored under key.
func GetValue(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

// PutValue inserts or replaces the value stored under key.
func PutValue(ctx context.Context, db *sql.DB, key, value string, now time.Time) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query, key, value, now.Unix())
	return err
}

// DeleteValue removes key. Returns whether a row was deleted.
func DeleteValue(ctx context.Context, db *sql.DB, key string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// isBusyError checks if the error is a transient SQLite lock error.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	// modernc reports these as "database is locked (5) (SQLITE_BUSY)" and similar
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_LOCKED")
}
