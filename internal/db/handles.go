package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/hpungsan/prompthive/internal/capability"
)

// HandleKey is the key under which the project folder handle is persisted.
const HandleKey = "prompthive-root-handle"

// HandleStore persists the capability record of the active project folder.
type HandleStore struct {
	DB  *sql.DB
	Now func() time.Time

	// Attempts and Delay bound retries on SQLITE_BUSY. Zero values use defaults.
	Attempts uint
	Delay    time.Duration
}

// NewHandleStore returns a store using db with default retry settings.
func NewHandleStore(db *sql.DB) *HandleStore {
	return &HandleStore{DB: db}
}

// Load returns the stored record, or nil when none has been saved.
func (s *HandleStore) Load(ctx context.Context) (*capability.Record, error) {
	var raw string
	err := s.retry(ctx, func() error {
		var err error
		raw, err = GetValue(ctx, s.DB, HandleKey)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load handle: %w", err)
	}

	var rec capability.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode handle: %w", err)
	}
	return &rec, nil
}

// Save overwrites the stored record.
func (s *HandleStore) Save(ctx context.Context, rec capability.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	err = s.retry(ctx, func() error {
		return PutValue(ctx, s.DB, HandleKey, string(data), s.now())
	})
	if err != nil {
		return fmt.Errorf("save handle: %w", err)
	}
	return nil
}

// Forget removes the stored record. Returns whether one existed.
func (s *HandleStore) Forget(ctx context.Context) (bool, error) {
	var deleted bool
	err := s.retry(ctx, func() error {
		var err error
		deleted, err = DeleteValue(ctx, s.DB, HandleKey)
		return err
	})
	return deleted, err
}

func (s *HandleStore) retry(ctx context.Context, fn func() error) error {
	attempts := s.Attempts
	if attempts == 0 {
		attempts = 5
	}
	delay := s.Delay
	if delay == 0 {
		delay = 50 * time.Millisecond
	}
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.RetryIf(isBusyError),
		retry.LastErrorOnly(true),
	)
}

func (s *HandleStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
