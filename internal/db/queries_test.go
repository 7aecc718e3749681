package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestKV_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, err := GetValue(ctx, db, "k"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("GetValue(missing) error = %v, want ErrKeyNotFound", err)
	}

	now := time.Unix(1700000000, 0)
	if err := PutValue(ctx, db, "k", "one", now); err != nil {
		t.Fatalf("PutValue() error = %v", err)
	}
	if err := PutValue(ctx, db, "k", "two", now.Add(time.Second)); err != nil {
		t.Fatalf("PutValue(overwrite) error = %v", err)
	}

	got, err := GetValue(ctx, db, "k")
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if got != "two" {
		t.Errorf("GetValue() = %q, want two", got)
	}

	var updated int64
	if err := db.QueryRow(`SELECT updated_at FROM kv WHERE key = 'k'`).Scan(&updated); err != nil {
		t.Fatal(err)
	}
	if updated != now.Unix()+1 {
		t.Errorf("updated_at = %d, want %d", updated, now.Unix()+1)
	}

	deleted, err := DeleteValue(ctx, db, "k")
	if err != nil || !deleted {
		t.Fatalf("DeleteValue() = %v, %v; want true", deleted, err)
	}
	deleted, err = DeleteValue(ctx, db, "k")
	if err != nil || deleted {
		t.Fatalf("second DeleteValue() = %v, %v; want false", deleted, err)
	}
}

func TestIsBusyError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("database is locked (5) (SQLITE_BUSY)"), true},
		{fmt.Errorf("exec: SQLITE_LOCKED"), true},
		{fmt.Errorf("no such table: kv"), false},
	}
	for _, tt := range tests {
		if got := isBusyError(tt.err); got != tt.want {
			t.Errorf("isBusyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
