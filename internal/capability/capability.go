// Package capability models a user-granted, revocable handle on one project
// folder. All file access made through a Handle stays inside that folder.
package capability

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Permission is the access state of a handle.
type Permission string

const (
	Granted Permission = "granted"
	Denied  Permission = "denied"
	Prompt  Permission = "prompt" // access must be confirmed again
)

var (
	// ErrAborted is returned by a Picker when the user selects nothing.
	ErrAborted = errors.New("folder selection aborted")

	// ErrSecurity is returned when the chosen folder is a protected system location.
	ErrSecurity = errors.New("folder is protected by the system")
)

// ProtectedError names the protected folder that was refused. It matches ErrSecurity.
type ProtectedError struct {
	Path string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, ErrSecurity)
}

func (e *ProtectedError) Unwrap() error { return ErrSecurity }

// Record is the persisted form of a handle.
type Record struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	GrantedAt time.Time `json:"granted_at"`
}

// Handle is an opaque grant of access to a folder.
type Handle interface {
	// Name is the display label of the folder.
	Name() string
	// Record returns the serializable form of the handle.
	Record() Record

	QueryPermission(ctx context.Context) (Permission, error)
	// RequestPermission may ask the user. On success the grant is refreshed.
	RequestPermission(ctx context.Context) (Permission, error)

	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	// WriteFile replaces name atomically; readers see either the old or the new content.
	WriteFile(name string, data []byte) error
}

// Picker asks the user for a folder.
type Picker interface {
	Pick(ctx context.Context) (Handle, error)
}

// Authorizer confirms that access to a previously granted folder may continue.
type Authorizer interface {
	Authorize(ctx context.Context, rec Record) (bool, error)
}

// Options configures handles created by this package.
type Options struct {
	// TTL is how long a grant stays valid before QueryPermission reports Prompt.
	// 0 disables expiry.
	TTL time.Duration

	// Authorizer is consulted by RequestPermission. Nil means requests are denied.
	Authorizer Authorizer

	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
