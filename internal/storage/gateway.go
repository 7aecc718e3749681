// Package storage mediates all durable access to the library document.
//
// A Gateway owns at most one active project folder handle. It reads and
// writes database.json inside that folder, recovers from corrupt content,
// and remembers the folder in a side store so a later process can restore
// it without asking the user to pick again.
package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/hpungsan/prompthive/internal/capability"
	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/logging"
)

// DatabaseFile is the well-known file name inside the project folder.
const DatabaseFile = "database.json"

// StoredLabelFallback is reported when a stored handle has no name.
const StoredLabelFallback = "Stored Project"

// CapabilityStore remembers which folder was last granted.
type CapabilityStore interface {
	// Load returns nil, nil when nothing is stored.
	Load(ctx context.Context) (*capability.Record, error)
	Save(ctx context.Context, rec capability.Record) error
}

// Options configures a Gateway. All fields are optional.
type Options struct {
	Store  CapabilityStore
	Picker capability.Picker

	// Revive turns a stored record back into a handle.
	// Defaults to capability.Revive with zero options.
	Revive func(capability.Record) (capability.Handle, error)

	Logger *slog.Logger
	Now    func() time.Time

	// QueueSize is the capacity of the pending write queue. Defaults to 16.
	QueueSize int
}

// Gateway is the single owner of the active project folder.
// It is safe for concurrent use; writes are applied one at a time in arrival order.
type Gateway struct {
	store  CapabilityStore
	picker capability.Picker
	revive func(capability.Record) (capability.Handle, error)
	log    *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	handle capability.Handle

	writes    chan *writeRequest
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New creates a Gateway in the uninitialized state and starts its writer.
// Call Close to stop the writer.
func New(opts Options) *Gateway {
	g := &Gateway{
		store:   opts.Store,
		picker:  opts.Picker,
		revive:  opts.Revive,
		log:     logging.OrDiscard(opts.Logger),
		now:     opts.Now,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if g.revive == nil {
		g.revive = func(rec capability.Record) (capability.Handle, error) {
			return capability.Revive(rec, capability.Options{}), nil
		}
	}
	if g.now == nil {
		g.now = time.Now
	}
	size := opts.QueueSize
	if size <= 0 {
		size = 16
	}
	g.writes = make(chan *writeRequest, size)

	go g.runWriter()
	return g
}

// Close stops the writer. Writes issued afterwards fail.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() { close(g.done) })
	<-g.stopped
	return nil
}

// StoredLabel returns the name of the remembered folder, if any.
// Store failures are reported as "nothing stored".
func (g *Gateway) StoredLabel(ctx context.Context) (string, bool) {
	if g.store == nil {
		return "", false
	}
	rec, err := g.store.Load(ctx)
	if err != nil {
		g.log.Debug("read stored folder", "error", err)
		return "", false
	}
	if rec == nil {
		return "", false
	}
	if rec.Name == "" {
		return StoredLabelFallback, true
	}
	return rec.Name, true
}

// Restore reactivates the remembered folder without a picker.
// It reports whether a folder is now active and never returns an error.
func (g *Gateway) Restore(ctx context.Context) bool {
	if g.store == nil {
		return false
	}
	rec, err := g.store.Load(ctx)
	if err != nil {
		g.log.Warn("restore: read stored folder", "error", err)
		return false
	}
	if rec == nil {
		return false
	}

	h, err := g.revive(*rec)
	if err != nil {
		g.log.Warn("restore: revive handle", "folder", rec.Name, "error", err)
		return false
	}

	perm, err := h.QueryPermission(ctx)
	if err != nil {
		g.log.Warn("restore: query permission", "folder", rec.Name, "error", err)
		return false
	}
	if perm == capability.Granted {
		g.activate(h)
		g.log.Debug("restored project folder", "folder", h.Name(), "path", rec.Path)
		return true
	}

	perm, err = h.RequestPermission(ctx)
	if err != nil {
		g.log.Warn("restore: request permission", "folder", rec.Name, "error", err)
		return false
	}
	if perm != capability.Granted {
		g.log.Info("restore: permission not granted", "folder", rec.Name, "permission", string(perm))
		return false
	}

	g.activate(h)
	// The grant was refreshed; keep the store in step.
	if err := g.store.Save(ctx, h.Record()); err != nil {
		g.log.Warn("restore: persist refreshed grant", "folder", h.Name(), "error", err)
	}
	g.log.Debug("restored project folder after re-authorization", "folder", h.Name())
	return true
}

// Open asks the picker for a folder and makes it active.
//
// Activation happens before persistence and file initialization and is not
// rolled back if they fail. A dismissed picker is SELECTION_CANCELLED and a
// protected folder is ACCESS_DENIED.
func (g *Gateway) Open(ctx context.Context) error {
	if g.picker == nil {
		return errors.NewInternal(fmt.Errorf("no folder picker configured"))
	}

	h, err := g.picker.Pick(ctx)
	if err != nil {
		var protected *capability.ProtectedError
		switch {
		case stderrors.Is(err, capability.ErrAborted):
			return errors.NewSelectionCancelled()
		case stderrors.As(err, &protected):
			return errors.NewAccessDenied(protected.Path, err)
		case stderrors.Is(err, capability.ErrSecurity):
			return errors.NewAccessDenied("", err)
		case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
			return errors.NewCancelled("open")
		}
		return errors.NewInternal(err)
	}

	g.activate(h)
	g.log.Info("project folder opened", "folder", h.Name(), "path", h.Record().Path)

	if g.store != nil {
		if err := g.store.Save(ctx, h.Record()); err != nil {
			g.log.Warn("persist project folder; it will not be restored next time", "folder", h.Name(), "error", err)
		}
	}

	if _, err := h.Stat(DatabaseFile); err == nil {
		return nil
	}
	data, err := library.Encode(library.Default())
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := g.submit(ctx, &writeRequest{ctx: ctx, handle: h, data: data, init: true}); err != nil {
		return err
	}
	g.log.Info("initialized database", "folder", h.Name())
	return nil
}

// Ready reports whether a folder is active. It does not touch the filesystem.
func (g *Gateway) Ready() bool {
	return g.current() != nil
}

// Active returns the record of the active folder.
func (g *Gateway) Active() (capability.Record, bool) {
	h := g.current()
	if h == nil {
		return capability.Record{}, false
	}
	return h.Record(), true
}

// Release drops the active folder. The stored record is kept.
func (g *Gateway) Release() {
	g.mu.Lock()
	g.handle = nil
	g.mu.Unlock()
}

// Read loads the document from the active folder.
//
// Empty content yields the default document. Content that is not JSON is
// copied to a timestamped backup and the default document is returned.
// Unknown versions and documents of the wrong shape are errors; the file is
// left untouched.
func (g *Gateway) Read(ctx context.Context) (*library.Database, error) {
	h := g.current()
	if h == nil {
		return nil, errors.NewUninitialized()
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("read")
	}

	data, err := h.ReadFile(DatabaseFile)
	if err != nil {
		return nil, g.ioFailure(ctx, h, "read", err)
	}
	if len(bytes.TrimSpace(library.TrimBOM(data))) == 0 {
		return library.Default(), nil
	}

	db, err := library.Decode(data)
	if err != nil {
		var (
			corrupt     *library.CorruptError
			unsupported *library.UnsupportedVersionError
		)
		switch {
		case stderrors.As(err, &corrupt):
			backup := g.backup(h, data)
			g.log.Error("database file is corrupt; starting from an empty library",
				"folder", h.Name(), "backup", backup, "error", err)
			return library.Default(), nil
		case stderrors.As(err, &unsupported):
			return nil, errors.NewUnsupportedVersion(unsupported.Version)
		}
		return nil, errors.NewInvalidDocument(err)
	}

	var repaired []string
	db.Collections, repaired = library.RepairCollections(db.Collections)
	if len(repaired) > 0 {
		g.log.Warn("repaired collection parents", "folder", h.Name(), "collections", repaired)
	}
	return db, nil
}

// Write replaces the document in the active folder with db.
// db is not modified. Concurrent calls are applied in arrival order.
func (g *Gateway) Write(ctx context.Context, db *library.Database) error {
	h := g.current()
	if h == nil {
		return errors.NewUninitialized()
	}

	out := db.Clone()
	if out == nil {
		out = library.Default()
	}
	var repaired []string
	out.Collections, repaired = library.RepairCollections(out.Collections)
	if len(repaired) > 0 {
		g.log.Warn("repaired collection parents before write", "folder", h.Name(), "collections", repaired)
	}

	data, err := library.Encode(out)
	if err != nil {
		var unsupported *library.UnsupportedVersionError
		if stderrors.As(err, &unsupported) {
			return errors.NewUnsupportedVersion(unsupported.Version)
		}
		return errors.NewInternal(err)
	}
	return g.enqueue(ctx, h, data)
}

// backup writes the raw content next to the database file. Failures are logged only.
func (g *Gateway) backup(h capability.Handle, data []byte) string {
	name := fmt.Sprintf("%s.bak.%d", DatabaseFile, g.now().UnixMilli())
	if err := h.WriteFile(name, data); err != nil {
		g.log.Warn("write corruption backup", "folder", h.Name(), "file", name, "error", err)
		return ""
	}
	return name
}

// ioFailure classifies a failed file operation. If the folder can no longer
// be used the gateway drops it and reports PERMISSION_LOST.
func (g *Gateway) ioFailure(ctx context.Context, h capability.Handle, op string, err error) error {
	lost := stderrors.Is(err, fs.ErrPermission)
	if !lost {
		perm, qerr := h.QueryPermission(ctx)
		lost = qerr == nil && perm == capability.Denied
	}
	if lost {
		g.demote(h)
		g.log.Warn("project folder access lost", "folder", h.Name(), "op", op, "error", err)
		return errors.NewPermissionLost(h.Name(), err)
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewFileNotFound(DatabaseFile)
	}
	return errors.NewInternal(fmt.Errorf("%s %s: %w", op, DatabaseFile, err))
}

func (g *Gateway) current() capability.Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.handle
}

func (g *Gateway) activate(h capability.Handle) {
	g.mu.Lock()
	g.handle = h
	g.mu.Unlock()
}

// demote drops h if it is still the active handle.
func (g *Gateway) demote(h capability.Handle) {
	g.mu.Lock()
	if g.handle == h {
		g.handle = nil
	}
	g.mu.Unlock()
}
