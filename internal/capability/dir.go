package capability

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Dir is a Handle backed by a directory on the local filesystem.
// Every file operation goes through an os.Root, so names cannot escape the folder.
type Dir struct {
	mu   sync.Mutex
	rec  Record
	opts Options
}

var _ Handle = (*Dir)(nil)

// OpenDir grants access to the folder at path, creating it if needed.
// Protected system folders are refused with ErrSecurity.
func OpenDir(path string, opts Options) (*Dir, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if IsProtected(abs) {
		return nil, &ProtectedError{Path: abs}
	}

	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	// The symlink target is what we actually grant.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", abs, err)
	}
	if IsProtected(resolved) {
		return nil, &ProtectedError{Path: resolved}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a folder", resolved)
	}
	if err := checkAccess(resolved); err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}

	return &Dir{
		rec: Record{
			Name:      filepath.Base(resolved),
			Path:      resolved,
			GrantedAt: opts.now(),
		},
		opts: opts,
	}, nil
}

// Revive rebuilds a handle from a stored record. Nothing is checked here;
// QueryPermission reports whether the folder is still usable.
func Revive(rec Record, opts Options) *Dir {
	return &Dir{rec: rec, opts: opts}
}

func (d *Dir) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rec.Name
}

func (d *Dir) Record() Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rec
}

// QueryPermission reports Denied when the folder is gone or not read-writable,
// Prompt when the grant has expired, and Granted otherwise.
func (d *Dir) QueryPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return Denied, err
	}
	rec := d.Record()

	info, err := os.Stat(rec.Path)
	if err != nil || !info.IsDir() {
		return Denied, nil
	}
	if err := checkAccess(rec.Path); err != nil {
		return Denied, nil
	}
	if d.opts.TTL > 0 && d.opts.now().Sub(rec.GrantedAt) > d.opts.TTL {
		return Prompt, nil
	}
	return Granted, nil
}

// RequestPermission returns Granted immediately for a live grant. An expired
// grant is put to the Authorizer; approval refreshes GrantedAt.
func (d *Dir) RequestPermission(ctx context.Context) (Permission, error) {
	p, err := d.QueryPermission(ctx)
	if err != nil || p != Prompt {
		return p, err
	}
	if d.opts.Authorizer == nil {
		return Denied, nil
	}

	ok, err := d.opts.Authorizer.Authorize(ctx, d.Record())
	if err != nil {
		return Denied, err
	}
	if !ok {
		return Denied, nil
	}

	d.mu.Lock()
	d.rec.GrantedAt = d.opts.now()
	d.mu.Unlock()
	return Granted, nil
}

func (d *Dir) Stat(name string) (fs.FileInfo, error) {
	root, err := d.open()
	if err != nil {
		return nil, err
	}
	defer root.Close()
	return root.Stat(name)
}

func (d *Dir) ReadFile(name string) ([]byte, error) {
	root, err := d.open()
	if err != nil {
		return nil, err
	}
	defer root.Close()
	return root.ReadFile(name)
}

// WriteFile writes data to a temp file in the folder, syncs it and renames it over name.
func (d *Dir) WriteFile(name string, data []byte) (err error) {
	root, err := d.open()
	if err != nil {
		return err
	}
	defer root.Close()

	tmp := fmt.Sprintf(".%s.%s.tmp", filepath.Base(name), uuid.NewString())
	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = root.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return root.Rename(tmp, name)
}

func (d *Dir) open() (*os.Root, error) {
	return os.OpenRoot(d.Record().Path)
}
