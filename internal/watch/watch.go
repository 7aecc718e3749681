// Package watch reports changes to the library file made by other processes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hpungsan/prompthive/internal/logging"
)

// DefaultDebounce coalesces the burst of events an atomic replace produces.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Watcher. All fields are optional.
type Options struct {
	// File is the name watched inside the folder. Defaults to database.json.
	File     string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Change is one debounced notification.
type Change struct {
	Path string
	Op   fsnotify.Op // union of the ops seen during the debounce window
	At   time.Time
}

// Watcher watches a single file inside a folder. The folder is watched rather
// than the file so replacements by rename are seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      *slog.Logger
}

// New starts watching dir.
func New(dir string, opts Options) (*Watcher, error) {
	file := opts.File
	if file == "" {
		file = "database.json"
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		fsw:      fsw,
		path:     filepath.Join(dir, file),
		debounce: debounce,
		log:      logging.OrDiscard(opts.Logger),
	}, nil
}

// Path is the watched file.
func (w *Watcher) Path() string { return w.path }

// Run delivers changes to fn until ctx is done or the watcher is closed.
// fn runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(Change)) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending fsnotify.Op
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op == fsnotify.Chmod {
				continue
			}
			pending |= event.Op
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			op := pending
			pending = 0
			w.log.Debug("library file changed", "path", w.path, "op", op.String())
			fn(Change{Path: w.path, Op: op, At: time.Now()})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "path", w.path, "error", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
