package storage

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/hpungsan/prompthive/internal/capability"
)

type fakeStore struct {
	mu      sync.Mutex
	rec     *capability.Record
	loadErr error
	saveErr error
	loads   int
	saves   []capability.Record
}

func (s *fakeStore) Load(context.Context) (*capability.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.rec == nil {
		return nil, nil
	}
	rec := *s.rec
	return &rec, nil
}

func (s *fakeStore) Save(_ context.Context, rec capability.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, rec)
	s.rec = &rec
	return nil
}

type fakePicker struct {
	h     capability.Handle
	err   error
	picks int
}

func (p *fakePicker) Pick(context.Context) (capability.Handle, error) {
	p.picks++
	return p.h, p.err
}

// fakeHandle is an in-memory folder with scripted permission answers.
type fakeHandle struct {
	mu       sync.Mutex
	name     string
	query    capability.Permission
	request  capability.Permission
	files    map[string][]byte
	ops      int
	writeErr error
	readErr  error

	// When gate is set, WriteFile signals entered and then blocks until gate is closed.
	gate    chan struct{}
	entered chan struct{}
	writes  [][]byte
}

func newFakeHandle(name string) *fakeHandle {
	return &fakeHandle{
		name:    name,
		query:   capability.Granted,
		request: capability.Granted,
		files:   map[string][]byte{},
	}
}

func (h *fakeHandle) Name() string { return h.name }

func (h *fakeHandle) Record() capability.Record {
	return capability.Record{Name: h.name, Path: "/fake/" + h.name, GrantedAt: time.Unix(0, 0).UTC()}
}

func (h *fakeHandle) QueryPermission(context.Context) (capability.Permission, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.query, nil
}

func (h *fakeHandle) RequestPermission(context.Context) (capability.Permission, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.request == capability.Granted {
		h.query = capability.Granted
	}
	return h.request, nil
}

func (h *fakeHandle) Stat(name string) (fs.FileInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops++
	if _, ok := h.files[name]; !ok {
		return nil, fmt.Errorf("stat %s: %w", name, fs.ErrNotExist)
	}
	return nil, nil
}

func (h *fakeHandle) ReadFile(name string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops++
	if h.readErr != nil {
		return nil, h.readErr
	}
	data, ok := h.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (h *fakeHandle) WriteFile(name string, data []byte) error {
	h.mu.Lock()
	gate, entered := h.gate, h.entered
	h.gate = nil
	h.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops++
	if h.writeErr != nil {
		return h.writeErr
	}
	h.files[name] = append([]byte(nil), data...)
	if name == DatabaseFile {
		h.writes = append(h.writes, append([]byte(nil), data...))
	}
	return nil
}

func (h *fakeHandle) opCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ops
}
