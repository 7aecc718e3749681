package storage

import (
	"context"
	"fmt"

	"github.com/hpungsan/prompthive/internal/capability"
	"github.com/hpungsan/prompthive/internal/errors"
)

type writeRequest struct {
	ctx    context.Context
	handle capability.Handle
	data   []byte
	result chan error

	// init marks the first write made by Open. Its failure is reported
	// but never deactivates the folder.
	init bool
}

var errClosed = fmt.Errorf("storage gateway is closed")

// enqueue hands data to the writer and waits for the outcome.
func (g *Gateway) enqueue(ctx context.Context, h capability.Handle, data []byte) error {
	return g.submit(ctx, &writeRequest{ctx: ctx, handle: h, data: data})
}

func (g *Gateway) submit(ctx context.Context, req *writeRequest) error {
	if ctx.Err() != nil {
		return errors.NewCancelled("write")
	}
	req.result = make(chan error, 1)

	select {
	case g.writes <- req:
	case <-ctx.Done():
		return errors.NewCancelled("write")
	case <-g.done:
		return errors.NewInternal(errClosed)
	}

	select {
	case err := <-req.result:
		return err
	case <-g.stopped:
		// The writer may have answered just before it stopped.
		select {
		case err := <-req.result:
			return err
		default:
			return errors.NewInternal(errClosed)
		}
	}
}

// runWriter applies queued writes one at a time, in the order they were queued.
func (g *Gateway) runWriter() {
	defer close(g.stopped)
	for {
		select {
		case <-g.done:
			return
		case req := <-g.writes:
			req.result <- g.apply(req)
		}
	}
}

func (g *Gateway) apply(req *writeRequest) error {
	if req.ctx.Err() != nil {
		return errors.NewCancelled("write")
	}
	if err := req.handle.WriteFile(DatabaseFile, req.data); err != nil {
		if req.init {
			return errors.NewInternal(fmt.Errorf("initialize %s in %q: %w", DatabaseFile, req.handle.Name(), err))
		}
		return g.ioFailure(req.ctx, req.handle, "write", err)
	}
	return nil
}
