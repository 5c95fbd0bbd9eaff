package scopedi

import (
	"context"
	"errors"
	"sync"
)

// Disposable releases a resource synchronously (spec.md §3, §4.2).
type Disposable interface {
	Close() error
}

// AsyncDisposable releases a resource and may suspend while doing so; used
// only by a scope's DisposeAsync path (spec.md §5: "Async disposal may
// suspend during teardown").
type AsyncDisposable interface {
	CloseAsync(ctx context.Context) error
}

// Disposer owns an ordered list of disposables added during a scope's
// lifetime and releases them in reverse-registration order on disposal (C2,
// spec.md §4.2). A failure does not stop the drain: every remaining
// disposable still attempts release, and all failures are returned joined.
type Disposer struct {
	mu          sync.Mutex
	disposables []any // Disposable or AsyncDisposable
	closed      bool
}

// NewDisposer creates an empty Disposer.
func NewDisposer() *Disposer {
	return &Disposer{}
}

// Add registers a disposable for release when the owning scope is disposed.
// It fails with ErrDisposerClosed once the disposer has drained.
func (d *Disposer) Add(disposable any) error {
	switch disposable.(type) {
	case Disposable, AsyncDisposable:
	default:
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDisposerClosed
	}

	d.disposables = append(d.disposables, disposable)
	return nil
}

// Dispose releases every registered disposable in reverse-registration
// order, synchronously. AsyncDisposable entries are released by calling
// CloseAsync with context.Background(); Dispose never bridges sync callers
// onto an async wait beyond that (spec.md §9: "Do not bridge one to the
// other").
func (d *Disposer) Dispose() error {
	entries := d.drain()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		if err := closeOne(entries[i], context.Background()); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DisposeAsync releases every registered disposable in reverse-registration
// order, awaiting each AsyncDisposable entry's CloseAsync with ctx.
func (d *Disposer) DisposeAsync(ctx context.Context) error {
	entries := d.drain()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		if err := closeOne(entries[i], ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// drain atomically marks the disposer closed and returns its entries,
// leaving it empty. Further Add calls fail afterward.
func (d *Disposer) drain() []any {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.disposables
	d.disposables = nil
	d.closed = true
	return entries
}

func closeOne(disposable any, ctx context.Context) error {
	switch v := disposable.(type) {
	case AsyncDisposable:
		return v.CloseAsync(ctx)
	case Disposable:
		return v.Close()
	default:
		return nil
	}
}
