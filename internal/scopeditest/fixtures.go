// Package scopeditest collects small fixtures shared by scopedi's package
// tests: an activator that counts its own invocations, a disposable that
// records when it closed, and a terse Registration builder.
package scopeditest

import (
	"sync"
	"sync/atomic"

	"github.com/rettoph/scopedi"
)

// Widget is a plain activated value used across resolution tests.
type Widget struct {
	ID int
}

// CountingActivator produces a new *Widget on every Activate call and counts
// how many times it ran, so tests can assert sharing behavior.
type CountingActivator struct {
	calls int32
}

// Activate implements scopedi.Activator.
func (a *CountingActivator) Activate(*scopedi.LifetimeScope, []scopedi.Parameter) (any, error) {
	n := atomic.AddInt32(&a.calls, 1)
	return &Widget{ID: int(n)}, nil
}

// Calls reports how many times Activate has run.
func (a *CountingActivator) Calls() int { return int(atomic.LoadInt32(&a.calls)) }

// FailingActivator always fails with err.
type FailingActivator struct {
	Err error
}

// Activate implements scopedi.Activator.
func (a FailingActivator) Activate(*scopedi.LifetimeScope, []scopedi.Parameter) (any, error) {
	return nil, a.Err
}

// CloseLog records disposal order across every Probe that shares it.
type CloseLog struct {
	mu    sync.Mutex
	order []string
}

// Record appends name to the log.
func (l *CloseLog) Record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

// Order returns a copy of the recorded close order.
func (l *CloseLog) Order() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Probe is a Disposable that records its own name to a shared CloseLog when
// closed, so tests can assert disposal order.
type Probe struct {
	Name string
	Log  *CloseLog

	mu     sync.Mutex
	closed bool
}

// NewProbe returns a Probe that records to log when closed.
func NewProbe(name string, log *CloseLog) *Probe {
	return &Probe{Name: name, Log: log}
}

// Close implements scopedi.Disposable.
func (p *Probe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.Log.Record(p.Name)
	return nil
}

// Closed reports whether Close has run.
func (p *Probe) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// NewRegistration builds a scopedi.Registration for a single service with
// sensible test defaults (SharingNone, OwnedByLifetimeScope,
// CurrentScopeLifetime), overridable by the caller after it is returned.
func NewRegistration(id string, svc scopedi.Service, activator scopedi.Activator) *scopedi.Registration {
	return &scopedi.Registration{
		ID:        id,
		Services:  []scopedi.Service{svc},
		Activator: activator,
		Lifetime:  scopedi.CurrentScopeLifetime(),
		Sharing:   scopedi.SharingNone,
		Ownership: scopedi.OwnedByLifetimeScope,
	}
}
