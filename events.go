package scopedi

import "sync"

// eventPublisher is a small list of callbacks owned by the event publisher,
// invoked synchronously in subscription order (spec.md §9: "Replace
// multicast handlers with a small list of callbacks owned by the event
// publisher; no global subscription registry").
type eventPublisher[T any] struct {
	mu        sync.Mutex
	listeners []func(T)
}

// Subscribe registers fn to be called on every future Publish.
func (p *eventPublisher[T]) Subscribe(fn func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Publish invokes every subscriber, in subscription order, synchronously.
func (p *eventPublisher[T]) Publish(value T) {
	p.mu.Lock()
	listeners := make([]func(T), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(value)
	}
}

// ScopeBeginningEvent is published by a parent scope just before a child
// scope is returned from BeginChild/BeginIsolatedChild.
type ScopeBeginningEvent struct {
	Parent *LifetimeScope
	Child  *LifetimeScope
}

// ScopeEndingEvent is published by a scope immediately before its disposer
// drains.
type ScopeEndingEvent struct {
	Scope *LifetimeScope
}

// OperationBeginningEvent is published by a scope just after it creates the
// ResolveOperation handling a new top-level resolve, before that operation
// runs.
type OperationBeginningEvent struct {
	Scope     *LifetimeScope
	Operation *ResolveOperation
}

// RequestBeginningEvent is published by a ResolveOperation before a request's
// pipeline begins.
type RequestBeginningEvent struct {
	Operation *ResolveOperation
	Context   *RequestContext
}

// OperationEndingEvent is published by a ResolveOperation exactly once, when
// it transitions to ended.
type OperationEndingEvent struct {
	Operation *ResolveOperation
	Err       error
}

// RequestCompletingEvent is published by a RequestContext exactly once, for
// every successful request, after the outer-most request of its operation
// returns.
type RequestCompletingEvent struct {
	Context *RequestContext
}
