package scopedi

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// LifetimeScope is one node in a tree of nested resolution contexts (C3,
// spec.md §4.3). Each scope owns its own shared-instance store and disposer,
// and consults a Registry that either stores its own registrations directly
// (root) or inherits a parent's by reference (ordinary child) or falls back
// to the nearest ancestor registry with local registrations (isolated child).
type LifetimeScope struct {
	id        string
	tag       any
	anonymous bool

	parent *LifetimeScope
	root   *LifetimeScope

	registry *Registry
	shared   *SharedInstanceStore
	disposer_ *Disposer
	diagSink  DiagnosticSink

	disposed int32 // atomic

	scopeBeginning     eventPublisher[*ScopeBeginningEvent]
	scopeEnding        eventPublisher[*ScopeEndingEvent]
	operationBeginning eventPublisher[*OperationBeginningEvent]
	requestBeginning   eventPublisher[*RequestBeginningEvent]
	operationEnding    eventPublisher[*OperationEndingEvent]
}

// scopeConfig accumulates ScopeOption values before a scope is built.
type scopeConfig struct {
	tag  any
	sink DiagnosticSink
}

// ScopeOption configures a LifetimeScope at construction (spec.md §2.2): a
// functional-options surface, not a builder object, so callers compose only
// what they need.
type ScopeOption interface {
	apply(*scopeConfig)
}

type scopeOptionFunc func(*scopeConfig)

func (f scopeOptionFunc) apply(cfg *scopeConfig) { f(cfg) }

// WithTag assigns a comparable tag to a scope, consulted by
// MatchingScopeLifetime and checked for uniqueness against non-anonymous
// ancestor tags when the scope begins.
func WithTag(tag any) ScopeOption {
	return scopeOptionFunc(func(cfg *scopeConfig) { cfg.tag = tag })
}

// WithDiagnosticSink attaches a DiagnosticSink to a scope. Child scopes that
// do not supply their own inherit the parent's sink.
func WithDiagnosticSink(sink DiagnosticSink) ScopeOption {
	return scopeOptionFunc(func(cfg *scopeConfig) { cfg.sink = sink })
}

// NewLifetimeScope creates a root LifetimeScope whose Registry holds only
// the scope's self-registration.
func NewLifetimeScope(opts ...ScopeOption) *LifetimeScope {
	cfg := &scopeConfig{sink: NoopDiagnosticSink{}}
	for _, opt := range opts {
		opt.apply(cfg)
	}

	s := &LifetimeScope{
		id:        uuid.NewString(),
		tag:       cfg.tag,
		anonymous: cfg.tag == nil,
		registry:  NewRegistry(),
		shared:    NewSharedInstanceStore(),
		disposer_: NewDisposer(),
		diagSink:  cfg.sink,
	}
	s.root = s
	s.registerSelf()
	return s
}

// registerSelf adds the well-known self-registration so that resolving
// Service{Type: LifetimeScopeType} from any scope yields that scope (spec.md
// §3 invariant).
func (s *LifetimeScope) registerSelf() {
	s.registry.Add(&Registration{
		ID:       selfRegistrationID,
		Services: []Service{{Type: LifetimeScopeType}},
		Activator: ActivatorFunc(func(scope *LifetimeScope, _ []Parameter) (any, error) {
			return scope, nil
		}),
		Lifetime:  CurrentScopeLifetime(),
		Sharing:   SharingShared,
		Ownership: ExternallyOwned,
	})
}

// BeginChild begins an ordinary child scope: its Registry inherits the
// parent's by reference, overlaid with whatever configure adds (spec.md
// §4.3).
func (s *LifetimeScope) BeginChild(configure func(*Registry), opts ...ScopeOption) (*LifetimeScope, error) {
	return s.beginChild(false, configure, opts...)
}

// BeginIsolatedChild begins an isolated child scope: its Registry reaches
// the nearest ancestor registry with local registrations instead of its
// direct parent's, and inherits only that registry's adapter sources, so
// registrations added after this call to intervening ancestors (those that
// had no local registrations) are invisible to it (spec.md §4.3).
func (s *LifetimeScope) BeginIsolatedChild(configure func(*Registry), opts ...ScopeOption) (*LifetimeScope, error) {
	return s.beginChild(true, configure, opts...)
}

func (s *LifetimeScope) beginChild(isolated bool, configure func(*Registry), opts ...ScopeOption) (*LifetimeScope, error) {
	if s.IsDisposed() {
		return nil, ErrScopeDisposed
	}

	cfg := &scopeConfig{sink: s.diagSink}
	for _, opt := range opts {
		opt.apply(cfg)
	}

	if cfg.tag != nil {
		if err := s.checkTagUnique(cfg.tag); err != nil {
			return nil, err
		}
	}

	var reg *Registry
	if isolated {
		reg = isolatedChildRegistry(mostNestedAncestorWithLocal(s.registry))
	} else {
		reg = childRegistry(s.registry)
	}

	child := &LifetimeScope{
		id:        uuid.NewString(),
		tag:       cfg.tag,
		anonymous: cfg.tag == nil,
		parent:    s,
		root:      s.root,
		registry:  reg,
		shared:    NewSharedInstanceStore(),
		disposer_: NewDisposer(),
		diagSink:  cfg.sink,
	}

	if configure != nil {
		configure(reg)
	}

	s.scopeBeginning.Publish(&ScopeBeginningEvent{Parent: s, Child: child})
	return child, nil
}

// mostNestedAncestorWithLocal walks r and its ancestry (following a direct
// parent reference or, across an isolation boundary, mostNestedAncestor) for
// the first registry carrying local registrations, falling back to the
// furthest ancestor reached if none do.
func mostNestedAncestorWithLocal(r *Registry) *Registry {
	cur := r
	for {
		if cur.hasLocal() {
			return cur
		}
		next := cur.parent
		if next == nil {
			next = cur.mostNestedAncestor
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

// checkTagUnique fails with ErrDuplicateTag if tag already names a
// non-anonymous ancestor of s (spec.md §4.3).
func (s *LifetimeScope) checkTagUnique(tag any) error {
	for cur := s; cur != nil; cur = cur.parent {
		if !cur.anonymous && cur.tag == tag {
			return ErrDuplicateTag
		}
	}
	return nil
}

// ID returns this scope's unique identifier.
func (s *LifetimeScope) ID() string { return s.id }

// Tag returns the tag this scope was given, or nil if it is anonymous.
func (s *LifetimeScope) Tag() any { return s.tag }

// Parent returns the scope that began s, or nil for a root scope.
func (s *LifetimeScope) Parent() *LifetimeScope { return s.parent }

// Root returns the root of s's scope tree (s itself, if s is a root).
func (s *LifetimeScope) Root() *LifetimeScope {
	if s.root != nil {
		return s.root
	}
	return s
}

// IsDisposed reports whether Dispose or DisposeAsync has completed for s or
// any ancestor of s: a scope is unusable once it, or the scope that began
// it, has been disposed (spec.md §7: ScopeDisposed covers "attempt to use a
// scope (or ancestor) after disposal").
func (s *LifetimeScope) IsDisposed() bool {
	for cur := s; cur != nil; cur = cur.parent {
		if atomic.LoadInt32(&cur.disposed) == 1 {
			return true
		}
	}
	return false
}

// Resolve looks up the first registration for service in s's Registry and
// runs it through a new ResolveOperation, returning
// PipelineCompletedWithNoInstanceError if nothing is registered.
func (s *LifetimeScope) Resolve(service Service, params ...Parameter) (any, error) {
	reg := s.registry.First(service)
	if reg == nil {
		return nil, &PipelineCompletedWithNoInstanceError{Service: service}
	}
	return s.runOperation(NewResolveRequest(service, reg, params...))
}

// TryResolve is the fallible counterpart to Resolve: ok is false, with a nil
// error, both when nothing is registered and when the first registration's
// lifetime policy finds no owning scope.
func (s *LifetimeScope) TryResolve(service Service, params ...Parameter) (any, bool, error) {
	reg := s.registry.First(service)
	if reg == nil {
		return nil, false, nil
	}
	instance, err := s.runOperation(NewResolveRequest(service, reg, params...).NonRequired())
	if err != nil {
		return nil, false, err
	}
	return instance, instance != nil, nil
}

// ResolveRequest runs a fully-formed ResolveRequest (naming its own
// Registration rather than one looked up from s's Registry) through a new
// ResolveOperation. Hosts that have already chosen among multiple
// registrations for a service use this directly.
func (s *LifetimeScope) ResolveRequest(req ResolveRequest) (any, error) {
	return s.runOperation(req)
}

func (s *LifetimeScope) runOperation(req ResolveRequest) (any, error) {
	if s.IsDisposed() {
		return nil, ErrScopeDisposed
	}

	op := newResolveOperation(s)
	s.operationBeginning.Publish(&OperationBeginningEvent{Scope: s, Operation: op})
	return op.Execute(req)
}

// TryGetSharedInstance returns the cached shared instance for registration
// id in s's own store, without triggering activation.
func (s *LifetimeScope) TryGetSharedInstance(id string) (any, bool) {
	return s.shared.TryGet(id)
}

// Dispose drains s's disposer in reverse-registration order and clears its
// shared-instance store. Safe to call more than once; only the first call
// has effect (spec.md §4.2).
func (s *LifetimeScope) Dispose() error {
	if !atomic.CompareAndSwapInt32(&s.disposed, 0, 1) {
		return nil
	}
	s.scopeEnding.Publish(&ScopeEndingEvent{Scope: s})
	err := s.disposer_.Dispose()
	s.shared.Clear()
	return err
}

// DisposeAsync is the context-aware counterpart to Dispose, awaiting each
// AsyncDisposable entry's CloseAsync with ctx.
func (s *LifetimeScope) DisposeAsync(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.disposed, 0, 1) {
		return nil
	}
	s.scopeEnding.Publish(&ScopeEndingEvent{Scope: s})
	err := s.disposer_.DisposeAsync(ctx)
	s.shared.Clear()
	return err
}

// OnScopeBeginning subscribes to every child-scope-beginning event published
// by s.
func (s *LifetimeScope) OnScopeBeginning(fn func(*ScopeBeginningEvent)) {
	s.scopeBeginning.Subscribe(fn)
}

// OnScopeEnding subscribes to s's own scope-ending event.
func (s *LifetimeScope) OnScopeEnding(fn func(*ScopeEndingEvent)) {
	s.scopeEnding.Subscribe(fn)
}

// OnOperationBeginning subscribes to every operation s initiates.
func (s *LifetimeScope) OnOperationBeginning(fn func(*OperationBeginningEvent)) {
	s.operationBeginning.Subscribe(fn)
}

// sharedInstances returns s's shared-instance store, for the sharing
// middleware.
func (s *LifetimeScope) sharedInstances() *SharedInstanceStore { return s.shared }

// disposer returns s's disposer, for the activation middleware.
func (s *LifetimeScope) disposer() *Disposer { return s.disposer_ }

// diagnosticSink returns s's configured sink, or NoopDiagnosticSink if none
// was configured.
func (s *LifetimeScope) diagnosticSink() DiagnosticSink {
	if s.diagSink == nil {
		return NoopDiagnosticSink{}
	}
	return s.diagSink
}

// publishRequestBeginning publishes a request-beginning event, used by
// ResolveOperation just before a request's pipeline runs.
func (s *LifetimeScope) publishRequestBeginning(evt *RequestBeginningEvent) {
	s.requestBeginning.Publish(evt)
}

// publishOperationEnding publishes an operation-ending event, used by
// ResolveOperation.Execute exactly once.
func (s *LifetimeScope) publishOperationEnding(evt *OperationEndingEvent) {
	s.operationEnding.Publish(evt)
}
