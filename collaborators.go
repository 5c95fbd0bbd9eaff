package scopedi

// Activator produces a raw instance from a scope and a parameter set. It is
// the only seam through which this module talks to reflection-based
// constructor invocation, an Out-of-scope concern (spec.md §1); the core
// never inspects a constructor's signature itself.
//
// Activate may return (nil, nil) only when the activator explicitly
// represents an optional binding (spec.md §6).
type Activator interface {
	Activate(scope *LifetimeScope, params []Parameter) (any, error)
}

// ActivatorFunc adapts a plain function to the Activator interface.
type ActivatorFunc func(scope *LifetimeScope, params []Parameter) (any, error)

// Activate implements Activator.
func (f ActivatorFunc) Activate(scope *LifetimeScope, params []Parameter) (any, error) {
	return f(scope, params)
}

// RegistrationAccessor lets a RegistrationSource look up registrations that
// already exist in a registry, so it can answer "what would provide X"
// without recursing into itself (spec.md §6).
type RegistrationAccessor interface {
	RegistrationsFor(service Service) []*Registration
}

// RegistrationSource is a dynamic provider of registrations, consulted by a
// registry when no direct registration answers a service. Out of scope to
// implement (spec.md §1); the core only needs the interface to consult one
// if a host application supplies it.
type RegistrationSource interface {
	RegistrationsFor(service Service, accessor RegistrationAccessor) ([]*Registration, error)

	// IsAdapterForIndividualComponents marks a source that merely adapts
	// existing components (e.g. collection-of-T from T) rather than
	// caching per-service-type state; such sources are safe to inherit into
	// an isolated child registry (spec.md §4.3).
	IsAdapterForIndividualComponents() bool

	// IsPerScope marks a source whose results are scope-specific and must
	// not be shared across sibling scopes.
	IsPerScope() bool
}

// DiagnosticSink is a fire-and-forget, capability-gated observer of
// operation and request lifecycle events (spec.md §6). All methods must
// return without suspending; the core never waits on a sink.
type DiagnosticSink interface {
	// IsEnabled reports whether the sink wants events for the named
	// capability, so the core can skip building event payloads it is sure
	// nobody will read.
	IsEnabled(capability string) bool

	OperationStart(op *ResolveOperation)
	OperationSuccess(op *ResolveOperation)
	OperationFailure(op *ResolveOperation, err error)

	RequestStart(ctx *RequestContext)
	RequestSuccess(ctx *RequestContext)
	RequestFailure(ctx *RequestContext, err error)
}

// Diagnostic capability names, passed to DiagnosticSink.IsEnabled.
const (
	DiagnosticOperationStart   = "operation-start"
	DiagnosticOperationSuccess = "operation-success"
	DiagnosticOperationFailure = "operation-failure"
	DiagnosticRequestStart     = "request-start"
	DiagnosticRequestSuccess   = "request-success"
	DiagnosticRequestFailure   = "request-failure"
)

// NoopDiagnosticSink is a zero-cost DiagnosticSink that reports every
// capability disabled; it is the default sink for a scope that does not
// configure one explicitly.
type NoopDiagnosticSink struct{}

// IsEnabled always returns false.
func (NoopDiagnosticSink) IsEnabled(string) bool { return false }

// OperationStart does nothing.
func (NoopDiagnosticSink) OperationStart(*ResolveOperation) {}

// OperationSuccess does nothing.
func (NoopDiagnosticSink) OperationSuccess(*ResolveOperation) {}

// OperationFailure does nothing.
func (NoopDiagnosticSink) OperationFailure(*ResolveOperation, error) {}

// RequestStart does nothing.
func (NoopDiagnosticSink) RequestStart(*RequestContext) {}

// RequestSuccess does nothing.
func (NoopDiagnosticSink) RequestSuccess(*RequestContext) {}

// RequestFailure does nothing.
func (NoopDiagnosticSink) RequestFailure(*RequestContext, error) {}
