package scopedi

import (
	"errors"
	"sync"
)

// ResolveOperation is the unit of work for one top-level LifetimeScope.Resolve
// call: it owns the segmented request stack for every nested request that
// call triggers, and fires completion handlers once the outermost request
// finishes (C6, spec.md §4.6).
type ResolveOperation struct {
	rootScope *LifetimeScope
	scope     *LifetimeScope
	stack     *segmentedStack

	mu                sync.Mutex
	depth             int
	successful        []*RequestContext
	nextCompleteStart int
	initiating        ResolveRequest
	ended             bool
}

// newResolveOperation starts a new operation rooted at scope.
func newResolveOperation(scope *LifetimeScope) *ResolveOperation {
	return &ResolveOperation{
		rootScope: scope,
		scope:     scope,
		stack:     newSegmentedStack(),
	}
}

// RootScope returns the scope the operation was created against.
func (op *ResolveOperation) RootScope() *LifetimeScope { return op.rootScope }

// Depth reports the current nesting depth of in-progress requests.
func (op *ResolveOperation) Depth() int {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.depth
}

// Ended reports whether the operation has completed (successfully or not).
func (op *ResolveOperation) Ended() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.ended
}

// Execute runs the initiating request to completion, wrapping any failure in
// a DependencyResolutionError unless it is already ErrOperationDisposed,
// ErrScopeDisposed, or one of this package's typed errors (spec.md §7).
// Execute may be called at most once per operation.
func (op *ResolveOperation) Execute(req ResolveRequest) (any, error) {
	op.mu.Lock()
	if op.ended {
		op.mu.Unlock()
		return nil, ErrOperationDisposed
	}
	op.initiating = req
	op.mu.Unlock()

	sink := op.scope.diagnosticSink()
	if sink.IsEnabled(DiagnosticOperationStart) {
		sink.OperationStart(op)
	}

	instance, err := op.GetOrCreateInstance(op.scope, req)

	op.mu.Lock()
	op.ended = true
	op.mu.Unlock()

	if err != nil {
		wrapped := wrapExecutionError(req.Service, err)
		if sink.IsEnabled(DiagnosticOperationFailure) {
			sink.OperationFailure(op, wrapped)
		}
		op.scope.publishOperationEnding(&OperationEndingEvent{Operation: op, Err: wrapped})
		return nil, wrapped
	}

	if sink.IsEnabled(DiagnosticOperationSuccess) {
		sink.OperationSuccess(op)
	}
	op.scope.publishOperationEnding(&OperationEndingEvent{Operation: op, Err: nil})
	return instance, nil
}

// GetOrCreateInstance resolves req against scope as a nested request within
// op, raising PipelineCompletedWithNoInstanceError for a required request
// whose pipeline completes without activating an instance. Exported so that
// host-authored service-pipeline or registration-pipeline middleware
// (spec.md §4.6, §8 scenario 4) can push a dependency's own request onto the
// same operation — and therefore the same segmented stack and completion
// wave — rather than starting an unrelated ResolveOperation via
// LifetimeScope.Resolve.
func (op *ResolveOperation) GetOrCreateInstance(scope *LifetimeScope, req ResolveRequest) (any, error) {
	instance, ok, err := op.TryGetOrCreateInstance(scope, req)
	if err != nil {
		return nil, err
	}
	if !ok {
		if req.Required {
			return nil, &PipelineCompletedWithNoInstanceError{Service: req.Service}
		}
		return nil, nil
	}
	return instance, nil
}

// TryGetOrCreateInstance is the fallible counterpart: ok is false when the
// request short-circuited silently (a non-required request whose lifetime
// policy found no matching scope), distinct from err.
func (op *ResolveOperation) TryGetOrCreateInstance(scope *LifetimeScope, req ResolveRequest) (any, bool, error) {
	op.mu.Lock()
	if op.ended {
		op.mu.Unlock()
		return nil, false, ErrOperationDisposed
	}
	op.mu.Unlock()

	reg := req.Registration

	var seg *segmentHandle
	if op.stack.topScope() != scope {
		seg = op.stack.enterSegment()
	}

	if op.stack.containsInCurrentSegment(reg) {
		chain := op.currentSegmentChain()
		if seg != nil {
			seg.close()
		}
		return nil, false, &CircularDependencyError{Service: req.Service, Chain: chain}
	}

	sink := scope.diagnosticSink()
	ctx := newRequestContext(op, req, scope, sink)

	scope.publishRequestBeginning(&RequestBeginningEvent{Operation: op, Context: ctx})
	if sink.IsEnabled(DiagnosticRequestStart) {
		sink.RequestStart(ctx)
	}

	op.mu.Lock()
	op.depth++
	op.mu.Unlock()

	op.stack.push(ctx)
	pipelineErr := reg.effectivePipeline().Invoke(ctx)
	op.stack.pop()

	if seg != nil {
		seg.close()
	}

	op.mu.Lock()
	op.depth--
	depthNow := op.depth
	op.mu.Unlock()

	if pipelineErr != nil {
		if sink.IsEnabled(DiagnosticRequestFailure) {
			sink.RequestFailure(ctx, pipelineErr)
		}
		return nil, false, pipelineErr
	}

	instance := ctx.Instance()
	if instance == nil {
		return nil, false, nil
	}

	if sink.IsEnabled(DiagnosticRequestSuccess) {
		sink.RequestSuccess(ctx)
	}

	op.mu.Lock()
	op.successful = append(op.successful, ctx)
	if depthNow == 0 {
		op.fireCompletionWaveLocked()
	}
	op.mu.Unlock()

	return instance, true, nil
}

// fireCompletionWaveLocked fires completeRequest on every successful request
// that has not completed yet, in the order the requests succeeded (a nested
// dependency before the request that asked for it). Called with op.mu held,
// only once the stack has fully unwound back to depth 0 (spec.md §4.6).
func (op *ResolveOperation) fireCompletionWaveLocked() {
	for i := op.nextCompleteStart; i < len(op.successful); i++ {
		op.successful[i].completeRequest()
	}
	op.nextCompleteStart = len(op.successful)
}

// currentSegmentChain describes the services currently in progress within
// the open segment, in push order, for a CircularDependencyError.
func (op *ResolveOperation) currentSegmentChain() []Service {
	entries := op.stack.sliceFrom(op.stack.currentSegmentStart())
	chain := make([]Service, len(entries))
	for i, ctx := range entries {
		chain[i] = ctx.Service
	}
	return chain
}

// wrapExecutionError wraps err in a DependencyResolutionError unless it is
// already ErrOperationDisposed, ErrScopeDisposed, or one of this package's
// typed errors, which surface unwrapped (spec.md §7).
func wrapExecutionError(service Service, err error) error {
	if errors.Is(err, ErrOperationDisposed) || errors.Is(err, ErrScopeDisposed) {
		return err
	}

	var circ *CircularDependencyError
	var msnf *MatchingScopeNotFoundError
	var noInstance *PipelineCompletedWithNoInstanceError
	var selfConstructing *SelfConstructingDependencyError
	var scopeSelection *ScopeSelectionError
	var resolution *DependencyResolutionError
	switch {
	case errors.As(err, &circ),
		errors.As(err, &msnf),
		errors.As(err, &noInstance),
		errors.As(err, &selfConstructing),
		errors.As(err, &scopeSelection),
		errors.As(err, &resolution):
		return err
	}

	return &DependencyResolutionError{
		Message: "failed to resolve " + service.Description(),
		Cause:   err,
	}
}
