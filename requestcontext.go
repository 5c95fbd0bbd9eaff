package scopedi

import "sync"

// RequestContext encapsulates one request's mutable state as it travels
// through the resolve pipeline (C7, spec.md §3, §4.7).
type RequestContext struct {
	Operation      *ResolveOperation
	ActivationScope *LifetimeScope
	Registration   *Registration
	Service        Service
	Required       bool

	parametersMu sync.RWMutex
	parameters   []Parameter

	instanceMu sync.RWMutex
	instance   any

	phaseMu      sync.Mutex
	phaseReached Phase

	decoratorTarget  any
	decoratorContext *DecoratorContext

	DiagnosticSink DiagnosticSink

	completingMu       sync.Mutex
	completingHandlers []func(*RequestCompletingEvent)
	completed          bool
}

// newRequestContext builds the context for one request within op.
func newRequestContext(op *ResolveOperation, req ResolveRequest, startingScope *LifetimeScope, sink DiagnosticSink) *RequestContext {
	ctx := &RequestContext{
		Operation:       op,
		ActivationScope: startingScope,
		Registration:    req.Registration,
		Service:         req.Service,
		Required:        req.Required,
		parameters:      append([]Parameter(nil), req.Parameters...),
		decoratorTarget: req.DecoratorTarget,
		DiagnosticSink:  sink,
	}
	if req.DecoratorTarget != nil {
		ctx.decoratorContext = newDecoratorContext(req.Service)
	}
	return ctx
}

// ChangeScope updates the scope this request activates against, used by
// scope-selection middleware once a lifetime policy has chosen an owner.
func (c *RequestContext) ChangeScope(scope *LifetimeScope) {
	c.instanceMu.Lock()
	defer c.instanceMu.Unlock()
	c.ActivationScope = scope
}

// Parameters returns a copy of the request's current parameters.
func (c *RequestContext) Parameters() []Parameter {
	c.parametersMu.RLock()
	defer c.parametersMu.RUnlock()
	out := make([]Parameter, len(c.parameters))
	copy(out, c.parameters)
	return out
}

// ChangeParameters replaces the request's parameters.
func (c *RequestContext) ChangeParameters(params []Parameter) {
	c.parametersMu.Lock()
	defer c.parametersMu.Unlock()
	c.parameters = append([]Parameter(nil), params...)
}

// Instance returns the instance activated so far, or nil.
func (c *RequestContext) Instance() any {
	c.instanceMu.RLock()
	defer c.instanceMu.RUnlock()
	return c.instance
}

// SetInstance sets the activated instance. It rejects nil, so once set
// non-nil the instance can never be reset to nil (spec.md §3 invariant):
// passing nil returns ErrNilInstance and leaves the prior value untouched.
func (c *RequestContext) SetInstance(instance any) error {
	c.instanceMu.Lock()
	defer c.instanceMu.Unlock()

	if instance == nil {
		return ErrNilInstance
	}
	c.instance = instance
	return nil
}

// PhaseReached returns the furthest phase this request's pipeline traversal
// has reached.
func (c *RequestContext) PhaseReached() Phase {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.phaseReached
}

// advancePhase moves phaseReached forward to phase. Phases only ever
// advance (spec.md §3 invariant).
func (c *RequestContext) advancePhase(phase Phase) {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	if phase > c.phaseReached {
		c.phaseReached = phase
	}
}

// NewInstanceActivated reports whether an instance is set and the activation
// phase is the furthest phase reached (spec.md §4.7).
func (c *RequestContext) NewInstanceActivated() bool {
	return c.Instance() != nil && c.PhaseReached() == PhaseActivation
}

// DecoratorTarget returns the instance this request decorates, or nil if
// this request is not a decorator layer.
func (c *RequestContext) DecoratorTarget() any {
	return c.decoratorTarget
}

// DecoratorContext returns the decorator context tracking this request's
// decoration chain: for a request whose registration has decorators, the
// chain applied once decoration has run; for a decorator-layer request, the
// context created with it; nil otherwise.
func (c *RequestContext) DecoratorContext() *DecoratorContext {
	return c.decoratorContext
}

// OnCompleting registers a handler to run exactly once when completeRequest
// fires.
func (c *RequestContext) OnCompleting(handler func(*RequestCompletingEvent)) {
	c.completingMu.Lock()
	defer c.completingMu.Unlock()
	c.completingHandlers = append(c.completingHandlers, handler)
}

// completeRequest fires every registered completing handler exactly once.
func (c *RequestContext) completeRequest() {
	c.completingMu.Lock()
	if c.completed {
		c.completingMu.Unlock()
		return
	}
	c.completed = true
	handlers := make([]func(*RequestCompletingEvent), len(c.completingHandlers))
	copy(handlers, c.completingHandlers)
	c.completingMu.Unlock()

	event := &RequestCompletingEvent{Context: c}
	for _, h := range handlers {
		h(event)
	}
}
