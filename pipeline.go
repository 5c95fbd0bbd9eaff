package scopedi

import "sort"

// Phase orders the stages a resolve request flows through (C8, spec.md
// §4.8). Phases are monotonic: RequestContext.PhaseReached only ever
// advances to a higher Phase as a request's pipeline traversal proceeds.
type Phase int

const (
	// PhaseRequestStart marks the beginning of a request's pipeline
	// traversal.
	PhaseRequestStart Phase = iota + 1
	// PhaseScopeSelection consults the registration's lifetime policy and
	// picks the scope that will own any shared instance.
	PhaseScopeSelection
	// PhaseDecoration is the outer wrap pass: its middleware calls next()
	// first (running every inner phase, including activation), then applies
	// decorators to the resulting instance once next() returns.
	PhaseDecoration
	// PhaseSharing consults and populates the shared-instance store.
	PhaseSharing
	// PhaseServicePipeline frames service-wide middleware (middleware that
	// applies to every registration providing a given service).
	PhaseServicePipeline
	// PhaseRegistrationPipeline frames registration-specific middleware.
	PhaseRegistrationPipeline
	// PhaseActivation runs the registration's activator and sets the
	// request's instance.
	PhaseActivation
)

// Middleware is one stage in the resolve pipeline. Execute may mutate ctx
// and choose whether to call next — not calling it short-circuits every
// inner phase.
type Middleware interface {
	Phase() Phase
	Execute(ctx *RequestContext, next func(*RequestContext) error) error
}

// middlewareFunc adapts a phase and a function into a Middleware.
type middlewareFunc struct {
	phase Phase
	fn    func(ctx *RequestContext, next func(*RequestContext) error) error
}

func (m middlewareFunc) Phase() Phase { return m.phase }

func (m middlewareFunc) Execute(ctx *RequestContext, next func(*RequestContext) error) error {
	return m.fn(ctx, next)
}

// NewMiddleware builds a Middleware from a phase and an execute function,
// for host-supplied service-wide or registration-specific stages.
func NewMiddleware(phase Phase, fn func(ctx *RequestContext, next func(*RequestContext) error) error) Middleware {
	return middlewareFunc{phase: phase, fn: fn}
}

// Pipeline is an ordered composition of middleware, sorted by Phase once at
// construction time. It is not precomposed: Invoke walks the sorted list by
// index and builds the next callback for each stage as it reaches it, so
// every invocation allocates one small closure per stage.
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline sorts middlewares by phase (stable within phase, preserving
// the order they were passed in) and returns a ready-to-invoke Pipeline.
func NewPipeline(middlewares ...Middleware) *Pipeline {
	ordered := make([]Middleware, len(middlewares))
	copy(ordered, middlewares)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Phase() < ordered[j].Phase()
	})
	return &Pipeline{middlewares: ordered}
}

// With returns a new Pipeline carrying p's middlewares plus extra, re-sorted
// by phase. Lets a registration attach service-wide or registration-specific
// middleware (PhaseServicePipeline / PhaseRegistrationPipeline) on top of
// DefaultPipeline() without having to rebuild the built-in stages by hand.
func (p *Pipeline) With(extra ...Middleware) *Pipeline {
	combined := make([]Middleware, 0, len(p.middlewares)+len(extra))
	combined = append(combined, p.middlewares...)
	combined = append(combined, extra...)
	return NewPipeline(combined...)
}

// Invoke runs the pipeline against ctx, starting from the first middleware.
func (p *Pipeline) Invoke(ctx *RequestContext) error {
	return p.invokeFrom(ctx, 0)
}

func (p *Pipeline) invokeFrom(ctx *RequestContext, index int) error {
	if index >= len(p.middlewares) {
		return nil
	}

	mw := p.middlewares[index]
	ctx.advancePhase(mw.Phase())

	return mw.Execute(ctx, func(ctx *RequestContext) error {
		return p.invokeFrom(ctx, index+1)
	})
}

var defaultPipeline = NewPipeline(
	requestStartMiddleware(),
	scopeSelectionMiddleware(),
	decorationMiddleware(),
	sharingMiddleware(),
	framingMiddleware(PhaseServicePipeline),
	framingMiddleware(PhaseRegistrationPipeline),
	activationMiddleware(),
)

// DefaultPipeline returns the standard scope-selection -> decoration ->
// sharing -> activation pipeline every registration uses unless it supplies
// its own.
func DefaultPipeline() *Pipeline {
	return defaultPipeline
}

// requestStartMiddleware is a pass-through marker for PhaseRequestStart.
func requestStartMiddleware() Middleware {
	return NewMiddleware(PhaseRequestStart, func(ctx *RequestContext, next func(*RequestContext) error) error {
		return next(ctx)
	})
}

// framingMiddleware is a pass-through marker for a framing phase
// (PhaseServicePipeline / PhaseRegistrationPipeline) with no host-supplied
// stages attached.
func framingMiddleware(phase Phase) Middleware {
	return NewMiddleware(phase, func(ctx *RequestContext, next func(*RequestContext) error) error {
		return next(ctx)
	})
}

// scopeSelectionMiddleware consults the registration's lifetime policy and
// routes the request to the scope that should own its shared instance
// (spec.md §4.8).
func scopeSelectionMiddleware() Middleware {
	return NewMiddleware(PhaseScopeSelection, func(ctx *RequestContext, next func(*RequestContext) error) error {
		policy := ctx.Registration.Lifetime
		if policy == nil {
			policy = CurrentScopeLifetime()
		}

		if ctx.Required {
			selected, err := policy.FindScope(ctx.ActivationScope)
			if err != nil {
				return &ScopeSelectionError{
					Service:  ctx.Service,
					Services: ctx.Registration.Services,
					Cause:    err,
				}
			}
			ctx.ChangeScope(selected)
			return next(ctx)
		}

		selected, ok := policy.TryFindScope(ctx.ActivationScope)
		if !ok {
			// Non-required request whose lifetime policy does not match:
			// short-circuit without setting an instance and without
			// raising (spec.md §4.8, §9).
			return nil
		}
		ctx.ChangeScope(selected)
		return next(ctx)
	})
}

// sharingMiddleware consults and populates the shared-instance store of the
// selected scope when the registration's sharing mode is Shared (spec.md
// §4.8).
func sharingMiddleware() Middleware {
	return NewMiddleware(PhaseSharing, func(ctx *RequestContext, next func(*RequestContext) error) error {
		if ctx.Registration.Sharing != SharingShared {
			return next(ctx)
		}

		store := ctx.ActivationScope.sharedInstances()
		canonical, err := store.GetOrCreate(ctx.Registration.ID, ctx.Registration.Qualifier, ctx.Service, func() (any, error) {
			if err := next(ctx); err != nil {
				return nil, err
			}
			// If next() returned with ctx.Instance() still nil, the
			// creator yields nil and sharing is not recorded (spec.md
			// §4.8).
			return ctx.Instance(), nil
		})
		if err != nil {
			return err
		}
		if canonical == nil {
			return nil
		}
		return ctx.SetInstance(canonical)
	})
}

// decorationMiddleware is the outer wrap pass: it calls next() first (so
// every inner phase, including activation, runs), then applies any
// decorators registered for ctx.Service to the resulting instance, in
// registration order (spec.md §4.8, §4.9).
func decorationMiddleware() Middleware {
	return NewMiddleware(PhaseDecoration, func(ctx *RequestContext, next func(*RequestContext) error) error {
		if err := next(ctx); err != nil {
			return err
		}

		current := ctx.Instance()
		if current == nil {
			return nil
		}

		decorators := ctx.Registration.Decorators
		if len(decorators) == 0 {
			return nil
		}

		decoratorCtx := newDecoratorContext(ctx.Service)
		for _, decoratorReg := range decorators {
			decoratorReq := NewResolveRequest(ctx.Service, decoratorReg, ctx.Parameters()...).WithDecoratorTarget(current)

			decorated, err := ctx.Operation.GetOrCreateInstance(ctx.ActivationScope, decoratorReq)
			if err != nil {
				return err
			}

			current = decorated
			decoratorService := ctx.Service
			if len(decoratorReg.Services) > 0 {
				decoratorService = decoratorReg.Services[0]
			}
			decoratorCtx.apply(decoratorService, current)
		}

		ctx.decoratorContext = decoratorCtx
		return ctx.SetInstance(current)
	})
}

// activationMiddleware runs the registration's activator, sets ctx.Instance,
// and — for owned, disposable instances — registers the instance with the
// selected scope's disposer (spec.md §4.8).
func activationMiddleware() Middleware {
	return NewMiddleware(PhaseActivation, func(ctx *RequestContext, next func(*RequestContext) error) error {
		params := ctx.Parameters()
		if target := ctx.DecoratorTarget(); target != nil {
			params = append(append([]Parameter{}, params...), NamedParameter(DecoratorTargetParameterTag, target))
		}

		instance, err := ctx.Registration.Activator.Activate(ctx.ActivationScope, params)
		if err != nil {
			return err
		}

		if instance == nil {
			return next(ctx)
		}

		if err := ctx.SetInstance(instance); err != nil {
			return err
		}

		if ctx.Registration.Ownership == OwnedByLifetimeScope {
			_ = ctx.ActivationScope.disposer().Add(instance)
		}

		return next(ctx)
	})
}
