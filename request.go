package scopedi

// ResolveRequest is the input to a resolve: the service being asked for, the
// registration chosen to satisfy it, the parameters to supply its activator,
// and — when this request represents a decorator layer — the previously
// activated instance it wraps (spec.md §3).
type ResolveRequest struct {
	Service      Service
	Registration *Registration
	Parameters   []Parameter

	// DecoratorTarget is non-nil when this request represents a decorator
	// layer wrapping a previously activated instance.
	DecoratorTarget any

	// Required marks whether a failure to satisfy this request should raise
	// an error (true) or short-circuit silently (false), per spec.md §4.8.
	Required bool
}

// NewResolveRequest builds a required ResolveRequest for the given service
// and registration.
func NewResolveRequest(service Service, registration *Registration, params ...Parameter) ResolveRequest {
	return ResolveRequest{
		Service:      service,
		Registration: registration,
		Parameters:   params,
		Required:     true,
	}
}

// NonRequired returns a copy of the request marked non-required.
func (r ResolveRequest) NonRequired() ResolveRequest {
	r.Required = false
	return r
}

// WithDecoratorTarget returns a copy of the request wrapping target.
func (r ResolveRequest) WithDecoratorTarget(target any) ResolveRequest {
	r.DecoratorTarget = target
	return r
}
