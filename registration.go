package scopedi

// SharingMode controls whether a registration yields the same instance
// within its owning scope or a fresh instance on every resolve (spec.md §3).
type SharingMode int

const (
	// SharingNone produces a new instance on every resolve.
	SharingNone SharingMode = iota
	// SharingShared produces one instance per owning scope, cached by the
	// shared-instance store (C1).
	SharingShared
)

// String implements fmt.Stringer.
func (m SharingMode) String() string {
	switch m {
	case SharingShared:
		return "shared"
	default:
		return "none"
	}
}

// OwnershipMode controls whether a scope's disposer takes responsibility for
// releasing an activated instance (spec.md §3).
type OwnershipMode int

const (
	// OwnedByLifetimeScope means the scope that activates the instance also
	// disposes it, if it is disposable.
	OwnedByLifetimeScope OwnershipMode = iota
	// ExternallyOwned means the core never disposes the instance; the host
	// application owns its lifetime.
	ExternallyOwned
)

// String implements fmt.Stringer.
func (m OwnershipMode) String() string {
	switch m {
	case ExternallyOwned:
		return "externally-owned"
	default:
		return "owned-by-lifetime-scope"
	}
}

// Registration is the immutable binding of one or more services to an
// activator and its resolve pipeline (spec.md §3). Registrations are produced
// by a registration-builder DSL that is out of scope for this module; the
// core only consumes already-built Registration values.
type Registration struct {
	// ID is a stable, globally unique identifier for this registration, used
	// as the key into the shared-instance store (C1).
	ID string

	// Services lists every Service this registration can satisfy.
	Services []Service

	// Activator produces a raw instance given an activation scope and the
	// request's parameters.
	Activator Activator

	// Lifetime decides which ancestor scope owns this registration's shared
	// instance (C4).
	Lifetime ComponentLifetime

	// Sharing controls single-instance-per-owning-scope vs fresh-per-resolve.
	Sharing SharingMode

	// Ownership controls whether the owning scope's disposer releases the
	// instance.
	Ownership OwnershipMode

	// Pipeline is the ordered middleware chain this registration's requests
	// flow through (C8). If nil, DefaultPipeline() is used.
	Pipeline *Pipeline

	// Decorators lists, in registration order, the registrations that
	// decorate the services of this registration (spec.md §4.8, §4.9).
	Decorators []*Registration

	// Qualifier, when non-nil, additionally partitions this registration's
	// shared instance in the store beyond its ID (spec.md §4.1) — used by
	// keyed singleton registrations that share an ID across keys.
	Qualifier any
}

// ProvidesService reports whether the registration declares svc among its
// services.
func (r *Registration) ProvidesService(svc Service) bool {
	for _, s := range r.Services {
		if s == svc {
			return true
		}
	}
	return false
}

// effectivePipeline returns r.Pipeline, or the package default if unset.
func (r *Registration) effectivePipeline() *Pipeline {
	if r.Pipeline != nil {
		return r.Pipeline
	}
	return DefaultPipeline()
}
