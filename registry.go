package scopedi

import "sync"

// Registry is the minimal in-memory store of registrations a LifetimeScope
// consults to answer a Service request. It is intentionally dumb — no
// reflection, no fluent builder — because the real registration-builder DSL
// is out of scope for this module (spec.md §1); Registry only needs to give
// the resolution engine something to walk.
//
// A non-isolated child scope's registry points back at its parent's registry
// (spec.md §4.3: "child inherits this scope's registry by reference") and
// only stores the registrations added by the child's own configure step. An
// isolated child's registry instead falls back to mostNestedAncestor: the
// nearest ancestor registry that had local registrations when the child
// began, with deeper ancestors reached transitively through it (spec.md
// §4.3).
type Registry struct {
	mu      sync.RWMutex
	local   map[Service][]*Registration
	sources []RegistrationSource

	parent           *Registry // non-nil for an ordinary (non-isolated) child
	mostNestedAncestor *Registry // non-nil for an isolated child
}

// NewRegistry creates an empty root registry.
func NewRegistry() *Registry {
	return &Registry{local: make(map[Service][]*Registration)}
}

// childRegistry builds the registry for an ordinary begin-child call.
func childRegistry(parent *Registry) *Registry {
	return &Registry{
		local:   make(map[Service][]*Registration),
		sources: adapterSourcesOf(parent),
		parent:  parent,
	}
}

// isolatedChildRegistry builds the registry for a begin-isolated-child call,
// falling back to the given ancestor (the most-nested one with local
// components) instead of the direct parent, and inheriting only that
// ancestor's adapter sources (spec.md §4.3).
func isolatedChildRegistry(mostNestedAncestor *Registry) *Registry {
	return &Registry{
		local:              make(map[Service][]*Registration),
		sources:            adapterSourcesOf(mostNestedAncestor),
		mostNestedAncestor: mostNestedAncestor,
	}
}

// adapterSourcesOf collects the sources of r (and, transitively, of its
// ancestry) that are safe to inherit into an isolated scope: only those
// flagged IsAdapterForIndividualComponents (spec.md §4.3).
func adapterSourcesOf(r *Registry) []RegistrationSource {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RegistrationSource, 0, len(r.sources))
	for _, src := range r.sources {
		if src.IsAdapterForIndividualComponents() {
			out = append(out, src)
		}
	}
	return out
}

// Add registers reg under every service it provides.
func (r *Registry) Add(reg *Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, svc := range reg.Services {
		r.local[svc] = append(r.local[svc], reg)
	}
}

// AddSource attaches a dynamic RegistrationSource to this registry.
func (r *Registry) AddSource(src RegistrationSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, src)
}

// hasLocal reports whether this registry has any directly-added
// registrations, used to find "the most-nested ancestor with local
// components" (spec.md §4.3).
func (r *Registry) hasLocal() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.local) > 0
}

// RegistrationsFor returns every registration that can satisfy svc, checking
// this registry's local overlay, then its sources, then falling back to its
// parent or most-nested ancestor.
func (r *Registry) RegistrationsFor(svc Service) []*Registration {
	r.mu.RLock()
	local := r.local[svc]
	sources := r.sources
	parent := r.parent
	mostNested := r.mostNestedAncestor
	r.mu.RUnlock()

	if len(local) > 0 {
		out := make([]*Registration, len(local))
		copy(out, local)
		return out
	}

	for _, src := range sources {
		regs, err := src.RegistrationsFor(svc, r)
		if err == nil && len(regs) > 0 {
			return regs
		}
	}

	if parent != nil {
		return parent.RegistrationsFor(svc)
	}
	if mostNested != nil {
		return mostNested.RegistrationsFor(svc)
	}
	return nil
}

// First returns the first registration for svc, or nil if none is
// registered.
func (r *Registry) First(svc Service) *Registration {
	regs := r.RegistrationsFor(svc)
	if len(regs) == 0 {
		return nil
	}
	return regs[0]
}
