package scopedi

import (
	"fmt"
	"reflect"
)

// Service identifies what a registration provides and what a resolve request
// asks for. Two services are equal when their Type, Key, and Group all match,
// so Service is safe to use as a map key.
//
// A Service with an empty Key and Group identifies a plain by-type request. A
// non-empty Key identifies a keyed/named request for the same type. A
// non-empty Group identifies membership in a named collection of services
// sharing a type (the core does not enumerate groups itself; that belongs to
// the registration-builder DSL, out of scope per spec.md §1 — Service only
// carries the identity a registration source would use to answer one).
type Service struct {
	Type  reflect.Type
	Key   any
	Group string
}

// Description returns a short human-readable description of the service,
// used in error messages and diagnostic events.
func (s Service) Description() string {
	name := "<nil>"
	if s.Type != nil {
		name = s.Type.String()
	}

	switch {
	case s.Group != "":
		return fmt.Sprintf("%s (group %q)", name, s.Group)
	case s.Key != nil:
		return fmt.Sprintf("%s (key %v)", name, s.Key)
	default:
		return name
	}
}

// String implements fmt.Stringer.
func (s Service) String() string {
	return s.Description()
}

// selfRegistrationID is the well-known registration id under which every
// LifetimeScope registers itself, so that resolving Service{Type: LifetimeScopeType}
// from any scope yields that scope (spec.md §3 invariant).
const selfRegistrationID = "scopedi:self-scope"

// LifetimeScopeType is the reflect.Type of *LifetimeScope, used as the service
// type of the well-known self-registration.
var LifetimeScopeType = reflect.TypeOf((*LifetimeScope)(nil))
