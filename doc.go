// Package scopedi implements the resolution engine at the core of a
// dependency-injection container: a tree of lifetime scopes, a staged
// middleware pipeline that turns a chosen Registration into an instance, and
// the bookkeeping that keeps shared instances, disposal, and decoration
// correct under nested and concurrent resolves.
//
// This package does not include a registration-builder DSL, reflection-based
// constructor activation, or generic resolve helpers — those sit on top of
// it, built against the Activator, RegistrationSource, and DiagnosticSink
// collaborator interfaces this package defines. scopedi is the engine a
// higher-level container is built from, not the container itself.
//
// # Overview
//
// A LifetimeScope owns a Registry, a SharedInstanceStore, and a Disposer.
// Begin a child scope to nest resolution (ordinary children inherit their
// parent's Registry by reference; isolated children skip ancestors that had
// no registrations of their own when the child began, and so miss
// registrations added to those ancestors later):
//
//	root := scopedi.NewLifetimeScope()
//	root.BeginChild(func(r *scopedi.Registry) {
//	    r.Add(myRegistration)
//	})
//
// # Resolving
//
// Resolve looks up the first registration for a Service and runs it through
// a fresh ResolveOperation:
//
//	instance, err := scope.Resolve(scopedi.Service{Type: reflect.TypeOf((*Logger)(nil)).Elem()})
//
// TryResolve is the non-required counterpart: it reports ok=false, with a
// nil error, when nothing is registered or a registration's lifetime policy
// finds no scope to own its instance. ResolveRequest accepts an
// already-chosen Registration directly, for hosts that have already picked
// among several candidates.
//
// # Lifetimes
//
// A Registration's ComponentLifetime decides which ancestor scope owns its
// shared instance: CurrentScopeLifetime (the scope the resolve started
// from), RootScopeLifetime (the scope tree's root), or MatchingScopeLifetime
// (the nearest ancestor carrying one of a set of tags, set with WithTag when
// the scope began).
//
// # Pipeline
//
// Every request flows through an ordered Pipeline of Middleware: scope
// selection, decoration, sharing, and activation are built in by
// DefaultPipeline; a Registration may supply its own Pipeline to add
// service-wide or registration-specific stages at PhaseServicePipeline or
// PhaseRegistrationPipeline.
//
// # Disposal
//
// Disposable and AsyncDisposable instances activated with
// OwnedByLifetimeScope ownership are released by their owning scope's
// Disposer, in reverse-registration order, when the scope is disposed.
//
// # Cycle detection
//
// A ResolveOperation's segmented request stack raises
// CircularDependencyError when a registration already in progress within the
// current segment is requested again, and SharedInstanceStore raises
// SelfConstructingDependencyError when a shared component's own activator
// recursively resolves it.
package scopedi
