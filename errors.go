package scopedi

import (
	"errors"
	"fmt"
	"strings"
)

// ========================================
// Core error values (sentinel errors)
// ========================================

var (
	// ErrScopeDisposed is returned when an operation is attempted against a
	// scope (or one of its ancestors) after it has been disposed.
	ErrScopeDisposed = errors.New("scopedi: lifetime scope has been disposed")

	// ErrOperationDisposed is returned when a resolve operation is reused
	// after it has ended.
	ErrOperationDisposed = errors.New("scopedi: resolve operation has ended")

	// ErrDuplicateTag is returned by begin-child when the requested tag
	// already appears on a non-anonymous ancestor.
	ErrDuplicateTag = errors.New("scopedi: tag already used by an ancestor scope")

	// ErrNilInstance is returned when a request context's instance setter is
	// called with nil; instance, once set non-nil, may never regress to nil.
	ErrNilInstance = errors.New("scopedi: instance cannot be set to nil")

	// ErrDisposerClosed is returned by Disposer.Add once the disposer has
	// fully drained.
	ErrDisposerClosed = errors.New("scopedi: disposer has already been drained")
)

// ========================================
// Typed errors
// ========================================

// CircularDependencyError reports that a request's registration is already
// in progress within the current segment of the request stack (spec.md §5,
// §7).
type CircularDependencyError struct {
	Service Service
	Chain   []Service
}

func (e *CircularDependencyError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("scopedi: circular dependency detected for %s", e.Service)
	}

	parts := make([]string, 0, len(e.Chain)+1)
	for _, s := range e.Chain {
		parts = append(parts, s.Description())
	}
	parts = append(parts, e.Service.Description())

	return fmt.Sprintf("scopedi: circular dependency detected: %s", strings.Join(parts, " -> "))
}

// MatchingScopeNotFoundError reports that MatchingScopeLifetime could not
// find an ancestor carrying any of the searched tags (spec.md §4.4, §7).
type MatchingScopeNotFoundError struct {
	SearchedTags []any
}

func (e *MatchingScopeNotFoundError) Error() string {
	tags := make([]string, 0, len(e.SearchedTags))
	for _, t := range e.SearchedTags {
		tags = append(tags, fmt.Sprintf("%v", t))
	}
	return fmt.Sprintf("scopedi: no scope in the ancestry matches any of the tags [%s]", strings.Join(tags, ", "))
}

// PipelineCompletedWithNoInstanceError reports that a required request's
// pipeline returned without ever setting an instance (spec.md §4.6, §7).
type PipelineCompletedWithNoInstanceError struct {
	Service Service
}

func (e *PipelineCompletedWithNoInstanceError) Error() string {
	return fmt.Sprintf("scopedi: pipeline completed without activating an instance for %s", e.Service)
}

// SelfConstructingDependencyError reports that a shared component's activator
// recursively resolved itself during its own construction (spec.md §4.1, §7).
type SelfConstructingDependencyError struct {
	Service Service
}

func (e *SelfConstructingDependencyError) Error() string {
	return fmt.Sprintf("scopedi: %s recursively resolved itself while being constructed", e.Service)
}

// DependencyResolutionError is the umbrella error that every operational
// failure is wrapped in at the ResolveOperation.Execute boundary (spec.md
// §7), unless the failure is already ErrOperationDisposed, ErrScopeDisposed,
// or a typed error from this package (including a DependencyResolutionError),
// in which case it surfaces unwrapped.
type DependencyResolutionError struct {
	Message string
	Cause   error
}

func (e *DependencyResolutionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("scopedi: %s", e.Message)
	}
	return fmt.Sprintf("scopedi: %s: %v", e.Message, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DependencyResolutionError) Unwrap() error {
	return e.Cause
}

// ScopeSelectionError wraps a lifetime-policy failure for a required
// request, naming the requested service and every service of the
// registration (spec.md §4.8).
type ScopeSelectionError struct {
	Service  Service
	Services []Service
	Cause    error
}

func (e *ScopeSelectionError) Error() string {
	names := make([]string, 0, len(e.Services))
	for _, s := range e.Services {
		names = append(names, s.Description())
	}
	return fmt.Sprintf("scopedi: scope selection failed for %s (services: %s): %v",
		e.Service, strings.Join(names, ", "), e.Cause)
}

// Unwrap returns the underlying lifetime-policy failure.
func (e *ScopeSelectionError) Unwrap() error {
	return e.Cause
}

// ========================================
// Error analysis helpers
// ========================================

// IsCircularDependency reports whether err is or wraps a CircularDependencyError.
func IsCircularDependency(err error) bool {
	var circ *CircularDependencyError
	return errors.As(err, &circ)
}

// IsMatchingScopeNotFound reports whether err is or wraps a MatchingScopeNotFoundError.
func IsMatchingScopeNotFound(err error) bool {
	var msnf *MatchingScopeNotFoundError
	return errors.As(err, &msnf)
}

// IsScopeDisposed reports whether err is or wraps ErrScopeDisposed.
func IsScopeDisposed(err error) bool {
	return errors.Is(err, ErrScopeDisposed)
}

// IsOperationDisposed reports whether err is or wraps ErrOperationDisposed.
func IsOperationDisposed(err error) bool {
	return errors.Is(err, ErrOperationDisposed)
}

// IsSelfConstructing reports whether err is or wraps a SelfConstructingDependencyError.
func IsSelfConstructing(err error) bool {
	var self *SelfConstructingDependencyError
	return errors.As(err, &self)
}
