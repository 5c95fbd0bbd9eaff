package scopedi

import (
	"errors"
	"fmt"
	"testing"
)

func TestCircularDependencyError_Error(t *testing.T) {
	svc := Service{Type: nil, Key: "leaf"}
	err := &CircularDependencyError{
		Service: svc,
		Chain:   []Service{{Key: "a"}, {Key: "b"}},
	}

	msg := err.Error()
	if msg == "" {
		t.Fatal("expected a non-empty message")
	}
}

func TestIsCircularDependency(t *testing.T) {
	err := &CircularDependencyError{Service: Service{Key: "x"}}
	if !IsCircularDependency(err) {
		t.Error("expected IsCircularDependency to report true for a *CircularDependencyError")
	}
	if !IsCircularDependency(fmt.Errorf("wrapped: %w", err)) {
		t.Error("expected IsCircularDependency to see through fmt.Errorf wrapping")
	}
	if IsCircularDependency(errors.New("unrelated")) {
		t.Error("expected IsCircularDependency to report false for an unrelated error")
	}
}

func TestIsScopeDisposed(t *testing.T) {
	if !IsScopeDisposed(ErrScopeDisposed) {
		t.Error("expected IsScopeDisposed to report true for ErrScopeDisposed")
	}
	if !IsScopeDisposed(fmt.Errorf("wrapped: %w", ErrScopeDisposed)) {
		t.Error("expected IsScopeDisposed to see through wrapping")
	}
	if IsScopeDisposed(ErrOperationDisposed) {
		t.Error("expected IsScopeDisposed to report false for a different sentinel")
	}
}

func TestDependencyResolutionError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &DependencyResolutionError{Message: "failed", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find cause through Unwrap")
	}
}

func TestScopeSelectionError_Unwrap(t *testing.T) {
	cause := &MatchingScopeNotFoundError{SearchedTags: []any{"tenant"}}
	err := &ScopeSelectionError{
		Service:  Service{Key: "svc"},
		Services: []Service{{Key: "svc"}},
		Cause:    cause,
	}

	var target *MatchingScopeNotFoundError
	if !errors.As(err, &target) {
		t.Error("expected errors.As to find the MatchingScopeNotFoundError through Unwrap")
	}
}

func TestIsSelfConstructing(t *testing.T) {
	err := &SelfConstructingDependencyError{Service: Service{Key: "singleton"}}
	if !IsSelfConstructing(err) {
		t.Error("expected IsSelfConstructing to report true")
	}
	if IsSelfConstructing(errors.New("other")) {
		t.Error("expected IsSelfConstructing to report false for an unrelated error")
	}
}
