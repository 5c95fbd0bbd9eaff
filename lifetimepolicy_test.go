package scopedi

import "testing"

func TestCurrentScopeLifetime_ReturnsStartingScope(t *testing.T) {
	s := NewLifetimeScope()
	defer s.Dispose()

	found, err := CurrentScopeLifetime().FindScope(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != s {
		t.Error("expected CurrentScopeLifetime to return the starting scope")
	}
}

func TestRootScopeLifetime_ReturnsRoot(t *testing.T) {
	root := NewLifetimeScope()
	defer root.Dispose()

	child, err := root.BeginChild(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	grandchild, err := child.BeginChild(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := RootScopeLifetime().FindScope(grandchild)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != root {
		t.Error("expected RootScopeLifetime to return the tree's root")
	}
}

func TestMatchingScopeLifetime_FindsTaggedAncestor(t *testing.T) {
	root := NewLifetimeScope()
	defer root.Dispose()

	tenantScope, err := root.BeginChild(nil, WithTag("tenant"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requestScope, err := tenantScope.BeginChild(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := MatchingScopeLifetime("tenant").FindScope(requestScope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != tenantScope {
		t.Error("expected MatchingScopeLifetime to find the tagged ancestor")
	}
}

func TestMatchingScopeLifetime_NotFound(t *testing.T) {
	root := NewLifetimeScope()
	defer root.Dispose()

	_, err := MatchingScopeLifetime("absent").FindScope(root)
	if !IsMatchingScopeNotFound(err) {
		t.Fatalf("expected MatchingScopeNotFoundError, got %v", err)
	}

	scope, ok := MatchingScopeLifetime("absent").TryFindScope(root)
	if ok || scope != nil {
		t.Error("expected TryFindScope to report absent without a scope")
	}
}
