package scopedi

import (
	"sync"
	"testing"
)

func TestSharedInstanceStore_GetOrCreate_CachesOneInstance(t *testing.T) {
	store := NewSharedInstanceStore()
	calls := 0

	creator := func() (any, error) {
		calls++
		return &struct{ n int }{n: calls}, nil
	}

	first, err := store.GetOrCreate("svc", nil, Service{Key: "svc"}, creator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := store.GetOrCreate("svc", nil, Service{Key: "svc"}, creator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected the creator to run exactly once, ran %d times", calls)
	}
	if first != second {
		t.Fatal("expected the second GetOrCreate to return the cached instance")
	}
}

func TestSharedInstanceStore_Qualifier_PartitionsKey(t *testing.T) {
	store := NewSharedInstanceStore()

	a, err := store.GetOrCreate("svc", "tenant-a", Service{Key: "svc"}, func() (any, error) {
		return "a-instance", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := store.GetOrCreate("svc", "tenant-b", Service{Key: "svc"}, func() (any, error) {
		return "b-instance", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Fatal("expected different qualifiers to occupy distinct slots")
	}
}

func TestSharedInstanceStore_SelfConstructingDependency(t *testing.T) {
	store := NewSharedInstanceStore()
	svc := Service{Key: "singleton"}

	_, err := store.GetOrCreate("svc", nil, svc, func() (any, error) {
		// The creator recursively resolves its own singleton while running.
		return store.GetOrCreate("svc", nil, svc, func() (any, error) {
			return "unreachable", nil
		})
	})

	if !IsSelfConstructing(err) {
		t.Fatalf("expected a SelfConstructingDependencyError, got %v", err)
	}
}

func TestSharedInstanceStore_CreatorErrorNotCached(t *testing.T) {
	store := NewSharedInstanceStore()
	attempts := 0

	creator := func() (any, error) {
		attempts++
		if attempts == 1 {
			return nil, errBoom
		}
		return "ok", nil
	}

	_, err := store.GetOrCreate("svc", nil, Service{Key: "svc"}, creator)
	if err == nil {
		t.Fatal("expected the first attempt to fail")
	}

	instance, err := store.GetOrCreate("svc", nil, Service{Key: "svc"}, creator)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if instance != "ok" {
		t.Fatalf("expected the retried creator's result, got %v", instance)
	}
}

func TestSharedInstanceStore_ConcurrentReadsAfterCreation(t *testing.T) {
	store := NewSharedInstanceStore()
	if _, err := store.GetOrCreate("svc", nil, Service{Key: "svc"}, func() (any, error) {
		return "shared", nil
	}); err != nil {
		t.Fatalf("unexpected error priming the store: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]any, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, ok := store.TryGet("svc")
			if !ok {
				t.Errorf("expected the primed instance to be found")
				return
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		if r != "shared" {
			t.Fatalf("expected every reader to observe the canonical instance, got %v", r)
		}
	}
}

func TestSharedInstanceStore_Clear(t *testing.T) {
	store := NewSharedInstanceStore()
	store.GetOrCreate("svc", nil, Service{Key: "svc"}, func() (any, error) { return "v", nil })

	store.Clear()

	if _, ok := store.TryGet("svc"); ok {
		t.Fatal("expected Clear to empty the store")
	}
}

var errBoom = &testStoreError{"boom"}

type testStoreError struct{ msg string }

func (e *testStoreError) Error() string { return e.msg }
