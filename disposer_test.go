package scopedi

import (
	"context"
	"errors"
	"testing"
)

type closeRecorder struct {
	name  string
	order *[]string
	err   error
}

func (c *closeRecorder) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

type asyncCloseRecorder struct {
	name  string
	order *[]string
}

func (c *asyncCloseRecorder) CloseAsync(ctx context.Context) error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestDisposer_DisposesInReverseOrder(t *testing.T) {
	d := NewDisposer()
	var order []string

	d.Add(&closeRecorder{name: "first", order: &order})
	d.Add(&closeRecorder{name: "second", order: &order})
	d.Add(&closeRecorder{name: "third", order: &order})

	if err := d.Dispose(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestDisposer_CollectsEveryFailure(t *testing.T) {
	d := NewDisposer()
	var order []string
	errFirst := errors.New("first failed")
	errSecond := errors.New("second failed")

	d.Add(&closeRecorder{name: "a", order: &order, err: errFirst})
	d.Add(&closeRecorder{name: "b", order: &order, err: errSecond})

	err := d.Dispose()
	if err == nil {
		t.Fatal("expected a joined error")
	}
	if !errors.Is(err, errFirst) || !errors.Is(err, errSecond) {
		t.Fatalf("expected both failures to be present, got: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("expected both disposables to run despite the first failing, got %v", order)
	}
}

func TestDisposer_AddAfterDisposeFails(t *testing.T) {
	d := NewDisposer()
	if err := d.Dispose(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := d.Add(&closeRecorder{name: "late"}); !errors.Is(err, ErrDisposerClosed) {
		t.Fatalf("expected ErrDisposerClosed, got %v", err)
	}
}

func TestDisposer_IgnoresNonDisposableValues(t *testing.T) {
	d := NewDisposer()
	if err := d.Add("not a disposable"); err != nil {
		t.Fatalf("expected Add to no-op for non-disposable values, got %v", err)
	}
	if err := d.Dispose(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDisposer_DisposeAsync(t *testing.T) {
	d := NewDisposer()
	var order []string

	d.Add(&asyncCloseRecorder{name: "async-first", order: &order})
	d.Add(&closeRecorder{name: "sync-second", order: &order})

	if err := d.DisposeAsync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"sync-second", "async-first"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected reverse order %v, got %v", want, order)
		}
	}
}
