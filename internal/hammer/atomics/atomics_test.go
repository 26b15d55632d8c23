package atomics

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchAdd_ReturnsPrevious(t *testing.T) {
	var cell atomic.Uint64

	if got := FetchAdd(&cell, 2, Acquire); got != 0 {
		t.Errorf("FetchAdd() = %d, want 0", got)
	}
	if got := FetchAdd(&cell, 2, Acquire); got != 2 {
		t.Errorf("FetchAdd() = %d, want 2", got)
	}
	if got := FetchAdd(&cell, 1, Release); got != 4 {
		t.Errorf("FetchAdd() = %d, want 4", got)
	}
	if got := cell.Load(); got != 5 {
		t.Errorf("cell = %d, want 5", got)
	}
}

func TestFetchAdd_ConcurrentIndicesAreUnique(t *testing.T) {
	const n = 64
	var cell atomic.Uint64
	seen := make([]atomic.Bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := FetchAdd(&cell, 2, Acquire) >> 1
			if seen[idx].Swap(true) {
				t.Errorf("index %d handed out twice", idx)
			}
		}()
	}
	wg.Wait()

	if got := cell.Load(); got != 2*n {
		t.Errorf("cell = %d, want %d", got, 2*n)
	}
}

func TestSpinWaitUntilEquals(t *testing.T) {
	var cell atomic.Uint64
	done := make(chan struct{})

	go func() {
		SpinWaitUntilEquals(&cell, 3)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		time.Sleep(time.Millisecond)
		cell.Add(1)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("SpinWaitUntilEquals did not return after target was reached")
	}
}

func TestSpinWaitUntilEquals_AlreadyEqual(t *testing.T) {
	var cell atomic.Uint64
	SpinWaitUntilEquals(&cell, 0)
}

func TestPrefetch_Nil(t *testing.T) {
	Prefetch(nil)
	var w atomic.Uint64
	w.Store(7)
	Prefetch(&w)
	if got := w.Load(); got != 7 {
		t.Errorf("Prefetch modified its target: %d", got)
	}
}

func TestOrderString(t *testing.T) {
	tests := []struct {
		order Order
		want  string
	}{
		{Acquire, "acquire"},
		{Release, "release"},
		{Order(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.order.String(); got != tt.want {
			t.Errorf("Order(%d).String() = %q, want %q", tt.order, got, tt.want)
		}
	}
}

func BenchmarkSpinFor(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SpinFor(1000)
	}
}
