// Package atomics provides the low-level primitives shared by the startup
// barrier and by lock strategies: ordered fetch-add, spin-until-equal,
// a prefetch hint and a fixed-count busy delay.
//
// Go's sync/atomic operations are sequentially consistent, which is strictly
// stronger than the acquire and release orderings requested by callers. The
// Order argument is kept so call sites document the ordering they rely on.
package atomics

import (
	"runtime"
	"sync/atomic"
)

// Order names the memory ordering a caller requires from an atomic operation.
type Order int

const (
	// Acquire orders subsequent loads and stores after the operation.
	Acquire Order = iota
	// Release orders preceding loads and stores before the operation.
	Release
)

func (o Order) String() string {
	switch o {
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// yieldEvery is the number of failed polls between scheduler yields in
// SpinWaitUntilEquals. Must be a power of two.
const yieldEvery = 1 << 10

// FetchAdd atomically adds delta to cell and returns the previous value.
func FetchAdd(cell *atomic.Uint64, delta uint64, _ Order) uint64 {
	return cell.Add(delta) - delta
}

// SpinWaitUntilEquals busy-waits until cell holds target.
//
// The loop never blocks on a channel or mutex. Every yieldEvery polls it
// calls runtime.Gosched so that spinning goroutines cannot starve peers that
// have not yet been given a P.
func SpinWaitUntilEquals(cell *atomic.Uint64, target uint64) {
	for spins := uint64(1); cell.Load() != target; spins++ {
		if spins&(yieldEvery-1) == 0 {
			runtime.Gosched()
		}
	}
}

// Prefetch touches the word at p so its cache line is resident before the
// caller operates on it. It has no effect on correctness.
func Prefetch(p *atomic.Uint64) {
	if p == nil {
		return
	}
	_ = p.Load()
}

// sink defeats dead-code elimination of the SpinFor loop.
var sink atomic.Uint64

// SpinFor burns n loop iterations. Elapsed time grows with n; nothing else
// is observable.
func SpinFor(n uint64) {
	var acc uint64
	for i := uint64(0); i < n; i++ {
		acc += i ^ (acc >> 3)
	}
	if acc == 1 {
		sink.Store(acc)
	}
}
