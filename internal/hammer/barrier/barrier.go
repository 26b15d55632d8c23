// Package barrier implements the two-phase startup rendezvous that lines up
// every worker before the measured loop begins.
//
// A single counter, sync, carries both the registration tally (upper bits,
// incremented by 2 per worker) and the release flag (bit 0). The first worker
// to register becomes the marshal: it waits for every follower to report
// ready on the second counter, stamps the common start instant and sets the
// release bit. Followers spin until they observe all registrations plus the
// release bit. Nothing in the protocol blocks in the kernel, so there is no
// wakeup latency to skew the start of the run.
package barrier

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/wesleyorama2/lockhammer/internal/hammer/atomics"
	"github.com/wesleyorama2/lockhammer/internal/hammer/platform"
)

// releaseBit is the low bit of the sync counter.
const releaseBit = 1

// Barrier is the shared state for one run. It cannot be reset; build a new
// one for every run.
type Barrier struct {
	_     cpu.CacheLinePad
	sync  atomic.Uint64
	_     cpu.CacheLinePad
	ready atomic.Uint64
	_     cpu.CacheLinePad

	start   atomic.Int64
	workers uint64
	now     func() int64
}

// New returns a barrier for workers participants using the monotonic clock
// to stamp the start instant.
func New(workers int) *Barrier {
	return NewWithClock(workers, platform.MonotonicNanos)
}

// NewWithClock is New with an explicit start clock.
func NewWithClock(workers int, now func() int64) *Barrier {
	if workers < 0 {
		workers = 0
	}
	return &Barrier{
		workers: uint64(workers),
		now:     now,
	}
}

// Workers returns the number of participants.
func (b *Barrier) Workers() int {
	return int(b.workers)
}

// Register claims the next sequence index. Index 0 is the marshal.
func (b *Barrier) Register() uint64 {
	return atomics.FetchAdd(&b.sync, 2, atomics.Acquire) >> 1
}

// IsMarshal reports whether seq is the marshal's index.
func IsMarshal(seq uint64) bool {
	return seq == 0
}

// followers is the number of participants other than the marshal.
func (b *Barrier) followers() uint64 {
	if b.workers == 0 {
		return 0
	}
	return b.workers - 1
}

// Arrive completes the rendezvous for the worker holding seq and returns
// once the barrier has been released. Callers place themselves (pin
// affinity) between Register and Arrive.
//
// There is no timeout: if a registered participant never arrives, every
// other participant spins forever.
func (b *Barrier) Arrive(seq uint64) {
	if IsMarshal(seq) {
		atomics.SpinWaitUntilEquals(&b.ready, b.followers())
		b.start.Store(b.now())
		atomics.FetchAdd(&b.sync, releaseBit, atomics.Release)
		return
	}

	atomics.FetchAdd(&b.ready, 1, atomics.Release)
	atomics.SpinWaitUntilEquals(&b.sync, b.workers*2|releaseBit)
}

// Start returns the instant the marshal released the barrier, or 0 if it
// has not been released yet.
func (b *Barrier) Start() int64 {
	return b.start.Load()
}

// Registered returns the number of workers that have called Register.
func (b *Barrier) Registered() uint64 {
	return b.sync.Load() >> 1
}

// Ready returns the number of followers that have arrived.
func (b *Barrier) Ready() uint64 {
	return b.ready.Load()
}

// Released reports whether the marshal has set the release bit.
func (b *Barrier) Released() bool {
	return b.sync.Load()&releaseBit != 0
}
