// Package worker implements the per-thread measurement loop.
package worker

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/wesleyorama2/lockhammer/internal/hammer/affinity"
	"github.com/wesleyorama2/lockhammer/internal/hammer/atomics"
	"github.com/wesleyorama2/lockhammer/internal/hammer/barrier"
	"github.com/wesleyorama2/lockhammer/internal/hammer/platform"
	"github.com/wesleyorama2/lockhammer/internal/hammer/strategy"
)

// ErrNoTarget is returned for a context with a zero acquisition target.
// An unbounded loop would never reach DONE.
var ErrNoTarget = errors.New("acquisition target must be greater than zero")

// State is the lifecycle state of a worker.
type State int32

const (
	// StateInit is the state before the worker touches the barrier.
	StateInit State = iota
	// StateBarrierWait covers registration, placement and the rendezvous.
	StateBarrierWait
	// StateRunning is the measured acquire/release loop.
	StateRunning
	// StateDone means all outputs are written.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateBarrierWait:
		return "barrier-wait"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Placement controls how a worker places its own OS thread.
type Placement struct {
	// Pin restricts the thread to the core chosen by the planner.
	Pin bool

	// Realtime requests SCHED_FIFO at platform.FIFOPriority.
	Realtime bool

	// RequireRealtime turns a refused SCHED_FIFO request into a fatal
	// error instead of a warning.
	RequireRealtime bool
}

// ThreadContext is one worker's inputs and output slots.
//
// The controller fills the inputs before spawning the worker. Outputs are
// written only by the worker and must not be read until it has been joined.
type ThreadContext struct {
	// Lock is the strategy under test, shared by all workers.
	Lock strategy.Strategy

	// Barrier is the run's startup barrier, shared by all workers.
	Barrier *barrier.Barrier

	// Planner maps the barrier index to a core.
	Planner affinity.Planner

	// Target is the number of acquisitions to perform.
	Target uint64

	// Hold is the busy-spin count inside the critical section.
	Hold uint64

	// Post is the busy-spin count between acquisitions.
	Post uint64

	// Placement controls affinity and scheduling policy.
	Placement Placement

	// CPUClock reads the calling thread's CPU time in nanoseconds.
	// Defaults to platform.ThreadCPUNanos.
	CPUClock func() int64

	// OnRunning, if set, is called with the barrier index at the
	// BARRIER_WAIT to RUNNING transition, before the first acquisition.
	OnRunning func(seq uint64)

	// Seq is the barrier sequence index.
	Seq uint64

	// Core is the core the worker was placed on.
	Core int

	// Completed is the number of finished acquire/release cycles.
	Completed uint64

	// CPUTime is the thread CPU time spent in the loop, in nanoseconds.
	CPUTime int64

	// Depth is the sum of the depth values returned by Acquire.
	Depth uint64

	// RealtimeErr records a refused SCHED_FIFO request that was not fatal.
	RealtimeErr error

	// Err is a fatal error; the worker skipped its loop.
	Err error

	state atomic.Int32
}

// State returns the current lifecycle state.
func (tc *ThreadContext) State() State {
	return State(tc.state.Load())
}

func (tc *ThreadContext) setState(s State) {
	tc.state.Store(int32(s))
}

// Run executes the worker to completion on a dedicated OS thread.
//
// The goroutine stays locked to its thread and is never unlocked: the
// thread's affinity and scheduling policy have been changed, so the runtime
// must discard it when the goroutine exits rather than reuse it.
func Run(tc *ThreadContext) {
	runtime.LockOSThread()
	tc.setState(StateInit)

	if tc.CPUClock == nil {
		tc.CPUClock = platform.ThreadCPUNanos
	}

	arrived := false
	seq := uint64(0)
	registered := false
	defer func() {
		if r := recover(); r != nil {
			tc.Err = fmt.Errorf("worker %d panicked: %v", tc.Seq, r)
			if registered && !arrived {
				tc.Barrier.Arrive(seq)
			}
		}
		tc.setState(StateDone)
	}()

	tc.setState(StateBarrierWait)
	seq = tc.Barrier.Register()
	registered = true
	tc.Seq = seq
	tc.Core = tc.Planner.WorkerCore(seq)
	tc.Err = tc.place()
	if tc.Err == nil && tc.Target == 0 {
		tc.Err = ErrNoTarget
	}

	tc.Barrier.Arrive(seq)
	arrived = true
	if tc.Err != nil {
		return
	}

	tc.run()
}

// place applies the scheduling policy and affinity for the calling thread.
func (tc *ThreadContext) place() error {
	if tc.Placement.Realtime {
		if err := platform.RequestFIFO(platform.FIFOPriority); err != nil {
			if tc.Placement.RequireRealtime {
				return fmt.Errorf("worker %d: %w", tc.Seq, err)
			}
			tc.RealtimeErr = err
		}
	}
	if tc.Placement.Pin {
		if err := platform.PinThread(tc.Core); err != nil {
			return fmt.Errorf("worker %d: %w", tc.Seq, err)
		}
	}
	return nil
}

// run is the measured loop.
func (tc *ThreadContext) run() {
	var (
		lock      = tc.Lock
		addr      = lock.Addr()
		id        = tc.Seq
		target    = tc.Target
		hold      = tc.Hold
		post      = tc.Post
		completed uint64
		depth     uint64
	)

	if tc.OnRunning != nil {
		tc.OnRunning(id)
	}
	tc.setState(StateRunning)
	start := tc.CPUClock()

	for completed < target {
		atomics.Prefetch(addr)
		depth += lock.Acquire(id)
		atomics.SpinFor(hold)
		lock.Release(id)
		atomics.SpinFor(post)
		completed++
	}

	end := tc.CPUClock()

	tc.Completed = completed
	tc.CPUTime = end - start
	tc.Depth = depth
}
