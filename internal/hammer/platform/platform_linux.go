//go:build linux

package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// OnlineCores returns the number of cores the process may run on.
func OnlineCores() int {
	return len(AllowedCPUs())
}

// AllowedCPUs returns the ids of the CPUs in the process affinity mask in
// ascending order. The mask need not start at 0 or be contiguous.
func AllowedCPUs() []int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err == nil {
		if ids := cpuIDs(&set); len(ids) > 0 {
			return ids
		}
	}
	return sequentialCPUs(runtime.NumCPU())
}

func cpuIDs(set *unix.CPUSet) []int {
	ids := make([]int, 0, set.Count())
	for cpu := 0; cpu < 8*int(unsafe.Sizeof(*set)); cpu++ {
		if set.IsSet(cpu) {
			ids = append(ids, cpu)
		}
	}
	return ids
}

// PinThread restricts the calling OS thread to a single core.
// The caller must hold runtime.LockOSThread.
func PinThread(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity(core %d): %w", core, err)
	}
	return nil
}

// RequestFIFO switches the calling OS thread to SCHED_FIFO at priority.
// Unprivileged processes normally get EPERM.
func RequestFIFO(priority int) error {
	attr := unix.SchedAttr{
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(priority),
	}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		return fmt.Errorf("sched_setattr(SCHED_FIFO, %d): %w", priority, err)
	}
	return nil
}

// MonotonicNanos reads CLOCK_MONOTONIC.
func MonotonicNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}

// ThreadCPUNanos reads CLOCK_THREAD_CPUTIME_ID for the calling OS thread.
func ThreadCPUNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}

// Supported reports whether PinThread and RequestFIFO are implemented.
func Supported() bool {
	return true
}
