//go:build !linux

package platform

import (
	"runtime"
	"time"
)

var epoch = time.Now()

// OnlineCores returns the number of logical CPUs.
func OnlineCores() int {
	return runtime.NumCPU()
}

// AllowedCPUs returns 0..NumCPU-1; no affinity mask is consulted.
func AllowedCPUs() []int {
	return sequentialCPUs(runtime.NumCPU())
}

// PinThread is unsupported outside Linux.
func PinThread(core int) error {
	return ErrUnsupported
}

// RequestFIFO is unsupported outside Linux.
func RequestFIFO(priority int) error {
	return ErrUnsupported
}

// MonotonicNanos returns nanoseconds on the runtime's monotonic clock.
func MonotonicNanos() int64 {
	return int64(time.Since(epoch))
}

// ThreadCPUNanos has no per-thread CPU clock here and falls back to the
// monotonic clock, which over-reports CPU time for descheduled threads.
func ThreadCPUNanos() int64 {
	return MonotonicNanos()
}

// Supported reports whether PinThread and RequestFIFO are implemented.
func Supported() bool {
	return false
}
