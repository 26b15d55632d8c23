// Package platform wraps the operating-system facilities the harness needs:
// core counts, thread placement, real-time scheduling and the two clocks
// used for measurement.
package platform

import "errors"

// ErrUnsupported is returned by placement calls on platforms without
// per-thread affinity or real-time scheduling support.
var ErrUnsupported = errors.New("not supported on this platform")

// FIFOPriority is the SCHED_FIFO priority requested for worker threads.
// It is the lowest real-time priority.
const FIFOPriority = 1

func sequentialCPUs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
