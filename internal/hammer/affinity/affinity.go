// Package affinity maps barrier sequence indices to physical cores.
package affinity

// Core returns the physical core for sequence index i on a machine with
// cores online cores.
//
// Consecutive indices alternate between the lower and upper halves of the
// core list, so workers spread across two cores/2 partitions (two clusters,
// or two NUMA nodes) as the worker count grows. For i <= cores the result is
// always in [0, cores).
func Core(i, cores uint64) uint64 {
	return (i >> 1) + (cores>>1)*(i&1)
}

// Planner places workers for a fixed core count.
type Planner struct {
	cores uint64
	cpus  []int
}

// NewPlanner returns a planner for a machine with cores online cores.
func NewPlanner(cores int) Planner {
	if cores < 1 {
		cores = 1
	}
	return Planner{cores: uint64(cores)}
}

// NewPlannerForCPUs returns a planner over an explicit list of CPU ids,
// such as the process affinity mask. Core indices from the formula select
// entries of cpus, so a mask like 4-7 places workers on 4..7 rather than
// 0..3. The controller keeps cpus[0].
func NewPlannerForCPUs(cpus []int) Planner {
	if len(cpus) == 0 {
		return NewPlanner(1)
	}
	return Planner{cores: uint64(len(cpus)), cpus: append([]int(nil), cpus...)}
}

// Cores returns the core count the planner was built for.
func (p Planner) Cores() int {
	return int(p.cores)
}

// WorkerCore returns the core for the worker holding barrier index seq.
// The index is shifted by one so that core 0 stays with the controller.
func (p Planner) WorkerCore(seq uint64) int {
	idx := Core(seq+1, p.cores)
	if p.cpus == nil {
		return int(idx)
	}
	return p.cpus[idx]
}

// Plan returns the core of every worker in sequence order.
func (p Planner) Plan(workers int) []int {
	cores := make([]int, workers)
	for i := range cores {
		cores[i] = p.WorkerCore(uint64(i))
	}
	return cores
}
