package config

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroThreads is returned for an explicit thread count of zero.
	ErrZeroThreads = errors.New("thread count must be at least 1")

	// ErrZeroAcquisitions is returned for an explicit acquisition target of
	// zero. An unbounded run would never finish and every worker's average
	// depth would be undefined.
	ErrZeroAcquisitions = errors.New("acquire count must be at least 1; unbounded runs are not supported")
)

// Warning is a non-fatal adjustment made while resolving a run.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// DefaultThreads returns the default worker count for cores online cores.
func DefaultThreads(cores int) int {
	if cores <= 1 {
		return 1
	}
	return cores - 1
}

// ApplyDefaults fills unset fields of a run.
func ApplyDefaults(c *RunConfig, cores int) {
	if c.Threads == 0 {
		c.Threads = DefaultThreads(cores)
	}
	if c.Acquisitions == 0 {
		c.Acquisitions = DefaultAcquisitions
	}
	if c.Lock == "" {
		c.Lock = DefaultLock
	}
}

// Resolve validates c, applies defaults and clamps the thread count to the
// online core count. The returned warnings describe every clamp.
//
// Over-subscribing the cores is never allowed: a worker that is never
// scheduled would leave the startup barrier spinning forever.
func Resolve(c *RunConfig, cores int) ([]Warning, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ApplyDefaults(c, cores)

	var warnings []Warning
	if c.Threads > cores {
		warnings = append(warnings, Warning{
			Field:   "threads",
			Message: fmt.Sprintf("limiting thread count %d to online cores (%d)", c.Threads, cores),
		})
		c.Threads = cores
	}
	return warnings, nil
}
