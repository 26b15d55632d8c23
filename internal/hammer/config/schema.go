// Package config provides configuration parsing and validation for
// lockhammer runs and sweeps.
package config

// DefaultAcquisitions is the per-thread acquisition target used when none
// is configured.
const DefaultAcquisitions = 50000

// DefaultLock is the strategy used when none is configured.
const DefaultLock = "mutex"

// RunConfig is one measurement.
//
// Zero values for Threads and Acquisitions mean "use the default"; the CLI
// rejects an explicit zero before building a RunConfig.
type RunConfig struct {
	// Threads is the number of worker threads.
	// Default: online cores minus one, reserving a core for the controller.
	Threads int `json:"threads,omitempty" yaml:"threads,omitempty"`

	// Acquisitions is the per-thread acquisition target.
	Acquisitions int `json:"acquisitions,omitempty" yaml:"acquisitions,omitempty"`

	// Hold is the busy-spin count inside the critical section.
	Hold int `json:"hold,omitempty" yaml:"hold,omitempty"`

	// Post is the busy-spin count between acquisitions.
	Post int `json:"post,omitempty" yaml:"post,omitempty"`

	// Lock is the strategy name.
	Lock string `json:"lock,omitempty" yaml:"lock,omitempty"`

	// LockArgs are passed through to the strategy's own parser.
	LockArgs []string `json:"lockArgs,omitempty" yaml:"lockArgs,omitempty"`

	// Settings controls thread placement.
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Settings controls how workers place their threads.
type Settings struct {
	// NoRealtime skips the SCHED_FIFO request.
	NoRealtime bool `json:"noRealtime,omitempty" yaml:"noRealtime,omitempty"`

	// RequireRealtime makes a refused SCHED_FIFO request fatal.
	RequireRealtime bool `json:"requireRealtime,omitempty" yaml:"requireRealtime,omitempty"`

	// NoPin skips affinity pinning.
	NoPin bool `json:"noPin,omitempty" yaml:"noPin,omitempty"`
}

// TestConfig is the root of a sweep file.
//
// Example YAML:
//
//	name: "mutex scaling"
//	lock: mutex
//	lockArgs: ["--try-spin", "16"]
//	acquisitions: 20000
//	threads: [1, 2, 4, 8]
//	hold: [0, 200]
//	post: [100]
//	thresholds:
//	  - "nsPerAccess < 5000"
type TestConfig struct {
	// Name of the sweep (for reporting).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description of the sweep.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Lock is the strategy name for every run.
	Lock string `json:"lock,omitempty" yaml:"lock,omitempty"`

	// LockArgs are passed to the strategy for every run.
	LockArgs []string `json:"lockArgs,omitempty" yaml:"lockArgs,omitempty"`

	// Acquisitions is the per-thread target for every run.
	Acquisitions int `json:"acquisitions,omitempty" yaml:"acquisitions,omitempty"`

	// Threads lists the thread counts to measure. Empty means the default.
	Threads []int `json:"threads,omitempty" yaml:"threads,omitempty"`

	// Hold lists the critical-section spin counts to measure.
	Hold []int `json:"hold,omitempty" yaml:"hold,omitempty"`

	// Post lists the inter-acquisition spin counts to measure.
	Post []int `json:"post,omitempty" yaml:"post,omitempty"`

	// Settings applies to every run.
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`

	// Thresholds are evaluated against each run's result.
	Thresholds []string `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// Runs expands the sweep into one RunConfig per combination of threads,
// hold and post, in that nesting order (threads outermost).
func (c *TestConfig) Runs() []RunConfig {
	threads := orDefault(c.Threads)
	holds := orDefault(c.Hold)
	posts := orDefault(c.Post)

	runs := make([]RunConfig, 0, len(threads)*len(holds)*len(posts))
	for _, t := range threads {
		for _, h := range holds {
			for _, p := range posts {
				runs = append(runs, RunConfig{
					Threads:      t,
					Acquisitions: c.Acquisitions,
					Hold:         h,
					Post:         p,
					Lock:         c.Lock,
					LockArgs:     c.LockArgs,
					Settings:     c.Settings,
				})
			}
		}
	}
	return runs
}

func orDefault(values []int) []int {
	if len(values) == 0 {
		return []int{0}
	}
	return values
}
