package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
)

// SweepResult holds every run of a sweep, in the order they were measured.
type SweepResult struct {
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Runs        []*Result `json:"runs"`
	Passed      bool      `json:"passed"`
}

// RunSweep measures every combination of tc, one run at a time. Runs never
// overlap; each gets a fresh lock instance and barrier.
//
// The sweep stops at the first configuration or worker error. Results for
// runs that completed before it are returned alongside the error.
func RunSweep(tc *config.TestConfig, opts Options) (*SweepResult, error) {
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Thresholds = append(append([]string(nil), opts.Thresholds...), tc.Thresholds...)

	runs := tc.Runs()
	sweep := &SweepResult{
		Name:        tc.Name,
		Description: tc.Description,
		Runs:        make([]*Result, 0, len(runs)),
		Passed:      true,
	}

	for i := range runs {
		rc := runs[i]
		eng, err := NewEngine(&rc, opts)
		if err != nil {
			return sweep, fmt.Errorf("run %d: %w", i, err)
		}

		resolved := eng.Config()
		opts.Logger.Info("running",
			zap.Int("run", i+1),
			zap.Int("of", len(runs)),
			zap.String("lock", resolved.Lock),
			zap.Int("threads", resolved.Threads),
			zap.Int("hold", resolved.Hold),
			zap.Int("post", resolved.Post),
		)

		result, err := eng.Run()
		if err != nil {
			return sweep, fmt.Errorf("run %d: %w", i, err)
		}
		result.Name = RunName(resolved)
		sweep.Runs = append(sweep.Runs, result)
		if !result.Passed {
			sweep.Passed = false
		}
	}

	return sweep, nil
}

// RunName labels a run by its varying parameters.
func RunName(c config.RunConfig) string {
	return fmt.Sprintf("%s t=%d hold=%d post=%d", c.Lock, c.Threads, c.Hold, c.Post)
}
