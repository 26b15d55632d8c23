// Package engine is the controller for a lockhammer run. It resolves the
// configuration, initializes the lock under test, spawns and joins the
// workers and aggregates their measurements.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wesleyorama2/lockhammer/internal/hammer/affinity"
	"github.com/wesleyorama2/lockhammer/internal/hammer/barrier"
	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
	"github.com/wesleyorama2/lockhammer/internal/hammer/metrics"
	"github.com/wesleyorama2/lockhammer/internal/hammer/platform"
	"github.com/wesleyorama2/lockhammer/internal/hammer/strategy"
	"github.com/wesleyorama2/lockhammer/internal/hammer/worker"
)

// ErrWorkerFailed wraps the fatal errors of one or more workers. A run that
// returns it produced no result.
var ErrWorkerFailed = errors.New("worker failed")

// Options configures an Engine.
type Options struct {
	// Registry resolves lock names. Defaults to strategy.DefaultRegistry().
	Registry *strategy.Registry

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger

	// Cores overrides the online core count. Zero means detect.
	Cores int

	// Thresholds are evaluated against the result.
	Thresholds []string

	// OnRunning is passed to every worker's ThreadContext.
	OnRunning func(seq uint64)
}

// Engine runs a single measurement.
//
// Example usage:
//
//	eng, _ := engine.NewEngine(&config.RunConfig{Threads: 4, Lock: "mutex"}, engine.Options{})
//	result, _ := eng.Run()
//	fmt.Println(result.NsPerAccess)
type Engine struct {
	config   config.RunConfig
	warnings []config.Warning
	lock     strategy.Strategy
	cores    int
	opts     Options
	logger   *zap.Logger
	ran      atomic.Bool
}

// Result is a finished run.
type Result struct {
	// Name labels the run in reports.
	Name string `json:"name,omitempty"`

	// Lock is the strategy name.
	Lock string `json:"lock"`

	// Config is the resolved configuration the run used.
	Config config.RunConfig `json:"config"`

	// Cores is the online core count.
	Cores int `json:"cores"`

	// StartTime and EndTime bracket the whole run, including spawn.
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	// RunResult holds the aggregated measurements.
	*metrics.RunResult

	// Thresholds contains individual threshold results.
	Thresholds []ThresholdResult `json:"thresholds,omitempty"`

	// Passed is false if any threshold failed.
	Passed bool `json:"passed"`
}

// NewEngine validates cfg and prepares the lock under test.
//
// Configuration errors are returned before anything is spawned. A thread
// count above the core count is clamped and logged as a warning.
func NewEngine(cfg *config.RunConfig, opts Options) (*Engine, error) {
	if opts.Registry == nil {
		opts.Registry = strategy.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Cores <= 0 {
		opts.Cores = platform.OnlineCores()
	}

	resolved := *cfg
	warnings, err := config.Resolve(&resolved, opts.Cores)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, w := range warnings {
		opts.Logger.Warn("configuration adjusted", zap.String("field", w.Field), zap.String("reason", w.Message))
	}

	for i, expr := range opts.Thresholds {
		if _, err := config.ParseThreshold(expr); err != nil {
			return nil, fmt.Errorf("invalid configuration: thresholds[%d]: %w", i, err)
		}
	}

	lock, err := opts.Registry.New(resolved.Lock, resolved.LockArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !platform.Supported() && (!resolved.Settings.NoPin || !resolved.Settings.NoRealtime) {
		if resolved.Settings.RequireRealtime {
			return nil, fmt.Errorf("invalid configuration: real-time scheduling %w", platform.ErrUnsupported)
		}
		opts.Logger.Warn("thread placement unavailable; running without affinity or real-time scheduling")
		resolved.Settings.NoPin = true
		resolved.Settings.NoRealtime = true
	}

	return &Engine{
		config:   resolved,
		warnings: warnings,
		lock:     lock,
		cores:    opts.Cores,
		opts:     opts,
		logger:   opts.Logger,
	}, nil
}

// Config returns the resolved configuration.
func (e *Engine) Config() config.RunConfig {
	return e.config
}

// Warnings returns the adjustments made while resolving the configuration.
func (e *Engine) Warnings() []config.Warning {
	return e.warnings
}

// planner places workers on the CPUs this process may run on. The planner
// works in dense indices; the allowed set need not start at CPU 0.
func (e *Engine) planner() affinity.Planner {
	if cpus := platform.AllowedCPUs(); len(cpus) >= e.cores {
		return affinity.NewPlannerForCPUs(cpus[:e.cores])
	}
	return affinity.NewPlanner(e.cores)
}

// Run performs the measurement. An Engine runs once; the barrier and lock
// state are single-use.
//
// Run does not accept a context: the measured loop cannot be cancelled and
// always runs to its acquisition target.
func (e *Engine) Run() (*Result, error) {
	if !e.ran.CompareAndSwap(false, true) {
		return nil, errors.New("engine has already run")
	}

	cfg := e.config
	if err := e.lock.Initialize(e.cores); err != nil {
		return nil, fmt.Errorf("initializing %s: %w", e.lock.Name(), err)
	}

	threads := cfg.Threads
	b := barrier.New(threads)
	planner := e.planner()
	placement := worker.Placement{
		Pin:             !cfg.Settings.NoPin,
		Realtime:        !cfg.Settings.NoRealtime,
		RequireRealtime: cfg.Settings.RequireRealtime,
	}

	contexts := make([]*worker.ThreadContext, threads)
	for i := range contexts {
		contexts[i] = &worker.ThreadContext{
			Lock:      e.lock,
			Barrier:   b,
			Planner:   planner,
			Target:    uint64(cfg.Acquisitions),
			Hold:      uint64(cfg.Hold),
			Post:      uint64(cfg.Post),
			Placement: placement,
			OnRunning: e.opts.OnRunning,
		}
	}

	e.logger.Debug("starting run",
		zap.String("lock", e.lock.Name()),
		zap.Int("threads", threads),
		zap.Int("cores", e.cores),
		zap.Int("acquisitions", cfg.Acquisitions),
		zap.Int("hold", cfg.Hold),
		zap.Int("post", cfg.Post),
		zap.Ints("placement", planner.Plan(threads)),
	)

	startTime := time.Now()
	var wg sync.WaitGroup
	for i, tc := range contexts {
		e.logger.Debug("spawning worker", zap.Int("thread", i))
		wg.Add(1)
		go func(tc *worker.ThreadContext) {
			defer wg.Done()
			worker.Run(tc)
		}(tc)
	}
	wg.Wait()

	// The marshal stamped the start instant; only the end is taken here.
	end := platform.MonotonicNanos()
	endTime := time.Now()

	if err := e.collectErrors(contexts); err != nil {
		return nil, err
	}

	samples := make([]metrics.Sample, threads)
	for _, tc := range contexts {
		samples[tc.Seq] = metrics.Sample{
			Seq:       tc.Seq,
			Core:      tc.Core,
			Completed: tc.Completed,
			CPUTime:   tc.CPUTime,
			Depth:     tc.Depth,
		}
	}

	runResult, err := metrics.Aggregate(samples, b.Start(), end)
	if err != nil {
		return nil, fmt.Errorf("aggregating results: %w", err)
	}

	result := &Result{
		Lock:      e.lock.Name(),
		Config:    cfg,
		Cores:     e.cores,
		StartTime: startTime,
		EndTime:   endTime,
		RunResult: runResult,
		Passed:    true,
	}

	if len(e.opts.Thresholds) > 0 {
		result.Thresholds, err = EvaluateResult(result, e.opts.Thresholds)
		if err != nil {
			return nil, err
		}
		result.Passed = AllPassed(result.Thresholds)
	}

	e.logger.Debug("run complete",
		zap.Uint64("completed", runResult.TotalCompleted),
		zap.Int64("wall_ns", runResult.WallNanos),
		zap.Float64("ns_per_access", runResult.NsPerAccess),
	)

	return result, nil
}

// collectErrors joins every worker's fatal error and logs refused
// real-time requests.
func (e *Engine) collectErrors(contexts []*worker.ThreadContext) error {
	var errs []error
	refused := 0
	for _, tc := range contexts {
		if tc.Err != nil {
			errs = append(errs, tc.Err)
		}
		if tc.RealtimeErr != nil {
			refused++
			e.logger.Debug("real-time scheduling refused", zap.Uint64("seq", tc.Seq), zap.Error(tc.RealtimeErr))
		}
	}

	if refused > 0 {
		e.logger.Warn("SCHED_FIFO unavailable; workers ran under the default policy",
			zap.Int("threads", refused))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrWorkerFailed, errors.Join(errs...))
	}
	return nil
}
