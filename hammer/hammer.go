package hammer

import (
	"go.uber.org/zap"

	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
	"github.com/wesleyorama2/lockhammer/internal/hammer/engine"
	"github.com/wesleyorama2/lockhammer/internal/hammer/strategy"
)

type (
	// RunConfig configures a single measurement.
	RunConfig = config.RunConfig

	// Settings controls thread placement.
	Settings = config.Settings

	// SweepConfig describes a series of measurements.
	SweepConfig = config.TestConfig

	// Result is a finished measurement.
	Result = engine.Result

	// SweepResult holds every run of a sweep.
	SweepResult = engine.SweepResult

	// ThresholdResult is one evaluated threshold.
	ThresholdResult = engine.ThresholdResult

	// Strategy is a lock under test.
	Strategy = strategy.Strategy

	// Factory creates a fresh Strategy for each run.
	Factory = strategy.Factory
)

// Errors callers may test for with errors.Is.
var (
	ErrWorkerFailed     = engine.ErrWorkerFailed
	ErrUnknownStrategy  = strategy.ErrUnknownStrategy
	ErrZeroThreads      = config.ErrZeroThreads
	ErrZeroAcquisitions = config.ErrZeroAcquisitions
)

// Defaults applied to unset RunConfig fields.
const (
	DefaultAcquisitions = config.DefaultAcquisitions
	DefaultLock         = config.DefaultLock
)

// Options configures a Runner.
type Options struct {
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger

	// Cores overrides the online core count. Zero means detect.
	Cores int
}

// Runner runs measurements against a set of registered strategies.
//
// A Runner starts with the built-in strategies (empty, mutex, rwmutex and
// deadlock). It is not safe to call Register concurrently with a run.
type Runner struct {
	registry *strategy.Registry
	opts     Options
}

// NewRunner creates a Runner with the built-in strategies registered.
func NewRunner(opts Options) *Runner {
	return &Runner{
		registry: strategy.DefaultRegistry(),
		opts:     opts,
	}
}

// Register adds or replaces a strategy.
func (r *Runner) Register(name, description string, f Factory) {
	r.registry.Register(name, description, f)
}

// Strategies lists the registered strategy names in sorted order.
func (r *Runner) Strategies() []string {
	return r.registry.Names()
}

// Run performs one measurement. Thresholds, if given, are evaluated against
// the result.
func (r *Runner) Run(cfg *RunConfig, thresholds ...string) (*Result, error) {
	eng, err := engine.NewEngine(cfg, r.engineOptions(thresholds))
	if err != nil {
		return nil, err
	}
	return eng.Run()
}

// Sweep runs every combination in cfg, one at a time.
func (r *Runner) Sweep(cfg *SweepConfig) (*SweepResult, error) {
	return engine.RunSweep(cfg, r.engineOptions(nil))
}

func (r *Runner) engineOptions(thresholds []string) engine.Options {
	return engine.Options{
		Registry:   r.registry,
		Logger:     r.opts.Logger,
		Cores:      r.opts.Cores,
		Thresholds: thresholds,
	}
}

// Run performs one measurement with the built-in strategies.
func Run(cfg *RunConfig) (*Result, error) {
	return NewRunner(Options{}).Run(cfg)
}

// LoadSweep reads a sweep configuration from a YAML or JSON file.
func LoadSweep(path string) (*SweepConfig, error) {
	return config.LoadConfig(path)
}

// ParseSweep parses a sweep configuration. path is used only to pick the
// format by extension and may be empty.
func ParseSweep(data []byte, path string) (*SweepConfig, error) {
	return config.ParseConfig(data, path)
}

// Evaluate checks thresholds against a JSON result document, such as one
// written by the CLI with --output.
func Evaluate(doc string, thresholds ...string) []ThresholdResult {
	return engine.EvaluateDocument(doc, thresholds)
}
