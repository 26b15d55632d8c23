package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
	"github.com/wesleyorama2/lockhammer/internal/hammer/engine"
	"github.com/wesleyorama2/lockhammer/internal/hammer/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- lock arguments]",
	Short: "Run a single contention measurement",
	Long: `Run one measurement of a lock under contention.

Each of the -t worker threads acquires the lock -a times. Inside the critical
section a worker spins -c iterations; between acquisitions it spins -p
iterations. Arguments after "--" are passed to the lock strategy.

Examples:
  lockhammer run -t 4 -a 100000 -l mutex
  lockhammer run -t 8 -c 200 -p 1000 -l mutex -- --try-spin 64
  lockhammer run -l deadlock --json -- --timeout 5s`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMeasurement(cmd, args)
	},
}

// runOptions is everything a single measurement needs from the command line.
type runOptions struct {
	config config.RunConfig
	report reportOptions
}

func runMeasurement(cmd *cobra.Command, args []string) error {
	opts, err := runOptionsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.report.verbose, opts.report.quiet)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	return executeRun(opts, strategy.DefaultRegistry(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// runOptionsFromFlags builds the run configuration. An explicit zero for
// threads or acquisitions is an error; leaving the flag unset selects the
// default.
func runOptionsFromFlags(cmd *cobra.Command, args []string) (*runOptions, error) {
	threads, _ := cmd.Flags().GetInt("threads")
	acquires, _ := cmd.Flags().GetInt("acquires")
	critical, _ := cmd.Flags().GetInt("critical")
	parallel, _ := cmd.Flags().GetInt("parallel")
	lock, _ := cmd.Flags().GetString("lock")
	noRealtime, _ := cmd.Flags().GetBool("no-realtime")
	requireRealtime, _ := cmd.Flags().GetBool("require-realtime")
	noPin, _ := cmd.Flags().GetBool("no-pin")

	if cmd.Flags().Changed("threads") && threads == 0 {
		return nil, config.ErrZeroThreads
	}
	if cmd.Flags().Changed("acquires") && acquires == 0 {
		return nil, config.ErrZeroAcquisitions
	}

	lockArgs, err := splitLockArgs(cmd, args)
	if err != nil {
		return nil, err
	}

	report, err := reportOptionsFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	return &runOptions{
		config: config.RunConfig{
			Threads:      threads,
			Acquisitions: acquires,
			Hold:         critical,
			Post:         parallel,
			Lock:         lock,
			LockArgs:     lockArgs,
			Settings: config.Settings{
				NoRealtime:      noRealtime,
				RequireRealtime: requireRealtime,
				NoPin:           noPin,
			},
		},
		report: report,
	}, nil
}

// splitLockArgs returns the arguments after "--". Positional arguments
// before it are rejected.
func splitLockArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("unexpected arguments %q; pass lock arguments after \"--\"", args)
		}
		return nil, nil
	}
	if dash > 0 {
		return nil, fmt.Errorf("unexpected arguments %q before \"--\"", args[:dash])
	}
	return args[dash:], nil
}

// executeRun creates the engine, runs it and prints the result. Nothing is
// spawned when the configuration is rejected.
func executeRun(opts *runOptions, registry *strategy.Registry, stdout, stderr io.Writer, logger *zap.Logger) error {
	eng, err := engine.NewEngine(&opts.config, engine.Options{
		Registry:   registry,
		Logger:     logger,
		Thresholds: opts.report.thresholds,
	})
	if err != nil {
		return err
	}

	resolved := eng.Config()
	logger.Debug("configuration resolved",
		zap.String("lock", resolved.Lock),
		zap.Strings("lock_args", resolved.LockArgs),
		zap.Int("threads", resolved.Threads),
		zap.Int("acquisitions", resolved.Acquisitions),
		zap.Bool("pin", !resolved.Settings.NoPin),
		zap.Bool("realtime", !resolved.Settings.NoRealtime),
	)

	result, err := eng.Run()
	if err != nil {
		return err
	}

	if err := writeRunResult(stdout, stderr, opts.report, result, logger); err != nil {
		return err
	}

	if !result.Passed {
		return errThresholdsFailed
	}
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("threads", "t", 0, "Number of worker threads (default: online cores - 1)")
	cmd.Flags().IntP("acquires", "a", config.DefaultAcquisitions, "Lock acquisitions per thread")
	cmd.Flags().IntP("critical", "c", 0, "Spin iterations while holding the lock")
	cmd.Flags().IntP("parallel", "p", 0, "Spin iterations between acquisitions")
	cmd.Flags().StringP("lock", "l", config.DefaultLock, "Lock strategy (see 'lockhammer locks')")
	cmd.Flags().Bool("no-realtime", false, "Do not request SCHED_FIFO for worker threads")
	cmd.Flags().Bool("require-realtime", false, "Fail if SCHED_FIFO cannot be set")
	cmd.Flags().Bool("no-pin", false, "Do not pin worker threads to cores")

	addReportFlags(cmd)
}

func init() {
	addRunFlags(runCmd)
}
