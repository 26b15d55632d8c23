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

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a series of measurements from a configuration file",
	Long: `Run every combination of thread count, critical-section and parallel
delay described in a YAML or JSON file, one measurement at a time.

Example config:
  name: mutex scaling
  lock: mutex
  acquisitions: 100000
  threads: [1, 2, 4, 8]
  hold: [0, 200]
  thresholds:
    - "avgDepth < 8"

Usage:
  lockhammer sweep --config scaling.yaml
  lockhammer sweep --config scaling.yaml --format csv > scaling.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd)
	},
}

func runSweep(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return fmt.Errorf("--config is required")
	}

	opts, err := reportOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.verbose, opts.quiet)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	testConfig, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return executeSweep(testConfig, opts, strategy.DefaultRegistry(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// executeSweep runs the sweep and prints whatever completed, even when a
// later run failed.
func executeSweep(tc *config.TestConfig, opts reportOptions, registry *strategy.Registry, stdout, stderr io.Writer, logger *zap.Logger) error {
	sweep, runErr := engine.RunSweep(tc, engine.Options{
		Registry:   registry,
		Logger:     logger,
		Thresholds: opts.thresholds,
	})
	if sweep == nil {
		return runErr
	}

	if len(sweep.Runs) > 0 {
		if err := writeSweepResult(stdout, stderr, opts, sweep, logger); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if !sweep.Passed {
		return errThresholdsFailed
	}
	return nil
}

func init() {
	sweepCmd.Flags().StringP("config", "c", "", "Sweep configuration file (YAML or JSON)")
	addReportFlags(sweepCmd)
}
