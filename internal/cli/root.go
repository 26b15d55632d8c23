package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// errThresholdsFailed makes the process exit non-zero after a complete
// report has been printed.
var errThresholdsFailed = errors.New("one or more thresholds failed")

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "lockhammer",
	Short:   "A lock contention microbenchmark",
	Version: version,
	Long: `Lockhammer measures the cost of a lock under a chosen level of contention.
N pinned worker threads each acquire and release a shared lock a fixed number
of times, separated by configurable critical-section and parallel delays, and
the run reports CPU time per acquisition, wall-clock access rate, cores
utilized and the lock's own view of contention depth.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil && !errors.Is(err, errThresholdsFailed) {
		RootCmd.PrintErrln("Error:", err)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output and debug logging")
	RootCmd.PersistentFlags().BoolP("quiet", "q", false, "Print only the result and errors")
	RootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	RootCmd.PersistentFlags().Bool("force-color", false, "Color output even when it is not a terminal")

	// Add subcommands to root command
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(sweepCmd)
	RootCmd.AddCommand(locksCmd)
	RootCmd.AddCommand(checkCmd)
}
