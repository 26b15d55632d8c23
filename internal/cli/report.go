package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/lockhammer/internal/hammer/engine"
	"github.com/wesleyorama2/lockhammer/internal/hammer/report"
	"github.com/wesleyorama2/lockhammer/internal/output"
)

// reportOptions are the output flags shared by run and sweep.
type reportOptions struct {
	format     output.OutputFormat
	outputPath string
	thresholds []string
	verbose    bool
	quiet      bool
	noColor    bool
	forceColor bool
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", string(output.FormatText), "Output format on stdout (text, csv, json, yaml)")
	cmd.Flags().Bool("json", false, "Output results as JSON (same as --format json)")
	cmd.Flags().StringP("output", "o", "", "Also write the full result document to this file")
	cmd.Flags().StringArray("threshold", nil, "Pass/fail expression such as 'nsPerAccess < 500' (repeatable)")
}

func reportOptionsFromFlags(cmd *cobra.Command) (reportOptions, error) {
	formatName, _ := cmd.Flags().GetString("format")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	outputPath, _ := cmd.Flags().GetString("output")
	thresholds, _ := cmd.Flags().GetStringArray("threshold")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")
	forceColor, _ := cmd.Flags().GetBool("force-color")

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return reportOptions{}, err
	}
	if jsonOutput {
		format = output.FormatJSON
	}

	return reportOptions{
		format:     format,
		outputPath: outputPath,
		thresholds: thresholds,
		verbose:    verbose,
		quiet:      quiet,
		noColor:    noColor,
		forceColor: forceColor,
	}, nil
}

// documentFormat is the format used for --output files.
func (o reportOptions) documentFormat() output.OutputFormat {
	if o.format == output.FormatYAML {
		return output.FormatYAML
	}
	return output.FormatJSON
}

func (o reportOptions) console(w io.Writer) *report.Console {
	return report.NewConsole(report.ConsoleConfig{
		Writer:      w,
		NoColor:     o.noColor,
		ForceColors: o.forceColor,
		Verbose:     o.verbose,
		Quiet:       o.quiet,
	})
}

// writeRunResult prints one run. The CSV record goes to stdout and the
// human summary to stderr, as the classic harness does.
func writeRunResult(stdout, stderr io.Writer, opts reportOptions, result *engine.Result, logger *zap.Logger) error {
	switch opts.format {
	case output.FormatText:
		if err := report.WriteCSV(stdout, result.RunResult); err != nil {
			return err
		}
		opts.console(stderr).PrintSummary(result)
	case output.FormatCSV:
		if err := report.WriteCSV(stdout, result.RunResult); err != nil {
			return err
		}
	default:
		if err := report.Encode(stdout, opts.format, result); err != nil {
			return err
		}
	}

	return writeDocument(opts, result, logger)
}

// writeSweepResult prints every run of a sweep: one CSV record per run on
// stdout and a table on stderr.
func writeSweepResult(stdout, stderr io.Writer, opts reportOptions, sweep *engine.SweepResult, logger *zap.Logger) error {
	switch opts.format {
	case output.FormatText, output.FormatCSV:
		if opts.format == output.FormatCSV {
			fmt.Fprintln(stdout, "# "+report.CSVHeader)
		}
		for _, r := range sweep.Runs {
			if err := report.WriteCSV(stdout, r.RunResult); err != nil {
				return err
			}
		}
		if opts.format == output.FormatText {
			opts.console(stderr).PrintSweep(sweep)
		}
	default:
		if err := report.Encode(stdout, opts.format, sweep); err != nil {
			return err
		}
	}

	return writeDocument(opts, sweep, logger)
}

func writeDocument(opts reportOptions, v interface{}, logger *zap.Logger) error {
	if opts.outputPath == "" {
		return nil
	}
	if err := report.WriteFile(opts.outputPath, opts.documentFormat(), v); err != nil {
		return err
	}
	logger.Info("results written", zap.String("path", opts.outputPath))
	return nil
}
