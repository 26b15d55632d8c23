package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/lockhammer/internal/hammer/engine"
	"github.com/wesleyorama2/lockhammer/internal/hammer/report"
	"github.com/wesleyorama2/lockhammer/pkg/jsonpath"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate thresholds against a saved result",
	Long: `Re-evaluate pass/fail thresholds against a result written with --output,
or print selected metrics from it. JSON and YAML (.yaml, .yml) results are
accepted. Metrics are gjson paths ("nsPerAccess", "spread.p99",
"workers.0.avgDepth") or JSONPath ("$.workers[0].avgDepth"). Sweep results
address individual runs with "runs.N.".

Usage:
  lockhammer check --result run.json --threshold "nsPerAccess < 500"
  lockhammer check --result run.yaml --print nsPerAccess --print p99=spread.p99`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resultFile, _ := cmd.Flags().GetString("result")
		thresholds, _ := cmd.Flags().GetStringArray("threshold")
		prints, _ := cmd.Flags().GetStringArray("print")
		noColor, _ := cmd.Flags().GetBool("no-color")
		forceColor, _ := cmd.Flags().GetBool("force-color")
		quiet, _ := cmd.Flags().GetBool("quiet")

		console := report.NewConsole(report.ConsoleConfig{
			Writer:      cmd.OutOrStdout(),
			NoColor:     noColor,
			ForceColors: forceColor,
			Quiet:       quiet,
		})
		return checkResult(checkOptions{
			path:       resultFile,
			thresholds: thresholds,
			prints:     prints,
		}, console)
	},
}

// checkOptions selects what check does with a saved result.
type checkOptions struct {
	path       string
	thresholds []string

	// prints are "name=path" or bare paths, which name themselves.
	prints []string
}

func checkResult(opts checkOptions, console *report.Console) error {
	if opts.path == "" {
		return fmt.Errorf("--result is required")
	}
	if len(opts.thresholds) == 0 && len(opts.prints) == 0 {
		return fmt.Errorf("at least one --threshold or --print is required")
	}

	doc, err := loadResultDocument(opts.path)
	if err != nil {
		return err
	}

	if len(opts.prints) > 0 {
		names, paths := parsePrints(opts.prints)
		values, err := jsonpath.ExtractMultiple(doc, paths)
		console.PrintMetrics(names, values)
		if err != nil {
			return err
		}
	}

	if len(opts.thresholds) == 0 {
		return nil
	}

	results := engine.EvaluateDocument(doc, opts.thresholds)
	passed := engine.AllPassed(results)
	console.PrintThresholds(results)
	console.PrintStatus(passed)

	if !passed {
		return errThresholdsFailed
	}
	return nil
}

// loadResultDocument reads a saved result as JSON text. YAML results are
// decoded and re-encoded so that metric paths work the same on both.
func loadResultDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading result: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return "", fmt.Errorf("parsing YAML result: %w", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("converting YAML result: %w", err)
		}
		return string(out), nil
	default:
		return string(data), nil
	}
}

func parsePrints(prints []string) ([]string, map[string]string) {
	names := make([]string, 0, len(prints))
	paths := make(map[string]string, len(prints))
	for _, p := range prints {
		name, path, ok := strings.Cut(p, "=")
		if !ok {
			name, path = p, p
		}
		if _, seen := paths[name]; !seen {
			names = append(names, name)
		}
		paths[name] = path
	}
	return names, paths
}

func init() {
	checkCmd.Flags().String("result", "", "JSON or YAML result file written by run or sweep --output")
	checkCmd.Flags().StringArray("threshold", nil, "Pass/fail expression (repeatable)")
	checkCmd.Flags().StringArray("print", nil, "Print a metric as name=path or path (repeatable)")
}
