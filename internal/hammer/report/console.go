package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/wesleyorama2/lockhammer/internal/hammer/engine"
	"github.com/wesleyorama2/lockhammer/internal/hammer/metrics"
	"github.com/wesleyorama2/lockhammer/internal/output"
)

const ruleWidth = 56

// Console prints human-readable results.
type Console struct {
	writer  io.Writer
	scheme  *output.ColorScheme
	noColor bool
	verbose bool
	quiet   bool
}

// ConsoleConfig contains configuration for Console.
type ConsoleConfig struct {
	Writer      io.Writer
	NoColor     bool
	ForceColors bool
	Verbose     bool
	Quiet       bool
}

// NewConsole creates a console printer. Colors are used only when the
// writer is a terminal, unless forced.
func NewConsole(cfg ConsoleConfig) *Console {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	useColors := !cfg.NoColor && (cfg.ForceColors || output.UseColors(cfg.Writer, false))

	return &Console{
		writer:  cfg.Writer,
		scheme:  output.SchemeFor(useColors),
		noColor: !useColors,
		verbose: cfg.Verbose,
		quiet:   cfg.Quiet,
	}
}

// PrintStats prints the six classic lockhammer lines.
func (c *Console) PrintStats(r *metrics.RunResult) {
	c.writeln(fmt.Sprintf("%d lock loops", r.TotalCompleted))
	c.writeln(fmt.Sprintf("%d ns scheduled", r.TotalCPUNanos))
	c.writeln(fmt.Sprintf("%d ns elapsed (~%f cores)", r.WallNanos, r.CoresUtilized))
	c.writeln(fmt.Sprintf("%f ns per access", r.NsPerAccess))
	c.writeln(fmt.Sprintf("%f ns access rate", r.NsAccessRate))
	c.writeln(fmt.Sprintf("%f average depth", r.AvgDepth))
}

// PrintSummary prints a finished run. In quiet mode only the pass/fail
// status is printed.
func (c *Console) PrintSummary(result *engine.Result) {
	if c.quiet {
		c.PrintStatus(result.Passed)
		return
	}

	title := result.Name
	if title == "" {
		title = engine.RunName(result.Config)
	}
	c.printHeader(title, result.Passed)

	c.PrintStats(result.RunResult)
	c.writeln("")

	c.writeln(c.scheme.Title.Sprint("Per-worker ns per access:"))
	c.printDistribution(result.Spread)
	c.writeln("")

	if c.verbose {
		c.printRunInfo(result)
		c.printWorkers(result.Workers)
	}

	c.PrintThresholds(result.Thresholds)
}

// PrintThresholds prints each threshold with its status.
func (c *Console) PrintThresholds(results []engine.ThresholdResult) {
	if len(results) == 0 {
		return
	}

	c.writeln(c.scheme.Title.Sprint("Thresholds:"))
	for _, t := range results {
		status := output.SuccessIcon(c.noColor)
		if !t.Passed {
			status = output.ErrorIcon(c.noColor)
		}
		c.writeln(fmt.Sprintf("  %s %s (actual: %s)", status, t.Expression, t.Value))
		if t.Message != "" && !t.Passed {
			c.writeln(fmt.Sprintf("      %s", t.Message))
		}
	}
	c.writeln("")
}

// PrintMetrics prints one "name: value" line per name, in order. Names
// absent from values are skipped.
func (c *Console) PrintMetrics(names []string, values map[string]string) {
	for _, name := range names {
		if v, ok := values[name]; ok {
			c.writeln(fmt.Sprintf("%s: %s", name, c.scheme.Value.Sprint(v)))
		}
	}
}

// PrintSweep prints one table row per run of a sweep.
func (c *Console) PrintSweep(sweep *engine.SweepResult) {
	if c.quiet {
		c.PrintStatus(sweep.Passed)
		return
	}

	title := sweep.Name
	if title == "" {
		title = "sweep"
	}
	c.printHeader(title, sweep.Passed)
	if sweep.Description != "" {
		c.writeln(sweep.Description)
		c.writeln("")
	}

	tw := tabwriter.NewWriter(c.writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "threads\thold\tpost\tcores\tns/access\taccess rate\tdepth\tp99 ns/access\tstatus\t")
	for _, r := range sweep.Runs {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.3f\t%.2f\t%s\t\n",
			r.Threads, r.Config.Hold, r.Config.Post,
			r.CoresUtilized, r.NsPerAccess, r.NsAccessRate, r.AvgDepth,
			r.Spread.P99, status)
	}
	tw.Flush()
	c.writeln("")

	for _, r := range sweep.Runs {
		if !r.Passed {
			c.writeln(c.scheme.Error.Sprint(r.Name))
			c.PrintThresholds(r.Thresholds)
		}
	}
}

func (c *Console) printHeader(title string, passed bool) {
	line := c.scheme.Rule.Sprint(strings.Repeat("━", ruleWidth))
	status := c.scheme.Success.Sprint("Completed " + output.SuccessIcon(true))
	if !passed {
		status = c.scheme.Error.Sprint("Failed " + output.ErrorIcon(true))
	}

	c.writeln(line)
	c.writeln(fmt.Sprintf("%s - %s", c.scheme.Title.Sprint(title), status))
	c.writeln(line)
}

// PrintStatus prints PASSED or FAILED.
func (c *Console) PrintStatus(passed bool) {
	if passed {
		c.writeln(c.scheme.Success.Sprint("PASSED"))
	} else {
		c.writeln(c.scheme.Error.Sprint("FAILED"))
	}
}

func (c *Console) printDistribution(d metrics.Distribution) {
	rows := []struct {
		label string
		value float64
	}{
		{"Min", d.Min},
		{"P50", d.P50},
		{"P90", d.P90},
		{"P99", d.P99},
		{"Max", d.Max},
		{"Mean", d.Mean},
		{"StdDev", d.StdDev},
	}
	for _, row := range rows {
		c.writeln(fmt.Sprintf("  %-8s %s", row.label+":", c.scheme.Value.Sprintf("%.2f", row.value)))
	}
}

func (c *Console) printRunInfo(result *engine.Result) {
	cfg := result.Config
	c.writeln(c.scheme.Title.Sprint("Run:"))
	c.writeln(fmt.Sprintf("  Lock:          %s", c.scheme.Highlight.Sprint(result.Lock)))
	c.writeln(fmt.Sprintf("  Threads:       %d of %d cores", cfg.Threads, result.Cores))
	c.writeln(fmt.Sprintf("  Acquisitions:  %d per thread", cfg.Acquisitions))
	c.writeln(fmt.Sprintf("  Hold / Post:   %d / %d", cfg.Hold, cfg.Post))
	c.writeln(fmt.Sprintf("  Duration:      %s", result.EndTime.Sub(result.StartTime).Round(time.Microsecond)))
	c.writeln("")
}

func (c *Console) printWorkers(workers []metrics.WorkerStats) {
	if len(workers) == 0 {
		return
	}

	c.writeln(c.scheme.Title.Sprint("Workers:"))
	tw := tabwriter.NewWriter(c.writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "seq\tcore\tcompleted\tcpu ns\tns/access\tdepth\t")
	for _, w := range workers {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.2f\t%.3f\t\n",
			w.Seq, w.Core, w.Completed, w.CPUTime, w.NsPerAccess, w.AvgDepth)
	}
	tw.Flush()
	c.writeln("")
}

func (c *Console) writeln(s string) {
	fmt.Fprintln(c.writer, s)
}
