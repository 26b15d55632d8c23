package report

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
	"github.com/wesleyorama2/lockhammer/internal/hammer/engine"
	"github.com/wesleyorama2/lockhammer/internal/hammer/metrics"
	"github.com/wesleyorama2/lockhammer/internal/output"
)

func sampleRun() *metrics.RunResult {
	return &metrics.RunResult{
		Threads:        3,
		TotalCompleted: 3000,
		TotalCPUNanos:  600000,
		WallNanos:      300000,
		AvgDepth:       1.25,
		CoresUtilized:  2,
		NsPerAccess:    200,
		NsAccessRate:   100,
		Spread:         metrics.Distribution{Min: 150, P50: 200, P90: 240, P99: 250, Max: 250, Mean: 200},
		Workers: []metrics.WorkerStats{
			{Seq: 0, Core: 4, Completed: 1000, CPUTime: 150000, NsPerAccess: 150, AvgDepth: 1},
			{Seq: 1, Core: 1, Completed: 1000, CPUTime: 200000, NsPerAccess: 200, AvgDepth: 1.25},
			{Seq: 2, Core: 5, Completed: 1000, CPUTime: 250000, NsPerAccess: 250, AvgDepth: 1.5},
		},
	}
}

func sampleResult() *engine.Result {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &engine.Result{
		Lock:      "mutex",
		Config:    config.RunConfig{Threads: 3, Acquisitions: 1000, Hold: 10, Post: 20, Lock: "mutex"},
		Cores:     8,
		StartTime: start,
		EndTime:   start.Add(time.Millisecond),
		RunResult: sampleRun(),
		Passed:    true,
	}
}

func TestCSVLine(t *testing.T) {
	line := CSVLine(sampleRun())
	assert.Equal(t, "3, 2.000000, 200.000000, 100.000000, 1.250000", line)

	fields := strings.Split(line, ", ")
	require.Len(t, fields, 5)
	assert.Equal(t, "3", fields[0])
	assert.Len(t, strings.Split(CSVHeader, ", "), 5)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRun()))
	assert.Equal(t, CSVLine(sampleRun())+"\n", buf.String())
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(ConsoleConfig{Writer: &buf, NoColor: true}).PrintStats(sampleRun())

	want := []string{
		"3000 lock loops",
		"600000 ns scheduled",
		"300000 ns elapsed (~2.000000 cores)",
		"200.000000 ns per access",
		"100.000000 ns access rate",
		"1.250000 average depth",
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", buf.String())
}

func TestPrintSummary(t *testing.T) {
	result := sampleResult()
	result.Thresholds = []engine.ThresholdResult{
		{Metric: "nsPerAccess", Expression: "nsPerAccess < 100", Value: "200", Message: "nsPerAccess is 200, threshold: < 100"},
	}
	result.Passed = false

	var buf bytes.Buffer
	NewConsole(ConsoleConfig{Writer: &buf, NoColor: true, Verbose: true}).PrintSummary(result)
	out := buf.String()

	assert.Contains(t, out, "mutex t=3 hold=10 post=20 - Failed ✗")
	assert.Contains(t, out, "3000 lock loops")
	assert.Contains(t, out, "Per-worker ns per access:")
	assert.Contains(t, out, "P99:")
	assert.Contains(t, out, "Threads:       3 of 8 cores")
	assert.Contains(t, out, "Workers:")
	assert.Contains(t, out, "✗ nsPerAccess < 100 (actual: 200)")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestPrintSummary_Quiet(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(ConsoleConfig{Writer: &buf, NoColor: true, Quiet: true}).PrintSummary(sampleResult())
	assert.Equal(t, "PASSED\n", buf.String())
}

func TestPrintSummary_NotVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(ConsoleConfig{Writer: &buf, NoColor: true}).PrintSummary(sampleResult())
	assert.NotContains(t, buf.String(), "Workers:")
}

func TestPrintSweep(t *testing.T) {
	failing := sampleResult()
	failing.Name = "mutex t=3 hold=10 post=20"
	failing.Passed = false
	failing.Thresholds = []engine.ThresholdResult{{Expression: "avgDepth < 1", Value: "1.25"}}

	sweep := &engine.SweepResult{
		Name:        "scaling",
		Description: "mutex scaling",
		Runs:        []*engine.Result{sampleResult(), failing},
		Passed:      false,
	}

	var buf bytes.Buffer
	NewConsole(ConsoleConfig{Writer: &buf, NoColor: true}).PrintSweep(sweep)
	out := buf.String()

	assert.Contains(t, out, "scaling - Failed")
	assert.Contains(t, out, "mutex scaling")
	assert.Contains(t, out, "ns/access")
	assert.Equal(t, 1, strings.Count(out, "FAIL\n"))
	assert.Contains(t, out, "✗ avgDepth < 1 (actual: 1.25)")
}

func TestForceColors(t *testing.T) {
	// fatih/color turns itself off when stdout is not a terminal.
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	var buf bytes.Buffer
	NewConsole(ConsoleConfig{Writer: &buf, ForceColors: true}).PrintStatus(true)
	assert.Contains(t, buf.String(), "PASSED")
	assert.Contains(t, buf.String(), "\x1b[")

	buf.Reset()
	NewConsole(ConsoleConfig{Writer: &buf, ForceColors: true, NoColor: true}).PrintStatus(true)
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, output.FormatJSON, sampleResult()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "mutex", decoded["lock"])
	assert.Equal(t, float64(200), decoded["nsPerAccess"])
	assert.Contains(t, decoded, "workers")
}

func TestEncode_YAMLUsesJSONKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, output.FormatYAML, sampleResult()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.EqualValues(t, 200, decoded["nsPerAccess"])
	assert.Contains(t, decoded, "totalCpuNanos")
}

func TestEncode_RejectsText(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, output.FormatText, sampleResult()))
}

func TestWriteFile(t *testing.T) {
	path := t.TempDir() + "/result.json"
	require.NoError(t, WriteFile(path, output.FormatJSON, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lock": "mutex"`)

	err = WriteFile(t.TempDir()+"/missing/dir/result.json", output.FormatJSON, sampleResult())
	assert.Error(t, err)
}
