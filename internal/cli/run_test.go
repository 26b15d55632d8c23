package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
	"github.com/wesleyorama2/lockhammer/internal/hammer/strategy"
	"github.com/wesleyorama2/lockhammer/internal/output"
)

// parseRunArgs parses args with a fresh copy of the run command's flags.
func parseRunArgs(t *testing.T, args ...string) (*runOptions, error) {
	t.Helper()

	var (
		opts   *runOptions
		optErr error
	)
	cmd := &cobra.Command{
		Use:  "run",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, optErr = runOptionsFromFlags(cmd, args)
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())
	return opts, optErr
}

func TestRunOptionsFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		check   func(t *testing.T, opts *runOptions)
	}{
		{
			name: "defaults",
			args: nil,
			check: func(t *testing.T, opts *runOptions) {
				assert.Equal(t, 0, opts.config.Threads)
				assert.Equal(t, config.DefaultAcquisitions, opts.config.Acquisitions)
				assert.Equal(t, config.DefaultLock, opts.config.Lock)
				assert.Empty(t, opts.config.LockArgs)
				assert.Equal(t, output.FormatText, opts.report.format)
			},
		},
		{
			name: "short flags",
			args: []string{"-t", "4", "-a", "1000", "-c", "50", "-p", "200", "-l", "deadlock"},
			check: func(t *testing.T, opts *runOptions) {
				assert.Equal(t, config.RunConfig{
					Threads:      4,
					Acquisitions: 1000,
					Hold:         50,
					Post:         200,
					Lock:         "deadlock",
				}, opts.config)
			},
		},
		{
			name: "settings",
			args: []string{"--no-pin", "--no-realtime"},
			check: func(t *testing.T, opts *runOptions) {
				assert.True(t, opts.config.Settings.NoPin)
				assert.True(t, opts.config.Settings.NoRealtime)
				assert.False(t, opts.config.Settings.RequireRealtime)
			},
		},
		{
			name: "lock args after dash",
			args: []string{"-l", "mutex", "--", "--try-spin", "16"},
			check: func(t *testing.T, opts *runOptions) {
				assert.Equal(t, []string{"--try-spin", "16"}, opts.config.LockArgs)
			},
		},
		{
			name: "json shorthand",
			args: []string{"--json", "--threshold", "nsPerAccess < 10", "--threshold", "avgDepth < 2"},
			check: func(t *testing.T, opts *runOptions) {
				assert.Equal(t, output.FormatJSON, opts.report.format)
				assert.Equal(t, []string{"nsPerAccess < 10", "avgDepth < 2"}, opts.report.thresholds)
			},
		},
		{
			name:    "explicit zero threads",
			args:    []string{"-t", "0"},
			wantErr: config.ErrZeroThreads,
		},
		{
			name:    "explicit zero acquisitions",
			args:    []string{"-a", "0"},
			wantErr: config.ErrZeroAcquisitions,
		},
		{
			name:    "positional argument",
			args:    []string{"mutex"},
			wantErr: errAny,
		},
		{
			name:    "positional before dash",
			args:    []string{"mutex", "--", "--try-spin", "1"},
			wantErr: errAny,
		},
		{
			name:    "unknown format",
			args:    []string{"--format", "junit"},
			wantErr: errAny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseRunArgs(t, tt.args...)
			if tt.wantErr != nil {
				require.Error(t, err)
				if tt.wantErr != errAny {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

var errAny = errors.New("any error")

func testRunOptions(threads int) *runOptions {
	return &runOptions{
		config: config.RunConfig{
			Threads:      threads,
			Acquisitions: 200,
			Lock:         "mutex",
			Settings:     config.Settings{NoPin: true, NoRealtime: true},
		},
		report: reportOptions{format: output.FormatText, noColor: true},
	}
}

func TestExecuteRun_Text(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := executeRun(testRunOptions(1), strategy.DefaultRegistry(), &stdout, &stderr, zap.NewNop())
	require.NoError(t, err)

	line := strings.TrimSpace(stdout.String())
	fields := strings.Split(line, ", ")
	require.Len(t, fields, 5, "stdout carries exactly one CSV record")
	assert.Equal(t, "1", fields[0])

	assert.Contains(t, stderr.String(), "200 lock loops")
	assert.Contains(t, stderr.String(), "average depth")
}

func TestExecuteRun_ConfigurationErrorPrintsNothing(t *testing.T) {
	opts := testRunOptions(-2)

	var stdout, stderr bytes.Buffer
	err := executeRun(opts, strategy.DefaultRegistry(), &stdout, &stderr, zap.NewNop())
	require.Error(t, err)

	var verrs *config.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestExecuteRun_NegativeAcquiresFromFlags(t *testing.T) {
	opts, err := parseRunArgs(t, "-a", "-1", "--no-pin", "--no-realtime")
	require.NoError(t, err)
	assert.Equal(t, -1, opts.config.Acquisitions)

	var stdout, stderr bytes.Buffer
	err = executeRun(opts, strategy.DefaultRegistry(), &stdout, &stderr, zap.NewNop())
	require.Error(t, err)

	var verrs *config.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, err.Error(), "acquire count must be positive")
	assert.Empty(t, stdout.String())
}

func TestExecuteRun_UnknownLock(t *testing.T) {
	opts := testRunOptions(1)
	opts.config.Lock = "ticket"

	err := executeRun(opts, strategy.DefaultRegistry(), &bytes.Buffer{}, &bytes.Buffer{}, zap.NewNop())
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

func TestExecuteRun_JSONAndOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	opts := testRunOptions(1)
	opts.report.format = output.FormatJSON
	opts.report.outputPath = path

	var stdout bytes.Buffer
	err := executeRun(opts, strategy.DefaultRegistry(), &stdout, &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, float64(200), decoded["totalCompleted"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"totalCompleted": 200`)
}

func TestExecuteRun_ThresholdFailure(t *testing.T) {
	opts := testRunOptions(1)
	opts.report.format = output.FormatCSV
	opts.report.thresholds = []string{"totalCompleted > 1000"}

	var stdout bytes.Buffer
	err := executeRun(opts, strategy.DefaultRegistry(), &stdout, &bytes.Buffer{}, zap.NewNop())
	assert.ErrorIs(t, err, errThresholdsFailed)
	assert.NotEmpty(t, stdout.String(), "the report is printed before failing")
}

func TestSplitLockArgs_NoDash(t *testing.T) {
	cmd := &cobra.Command{}
	args, err := splitLockArgs(cmd, nil)
	require.NoError(t, err)
	assert.Nil(t, args)
}
