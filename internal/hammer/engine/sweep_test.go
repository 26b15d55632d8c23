package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
)

func TestRunSweep(t *testing.T) {
	tc := &config.TestConfig{
		Name:         "small",
		Lock:         "mutex",
		Acquisitions: 50,
		Threads:      []int{1, 2},
		Hold:         []int{0, 20},
		Settings:     unplaced,
		Thresholds:   []string{"threads >= 1"},
	}

	sweep, err := RunSweep(tc, Options{Cores: 2})
	require.NoError(t, err)

	assert.Equal(t, "small", sweep.Name)
	assert.True(t, sweep.Passed)
	require.Len(t, sweep.Runs, 4)

	want := []string{
		"mutex t=1 hold=0 post=0",
		"mutex t=1 hold=20 post=0",
		"mutex t=2 hold=0 post=0",
		"mutex t=2 hold=20 post=0",
	}
	for i, r := range sweep.Runs {
		assert.Equal(t, want[i], r.Name)
		assert.Equal(t, uint64(r.Threads)*50, r.TotalCompleted)
		require.Len(t, r.Thresholds, 1)
	}
}

func TestRunSweep_DeadlockAcrossRuns(t *testing.T) {
	tc := &config.TestConfig{
		Name:         "deadlock",
		Lock:         "deadlock",
		Acquisitions: 200,
		Threads:      []int{2},
		Hold:         []int{0, 10, 20, 50, 100, 200, 500, 1000},
		Settings:     unplaced,
	}

	sweep, err := RunSweep(tc, Options{Cores: 2})
	require.NoError(t, err)
	require.Len(t, sweep.Runs, 8)
	for _, r := range sweep.Runs {
		assert.Equal(t, uint64(400), r.TotalCompleted)
	}
}

func TestRunSweep_StopsAtFirstError(t *testing.T) {
	tc := &config.TestConfig{
		Lock:         "empty",
		Acquisitions: 10,
		Threads:      []int{1},
		Settings:     unplaced,
	}

	// Negative entries fail before the first run.
	tc.Hold = []int{-1}
	sweep, err := RunSweep(tc, Options{Cores: 2})
	require.Error(t, err)
	assert.Nil(t, sweep)

	// Run-level errors return the partial sweep.
	tc.Hold = nil
	sweep, err = RunSweep(tc, Options{Cores: 2, Thresholds: []string{"bogus"}})
	require.Error(t, err)
	require.NotNil(t, sweep)
	assert.Empty(t, sweep.Runs)
}

func TestRunSweep_FailedThreshold(t *testing.T) {
	tc := &config.TestConfig{
		Lock:         "empty",
		Acquisitions: 10,
		Threads:      []int{1},
		Settings:     unplaced,
		Thresholds:   []string{"totalCompleted > 10"},
	}

	sweep, err := RunSweep(tc, Options{Cores: 1})
	require.NoError(t, err)
	assert.False(t, sweep.Passed)
}

func TestRunName(t *testing.T) {
	got := RunName(config.RunConfig{Lock: "deadlock", Threads: 3, Hold: 5, Post: 7})
	assert.Equal(t, "deadlock t=3 hold=5 post=7", got)
}
