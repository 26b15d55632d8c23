package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Totals(t *testing.T) {
	samples := []Sample{
		{Seq: 0, Core: 4, Completed: 100, CPUTime: 2000, Depth: 50},
		{Seq: 1, Core: 1, Completed: 100, CPUTime: 4000, Depth: 150},
	}

	result, err := Aggregate(samples, 1000, 4000)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Threads)
	assert.Equal(t, uint64(200), result.TotalCompleted)
	assert.Equal(t, int64(6000), result.TotalCPUNanos)
	assert.Equal(t, int64(3000), result.WallNanos)
	assert.InDelta(t, 2.0, result.CoresUtilized, 1e-9)
	assert.InDelta(t, 30.0, result.NsPerAccess, 1e-9)
	assert.InDelta(t, 15.0, result.NsAccessRate, 1e-9)
	assert.InDelta(t, 1.0, result.AvgDepth, 1e-9)
	require.Len(t, result.Workers, 2)
	assert.InDelta(t, 20.0, result.Workers[0].NsPerAccess, 1e-9)
	assert.InDelta(t, 1.5, result.Workers[1].AvgDepth, 1e-9)
}

func TestAggregate_AvgDepthIsUnweighted(t *testing.T) {
	// Worker 0: 10 acquisitions averaging depth 1.
	// Worker 1: 1000 acquisitions averaging depth 3.
	// Weighted by completions the mean would be near 3; unweighted it is 2.
	samples := []Sample{
		{Seq: 0, Completed: 10, CPUTime: 100, Depth: 10},
		{Seq: 1, Completed: 1000, CPUTime: 10000, Depth: 3000},
	}

	result, err := Aggregate(samples, 0, 100)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, result.AvgDepth, 1e-9)
}

func TestAggregate_SingleWorkerDepthIsOwnAverage(t *testing.T) {
	result, err := Aggregate([]Sample{{Completed: 1000, CPUTime: 5000, Depth: 250}}, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), result.TotalCompleted)
	assert.InDelta(t, 0.25, result.AvgDepth, 1e-12)
	assert.InDelta(t, result.Workers[0].AvgDepth, result.AvgDepth, 1e-12)
}

func TestAggregate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		samples    []Sample
		start, end int64
		want       error
	}{
		{name: "no samples", want: ErrNoWorkers},
		{
			name:    "zero completed",
			samples: []Sample{{Completed: 10, CPUTime: 1}, {Seq: 1}},
			end:     10,
			want:    ErrNoAcquisitions,
		},
		{
			name:    "end before start",
			samples: []Sample{{Completed: 1}},
			start:   10,
			end:     5,
			want:    ErrClockSkew,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Aggregate(tt.samples, tt.start, tt.end)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAggregate_ZeroWallTime(t *testing.T) {
	result, err := Aggregate([]Sample{{Completed: 4, CPUTime: 8}}, 7, 7)
	require.NoError(t, err)

	assert.Zero(t, result.CoresUtilized)
	assert.Zero(t, result.NsAccessRate)
	assert.InDelta(t, 2.0, result.NsPerAccess, 1e-9)
}

func TestAggregate_Spread(t *testing.T) {
	samples := make([]Sample, 0, 10)
	for i := 1; i <= 10; i++ {
		samples = append(samples, Sample{Seq: uint64(i - 1), Completed: 100, CPUTime: int64(i) * 1000})
	}

	result, err := Aggregate(samples, 0, 100_000)
	require.NoError(t, err)

	// Per-worker ns/access runs 10, 20, ... 100.
	assert.InDelta(t, 10.0, result.Spread.Min, 0.1)
	assert.InDelta(t, 100.0, result.Spread.Max, 0.1)
	assert.InDelta(t, 55.0, result.Spread.Mean, 0.5)
	assert.LessOrEqual(t, result.Spread.P50, result.Spread.P90)
	assert.LessOrEqual(t, result.Spread.P90, result.Spread.P99)
}
