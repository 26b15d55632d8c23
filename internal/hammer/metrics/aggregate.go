// Package metrics aggregates per-worker measurements into a RunResult.
package metrics

import (
	"errors"
	"fmt"

	"github.com/HdrHistogram/hdrhistogram-go"
)

var (
	// ErrNoWorkers is returned when there is nothing to aggregate.
	ErrNoWorkers = errors.New("no worker samples")

	// ErrNoAcquisitions is returned when a worker completed nothing, which
	// would make its average depth undefined.
	ErrNoAcquisitions = errors.New("worker completed no acquisitions")

	// ErrClockSkew is returned when the end instant precedes the start.
	ErrClockSkew = errors.New("wall clock end precedes start")
)

// Sample is one joined worker's output slots.
type Sample struct {
	Seq       uint64
	Core      int
	Completed uint64
	CPUTime   int64
	Depth     uint64
}

// WorkerStats is a Sample with its derived per-worker figures.
type WorkerStats struct {
	Seq         uint64  `json:"seq"`
	Core        int     `json:"core"`
	Completed   uint64  `json:"completed"`
	CPUTime     int64   `json:"cpuNanos"`
	Depth       uint64  `json:"depth"`
	NsPerAccess float64 `json:"nsPerAccess"`
	AvgDepth    float64 `json:"avgDepth"`
}

// RunResult is the aggregate of one run. It is built once, after every
// worker has been joined, and not modified afterwards.
type RunResult struct {
	// Threads is the number of workers.
	Threads int `json:"threads"`

	// TotalCompleted is the sum of per-worker completed acquisitions.
	TotalCompleted uint64 `json:"totalCompleted"`

	// TotalCPUNanos is the sum of per-worker thread CPU time.
	TotalCPUNanos int64 `json:"totalCpuNanos"`

	// WallNanos is the controller's post-join instant minus the marshal's
	// start instant.
	WallNanos int64 `json:"wallNanos"`

	// AvgDepth is the unweighted mean of per-worker average depths.
	AvgDepth float64 `json:"avgDepth"`

	// CoresUtilized is TotalCPUNanos / WallNanos.
	CoresUtilized float64 `json:"coresUtilized"`

	// NsPerAccess is TotalCPUNanos / TotalCompleted.
	NsPerAccess float64 `json:"nsPerAccess"`

	// NsAccessRate is WallNanos / TotalCompleted.
	NsAccessRate float64 `json:"nsAccessRate"`

	// Spread summarizes per-worker ns-per-access.
	Spread Distribution `json:"spread"`

	// Workers holds per-worker figures in sequence order.
	Workers []WorkerStats `json:"workers"`
}

// Distribution is a percentile summary of a per-worker figure.
type Distribution struct {
	Min    float64 `json:"min"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

// Histogram bounds for per-worker ns-per-access, recorded in picoseconds:
// 1ps to 1000s with 3 significant figures.
const (
	histMin     = 1
	histMax     = 1_000_000_000_000_000
	histSigFigs = 3
	picosPerNs  = 1000
)

// Aggregate combines joined worker samples. start is the marshal's start
// instant and end the controller's post-join instant, both in nanoseconds
// on the same monotonic clock.
func Aggregate(samples []Sample, start, end int64) (*RunResult, error) {
	if len(samples) == 0 {
		return nil, ErrNoWorkers
	}
	if end < start {
		return nil, fmt.Errorf("%w: start=%d end=%d", ErrClockSkew, start, end)
	}

	hist := hdrhistogram.New(histMin, histMax, histSigFigs)
	result := &RunResult{
		Threads:   len(samples),
		WallNanos: end - start,
		Workers:   make([]WorkerStats, len(samples)),
	}

	for i, s := range samples {
		if s.Completed == 0 {
			return nil, fmt.Errorf("%w: worker %d", ErrNoAcquisitions, s.Seq)
		}

		ws := WorkerStats{
			Seq:         s.Seq,
			Core:        s.Core,
			Completed:   s.Completed,
			CPUTime:     s.CPUTime,
			Depth:       s.Depth,
			NsPerAccess: float64(s.CPUTime) / float64(s.Completed),
			AvgDepth:    float64(s.Depth) / float64(s.Completed),
		}
		result.Workers[i] = ws

		result.TotalCompleted += s.Completed
		result.TotalCPUNanos += s.CPUTime
		result.AvgDepth += ws.AvgDepth / float64(len(samples))

		if err := hist.RecordValue(clamp(int64(ws.NsPerAccess * picosPerNs))); err != nil {
			return nil, fmt.Errorf("recording worker %d: %w", s.Seq, err)
		}
	}

	if result.WallNanos > 0 {
		result.CoresUtilized = float64(result.TotalCPUNanos) / float64(result.WallNanos)
	}
	result.NsPerAccess = float64(result.TotalCPUNanos) / float64(result.TotalCompleted)
	result.NsAccessRate = float64(result.WallNanos) / float64(result.TotalCompleted)
	result.Spread = distribution(hist)

	return result, nil
}

func clamp(v int64) int64 {
	if v < histMin {
		return histMin
	}
	if v > histMax {
		return histMax
	}
	return v
}

func distribution(h *hdrhistogram.Histogram) Distribution {
	ns := func(v int64) float64 { return float64(v) / picosPerNs }
	return Distribution{
		Min:    ns(h.Min()),
		P50:    ns(h.ValueAtQuantile(50)),
		P90:    ns(h.ValueAtQuantile(90)),
		P99:    ns(h.ValueAtQuantile(99)),
		Max:    ns(h.Max()),
		Mean:   h.Mean() / picosPerNs,
		StdDev: h.StdDev() / picosPerNs,
	}
}
