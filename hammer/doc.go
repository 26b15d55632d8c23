// Package hammer measures the cost of a lock under controlled contention.
//
// N worker threads, each locked to its own OS thread, optionally pinned to a
// core and scheduled SCHED_FIFO, wait on a lock-free startup barrier and then
// acquire and release a shared lock a fixed number of times. Between
// acquire and release a worker spins for a configurable number of
// iterations (the critical section); after release it spins again (the
// parallel section). The run reports CPU time per acquisition, wall-clock
// access rate, cores utilized and the lock's own estimate of contention
// depth.
//
// # Quick Start
//
//	result, err := hammer.Run(&hammer.RunConfig{
//	    Threads:      4,
//	    Acquisitions: 100000,
//	    Hold:         200,
//	    Lock:         "mutex",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%.1f ns per access, depth %.2f\n", result.NsPerAccess, result.AvgDepth)
//
// # Custom Locks
//
// Any type implementing Strategy can be measured. Register it on a Runner
// under a name and select it in the configuration:
//
//	runner := hammer.NewRunner(hammer.Options{})
//	runner.Register("ticket", "ticket lock", func() hammer.Strategy { return &TicketLock{} })
//	result, err := runner.Run(&hammer.RunConfig{Lock: "ticket"})
//
// Acquire returns the lock's depth estimate for that acquisition, usually
// the number of other acquirers it observed. Addr returns the word the
// workers touch before each acquisition.
//
// # Sweeps
//
// A SweepConfig describes a series of runs over thread counts and delays,
// usually loaded from YAML:
//
//	cfg, _ := hammer.LoadSweep("scaling.yaml")
//	sweep, _ := runner.Sweep(cfg)
//	for _, r := range sweep.Runs {
//	    fmt.Println(r.Name, r.NsPerAccess)
//	}
//
// # Thresholds
//
// Thresholds are expressions over result fields, such as
// "nsPerAccess < 500" or "spread.p99 <= 900". A result whose thresholds
// fail has Passed set to false; the run itself still succeeds.
package hammer
