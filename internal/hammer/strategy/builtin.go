package strategy

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sasha-s/go-deadlock"
	"github.com/spf13/pflag"
	"golang.org/x/sys/cpu"

	"github.com/wesleyorama2/lockhammer/internal/hammer/atomics"
)

// inflight counts callers between entering Acquire and leaving Release.
// The count seen on entry is the depth reported for that acquisition:
// 0 when uncontended, otherwise the holder plus every queued waiter.
type inflight struct {
	_ cpu.CacheLinePad
	n atomic.Uint64
	_ cpu.CacheLinePad
}

func (f *inflight) enter() uint64 {
	return atomics.FetchAdd(&f.n, 1, atomics.Acquire)
}

func (f *inflight) leave() {
	atomics.FetchAdd(&f.n, ^uint64(0), atomics.Release)
}

// Empty performs no locking at all.
type Empty struct {
	word atomic.Uint64
}

func (e *Empty) Name() string          { return "empty" }
func (e *Empty) Flags(*pflag.FlagSet)  {}
func (e *Empty) Initialize(int) error  { return nil }
func (e *Empty) Acquire(uint64) uint64 { return 0 }
func (e *Empty) Release(uint64)        {}
func (e *Empty) Addr() *atomic.Uint64  { return &e.word }

// Mutex adapts sync.Mutex. With --try-spin set, Acquire polls TryLock that
// many times before falling back to a blocking Lock.
type Mutex struct {
	mu       sync.Mutex
	depth    inflight
	trySpin  uint64
	spinWait uint64
}

func (m *Mutex) Name() string { return "mutex" }

func (m *Mutex) Flags(fs *pflag.FlagSet) {
	fs.Uint64Var(&m.trySpin, "try-spin", 0, "TryLock attempts before blocking")
	fs.Uint64Var(&m.spinWait, "try-delay", 0, "busy iterations between TryLock attempts")
}

func (m *Mutex) Initialize(int) error { return nil }

func (m *Mutex) Acquire(uint64) uint64 {
	depth := m.depth.enter()
	for i := uint64(0); i < m.trySpin; i++ {
		if m.mu.TryLock() {
			return depth
		}
		atomics.SpinFor(m.spinWait)
	}
	m.mu.Lock()
	return depth
}

func (m *Mutex) Release(uint64) {
	m.mu.Unlock()
	m.depth.leave()
}

func (m *Mutex) Addr() *atomic.Uint64 { return &m.depth.n }

// RWMutex adapts the writer side of sync.RWMutex.
type RWMutex struct {
	mu    sync.RWMutex
	depth inflight
}

func (m *RWMutex) Name() string         { return "rwmutex" }
func (m *RWMutex) Flags(*pflag.FlagSet) {}
func (m *RWMutex) Initialize(int) error { return nil }

func (m *RWMutex) Acquire(uint64) uint64 {
	depth := m.depth.enter()
	m.mu.Lock()
	return depth
}

func (m *RWMutex) Release(uint64) {
	m.mu.Unlock()
	m.depth.leave()
}

func (m *RWMutex) Addr() *atomic.Uint64 { return &m.depth.n }

// Deadlock adapts go-deadlock's instrumented mutex. Its options are
// package-global in go-deadlock and read by watchdog goroutines that can
// outlive a run, so they are applied once per process by the first
// Initialize. Later runs must ask for the same values.
type Deadlock struct {
	mu      deadlock.Mutex
	depth   inflight
	timeout time.Duration
	detect  bool
}

// deadlockOpts holds the go-deadlock options applied for this process.
var deadlockOpts struct {
	once    sync.Once
	timeout time.Duration
	detect  bool
}

func (d *Deadlock) Name() string { return "deadlock" }

func (d *Deadlock) Flags(fs *pflag.FlagSet) {
	fs.DurationVar(&d.timeout, "timeout", 30*time.Second, "report a potential deadlock after waiting this long")
	fs.BoolVar(&d.detect, "lock-order", false, "enable lock-order detection")
}

func (d *Deadlock) Initialize(int) error {
	deadlockOpts.once.Do(func() {
		deadlock.Opts.DeadlockTimeout = d.timeout
		deadlock.Opts.DisableLockOrderDetection = !d.detect
		deadlockOpts.timeout = d.timeout
		deadlockOpts.detect = d.detect
	})

	if d.timeout != deadlockOpts.timeout || d.detect != deadlockOpts.detect {
		return fmt.Errorf("deadlock: options already applied for this process (--timeout=%s --lock-order=%t)",
			deadlockOpts.timeout, deadlockOpts.detect)
	}
	return nil
}

func (d *Deadlock) Acquire(uint64) uint64 {
	depth := d.depth.enter()
	d.mu.Lock()
	return depth
}

func (d *Deadlock) Release(uint64) {
	d.mu.Unlock()
	d.depth.leave()
}

func (d *Deadlock) Addr() *atomic.Uint64 { return &d.depth.n }
