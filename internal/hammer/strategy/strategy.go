// Package strategy defines the lock-under-test capability set and the
// registry that selects an implementation by name at run time.
//
// A Strategy owns its lock state. Initialize is called once by the
// controller before any worker starts; afterwards the state is only touched
// through Acquire and Release.
package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/spf13/pflag"
)

// ErrUnknownStrategy is returned when a name is not registered.
var ErrUnknownStrategy = errors.New("unknown lock strategy")

// Strategy is a lock under test.
type Strategy interface {
	// Name returns the registry name.
	Name() string

	// Flags declares strategy-specific arguments. Arguments given after
	// "--" on the command line are parsed against this set.
	Flags(fs *pflag.FlagSet)

	// Initialize prepares the lock state for a machine with numCores cores.
	Initialize(numCores int) error

	// Acquire blocks until workerID holds the lock and returns a
	// non-negative contention estimate observed by the call.
	Acquire(workerID uint64) uint64

	// Release gives up the lock held by workerID.
	Release(workerID uint64)

	// Addr returns the first word Acquire touches. The harness prefetches
	// it before every acquisition.
	Addr() *atomic.Uint64
}

// Factory creates a fresh, uninitialized Strategy.
type Factory func() Strategy

// Registry maps strategy names to factories.
type Registry struct {
	factories    map[string]Factory
	descriptions map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories:    make(map[string]Factory),
		descriptions: make(map[string]string),
	}
}

// DefaultRegistry returns a registry holding the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("empty", "no lock; measures harness overhead", func() Strategy { return &Empty{} })
	r.Register("mutex", "sync.Mutex", func() Strategy { return &Mutex{} })
	r.Register("rwmutex", "sync.RWMutex, writer side only", func() Strategy { return &RWMutex{} })
	r.Register("deadlock", "go-deadlock instrumented mutex", func() Strategy { return &Deadlock{} })
	return r
}

// Register adds a factory under name, replacing any previous entry.
func (r *Registry) Register(name, description string, f Factory) {
	r.factories[name] = f
	r.descriptions[name] = description
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line description registered for name.
func (r *Registry) Describe(name string) string {
	return r.descriptions[name]
}

// New creates the named strategy and parses args against its flags.
// Args are passed through unvalidated by the harness; only the strategy
// decides what they mean.
func (r *Registry) New(name string, args []string) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(r.Names(), ", "))
	}

	s := f()
	if err := ParseArgs(s, args); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseArgs parses strategy arguments for s.
func ParseArgs(s Strategy, args []string) error {
	fs := pflag.NewFlagSet(s.Name(), pflag.ContinueOnError)
	fs.Usage = func() {}
	s.Flags(fs)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: invalid lock arguments: %w", s.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%s: unexpected lock arguments: %s", s.Name(), strings.Join(fs.Args(), " "))
	}
	return nil
}

// Usage returns the flag help text for the named strategy, or an empty
// string if it takes no arguments.
func (r *Registry) Usage(name string) string {
	f, ok := r.factories[name]
	if !ok {
		return ""
	}
	s := f()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	s.Flags(fs)
	return fs.FlagUsages()
}
