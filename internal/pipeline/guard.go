package pipeline

import (
	"errors"
	"sync"
)

// ErrRunInProgress is returned to on-demand triggers that lose the race
// against a scheduled run of the same job type.
var ErrRunInProgress = errors.New("import run already in progress")

// RunGuard enforces single-active-run semantics per job type across both
// the scheduler loop and on-demand triggers. Different job types may still
// overlap.
type RunGuard struct {
	mu     sync.Mutex
	active map[string]bool
}

func NewRunGuard() *RunGuard {
	return &RunGuard{
		active: make(map[string]bool),
	}
}

// TryAcquire claims the named job type. Returns false when a run of that
// type is already in flight.
func (g *RunGuard) TryAcquire(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[name] {
		return false
	}
	g.active[name] = true
	return true
}

func (g *RunGuard) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, name)
}
