package batch

import (
	"sync/atomic"

	"github.com/gofrs/flock"
)

// ExecutionGuard serializes batch runs: at most one logical execution holds
// the guard at a time. Concurrent callers that fail TryAcquire are turned
// away, never queued.
type ExecutionGuard interface {
	TryAcquire() bool
	Release()
}

// AtomicGuard is the process-local guard used by a single-instance
// deployment.
type AtomicGuard struct {
	busy atomic.Bool
}

// NewAtomicGuard returns an in-memory execution guard.
func NewAtomicGuard() *AtomicGuard {
	return &AtomicGuard{}
}

func (g *AtomicGuard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *AtomicGuard) Release() {
	g.busy.Store(false)
}

// FlockGuard extends single-flight across processes on one host using an
// advisory file lock. The file lock alone is not enough: flock re-acquisition
// through the same descriptor succeeds, so an in-memory flag guards the
// in-process dimension first.
type FlockGuard struct {
	busy atomic.Bool
	lock *flock.Flock
}

// NewFlockGuard returns a guard backed by the given lock file path.
func NewFlockGuard(path string) *FlockGuard {
	return &FlockGuard{lock: flock.New(path)}
}

func (g *FlockGuard) TryAcquire() bool {
	if !g.busy.CompareAndSwap(false, true) {
		return false
	}
	ok, err := g.lock.TryLock()
	if err != nil || !ok {
		g.busy.Store(false)
		return false
	}
	return true
}

func (g *FlockGuard) Release() {
	_ = g.lock.Unlock()
	g.busy.Store(false)
}
