package pipeline

import (
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/semaphore"
)

// Budget is the process-wide pool of worker threads available for
// parallel fan-out during a node's forward pull, corresponding to
// pipeline.numThreads. A nil *Budget, like the empty Budget returned by
// NewBudget(0), makes every fan-out run inline.
type Budget struct {
	sem *semaphore.Weighted
	n   int64
}

// NewBudget creates a budget sized to numThreads. numThreads <= 0 yields
// a budget that never grants a worker slot, so fan-out is strictly
// sequential — the documented default.
func NewBudget(numThreads int) *Budget {
	if numThreads <= 0 {
		return &Budget{}
	}
	return &Budget{sem: semaphore.NewWeighted(int64(numThreads)), n: int64(numThreads)}
}

// tryAcquire claims one worker slot, reporting whether one was free.
func (b *Budget) tryAcquire() bool {
	if b == nil || b.sem == nil {
		return false
	}
	return b.sem.TryAcquire(1)
}

func (b *Budget) release() {
	if b == nil || b.sem == nil {
		return
	}
	b.sem.Release(1)
}

var (
	globalBudgetMu sync.RWMutex
	globalBudget   = NewBudget(0)
)

// SetNumThreads replaces the process-wide worker budget every node built
// without an explicit WithBudget option draws from. It corresponds to
// the pipelinectl --num-threads flag and PIPELINE_NUM_THREADS
// environment variable, both of which call this at startup.
func SetNumThreads(n int) {
	globalBudgetMu.Lock()
	defer globalBudgetMu.Unlock()
	globalBudget = NewBudget(n)
}

// GlobalThreadBudget returns the current process-wide worker budget.
func GlobalThreadBudget() *Budget {
	globalBudgetMu.RLock()
	defer globalBudgetMu.RUnlock()
	return globalBudget
}

// Option configures a SimpleProcessNode at construction time.
type Option func(*SimpleProcessNode)

// WithLogr attaches a structured logger; the default is logr.Discard().
func WithLogr(log logr.Logger) Option {
	return func(n *SimpleProcessNode) { n.log = log.WithValues("node", n.Name()) }
}

// WithLockingStrategy selects which ports are mutex-guarded around
// updateOutputs. The default is NoLockingStrategy.
func WithLockingStrategy(strategy LockingStrategy) Option {
	return func(n *SimpleProcessNode) { n.locking = strategy }
}

// WithBudget shares a worker-thread budget across every node built with
// it, modelling the process-wide pipeline.numThreads setting. Nodes
// built without this option use GlobalThreadBudget as it stands when
// they are constructed.
func WithBudget(budget *Budget) Option {
	return func(n *SimpleProcessNode) { n.budget = budget }
}
