package signals

import "sync"

// Receiver is a registry of Callbacks. Dispatching a Signal through it
// fires whichever registered callbacks match, honoring each callback's
// invocation policy and dropping any whose tracked owner has died.
type Receiver struct {
	mu        sync.Mutex
	callbacks []*Callback
}

// NewReceiver creates an empty Receiver.
func NewReceiver() *Receiver {
	return &Receiver{}
}

// RegisterCallback attaches cb to this receiver.
func (r *Receiver) RegisterCallback(cb *Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// dispatch fires every matching, still-alive callback for sig, honoring
// Exclusive/Transparent invocation policy, and prunes dead Weak-tracked
// callbacks as a side effect.
func (r *Receiver) dispatch(sig Signal) {
	r.mu.Lock()
	snapshot := make([]*Callback, len(r.callbacks))
	copy(snapshot, r.callbacks)
	r.mu.Unlock()

	alive := snapshot[:0:0]
	for _, cb := range snapshot {
		if cb.isAlive() {
			alive = append(alive, cb)
		}
	}
	if len(alive) != len(snapshot) {
		r.mu.Lock()
		r.callbacks = alive
		r.mu.Unlock()
	}

	chain := sig.Kinds()

	bestRank := -1
	var exclusiveMatches []*Callback
	var transparentMatches []*Callback

	for _, cb := range alive {
		rank := kindRank(chain, cb.kind)
		if rank < 0 {
			continue
		}
		if cb.invocation == Transparent {
			transparentMatches = append(transparentMatches, cb)
			continue
		}
		switch {
		case bestRank == -1 || rank < bestRank:
			bestRank = rank
			exclusiveMatches = []*Callback{cb}
		case rank == bestRank:
			exclusiveMatches = append(exclusiveMatches, cb)
		}
	}

	for _, cb := range transparentMatches {
		cb.handler(sig)
	}
	for _, cb := range exclusiveMatches {
		cb.handler(sig)
	}
}
