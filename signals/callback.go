package signals

import "weak"

// Tracking selects how a Callback's target lifetime relates to the
// callback's own. Weak lets the target die without the callback pinning
// it, dropping itself silently on the next dispatch that observes the
// target is gone. Shared pins the target alive for as long as the
// callback is still reachable through a Receiver's callback list.
type Tracking int

const (
	Weak Tracking = iota
	Shared
)

// Invocation selects what happens when more than one registered callback
// matches an emitted signal's kind chain. Exclusive fires only the
// callback(s) registered for the most specific matching kind; Transparent
// fires every matching callback regardless of specificity.
type Invocation int

const (
	Exclusive Invocation = iota
	Transparent
)

// Callback wraps a handler with a dispatch kind, an invocation policy, and
// a tracking policy.
type Callback struct {
	kind       Kind
	invocation Invocation
	handler    func(Signal)
	alive      func() bool
	retain     any // non-nil under Shared tracking; keeps the owner reachable
}

// NewCallback creates a Callback for kind, dispatched under invocation,
// whose lifetime is tied to owner according to tracking. owner is
// typically the *ProcessNode (or equivalent) that registered handler.
func NewCallback[O any](kind Kind, owner *O, tracking Tracking, invocation Invocation, handler func(Signal)) *Callback {
	cb := &Callback{kind: kind, invocation: invocation, handler: handler}

	switch tracking {
	case Shared:
		cb.retain = owner
		cb.alive = func() bool { return true }
	default: // Weak
		wp := weak.Make(owner)
		cb.alive = func() bool { return wp.Value() != nil }
	}

	return cb
}

// NewStaticCallback creates a Callback that is always considered alive
// (used for internal wiring owned by the very port/sender that registers
// it, which cannot itself be collected while in use).
func NewStaticCallback(kind Kind, invocation Invocation, handler func(Signal)) *Callback {
	return &Callback{kind: kind, invocation: invocation, handler: handler, alive: func() bool { return true }}
}

func (c *Callback) isAlive() bool { return c.alive() }
