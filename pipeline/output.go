package pipeline

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/flowcore/pipeline/signals"
)

// OutputBase is the type-erased face of every output port: the part the
// process node registries, locking strategies, and input ports need
// without knowing the concrete payload type.
type OutputBase interface {
	// Data returns the current value, or nil if none has been set.
	Data() Value
	// EnsureData creates a zero value if none exists yet and returns it,
	// so an input can accept a never-written output.
	EnsureData() Value
	ForwardSender() *signals.Sender
	ForwardReceiver() *signals.Receiver
	AddDependency(node *ProcessNode)
	Dependencies() []*ProcessNode
	Owner() *ProcessNode
	setOwner(node *ProcessNode)
	RegisterCallback(cb *signals.Callback)
}

// Output owns a value of payload type D (which must itself satisfy
// Value), with shared ownership semantics: downstream inputs that accept
// this output retain D directly, so the data outlives a later Reset here.
type Output[D Value] struct {
	mu      sync.Mutex
	data    D
	valued  bool
	newData func() D

	owner *ProcessNode
	deps  mapset.Set[*ProcessNode]

	sender         *signals.Sender
	receiver       *signals.Receiver
	pointerSetSlot *signals.Slot[signals.OutputPointerSet]
}

// NewOutput creates an empty output whose zero value is produced by
// newData when EnsureData is called with nothing set yet.
func NewOutput[D Value](newData func() D) *Output[D] {
	o := &Output[D]{
		newData:        newData,
		deps:           mapset.NewThreadUnsafeSet[*ProcessNode](),
		sender:         signals.NewSender(),
		receiver:       signals.NewReceiver(),
		pointerSetSlot: signals.NewSlot[signals.OutputPointerSet](),
	}
	signals.RegisterSlot(o.sender, o.pointerSetSlot)
	return o
}

func (o *Output[D]) Data() Value {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.valued {
		return nil
	}
	return o.data
}

func (o *Output[D]) EnsureData() Value {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.valued {
		o.data = o.newData()
		o.valued = true
	}
	return o.data
}

// Set replaces the held value and notifies connected inputs of the
// pointer change.
func (o *Output[D]) Set(v D) {
	o.mu.Lock()
	o.data = v
	o.valued = true
	o.mu.Unlock()

	o.pointerSetSlot.Emit(signals.OutputPointerSet{})
}

// Reset drops the held value. The data itself survives as long as any
// input still shares ownership of it.
func (o *Output[D]) Reset() {
	o.mu.Lock()
	var zero D
	o.data = zero
	o.valued = false
	o.mu.Unlock()
}

// Get returns the current value and whether one is set.
func (o *Output[D]) Get() (D, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.data, o.valued
}

// MustGet returns the current value, panicking with ErrNullPointer if
// none is set.
func (o *Output[D]) MustGet() D {
	d, ok := o.Get()
	if !ok {
		panic(fmt.Errorf("%w: output has no value", ErrNullPointer))
	}
	return d
}

func (o *Output[D]) ForwardSender() *signals.Sender     { return o.sender }
func (o *Output[D]) ForwardReceiver() *signals.Receiver { return o.receiver }

func (o *Output[D]) AddDependency(n *ProcessNode) {
	if n != nil {
		o.deps.Add(n)
	}
}

func (o *Output[D]) Dependencies() []*ProcessNode { return o.deps.ToSlice() }

func (o *Output[D]) Owner() *ProcessNode     { return o.owner }
func (o *Output[D]) setOwner(n *ProcessNode) { o.owner = n }

func (o *Output[D]) RegisterCallback(cb *signals.Callback) { o.receiver.RegisterCallback(cb) }

// RegisterOutputCallback attaches a strongly-typed handler to out's
// forward receiver, tracked against owner. Output callbacks conventionally
// use Shared tracking (see spec rationale: a producer must not let its
// subscriber die while the output might still need to deliver a final
// Modified on teardown).
func RegisterOutputCallback[D Value, O any, S signals.Signal](out *Output[D], kind signals.Kind, owner *O, tracking signals.Tracking, invocation signals.Invocation, handler func(S)) {
	cb := signals.NewCallback(kind, owner, tracking, invocation, func(sig signals.Signal) {
		if typed, ok := sig.(S); ok {
			handler(typed)
		}
	})
	out.RegisterCallback(cb)
}

// WrappedOutput adapts Output[*Wrap[T]] for payload types T that do not
// themselves implement Value, unboxing transparently.
type WrappedOutput[T any] struct {
	*Output[*Wrap[T]]
}

// NewWrappedOutput creates a wrapped output for plain payload type T.
func NewWrappedOutput[T any]() *WrappedOutput[T] {
	return &WrappedOutput[T]{Output: NewOutput(func() *Wrap[T] {
		var zero T
		return NewWrap(zero)
	})}
}

// SetValue boxes value and sets it as the output's data.
func (w *WrappedOutput[T]) SetValue(value T) {
	w.Set(NewWrap(value))
}

// Value unboxes the current payload, if any.
func (w *WrappedOutput[T]) Value() (T, bool) {
	d, ok := w.Get()
	if !ok {
		var zero T
		return zero, false
	}
	return d.Payload, true
}
