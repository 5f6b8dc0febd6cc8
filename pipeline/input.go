package pipeline

import (
	"fmt"
	"sync"

	"github.com/flowcore/pipeline/signals"
)

// InputBase is the type-erased face of every input port.
type InputBase interface {
	HasAssignedOutput() bool
	AssignedOutput() OutputBase
	// IsAssigned reports whether the input currently resolves to a value,
	// whether from an accepted producer output or from a direct value.
	IsAssigned() bool
	// IsValued reports whether the input currently holds a value pointer.
	IsValued() bool
	Unset()
	BackwardSender() *signals.Sender
	BackwardReceiver() *signals.Receiver
	RegisterBackwardCallback(cb *signals.Callback)
	// AcceptOutput and AcceptValue are the type-erased accept() overloads;
	// each performs a runtime type assertion against the port's concrete
	// payload type and returns AssignmentError on mismatch.
	AcceptOutput(output OutputBase) error
	AcceptValue(value Value) error
	// RawValue exposes the currently held value without knowledge of the
	// concrete payload type, for ports that copy one input's value into
	// another (setInputFrom).
	RawValue() (Value, bool)
}

// Input is a single-slot, typed input port. D must itself satisfy Value;
// for plain payload types use WrappedInput instead.
type Input[D Value] struct {
	mu sync.Mutex

	data     D
	valued   bool
	assigned OutputBase
	creator  *ProcessNode // retains the upstream node alive

	backwardSender   *signals.Sender
	backwardReceiver *signals.Receiver

	internalSender       *signals.Sender
	inputSetSlot         *signals.Slot[signals.InputSet]
	inputSetToSharedSlot *signals.Slot[signals.InputSetToSharedPointer]
	inputUnsetSlot       *signals.Slot[signals.InputUnset]
	internalConnected    bool
}

// NewInput creates an unassigned input port.
func NewInput[D Value]() *Input[D] {
	i := &Input[D]{
		backwardSender:       signals.NewSender(),
		backwardReceiver:     signals.NewReceiver(),
		internalSender:       signals.NewSender(),
		inputSetSlot:         signals.NewSlot[signals.InputSet](),
		inputSetToSharedSlot: signals.NewSlot[signals.InputSetToSharedPointer](),
		inputUnsetSlot:       signals.NewSlot[signals.InputUnset](),
	}
	signals.RegisterSlot(i.internalSender, i.inputSetSlot)
	signals.RegisterSlot(i.internalSender, i.inputSetToSharedSlot)
	signals.RegisterSlot(i.internalSender, i.inputUnsetSlot)
	return i
}

func (i *Input[D]) connectInternal() {
	if !i.internalConnected {
		i.internalSender.Connect(i.backwardReceiver)
		i.internalConnected = true
	}
}

// Accept wires this input to a producer output. The producer's data is
// created if needed and type-asserted to D first; on a payload type
// mismatch Accept returns AssignmentError and establishes no connection.
// Later pointer changes of a mismatched type are ignored by the re-copy
// callback below.
func (i *Input[D]) Accept(output OutputBase) error {
	raw := output.EnsureData()

	casted, ok := any(raw).(D)
	if !ok {
		return &AssignmentError{From: fmt.Sprintf("%T", raw), To: fmt.Sprintf("%T", casted)}
	}

	i.mu.Lock()
	i.data = casted
	i.valued = true
	i.creator = output.Owner()
	i.assigned = output
	i.mu.Unlock()

	i.connectInternal()
	output.ForwardSender().Connect(i.backwardReceiver)
	i.backwardSender.Connect(output.ForwardReceiver())

	// Re-copy the producer's pointer into this input whenever it changes,
	// so a later OutputPointerSet keeps the input's cached value in sync
	// without requiring a fresh accept() call.
	i.backwardReceiver.RegisterCallback(signals.NewStaticCallback(signals.KindOutputPointerSet, signals.Transparent, func(signals.Signal) {
		raw := output.Data()
		if raw == nil {
			return
		}
		if recast, ok := any(raw).(D); ok {
			i.mu.Lock()
			i.data = recast
			i.valued = true
			i.mu.Unlock()
		}
	}))

	i.inputSetSlot.Emit(signals.InputSet{Value: casted})
	return nil
}

func (i *Input[D]) AcceptOutput(output OutputBase) error { return i.Accept(output) }

// AcceptValue wires this input directly to a value, bypassing any
// producer output.
func (i *Input[D]) AcceptValue(value Value) error {
	casted, ok := value.(D)
	if !ok {
		return &AssignmentError{From: fmt.Sprintf("%T", value), To: fmt.Sprintf("%T", casted)}
	}

	i.mu.Lock()
	i.data = casted
	i.valued = true
	i.creator = nil
	i.assigned = nil
	i.mu.Unlock()

	i.connectInternal()

	i.inputSetToSharedSlot.Emit(signals.InputSetToSharedPointer{Value: casted})
	return nil
}

// Unset drops the held value and, if this input was connected to an
// output, tears down both signalling connections to it.
func (i *Input[D]) Unset() {
	i.mu.Lock()
	var zero D
	old := i.data
	i.data = zero
	i.valued = false
	i.creator = nil
	assigned := i.assigned
	i.assigned = nil
	i.mu.Unlock()

	if assigned != nil {
		assigned.ForwardSender().Disconnect(i.backwardReceiver)
		i.backwardSender.Disconnect(assigned.ForwardReceiver())
	}

	i.inputUnsetSlot.Emit(signals.InputUnset{OldValue: old})
}

func (i *Input[D]) HasAssignedOutput() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.assigned != nil
}

func (i *Input[D]) AssignedOutput() OutputBase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.assigned
}

func (i *Input[D]) IsAssigned() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.assigned != nil || i.valued
}

func (i *Input[D]) IsValued() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.valued
}

// Get returns the current value and whether one is set.
func (i *Input[D]) Get() (D, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.data, i.valued
}

// MustGet returns the current value, panicking with ErrNullPointer if
// unvalued — the Go stand-in for the source's debug-only NullPointer
// guard on dereference.
func (i *Input[D]) MustGet() D {
	d, ok := i.Get()
	if !ok {
		panic(fmt.Errorf("%w: input has no value", ErrNullPointer))
	}
	return d
}

// RawValue returns the current value boxed as Value, without the static
// payload type.
func (i *Input[D]) RawValue() (Value, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.valued {
		return nil, false
	}
	return i.data, true
}

func (i *Input[D]) BackwardSender() *signals.Sender     { return i.backwardSender }
func (i *Input[D]) BackwardReceiver() *signals.Receiver { return i.backwardReceiver }

func (i *Input[D]) RegisterBackwardCallback(cb *signals.Callback) {
	i.backwardReceiver.RegisterCallback(cb)
}

// RegisterInputCallback attaches a strongly-typed handler to in's
// backward receiver, tracked against owner with Weak tracking by
// convention (an input exclusively owns its callback bookkeeping; when
// owner dies the callback is dropped on next emission).
func RegisterInputCallback[D Value, O any, S signals.Signal](in *Input[D], kind signals.Kind, owner *O, invocation signals.Invocation, handler func(S)) {
	cb := signals.NewCallback(kind, owner, signals.Weak, invocation, func(sig signals.Signal) {
		if typed, ok := sig.(S); ok {
			handler(typed)
		}
	})
	in.RegisterBackwardCallback(cb)
}

// WrappedInput adapts Input[*Wrap[T]] for payload types T that do not
// themselves implement Value, unboxing transparently.
type WrappedInput[T any] struct {
	*Input[*Wrap[T]]
}

// NewWrappedInput creates a wrapped input for plain payload type T.
func NewWrappedInput[T any]() *WrappedInput[T] {
	return &WrappedInput[T]{Input: NewInput[*Wrap[T]]()}
}

// Value unboxes the current payload, if any.
func (w *WrappedInput[T]) Value() (T, bool) {
	d, ok := w.Get()
	if !ok {
		var zero T
		return zero, false
	}
	return d.Payload, true
}
