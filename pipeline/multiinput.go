package pipeline

import (
	"sync"

	"github.com/flowcore/pipeline/signals"
)

// MultiInputBase is the type-erased face of every multi-input port.
type MultiInputBase interface {
	AcceptOutput(output OutputBase) (int, error)
	AcceptValue(value Value) (int, error)
	Clear()
	Len() int
	At(i int) InputBase
	BackwardSender() *signals.Sender
	BackwardReceiver() *signals.Receiver
}

// slotGroupBinder wires a freshly accepted input into a previously
// registered Slots[S] group, type-erasing the concrete signal type S.
type slotGroupBinder interface {
	bind(input InputBase)
}

type slotGroupAdapter[S signals.Signal] struct {
	group *signals.Slots[S]
}

func (a *slotGroupAdapter[S]) bind(input InputBase) {
	idx := a.group.AddSlot()
	signals.RegisterSlot(input.BackwardSender(), a.group.At(idx))
}

// multiCallbackBinder produces a fresh, index-bound Callback for a newly
// accepted input, type-erasing the concrete owner/signal types.
type multiCallbackBinder struct {
	makeCallback func(index int) *signals.Callback
}

// MultiInput is an ordered, growable sequence of Input[D] ports of
// uniform payload type D.
type MultiInput[D Value] struct {
	mu     sync.Mutex
	inputs []*Input[D]

	backwardSender   *signals.Sender
	backwardReceiver *signals.Receiver

	internalSender    *signals.Sender
	inputAddedSlot    *signals.Slot[signals.InputAdded]
	inputsClearedSlot *signals.Slot[signals.InputsCleared]
	internalConnected bool
	slotGroups        []slotGroupBinder
	multiCallbacks    []multiCallbackBinder
}

// NewMultiInput creates an empty multi-input.
func NewMultiInput[D Value]() *MultiInput[D] {
	m := &MultiInput[D]{
		backwardSender:    signals.NewSender(),
		backwardReceiver:  signals.NewReceiver(),
		internalSender:    signals.NewSender(),
		inputAddedSlot:    signals.NewSlot[signals.InputAdded](),
		inputsClearedSlot: signals.NewSlot[signals.InputsCleared](),
	}
	signals.RegisterSlot(m.internalSender, m.inputAddedSlot)
	signals.RegisterSlot(m.internalSender, m.inputsClearedSlot)
	return m
}

func (m *MultiInput[D]) connectInternal() {
	if !m.internalConnected {
		m.internalSender.Connect(m.backwardReceiver)
		m.internalConnected = true
	}
}

// RegisterMultiInputSlots registers a growable Slots[S] group: every input
// accepted from now on (and retroactively none accepted before — matching
// the source's behavior of only wiring slots carved at accept time)
// receives its own slot in group, addressable by the input's ordinal.
func RegisterMultiInputSlots[D Value, S signals.Signal](m *MultiInput[D], group *signals.Slots[S]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slotGroups = append(m.slotGroups, &slotGroupAdapter[S]{group: group})
}

// RegisterMultiInputCallback registers a callback factory that, for every
// input accepted from now on, attaches handler(signal, ordinal) to that
// input's backward receiver.
func RegisterMultiInputCallback[D Value, O any, S signals.Signal](m *MultiInput[D], kind signals.Kind, owner *O, tracking signals.Tracking, invocation signals.Invocation, handler func(sig S, index int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.multiCallbacks = append(m.multiCallbacks, multiCallbackBinder{
		makeCallback: func(index int) *signals.Callback {
			return signals.NewCallback(kind, owner, tracking, invocation, func(sig signals.Signal) {
				if typed, ok := sig.(S); ok {
					handler(typed, index)
				}
			})
		},
	})
}

func (m *MultiInput[D]) accept(bind func(*Input[D]) error) (int, error) {
	newInput := NewInput[D]()
	if err := bind(newInput); err != nil {
		return -1, err
	}

	m.mu.Lock()
	index := len(m.inputs)
	m.inputs = append(m.inputs, newInput)
	slotGroups := make([]slotGroupBinder, len(m.slotGroups))
	copy(slotGroups, m.slotGroups)
	callbacks := make([]multiCallbackBinder, len(m.multiCallbacks))
	copy(callbacks, m.multiCallbacks)
	m.connectInternal()
	m.mu.Unlock()

	for _, sg := range slotGroups {
		sg.bind(newInput)
	}
	for _, cbBinder := range callbacks {
		newInput.RegisterBackwardCallback(cbBinder.makeCallback(index))
	}

	m.inputAddedSlot.Emit(signals.InputAdded{Index: index})
	return index, nil
}

// AcceptOutput creates a fresh Input[D], wires it to output, appends it to
// the sequence, and emits InputAdded.
func (m *MultiInput[D]) AcceptOutput(output OutputBase) (int, error) {
	return m.accept(func(in *Input[D]) error { return in.Accept(output) })
}

// AcceptValue creates a fresh Input[D], wires it to a direct value,
// appends it to the sequence, and emits InputAdded.
func (m *MultiInput[D]) AcceptValue(value Value) (int, error) {
	return m.accept(func(in *Input[D]) error { return in.AcceptValue(value) })
}

// Clear drops every accepted input and emits InputsCleared.
func (m *MultiInput[D]) Clear() {
	m.mu.Lock()
	m.inputs = nil
	for _, sg := range m.slotGroups {
		if clearer, ok := sg.(interface{ clearGroup() }); ok {
			clearer.clearGroup()
		}
	}
	m.mu.Unlock()

	m.inputsClearedSlot.Emit(signals.InputsCleared{})
}

func (a *slotGroupAdapter[S]) clearGroup() { a.group.Clear() }

// Len reports the current number of accepted inputs.
func (m *MultiInput[D]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// At returns the input at ordinal i (type-erased).
func (m *MultiInput[D]) At(i int) InputBase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[i]
}

// Typed returns the concrete input at ordinal i.
func (m *MultiInput[D]) Typed(i int) *Input[D] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[i]
}

func (m *MultiInput[D]) BackwardSender() *signals.Sender     { return m.backwardSender }
func (m *MultiInput[D]) BackwardReceiver() *signals.Receiver { return m.backwardReceiver }
