package pipeline

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/flowcore/pipeline/signals"
)

// multiInputDirty tracks the per-slot dirty vector and per-slot Update
// slots for one multi-input port. Its length tracks InputAdded/
// InputsCleared arrivals 1:1 (invariant 3 of the testable properties).
type multiInputDirty struct {
	mu    sync.Mutex
	dirty []bool
	slots *signals.Slots[signals.Update]
}

// pendingUpdate is one dirty unit — a single input or one multi-input
// slot — queued for the fan-out step of a forward pull.
type pendingUpdate struct {
	clear func()
	slot  *signals.Slot[signals.Update]
}

// SimpleProcessNode is the base every concrete node embeds to get dirty
// tracking, the forward-pull update protocol, locking, and threaded
// fan-out for free. Concrete node types supply a compute function and
// register their ports with RegisterInput/RegisterMultiInput/
// RegisterOutput during construction.
type SimpleProcessNode struct {
	*ProcessNode

	locking LockingStrategy
	budget  *Budget
	compute func() error

	updateMu sync.Mutex

	dirtyMu             sync.Mutex
	inputDirty          []bool
	inputRequired       []bool
	inputFanout         []mapset.Set[int]
	inputUpdateSlots    []*signals.Slot[signals.Update]
	outputDirty         []bool
	outputModifiedSlots []*signals.Slot[signals.Modified]

	multiDirtyMu sync.Mutex
	multiDirty   map[string]*multiInputDirty
}

// NewSimpleProcessNode creates a node named name whose recomputation is
// driven by compute. compute runs with ports locked per the chosen
// LockingStrategy (NoLockingStrategy by default — see WithLockingStrategy).
func NewSimpleProcessNode(name string, compute func() error, opts ...Option) *SimpleProcessNode {
	n := &SimpleProcessNode{
		locking:    NoLockingStrategy{},
		budget:     GlobalThreadBudget(),
		compute:    compute,
		multiDirty: make(map[string]*multiInputDirty),
	}
	n.ProcessNode = NewProcessNode(name, discardLogger())
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RegisterInput adds a named single input of payload type D, wiring its
// dirty-state tracking and backward Update slot.
func RegisterInput[D Value](n *SimpleProcessNode, name string, in *Input[D], required bool) {
	n.registerInput(name, in)

	n.dirtyMu.Lock()
	index := len(n.inputDirty)
	n.inputDirty = append(n.inputDirty, false)
	n.inputRequired = append(n.inputRequired, required)
	n.inputFanout = append(n.inputFanout, nil)
	slot := signals.NewSlot[signals.Update]()
	n.inputUpdateSlots = append(n.inputUpdateSlots, slot)
	n.dirtyMu.Unlock()

	signals.RegisterSlot(in.BackwardSender(), slot)

	RegisterInputCallback[D, SimpleProcessNode, signals.Signal](in, signals.KindModified, n, signals.Transparent, func(sig signals.Signal) {
		n.handleInputSignal(index, sig)
	})
}

// RegisterMultiInput adds a named multi-input of payload type D, wiring
// its per-slot dirty vector and per-slot Update slots as elements are
// accepted.
func RegisterMultiInput[D Value](n *SimpleProcessNode, name string, m *MultiInput[D]) {
	n.registerMultiInput(name, m)

	md := &multiInputDirty{slots: signals.NewSlots[signals.Update]()}
	n.multiDirtyMu.Lock()
	n.multiDirty[name] = md
	n.multiDirtyMu.Unlock()

	RegisterMultiInputSlots(m, md.slots)

	m.BackwardReceiver().RegisterCallback(signals.NewStaticCallback(signals.KindInputAdded, signals.Transparent, func(signals.Signal) {
		md.mu.Lock()
		md.dirty = append(md.dirty, true)
		md.mu.Unlock()
		n.markAllOutputsDirty()
		n.relayModifiedMasked(nil)
	}))
	m.BackwardReceiver().RegisterCallback(signals.NewStaticCallback(signals.KindInputsCleared, signals.Transparent, func(signals.Signal) {
		md.mu.Lock()
		md.dirty = nil
		md.mu.Unlock()
	}))

	RegisterMultiInputCallback[D, SimpleProcessNode, signals.Signal](m, signals.KindModified, n, signals.Weak, signals.Transparent, func(sig signals.Signal, index int) {
		switch sig.(type) {
		case signals.InputSetToSharedPointer:
			md.mu.Lock()
			if index < len(md.dirty) {
				md.dirty[index] = false
			}
			md.mu.Unlock()
			n.markAllOutputsDirty()
		default:
			md.mu.Lock()
			if index < len(md.dirty) {
				md.dirty[index] = true
			}
			md.mu.Unlock()
		}
		n.relayModifiedMasked(nil)
	})
}

// RegisterOutput adds a named output of payload type D, wiring its
// forward Modified slot and the Update callback that drives this node's
// onUpdate when a downstream consumer pulls this output.
func RegisterOutput[D Value](n *SimpleProcessNode, name string, out *Output[D]) {
	n.registerOutput(name, out)

	n.dirtyMu.Lock()
	ordinal := len(n.outputDirty)
	n.outputDirty = append(n.outputDirty, true)
	modSlot := signals.NewSlot[signals.Modified]()
	n.outputModifiedSlots = append(n.outputModifiedSlots, modSlot)
	n.dirtyMu.Unlock()

	signals.RegisterSlot(out.ForwardSender(), modSlot)

	out.RegisterCallback(signals.NewStaticCallback(signals.KindUpdate, signals.Exclusive, func(signals.Signal) {
		if err := n.onUpdate(ordinal); err != nil {
			n.log.Error(err, "update failed", "output", name)
		}
	}))
}

// SetDependency declares that input only feeds output, narrowing its
// fan-out mask from the all-to-all default.
func (n *SimpleProcessNode) SetDependency(inputIndex, outputIndex int) {
	n.dirtyMu.Lock()
	defer n.dirtyMu.Unlock()
	if inputIndex < 0 || inputIndex >= len(n.inputFanout) {
		return
	}
	if n.inputFanout[inputIndex] == nil {
		n.inputFanout[inputIndex] = mapset.NewThreadUnsafeSet[int]()
	}
	n.inputFanout[inputIndex].Add(outputIndex)
}

// SetDirty marks output dirty directly, without an upstream signal, and
// relays Modified on it.
func (n *SimpleProcessNode) SetDirty(outputIndex int) {
	n.dirtyMu.Lock()
	var slot *signals.Slot[signals.Modified]
	if outputIndex >= 0 && outputIndex < len(n.outputDirty) {
		n.outputDirty[outputIndex] = true
		slot = n.outputModifiedSlots[outputIndex]
	}
	n.dirtyMu.Unlock()

	if slot != nil {
		slot.Emit(signals.Modified{})
	}
}

// UpdateInputs requests a full refresh, equivalent to onUpdate(-1).
func (n *SimpleProcessNode) UpdateInputs() error { return n.onUpdate(-1) }

// InputDirty reports the dirty flag of the single input at ordinal i.
func (n *SimpleProcessNode) InputDirty(i int) bool {
	n.dirtyMu.Lock()
	defer n.dirtyMu.Unlock()
	if i < 0 || i >= len(n.inputDirty) {
		return false
	}
	return n.inputDirty[i]
}

// OutputDirty reports the dirty flag of the output at ordinal i.
func (n *SimpleProcessNode) OutputDirty(i int) bool {
	n.dirtyMu.Lock()
	defer n.dirtyMu.Unlock()
	if i < 0 || i >= len(n.outputDirty) {
		return false
	}
	return n.outputDirty[i]
}

// MultiDirtyLen reports the length of the named multi-input's dirty
// vector, which tracks InputAdded minus InputsCleared arrivals.
func (n *SimpleProcessNode) MultiDirtyLen(name string) int {
	n.multiDirtyMu.Lock()
	md, ok := n.multiDirty[name]
	n.multiDirtyMu.Unlock()
	if !ok {
		return 0
	}
	md.mu.Lock()
	defer md.mu.Unlock()
	return len(md.dirty)
}

func (n *SimpleProcessNode) handleInputSignal(index int, sig signals.Signal) {
	switch sig.(type) {
	case signals.InputSetToSharedPointer:
		n.dirtyMu.Lock()
		n.inputDirty[index] = false
		for i := range n.outputDirty {
			n.outputDirty[i] = true
		}
		n.dirtyMu.Unlock()
		n.relayModifiedMasked(nil)
	default: // Modified, InputSet
		n.dirtyMu.Lock()
		n.inputDirty[index] = true
		mask := n.inputFanout[index]
		n.dirtyMu.Unlock()
		n.relayModifiedMasked(mask)
	}
}

func (n *SimpleProcessNode) relayModifiedMasked(mask mapset.Set[int]) {
	n.dirtyMu.Lock()
	var slots []*signals.Slot[signals.Modified]
	for i, s := range n.outputModifiedSlots {
		if maskIncludes(mask, i) {
			slots = append(slots, s)
		}
	}
	n.dirtyMu.Unlock()

	for _, s := range slots {
		s.Emit(signals.Modified{})
	}
}

// maskIncludes reports whether output ordinal o participates in mask,
// per the fan-out mask semantics: nil/empty mask, or o == -1
// (user-initiated), means every input is connected to every output.
func maskIncludes(mask mapset.Set[int], o int) bool {
	if o < 0 {
		return true
	}
	if mask == nil || mask.Cardinality() == 0 {
		return true
	}
	return mask.Contains(o)
}

// collectPending gathers every dirty input/multi-input slot whose
// fan-out mask includes output o.
func (n *SimpleProcessNode) collectPending(o int) []pendingUpdate {
	var pending []pendingUpdate

	n.dirtyMu.Lock()
	for i, dirty := range n.inputDirty {
		if !dirty || !maskIncludes(n.inputFanout[i], o) {
			continue
		}
		i := i
		pending = append(pending, pendingUpdate{
			clear: func() {
				n.dirtyMu.Lock()
				n.inputDirty[i] = false
				n.dirtyMu.Unlock()
			},
			slot: n.inputUpdateSlots[i],
		})
	}
	n.dirtyMu.Unlock()

	n.multiDirtyMu.Lock()
	multis := make([]*multiInputDirty, 0, len(n.multiDirty))
	for _, md := range n.multiDirty {
		multis = append(multis, md)
	}
	n.multiDirtyMu.Unlock()

	for _, md := range multis {
		md.mu.Lock()
		for i, dirty := range md.dirty {
			if !dirty {
				continue
			}
			i := i
			md := md
			pending = append(pending, pendingUpdate{
				clear: func() {
					md.mu.Lock()
					md.dirty[i] = false
					md.mu.Unlock()
				},
				slot: md.slots.At(i),
			})
		}
		md.mu.Unlock()
	}

	return pending
}

// fanOut clears every pending unit's dirty flag and dispatches its
// Update slot, either inline or on a worker drawn from the node's
// budget, then joins all spawned workers before returning. Exactly one
// unit — the last — always runs inline on the calling goroutine: only
// the first len(pending)-1 units are offered to the budget, so a single
// dirty input never pays goroutine overhead and a budget with spare
// capacity never leaves the caller idle while every unit runs elsewhere.
func (n *SimpleProcessNode) fanOut(pending []pendingUpdate) {
	for _, p := range pending {
		p.clear()
	}

	last := len(pending) - 1

	var eg errgroup.Group
	for _, p := range pending[:last] {
		p := p
		if n.budget.tryAcquire() {
			eg.Go(func() error {
				defer n.budget.release()
				p.slot.Emit(signals.Update{})
				return nil
			})
		} else {
			p.slot.Emit(signals.Update{})
		}
	}
	pending[last].slot.Emit(signals.Update{})
	_ = eg.Wait()
}

func (n *SimpleProcessNode) markAllOutputsDirty() {
	n.dirtyMu.Lock()
	for i := range n.outputDirty {
		n.outputDirty[i] = true
	}
	n.dirtyMu.Unlock()
}

func (n *SimpleProcessNode) clearAllOutputsDirty() {
	n.dirtyMu.Lock()
	for i := range n.outputDirty {
		n.outputDirty[i] = false
	}
	n.dirtyMu.Unlock()
}

func (n *SimpleProcessNode) outputDirtyAt(o int) bool {
	n.dirtyMu.Lock()
	defer n.dirtyMu.Unlock()
	if len(n.outputDirty) == 0 {
		return true
	}
	if o < 0 {
		for _, d := range n.outputDirty {
			if d {
				return true
			}
		}
		return false
	}
	if o >= len(n.outputDirty) {
		return false
	}
	return n.outputDirty[o]
}

func (n *SimpleProcessNode) requiredInputsPresent() bool {
	count := n.InputCount()
	for i := 0; i < count; i++ {
		in, err := n.InputAt(i)
		if err != nil {
			continue
		}
		n.dirtyMu.Lock()
		required := i < len(n.inputRequired) && n.inputRequired[i]
		n.dirtyMu.Unlock()
		if required && !in.IsAssigned() {
			return false
		}
	}
	return true
}

// onUpdate is the forward pull protocol: ensure every input feeding
// output o is fresh, then — if output o (or, for o == -1, any output)
// is still dirty and every required input is present — run compute
// under the node's locking strategy.
func (n *SimpleProcessNode) onUpdate(o int) error {
	n.updateMu.Lock()
	defer n.updateMu.Unlock()

	pending := n.collectPending(o)
	if len(pending) > 0 {
		n.markAllOutputsDirty()
		n.fanOut(pending)
	}

	if !n.outputDirtyAt(o) {
		return nil
	}
	if !n.requiredInputsPresent() {
		n.log.Info("update skipped, required input absent")
		return nil
	}

	// Optimistic clear: a Modified arriving from another thread right
	// here will set an input dirty again, racing the compute call below.
	// The node intentionally does not lock across this window — the
	// next pull observes the re-dirtied input and recomputes.
	n.clearAllOutputsDirty()

	n.locking.Lock(n.ProcessNode)
	defer n.locking.Unlock(n.ProcessNode)

	if n.compute == nil {
		return nil
	}
	return n.compute()
}
