package pipeline

import (
	"sync"

	"github.com/go-logr/logr"
)

// ProcessNode is the base every concrete node embeds. It owns the named
// and ordinal registries for its inputs, multi-inputs, and outputs, and
// the thin setInput/addInput/unsetInput/clearInputs delegates that
// concrete nodes and callers use to wire the graph together.
type ProcessNode struct {
	mu sync.RWMutex

	name string
	log  logr.Logger

	inputOrder    []string
	inputsByName  map[string]InputBase
	inputsOrdinal []InputBase

	multiInputOrder    []string
	multiInputsByName  map[string]MultiInputBase
	multiInputsOrdinal []MultiInputBase

	outputOrder    []string
	outputsByName  map[string]OutputBase
	outputsOrdinal []OutputBase
}

// NewProcessNode creates an empty node identified by name, used in logs
// and in introspection output. log may be the zero logr.Logger, in which
// case logging calls are no-ops.
func NewProcessNode(name string, log logr.Logger) *ProcessNode {
	return &ProcessNode{
		name:              name,
		log:               log.WithValues("node", name),
		inputsByName:      make(map[string]InputBase),
		multiInputsByName: make(map[string]MultiInputBase),
		outputsByName:     make(map[string]OutputBase),
	}
}

func (n *ProcessNode) Name() string     { return n.name }
func (n *ProcessNode) Log() logr.Logger { return n.log }

// forEachInputValue visits every currently-valued single input and
// multi-input slot's payload, for locking strategies and introspection.
func (n *ProcessNode) forEachInputValue(fn func(Value)) {
	n.mu.RLock()
	ins := append([]InputBase(nil), n.inputsOrdinal...)
	multis := append([]MultiInputBase(nil), n.multiInputsOrdinal...)
	n.mu.RUnlock()

	for _, in := range ins {
		if v, ok := in.RawValue(); ok {
			fn(v)
		}
	}
	for _, m := range multis {
		count := m.Len()
		for i := 0; i < count; i++ {
			if v, ok := m.At(i).RawValue(); ok {
				fn(v)
			}
		}
	}
}

// forEachOutputValue visits every currently-valued output's payload.
func (n *ProcessNode) forEachOutputValue(fn func(Value)) {
	n.mu.RLock()
	outs := append([]OutputBase(nil), n.outputsOrdinal...)
	n.mu.RUnlock()

	for _, out := range outs {
		if v := out.Data(); v != nil {
			fn(v)
		}
	}
}

// InputCount and OutputCount support introspection tooling.
func (n *ProcessNode) InputCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.inputsOrdinal)
}

func (n *ProcessNode) OutputCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.outputsOrdinal)
}

func (n *ProcessNode) InputNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.inputOrder...)
}

func (n *ProcessNode) OutputNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.outputOrder...)
}

// registerInput adds a named, ordinally-addressable input port. Concrete
// node constructors call this once per port, at construction time.
func (n *ProcessNode) registerInput(name string, in InputBase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputOrder = append(n.inputOrder, name)
	n.inputsByName[name] = in
	n.inputsOrdinal = append(n.inputsOrdinal, in)
}

// registerMultiInput adds a named, ordinally-addressable multi-input port.
func (n *ProcessNode) registerMultiInput(name string, m MultiInputBase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.multiInputOrder = append(n.multiInputOrder, name)
	n.multiInputsByName[name] = m
	n.multiInputsOrdinal = append(n.multiInputsOrdinal, m)
}

// registerOutput adds a named, ordinally-addressable output port,
// claims ownership of it, and adds n as the output's own dependency so
// the output keeps its producing node reachable on its own.
func (n *ProcessNode) registerOutput(name string, out OutputBase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out.setOwner(n)
	out.AddDependency(n)
	n.outputOrder = append(n.outputOrder, name)
	n.outputsByName[name] = out
	n.outputsOrdinal = append(n.outputsOrdinal, out)
}

func (n *ProcessNode) inputByName(name string) (InputBase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	in, ok := n.inputsByName[name]
	if !ok {
		return nil, &NamedPortError{Name: name, Kind: ErrNoSuchInput}
	}
	return in, nil
}

func (n *ProcessNode) inputAt(index int) (InputBase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if index < 0 || index >= len(n.inputsOrdinal) {
		return nil, &IndexedPortError{Index: index, Len: len(n.inputsOrdinal), Kind: ErrNotEnoughInputs}
	}
	return n.inputsOrdinal[index], nil
}

func (n *ProcessNode) multiInputByName(name string) (MultiInputBase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	m, ok := n.multiInputsByName[name]
	if !ok {
		return nil, &NamedPortError{Name: name, Kind: ErrNoSuchInput}
	}
	return m, nil
}

func (n *ProcessNode) outputByName(name string) (OutputBase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out, ok := n.outputsByName[name]
	if !ok {
		return nil, &NamedPortError{Name: name, Kind: ErrNoSuchOutput}
	}
	return out, nil
}

func (n *ProcessNode) outputAt(index int) (OutputBase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if index < 0 || index >= len(n.outputsOrdinal) {
		return nil, &IndexedPortError{Index: index, Len: len(n.outputsOrdinal), Kind: ErrNotEnoughOutputs}
	}
	return n.outputsOrdinal[index], nil
}

// Output looks up one of this node's outputs by name, for wiring into a
// downstream node's setInput call.
func (n *ProcessNode) Output(name string) (OutputBase, error) { return n.outputByName(name) }

// OutputAt looks up one of this node's outputs by ordinal.
func (n *ProcessNode) OutputAt(index int) (OutputBase, error) { return n.outputAt(index) }

// Input looks up one of this node's inputs by name, mainly for
// introspection and for setInputFrom's source argument.
func (n *ProcessNode) Input(name string) (InputBase, error) { return n.inputByName(name) }

// InputAt looks up one of this node's inputs by ordinal.
func (n *ProcessNode) InputAt(index int) (InputBase, error) { return n.inputAt(index) }

// SetInput wires the named input to producer, replacing any prior
// assignment.
func (n *ProcessNode) SetInput(name string, producer OutputBase) error {
	in, err := n.inputByName(name)
	if err != nil {
		return err
	}
	if err := in.AcceptOutput(producer); err != nil {
		return err
	}
	n.log.V(1).Info("input set", "input", name, "producer", producer.Owner())
	return nil
}

// SetInputAt is the ordinal counterpart of SetInput.
func (n *ProcessNode) SetInputAt(index int, producer OutputBase) error {
	in, err := n.inputAt(index)
	if err != nil {
		return err
	}
	if err := in.AcceptOutput(producer); err != nil {
		return err
	}
	return nil
}

// SetInputValue wires the named input directly to a value, bypassing any
// producer output.
func (n *ProcessNode) SetInputValue(name string, value Value) error {
	in, err := n.inputByName(name)
	if err != nil {
		return err
	}
	return in.AcceptValue(value)
}

// SetInputFrom copies the current assignment of src — whichever producer
// output or direct value it currently holds — onto the named input. This
// is the supplemented equivalent of the original library's edge-copying
// helper used when cloning a subgraph; it is not itself a distinct port
// type.
func (n *ProcessNode) SetInputFrom(name string, src InputBase) error {
	if src.HasAssignedOutput() {
		return n.SetInput(name, src.AssignedOutput())
	}
	if raw, ok := src.RawValue(); ok {
		return n.SetInputValue(name, raw)
	}
	return &NamedPortError{Name: name, Kind: ErrNoSuchInput}
}

// AddInput appends a new slot to the named multi-input, wired to producer.
func (n *ProcessNode) AddInput(name string, producer OutputBase) (int, error) {
	m, err := n.multiInputByName(name)
	if err != nil {
		return -1, err
	}
	idx, err := m.AcceptOutput(producer)
	if err != nil {
		return -1, err
	}
	return idx, nil
}

// AddInputValue appends a new slot to the named multi-input, wired
// directly to value.
func (n *ProcessNode) AddInputValue(name string, value Value) (int, error) {
	m, err := n.multiInputByName(name)
	if err != nil {
		return -1, err
	}
	return m.AcceptValue(value)
}

// UnsetInput clears the named input's current assignment.
func (n *ProcessNode) UnsetInput(name string) error {
	in, err := n.inputByName(name)
	if err != nil {
		return err
	}
	in.Unset()
	return nil
}

// ClearInputs empties every slot of the named multi-input.
func (n *ProcessNode) ClearInputs(name string) error {
	m, err := n.multiInputByName(name)
	if err != nil {
		return err
	}
	m.Clear()
	return nil
}
