package pipeline

import "fmt"

// ProcessHandle is a shared-ownership wrapper around a node's port
// registries. Go's garbage collector already keeps the underlying
// ProcessNode alive as long as any handle references it, so this type
// exists purely for the self-handle-upgrade pattern described in the
// design notes: a node hands out ProcessHandle values to callers that
// only have a bare *ProcessNode back-reference (e.g. from inside a port),
// rather than requiring them to know the concrete node type.
type ProcessHandle struct {
	node *ProcessNode
}

// Handle returns a shared-ownership wrapper for n.
func (n *ProcessNode) Handle() *ProcessHandle { return &ProcessHandle{node: n} }

func (h *ProcessHandle) Name() string { return h.node.Name() }

func (h *ProcessHandle) Output(name string) (OutputBase, error) { return h.node.Output(name) }
func (h *ProcessHandle) OutputAt(i int) (OutputBase, error)     { return h.node.OutputAt(i) }
func (h *ProcessHandle) Input(name string) (InputBase, error)   { return h.node.Input(name) }
func (h *ProcessHandle) InputAt(i int) (InputBase, error)       { return h.node.InputAt(i) }

func (h *ProcessHandle) SetInput(name string, producer OutputBase) error {
	return h.node.SetInput(name, producer)
}

func (h *ProcessHandle) SetInputValue(name string, value Value) error {
	return h.node.SetInputValue(name, value)
}

func (h *ProcessHandle) UnsetInput(name string) error { return h.node.UnsetInput(name) }

func (h *ProcessHandle) AddInput(name string, producer OutputBase) (int, error) {
	return h.node.AddInput(name, producer)
}

func (h *ProcessHandle) ClearInputs(name string) error { return h.node.ClearInputs(name) }

// ValueHandle is the user-facing auto-updating accessor for a single
// output: Get() pulls the owning node just enough to refresh that one
// output, then returns its current payload. It saves callers from
// manually calling UpdateInputs() and then Value() in sequence.
type ValueHandle[T any] struct {
	node        *SimpleProcessNode
	outputIndex int
	output      *WrappedOutput[T]
}

// NewValueHandle builds an accessor for the output at outputIndex on
// node, whose underlying port is output.
func NewValueHandle[T any](node *SimpleProcessNode, outputIndex int, output *WrappedOutput[T]) *ValueHandle[T] {
	return &ValueHandle[T]{node: node, outputIndex: outputIndex, output: output}
}

// Get pulls the node for this handle's output and returns the
// resulting value.
func (h *ValueHandle[T]) Get() (T, error) {
	var zero T
	if err := h.node.onUpdate(h.outputIndex); err != nil {
		return zero, err
	}
	v, ok := h.output.Value()
	if !ok {
		return zero, fmt.Errorf("%w: output never produced a value", ErrNullPointer)
	}
	return v, nil
}
