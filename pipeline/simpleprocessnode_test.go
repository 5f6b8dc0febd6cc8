package pipeline_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcore/pipeline/pipeline"
	"github.com/flowcore/pipeline/signals"
)

func newSourceNode(t *testing.T, name string, value float64) (*pipeline.SimpleProcessNode, *pipeline.WrappedOutput[float64]) {
	t.Helper()
	out := pipeline.NewWrappedOutput[float64]()
	n := pipeline.NewSimpleProcessNode(name, func() error { return nil })
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](n, "out", out.Output)
	out.SetValue(value)
	return n, out
}

func TestNoSuchInputAndOutputErrors(t *testing.T) {
	n := pipeline.NewSimpleProcessNode("n", func() error { return nil })

	_, err := n.Input("missing")
	assert.ErrorIs(t, err, pipeline.ErrNoSuchInput)

	_, err = n.Output("missing")
	assert.ErrorIs(t, err, pipeline.ErrNoSuchOutput)
}

func TestNotEnoughInputsAndOutputsErrors(t *testing.T) {
	n := pipeline.NewSimpleProcessNode("n", func() error { return nil })

	_, err := n.InputAt(0)
	assert.ErrorIs(t, err, pipeline.ErrNotEnoughInputs)

	_, err = n.OutputAt(0)
	assert.ErrorIs(t, err, pipeline.ErrNotEnoughOutputs)
}

func TestUnsetThenReacceptRestoresObservableState(t *testing.T) {
	_, srcOut := newSourceNode(t, "src", 9)

	in := pipeline.NewWrappedInput[float64]()
	require.NoError(t, in.Accept(srcOut.Output))
	assert.True(t, in.HasAssignedOutput())

	in.Unset()
	assert.False(t, in.HasAssignedOutput())
	assert.False(t, in.IsValued())

	require.NoError(t, in.Accept(srcOut.Output))
	assert.True(t, in.HasAssignedOutput())
	v, ok := in.Value()
	require.True(t, ok)
	assert.Equal(t, 9.0, v)
}

// TestWeakTrackedInputCallbackDropsWhenOwnerDies exercises the pipeline
// port API's own weak-tracking convention (RegisterInputCallback is
// always Weak), mirroring the signals-level test but grounded in the
// port type a node actually registers callbacks through.
func TestWeakTrackedInputCallbackDropsWhenOwnerDies(t *testing.T) {
	in := pipeline.NewWrappedInput[float64]()

	sender := signals.NewSender()
	slot := signals.NewSlot[signals.Modified]()
	signals.RegisterSlot(sender, slot)
	sender.Connect(in.Input.BackwardReceiver())

	fired := 0
	func() {
		// A tiny pointer-free owner could share an allocation slot with a
		// live object and never be reported dead, so use a larger one.
		owner := new(struct{ id [4]int })
		pipeline.RegisterInputCallback[*pipeline.Wrap[float64], struct{ id [4]int }, signals.Modified](
			in.Input, signals.KindModified, owner, signals.Transparent, func(signals.Modified) { fired++ },
		)
	}()

	slot.Emit(signals.Modified{})
	assert.Equal(t, 1, fired)

	runtime.GC()
	runtime.GC()

	slot.Emit(signals.Modified{})
	assert.Equal(t, 1, fired, "callback should have been dropped once its owner was collected")
}
