package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcore/pipeline/pipeline"
)

func newDoublerNode(t *testing.T) (*pipeline.SimpleProcessNode, *pipeline.WrappedInput[float64], *pipeline.WrappedOutput[float64]) {
	t.Helper()
	in := pipeline.NewWrappedInput[float64]()
	out := pipeline.NewWrappedOutput[float64]()
	n := pipeline.NewSimpleProcessNode("doubler", func() error {
		v, _ := in.Value()
		out.SetValue(v * 2)
		return nil
	})
	pipeline.RegisterInput[*pipeline.Wrap[float64]](n, "in", in.Input, true)
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](n, "out", out.Output)
	return n, in, out
}

func TestProcessHandleWiresInputsWithoutConcreteNodeType(t *testing.T) {
	src, _ := newSourceNode(t, "src", 5)
	dst, _, dstOut := newDoublerNode(t)

	srcHandle := src.Handle()
	dstHandle := dst.Handle()

	out, err := srcHandle.Output("out")
	require.NoError(t, err)
	require.NoError(t, dstHandle.SetInput("in", out))

	require.NoError(t, dst.UpdateInputs())
	v, ok := dstOut.Value()
	require.True(t, ok)
	assert.Equal(t, 10.0, v)
	assert.Equal(t, "src", srcHandle.Name())
	assert.Equal(t, "doubler", dstHandle.Name())
}

func TestValueHandleGetPullsOwningNode(t *testing.T) {
	n, in, out := newDoublerNode(t)
	require.NoError(t, in.AcceptValue(pipeline.NewWrap(7.0)))

	handle := pipeline.NewValueHandle(n, 0, out)
	v, err := handle.Get()
	require.NoError(t, err)
	assert.Equal(t, 14.0, v)
}

func TestRegisterOutputAddsOwningNodeAsDependency(t *testing.T) {
	src, srcOut := newSourceNode(t, "src", 1)
	dst, _, _ := newDoublerNode(t)

	deps := srcOut.Dependencies()
	require.Len(t, deps, 1)
	assert.Same(t, src.ProcessNode, deps[0])

	// Wiring src's output into a downstream consumer must not add that
	// consumer to the output's own dependency set — it tracks the output's
	// producing node, not whoever pulls from it.
	require.NoError(t, dst.SetInput("in", srcOut.Output))
	assert.Len(t, srcOut.Dependencies(), 1)
	assert.Same(t, src.ProcessNode, srcOut.Dependencies()[0])
}

func TestValueHandleGetPropagatesComputeError(t *testing.T) {
	out := pipeline.NewWrappedOutput[float64]()
	n := pipeline.NewSimpleProcessNode("broken", func() error {
		return assert.AnError
	})
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](n, "out", out.Output)
	n.SetDirty(0)

	handle := pipeline.NewValueHandle(n, 0, out)
	_, err := handle.Get()
	assert.ErrorIs(t, err, assert.AnError)
}
