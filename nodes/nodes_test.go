package nodes_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcore/pipeline/nodes"
	"github.com/flowcore/pipeline/pipeline"
)

func TestSingleChain(t *testing.T) {
	a := nodes.NewConstant("a", 1)
	b := nodes.NewDoubler("b")
	c := nodes.NewSquarer("c")

	aOut, err := a.Output("out")
	require.NoError(t, err)
	require.NoError(t, b.SetInput("in", aOut))

	bOut, err := b.Output("out")
	require.NoError(t, err)
	require.NoError(t, c.SetInput("in", bOut))

	require.NoError(t, c.UpdateInputs())
	v, ok := c.Out.Value()
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	a.SetDirty(0)
	require.NoError(t, c.UpdateInputs())
	v, ok = c.Out.Value()
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
	assert.Equal(t, int64(2), a.ComputeCalls.Load())
	assert.Equal(t, int64(2), b.ComputeCalls.Load())
	assert.Equal(t, int64(2), c.ComputeCalls.Load())
}

func TestDiamond(t *testing.T) {
	budget := pipeline.NewBudget(1)
	opt := pipeline.WithBudget(budget)

	a := nodes.NewConstant("a", 3, opt)
	b := nodes.NewDoubler("b", opt)
	d := nodes.NewDoubler("d", opt)
	e := nodes.NewAdder("e", opt)

	aOut, err := a.Output("out")
	require.NoError(t, err)
	require.NoError(t, b.SetInput("in", aOut))
	require.NoError(t, d.SetInput("in", aOut))

	bOut, err := b.Output("out")
	require.NoError(t, err)
	dOut, err := d.Output("out")
	require.NoError(t, err)
	require.NoError(t, e.SetInput("x", bOut))
	require.NoError(t, e.SetInput("y", dOut))

	require.NoError(t, e.UpdateInputs())
	v, ok := e.Out.Value()
	require.True(t, ok)
	assert.Equal(t, 12.0, v)
	assert.Equal(t, int64(1), b.ComputeCalls.Load())
	assert.Equal(t, int64(1), d.ComputeCalls.Load())
}

func TestMultiInputAggregation(t *testing.T) {
	s := nodes.NewSum("s")
	_, err := s.AddConstant(2)
	require.NoError(t, err)
	_, err = s.AddConstant(3)
	require.NoError(t, err)
	_, err = s.AddConstant(5)
	require.NoError(t, err)

	require.NoError(t, s.UpdateInputs())
	v, ok := s.Out.Value()
	require.True(t, ok)
	assert.Equal(t, 10.0, v)

	s.ClearOperands()
	_, err = s.AddConstant(7)
	require.NoError(t, err)
	_, err = s.AddConstant(8)
	require.NoError(t, err)

	require.NoError(t, s.UpdateInputs())
	v, ok = s.Out.Value()
	require.True(t, ok)
	assert.Equal(t, 15.0, v)
	assert.Equal(t, 2, s.MultiDirtyLen("inputs"))
}

func TestOptionalInput(t *testing.T) {
	o := nodes.NewOptionalSum("o")
	require.NoError(t, o.SetInputValue("x", pipeline.NewWrap(4.0)))

	require.NoError(t, o.UpdateInputs())
	v, ok := o.Out.Value()
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	require.NoError(t, o.SetInputValue("y", pipeline.NewWrap(2.0)))
	require.NoError(t, o.UpdateInputs())
	v, ok = o.Out.Value()
	require.True(t, ok)
	assert.Equal(t, 6.0, v)
}

func TestRequiredInputNeverSetBlocksUpdate(t *testing.T) {
	d := nodes.NewDoubler("d")
	require.NoError(t, d.UpdateInputs())
	_, ok := d.Out.Value()
	assert.False(t, ok)
	assert.Equal(t, int64(0), d.ComputeCalls.Load())
}

func TestTypeMismatchedAccept(t *testing.T) {
	a := nodes.NewConstant("a", 1)
	stringIn := pipeline.NewWrappedInput[string]()

	aOut, err := a.Output("out")
	require.NoError(t, err)

	err = stringIn.Accept(aOut)
	require.Error(t, err)
	var assignErr *pipeline.AssignmentError
	assert.True(t, errors.As(err, &assignErr))
	assert.True(t, errors.Is(err, pipeline.ErrAssignmentMismatch))
	assert.False(t, stringIn.HasAssignedOutput())
}

func TestIdempotentSecondUpdateInputsDoesNotRecompute(t *testing.T) {
	a := nodes.NewConstant("a", 1)
	b := nodes.NewDoubler("b")

	aOut, err := a.Output("out")
	require.NoError(t, err)
	require.NoError(t, b.SetInput("in", aOut))

	require.NoError(t, b.UpdateInputs())
	assert.Equal(t, int64(1), b.ComputeCalls.Load())

	require.NoError(t, b.UpdateInputs())
	assert.Equal(t, int64(1), b.ComputeCalls.Load())
}
