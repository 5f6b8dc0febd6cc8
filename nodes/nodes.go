// Package nodes collects small concrete process node implementations
// used by the demo CLI and the pipeline package's scenario tests: a
// constant source, arithmetic transforms, a multi-input aggregator, and
// a node with one required and one optional input.
package nodes

import (
	"fmt"
	"sync/atomic"

	"github.com/flowcore/pipeline/pipeline"
)

// Constant emits a fixed value on its single output. The value is set
// directly on the output, so its compute function only counts calls: it
// runs on the first pull and again on the first pull after each SetDirty.
type Constant struct {
	*pipeline.SimpleProcessNode
	Out *pipeline.WrappedOutput[float64]

	ComputeCalls atomic.Int64
}

func NewConstant(name string, value float64, opts ...pipeline.Option) *Constant {
	c := &Constant{Out: pipeline.NewWrappedOutput[float64]()}
	c.SimpleProcessNode = pipeline.NewSimpleProcessNode(name, c.updateOutputs, opts...)
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](c.SimpleProcessNode, "out", c.Out.Output)
	c.Out.SetValue(value)
	return c
}

func (c *Constant) updateOutputs() error {
	c.ComputeCalls.Add(1)
	return nil
}

// Set replaces the constant's value and marks it dirty for the next
// pull, via setDirty rather than a fresh accept.
func (c *Constant) Set(value float64) {
	c.Out.SetValue(value)
	c.SetDirty(0)
}

// Doubler emits twice its single required input.
type Doubler struct {
	*pipeline.SimpleProcessNode
	In  *pipeline.WrappedInput[float64]
	Out *pipeline.WrappedOutput[float64]

	ComputeCalls atomic.Int64
}

func NewDoubler(name string, opts ...pipeline.Option) *Doubler {
	d := &Doubler{In: pipeline.NewWrappedInput[float64](), Out: pipeline.NewWrappedOutput[float64]()}
	d.SimpleProcessNode = pipeline.NewSimpleProcessNode(name, d.updateOutputs, opts...)
	pipeline.RegisterInput[*pipeline.Wrap[float64]](d.SimpleProcessNode, "in", d.In.Input, true)
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](d.SimpleProcessNode, "out", d.Out.Output)
	return d
}

func (d *Doubler) updateOutputs() error {
	d.ComputeCalls.Add(1)
	v, ok := d.In.Value()
	if !ok {
		return fmt.Errorf("doubler %s: input unset", d.Name())
	}
	d.Out.SetValue(v * 2)
	return nil
}

// Squarer emits the square of its single required input.
type Squarer struct {
	*pipeline.SimpleProcessNode
	In  *pipeline.WrappedInput[float64]
	Out *pipeline.WrappedOutput[float64]

	ComputeCalls atomic.Int64
}

func NewSquarer(name string, opts ...pipeline.Option) *Squarer {
	s := &Squarer{In: pipeline.NewWrappedInput[float64](), Out: pipeline.NewWrappedOutput[float64]()}
	s.SimpleProcessNode = pipeline.NewSimpleProcessNode(name, s.updateOutputs, opts...)
	pipeline.RegisterInput[*pipeline.Wrap[float64]](s.SimpleProcessNode, "in", s.In.Input, true)
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](s.SimpleProcessNode, "out", s.Out.Output)
	return s
}

func (s *Squarer) updateOutputs() error {
	s.ComputeCalls.Add(1)
	v, ok := s.In.Value()
	if !ok {
		return fmt.Errorf("squarer %s: input unset", s.Name())
	}
	s.Out.SetValue(v * v)
	return nil
}

// Adder emits the sum of its two required inputs.
type Adder struct {
	*pipeline.SimpleProcessNode
	X, Y *pipeline.WrappedInput[float64]
	Out  *pipeline.WrappedOutput[float64]

	ComputeCalls atomic.Int64
}

func NewAdder(name string, opts ...pipeline.Option) *Adder {
	a := &Adder{
		X:   pipeline.NewWrappedInput[float64](),
		Y:   pipeline.NewWrappedInput[float64](),
		Out: pipeline.NewWrappedOutput[float64](),
	}
	a.SimpleProcessNode = pipeline.NewSimpleProcessNode(name, a.updateOutputs, opts...)
	pipeline.RegisterInput[*pipeline.Wrap[float64]](a.SimpleProcessNode, "x", a.X.Input, true)
	pipeline.RegisterInput[*pipeline.Wrap[float64]](a.SimpleProcessNode, "y", a.Y.Input, true)
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](a.SimpleProcessNode, "out", a.Out.Output)
	return a
}

func (a *Adder) updateOutputs() error {
	a.ComputeCalls.Add(1)
	x, xOk := a.X.Value()
	y, yOk := a.Y.Value()

	var errX, errY error
	if !xOk {
		errX = fmt.Errorf("adder %s: input x unset", a.Name())
	}
	if !yOk {
		errY = fmt.Errorf("adder %s: input y unset", a.Name())
	}
	if err := pipeline.CombineErrors(errX, errY); err != nil {
		return err
	}

	a.Out.SetValue(x + y)
	return nil
}

// OptionalSum emits x, plus y if connected — y defaults to zero when
// unset, demonstrating a node with one required and one optional input.
type OptionalSum struct {
	*pipeline.SimpleProcessNode
	X, Y *pipeline.WrappedInput[float64]
	Out  *pipeline.WrappedOutput[float64]

	ComputeCalls atomic.Int64
}

func NewOptionalSum(name string, opts ...pipeline.Option) *OptionalSum {
	o := &OptionalSum{
		X:   pipeline.NewWrappedInput[float64](),
		Y:   pipeline.NewWrappedInput[float64](),
		Out: pipeline.NewWrappedOutput[float64](),
	}
	o.SimpleProcessNode = pipeline.NewSimpleProcessNode(name, o.updateOutputs, opts...)
	pipeline.RegisterInput[*pipeline.Wrap[float64]](o.SimpleProcessNode, "x", o.X.Input, true)
	pipeline.RegisterInput[*pipeline.Wrap[float64]](o.SimpleProcessNode, "y", o.Y.Input, false)
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](o.SimpleProcessNode, "out", o.Out.Output)
	return o
}

func (o *OptionalSum) updateOutputs() error {
	o.ComputeCalls.Add(1)
	x, ok := o.X.Value()
	if !ok {
		return fmt.Errorf("optionalsum %s: required input x unset", o.Name())
	}
	y, _ := o.Y.Value()
	o.Out.SetValue(x + y)
	return nil
}

// Sum aggregates an arbitrary number of direct or wired inputs added at
// runtime via AddConstant/AddSource.
type Sum struct {
	*pipeline.SimpleProcessNode
	Inputs *pipeline.MultiInput[*pipeline.Wrap[float64]]
	Out    *pipeline.WrappedOutput[float64]

	ComputeCalls atomic.Int64
}

func NewSum(name string, opts ...pipeline.Option) *Sum {
	s := &Sum{
		Inputs: pipeline.NewMultiInput[*pipeline.Wrap[float64]](),
		Out:    pipeline.NewWrappedOutput[float64](),
	}
	s.SimpleProcessNode = pipeline.NewSimpleProcessNode(name, s.updateOutputs, opts...)
	pipeline.RegisterMultiInput[*pipeline.Wrap[float64]](s.SimpleProcessNode, "inputs", s.Inputs)
	pipeline.RegisterOutput[*pipeline.Wrap[float64]](s.SimpleProcessNode, "out", s.Out.Output)
	return s
}

// AddConstant appends a fixed value to the sum's operand list.
func (s *Sum) AddConstant(value float64) (int, error) {
	return s.Inputs.AcceptValue(pipeline.NewWrap(value))
}

// AddSource appends producer's output to the sum's operand list.
func (s *Sum) AddSource(producer pipeline.OutputBase) (int, error) {
	return s.Inputs.AcceptOutput(producer)
}

// ClearOperands drops every operand added so far.
func (s *Sum) ClearOperands() { s.Inputs.Clear() }

func (s *Sum) updateOutputs() error {
	s.ComputeCalls.Add(1)
	var total float64
	count := s.Inputs.Len()
	for i := 0; i < count; i++ {
		v, ok := s.Inputs.Typed(i).Get()
		if !ok {
			continue
		}
		total += v.Payload
	}
	s.Out.SetValue(total)
	return nil
}
