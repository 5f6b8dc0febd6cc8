package main

import (
	"github.com/flowcore/pipeline/nodes"
	"github.com/flowcore/pipeline/pipeline"
)

// chainGraph builds the three-stage demo used by "run": a constant
// source feeding a doubler feeding a squarer, per the single-chain
// scenario.
type chainGraph struct {
	A *nodes.Constant
	B *nodes.Doubler
	C *nodes.Squarer
}

// buildChainGraph wires the demo nodes together through ProcessHandle
// rather than the concrete node types themselves, the way a caller that
// only has a bare node back-reference (no knowledge of Constant/Doubler/
// Squarer) would have to.
func buildChainGraph(opts ...pipeline.Option) (*chainGraph, error) {
	a := nodes.NewConstant("a", 1, opts...)
	b := nodes.NewDoubler("b", opts...)
	c := nodes.NewSquarer("c", opts...)

	aOut, err := a.Handle().Output("out")
	if err != nil {
		return nil, err
	}
	if err := b.Handle().SetInput("in", aOut); err != nil {
		return nil, err
	}
	bOut, err := b.Handle().Output("out")
	if err != nil {
		return nil, err
	}
	if err := c.Handle().SetInput("in", bOut); err != nil {
		return nil, err
	}
	return &chainGraph{A: a, B: b, C: c}, nil
}

func (g *chainGraph) nodeList() []*pipeline.SimpleProcessNode {
	return []*pipeline.SimpleProcessNode{g.A.SimpleProcessNode, g.B.SimpleProcessNode, g.C.SimpleProcessNode}
}

// diamondGraph builds the fan-out/fan-in demo used by "inspect" and
// "bench": one source feeding two independent doublers that both feed
// an adder.
type diamondGraph struct {
	A *nodes.Constant
	B *nodes.Doubler
	D *nodes.Doubler
	E *nodes.Adder
}

func buildDiamondGraph(opts ...pipeline.Option) (*diamondGraph, error) {
	a := nodes.NewConstant("a", 3, opts...)
	b := nodes.NewDoubler("b", opts...)
	d := nodes.NewDoubler("d", opts...)
	e := nodes.NewAdder("e", opts...)

	aOut, err := a.Handle().Output("out")
	if err != nil {
		return nil, err
	}
	if err := b.Handle().SetInput("in", aOut); err != nil {
		return nil, err
	}
	if err := d.Handle().SetInput("in", aOut); err != nil {
		return nil, err
	}
	bOut, err := b.Handle().Output("out")
	if err != nil {
		return nil, err
	}
	dOut, err := d.Handle().Output("out")
	if err != nil {
		return nil, err
	}
	if err := e.Handle().SetInput("x", bOut); err != nil {
		return nil, err
	}
	if err := e.Handle().SetInput("y", dOut); err != nil {
		return nil, err
	}
	return &diamondGraph{A: a, B: b, D: d, E: e}, nil
}

func (g *diamondGraph) nodeList() []*pipeline.SimpleProcessNode {
	return []*pipeline.SimpleProcessNode{g.A.SimpleProcessNode, g.B.SimpleProcessNode, g.D.SimpleProcessNode, g.E.SimpleProcessNode}
}
