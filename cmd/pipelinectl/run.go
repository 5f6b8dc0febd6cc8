package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/flowcore/pipeline/pipeline"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Build the single-chain demo graph (constant -> doubler -> squarer) and pull its result",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		budget := pipeline.NewBudget(int(cmd.Int(numThreadsFlag)))
		graph, err := buildChainGraph(pipeline.WithLogr(cliLogger()), pipeline.WithBudget(budget))
		if err != nil {
			return err
		}

		handle := pipeline.NewValueHandle(graph.C.SimpleProcessNode, 0, graph.C.Out)
		v, err := handle.Get()
		if err != nil {
			return fmt.Errorf("pipelinectl run: %w", err)
		}
		fmt.Printf("a=%v -> b=2*a -> c=b^2 => %v\n", 1, v)
		return nil
	},
}
