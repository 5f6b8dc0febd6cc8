package main

import (
	"context"
	"fmt"
	"os"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/flowcore/pipeline/pipeline"
)

var benchCommand = &cli.Command{
	Name:  "bench",
	Usage: "Time repeated pulls across the diamond demo graph",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "iterations", Value: 1000, Usage: "number of pulls to time"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		iters := int(cmd.Int("iterations"))
		budget := pipeline.NewBudget(int(cmd.Int(numThreadsFlag)))
		graph, err := buildDiamondGraph(pipeline.WithBudget(budget))
		if err != nil {
			return err
		}

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			graph.A.Set(float64(i))
			start := time.Now()
			if err := graph.E.UpdateInputs(); err != nil {
				return err
			}
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl := table.NewWriter()
		tbl.SetTitle(fmt.Sprintf("Diamond pulls (threads=%d, iterations=%s)", cmd.Int(numThreadsFlag), humanize.Comma(int64(iters))))
		tbl.SetOutputMirror(os.Stdout)
		tbl.AppendHeader(table.Row{"avg", "min", "p75", "p99", "max"})
		tbl.AppendRow(table.Row{calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max})
		tbl.Render()
		return nil
	},
}
