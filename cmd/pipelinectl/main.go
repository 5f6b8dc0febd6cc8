// Command pipelinectl builds, runs, and inspects small demo pipeline
// graphs from the command line. It is a demonstration harness, not
// part of the pipeline package's contract: the library itself exposes
// no CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/urfave/cli/v3"

	"github.com/flowcore/pipeline/pipeline"
)

const numThreadsFlag = "num-threads"

func main() {
	cmd := &cli.Command{
		Name:  "pipelinectl",
		Usage: "Build, run, and inspect pipeline graphs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    numThreadsFlag,
				Usage:   "worker threads available for concurrent fan-out (0 = strictly sequential)",
				Value:   0,
				Sources: cli.EnvVars("PIPELINE_NUM_THREADS"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			pipeline.SetNumThreads(int(cmd.Int(numThreadsFlag)))
			return ctx, nil
		},
		Commands: []*cli.Command{
			runCommand,
			inspectCommand,
			benchCommand,
			statusHTMLCommand,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliLogger builds a logr.Logger backed by funcr, printing structured
// key/value pairs to stderr. Nodes built by this CLI use it instead of
// the library default of logr.Discard(), so update-skip notices and
// update failures are visible when running the demo.
func cliLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
		} else {
			fmt.Fprintln(os.Stderr, args)
		}
	}, funcr.Options{})
}
