package main

import (
	"context"
	"fmt"
	"html"
	"os"

	"github.com/urfave/cli/v3"
	qt "github.com/valyala/quicktemplate"

	"github.com/flowcore/pipeline/pipeline"
)

var statusHTMLCommand = &cli.Command{
	Name:  "status-html",
	Usage: "Render a single HTML snapshot of the diamond demo graph's node/port state",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		budget := pipeline.NewBudget(int(cmd.Int(numThreadsFlag)))
		graph, err := buildDiamondGraph(pipeline.WithBudget(budget))
		if err != nil {
			return err
		}
		if err := graph.E.UpdateInputs(); err != nil {
			return err
		}

		bb := qt.AcquireByteBuffer()
		defer qt.ReleaseByteBuffer(bb)
		writeStatusPage(bb, graph.nodeList())

		_, err = os.Stdout.Write(bb.B)
		return err
	},
}

// writeStatusPage renders nodes into bb using quicktemplate's
// ByteBuffer, the runtime primitive qtc-generated templates build on top
// of; written by hand here since no .qtpl source exists to run qtc
// against.
func writeStatusPage(bb *qt.ByteBuffer, nodes []*pipeline.SimpleProcessNode) {
	bb.B = append(bb.B, "<!doctype html><html><head><title>pipeline status</title></head><body>"...)
	bb.B = append(bb.B, "<table border=\"1\"><tr><th>node</th><th>port</th><th>kind</th><th>dirty</th></tr>"...)
	for _, n := range nodes {
		for i, name := range n.InputNames() {
			writeRow(bb, n.Name(), name, "input", n.InputDirty(i))
		}
		for i, name := range n.OutputNames() {
			writeRow(bb, n.Name(), name, "output", n.OutputDirty(i))
		}
	}
	bb.B = append(bb.B, "</table></body></html>"...)
}

func writeRow(bb *qt.ByteBuffer, node, port, kind string, dirty bool) {
	bb.B = append(bb.B, "<tr><td>"...)
	bb.B = append(bb.B, html.EscapeString(node)...)
	bb.B = append(bb.B, "</td><td>"...)
	bb.B = append(bb.B, html.EscapeString(port)...)
	bb.B = append(bb.B, "</td><td>"...)
	bb.B = append(bb.B, kind...)
	bb.B = append(bb.B, "</td><td>"...)
	bb.B = append(bb.B, fmt.Sprintf("%v", dirty)...)
	bb.B = append(bb.B, "</td></tr>"...)
}
