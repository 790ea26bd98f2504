package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/delaneyj/tracked/cmd/inspect/templates"
	"github.com/delaneyj/tracked/signals"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const (
	demoKey    = "demo"
	dotKey     = "dot"
	verboseKey = "verbose"
	gcKey      = "gc"
)

func main() {
	cmd := &cli.Command{
		Name:  "inspect",
		Usage: "Build a demo graph, run a few batches and print the tracker arena",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  demoKey,
				Usage: "Demo graph to build: diamond or sequence",
				Value: "diamond",
			},
			&cli.BoolFlag{
				Name:  dotKey,
				Usage: "Print Graphviz DOT instead of a table",
			},
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log every batch",
			},
			&cli.BoolFlag{
				Name:  gcKey,
				Usage: "Drop the demo's temporary computeds and collect them before printing",
			},
		},
		Action: inspect,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func inspect(ctx context.Context, cmd *cli.Command) error {
	logger := logrus.New()
	if cmd.Bool(verboseKey) {
		logger.SetLevel(logrus.DebugLevel)
	}
	rs := signals.NewReactiveSystem(signals.WithLogger(logger))

	name := cmd.String(demoKey)
	build, ok := demos[name]
	if !ok {
		return fmt.Errorf("unknown demo %q", name)
	}
	if err := build(rs, logger); err != nil {
		return err
	}

	if cmd.Bool(gcKey) {
		runtime.GC()
		log.Printf("reclaimed %d trackers", rs.Reclaim())
	}

	nodes := rs.Nodes()
	if cmd.Bool(dotKey) {
		templates.WriteDot(os.Stdout, name, nodes)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "kind", "name", "upstream", "downstream", "effects", "recomputes"})
	for _, n := range nodes {
		table.Append([]string{
			fmt.Sprint(n.ID),
			n.Kind.String(),
			n.Name,
			joinIDs(n.Upstream),
			joinIDs(n.Downstream),
			fmt.Sprint(n.Effects),
			humanize.Comma(int64(n.Recomputes)),
		})
	}
	stats := rs.Stats()
	table.SetFooter([]string{
		"", "", "",
		"batches " + humanize.Comma(int64(stats.Batches)),
		"released " + humanize.Comma(int64(stats.Released)),
		"runs " + humanize.Comma(int64(stats.EffectRuns)),
		humanize.Comma(int64(stats.Recomputations)),
	})
	table.Render()
	return nil
}

func joinIDs(ids []signals.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
