package main

import (
	"context"
	"log"
	"os"
	"runtime/pprof"

	"github.com/urfave/cli/v3"
)

const (
	profileKey = "profile"
	itersKey   = "iters"
	seedKey    = "seed"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Benchmark batch propagation and incremental sequences",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
				Value: "default.pgo",
			},
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Batches per measured graph",
				Value: 100,
			},
			&cli.UintFlag{
				Name:  seedKey,
				Usage: "Seed for the random edit streams",
				Value: 0,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "propagate",
				Usage:  "Chains of computeds hanging off a single source",
				Action: profiled(benchmarkPropagate),
			},
			{
				Name:   "arrays",
				Usage:  "Map and join projections under random edit batches",
				Action: profiled(benchmarkArrays),
			},
			{
				Name:   "graph",
				Usage:  "Layered graphs with static and dynamic dependencies",
				Action: profiled(benchmarkGraph),
			},
		},
		Action: profiled(func(ctx context.Context, cmd *cli.Command) error {
			for _, run := range []cli.ActionFunc{benchmarkPropagate, benchmarkArrays, benchmarkGraph} {
				if err := run(ctx, cmd); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func profiled(run cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		name := cmd.String(profileKey)
		if name == "" {
			return run(ctx, cmd)
		}
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
		log.Printf("writing cpu profile to %s", name)
		return run(ctx, cmd)
	}
}
