package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/tracked/signals"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

type graphTestConfig struct {
	name           string  // friendly name for the test, should be unique
	width          int64   // width of dependency graph to construct
	totalLayers    int64   // depth of dependency graph to construct
	staticFraction float64 // fraction of nodes that always read the same sources
	nSources       int64   // number of sources read by each node
	readFraction   float64 // fraction of the last layer read after each batch
	iterations     int64   // number of batches
}

var graphTestCfgs = []graphTestConfig{
	{
		name:           "simple component",
		width:          10,
		staticFraction: 1,
		nSources:       2,
		totalLayers:    5,
		readFraction:   0.2,
		iterations:     600000,
	},
	{
		name:           "dynamic component",
		width:          10,
		totalLayers:    10,
		staticFraction: 0.75,
		nSources:       6,
		readFraction:   0.2,
		iterations:     15000,
	},
	{
		name:           "large web app",
		width:          1000,
		totalLayers:    12,
		staticFraction: 0.95,
		nSources:       4,
		readFraction:   1,
		iterations:     7000,
	},
	{
		name:           "wide dense",
		width:          1000,
		totalLayers:    5,
		staticFraction: 1,
		nSources:       25,
		readFraction:   1,
		iterations:     3000,
	},
	{
		name:           "deep",
		width:          5,
		totalLayers:    500,
		staticFraction: 1,
		nSources:       3,
		readFraction:   1,
		iterations:     500,
	},
	{
		name:           "very dynamic",
		width:          100,
		totalLayers:    15,
		staticFraction: 0.5,
		nSources:       6,
		readFraction:   1,
		iterations:     2000,
	},
}

type graph struct {
	rs      *signals.ReactiveSystem
	sources []*signals.WriteableSignal[int]
	layers  [][]signals.Readable[int]
}

func benchmarkGraph(ctx context.Context, cmd *cli.Command) error {
	const testRepeats = 5

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"size", "nSources", "read%", "static%",
		"nTimes", "test", "time", "recomputes", "updateRate", "sum",
	})

	for _, cfg := range graphTestCfgs {
		log.Printf("Running '%s' config", cfg.name)
		counter := new(int64)
		g := makeGraph(cfg, counter)

		// warm up
		runGraph(g, cfg)

		var (
			best      = time.Hour
			bestCount int64
			bestSum   int
		)
		for i := 0; i < testRepeats; i++ {
			*counter = 0
			start := time.Now()
			sum := runGraph(g, cfg)
			if d := time.Since(start); d < best {
				best, bestCount, bestSum = d, *counter, sum
			}
		}

		updateRate := float64(bestCount) / (float64(best) / float64(time.Millisecond))
		table.Append([]string{
			fmt.Sprintf("%dx%d", cfg.width, cfg.totalLayers),
			fmt.Sprint(cfg.nSources),
			fmt.Sprint(cfg.readFraction),
			fmt.Sprint(cfg.staticFraction),
			humanize.Comma(cfg.iterations),
			graphTitle(cfg),
			fmt.Sprint(best),
			humanize.Comma(bestCount),
			humanize.Comma(int64(updateRate)),
			fmt.Sprint(bestSum),
		})
	}
	table.Render()
	return nil
}

func graphTitle(cfg graphTestConfig) string {
	sb := strings.Builder{}
	sb.WriteString(cfg.name)
	if cfg.staticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if cfg.readFraction < 1 {
		sb.WriteString(fmt.Sprintf(" read %0.2f%%", 100*cfg.readFraction))
	}
	return sb.String()
}

func makeGraph(cfg graphTestConfig, counter *int64) *graph {
	rs := signals.NewReactiveSystem()
	g := &graph{rs: rs, sources: make([]*signals.WriteableSignal[int], cfg.width)}

	prevRow := make([]signals.Readable[int], cfg.width)
	for i := range g.sources {
		g.sources[i] = signals.Signal(rs, i)
		prevRow[i] = g.sources[i]
	}

	random := rand.New(rand.NewSource(0))
	g.layers = make([][]signals.Readable[int], cfg.totalLayers-1)
	for l := range g.layers {
		g.layers[l] = makeRow(rs, prevRow, cfg, counter, random)
		prevRow = g.layers[l]
	}
	return g
}

func makeRow(rs *signals.ReactiveSystem, sources []signals.Readable[int], cfg graphTestConfig, counter *int64, random *rand.Rand) []signals.Readable[int] {
	row := make([]signals.Readable[int], len(sources))
	for myDex := range sources {
		mySources := make([]signals.Readable[int], 0, cfg.nSources)
		for sourceDex := 0; sourceDex < int(cfg.nSources); sourceDex++ {
			mySources = append(mySources, sources[(myDex+sourceDex)%len(sources)])
		}

		if random.Float64() < cfg.staticFraction {
			row[myDex] = signals.Computed(rs, func(oldValue int) int {
				*counter++
				sum := 0
				for _, source := range mySources {
					sum += source.Value()
				}
				return sum
			})
			continue
		}

		first, tail := mySources[0], mySources[1:]
		row[myDex] = signals.Computed(rs, func(oldValue int) int {
			*counter++
			sum := first.Value()
			shouldDrop := sum&0x1 > 0
			dropDex := sum % len(tail)
			for i := 0; i < len(tail); i++ {
				if shouldDrop && i == dropDex {
					continue
				}
				sum += tail[i].Value()
			}
			return sum
		})
	}
	return row
}

// runGraph writes one source per batch and reads part of the last layer after each one.
// It returns the sum of the leaves read.
func runGraph(g *graph, cfg graphTestConfig) int {
	random := rand.New(rand.NewSource(0))
	leaves := g.layers[len(g.layers)-1]
	skipCount := int(math.Round(float64(len(leaves)) * (1 - cfg.readFraction)))
	readLeaves := removeElems(leaves, skipCount, random)

	for i := 0; i < int(cfg.iterations); i++ {
		g.rs.Batch(func() {
			sourceDex := i % len(g.sources)
			g.sources[sourceDex].SetValue(i + sourceDex)
		})
		for _, leaf := range readLeaves {
			leaf.Value()
		}
	}

	sum := 0
	for _, leaf := range readLeaves {
		sum += leaf.Value()
	}
	return sum
}

func removeElems[T any](src []T, rmCount int, random *rand.Rand) []T {
	out := make([]T, len(src))
	copy(out, src)
	for i := 0; i < rmCount; i++ {
		rmDex := random.Intn(len(out))
		out[rmDex] = out[len(out)-1]
		out = out[:len(out)-1]
	}
	return out
}
