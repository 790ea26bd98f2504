package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/tracked/signals"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func addOne(v int) int {
	return v + 1
}

func pass(int, bool) error {
	return nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendTimings(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
}

func benchmarkPropagate(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(itersKey))
	log.Printf("propagate: %d batches per graph", iters)

	tbl := newTable("Propagation")
	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rs := signals.NewReactiveSystem()
			src := signals.Signal(rs, 1)
			leaves := make([]*signals.ReadonlySignal[int], 0, w)
			for i := 0; i < w; i++ {
				var last signals.Readable[int] = src
				for j := 0; j < h; j++ {
					prev := last
					last = signals.Computed(rs, func(oldValue int) int {
						return addOne(prev.Value())
					})
				}
				leaf := last.(*signals.ReadonlySignal[int])
				leaves = append(leaves, leaf)
				signals.Effect1(rs, leaf, pass)
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				rs.Batch(func() {
					src.SetValue(src.Peek() + 1)
				})
				tach.AddTime(time.Since(start))
			}

			if got, want := leaves[0].Value(), src.Peek()+h; got != want {
				return fmt.Errorf("propagate %d * %d: leaf is %d, want %d", w, h, got, want)
			}
			appendTimings(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}
	tbl.Render()
	return nil
}
