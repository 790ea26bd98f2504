package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/tracked/arrays"
	"github.com/delaneyj/tracked/signals"
	"github.com/jamiealquiza/tachymeter"
	"github.com/urfave/cli/v3"
)

var (
	sizes        = []int{100, 10_000, 100_000}
	editsPerIter = []int{1, 10, 100}
)

// checksum hashes a sequence so incremental and from scratch results can be compared cheaply.
func checksum(items []int) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 8)
	for _, v := range items {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(v))
		d.Write(buf)
	}
	return d.Sum64()
}

func randomEdit(rng *rand.Rand, a *arrays.Array[int]) {
	n := a.Len()
	switch op := rng.Intn(4); {
	case op == 0 || n == 0:
		a.Insert(rng.Intn(n+1), rng.Int())
	case op == 1:
		a.Delete(rng.Intn(n), 1)
	case op == 2:
		a.Replace(rng.Intn(n), rng.Int())
	default:
		a.Append(rng.Int())
	}
}

func benchmarkArrays(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(itersKey))
	rng := rand.New(rand.NewSource(int64(cmd.Uint(seedKey))))
	log.Printf("arrays: %d batches per sequence", iters)

	tbl := newTable("Sequences")
	for _, size := range sizes {
		for _, edits := range editsPerIter {
			initial := make([]int, size)
			for i := range initial {
				initial[i] = rng.Int()
			}

			rs := signals.NewReactiveSystem()
			src := arrays.New(rs, initial)
			header := signals.Signal(rs, 0)
			masked := arrays.Map(src, func(v int) int { return v & 0xffff })
			joined := arrays.Join(rs,
				arrays.Single[int](header),
				arrays.Spread[int](masked),
				arrays.Literal(-1),
				arrays.Spread[int](src),
			)

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for i := 0; i < iters; i++ {
				start := time.Now()
				rs.Batch(func() {
					for j := 0; j < edits; j++ {
						randomEdit(rng, src)
					}
					header.SetValue(i)
				})
				tach.AddTime(time.Since(start))
			}

			items := src.Peek()
			want := make([]int, 0, 2*len(items)+2)
			want = append(want, header.Peek())
			for _, v := range items {
				want = append(want, v&0xffff)
			}
			want = append(want, -1)
			want = append(want, items...)
			if got, exp := checksum(joined.Peek()), checksum(want); got != exp {
				return fmt.Errorf("join of %d with %d edits: checksum %x, want %x", size, edits, got, exp)
			}

			appendTimings(tbl, fmt.Sprintf("map+join: %d items, %d edits", size, edits), tach)
		}
	}
	tbl.Render()
	return nil
}
