package arrays_test

import (
	"math/rand"
	"testing"

	"github.com/delaneyj/tracked/arrays"
	"github.com/delaneyj/tracked/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireViolation(t *testing.T, target error, fn func()) {
	t.Helper()
	var err error
	func() {
		defer signals.Recover(&err)
		fn()
	}()
	require.ErrorIs(t, err, target)
}

func mod3(v int) int   { return v % 3 }
func double(v int) int { return v * 2 }

func TestMapJoinIncremental(t *testing.T) {
	rs := signals.NewReactiveSystem()

	//  array ──map──> modulo ──map──> doubleModulo
	//    │                                 │
	//    └────────────> joined <───────────┘
	array := arrays.New(rs, []int{1, 2, 3, 4})
	modulo := arrays.Map[int, int](array, mod3)
	doubleModulo := arrays.Map[int, int](modulo, double)
	joined := arrays.Join(rs,
		arrays.Literal(-2),
		arrays.Spread[int](array),
		arrays.Spread[int](doubleModulo),
	)

	assert.Equal(t, []int{1, 2, 0, 1}, modulo.Value())
	assert.Equal(t, []int{2, 4, 0, 2}, doubleModulo.Value())
	assert.Equal(t, []int{-2, 1, 2, 3, 4, 2, 4, 0, 2}, joined.Value())

	rs.Batch(func() {
		array.Delete(1, 1)
		array.Append(5)
	})

	assert.Equal(t, []int{1, 3, 4, 5}, array.Value())
	assert.Equal(t, []int{2, 0, 2, 4}, doubleModulo.Value())
	assert.Equal(t, []int{-2, 1, 3, 4, 5, 2, 0, 2, 4}, joined.Value())

	script := joined.Changes().Value()
	assert.Equal(t, []arrays.Change[int]{
		arrays.Delete[int]{Start: 2, Length: 1},
		arrays.Insert[int]{Index: 4, Values: []int{5}},
		arrays.Delete[int]{Start: 6, Length: 1},
		arrays.Insert[int]{Index: 8, Values: []int{4}},
	}, script.Changes)
	assert.Equal(t, 9, script.NewLength)

	// from scratch
	var want []int
	want = append(want, -2)
	want = append(want, array.Value()...)
	for _, v := range array.Value() {
		want = append(want, double(mod3(v)))
	}
	assert.Equal(t, want, joined.Value())
}

func TestMapOnlyTouchesEdits(t *testing.T) {
	rs := signals.NewReactiveSystem()
	source := make([]int, 1000)
	for i := range source {
		source[i] = i
	}
	array := arrays.New(rs, source)

	calls := 0
	squares := arrays.Map[int, int](array, func(v int) int {
		calls++
		return v * v
	})
	require.Equal(t, 1000, calls)

	calls = 0
	rs.Batch(func() {
		array.Replace(10, 3)
		array.Update(11, func(v int) int { return v + 1 })
		array.Insert(0, 7)
	})
	assert.Equal(t, 3, calls)
	got := squares.Value()
	assert.Equal(t, 49, got[0])
	assert.Equal(t, 9, got[11])
	assert.Equal(t, 144, got[12])
	assert.Equal(t, 1001, squares.Len())
}

func TestScriptResetsPerBatch(t *testing.T) {
	rs := signals.NewReactiveSystem()
	array := arrays.New(rs, []string{"a"})

	rs.Batch(func() {
		array.Append("b")
		array.Append("c")
	})
	first := array.Changes().Value()
	assert.Len(t, first.Changes, 2)
	assert.Equal(t, 3, first.NewLength)

	rs.Batch(func() {
		array.Delete(0, 1)
	})
	second := array.Changes().Value()
	assert.NotSame(t, first, second)
	assert.Equal(t, []arrays.Change[string]{arrays.Delete[string]{Start: 0, Length: 1}}, second.Changes)
	assert.Equal(t, 2, second.NewLength)
	assert.Equal(t, []string{"b", "c"}, array.Value())
}

func TestJoinSingle(t *testing.T) {
	rs := signals.NewReactiveSystem()
	title := signals.Signal(rs, "title")
	rows := arrays.New(rs, []string{"x", "y"})
	upper := signals.Computed(rs, func(oldValue string) string {
		return title.Value() + "!"
	})

	joined := arrays.Join(rs,
		arrays.Single[string](title),
		arrays.Spread[string](rows),
		arrays.Single[string](upper),
		arrays.Literal("end"),
	)
	require.Equal(t, []string{"title", "x", "y", "title!", "end"}, joined.Value())

	rs.Batch(func() {
		rows.InsertAt(1, "a", "b")
		title.SetValue("T")
	})
	assert.Equal(t, []string{"T", "x", "a", "b", "y", "T!", "end"}, joined.Value())
	assert.Equal(t, []arrays.Change[string]{
		arrays.Replace[string]{Index: 0, Value: "T"},
		arrays.Insert[string]{Index: 2, Values: []string{"a", "b"}},
		arrays.Replace[string]{Index: 5, Value: "T!"},
	}, joined.Changes().Value().Changes)

	// unrelated batch leaves the join untouched
	other := signals.Signal(rs, 0)
	before := joined.Changes().Value()
	rs.Batch(func() {
		other.SetValue(1)
	})
	assert.Same(t, before, joined.Changes().Value())
}

func TestJoinKeepsDisposedSpread(t *testing.T) {
	rs := signals.NewReactiveSystem()
	array := arrays.New(rs, []int{1, 2, 3})
	tens := arrays.Map(array, func(v int) int { return v * 10 })
	sep := signals.Signal(rs, 0)
	joined := arrays.Join(rs, arrays.Spread[int](tens), arrays.Single[int](sep))
	require.Equal(t, []int{10, 20, 30, 0}, joined.Value())

	tens.Dispose()
	fresh := signals.Signal(rs, 0)
	require.NotEqual(t, tens.Node(), fresh.Node())

	rs.Batch(func() {
		array.Append(4)
		sep.SetValue(1)
		fresh.SetValue(1)
	})
	assert.Equal(t, []int{10, 20, 30}, tens.Value())
	assert.Equal(t, []int{10, 20, 30, 1}, joined.Value())
	assert.Equal(t, []arrays.Change[int]{
		arrays.Replace[int]{Index: 3, Value: 1},
	}, joined.Changes().Value().Changes)
}

func TestArrayViolations(t *testing.T) {
	rs := signals.NewReactiveSystem()
	array := arrays.New(rs, []int{1, 2, 3})
	doubled := arrays.Map[int, int](array, double)

	requireViolation(t, signals.ErrPhaseViolation, func() { array.Append(4) })
	requireViolation(t, signals.ErrPhaseViolation, func() { array.Delete(0, 1) })

	for _, bad := range []func(){
		func() { array.InsertAt(4, 9) },
		func() { array.InsertAt(-1, 9) },
		func() { array.Delete(2, 2) },
		func() { array.Delete(0, -1) },
		func() { array.Replace(3, 9) },
		func() { array.Update(-1, double) },
	} {
		requireViolation(t, signals.ErrRangeViolation, func() {
			rs.Batch(bad)
		})
	}
	requireViolation(t, signals.ErrUnimplemented, func() {
		rs.Batch(func() { array.Move(0, 1) })
	})

	assert.Equal(t, []int{1, 2, 3}, array.Value())
	assert.Equal(t, []int{2, 4, 6}, doubled.Value())

	requireViolation(t, signals.ErrPhaseViolation, func() {
		rs.Batch(func() {
			array.Append(4)
			doubled.Value()
		})
	})
}

func TestProjectionEffect(t *testing.T) {
	rs := signals.NewReactiveSystem()
	array := arrays.New(rs, []int{1})
	doubled := arrays.Map[int, int](array, double)

	var seen [][]int
	signals.Effect1[[]int](rs, doubled, func(v []int, changed bool) error {
		seen = append(seen, v)
		return nil
	})
	rs.Batch(func() {
		array.Append(2, 3)
	})
	assert.Equal(t, [][]int{{2}, {2, 4, 6}}, seen)
}

// Random batches of edits must leave every projection equal to a from scratch evaluation.
func TestRandomEditsMatchFromScratch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rs := signals.NewReactiveSystem()

	left := arrays.New(rs, []int{1, 2, 3})
	right := arrays.New(rs, []int{})
	sep := signals.Signal(rs, 0)
	shifted := arrays.Map[int, int](left, func(v int) int { return v + 100 })
	squared := arrays.Map[int, int](shifted, func(v int) int { return v * v })
	joined := arrays.Join(rs,
		arrays.Spread[int](squared),
		arrays.Single[int](sep),
		arrays.Spread[int](right),
		arrays.Literal(-1),
		arrays.Spread[int](left),
	)

	edit := func(a *arrays.Array[int]) {
		n := a.Len()
		switch op := rng.Intn(4); {
		case op == 0 || n == 0:
			a.InsertAt(rng.Intn(n+1), rng.Intn(50), rng.Intn(50))
		case op == 1:
			start := rng.Intn(n)
			a.Delete(start, rng.Intn(n-start)+1)
		case op == 2:
			a.Replace(rng.Intn(n), rng.Intn(50))
		default:
			a.Append(rng.Intn(50))
		}
	}

	for i := 0; i < 200; i++ {
		rs.Batch(func() {
			for j := rng.Intn(4); j >= 0; j-- {
				if rng.Intn(2) == 0 {
					edit(left)
				} else {
					edit(right)
				}
			}
			if rng.Intn(3) == 0 {
				sep.SetValue(rng.Intn(10))
			}
		})

		var want []int
		for _, v := range left.Value() {
			want = append(want, (v+100)*(v+100))
		}
		want = append(want, sep.Value())
		want = append(want, right.Value()...)
		want = append(want, -1)
		want = append(want, left.Value()...)
		require.Equal(t, want, joined.Value(), "batch %d", i)
		require.Equal(t, len(want), joined.Changes().Value().NewLength)
	}
}
