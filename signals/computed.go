package signals

import "runtime"

type computedCell[T comparable] struct {
	getter func(oldValue T) T
	value  T
}

// ReadonlySignal is a derived tracker. Its dependencies are whatever it read during its last
// evaluation, and it is re-evaluated lazily, at most once per batch.
type ReadonlySignal[T comparable] struct {
	rs       *ReactiveSystem
	id       NodeID
	cell     *computedCell[T]
	disposed bool
}

// Computed creates a derived tracker and evaluates it once. Nested creation, from inside
// another computation or a batch, is a phase violation.
func Computed[T comparable](rs *ReactiveSystem, getter func(oldValue T) T) *ReadonlySignal[T] {
	rs.mustIdle("Computed")

	cell := &computedCell[T]{getter: getter}
	id := rs.alloc(KindComputed)
	t := rs.nodes[id]
	// The arena only ever holds the cell, never the handle, so dropping the handle lets the
	// runtime collect it.
	t.recompute = func() bool {
		oldValue := cell.value
		cell.value = cell.getter(oldValue)
		return oldValue != cell.value
	}

	rs.phase = &constructingPhase{stack: []NodeID{id}}
	func() {
		defer func() {
			rs.phase = idlePhase{}
			if r := recover(); r != nil {
				rs.release(id)
				panic(r)
			}
		}()
		cell.value = getter(cell.value)
	}()

	c := &ReadonlySignal[T]{rs: rs, id: id, cell: cell}
	runtime.AddCleanup(c, rs.enqueueRelease, id)
	return c
}

func (c *ReadonlySignal[T]) Node() NodeID {
	return c.id
}

func (c *ReadonlySignal[T]) Current() any {
	return c.cell.value
}

func (c *ReadonlySignal[T]) Named(name string) *ReadonlySignal[T] {
	c.rs.name(c.id, name)
	return c
}

// Value returns the settled value. It fails while a batch is still collecting changes and
// pulls the computed up to date while a batch is resolving.
func (c *ReadonlySignal[T]) Value() T {
	if c.disposed {
		return c.cell.value
	}
	switch p := c.rs.phase.(type) {
	case *collectingPhase:
		violate(ErrPhaseViolation, "computed %d read while %s", c.id, p.kind())
	case *resolvingPhase:
		c.rs.pull(p, c.id)
	}
	c.rs.track(c.id)
	return c.cell.value
}

// Peek returns the cached value without tracking or pulling.
func (c *ReadonlySignal[T]) Peek() T {
	return c.cell.value
}

// Dispose severs the computed from the graph. Outside the idle phase the edges are removed
// once the current batch finishes. Calling it twice is a no-op.
func (c *ReadonlySignal[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if _, ok := c.rs.phase.(idlePhase); ok {
		c.rs.retire(c.id)
		return
	}
	c.rs.pendingDispose = append(c.rs.pendingDispose, c.id)
}

// pull brings a possibly stale computed up to date. Every computed upstream is settled first,
// depth first, so a recomputation only ever observes batch final values.
func (rs *ReactiveSystem) pull(p *resolvingPhase, id NodeID) {
	if p.fresh.Contains(id) {
		return
	}
	if p.inProgress.Contains(id) {
		violate(ErrCyclicDependency, "node %d depends on itself", id)
	}
	p.inProgress.Add(id)

	t := rs.mustLookup(id)
	for _, dep := range t.upstream.ToSlice() {
		d := rs.lookup(dep)
		if d == nil || d.kind != KindComputed || p.fresh.Contains(dep) {
			continue
		}
		rs.pull(p, dep)
	}
	if p.staleDerived.Contains(id) {
		rs.resolve(p, id, t)
	}

	p.inProgress.Remove(id)
	p.fresh.Add(id)
}

// resolve re-runs a computed with a fresh dependency set.
func (rs *ReactiveSystem) resolve(p *resolvingPhase, id NodeID, t *tracker) {
	rs.unlinkUpstream(id, t)

	p.stack = append(p.stack, id)
	changed := t.recompute()
	p.stack = p.stack[:len(p.stack)-1]

	p.staleDerived.Remove(id)
	t.recomputes++
	p.recomputed++
	rs.stats.recomputes.Add(1)

	if !changed {
		return
	}
	if t.changed {
		violate(ErrInvariantViolation, "computed %d changed twice in batch %d", id, p.serial)
	}
	t.changed = true
	p.changed = append(p.changed, id)
	rs.markStale(p.batchSets, t)
}
