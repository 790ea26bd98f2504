package signals

import "runtime"

// WriteableSignal is a state tracker. It is only ever changed by callers, and only from
// inside a Batch function.
type WriteableSignal[T comparable] struct {
	rs    *ReactiveSystem
	id    NodeID
	value T
}

func Signal[T comparable](rs *ReactiveSystem, initialValue T) *WriteableSignal[T] {
	s := &WriteableSignal[T]{
		rs:    rs,
		id:    rs.alloc(KindState),
		value: initialValue,
	}
	runtime.AddCleanup(s, rs.enqueueRelease, s.id)
	return s
}

func (s *WriteableSignal[T]) Node() NodeID {
	return s.id
}

func (s *WriteableSignal[T]) Current() any {
	return s.value
}

// Named labels the tracker for introspection.
func (s *WriteableSignal[T]) Named(name string) *WriteableSignal[T] {
	s.rs.name(s.id, name)
	return s
}

// Value returns the current value. When read from a computed it becomes a dependency.
func (s *WriteableSignal[T]) Value() T {
	s.rs.track(s.id)
	return s.value
}

// Peek returns the current value without tracking it.
func (s *WriteableSignal[T]) Peek() T {
	return s.value
}

func (s *WriteableSignal[T]) SetValue(v T) {
	cp := s.rs.collecting("SetValue")
	if s.value == v {
		return
	}
	s.value = v
	s.rs.markStateChanged(cp, s.id)
}

func (s *WriteableSignal[T]) Update(fn func(oldValue T) T) {
	s.rs.collecting("Update")
	s.SetValue(fn(s.value))
}

// markStateChanged records a direct mutation. A state tracker may change several times in
// one batch but is only queued once.
func (rs *ReactiveSystem) markStateChanged(cp *collectingPhase, id NodeID) {
	t := rs.mustLookup(id)
	if !t.changed {
		t.changed = true
		cp.changed = append(cp.changed, id)
	}
	rs.markStale(cp.batchSets, t)
}

func (rs *ReactiveSystem) markStale(b *batchSets, t *tracker) {
	t.downstream.Each(func(sub NodeID) bool {
		b.staleDerived.Add(sub)
		return false
	})
	t.effects.Each(func(eid EffectID) bool {
		b.staleEffects.Add(eid)
		return false
	})
}
