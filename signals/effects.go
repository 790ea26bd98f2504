package signals

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// EffectArg is one source as seen by an effect callback.
type EffectArg struct {
	Value any
	// Changed reports whether the source changed since the effect last ran. Always false on
	// the first run.
	Changed bool
}

type EffectFunc func(args []EffectArg) error

type effectRecord struct {
	id      EffectID
	sources []Source
	fn      EffectFunc
}

type EffectHandle struct {
	rs      *ReactiveSystem
	id      EffectID
	removed bool
}

func (h *EffectHandle) ID() EffectID {
	return h.id
}

// Remove detaches the effect from all of its sources. Calling it twice is a no-op.
func (h *EffectHandle) Remove() {
	if h.removed {
		return
	}
	h.removed = true
	h.rs.removeEffect(h.id)
}

// Effect runs fn once immediately and then once at the end of every batch in which at least
// one of the sources changed, no matter how many of them did.
func Effect(rs *ReactiveSystem, fn EffectFunc, sources ...Source) *EffectHandle {
	rs.mustIdle("Effect")

	rs.nextEffect++
	rec := &effectRecord{
		id:      rs.nextEffect,
		sources: sources,
		fn:      fn,
	}
	rs.effects[rec.id] = rec
	for _, src := range sources {
		rs.mustLookup(src.Node()).effects.Add(rec.id)
	}

	rs.phase = &firingPhase{}
	defer func() {
		rs.phase = idlePhase{}
		if r := recover(); r != nil {
			rs.removeEffect(rec.id)
			panic(r)
		}
	}()
	rs.runEffect(rec, false)

	return &EffectHandle{rs: rs, id: rec.id}
}

func Effect1[T0 any](
	rs *ReactiveSystem,
	arg0 Readable[T0],
	fn func(v0 T0, changed bool) error,
) *EffectHandle {
	return Effect(rs, func(args []EffectArg) error {
		return fn(arg0.Peek(), args[0].Changed)
	}, arg0)
}

func Effect2[T0, T1 any](
	rs *ReactiveSystem,
	arg0 Readable[T0], arg1 Readable[T1],
	fn func(v0 T0, v1 T1, changed [2]bool) error,
) *EffectHandle {
	return Effect(rs, func(args []EffectArg) error {
		return fn(
			arg0.Peek(),
			arg1.Peek(),
			[2]bool{args[0].Changed, args[1].Changed},
		)
	}, arg0, arg1)
}

func Effect3[T0, T1, T2 any](
	rs *ReactiveSystem,
	arg0 Readable[T0], arg1 Readable[T1], arg2 Readable[T2],
	fn func(v0 T0, v1 T1, v2 T2, changed [3]bool) error,
) *EffectHandle {
	return Effect(rs, func(args []EffectArg) error {
		return fn(
			arg0.Peek(),
			arg1.Peek(),
			arg2.Peek(),
			[3]bool{args[0].Changed, args[1].Changed, args[2].Changed},
		)
	}, arg0, arg1, arg2)
}

func Effect4[T0, T1, T2, T3 any](
	rs *ReactiveSystem,
	arg0 Readable[T0], arg1 Readable[T1], arg2 Readable[T2], arg3 Readable[T3],
	fn func(v0 T0, v1 T1, v2 T2, v3 T3, changed [4]bool) error,
) *EffectHandle {
	return Effect(rs, func(args []EffectArg) error {
		return fn(
			arg0.Peek(),
			arg1.Peek(),
			arg2.Peek(),
			arg3.Peek(),
			[4]bool{args[0].Changed, args[1].Changed, args[2].Changed, args[3].Changed},
		)
	}, arg0, arg1, arg2, arg3)
}

func (rs *ReactiveSystem) removeEffect(id EffectID) {
	rec, ok := rs.effects[id]
	if !ok {
		return
	}
	delete(rs.effects, id)
	for _, src := range rec.sources {
		if t := rs.lookup(src.Node()); t != nil {
			t.effects.Remove(id)
		}
	}
}

func (rs *ReactiveSystem) runEffect(rec *effectRecord, inBatch bool) {
	args := make([]EffectArg, len(rec.sources))
	for i, src := range rec.sources {
		args[i].Value = src.Current()
		if inBatch {
			args[i].Changed = rs.ChangedThisBatch(src.Node())
		}
	}

	rs.stats.effectRuns.Add(1)
	err := rec.fn(args)
	if err == nil {
		return
	}
	if rs.onError != nil {
		rs.onError(rec.id, err)
		return
	}
	rs.logger.WithFields(logrus.Fields{
		"effect": rec.id,
	}).WithError(err).Warn("effect failed")
}

// fireEffects runs every distinct stale effect once, in registration order.
func (rs *ReactiveSystem) fireEffects(b *batchSets) int {
	ids := b.staleEffects.ToSlice()
	slices.Sort(ids)
	fired := 0
	for _, id := range ids {
		rec, ok := rs.effects[id]
		if !ok {
			continue
		}
		rs.runEffect(rec, true)
		fired++
	}
	return fired
}
