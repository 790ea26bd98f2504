package signals

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

// Batch is the only place state may change. Once fn returns, every stale computed is pulled
// up to date in dependency order and then every effect whose sources changed runs exactly
// once. Batches do not nest.
//
//	rs.Batch(func() {
//	    count.SetValue(count.Value() + 2)
//	    count.SetValue(count.Value() + 2)
//	})
//	// effects on count ran once
func (rs *ReactiveSystem) Batch(fn func()) {
	rs.mustIdle("Batch")

	rs.serial++
	b := newBatchSets(rs.serial)
	rs.stats.batches.Add(1)

	defer func() {
		if r := recover(); r != nil {
			rs.abort(b)
			panic(r)
		}
	}()

	rs.phase = &collectingPhase{batchSets: b}
	fn()

	p := &resolvingPhase{
		batchSets:  b,
		fresh:      mapset.NewThreadUnsafeSet[NodeID](),
		inProgress: mapset.NewThreadUnsafeSet[NodeID](),
	}
	rs.phase = p
	for b.staleDerived.Cardinality() > 0 {
		var next NodeID
		b.staleDerived.Each(func(id NodeID) bool {
			next = id
			return true
		})
		if p.fresh.Contains(next) {
			violate(ErrInvariantViolation, "computed %d went stale after settling", next)
		}
		rs.pull(p, next)
	}

	rs.phase = &firingPhase{}
	fired := rs.fireEffects(b)

	rs.finish(b)
	rs.logger.WithFields(logrus.Fields{
		"batch":      b.serial,
		"changed":    len(b.changed),
		"recomputed": b.recomputed,
		"effects":    fired,
	}).Debug("batch settled")
}

// TryBatch runs Batch and returns a contract violation raised inside it as an error. The
// graph is left in an undefined state after a violation; only the phase is reset so the
// system can still be read.
func (rs *ReactiveSystem) TryBatch(fn func()) (err error) {
	defer Recover(&err)
	rs.Batch(fn)
	return nil
}

func (rs *ReactiveSystem) finish(b *batchSets) {
	for _, id := range b.changed {
		if t := rs.lookup(id); t != nil {
			t.changed = false
		}
	}
	rs.phase = idlePhase{}
}

func (rs *ReactiveSystem) abort(b *batchSets) {
	rs.finish(b)
	rs.logger.WithFields(logrus.Fields{
		"batch": b.serial,
	}).Warn("batch aborted, graph state is undefined")
}
