package signals

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Phase names the mode the reactive system is in. Only one is active at a time and it decides
// which graph operations are legal.
type Phase uint8

const (
	PhaseIdle         Phase = iota // no batch, reads return cached values
	PhaseCollecting                // inside Batch fn, state may change, computed reads fail
	PhaseResolving                 // stale computeds are pulled in dependency order
	PhaseFiring                    // effects run against settled values
	PhaseConstructing              // a Computed is running its first evaluation
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCollecting:
		return "collecting"
	case PhaseResolving:
		return "resolving"
	case PhaseFiring:
		return "firing"
	case PhaseConstructing:
		return "constructing"
	default:
		return "unknown"
	}
}

// phase is the tagged union behind Phase. Each variant only carries the data that is
// meaningful while it is active.
type phase interface {
	kind() Phase
}

type idlePhase struct{}

func (idlePhase) kind() Phase { return PhaseIdle }

// batchSets is shared by the collecting and resolving variants of a single batch.
type batchSets struct {
	serial       uint64
	changed      []NodeID
	staleDerived mapset.Set[NodeID]
	staleEffects mapset.Set[EffectID]
	recomputed   int
}

func newBatchSets(serial uint64) *batchSets {
	return &batchSets{
		serial:       serial,
		staleDerived: mapset.NewThreadUnsafeSet[NodeID](),
		staleEffects: mapset.NewThreadUnsafeSet[EffectID](),
	}
}

type collectingPhase struct {
	*batchSets
}

func (*collectingPhase) kind() Phase { return PhaseCollecting }

type resolvingPhase struct {
	*batchSets
	fresh      mapset.Set[NodeID]
	inProgress mapset.Set[NodeID]
	stack      []NodeID
}

func (*resolvingPhase) kind() Phase { return PhaseResolving }

type firingPhase struct{}

func (*firingPhase) kind() Phase { return PhaseFiring }

type constructingPhase struct {
	stack []NodeID
}

func (*constructingPhase) kind() Phase { return PhaseConstructing }

// activeDerivation is the computed currently collecting dependencies, if any.
func activeDerivation(p phase) (NodeID, bool) {
	var stack []NodeID
	switch p := p.(type) {
	case *resolvingPhase:
		stack = p.stack
	case *constructingPhase:
		stack = p.stack
	}
	if len(stack) == 0 {
		return 0, false
	}
	return stack[len(stack)-1], true
}
