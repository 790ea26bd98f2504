package signals

import (
	"slices"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

type NodeID uint32
type EffectID uint32

type NodeKind uint8

const (
	KindState NodeKind = iota
	KindComputed
)

func (k NodeKind) String() string {
	if k == KindComputed {
		return "computed"
	}
	return "state"
}

// Source is anything the graph can track: writeable signals, computeds and the array
// projections built on top of them.
type Source interface {
	Node() NodeID
	// Current returns the cached value without tracking or phase checks.
	Current() any
}

// Readable is a typed Source.
type Readable[T any] interface {
	Source
	Value() T
	Peek() T
}

type OnErrorFunc func(from EffectID, err error)

type Option func(*ReactiveSystem)

// WithLogger sets the logger used for batch tracing and unhandled effect errors.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(rs *ReactiveSystem) {
		rs.logger = logger
	}
}

// WithErrorHandler receives errors returned by effect callbacks.
func WithErrorHandler(fn OnErrorFunc) Option {
	return func(rs *ReactiveSystem) {
		rs.onError = fn
	}
}

type tracker struct {
	kind       NodeKind
	name       string
	changed    bool
	downstream mapset.Set[NodeID]
	effects    mapset.Set[EffectID]
	upstream   mapset.Set[NodeID]
	recompute  func() (changed bool)
	recomputes uint64
}

type ReactiveSystem struct {
	phase phase
	nodes []*tracker
	free  []NodeID

	effects    map[EffectID]*effectRecord
	nextEffect EffectID

	serial uint64

	logger  logrus.FieldLogger
	onError OnErrorFunc

	// released is filled from runtime cleanup goroutines, everything else is owned by the
	// goroutine driving the system.
	releaseMu sync.Mutex
	released  []NodeID

	// retired slots were severed by Dispose while their handle is still reachable.
	retired mapset.Set[NodeID]

	// disposed during a batch, severed once it settles
	pendingDispose []NodeID

	stats stats
}

func NewReactiveSystem(opts ...Option) *ReactiveSystem {
	rs := &ReactiveSystem{
		phase:   idlePhase{},
		effects: map[EffectID]*effectRecord{},
		retired: mapset.NewThreadUnsafeSet[NodeID](),
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *ReactiveSystem) Phase() Phase {
	return rs.phase.kind()
}

// BatchSerial increases by one every time a batch starts.
func (rs *ReactiveSystem) BatchSerial() uint64 {
	return rs.serial
}

// ChangedThisBatch reports whether the tracker changed value in the batch being processed.
// Outside a batch it is always false.
func (rs *ReactiveSystem) ChangedThisBatch(id NodeID) bool {
	t := rs.lookup(id)
	return t != nil && t.changed
}

// MustBatch panics with ErrPhaseViolation unless called from inside a Batch function.
func (rs *ReactiveSystem) MustBatch(op string) {
	rs.collecting(op)
}

func (rs *ReactiveSystem) collecting(op string) *collectingPhase {
	cp, ok := rs.phase.(*collectingPhase)
	if !ok {
		violate(ErrPhaseViolation, "%s while %s", op, rs.phase.kind())
	}
	return cp
}

func (rs *ReactiveSystem) mustIdle(op string) {
	if _, ok := rs.phase.(idlePhase); !ok {
		violate(ErrPhaseViolation, "%s while %s", op, rs.phase.kind())
	}
	rs.drainReleases()
}

func (rs *ReactiveSystem) alloc(kind NodeKind) NodeID {
	t := &tracker{
		kind:       kind,
		downstream: mapset.NewThreadUnsafeSet[NodeID](),
		effects:    mapset.NewThreadUnsafeSet[EffectID](),
	}
	if kind == KindComputed {
		t.upstream = mapset.NewThreadUnsafeSet[NodeID]()
	}
	rs.stats.live.Add(1)

	if n := len(rs.free); n > 0 {
		id := rs.free[n-1]
		rs.free = rs.free[:n-1]
		rs.nodes[id] = t
		return id
	}
	rs.nodes = append(rs.nodes, t)
	return NodeID(len(rs.nodes) - 1)
}

func (rs *ReactiveSystem) lookup(id NodeID) *tracker {
	if int(id) >= len(rs.nodes) {
		return nil
	}
	return rs.nodes[id]
}

func (rs *ReactiveSystem) mustLookup(id NodeID) *tracker {
	t := rs.lookup(id)
	if t == nil {
		violate(ErrInvariantViolation, "node %d is not live", id)
	}
	return t
}

// track links the node being read to the derivation currently collecting dependencies.
func (rs *ReactiveSystem) track(dep NodeID) {
	sub, ok := activeDerivation(rs.phase)
	if !ok {
		return
	}
	if sub == dep {
		violate(ErrCyclicDependency, "node %d read itself", dep)
	}
	rs.mustLookup(sub).upstream.Add(dep)
	rs.mustLookup(dep).downstream.Add(sub)
}

func (rs *ReactiveSystem) unlinkUpstream(id NodeID, t *tracker) {
	t.upstream.Each(func(dep NodeID) bool {
		if d := rs.lookup(dep); d != nil {
			d.downstream.Remove(id)
		}
		return false
	})
	t.upstream.Clear()
}

func (rs *ReactiveSystem) enqueueRelease(id NodeID) {
	rs.releaseMu.Lock()
	defer rs.releaseMu.Unlock()
	rs.released = append(rs.released, id)
}

func (rs *ReactiveSystem) drainReleases() int {
	rs.releaseMu.Lock()
	ids := rs.released
	rs.released = nil
	rs.releaseMu.Unlock()

	for _, id := range ids {
		rs.release(id)
	}
	n := len(ids) + len(rs.pendingDispose)
	for _, id := range rs.pendingDispose {
		rs.retire(id)
	}
	rs.pendingDispose = nil
	return n
}

// release recycles the slot of a node whose handle was collected. A slot retired by Dispose is
// only recycled here, once nothing can name it any more.
func (rs *ReactiveSystem) release(id NodeID) {
	if rs.retired.Contains(id) {
		rs.retired.Remove(id)
		rs.free = append(rs.free, id)
		return
	}
	if rs.lookup(id) == nil {
		return
	}
	rs.sever(id)
	rs.free = append(rs.free, id)
}

// retire severs a node that still has a live handle. Its slot stays empty until the handle is
// collected, so reads through the handle never see another node.
func (rs *ReactiveSystem) retire(id NodeID) {
	if rs.lookup(id) == nil {
		return
	}
	rs.sever(id)
	rs.retired.Add(id)
}

// sever removes every edge of a node and empties its slot. Effects reading it keep running for
// their other sources and are dropped once none of them is live.
func (rs *ReactiveSystem) sever(id NodeID) {
	t := rs.nodes[id]
	if t.upstream != nil {
		rs.unlinkUpstream(id, t)
	}
	t.downstream.Each(func(sub NodeID) bool {
		if s := rs.lookup(sub); s != nil && s.upstream != nil {
			s.upstream.Remove(id)
		}
		return false
	})

	rs.nodes[id] = nil
	for _, eid := range t.effects.ToSlice() {
		rec, ok := rs.effects[eid]
		if !ok {
			continue
		}
		live := false
		for _, src := range rec.sources {
			if rs.lookup(src.Node()) != nil {
				live = true
				break
			}
		}
		if !live {
			delete(rs.effects, eid)
		}
	}

	rs.stats.live.Add(-1)
	rs.stats.released.Add(1)
}

// Reclaim drains the queue of computeds whose handles were collected and severs their edges.
// It is a no-op outside the idle phase.
func (rs *ReactiveSystem) Reclaim() int {
	if _, ok := rs.phase.(idlePhase); !ok {
		return 0
	}
	return rs.drainReleases()
}

type NodeInfo struct {
	ID         NodeID
	Kind       NodeKind
	Name       string
	Upstream   []NodeID
	Downstream []NodeID
	Effects    int
	Recomputes uint64
}

func sortedIDs[T NodeID | EffectID](s mapset.Set[T]) []T {
	if s == nil {
		return nil
	}
	ids := s.ToSlice()
	slices.Sort(ids)
	return ids
}

// Nodes lists every live tracker ordered by id.
func (rs *ReactiveSystem) Nodes() []NodeInfo {
	rs.Reclaim()
	infos := make([]NodeInfo, 0, len(rs.nodes))
	for i, t := range rs.nodes {
		if t == nil {
			continue
		}
		infos = append(infos, NodeInfo{
			ID:         NodeID(i),
			Kind:       t.kind,
			Name:       t.name,
			Upstream:   sortedIDs(t.upstream),
			Downstream: sortedIDs(t.downstream),
			Effects:    t.effects.Cardinality(),
			Recomputes: t.recomputes,
		})
	}
	return infos
}

// Downstream lists the computeds that read id during their last evaluation.
func (rs *ReactiveSystem) Downstream(id NodeID) []NodeID {
	rs.Reclaim()
	t := rs.lookup(id)
	if t == nil {
		return nil
	}
	return sortedIDs(t.downstream)
}

// Upstream lists the trackers a computed read during its last evaluation.
func (rs *ReactiveSystem) Upstream(id NodeID) []NodeID {
	rs.Reclaim()
	t := rs.lookup(id)
	if t == nil {
		return nil
	}
	return sortedIDs(t.upstream)
}

func (rs *ReactiveSystem) name(id NodeID, name string) {
	if t := rs.lookup(id); t != nil {
		t.name = name
	}
}

type stats struct {
	batches    atomic.Uint64
	recomputes atomic.Uint64
	effectRuns atomic.Uint64
	released   atomic.Uint64
	live       atomic.Int64
}

// Stats is a point in time copy of the system counters. Safe to read from any goroutine.
type Stats struct {
	Batches        uint64
	Recomputations uint64
	EffectRuns     uint64
	Released       uint64
	LiveNodes      int64
}

func (rs *ReactiveSystem) Stats() Stats {
	return Stats{
		Batches:        rs.stats.batches.Load(),
		Recomputations: rs.stats.recomputes.Load(),
		EffectRuns:     rs.stats.effectRuns.Load(),
		Released:       rs.stats.released.Load(),
		LiveNodes:      rs.stats.live.Load(),
	}
}
