package arrays

import (
	"slices"

	"github.com/delaneyj/tracked/signals"
	"github.com/pkg/errors"
)

// Sequence is an ordered collection whose per batch changes are published as an edit script
// instead of a fresh snapshot.
type Sequence[T any] interface {
	signals.Readable[[]T]
	Changes() signals.Readable[*EditScript[T]]
	System() *signals.ReactiveSystem
	Len() int
}

// Array is a sequence owned by callers. Mutations are only legal inside a batch; each one is
// applied immediately and appended to the batch's edit script.
type Array[T any] struct {
	rs      *signals.ReactiveSystem
	items   []T
	script  *EditScript[T]
	serial  uint64
	changes *signals.WriteableSignal[*EditScript[T]]
}

func New[T any](rs *signals.ReactiveSystem, initial []T) *Array[T] {
	script := &EditScript[T]{NewLength: len(initial)}
	return &Array[T]{
		rs:      rs,
		items:   slices.Clone(initial),
		script:  script,
		serial:  rs.BatchSerial(),
		changes: signals.Signal(rs, script),
	}
}

func (a *Array[T]) Node() signals.NodeID {
	return a.changes.Node()
}

func (a *Array[T]) Current() any {
	return a.Peek()
}

func (a *Array[T]) System() *signals.ReactiveSystem {
	return a.rs
}

func (a *Array[T]) Changes() signals.Readable[*EditScript[T]] {
	return a.changes
}

func (a *Array[T]) Named(name string) *Array[T] {
	a.changes.Named(name)
	return a
}

// Value returns a copy of the elements and tracks the array when read from a computed.
func (a *Array[T]) Value() []T {
	a.changes.Value()
	return slices.Clone(a.items)
}

func (a *Array[T]) Peek() []T {
	return slices.Clone(a.items)
}

func (a *Array[T]) Len() int {
	return len(a.items)
}

func (a *Array[T]) InsertAt(index int, values ...T) {
	a.rs.MustBatch("InsertAt")
	a.checkIndex("InsertAt", index, len(a.items))
	if len(values) == 0 {
		return
	}
	a.record(Insert[T]{Index: index, Values: slices.Clone(values)})
}

func (a *Array[T]) Insert(index int, value T) {
	a.InsertAt(index, value)
}

func (a *Array[T]) Append(values ...T) {
	a.InsertAt(len(a.items), values...)
}

// Delete removes length elements starting at start.
func (a *Array[T]) Delete(start int, length int) {
	a.rs.MustBatch("Delete")
	if length < 0 {
		panic(errors.Wrapf(signals.ErrRangeViolation, "Delete: negative length %d", length))
	}
	a.checkIndex("Delete", start, len(a.items))
	a.checkIndex("Delete", start+length, len(a.items))
	if length == 0 {
		return
	}
	a.record(Delete[T]{Start: start, Length: length})
}

func (a *Array[T]) Replace(index int, value T) {
	a.rs.MustBatch("Replace")
	a.checkIndex("Replace", index, len(a.items)-1)
	a.record(Replace[T]{Index: index, Value: value})
}

func (a *Array[T]) Update(index int, fn func(oldValue T) T) {
	a.rs.MustBatch("Update")
	a.checkIndex("Update", index, len(a.items)-1)
	a.record(Replace[T]{Index: index, Value: fn(a.items[index])})
}

// Move is declared for completeness; reordering is not supported.
func (a *Array[T]) Move(oldIndex, newIndex int) {
	a.rs.MustBatch("Move")
	panic(errors.Wrapf(signals.ErrUnimplemented, "Move %d to %d", oldIndex, newIndex))
}

func (a *Array[T]) checkIndex(op string, index, max int) {
	if index < 0 || index > max {
		panic(errors.Wrapf(signals.ErrRangeViolation, "%s: index %d outside [0,%d]", op, index, max))
	}
}

// record starts a new script on the first mutation of a batch and extends it afterwards.
func (a *Array[T]) record(c Change[T]) {
	if serial := a.rs.BatchSerial(); a.serial != serial {
		a.serial = serial
		a.script = &EditScript[T]{}
		a.changes.SetValue(a.script)
	}
	a.items = c.apply(a.items)
	a.script.Changes = append(a.script.Changes, c)
	a.script.NewLength = len(a.items)
}
