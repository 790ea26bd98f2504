package arrays

import (
	"slices"

	"github.com/delaneyj/tracked/signals"
	"github.com/pkg/errors"
)

// buffer holds a projection's elements. The computed that maintains it captures the buffer,
// never the Projection, so dropping the Projection releases the computed.
type buffer[T any] struct {
	items []T
}

// Projection is a sequence derived from other sequences by Map or Join. It is kept up to date
// by rewriting its sources' edit scripts, never by recomputing it whole.
type Projection[T any] struct {
	rs      *signals.ReactiveSystem
	buf     *buffer[T]
	changes *signals.ReadonlySignal[*EditScript[T]]
}

func (p *Projection[T]) Node() signals.NodeID {
	return p.changes.Node()
}

func (p *Projection[T]) Current() any {
	return p.Peek()
}

func (p *Projection[T]) System() *signals.ReactiveSystem {
	return p.rs
}

func (p *Projection[T]) Changes() signals.Readable[*EditScript[T]] {
	return p.changes
}

func (p *Projection[T]) Named(name string) *Projection[T] {
	p.changes.Named(name)
	return p
}

// Value follows the same phase rules as a computed: it fails while a batch is collecting and
// is brought up to date first while a batch is resolving.
func (p *Projection[T]) Value() []T {
	p.changes.Value()
	return slices.Clone(p.buf.items)
}

func (p *Projection[T]) Peek() []T {
	return slices.Clone(p.buf.items)
}

func (p *Projection[T]) Len() int {
	return len(p.buf.items)
}

func (p *Projection[T]) Dispose() {
	p.changes.Dispose()
}

// Map projects src element wise through fn. fn runs once per element up front and afterwards
// only on the values carried by inserts and replaces.
func Map[T, U any](src Sequence[T], fn func(T) U) *Projection[U] {
	rs := src.System()
	buf := &buffer[U]{}
	primed := false

	changes := signals.Computed(rs, func(prev *EditScript[U]) *EditScript[U] {
		upstream := src.Changes().Value()
		if !primed {
			primed = true
			items := src.Peek()
			buf.items = make([]U, len(items))
			for i, v := range items {
				buf.items[i] = fn(v)
			}
			return &EditScript[U]{NewLength: len(buf.items)}
		}
		if !rs.ChangedThisBatch(src.Node()) {
			return prev
		}

		script := &EditScript[U]{Changes: make([]Change[U], 0, len(upstream.Changes))}
		for _, c := range upstream.Changes {
			script.Changes = append(script.Changes, MapChange(c, fn))
		}
		buf.items = script.Apply(buf.items)
		script.NewLength = len(buf.items)
		return script
	})

	return &Projection[U]{rs: rs, buf: buf, changes: changes}
}

type partKind uint8

const (
	literalPart partKind = iota
	singlePart
	spreadPart
)

// Part is one input of Join. It is built with Literal, Single or Spread.
type Part[T any] struct {
	kind   partKind
	value  T
	single signals.Readable[T]
	spread Sequence[T]
}

// Literal contributes one constant element.
func Literal[T any](value T) Part[T] {
	return Part[T]{kind: literalPart, value: value}
}

// Single contributes one element that follows a signal.
func Single[T any](src signals.Readable[T]) Part[T] {
	return Part[T]{kind: singlePart, single: src}
}

// Spread splices every element of another sequence, along with its edits.
func Spread[T any](src Sequence[T]) Part[T] {
	return Part[T]{kind: spreadPart, spread: src}
}

// Join flattens parts into one sequence. Per batch it walks the parts left to right with a
// running offset and emits a single edit script for the whole result.
func Join[T any](rs *signals.ReactiveSystem, parts ...Part[T]) *Projection[T] {
	buf := &buffer[T]{}
	lengths := make([]int, len(parts))
	primed := false

	changes := signals.Computed(rs, func(prev *EditScript[T]) *EditScript[T] {
		if !primed {
			primed = true
			for i, p := range parts {
				switch p.kind {
				case literalPart:
					buf.items = append(buf.items, p.value)
					lengths[i] = 1
				case singlePart:
					buf.items = append(buf.items, p.single.Value())
					lengths[i] = 1
				case spreadPart:
					p.spread.Changes().Value()
					items := p.spread.Peek()
					buf.items = append(buf.items, items...)
					lengths[i] = len(items)
				default:
					panic(errors.Wrapf(signals.ErrInvariantViolation, "unknown join part kind %d", p.kind))
				}
			}
			return &EditScript[T]{NewLength: len(buf.items)}
		}

		script := &EditScript[T]{}
		offset := 0
		for i, p := range parts {
			switch p.kind {
			case singlePart:
				v := p.single.Value()
				if rs.ChangedThisBatch(p.single.Node()) {
					script.Changes = append(script.Changes, Replace[T]{Index: offset, Value: v})
				}
			case spreadPart:
				inner := p.spread.Changes().Value()
				if rs.ChangedThisBatch(p.spread.Node()) {
					for _, c := range inner.Changes {
						script.Changes = append(script.Changes, c.shift(offset))
					}
					lengths[i] = inner.NewLength
				}
			}
			offset += lengths[i]
		}
		if len(script.Changes) == 0 {
			return prev
		}

		buf.items = script.Apply(buf.items)
		script.NewLength = len(buf.items)
		return script
	})

	return &Projection[T]{rs: rs, buf: buf, changes: changes}
}
