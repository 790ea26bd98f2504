package arrays

import (
	"slices"

	"github.com/delaneyj/tracked/signals"
	"github.com/pkg/errors"
)

// Change is one record of an edit script. Indices are relative to the sequence after every
// preceding record of the same script has been applied.
type Change[T any] interface {
	apply(items []T) []T
	shift(offset int) Change[T]
}

type Insert[T any] struct {
	Index  int
	Values []T
}

type Delete[T any] struct {
	Start  int
	Length int
}

type Replace[T any] struct {
	Index int
	Value T
}

// Move is part of the change taxonomy but reordering is not supported.
type Move[T any] struct {
	OldIndex int
	NewIndex int
}

func (c Insert[T]) apply(items []T) []T {
	mustRange("insert", c.Index, len(items)+1)
	return slices.Insert(items, c.Index, c.Values...)
}

func (c Insert[T]) shift(offset int) Change[T] {
	c.Index += offset
	return c
}

func (c Delete[T]) apply(items []T) []T {
	mustRange("delete", c.Start, len(items)+1)
	mustRange("delete", c.Start+c.Length, len(items)+1)
	return slices.Delete(items, c.Start, c.Start+c.Length)
}

func (c Delete[T]) shift(offset int) Change[T] {
	c.Start += offset
	return c
}

func (c Replace[T]) apply(items []T) []T {
	mustRange("replace", c.Index, len(items))
	items[c.Index] = c.Value
	return items
}

func (c Replace[T]) shift(offset int) Change[T] {
	c.Index += offset
	return c
}

func (c Move[T]) apply([]T) []T {
	panic(errors.Wrap(signals.ErrUnimplemented, "move"))
}

func (c Move[T]) shift(int) Change[T] {
	panic(errors.Wrap(signals.ErrUnimplemented, "move"))
}

// An edit script produced by the engine is internally consistent, so a record that does not
// fit the sequence it is applied to is a bug in the engine.
func mustRange(op string, index, limit int) {
	if index < 0 || index >= limit {
		panic(errors.Wrapf(signals.ErrInvariantViolation, "%s at %d outside [0,%d)", op, index, limit))
	}
}

// EditScript is the ordered list of changes a sequence went through in one batch.
type EditScript[T any] struct {
	Changes   []Change[T]
	NewLength int
}

// Apply replays the script on items in order. The slice is modified in place where possible.
func (s *EditScript[T]) Apply(items []T) []T {
	for _, c := range s.Changes {
		items = c.apply(items)
	}
	return items
}

// MapChange rewrites the values carried by c through fn. Deletes carry no values and only
// change type.
func MapChange[T, U any](c Change[T], fn func(T) U) Change[U] {
	switch c := c.(type) {
	case Insert[T]:
		values := make([]U, len(c.Values))
		for i, v := range c.Values {
			values[i] = fn(v)
		}
		return Insert[U]{Index: c.Index, Values: values}
	case Delete[T]:
		return Delete[U]{Start: c.Start, Length: c.Length}
	case Replace[T]:
		return Replace[U]{Index: c.Index, Value: fn(c.Value)}
	case Move[T]:
		panic(errors.Wrap(signals.ErrUnimplemented, "map move"))
	default:
		panic(errors.Wrapf(signals.ErrInvariantViolation, "unknown change %T", c))
	}
}
