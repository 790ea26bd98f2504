package main

import (
	"github.com/delaneyj/tracked/arrays"
	"github.com/delaneyj/tracked/signals"
	"github.com/sirupsen/logrus"
)

type demoFunc func(rs *signals.ReactiveSystem, logger logrus.FieldLogger) error

var demos = map[string]demoFunc{
	"diamond":  diamondDemo,
	"sequence": sequenceDemo,
}

func diamondDemo(rs *signals.ReactiveSystem, logger logrus.FieldLogger) error {
	//       count
	//      /     \
	//  doubled  modulo
	//             |
	//        doubleModulo
	//             |
	//          (effect)
	count := signals.Signal(rs, 1).Named("count")
	signals.Computed(rs, func(oldValue int) int {
		return count.Value() * 2
	}).Named("doubled")
	modulo := signals.Computed(rs, func(oldValue int) int {
		return count.Value() % 4
	}).Named("modulo")
	doubleModulo := signals.Computed(rs, func(oldValue int) int {
		return modulo.Value() * 2
	}).Named("doubleModulo")

	signals.Effect1(rs, doubleModulo, func(v int, changed bool) error {
		logger.WithFields(logrus.Fields{"doubleModulo": v, "changed": changed}).Info("effect")
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := rs.TryBatch(func() {
			count.Update(func(v int) int { return v + 2 })
		}); err != nil {
			return err
		}
	}
	return nil
}

func sequenceDemo(rs *signals.ReactiveSystem, logger logrus.FieldLogger) error {
	//  array ──map──> modulo ──map──> doubleModulo
	//    │                                 │
	//    └────────────> joined <───────────┘
	array := arrays.New(rs, []int{1, 2, 3, 4}).Named("array")
	modulo := arrays.Map(array, func(v int) int { return v % 3 }).Named("modulo")
	doubleModulo := arrays.Map(modulo, func(v int) int { return v * 2 }).Named("doubleModulo")
	joined := arrays.Join(rs,
		arrays.Literal(-2),
		arrays.Spread[int](array),
		arrays.Spread[int](doubleModulo),
	).Named("joined")

	signals.Effect1(rs, joined.Changes(), func(script *arrays.EditScript[int], changed bool) error {
		logger.WithFields(logrus.Fields{
			"edits":  len(script.Changes),
			"length": script.NewLength,
		}).Info("joined")
		return nil
	})

	// never read again, released by --gc
	arrays.Map(joined, func(v int) int { return -v })

	return rs.TryBatch(func() {
		array.Delete(1, 1)
		array.Append(5)
	})
}
