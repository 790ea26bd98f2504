package signals

import (
	"github.com/pkg/errors"
)

// Contract violations. They are raised with panic, wrapped with the operation and phase that
// triggered them, and are never recovered internally: after one is raised mid batch the graph
// may be structurally inconsistent.
var (
	ErrPhaseViolation     = errors.New("signals: phase violation")
	ErrRangeViolation     = errors.New("signals: range violation")
	ErrUnimplemented      = errors.New("signals: unimplemented operation")
	ErrInvariantViolation = errors.New("signals: invariant violation")
	ErrCyclicDependency   = errors.New("signals: cyclic dependency")
)

var violations = []error{
	ErrPhaseViolation,
	ErrRangeViolation,
	ErrUnimplemented,
	ErrInvariantViolation,
	ErrCyclicDependency,
}

func violate(sentinel error, format string, args ...any) {
	panic(errors.Wrapf(sentinel, format, args...))
}

// IsViolation reports whether err wraps one of the contract violation sentinels.
func IsViolation(err error) bool {
	for _, v := range violations {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// Recover turns a contract violation panic into an error. It must be deferred directly:
//
//	defer signals.Recover(&err)
//
// Any other panic value is re-raised untouched.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && IsViolation(e) {
		*err = e
		return
	}
	panic(r)
}
