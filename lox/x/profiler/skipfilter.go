package profiler

import (
	"regexp"

	"github.com/luthersystems/lox/lox"
)

// SkipFilter reports whether calls to fun should be left out of a trace.
type SkipFilter func(fun lox.Callable) bool

func defaultSkipFilter(fun lox.Callable) bool {
	switch fun.(type) {
	case *lox.Function:
		return false
	case *lox.NativeFunction:
		// Natives are leaves and rarely interesting on their own.
		return true
	default:
		return true
	}
}

// WithNameFilter only traces functions whose names match pattern.
func WithNameFilter(pattern string) Option {
	re := regexp.MustCompile(pattern)
	return WithSkipFilter(func(fun lox.Callable) bool {
		return !re.MatchString(defaultFunName(fun))
	})
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}
