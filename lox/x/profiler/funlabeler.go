package profiler

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/luthersystems/lox/lox"
)

// FunLabeler provides an alternative name for a function label in the trace.
type FunLabeler func(runtime *lox.Runtime, fun lox.Callable) string

// WithSourceLabeler labels spans with the function name and the file and line
// of its declaration, which tells apart functions declared with the same
// name in different scopes.
func WithSourceLabeler() Option {
	return WithFunLabeler(sourceFunLabeler)
}

// WithFunLabeler sets the labeler for tracing spans.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

var (
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(userLabel string) string {
	if userLabel == "" {
		return ""
	}

	// Replace spaces with underscores
	userLabel = sanitizeRegExp.ReplaceAllString(userLabel, "_")

	// Find the first valid label match
	matches := validLabelRegExp.FindStringSubmatch(userLabel)
	if len(matches) > 0 {
		return matches[0]
	}

	return ""
}

func sourceFunLabeler(runtime *lox.Runtime, fun lox.Callable) string {
	name := defaultFunName(fun)
	loc := getSourceLoc(fun)
	if loc == nil {
		return name
	}
	return fmt.Sprintf("%s@%s:%d", name, filepath.Base(loc.File), loc.Line)
}
