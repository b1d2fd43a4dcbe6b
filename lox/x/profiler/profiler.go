package profiler

import (
	"fmt"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser/token"
)

// profiler is a minimal lox.Profiler
type profiler struct {
	runtime    *lox.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lox.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	p.enabled = false
	return nil
}

func (p *profiler) Start(fun lox.Callable) func() {
	return func() {}
}

// defaultFunName returns the declared name of fun.
func defaultFunName(fun lox.Callable) string {
	switch fun := fun.(type) {
	case *lox.Function:
		return fun.Name()
	case *lox.NativeFunction:
		return fun.Name
	case nil:
		return ""
	default:
		return fun.String()
	}
}

// prettyFunName returns a pretty name and original name for a fun. If there is
// no pretty name, then the pretty name is the original name.
func (p *profiler) prettyFunName(fun lox.Callable) (string, string) {
	origLabel := defaultFunName(fun)
	if origLabel == "" {
		return "", ""
	}
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = sanitizeLabel(p.funLabeler(p.runtime, fun))
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}

	return prettyLabel, origLabel
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(fun lox.Callable) bool {
	return !p.enabled || defaultSkipFilter(fun) || p.skipFilter != nil && p.skipFilter(fun)
}

// getSourceLoc returns the location where fun was declared, or nil for
// natives.
func getSourceLoc(fun lox.Callable) *token.Location {
	f, ok := fun.(*lox.Function)
	if !ok || f.Decl == nil || f.Decl.Name == nil {
		return nil
	}
	return f.Decl.Name.Source
}

func getSource(fun lox.Callable) (string, int) {
	if loc := getSourceLoc(fun); loc != nil {
		return loc.File, loc.Line
	}
	return "no-source", 0
}
