package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/lox/lox"
)

// This profiler type appends tags to pprof output if pprof is enabled.
// It does not start pprof; the caller decides when to collect a profile.
// The sampling rate of pprof is fixed at 100Hz so short programs produce few
// labelled samples.
type pprofAnnotator struct {
	profiler
	currentContext context.Context
}

var _ lox.Profiler = &pprofAnnotator{}

func NewPprofAnnotator(runtime *lox.Runtime, parentContext context.Context, opts ...Option) *pprofAnnotator {
	p := &pprofAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		p.currentContext = context.Background()
	}
	return p.profiler.Enable()
}

func (p *pprofAnnotator) Complete() error {
	pprof.SetGoroutineLabels(context.Background())
	return p.profiler.Complete()
}

func (p *pprofAnnotator) Start(fun lox.Callable) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	// The label context is kept on the annotator so a call's labels stay
	// applied for the duration of its nested calls.
	oldContext := p.currentContext
	prettyLabel, _ := p.prettyFunName(fun)
	p.currentContext = pprof.WithLabels(p.currentContext, pprof.Labels("function", prettyLabel))
	pprof.SetGoroutineLabels(p.currentContext)

	return func() {
		p.currentContext = oldContext
		pprof.SetGoroutineLabels(p.currentContext)
	}
}
