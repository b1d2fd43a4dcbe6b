// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sync"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/lox/x/profiler"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Values of the --trace flag.
const (
	traceNone       = "none"
	traceOTel       = "otel"
	traceOpenCensus = "opencensus"
	traceCallgrind  = "callgrind"
	tracePprof      = "pprof"
)

const (
	defaultCallgrindFile = "callgrind.out.lox"
	defaultPprofFile     = "cpu.pprof"
)

// startTrace enables the call tracer named by mode on in.  Span tracers log
// one line per completed call to w.  The returned function ends the session
// and flushes any output.
func startTrace(ctx context.Context, mode, file string, in *lox.Interpreter, w io.Writer) (func() error, error) {
	switch mode {
	case "", traceNone:
		return func() error { return nil }, nil
	case traceOTel:
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(&otelSpanLogger{w: w}),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		p := profiler.NewOpenTelemetryAnnotator(in.Runtime, ctx)
		if err := p.Enable(); err != nil {
			return nil, err
		}
		return func() error {
			err := p.Complete()
			if serr := tp.Shutdown(ctx); err == nil {
				err = serr
			}
			return err
		}, nil
	case traceOpenCensus:
		octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
		exp := &ocSpanLogger{w: w}
		octrace.RegisterExporter(exp)
		p := profiler.NewOpenCensusAnnotator(in.Runtime, ctx)
		if err := p.Enable(); err != nil {
			octrace.UnregisterExporter(exp)
			return nil, err
		}
		return func() error {
			defer octrace.UnregisterExporter(exp)
			return p.Complete()
		}, nil
	case traceCallgrind:
		if file == "" {
			file = defaultCallgrindFile
		}
		p := profiler.NewCallgrindProfiler(in.Runtime)
		if err := p.SetFile(file); err != nil {
			return nil, err
		}
		if err := p.Enable(); err != nil {
			return nil, err
		}
		verbosef("writing callgrind profile to %s", file)
		return p.Complete, nil
	case tracePprof:
		if file == "" {
			file = defaultPprofFile
		}
		f, err := os.Create(file) //#nosec G304
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close() //nolint:errcheck
			return nil, err
		}
		// Samples taken inside lox calls carry a "function" label.
		p := profiler.NewPprofAnnotator(in.Runtime, ctx)
		if err := p.Enable(); err != nil {
			pprof.StopCPUProfile()
			f.Close() //nolint:errcheck
			return nil, err
		}
		verbosef("writing CPU profile to %s", file)
		return func() error {
			err := p.Complete()
			pprof.StopCPUProfile()
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unknown trace mode %q: must be none, otel, opencensus, callgrind or pprof", mode)
	}
}

// otelSpanLogger is an OpenTelemetry span exporter that writes each span's
// name and duration to w.
type otelSpanLogger struct {
	mu sync.Mutex
	w  io.Writer
}

var _ sdktrace.SpanExporter = (*otelSpanLogger)(nil)

func (e *otelSpanLogger) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range spans {
		if _, err := fmt.Fprintf(e.w, "trace: %s %v\n", s.Name(), s.EndTime().Sub(s.StartTime())); err != nil {
			return err
		}
	}
	return nil
}

func (e *otelSpanLogger) Shutdown(context.Context) error { return nil }

// ocSpanLogger is the OpenCensus counterpart of otelSpanLogger.
type ocSpanLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (e *ocSpanLogger) ExportSpan(sd *octrace.SpanData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.w, "trace: %s %v\n", sd.Name, sd.EndTime.Sub(sd.StartTime)) //nolint:errcheck
}
