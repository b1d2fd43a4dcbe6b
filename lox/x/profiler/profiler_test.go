package profiler_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/lox/x/profiler"
	"github.com/luthersystems/lox/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const testLox = `fun add(a, b) { return a + b; }
fun twice(x) { return add(x, x); }
print twice(add(1, 2));
print clock() > 0;
`

func newInterpreter(t *testing.T) *lox.Interpreter {
	t.Helper()
	in, err := lox.NewInterpreter(
		lox.WithReader(parser.NewReader()),
		lox.WithStdout(io.Discard),
		lox.WithStderr(io.Discard),
	)
	require.NoError(t, err)
	return in
}

func newExporter(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)
	return exporter
}

func TestNewOpenTelemetryAnnotator(t *testing.T) {
	exporter := newExporter(t)
	in := newInterpreter(t)
	ppa := profiler.NewOpenTelemetryAnnotator(in.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	assert.Same(t, ppa, in.Runtime.Profiler)
	require.NoError(t, in.LoadString("test.lox", testLox))
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Len(t, spans, 3, "natives are not traced")
	assert.Equal(t, "add", spans[0].Name)
	assert.Equal(t, "add", spans[1].Name)
	assert.Equal(t, "twice", spans[2].Name)
	assert.Equal(t, spans[2].SpanContext.SpanID(), spans[1].Parent.SpanID())
	assert.False(t, spans[0].Parent.IsValid())

	attrs := make(map[string]interface{})
	for _, kv := range spans[2].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "twice", attrs["code.function"])
	assert.Equal(t, "test.lox", attrs["code.filepath"])
	assert.Equal(t, int64(2), attrs["code.lineno"])
	assert.Equal(t, int64(1), attrs["lox.arity"])
}

func TestNewOpenTelemetryAnnotatorFilter(t *testing.T) {
	exporter := newExporter(t)
	in := newInterpreter(t)
	ppa := profiler.NewOpenTelemetryAnnotator(in.Runtime, context.Background(),
		profiler.WithNameFilter("^twice$"),
		profiler.WithSourceLabeler())
	require.NoError(t, ppa.Enable())
	require.NoError(t, in.LoadString("test.lox", testLox))
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "twice@test.lox:2", spans[0].Name)
}

func TestNewOpenTelemetryAnnotatorNoContext(t *testing.T) {
	in := newInterpreter(t)
	//nolint:staticcheck
	ppa := profiler.NewOpenTelemetryAnnotator(in.Runtime, nil)
	assert.Error(t, ppa.Enable())
}

type spanRecorder struct {
	mut   sync.Mutex
	spans []*trace.SpanData
}

func (r *spanRecorder) ExportSpan(sd *trace.SpanData) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.spans = append(r.spans, sd)
}

func TestNewOpenCensusAnnotator(t *testing.T) {
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	rec := &spanRecorder{}
	trace.RegisterExporter(rec)
	t.Cleanup(func() { trace.UnregisterExporter(rec) })

	in := newInterpreter(t)
	ppa := profiler.NewOpenCensusAnnotator(in.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	require.NoError(t, in.LoadString("test.lox", testLox))
	require.NoError(t, ppa.Complete())

	rec.mut.Lock()
	defer rec.mut.Unlock()
	require.Len(t, rec.spans, 3)
	assert.Equal(t, "twice", rec.spans[2].Name)
	assert.Equal(t, rec.spans[2].SpanID, rec.spans[1].ParentSpanID)
	require.NotEmpty(t, rec.spans[1].Annotations)
	assert.Equal(t, "source", rec.spans[1].Annotations[0].Message)
	assert.Equal(t, "test.lox", rec.spans[1].Annotations[0].Attributes["file"])
	assert.Equal(t, int64(1), rec.spans[1].Annotations[0].Attributes["line"])

	//nolint:staticcheck
	assert.Error(t, ppa.EnableWithContext(nil))
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func TestNewCallgrind(t *testing.T) {
	in := newInterpreter(t)
	var buf bytes.Buffer
	p := profiler.NewCallgrindProfiler(in.Runtime)
	assert.Error(t, p.Enable(), "no output")
	require.NoError(t, p.SetWriter(nopCloser{&buf}))
	require.NoError(t, p.Enable())
	assert.Error(t, p.SetWriter(nopCloser{io.Discard}))
	require.NoError(t, in.LoadString("test.lox", testLox))
	require.NoError(t, p.Complete())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "version: 1\ncreator: lox "+lox.Version))
	assert.Contains(t, out, "events: Time_(ns) Memory_(bytes)")
	assert.Contains(t, out, "fl=(1) test.lox\nfn=(2) add\n")
	assert.Contains(t, out, "fn=(3) twice\n")
	assert.Contains(t, out, "cfn=(3)\n")
	assert.Contains(t, out, "fn=(5) ENTRYPOINT\n")
	assert.Contains(t, out, "summary ")
}
