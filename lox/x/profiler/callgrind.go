package profiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser/token"
)

// errWriter wraps an io.Writer and captures the first write error,
// short-circuiting subsequent writes after a failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprint(ew.w, s)
}

// A profiler implementation that builds Callgrind files.
// The resulting files can be opened in KCacheGrind or QCacheGrind.
type callgrindProfiler struct {
	profiler
	sync.Mutex
	writer    io.WriteCloser
	writeErr  error
	startTime time.Time
	refs      map[string]int
	refCount  int
	current   *callRef
}

var _ lox.Profiler = &callgrindProfiler{}

// Returns a new Callgrind processor
func NewCallgrindProfiler(runtime *lox.Runtime, opts ...Option) *callgrindProfiler {
	p := new(callgrindProfiler)
	p.runtime = runtime
	runtime.Profiler = p

	p.applyConfigs(opts...)
	return p
}

// Represents something that got called
type callRef struct {
	start       time.Time
	prev        *callRef
	name        string
	children    []*callRef
	duration    time.Duration
	startMemory uint64
	endMemory   uint64
	file        string
	line        int
}

func (p *callgrindProfiler) Enable() error {
	p.Lock()
	if p.writer == nil {
		p.Unlock()
		return errors.New("no output set in profiler")
	}
	w := &errWriter{w: p.writer}
	w.printf("version: 1\ncreator: lox %s (Go %s)\n", lox.Version, runtime.Version())
	w.printf("cmd: Run\npart: 1\npositions: line\n\n")
	w.printf("events: Time_(ns) Memory_(bytes)\n\n")
	if w.err != nil {
		p.Unlock()
		return w.err
	}
	p.startTime = time.Now()
	p.refs = make(map[string]int)
	p.refCount = 0
	p.current = nil
	p.Unlock()
	p.pushCallRef("ENTRYPOINT", &token.Location{File: "-"})
	return p.profiler.Enable()
}

// SetFile directs output to a newly created file.
func (p *callgrindProfiler) SetFile(filename string) error {
	pointer, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	if err := p.SetWriter(pointer); err != nil {
		pointer.Close() //nolint:errcheck
		return err
	}
	return nil
}

// SetWriter directs output to w, which is closed by Complete.
func (p *callgrindProfiler) SetWriter(w io.WriteCloser) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.writer = w
	return nil
}

func (p *callgrindProfiler) Complete() error {
	p.Lock()
	defer p.Unlock()
	if !p.enabled {
		return errors.New("profiler not enabled")
	}
	p.enabled = false
	ref := p.popCallRef()
	if p.writeErr != nil {
		return p.writeErr
	}
	// Generate entrypoint
	ref.duration = time.Since(ref.start)
	w := &errWriter{w: p.writer}
	w.printf("fl=%s\n", p.getRef(ref.file))
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("%d %d %d\n", 0, ref.duration, 0)
	// Output the things we called
	for _, entry := range ref.children {
		w.printf("cfl=%s\n", p.getRef(entry.file))
		w.printf("cfn=%s\n", p.getRef(entry.name))
		w.print("calls=1 0 0\n")
		w.printf("%d %d %d\n", entry.line, entry.duration, 0)
	}
	w.print("\n")
	duration := time.Since(p.startTime)
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	w.printf("summary %d %d\n\n", duration.Nanoseconds(), ms.TotalAlloc)
	if w.err != nil {
		return w.err
	}
	return p.writer.Close()
}

func (p *callgrindProfiler) getRef(name string) string {
	if ref, ok := p.refs[name]; ok {
		return fmt.Sprintf("(%d)", ref)
	}
	p.refCount++
	p.refs[name] = p.refCount
	return fmt.Sprintf("(%d) %s", p.refCount, name)
}

func (p *callgrindProfiler) Start(fun lox.Callable) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	prettyLabel, _ := p.prettyFunName(fun)
	// Mark the time and point of entry.  This records callees, not callers,
	// so it is not a copy of the interpreter's call stack.
	p.pushCallRef(prettyLabel, getSourceLoc(fun))

	return func() {
		p.end(prettyLabel, getSourceLoc(fun))
	}
}

func (p *callgrindProfiler) pushCallRef(name string, loc *token.Location) *callRef {
	p.Lock()
	defer p.Unlock()
	frameRef := &callRef{name: name}
	if loc != nil {
		frameRef.file = loc.File
		frameRef.line = loc.Line
	}
	if p.current != nil {
		frameRef.prev = p.current
		p.current.children = append(p.current.children, frameRef)
	}
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	frameRef.startMemory = ms.TotalAlloc
	frameRef.start = time.Now()
	p.current = frameRef
	return frameRef
}

func (p *callgrindProfiler) popCallRef() *callRef {
	if p.current == nil {
		panic("callgrind: call ref stack is empty")
	}
	ref := p.current
	p.current = ref.prev
	return ref
}

func (p *callgrindProfiler) end(fName string, loc *token.Location) {
	p.Lock()
	defer p.Unlock()
	if !p.enabled {
		return
	}
	// Pop even when output has failed so the ref chain keeps matching the
	// calls still in progress.
	ref := p.popCallRef()
	ref.duration = time.Since(ref.start)
	if ref.duration == 0 {
		ref.duration = 1
	}
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	ref.endMemory = ms.TotalAlloc
	if p.writeErr != nil {
		return
	}
	w := &errWriter{w: p.writer}
	// Write what function we've been observing and where to find it
	if loc != nil {
		w.printf("fl=%s\n", p.getRef(loc.File))
	}
	w.printf("fn=%s\n", p.getRef(fName))
	memory := ref.endMemory - ref.startMemory
	line := 0
	if loc != nil {
		line = loc.Line
	}
	w.printf("%d %d %d\n", line, ref.duration, memory)
	// Output the things we called
	for _, entry := range ref.children {
		w.printf("cfl=%s\n", p.getRef(entry.file))
		w.printf("cfn=%s\n", p.getRef(entry.name))
		w.print("calls=1 0 0\n")
		w.printf("%d %d %d\n", entry.line, entry.duration, memory)
	}
	// and end the entry
	w.print("\n")
	if w.err != nil {
		p.writeErr = w.err
	}
}
