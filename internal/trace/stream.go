package trace

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"
)

var seq atomic.Uint64

func nextSeq() uint64 { return seq.Add(1) }

// StreamTracer writes each admitted event to w as it arrives.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	w      *bufio.Writer
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{out: w, w: bufio.NewWriter(w), level: level, format: format}
}

func (t *StreamTracer) Emit(ev Event) {
	if !t.level.Admits(ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = nextSeq()
	}
	line := Encode(ev, t.format)
	t.mu.Lock()
	_, _ = t.w.Write(line)
	// Command and file boundaries are flushed so a crash keeps them.
	if ev.Scope <= ScopeFile {
		_ = t.w.Flush()
	}
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Flush()
}

func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }
