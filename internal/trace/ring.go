package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in a fixed buffer.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	full  bool
	level Level
}

// NewRingTracer keeps up to size events (4096 when size <= 0).
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = 4096
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev Event) {
	if !t.level.Admits(ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = nextSeq()
	}
	t.mu.Lock()
	t.buf[t.next] = ev
	t.next = (t.next + 1) % len(t.buf)
	if t.next == 0 {
		t.full = true
	}
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.buf[:t.next]...)
	}
	out := make([]Event, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}

// Dump writes the snapshot to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(Encode(ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }
func (t *RingTracer) Level() Level { return t.level }
