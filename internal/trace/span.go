package trace

import (
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span is an open begin/end pair. The zero Span, returned when tracing is
// off or the scope is not admitted, ignores every call.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	extra  map[string]string
}

// Begin emits a begin event and returns the span to end.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !Enabled(t) || !t.Level().Admits(scope) {
		return &Span{}
	}
	sp := &Span{
		t:      t,
		id:     spanIDs.Add(1),
		parent: parent,
		scope:  scope,
		name:   name,
		start:  time.Now(),
	}
	t.Emit(Event{
		Time:     sp.start,
		Kind:     KindBegin,
		Scope:    scope,
		SpanID:   sp.id,
		ParentID: parent,
		Name:     name,
	})
	return sp
}

// ID is 0 for a disabled span.
func (s *Span) ID() uint64 { return s.id }

// With attaches a key/value to the end event.
func (s *Span) With(key, value string) *Span {
	if s.t == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// End emits the end event with the elapsed time.
func (s *Span) End(detail string) {
	if s.t == nil {
		return
	}
	now := time.Now()
	s.t.Emit(Event{
		Time:     now,
		Kind:     KindEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  now.Sub(s.start),
		Extra:    s.extra,
	})
	s.t = nil
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !Enabled(t) || !t.Level().Admits(scope) {
		return
	}
	t.Emit(Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
