package trace

import "time"

// Kind tells span boundaries from instant events.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1
	ScopeFile
	ScopeInvocation
	ScopeStage
	ScopeNode
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeFile:
		return "file"
	case ScopeInvocation:
		return "invocation"
	case ScopeStage:
		return "stage"
	case ScopeNode:
		return "node"
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // "resolve", "file:src/app.view"
	Detail   string
	Elapsed  time.Duration // set on KindEnd
	Extra    map[string]string
}
