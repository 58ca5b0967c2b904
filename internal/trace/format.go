package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format is the encoding of streamed events.
type Format uint8

const (
	FormatAuto Format = iota // pick by file extension
	FormatText
	FormatNDJSON
)

// ParseFormat accepts "auto", "text" and "ndjson".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto, text or ndjson)", s)
}

// Encode renders ev as one line.
func Encode(ev Event, format Format) []byte {
	if format == FormatNDJSON {
		return encodeNDJSON(ev)
	}
	return encodeText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	Span     uint64            `json:"span,omitempty"`
	Parent   uint64            `json:"parent,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	ElapsedU int64             `json:"elapsed_us,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func encodeNDJSON(ev Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		Span:     ev.SpanID,
		Parent:   ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		ElapsedU: ev.Elapsed.Microseconds(),
		Extra:    ev.Extra,
	})
	if err != nil {
		return []byte(fmt.Sprintf("{\"error\":%q}\n", err.Error()))
	}
	return append(data, '\n')
}

// encodeText indents by scope depth:
//
//	#12    → stage resolve
//	#13    ← stage resolve 0.41ms
func encodeText(ev Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%-5d ", ev.Seq)
	sb.WriteString(strings.Repeat("  ", int(ev.Scope)-1))
	switch ev.Kind {
	case KindBegin:
		sb.WriteString("→ ")
	case KindEnd:
		sb.WriteString("← ")
	default:
		sb.WriteString("• ")
	}
	sb.WriteString(ev.Scope.String())
	sb.WriteByte(' ')
	sb.WriteString(ev.Name)
	if ev.Kind == KindEnd {
		fmt.Fprintf(&sb, " %.2fms", float64(ev.Elapsed.Microseconds())/1000)
	}
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteByte(')')
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
