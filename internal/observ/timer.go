// Package observ measures how long each pipeline stage takes, summed over
// every invocation a command compiles.
package observ

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Stage is one measured entry.
type Stage struct {
	Name  string
	Dur   time.Duration
	Count int
}

// Timer accumulates stage durations. Safe for concurrent use; the driver
// shares one Timer across its workers.
type Timer struct {
	mu     sync.Mutex
	order  []string
	stages map[string]*Stage
}

func NewTimer() *Timer { return &Timer{stages: make(map[string]*Stage)} }

// Measure starts a stage and returns the function that stops it.
func (t *Timer) Measure(name string) func() {
	if t == nil {
		return func() {}
	}
	start := time.Now()
	return func() { t.Add(name, time.Since(start)) }
}

// Add records one run of stage name.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.stages[name]
	if !ok {
		st = &Stage{Name: name}
		t.stages[name] = st
		t.order = append(t.order, name)
	}
	st.Dur += d
	st.Count++
}

// Stages returns the entries in first-seen order.
func (t *Timer) Stages() []Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Stage, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.stages[name])
	}
	return out
}

// StageReport is the serialized form of a Stage.
type StageReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Runs       int     `json:"runs"`
}

// Report is the serialized form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Stages  []StageReport `json:"stages"`
}

func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, st := range t.Stages() {
		total += st.Dur
		r.Stages = append(r.Stages, StageReport{Name: st.Name, DurationMS: millis(st.Dur), Runs: st.Count})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report as a table; slowest stages first when
// bySlowest is set.
func (t *Timer) Summary(bySlowest bool) string {
	r := t.Report()
	if bySlowest {
		sort.SliceStable(r.Stages, func(i, j int) bool { return r.Stages[i].DurationMS > r.Stages[j].DurationMS })
	}
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, st := range r.Stages {
		fmt.Fprintf(&sb, "  %-12s %8.2f ms  x%d\n", st.Name, st.DurationMS, st.Runs)
	}
	fmt.Fprintf(&sb, "  %-12s %8.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
