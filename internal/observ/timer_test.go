package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerAccumulates(t *testing.T) {
	tm := NewTimer()
	tm.Add("parse", 2*time.Millisecond)
	tm.Add("resolve", time.Millisecond)
	tm.Add("parse", 3*time.Millisecond)

	st := tm.Stages()
	if len(st) != 2 || st[0].Name != "parse" || st[1].Name != "resolve" {
		t.Fatalf("stages = %+v", st)
	}
	if st[0].Count != 2 || st[0].Dur != 5*time.Millisecond {
		t.Errorf("parse = %+v, want 2 runs over 5ms", st[0])
	}
	if r := tm.Report(); r.TotalMS != 6 {
		t.Errorf("total = %v, want 6", r.TotalMS)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stop := tm.Measure("check")
			stop()
		}()
	}
	wg.Wait()
	if st := tm.Stages(); len(st) != 1 || st[0].Count != 8 {
		t.Fatalf("stages = %+v", st)
	}
}

func TestSummaryOrder(t *testing.T) {
	tm := NewTimer()
	tm.Add("parse", time.Millisecond)
	tm.Add("check", 5*time.Millisecond)
	s := tm.Summary(true)
	if strings.Index(s, "check") > strings.Index(s, "parse") {
		t.Errorf("slowest stage not first:\n%s", s)
	}
	if !strings.Contains(s, "total") {
		t.Errorf("summary lacks total:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Measure("x")()
	tm.Add("x", time.Second)
}
