package diag

import "viewc/internal/source"

type dedupKey struct {
	code  Code
	sev   Severity
	file  source.FileID
	start uint32
	end   uint32
	msg   string
}

type spanKey struct {
	file       source.FileID
	start, end uint32
}

// Collector is the per-pass sink shared by every stage. It drops exact
// duplicates, and drops a derived diagnostic (see Code.Derived) when an
// error already sits on the same primary span. Nothing it has accepted is
// ever removed: the first writer at a span wins.
type Collector struct {
	bag     *Bag
	seen    map[dedupKey]struct{}
	errored map[spanKey]Code
	dropped int
}

// NewCollector returns a collector writing into bag.
func NewCollector(bag *Bag) *Collector {
	return &Collector{
		bag:     bag,
		seen:    make(map[dedupKey]struct{}),
		errored: make(map[spanKey]Code),
	}
}

func (c *Collector) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if c == nil || c.bag == nil {
		return
	}
	key := dedupKey{
		code:  code,
		sev:   sev,
		file:  primary.File,
		start: primary.Start,
		end:   primary.End,
		msg:   msg,
	}
	if _, ok := c.seen[key]; ok {
		c.dropped++
		return
	}
	sk := spanKey{file: primary.File, start: primary.Start, end: primary.End}
	if code.Derived() {
		if _, ok := c.errored[sk]; ok {
			c.dropped++
			return
		}
	}
	c.seen[key] = struct{}{}
	if sev >= SevError {
		if _, ok := c.errored[sk]; !ok {
			c.errored[sk] = code
		}
	}
	c.bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes, Fixes: fixes,
	})
}

// Occupied reports whether an error was already accepted at exactly sp.
func (c *Collector) Occupied(sp source.Span) bool {
	if c == nil {
		return false
	}
	_, ok := c.errored[spanKey{file: sp.File, start: sp.Start, end: sp.End}]
	return ok
}

// Dropped reports how many diagnostics were suppressed.
func (c *Collector) Dropped() int {
	if c == nil {
		return 0
	}
	return c.dropped
}

func (c *Collector) Bag() *Bag {
	return c.bag
}
