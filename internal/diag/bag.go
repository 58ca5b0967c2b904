package diag

import (
	"sort"
)

// Bag stores diagnostics in emission order up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag returns a bag holding at most max items; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add appends d unless the limit is reached; the result tells which.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Full reports whether the next Add would be rejected.
func (b *Bag) Full() bool {
	return b.max > 0 && len(b.items) >= b.max
}

func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity == SevWarning {
			return true
		}
	}
	return false
}

// Count returns how many diagnostics have severity sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends everything from other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if newTotal := len(b.items) + len(other.items); b.max > 0 && newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (desc), code.
// Ties keep emission order, which is pre-order within a pass.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops later items repeating an earlier code+primary pair.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		sp   spanKey
	}
	seen := make(map[key]bool, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		k := key{d.Code, spanKey{d.Primary.File, d.Primary.Start, d.Primary.End}}
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, d)
	}
	b.items = kept
}

// Filter keeps the diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	kept := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			kept = append(kept, d)
		}
	}
	b.items = kept
}
