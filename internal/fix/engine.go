// Package fix applies the text edits attached to diagnostics back to the
// files they came from.
package fix

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"

	"viewc/internal/diag"
	"viewc/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes the new contents without writing them.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
	// Content is the file after the edits.
	Content []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects fixes from diagnostics, selects a subset according to opts, and applies them.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, buildSkips := gatherCandidates(diagnostics)
	result.Skipped = append(result.Skipped, buildSkips...)

	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)

	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	ws := newWorkspace(fs, opts.DryRun)
	for _, cand := range selected {
		if reason := ws.apply(cand.fix); reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{ID: cand.fix.ID, Title: cand.fix.Title, Reason: reason})
			continue
		}
		result.Applied = append(result.Applied, AppliedFix{
			ID:            cand.fix.ID,
			Title:         cand.fix.Title,
			Code:          cand.diag.Code,
			Message:       cand.diag.Message,
			Applicability: cand.fix.Applicability,
			PrimaryPath:   ws.displayPath(cand.diag.Primary.File, "auto"),
			EditCount:     len(cand.fix.Edits),
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	changes, err := ws.flush()
	result.FileChanges = append(result.FileChanges, changes...)
	return result, err
}

// gatherCandidates builds a list of candidate fixes from diagnostics and
// reports any skips encountered. Fixes without edits or with an ID seen
// before are skipped. A fix without an ID gets one from the diagnostic
// code, its position and the fix index.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)
	seen := make(map[string]struct{})

	order := 0
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			if len(f.Edits) == 0 {
				skips = append(skips, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Reason: "fix has no edits",
				})
				continue
			}
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if _, dup := seen[f.ID]; dup {
				skips = append(skips, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Reason: "duplicate fix id",
				})
				continue
			}
			seen[f.ID] = struct{}{}
			cands = append(cands, candidate{
				diag:  d,
				fix:   f,
				order: order,
			})
			order++
		}
	}
	return cands, skips
}

// sortCandidates orders fixes by where their diagnostic points, then by
// discovery order. Preferred fixes win ties.
func sortCandidates(candidates []candidate) {
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		pa, pb := a.diag.Primary, b.diag.Primary
		if c := cmp.Compare(pa.File, pb.File); c != 0 {
			return c
		}
		if c := cmp.Compare(pa.Start, pb.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(pa.End, pb.End); c != 0 {
			return c
		}
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		if c := cmp.Compare(a.diag.Code, b.diag.Code); c != 0 {
			return c
		}
		if a.fix.IsPreferred != b.fix.IsPreferred {
			if a.fix.IsPreferred {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.fix.ID, b.fix.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.fix.Title, b.fix.Title)
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	machine := func(c candidate) bool { return c.fix.Applicability == diag.FixMachineApplicable }
	switch opts.Mode {
	case ApplyModeID:
		if i := slices.IndexFunc(candidates, func(c candidate) bool { return c.fix.ID == opts.TargetID }); i >= 0 {
			return candidates[i : i+1], nil
		}
		return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
	case ApplyModeAll:
		var selected []candidate
		var skipped []SkippedFix
		for _, cand := range candidates {
			if machine(cand) {
				selected = append(selected, cand)
				continue
			}
			skipped = append(skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: "applicability is " + cand.fix.Applicability.String(),
			})
		}
		return selected, skipped
	case ApplyModeOnce:
		// Without a machine-applicable fix the first one is taken anyway:
		// the user asked for exactly one.
		if i := slices.IndexFunc(candidates, machine); i >= 0 {
			return candidates[i : i+1], nil
		}
		return candidates[:1], nil
	default:
		return nil, nil
	}
}

// pending is the edited state of one file. applied holds the edits made so
// far in original coordinates, sorted by start.
type pending struct {
	file    *source.File
	buf     []byte
	applied []diag.TextEdit
	count   int
}

func (p *pending) clone() *pending {
	return &pending{
		file:    p.file,
		buf:     slices.Clone(p.buf),
		applied: slices.Clone(p.applied),
		count:   p.count,
	}
}

// workspace stages fixes in memory; a fix lands on every file it touches
// or on none.
type workspace struct {
	fs     *source.FileSet
	dryRun bool
	files  map[source.FileID]*pending
}

func newWorkspace(fs *source.FileSet, dryRun bool) *workspace {
	return &workspace{fs: fs, dryRun: dryRun, files: make(map[source.FileID]*pending)}
}

// apply stages fix and returns why it was skipped, or "".
func (ws *workspace) apply(fix diag.Fix) string {
	byFile := make(map[source.FileID][]diag.TextEdit)
	var order []source.FileID
	for _, e := range fix.Edits {
		if _, ok := byFile[e.Span.File]; !ok {
			order = append(order, e.Span.File)
		}
		byFile[e.Span.File] = append(byFile[e.Span.File], e)
	}
	staged := make(map[source.FileID]*pending, len(order))
	for _, id := range order {
		p, reason := ws.stage(id, byFile[id])
		if reason != "" {
			return reason
		}
		staged[id] = p
	}
	for id, p := range staged {
		ws.files[id] = p
	}
	return ""
}

func (ws *workspace) stage(id source.FileID, edits []diag.TextEdit) (*pending, string) {
	if id == source.NoFile || int(id) >= ws.fs.Len() {
		return nil, "edit has no file"
	}
	file := ws.fs.Get(id)
	if file.Flags&source.FileVirtual != 0 && !ws.dryRun {
		return nil, "target file is virtual"
	}
	prev, ok := ws.files[id]
	if !ok {
		prev = &pending{file: file, buf: slices.Clone(file.Content)}
	}
	for _, done := range prev.applied {
		for _, e := range edits {
			if overlaps(done.Span, e.Span) {
				return nil, "conflicts with previously applied edits in " + ws.displayPath(id, "auto")
			}
		}
	}

	p := prev.clone()
	// Back to front, so each edit sees the text before it unchanged.
	slices.SortStableFunc(edits, func(a, b diag.TextEdit) int {
		if a.Span.Start == b.Span.Start {
			return cmp.Compare(b.Span.End, a.Span.End)
		}
		return cmp.Compare(b.Span.Start, a.Span.Start)
	})
	for _, e := range edits {
		start := int(e.Span.Start) + shift(p.applied, e.Span.Start)
		end := int(e.Span.End) + shift(p.applied, e.Span.End)
		if start < 0 || end < start || end > len(p.buf) {
			return nil, "edit span out of range"
		}
		if e.OldText != "" && string(p.buf[start:end]) != e.OldText {
			return nil, "existing text does not match expected content"
		}
		p.buf = slices.Concat(p.buf[:start], []byte(e.NewText), p.buf[end:])
		p.applied = insertSorted(p.applied, e)
	}
	p.count += len(edits)
	return p, ""
}

// flush writes every edited file unless this is a dry run, and reports
// the changes sorted by path.
func (ws *workspace) flush() ([]FileChange, error) {
	changes := make([]FileChange, 0, len(ws.files))
	for id, p := range ws.files {
		if !ws.dryRun {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(p.file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(p.file.Path, p.buf, mode); err != nil {
				return changes, fmt.Errorf("write %s: %w", p.file.Path, err)
			}
		}
		changes = append(changes, FileChange{
			Path:      ws.displayPath(id, "relative"),
			EditCount: p.count,
			Content:   p.buf,
		})
	}
	slices.SortFunc(changes, func(a, b FileChange) int { return cmp.Compare(a.Path, b.Path) })
	return changes, nil
}

func (ws *workspace) displayPath(id source.FileID, mode string) string {
	if id == source.NoFile || int(id) >= ws.fs.Len() {
		return ""
	}
	return ws.fs.Get(id).FormatPath(mode, ws.fs.BaseDir())
}

// overlaps treats spans as half-open. Two insertions never overlap; an
// insertion overlaps a range that strictly contains its position or
// starts at it.
func overlaps(a, b source.Span) bool {
	switch {
	case a.Start == a.End && b.Start == b.End:
		return false
	case a.Start == a.End:
		return b.Start <= a.Start && a.Start < b.End
	case b.Start == b.End:
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// shift is how far pos moved because of the edits already applied before it.
func shift(applied []diag.TextEdit, pos uint32) int {
	delta := 0
	for _, e := range applied {
		if e.Span.Start > pos {
			break
		}
		if e.Span.End <= pos {
			delta += len(e.NewText) - int(e.Span.End-e.Span.Start)
		}
	}
	return delta
}

func insertSorted(edits []diag.TextEdit, e diag.TextEdit) []diag.TextEdit {
	i, _ := slices.BinarySearchFunc(edits, e, func(a, b diag.TextEdit) int {
		if a.Span.Start == b.Span.Start {
			return cmp.Compare(a.Span.End, b.Span.End)
		}
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})
	return slices.Insert(edits, i, e)
}
