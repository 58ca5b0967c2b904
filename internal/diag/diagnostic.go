package diag

import (
	"viewc/internal/source"
)

// Note attaches a secondary span ("first defined here", "expected because of this").
type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the bytes under Span with NewText. When OldText is set
// the fix engine refuses to apply the edit unless the file still holds it.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixApplicability says how much a fix can be trusted without review.
type FixApplicability uint8

const (
	FixMachineApplicable FixApplicability = iota
	FixMaybeIncorrect
	FixManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixMachineApplicable:
		return "machine-applicable"
	case FixMaybeIncorrect:
		return "maybe-incorrect"
	default:
		return "manual-review"
	}
}

type Fix struct {
	ID            string
	Title         string
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
