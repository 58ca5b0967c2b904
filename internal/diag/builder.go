package diag

import "viewc/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...TextEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}

func (d Diagnostic) WithFixSuggestion(fix Fix) Diagnostic {
	d.Fixes = append(d.Fixes, fix)
	return d
}

// ReplaceSpan builds a single-edit fix guarded by the text it replaces.
func ReplaceSpan(title string, span source.Span, newText, oldText string) Fix {
	return Fix{
		Title:         title,
		Applicability: FixMachineApplicable,
		IsPreferred:   true,
		Edits:         []TextEdit{{Span: span, NewText: newText, OldText: oldText}},
	}
}

// InsertText builds a fix inserting text at the zero-width span at.
func InsertText(title string, at source.Span, text string) Fix {
	return Fix{
		Title:         title,
		Applicability: FixMaybeIncorrect,
		Edits:         []TextEdit{{Span: at.Head(), NewText: text}},
	}
}
