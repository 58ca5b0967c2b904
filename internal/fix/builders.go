package fix

import (
	"viewc/internal/diag"
	"viewc/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at the head of at. guard, when
// set, must be the text right after the insertion point.
func InsertText(title string, at source.Span, text string, guard string, opts ...Option) diag.Fix {
	head := at.Head()
	edit := diag.TextEdit{Span: head, NewText: text}
	if guard != "" {
		// Guard by rewriting the following bytes unchanged.
		head.End = head.Start + uint32(len(guard))
		edit = diag.TextEdit{Span: head, NewText: text + guard, OldText: guard}
	}
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixMachineApplicable,
		Edits:         []diag.TextEdit{edit},
	}
	return applyOptions(fix, opts)
}

// DeleteSpan removes text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	edit := diag.TextEdit{
		Span:    span,
		NewText: "",
		OldText: expect,
	}
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixMachineApplicable,
		Edits:         []diag.TextEdit{edit},
	}
	return applyOptions(fix, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	edit := diag.TextEdit{
		Span:    span,
		NewText: newText,
		OldText: expect,
	}
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixMachineApplicable,
		Edits:         []diag.TextEdit{edit},
	}
	return applyOptions(fix, opts)
}

// Rename replaces every occurrence of oldName under spans with newName, as
// one fix. Used for tags whose name repeats in the closing tag.
func Rename(title string, spans []source.Span, oldName, newName string, opts ...Option) diag.Fix {
	edits := make([]diag.TextEdit, 0, len(spans))
	for _, sp := range spans {
		edits = append(edits, diag.TextEdit{Span: sp, NewText: newName, OldText: oldName})
	}
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixMachineApplicable,
		Edits:         edits,
	}
	return applyOptions(fix, opts)
}

// WrapWith surrounds span with prefix and suffix insertions.
func WrapWith(title string, span source.Span, prefix, suffix string, opts ...Option) diag.Fix {
	edits := []diag.TextEdit{
		{
			Span:    span.Head(),
			NewText: prefix,
		},
		{
			Span:    span.Tail(),
			NewText: suffix,
		},
	}
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixMaybeIncorrect,
		Edits:         edits,
	}
	return applyOptions(fix, opts)
}
