package token

import (
	"viewc/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a string, char, numeric or boolean literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, CharLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsNamePart reports whether the token may be part of a hyphenated tag or
// attribute name.
func (t Token) IsNamePart() bool {
	switch t.Kind {
	case Ident, IntLit, Minus, KwMove, KwTrue, KwFalse, Underscore:
		return true
	default:
		return false
	}
}

// Touches reports whether next starts exactly where t ends.
func (t Token) Touches(next Token) bool {
	return t.Span.File == next.Span.File && t.Span.End == next.Span.Start
}
