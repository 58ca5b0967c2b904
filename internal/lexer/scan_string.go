package lexer

import (
	"viewc/internal/diag"
	"viewc/internal/token"
)

// scanString scans "..." with backslash escapes. Strings may span lines.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '"' {
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		if b == '\\' {
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errFatal(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) atRawString() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != 'r' {
		return false
	}
	if b1 == '"' {
		return true
	}
	if b1 != '#' {
		return false
	}
	off := lx.cursor.Off + 1
	for off < lx.cursor.Limit && lx.file.Content[off] == '#' {
		off++
	}
	return off < lx.cursor.Limit && lx.file.Content[off] == '"'
}

// scanRawString scans r"..." and r#"..."# (any number of hashes).
func (lx *Lexer) scanRawString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // r
	hashes := 0
	for lx.cursor.Eat('#') {
		hashes++
	}
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() != '"' {
			continue
		}
		n := 0
		for n < hashes && lx.cursor.Peek() == '#' {
			lx.cursor.Bump()
			n++
		}
		if n == hashes {
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errFatal(diag.LexUnterminatedString, sp, "unterminated raw string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// scanChar scans 'x' and escaped forms such as '\n' or '\u{1F600}'.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '\''
	switch lx.cursor.Peek() {
	case '\\':
		lx.cursor.Bump()
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\'' && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
	case '\'', '\n', 0:
	default:
		lx.bumpRune()
	}
	if !lx.cursor.Eat('\'') {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "malformed character literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.CharLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
