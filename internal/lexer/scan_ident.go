package lexer

import (
	"golang.org/x/text/unicode/norm"

	"viewc/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword scans an identifier and checks it against LookupKeyword.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 || !isIdentStartRune(r) {
		return lx.scanOperatorOrPunct()
	}
	lx.bumpRune()
	for {
		b := lx.cursor.Peek()
		if b < utf8RuneSelf {
			if !isIdentContinueByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r2, sz2 := lx.peekRune()
		if sz2 == 0 || !isIdentContinueRune(r2) {
			break
		}
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])

	if text == "_" {
		return token.Token{Kind: token.Underscore, Span: sp, Text: text}
	}
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	if !isASCII(text) {
		text = norm.NFC.String(text)
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8RuneSelf {
			return false
		}
	}
	return true
}
