package lexer

import (
	"viewc/internal/diag"
	"viewc/internal/token"
)

// scanNumber accepts 0, 123, 1_000, 0b/0o/0x forms, 1.5, 1e-3, and a type
// suffix (10u8, 2.5f32). A '.' not followed by a digit is left alone so that
// `1..4` and method calls on literals lex correctly.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		if _, b1, ok := lx.cursor.Peek2(); ok {
			var digit func(byte) bool
			switch b1 {
			case 'b', 'B':
				digit = func(b byte) bool { return b == '0' || b == '1' }
			case 'o', 'O':
				digit = func(b byte) bool { return b >= '0' && b <= '7' }
			case 'x', 'X':
				digit = isHex
			}
			if digit != nil {
				lx.cursor.Bump()
				lx.cursor.Bump()
				n := 0
				for digit(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
					lx.cursor.Bump()
					n++
				}
				if n == 0 {
					sp := lx.cursor.SpanFrom(start)
					lx.errLex(diag.LexBadNumber, sp, "expected digits after base prefix")
					return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
				}
				lx.scanSuffix()
				sp := lx.cursor.SpanFrom(start)
				return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
			}
		}
	}

	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			kind = token.FloatLit
			for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
		} else {
			// `1em` and friends: not an exponent, leave it to the suffix scan
			lx.cursor.Reset(mark)
		}
	}

	if lx.scanSuffix() && kind == token.IntLit {
		sp := lx.cursor.SpanFrom(start)
		text := string(lx.file.Content[sp.Start:sp.End])
		if hasFloatSuffix(text) {
			kind = token.FloatLit
		}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) scanSuffix() bool {
	if !isIdentStartByte(lx.cursor.Peek()) {
		return false
	}
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	return true
}

func hasFloatSuffix(text string) bool {
	n := len(text)
	return n > 3 && text[n-3] == 'f' && (text[n-2:] == "32" || text[n-2:] == "64")
}
