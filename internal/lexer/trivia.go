package lexer

import (
	"viewc/internal/diag"
	"viewc/internal/token"
)

// collectLeadingTrivia gathers whitespace and comments before the next
// significant token. Runs of blanks and of newlines coalesce.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case b == ' ' || b == '\t' || b == '\r':
			for b2 := lx.cursor.Peek(); b2 == ' ' || b2 == '\t' || b2 == '\r'; b2 = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue

		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue

		case b == '/':
			if lx.scanComment() {
				continue
			}
		}
		break
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

// scanComment consumes `// ...` or a nested `/* ... */` and reports
// whether it did.
func (lx *Lexer) scanComment() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '/' || (b1 != '/' && b1 != '*') {
		return false
	}
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()

	if b1 == '/' {
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.pushTrivia(token.TriviaLineComment, start)
		return true
	}

	depth := 1
	for !lx.cursor.EOF() && depth > 0 {
		switch {
		case lx.try2('/', '*'):
			depth++
		case lx.try2('*', '/'):
			depth--
		default:
			lx.cursor.Bump()
		}
	}
	if depth > 0 {
		lx.errFatal(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
	}
	lx.pushTrivia(token.TriviaBlockComment, start)
	return true
}
