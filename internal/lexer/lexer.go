package lexer

import (
	"viewc/internal/source"
	"viewc/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token
	hold   []token.Trivia
	errors int
	fatal  bool
}

func New(file *source.File, opts Options) *Lexer {
	cursor := NewCursor(file)
	if opts.Range != (source.Span{}) {
		cursor = NewRangeCursor(file, opts.Range)
	}
	return &Lexer{
		file:   file,
		cursor: cursor,
		opts:   opts,
	}
}

// Next returns the next significant token with its leading trivia attached.
// After the end of the range it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		return token.Token{
			Kind: token.EOF,
			Span: lx.emptySpan(),
		}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == 'r' && lx.atRawString():
		tok = lx.scanRawString()

	case isIdentStartByte(ch), ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '"':
		tok = lx.scanString()

	case ch == '\'':
		tok = lx.scanChar()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	t := lx.Next()
	lx.look = &t
	return t
}

// Errors reports how many lexical errors were emitted.
func (lx *Lexer) Errors() int { return lx.errors }

// Fatal reports whether an unterminated string or comment swallowed the
// rest of the input.
func (lx *Lexer) Fatal() bool { return lx.fatal }

// File returns the file being lexed.
func (lx *Lexer) File() *source.File { return lx.file }

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// Tokenize lexes the whole range, EOF included.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}
