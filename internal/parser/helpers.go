package parser

import (
	"fmt"

	"viewc/internal/diag"
	"viewc/internal/source"
	"viewc/internal/token"
)

// advance consumes the current token and remembers its span.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// diagSpan is the best place to report a missing token: the current token,
// or just past the last one at end of input.
func (p *Parser) diagSpan() source.Span {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return tok.Span
}

// expect consumes a token of kind k or reports code at the current position.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.report(code, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) reportf(code diag.Code, sp source.Span, format string, args ...any) {
	p.report(code, sp, fmt.Sprintf(format, args...))
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) {
	p.emit(code, sp, msg, nil)
}

func (p *Parser) emit(code diag.Code, sp source.Span, msg string, notes []diag.Note) {
	// After a fatal error the rest of the token stream is noise.
	if p.fatal || p.lx.Fatal() {
		return
	}
	p.errors++
	if p.opts.Reporter == nil {
		return
	}
	if p.opts.MaxErrors != 0 && p.errors > p.opts.MaxErrors {
		return
	}
	p.opts.Reporter.Report(code, diag.SevError, sp, msg, notes, nil)
}

// fatalf reports an unrecoverable error and stops the parse.
func (p *Parser) fatalf(code diag.Code, sp source.Span, format string, args ...any) {
	p.reportf(code, sp, format, args...)
	p.fatal = true
}

// describe names a token for messages.
func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.Ident:
		return fmt.Sprintf("identifier `%s`", tok.Text)
	case token.IntLit, token.FloatLit:
		return fmt.Sprintf("number `%s`", tok.Text)
	case token.StringLit:
		return "string literal"
	case token.Invalid:
		return fmt.Sprintf("character `%s`", tok.Text)
	}
	return fmt.Sprintf("`%s`", tok.Kind)
}

func isNodeStart(k token.Kind) bool {
	switch k {
	case token.Lt, token.LtSlash, token.LBrace, token.StringLit, token.EOF:
		return true
	}
	return false
}

// skipText consumes a run of tokens that cannot start a node.
func (p *Parser) skipText() {
	for !isNodeStart(p.peek().Kind) {
		p.advance()
	}
}

func closerFor(k token.Kind) token.Kind {
	switch k {
	case token.LParen:
		return token.RParen
	case token.LBracket:
		return token.RBracket
	}
	return token.RBrace
}

// expectClose consumes the delimiter closing open. Anything in between is
// reported once and skipped; reaching the end of input is fatal.
func (p *Parser) expectClose(open token.Token) bool {
	want := closerFor(open.Kind)
	if p.at(want) {
		p.advance()
		return true
	}
	if p.at(token.EOF) {
		p.unclosed(open, want)
		return false
	}
	p.reportf(diag.SynUnexpectedToken, p.peek().Span, "expected `%s`, found %s", want, describe(p.peek()))
	if p.skipBalanced(want) {
		p.advance()
		return true
	}
	p.unclosed(open, want)
	return false
}

func (p *Parser) unclosed(open token.Token, want token.Kind) {
	p.fatalf(diag.SynUnclosedDelimiter, open.Span, "unclosed delimiter: `%s` has no matching `%s`", open.Text, want)
}

// skipBalanced advances to the next want at nesting depth zero and reports
// whether it was found before the end of input.
func (p *Parser) skipBalanced(want token.Kind) bool {
	depth := 0
	for {
		k := p.peek().Kind
		switch {
		case k == token.EOF:
			return false
		case depth == 0 && k == want:
			return true
		case k == token.LParen || k == token.LBracket || k == token.LBrace:
			depth++
		case k == token.RParen || k == token.RBracket || k == token.RBrace:
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
}

// spanFrom covers start up to the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return start
	}
	return start.Cover(p.lastSpan)
}

// text returns the source text of sp.
func (p *Parser) text(sp source.Span) string {
	return string(p.file.Content[sp.Start:sp.End])
}
