package lexer

import (
	"viewc/internal/diag"
	"viewc/internal/source"
)

type Options struct {
	// Reporter may be nil; errors are then dropped but lexing continues.
	Reporter diag.Reporter
	// Range confines lexing to one invocation body. Zero means the whole file.
	Range source.Span
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	lx.errors++
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}

// errFatal reports an error after which the token stream cannot be trusted.
func (lx *Lexer) errFatal(code diag.Code, sp source.Span, msg string) {
	lx.fatal = true
	lx.errLex(code, sp, msg)
}
