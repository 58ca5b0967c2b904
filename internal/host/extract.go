package host

import (
	"fmt"

	"fortio.org/safecast"

	"viewc/internal/diag"
	"viewc/internal/source"
)

// Invocation is one `view!` call. Span covers `view!{...}`, Body the text
// between the delimiters.
type Invocation struct {
	Span source.Span
	Body source.Span
	// Open is the opening delimiter byte, or 0 for a bare body.
	Open byte
}

// Bare reports whether the invocation is a whole file without `view!`.
func (inv Invocation) Bare() bool { return inv.Open == 0 }

const macroName = "view"

// Extract returns the invocations of file in source order. Strings, char
// literals and comments are skipped while matching delimiters. An
// invocation whose delimiter is never closed is reported and dropped.
func Extract(file *source.File, r diag.Reporter) []Invocation {
	s := scanner{src: file.Content, file: file.ID}
	var out []Invocation
	found := false
	for s.pos < len(s.src) {
		if s.skipTrivia() {
			continue
		}
		start := s.pos
		if !s.atMacro() {
			s.pos++
			continue
		}
		found = true
		open := s.src[s.pos]
		s.pos++
		end, ok := s.matchClose(open)
		if !ok {
			if r != nil {
				diag.ReportError(r, diag.SynUnclosedDelimiter, s.span(s.pos-1, s.pos),
					fmt.Sprintf("`%s!` invocation is never closed: missing `%c`", macroName, closerOf(open))).
					Emit()
			}
			return out
		}
		out = append(out, Invocation{
			Span: s.span(start, end+1),
			Body: s.span(s.posAfter(start), end),
			Open: open,
		})
		s.pos = end + 1
	}
	if !found {
		out = append(out, Invocation{Span: file.Span(), Body: file.Span()})
	}
	return out
}

type scanner struct {
	src  []byte
	pos  int
	file source.FileID
}

func (s *scanner) span(start, end int) source.Span {
	st, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("invocation offset overflow: %w", err))
	}
	en, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("invocation offset overflow: %w", err))
	}
	return source.Span{File: s.file, Start: st, End: en}
}

// posAfter returns the offset just past the opening delimiter of the
// invocation starting at start.
func (s *scanner) posAfter(start int) int {
	i := start + len(macroName)
	for i < len(s.src) && s.src[i] != '{' && s.src[i] != '(' && s.src[i] != '[' {
		i++
	}
	return i + 1
}

// atMacro checks for `view` `!` and an opening delimiter, allowing
// whitespace in between. On success pos is left on the delimiter.
func (s *scanner) atMacro() bool {
	i := s.pos
	if i > 0 && isIdentByte(s.src[i-1]) {
		return false
	}
	if len(s.src)-i < len(macroName) || string(s.src[i:i+len(macroName)]) != macroName {
		return false
	}
	i += len(macroName)
	i = skipSpace(s.src, i)
	if i >= len(s.src) || s.src[i] != '!' {
		return false
	}
	i = skipSpace(s.src, i+1)
	if i >= len(s.src) {
		return false
	}
	switch s.src[i] {
	case '{', '(', '[':
		s.pos = i
		return true
	}
	return false
}

// matchClose scans forward from pos for the delimiter closing open and
// returns its offset.
func (s *scanner) matchClose(open byte) (int, bool) {
	stack := []byte{closerOf(open)}
	for s.pos < len(s.src) {
		if s.skipTrivia() {
			continue
		}
		switch c := s.src[s.pos]; c {
		case '{', '(', '[':
			stack = append(stack, closerOf(c))
		case '}', ')', ']':
			if stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return s.pos, true
				}
			}
		}
		s.pos++
	}
	return 0, false
}

// skipTrivia steps over a comment, string or char literal at pos.
func (s *scanner) skipTrivia() bool {
	src, i := s.src, s.pos
	if i >= len(src) {
		return false
	}
	switch src[i] {
	case '/':
		if i+1 < len(src) && src[i+1] == '/' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			s.pos = i
			return true
		}
		if i+1 < len(src) && src[i+1] == '*' {
			s.pos = skipBlockComment(src, i)
			return true
		}
	case '"':
		s.pos = skipString(src, i+1)
		return true
	case 'r':
		if i > 0 && isIdentByte(src[i-1]) {
			return false
		}
		if j, ok := skipRawString(src, i+1); ok {
			s.pos = j
			return true
		}
	case '\'':
		s.pos = skipChar(src, i)
		return true
	}
	return false
}

func skipBlockComment(src []byte, i int) int {
	depth := 0
	for i+1 < len(src) {
		switch {
		case src[i] == '/' && src[i+1] == '*':
			depth++
			i += 2
		case src[i] == '*' && src[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(src)
}

func skipString(src []byte, i int) int {
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1
		}
		i++
	}
	return len(src)
}

// skipRawString handles r"..." and r#"..."#; i points after the `r`.
func skipRawString(src []byte, i int) (int, bool) {
	hashes := 0
	for i < len(src) && src[i] == '#' {
		hashes++
		i++
	}
	if i >= len(src) || src[i] != '"' {
		return 0, false
	}
	i++
	for i < len(src) {
		if src[i] == '"' {
			j := i + 1
			n := 0
			for j < len(src) && src[j] == '#' && n < hashes {
				n++
				j++
			}
			if n == hashes {
				return j, true
			}
		}
		i++
	}
	return len(src), true
}

// skipChar steps over 'x' or '\n'. A lone quote is a lifetime and only the
// quote itself is skipped.
func skipChar(src []byte, i int) int {
	j := i + 1
	if j < len(src) && src[j] == '\\' {
		for k := j + 1; k < len(src) && k < j+12; k++ {
			if src[k] == '\'' {
				return k + 1
			}
		}
		return i + 1
	}
	for k := j + 1; k < len(src) && k <= j+4; k++ {
		if src[k] == '\'' {
			return k + 1
		}
	}
	return i + 1
}

func skipSpace(src []byte, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func closerOf(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}
