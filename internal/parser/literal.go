package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// unquote decodes a string or char literal as written in the source:
// "..." with escapes, r"..." and r#"..."# raw strings, and '.' chars.
// Malformed escapes are kept verbatim; the lexer has already reported them.
func unquote(raw string) string {
	if strings.HasPrefix(raw, "r") {
		s := strings.TrimPrefix(raw, "r")
		hashes := len(s) - len(strings.TrimLeft(s, "#"))
		s = s[hashes:]
		s = strings.TrimSuffix(s, strings.Repeat("#", hashes))
		s = strings.TrimPrefix(s, `"`)
		return strings.TrimSuffix(s, `"`)
	}
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(body[i])
		case '\n':
			// Line continuation: skip the newline and leading whitespace.
			for i+1 < len(body) && strings.IndexByte(" \t\r\n", body[i+1]) >= 0 {
				i++
			}
		case 'u':
			end := strings.IndexByte(body[i:], '}')
			if i+1 < len(body) && body[i+1] == '{' && end > 0 {
				if v, err := strconv.ParseUint(body[i+2:i+end], 16, 32); err == nil && utf8.ValidRune(rune(v)) {
					b.WriteRune(rune(v))
					i += end
					continue
				}
			}
			b.WriteString(`\u`)
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
