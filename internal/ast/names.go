package ast

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsElementName reports whether a tag name denotes an element rather than a
// component: lowercase first letter, or any hyphen (custom elements). A
// `::` path always names a component.
func IsElementName(name string) bool {
	if strings.Contains(name, "::") {
		return false
	}
	if strings.Contains(name, "-") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLower(r)
}

// SnakeCase converts a tag name to its slot field name: `ElseIf` -> `else_if`.
func SnakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	prevLower := false
	for _, r := range name {
		if unicode.IsUpper(r) {
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return b.String()
}

// BaseName strips a leading path from a tag name: `ui::Button` -> `Button`.
func BaseName(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}
