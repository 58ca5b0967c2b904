// Package token defines the lexical tokens of view templates.
// Invariants:
//   - Token.Span covers exactly the source bytes of the token.
//   - Token.Text is the source text, except for identifiers, whose text is
//     NFC-normalized so that name lookups ignore Unicode composition.
//   - Hyphenated names (my-element, class:bg-green-400) are not single
//     tokens; the parser joins adjacent tokens whose spans touch.
package token
