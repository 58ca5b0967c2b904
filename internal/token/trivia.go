package token

import "viewc/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
