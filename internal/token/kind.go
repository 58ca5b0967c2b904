package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the invocation body.
	EOF

	// Ident is an identifier (tag names, attribute keys, paths).
	Ident
	// KwMove is the closure capture keyword.
	KwMove // move
	// KwTrue is the boolean literal true.
	KwTrue // true
	// KwFalse is the boolean literal false.
	KwFalse // false

	// IntLit is an integer literal, suffix included.
	IntLit
	// FloatLit is a float literal, suffix included.
	FloatLit
	// StringLit is a quoted or raw string literal, quotes included.
	StringLit
	// CharLit is a character literal, quotes included.
	CharLit

	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Assign    // =
	EqEq      // ==
	Bang      // !
	BangEq    // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	Amp       // &
	AndAnd    // &&
	Pipe      // |
	OrOr      // ||
	Question  // ?
	Colon     // :
	ColonCol  // ::
	Semicolon // ;
	Comma     // ,
	Dot       // .
	DotDot    // ..
	Arrow     // ->
	FatArrow  // =>
	Hash      // #
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	// LtSlash opens a closing tag.
	LtSlash // </
	// SlashGt ends a self-closing tag.
	SlashGt // />
	// Underscore is a lone _ (wildcard closure parameter).
	Underscore // _
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Ident:      "Ident",
	KwMove:     "move",
	KwTrue:     "true",
	KwFalse:    "false",
	IntLit:     "IntLit",
	FloatLit:   "FloatLit",
	StringLit:  "StringLit",
	CharLit:    "CharLit",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	Assign:     "=",
	EqEq:       "==",
	Bang:       "!",
	BangEq:     "!=",
	Lt:         "<",
	LtEq:       "<=",
	Gt:         ">",
	GtEq:       ">=",
	Amp:        "&",
	AndAnd:     "&&",
	Pipe:       "|",
	OrOr:       "||",
	Question:   "?",
	Colon:      ":",
	ColonCol:   "::",
	Semicolon:  ";",
	Comma:      ",",
	Dot:        ".",
	DotDot:     "..",
	Arrow:      "->",
	FatArrow:   "=>",
	Hash:       "#",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	LtSlash:    "</",
	SlashGt:    "/>",
	Underscore: "_",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
