package token

// Only a handful of words are reserved inside templates. Words such as
// let, slot, use, on and class stay identifiers because they double as
// attribute prefixes.
var keywords = map[string]Kind{
	"move":  KwMove,
	"true":  KwTrue,
	"false": KwFalse,
}

// LookupKeyword reports whether ident is a reserved word (case-sensitive).
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
