package types

import (
	"fmt"
	"regexp"
	"strings"

	"viewc/internal/lexer"
	"viewc/internal/source"
	"viewc/internal/token"
)

var lifetimeRe = regexp.MustCompile(`'[A-Za-z_][A-Za-z0-9_]*\s*,?\s*`)

// Parse reads a type written in host syntax, e.g. "MaybeSignal<String>" or
// "Fn(i32) -> bool".
func Parse(s string) (*Type, error) {
	return ParseIn(s, nil)
}

// ParseIn is Parse with a set of in-scope generic parameter names.
func ParseIn(s string, params []string) (*Type, error) {
	p, err := newTypeParser(s, params)
	if err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != token.EOF {
		return nil, p.errorf("unexpected %q after type", show(tok))
	}
	return t, nil
}

// ParseBounds reads a `+`-separated bound list such as "Into<String> + Clone".
func ParseBounds(s string, params []string) ([]*Type, error) {
	p, err := newTypeParser(s, params)
	if err != nil {
		return nil, err
	}
	var out []*Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.peek().Kind != token.Plus {
			break
		}
		p.next()
	}
	if tok := p.peek(); tok.Kind != token.EOF {
		return nil, p.errorf("unexpected %q in bound", show(tok))
	}
	return out, nil
}

type typeParser struct {
	src    string
	toks   []token.Token
	pos    int
	params map[string]bool
}

func newTypeParser(s string, params []string) (*typeParser, error) {
	src := strings.TrimSpace(lifetimeRe.ReplaceAllString(s, ""))
	if src == "" {
		return nil, fmt.Errorf("empty type")
	}
	file := &source.File{Path: "<type>", Content: []byte(src)}
	toks := lexer.Tokenize(file, lexer.Options{})
	for _, tok := range toks {
		if tok.Kind == token.Invalid {
			return nil, fmt.Errorf("invalid character %q in type %q", tok.Text, src)
		}
	}
	p := &typeParser{src: src, toks: toks, params: make(map[string]bool, len(params))}
	for _, name := range params {
		p.params[name] = true
	}
	return p, nil
}

func (p *typeParser) peek() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Kind: token.EOF}
}

func (p *typeParser) next() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *typeParser) eat(k token.Kind) bool {
	if p.peek().Kind == k {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(k token.Kind) error {
	if tok := p.peek(); tok.Kind != k {
		return p.errorf("expected %q, found %q", k.String(), show(tok))
	}
	p.pos++
	return nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q: %s", p.src, fmt.Sprintf(format, args...))
}

func show(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of type"
	}
	return tok.Text
}

func (p *typeParser) parseType() (*Type, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Bang:
		p.next()
		return Never, nil
	case token.Underscore:
		p.next()
		return Unknown, nil
	case token.Amp, token.AndAnd:
		p.next()
		if p.peek().Kind == token.Ident && p.peek().Text == "mut" {
			p.next()
		}
		if p.peek().Kind == token.Ident && p.peek().Text == "str" {
			p.next()
			return Str, nil
		}
		return p.parseType()
	case token.LParen:
		p.next()
		elems, err := p.parseList(token.RParen)
		if err != nil {
			return nil, err
		}
		return Tuple(elems...), nil
	case token.LBracket:
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.eat(token.Semicolon) {
			if n := p.next(); n.Kind != token.IntLit && n.Kind != token.Ident {
				return nil, p.errorf("expected array length, found %q", show(n))
			}
		}
		if err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
		return Vec(elem), nil
	case token.Ident:
		return p.parsePath()
	}
	return nil, p.errorf("expected type, found %q", show(tok))
}

func (p *typeParser) parseList(closer token.Kind) ([]*Type, error) {
	var out []*Type
	for !p.eat(closer) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.eat(closer) {
			break
		}
		if err := p.expect(token.Comma); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *typeParser) parsePath() (*Type, error) {
	name := p.next().Text
	switch name {
	case "impl", "dyn":
		return p.parseType()
	case "mut":
		return p.parseType()
	}
	for p.peek().Kind == token.ColonCol {
		p.next()
		seg := p.next()
		if seg.Kind != token.Ident {
			return nil, p.errorf("expected path segment, found %q", show(seg))
		}
		name = seg.Text
	}
	switch name {
	case "Fn", "FnMut", "FnOnce", "fn":
		return p.parseFnTail()
	}
	var args []*Type
	if p.eat(token.Lt) {
		var err error
		args, err = p.parseList(token.Gt)
		if err != nil {
			return nil, err
		}
	}
	return p.named(name, args)
}

func (p *typeParser) parseFnTail() (*Type, error) {
	if err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	params, err := p.parseList(token.RParen)
	if err != nil {
		return nil, err
	}
	ret := Unit
	if p.eat(token.Arrow) {
		if ret, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	return Fn(params, ret), nil
}

func (p *typeParser) named(name string, args []*Type) (*Type, error) {
	arg := func(want int) (*Type, error) {
		if len(args) != want {
			return nil, fmt.Errorf("type %q: %s takes %d type argument(s), got %d", p.src, name, want, len(args))
		}
		return args[0], nil
	}
	switch name {
	case "bool":
		return Bool, nil
	case "char":
		return Char, nil
	case "str":
		return Str, nil
	case "String":
		return String, nil
	case "i8", "i16", "i32", "i64", "i128", "isize", "u8", "u16", "u32", "u64", "u128", "usize":
		return Int(name), nil
	case "f32", "f64":
		return Float(name), nil
	case "Option":
		elem, err := arg(1)
		if err != nil {
			return nil, err
		}
		return Option(elem), nil
	case "Vec":
		elem, err := arg(1)
		if err != nil {
			return nil, err
		}
		return Vec(elem), nil
	case "Box", "Rc", "Arc", "Cow":
		return arg(1)
	case "Callback", "UnsyncCallback":
		if len(args) == 2 {
			return Fn(args[:1], args[1]), nil
		}
		elem, err := arg(1)
		if err != nil {
			return nil, err
		}
		return Fn([]*Type{elem}, Unit), nil
	case "MaybeSignal", "Signal", "ReadSignal", "RwSignal", "Memo", "ArcSignal":
		elem, err := arg(1)
		if err != nil {
			return nil, err
		}
		return Signal(name, elem), nil
	case "MaybeProp":
		elem, err := arg(1)
		if err != nil {
			return nil, err
		}
		return Signal(name, Option(elem)), nil
	case "Children", "ChildrenFn", "ChildrenFnMut", "View", "Fragment", "AnyView", "IntoView":
		return View(name), nil
	}
	if p.params[name] && len(args) == 0 {
		return Param(name), nil
	}
	return Named(name, args...), nil
}
