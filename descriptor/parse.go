package descriptor

import (
	"strconv"
	"strings"

	"github.com/teranos/derivegen/errors"
)

// ParseType parses a type expression such as "Option<Vec<T::Value>>" or
// "<Vec<T> as IntoIterator>::Item".
func ParseType(src string) (*TypeExpr, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustParseType is ParseType for literals known to be valid; it panics on error.
func MustParseType(src string) *TypeExpr {
	t, err := ParseType(src)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseGenericParam parses one generic parameter declaration:
// "T", "T: Trait + 'a", "U = String", "'a: 'b", "const N: usize".
func ParseGenericParam(src string) (GenericParam, error) {
	p, err := newParser(src)
	if err != nil {
		return GenericParam{}, err
	}

	var gp GenericParam
	tok := p.peek()
	switch {
	case tok.Kind == TokLifetime:
		p.next()
		gp.Kind = LifetimeParam
		gp.Name = tok.Text
		if p.accept(":") {
			gp.Bounds = p.rawUntil("=")
		}

	case tok.Is("const"):
		p.next()
		gp.Kind = ConstParam
		name := p.next()
		if name.Kind != TokIdent {
			return GenericParam{}, p.errorf(name, "expected const parameter name")
		}
		gp.Name = name.Text
		if !p.accept(":") {
			return GenericParam{}, p.errorf(p.peek(), "expected ':' after const parameter %s", gp.Name)
		}
		gp.ConstType = p.rawUntil("=")
		if gp.ConstType == "" {
			return GenericParam{}, p.errorf(p.peek(), "expected type for const parameter %s", gp.Name)
		}

	case tok.Kind == TokIdent:
		p.next()
		gp.Kind = TypeParam
		gp.Name = tok.Text
		if p.accept(":") {
			gp.Bounds = p.rawUntil("=")
		}

	default:
		return GenericParam{}, p.errorf(tok, "expected generic parameter")
	}

	if p.accept("=") {
		gp.Default = p.rawUntil("")
		if gp.Default == "" {
			return GenericParam{}, p.errorf(p.peek(), "expected default after '='")
		}
	}
	if err := p.expectEOF(); err != nil {
		return GenericParam{}, err
	}
	return gp, nil
}

// Predicate is one where-clause predicate, "T::Value: Debug" or "'a: 'b".
type Predicate struct {
	// Exactly one of Type or Lifetime is set.
	Type     *TypeExpr
	Lifetime string
	Bounds   string
	// Raw is the predicate's source text with whitespace collapsed,
	// higher-ranked for<...> binders included.
	Raw string
}

// String renders the predicate in canonical spacing. Higher-ranked binders
// are only kept in Raw.
func (p Predicate) String() string {
	lhs := p.Lifetime
	if p.Type != nil {
		lhs = p.Type.String()
	}
	return lhs + ": " + p.Bounds
}

// ParsePredicates parses a comma-separated where-clause body. At least one
// predicate is required and every predicate needs a ':' and a bound.
func ParsePredicates(src string) ([]Predicate, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}

	var preds []Predicate
	for p.peek().Kind != TokEOF {
		var pred Predicate
		start := p.peek().Offset
		if tok := p.peek(); tok.Kind == TokLifetime {
			p.next()
			pred.Lifetime = tok.Text
		} else {
			if p.peek().Is("for") {
				p.next()
				if !p.accept("<") {
					return nil, p.errorf(p.peek(), "expected '<' after for")
				}
				p.skipBalanced("<", ">")
			}
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pred.Type = t
		}
		if !p.accept(":") {
			return nil, p.errorf(p.peek(), "expected ':' in predicate")
		}
		pred.Bounds = p.rawUntil(",")
		if pred.Bounds == "" {
			return nil, p.errorf(p.peek(), "expected bound after ':'")
		}
		pred.Raw = normalize(p.src[start:p.peek().Offset])
		preds = append(preds, pred)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return nil, errors.New("expected at least one predicate")
	}
	return preds, nil
}

type parser struct {
	src  string
	toks []Token
	pos  int
}

func newParser(src string) (*parser, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, errors.Wrapf(err, "lexing %q", src)
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekN(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != TokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(text string) bool {
	if p.peek().Is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return p.errorf(p.peek(), "expected %q", text)
	}
	return nil
}

func (p *parser) expectEOF() error {
	if tok := p.peek(); tok.Kind != TokEOF {
		return p.errorf(tok, "unexpected %q", tok.Text)
	}
	return nil
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) error {
	where := "end of input"
	if tok.Kind != TokEOF {
		where = "offset " + strconv.Itoa(tok.Offset)
	}
	return errors.Wrapf(errors.Newf(format, args...), "parsing %q at %s", p.src, where)
}

// rawUntil consumes tokens until a depth-0 stop token (or EOF) and returns the
// covered source text with whitespace collapsed. An empty stop means EOF only.
func (p *parser) rawUntil(stop string) string {
	start := p.peek().Offset
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == TokEOF {
			break
		}
		if depth == 0 && stop != "" && tok.Is(stop) {
			break
		}
		switch tok.Text {
		case "<", "(", "[", "{":
			if tok.Kind == TokPunct {
				depth++
			}
		case ">", ")", "]", "}":
			if tok.Kind == TokPunct && depth > 0 {
				depth--
			}
		}
		p.next()
	}
	return normalize(p.src[start:p.peek().Offset])
}

// skipBalanced consumes tokens up to and including the close that matches an
// already consumed open.
func (p *parser) skipBalanced(open, close string) {
	depth := 1
	for depth > 0 && p.peek().Kind != TokEOF {
		tok := p.next()
		switch {
		case tok.Is(open):
			depth++
		case tok.Is(close):
			depth--
		}
	}
}

func (p *parser) parseType() (*TypeExpr, error) {
	tok := p.peek()
	switch {
	case tok.Is("&"):
		p.next()
		t := &TypeExpr{Kind: KindRef}
		if lt := p.peek(); lt.Kind == TokLifetime {
			p.next()
			t.Lifetime = lt.Text
		}
		t.Mut = p.accept("mut")
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t.Elem = elem
		return t, nil

	case tok.Is("*"):
		p.next()
		t := &TypeExpr{Kind: KindPtr}
		switch {
		case p.accept("mut"):
			t.Mut = true
		case p.accept("const"):
		default:
			return nil, p.errorf(p.peek(), "expected const or mut after '*'")
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t.Elem = elem
		return t, nil

	case tok.Is("["):
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.accept(";") {
			n := p.rawUntil("]")
			if n == "" {
				return nil, p.errorf(p.peek(), "expected array length")
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			return &TypeExpr{Kind: KindArray, Elem: elem, Len: n}, nil
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return &TypeExpr{Kind: KindSlice, Elem: elem}, nil

	case tok.Is("("):
		p.next()
		var elems []*TypeExpr
		trailingComma := false
		for !p.peek().Is(")") {
			e, err := p.parseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			trailingComma = p.accept(",")
			if !trailingComma {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if len(elems) == 1 && !trailingComma {
			// Parenthesized type.
			return elems[0], nil
		}
		return &TypeExpr{Kind: KindTuple, Elems: elems}, nil

	case tok.Is("!"):
		p.next()
		return &TypeExpr{Kind: KindNever}, nil

	case tok.Is("_"), tok.Is("dyn"), tok.Is("impl"), tok.Is("fn"), tok.Is("unsafe"), tok.Is("extern"), tok.Is("for"):
		return p.parseRaw(), nil

	case tok.Is("<"), tok.Is("::"), tok.Kind == TokIdent:
		return p.parsePath()
	}
	return nil, p.errorf(tok, "expected type")
}

// parseRaw keeps types the classifier never inspects as normalized text.
func (p *parser) parseRaw() *TypeExpr {
	start := p.peek().Offset
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == TokEOF {
			break
		}
		if tok.Kind == TokPunct {
			if depth == 0 && (tok.Text == "," || tok.Text == ">" || tok.Text == ")" || tok.Text == "]" || tok.Text == ";" || tok.Text == "=" || tok.Text == ":") {
				break
			}
			switch tok.Text {
			case "<", "(", "[":
				depth++
			case ">", ")", "]":
				depth--
			}
		}
		p.next()
	}
	return &TypeExpr{Kind: KindRaw, Raw: normalize(p.src[start:p.peek().Offset])}
}

func (p *parser) parsePath() (*TypeExpr, error) {
	t := &TypeExpr{Kind: KindPath}

	if p.accept("<") {
		self, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t.QSelf = &QSelf{Type: self}
		if p.accept("as") {
			trait, err := p.parsePath()
			if err != nil {
				return nil, err
			}
			t.Global = trait.Global
			t.Segments = append(t.Segments, trait.Segments...)
			t.QSelf.Position = len(trait.Segments)
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		if err := p.expect("::"); err != nil {
			return nil, err
		}
	} else if p.accept("::") {
		t.Global = true
	}

	for {
		seg, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		t.Segments = append(t.Segments, seg)
		if !p.peek().Is("::") || p.peekN(1).Is("<") {
			break
		}
		p.next()
	}
	return t, nil
}

func (p *parser) parseSegment() (PathSegment, error) {
	tok := p.next()
	if tok.Kind != TokIdent {
		return PathSegment{}, p.errorf(tok, "expected identifier in path")
	}
	seg := PathSegment{Ident: tok.Text}

	// Turbofish spelling Vec::<T> is accepted and rendered as Vec<T>.
	if p.peek().Is("::") && p.peekN(1).Is("<") {
		p.next()
	}
	if !p.accept("<") {
		return seg, nil
	}
	for !p.peek().Is(">") {
		arg, err := p.parseGenericArg()
		if err != nil {
			return PathSegment{}, err
		}
		seg.Args = append(seg.Args, arg)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(">"); err != nil {
		return PathSegment{}, err
	}
	return seg, nil
}

func (p *parser) parseGenericArg() (GenericArg, error) {
	tok := p.peek()
	switch {
	case tok.Kind == TokLifetime:
		p.next()
		return GenericArg{Lifetime: tok.Text}, nil

	case tok.Kind == TokNumber, tok.Kind == TokString, tok.Is("true"), tok.Is("false"):
		p.next()
		return GenericArg{Const: tok.Text}, nil

	case tok.Is("-") && p.peekN(1).Kind == TokNumber:
		p.next()
		return GenericArg{Const: "-" + p.next().Text}, nil

	case tok.Is("{"):
		start := tok.Offset
		p.next()
		p.skipBalanced("{", "}")
		return GenericArg{Const: normalize(p.src[start:p.peek().Offset])}, nil

	case tok.Kind == TokIdent && p.peekN(1).Is("=") && !p.peekN(2).Is("="):
		p.next()
		p.next()
		t, err := p.parseType()
		if err != nil {
			return GenericArg{}, err
		}
		return GenericArg{Binding: tok.Text, Type: t}, nil
	}

	t, err := p.parseType()
	if err != nil {
		return GenericArg{}, err
	}
	return GenericArg{Type: t}, nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
