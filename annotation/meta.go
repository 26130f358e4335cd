package annotation

import (
	"strings"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
)

// MetaKind selects the form of a Meta item.
type MetaKind int

const (
	// MetaPath is a bare path: `builder`.
	MetaPath MetaKind = iota
	// MetaNameValue is `path = literal`.
	MetaNameValue
	// MetaList is `path(item, ...)`.
	MetaList
	// MetaLiteral is a bare literal inside a list.
	MetaLiteral
)

// Meta is one node of a parsed attribute payload.
type Meta struct {
	Kind MetaKind
	Path string
	// Value is the literal of a name-value or literal item.
	Value *Literal
	List  []*Meta
}

// Literal is a literal token. Only string literals carry directive values.
type Literal struct {
	Text   string
	Value  string
	String bool
}

// ParseMeta parses one attribute payload with the grammar
//
//	meta := path | path '=' literal | path '(' [meta {',' meta} [',']] ')'
func ParseMeta(raw string) (*Meta, error) {
	toks, err := descriptor.Lex(raw)
	if err != nil {
		return nil, err
	}
	p := &metaParser{toks: toks}
	m, err := p.meta()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != descriptor.TokEOF {
		return nil, errors.Newf("unexpected %q after attribute", tok.Text)
	}
	return m, nil
}

// AttrName returns the leading path of a payload without parsing the rest,
// so that payloads of foreign attributes never fail extraction.
func AttrName(raw string) string {
	toks, err := descriptor.Lex(raw)
	if err != nil {
		return ""
	}
	var parts []string
	for i := 0; i < len(toks) && toks[i].Kind == descriptor.TokIdent; i += 2 {
		parts = append(parts, toks[i].Text)
		if i+1 >= len(toks) || !toks[i+1].Is("::") {
			break
		}
	}
	return strings.Join(parts, "::")
}

type metaParser struct {
	toks []descriptor.Token
	pos  int
}

func (p *metaParser) peek() descriptor.Token { return p.toks[p.pos] }

func (p *metaParser) next() descriptor.Token {
	tok := p.toks[p.pos]
	if tok.Kind != descriptor.TokEOF {
		p.pos++
	}
	return tok
}

func (p *metaParser) meta() (*Meta, error) {
	if lit, ok := p.literal(); ok {
		return &Meta{Kind: MetaLiteral, Value: lit}, nil
	}

	path, err := p.path()
	if err != nil {
		return nil, err
	}
	m := &Meta{Kind: MetaPath, Path: path}

	switch {
	case p.peek().Is("="):
		p.next()
		lit, ok := p.literal()
		if !ok {
			return nil, errors.Newf("expected literal after `%s =`", path)
		}
		m.Kind = MetaNameValue
		m.Value = lit

	case p.peek().Is("("):
		p.next()
		m.Kind = MetaList
		for !p.peek().Is(")") {
			item, err := p.meta()
			if err != nil {
				return nil, err
			}
			m.List = append(m.List, item)
			if !p.peek().Is(",") {
				break
			}
			p.next()
		}
		if !p.peek().Is(")") {
			return nil, errors.Newf("expected `)` to close `%s(`", path)
		}
		p.next()
	}
	return m, nil
}

func (p *metaParser) path() (string, error) {
	tok := p.next()
	if tok.Kind != descriptor.TokIdent {
		if tok.Kind == descriptor.TokEOF {
			return "", errors.New("expected attribute path, found end of input")
		}
		return "", errors.Newf("expected attribute path, found %q", tok.Text)
	}
	parts := []string{tok.Text}
	for p.peek().Is("::") {
		p.next()
		seg := p.next()
		if seg.Kind != descriptor.TokIdent {
			return "", errors.Newf("expected identifier after `::`, found %q", seg.Text)
		}
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, "::"), nil
}

func (p *metaParser) literal() (*Literal, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == descriptor.TokString:
		p.next()
		return &Literal{Text: tok.Text, Value: tok.Value, String: true}, true
	case tok.Kind == descriptor.TokNumber, tok.Is("true"), tok.Is("false"):
		p.next()
		return &Literal{Text: tok.Text, Value: tok.Text}, true
	case tok.Is("-") && p.toks[p.pos+1].Kind == descriptor.TokNumber:
		p.next()
		num := p.next()
		return &Literal{Text: "-" + num.Text, Value: "-" + num.Text}, true
	}
	return nil, false
}
