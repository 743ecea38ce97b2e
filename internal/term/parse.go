package term

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a single term literal.
//
// Accepted syntax:
//
//	:cpu  :"cuda:1"  nil  true  false
//	42  -7  3.5  1.0e-3
//	"binary"
//	{1, 2}  [1, [2, 3]]
//	%ExTorch.Index.Slice{start: 0, stop: 2, step: 1, mask: 7}
func Parse(src string) (Term, error) {
	p := &parser{src: src}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(src string) Term {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("term: parse error at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) term() (Term, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == ':':
		p.pos++
		return p.atom()
	case c == '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return Binary(s), nil
	case c == '{':
		p.pos++
		items, err := p.seq('}')
		if err != nil {
			return nil, err
		}
		return Tuple(items), nil
	case c == '[':
		p.pos++
		items, err := p.seq(']')
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case c == '%':
		p.pos++
		return p.structLit()
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.number()
	case isIdentStart(c):
		ident := p.ident()
		switch Atom(ident) {
		case Nil, True, False:
			return Atom(ident), nil
		}
		return nil, p.errorf("bare identifier %q (atoms need a leading ':')", ident)
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) atom() (Term, error) {
	if p.peek() == '"' {
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return Atom(s), nil
	}
	ident := p.ident()
	if ident == "" {
		return nil, p.errorf("empty atom")
	}
	return Atom(ident), nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isIdentStart(c) || (c >= '0' && c <= '9') || c == '?' || c == '!' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *parser) moduleName() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isIdentStart(c) || (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			s, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return "", p.errorf("bad string literal: %v", err)
			}
			return s, nil
		default:
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) seq(closer byte) ([]Term, error) {
	items := []Term{}
	p.skipSpace()
	if p.peek() == closer {
		p.pos++
		return items, nil
	}
	for {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return items, nil
		default:
			return nil, p.errorf("expected ',' or %q", closer)
		}
	}
}

func (p *parser) structLit() (Term, error) {
	module := p.moduleName()
	if module == "" {
		return nil, p.errorf("missing struct module name")
	}
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	var fields []Field
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return NewStruct(module), nil
	}
	for {
		p.skipSpace()
		key := p.ident()
		if key == "" {
			return nil, p.errorf("expected field name")
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		value, err := p.term()
		if err != nil {
			return nil, err
		}
		fields = append(fields, F(key, value))
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return NewStruct(module, fields...), nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *parser) number() (Term, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for ; p.pos < len(p.src); p.pos++ {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			continue
		}
		prev := p.src[p.pos-1]
		if (c == '-' || c == '+') && (prev == 'e' || prev == 'E') {
			continue
		}
		break
	}
	lit := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, p.errorf("bad float %q", lit)
		}
		return Float(f), nil
	}
	b, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return nil, p.errorf("bad integer %q", lit)
	}
	return Int{v: b}, nil
}
