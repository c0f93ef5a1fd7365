package metadata

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseType parses a type string such as "ArrayCollection<Acme\Comment>" or
// "DateTime<'Y-m-d'>" into a descriptor. Quoted parameters become leaf
// descriptors whose Name holds the unquoted literal.
func ParseType(raw string) (Type, error) {
	p := &typeParser{input: []rune(strings.TrimSpace(raw))}
	if len(p.input) == 0 {
		return Type{}, fmt.Errorf("metadata: parse type: empty input: %w", ErrInvalidType)
	}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return Type{}, p.errorf("unexpected %q", p.peek())
	}
	return t, nil
}

// MustParseType panics when raw cannot be parsed. Intended for fixtures.
func MustParseType(raw string) Type {
	t, err := ParseType(raw)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	input []rune
	pos   int
}

func (p *typeParser) parseType() (Type, error) {
	p.skipSpace()
	name := p.ident()
	if name == "" {
		if p.eof() {
			return Type{}, p.errorf("expected type name")
		}
		return Type{}, p.errorf("expected type name, got %q", p.peek())
	}

	out := NewType(name)
	p.skipSpace()
	if p.eof() || p.peek() != '<' {
		return out, nil
	}
	p.pos++

	for {
		param, err := p.parseParam()
		if err != nil {
			return Type{}, err
		}
		out.Params = append(out.Params, param)

		p.skipSpace()
		if p.eof() {
			return Type{}, p.errorf("unterminated parameter list for %q", name)
		}
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return out, nil
		default:
			return Type{}, p.errorf("unexpected %q in parameter list", p.peek())
		}
	}
}

func (p *typeParser) parseParam() (Type, error) {
	p.skipSpace()
	if p.eof() {
		return Type{}, p.errorf("expected parameter")
	}
	if quote := p.peek(); quote == '\'' || quote == '"' {
		literal, err := p.quoted(quote)
		if err != nil {
			return Type{}, err
		}
		return NewType(literal), nil
	}
	return p.parseType()
}

func (p *typeParser) quoted(quote rune) (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for !p.eof() {
		r := p.peek()
		p.pos++
		switch {
		case r == '\\' && !p.eof() && p.peek() == quote:
			b.WriteRune(quote)
			p.pos++
		case r == quote:
			return b.String(), nil
		default:
			b.WriteRune(r)
		}
	}
	p.pos = start
	return "", p.errorf("unterminated string literal")
}

func (p *typeParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentRune(p.peek()) {
		p.pos++
	}
	return string(p.input[start:p.pos])
}

func (p *typeParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

func (p *typeParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *typeParser) peek() rune {
	return p.input[p.pos]
}

func (p *typeParser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("metadata: parse type %q at %d: %s: %w", string(p.input), p.pos, msg, ErrInvalidType)
}

func isIdentRune(r rune) bool {
	switch r {
	case '_', '\\', '.', '/', '-':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
