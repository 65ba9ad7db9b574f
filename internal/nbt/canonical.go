package nbt

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCanonical decodes the output of Compound.Canonical. Every value comes
// back with its original type, including byte strings and integers beyond
// float64 precision, so ParseCanonical(c.Canonical()).Canonical() equals
// c.Canonical().
func ParseCanonical(s string) (Compound, error) {
	p := &canonicalParser{src: s}
	c, err := p.compound()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data")
	}
	return c, nil
}

type canonicalParser struct {
	src string
	pos int
}

func (p *canonicalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("canonical compound at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *canonicalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *canonicalParser) expect(ch byte) error {
	if p.peek() != ch {
		return p.errorf("expected %q", ch)
	}
	p.pos++
	return nil
}

func (p *canonicalParser) quoted() (string, error) {
	q, err := strconv.QuotedPrefix(p.src[p.pos:])
	if err != nil {
		return "", p.errorf("bad quoted string")
	}
	p.pos += len(q)
	return strconv.Unquote(q)
}

func (p *canonicalParser) compound() (Compound, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	c := New()
	if p.peek() == '}' {
		p.pos++
		return c, nil
	}
	for {
		key, err := p.quoted()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		c[key] = v
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return c, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *canonicalParser) list() (List, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	l := List{}
	if p.peek() == ']' {
		p.pos++
		return l, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		l = append(l, v)
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return l, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

// scalar returns the text up to the next delimiter.
func (p *canonicalParser) scalar() string {
	end := strings.IndexAny(p.src[p.pos:], ",]}")
	if end < 0 {
		end = len(p.src) - p.pos
	}
	tok := p.src[p.pos : p.pos+end]
	p.pos += end
	return tok
}

func (p *canonicalParser) value() (any, error) {
	switch p.peek() {
	case '{':
		return p.compound()
	case '[':
		return p.list()
	}

	tag := p.peek()
	p.pos++
	switch tag {
	case 's':
		return p.quoted()
	case 'x':
		str, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return []byte(str), nil
	case 'i':
		n, err := strconv.Atoi(p.scalar())
		if err != nil {
			return nil, p.errorf("bad int: %v", err)
		}
		return n, nil
	case 'f':
		f, err := strconv.ParseFloat(p.scalar(), 64)
		if err != nil {
			return nil, p.errorf("bad float: %v", err)
		}
		return f, nil
	case 'b':
		switch p.scalar() {
		case "T":
			return true, nil
		case "F":
			return false, nil
		}
		return nil, p.errorf("bad bool")
	default:
		return nil, p.errorf("unknown value tag %q", tag)
	}
}
