package embedded

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// parseLiteral parses a JavaScript object/array/value literal into Go
// values. It accepts the JSON grammar extended with what Amazon's inline
// data blobs actually contain: single-quoted strings, bare identifier
// keys, `undefined`, and trailing commas. It never evaluates anything;
// an expression where a value is expected is a parse error.
func parseLiteral(src string) (any, error) {
	p := &literalParser{src: src}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("trailing input at offset %d", p.pos)
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		break
	}
}

func (p *literalParser) parseValue() (any, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errf("unexpected end of input")
	}
	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"' || c == '\'':
		return p.parseString(c)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseWord()
	}
}

func (p *literalParser) parseObject() (map[string]any, error) {
	p.pos++ // consume {
	obj := make(map[string]any)
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errf("unterminated object")
		}
		if c == '}' {
			p.pos++
			return obj, nil
		}
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if c, ok := p.peek(); !ok || c != ':' {
			return nil, p.errf("expected ':' after key %q", key)
		}
		p.pos++
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = val
		p.skipSpace()
		c, ok = p.peek()
		if !ok {
			return nil, p.errf("unterminated object")
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == '}' {
			p.pos++
			return obj, nil
		}
		return nil, p.errf("expected ',' or '}' in object")
	}
}

func (p *literalParser) parseArray() ([]any, error) {
	p.pos++ // consume [
	arr := make([]any, 0)
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errf("unterminated array")
		}
		if c == ']' {
			p.pos++
			return arr, nil
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
		p.skipSpace()
		c, ok = p.peek()
		if !ok {
			return nil, p.errf("unterminated array")
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == ']' {
			p.pos++
			return arr, nil
		}
		return nil, p.errf("expected ',' or ']' in array")
	}
}

// parseKey accepts quoted strings and bare identifiers.
func (p *literalParser) parseKey() (string, error) {
	c, ok := p.peek()
	if !ok {
		return "", p.errf("unexpected end of input in key")
	}
	if c == '"' || c == '\'' {
		return p.parseString(c)
	}
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.errf("expected object key")
	}
	return p.src[start:p.pos], nil
}

func (p *literalParser) parseString(quote byte) (string, error) {
	p.pos++ // consume opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errf("unterminated escape")
			}
			esc := p.src[p.pos]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", p.errf("truncated unicode escape")
				}
				code, err := strconv.ParseUint(p.src[p.pos+1:p.pos+5], 16, 32)
				if err != nil {
					return "", p.errf("bad unicode escape")
				}
				b.WriteRune(rune(code))
				p.pos += 4
			default:
				b.WriteByte(esc)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errf("unterminated string")
}

func (p *literalParser) parseNumber() (float64, error) {
	start := p.pos
	if c, _ := p.peek(); c == '-' {
		p.pos++
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errf("bad number %q", p.src[start:p.pos])
	}
	return v, nil
}

// parseWord handles the bare literals true, false, null, undefined.
// Anything else is code, which this parser deliberately refuses.
func (p *literalParser) parseWord() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			p.pos++
			continue
		}
		break
	}
	switch word := p.src[start:p.pos]; word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	default:
		p.pos = start
		return nil, p.errf("unexpected token %q", word)
	}
}
