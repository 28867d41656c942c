package fbx

import (
	"fmt"
	"strconv"
)

// parseASCII reads an ascii FBX file into a raw record tree.
func parseASCII(data []byte) (*Record, error) {
	p := &asciiParser{data: data}
	children, err := p.parseList(true)
	if err != nil {
		return nil, err
	}
	return &Record{Children: children}, nil
}

type asciiParser struct {
	data []byte
	pos  int
}

func (p *asciiParser) eof() bool {
	return p.pos >= len(p.data)
}

func (p *asciiParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.data[p.pos]
}

// skipWS skips spaces, tabs, carriage returns and ";" comments. Newlines
// are only consumed when newlines is true; attribute lists end at a bare
// newline.
func (p *asciiParser) skipWS(newlines bool) {
	for !p.eof() {
		c := p.data[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '\n' && newlines:
			p.pos++
		case c == ';':
			for !p.eof() && p.data[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// parseList reads records until the closing brace (top=false) or EOF
// (top=true).
func (p *asciiParser) parseList(top bool) ([]*Record, error) {
	var out []*Record
	for {
		p.skipWS(true)
		if p.eof() {
			if top {
				return out, nil
			}
			return nil, fmt.Errorf("%w: unterminated block", ErrCorruptRecord)
		}
		if p.peek() == '}' {
			if top {
				return nil, fmt.Errorf("%w: unexpected closing brace", ErrCorruptRecord)
			}
			p.pos++
			return out, nil
		}
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func (p *asciiParser) parseRecord() (*Record, error) {
	name := p.readIdent()
	if name == "" {
		return nil, fmt.Errorf("%w: expected record name at offset %d", ErrCorruptRecord, p.pos)
	}
	p.skipWS(false)
	if p.peek() != ':' {
		return nil, fmt.Errorf("%w: expected ':' after %q", ErrCorruptRecord, name)
	}
	p.pos++

	rec := &Record{Name: name}
	for {
		p.skipWS(false)
		if p.eof() {
			return rec, nil
		}
		switch c := p.peek(); {
		case c == '\n':
			p.pos++
			return rec, nil
		case c == '}':
			return rec, nil
		case c == '{':
			p.pos++
			children, err := p.parseList(false)
			if err != nil {
				return nil, err
			}
			rec.Children = children
			return rec, nil
		case c == ',':
			p.pos++
		case c == '"':
			s, err := p.readString()
			if err != nil {
				return nil, err
			}
			rec.Attrs = append(rec.Attrs, s)
		case c == '*':
			arr, err := p.readArray()
			if err != nil {
				return nil, err
			}
			rec.Attrs = append(rec.Attrs, arr)
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			num, err := p.readNumber()
			if err != nil {
				return nil, err
			}
			rec.Attrs = append(rec.Attrs, num)
		default:
			// Bare word value such as Y or CullingOff.
			word := p.readIdent()
			if word == "" {
				return nil, fmt.Errorf("%w: unexpected character %q", ErrCorruptRecord, c)
			}
			rec.Attrs = append(rec.Attrs, word)
		}
	}
}

// readIdent consumes [A-Za-z0-9_|] characters.
func (p *asciiParser) readIdent() string {
	start := p.pos
	for !p.eof() {
		c := p.data[p.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '|' {
			p.pos++
			continue
		}
		break
	}
	return string(p.data[start:p.pos])
}

// readString consumes a double-quoted string. FBX ascii strings have no
// escape sequences.
func (p *asciiParser) readString() (string, error) {
	p.pos++ // opening quote
	start := p.pos
	for !p.eof() && p.data[p.pos] != '"' {
		p.pos++
	}
	if p.eof() {
		return "", fmt.Errorf("%w: unterminated string", ErrCorruptRecord)
	}
	s := string(p.data[start:p.pos])
	p.pos++
	return s, nil
}

// readNumber consumes one numeric token, yielding int64 when the token has
// no fractional or exponent part.
func (p *asciiParser) readNumber() (any, error) {
	start := p.pos
	isFloat := false
	for !p.eof() {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' || c == '-' || c == '+' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			p.pos++
			continue
		}
		break
	}
	tok := string(p.data[start:p.pos])
	if !isFloat {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad number %q", ErrCorruptRecord, tok)
	}
	return f, nil
}

// readArray consumes the "*N { a: v,v,v }" array form into []float64.
func (p *asciiParser) readArray() ([]float64, error) {
	p.pos++ // '*'
	countTok, err := p.readNumber()
	if err != nil {
		return nil, err
	}
	count, ok := countTok.(int64)
	if !ok || count < 0 {
		return nil, fmt.Errorf("%w: bad array count", ErrCorruptRecord)
	}

	p.skipWS(true)
	if p.peek() != '{' {
		return nil, fmt.Errorf("%w: expected '{' after array count", ErrCorruptRecord)
	}
	p.pos++
	p.skipWS(true)
	if ident := p.readIdent(); ident != "a" {
		return nil, fmt.Errorf("%w: expected 'a:' in array block, got %q", ErrCorruptRecord, ident)
	}
	p.skipWS(true)
	if p.peek() != ':' {
		return nil, fmt.Errorf("%w: expected ':' in array block", ErrCorruptRecord)
	}
	p.pos++

	out := make([]float64, 0, count)
	for {
		p.skipWS(true)
		if p.eof() {
			return nil, fmt.Errorf("%w: unterminated array", ErrCorruptRecord)
		}
		c := p.peek()
		if c == '}' {
			p.pos++
			break
		}
		if c == ',' {
			p.pos++
			continue
		}
		num, err := p.readNumber()
		if err != nil {
			return nil, err
		}
		switch n := num.(type) {
		case int64:
			out = append(out, float64(n))
		case float64:
			out = append(out, n)
		}
	}
	// The declared count is advisory; the parsed values win.
	return out, nil
}
