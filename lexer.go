package arenajson

import "unsafe"

// Lexer tokenizes a JSON byte stream, unescaping string lexemes into an
// output arena as it goes (the "x_json" variant: strings are owned
// copies, safe to outlive the source buffer). Use Scanner when strings
// should instead borrow slices of the source buffer.
type Lexer struct {
	data []byte
	pos  int
	line int
	out  *Arena

	lookahead    Lexeme
	hasLookahead bool
	err          error
}

// NewLexer returns a Lexer over data, writing unescaped strings into
// out. out must outlive every Lexeme the Lexer produces.
func NewLexer(data []byte, out *Arena) *Lexer {
	return NewLexerAt(data, out, 1)
}

// NewLexerAt is like NewLexer but seeds the starting line number,
// used to re-lex a sub-slice of a larger document (see decodeArrayPtr)
// while keeping error messages numbered against the original source.
func NewLexerAt(data []byte, out *Arena, startLine int) *Lexer {
	return &Lexer{data: data, line: startLine, out: out}
}

func (l *Lexer) Line() int   { return l.line }
func (l *Lexer) Err() error  { return l.err }
func (l *Lexer) Pos() int    { return l.pos }

func (l *Lexer) Peek() Lexeme {
	if !l.hasLookahead {
		l.lookahead = l.fetch()
		l.hasLookahead = true
	}
	return l.lookahead
}

func (l *Lexer) Next() Lexeme {
	lex := l.Peek()
	l.hasLookahead = false
	return lex
}

func (l *Lexer) Skip() { l.Next() }

// Expect consumes the next lexeme unconditionally and reports whether
// it matched k, mirroring the original JsonLexerExpect: the caller is
// always past the token afterward, matched or not.
func (l *Lexer) Expect(k Kind) (Lexeme, bool) {
	lex := l.Next()
	return lex, lex.Kind == k
}

func (l *Lexer) errorf(format string, args ...interface{}) Lexeme {
	l.err = lexErrorf(l.line, format, args...)
	return Lexeme{Kind: KError}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case '\n':
			l.line++
			l.pos++
		case ' ', '\t', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) fetch() Lexeme {
	if l.err != nil {
		return Lexeme{Kind: KError}
	}
	l.skipWhitespace()
	if l.pos >= len(l.data) {
		return Lexeme{Kind: KEOF}
	}
	c := l.data[l.pos]
	switch {
	case c == '-' || isDigit(c):
		return l.lexNumber()
	case c == '"':
		return l.lexString()
	case c == '{':
		l.pos++
		return Lexeme{Kind: KBeginObject}
	case c == '}':
		l.pos++
		return Lexeme{Kind: KEndObject}
	case c == '[':
		l.pos++
		return Lexeme{Kind: KBeginArray}
	case c == ']':
		l.pos++
		return Lexeme{Kind: KEndArray}
	case c == ',':
		l.pos++
		return Lexeme{Kind: KValueSeparator}
	case c == ':':
		l.pos++
		return Lexeme{Kind: KNameSeparator}
	case isAlpha(c):
		return l.lexLiteral()
	default:
		return l.errorf("unexpected character in json")
	}
}

func (l *Lexer) lexNumber() Lexeme {
	consumed, num, ok := parseNumber(l.data[l.pos:])
	if !ok {
		return l.errorf("bad number")
	}
	l.pos += consumed
	return Lexeme{Kind: KNumber, Num: num}
}

func (l *Lexer) lexLiteral() Lexeme {
	start := l.pos
	for l.pos < len(l.data) && isAlpha(l.data[l.pos]) {
		l.pos++
	}
	switch string(l.data[start:l.pos]) {
	case "true":
		return Lexeme{Kind: KBoolean, Bool: true}
	case "false":
		return Lexeme{Kind: KBoolean, Bool: false}
	case "null":
		return Lexeme{Kind: KNull}
	}
	return l.errorf("invalid literal, expected one of false, true or null")
}

// lexString unescapes the string body into l.out, returning a Lexeme
// whose Str borrows that arena memory directly (no further copy).
func (l *Lexer) lexString() Lexeme {
	if l.data[l.pos] != '"' {
		return l.errorf("expecting string delimiter '\"'")
	}
	l.pos++
	region, start := l.out.Checkout()
	w := 0
	put := func(r rune) bool {
		if w >= len(region) {
			return false
		}
		n, ok := writeRune(region[w:], r)
		if !ok {
			return false
		}
		w += n
		return true
	}
	for {
		if l.pos >= len(l.data) {
			return l.errorf("end of file inside string")
		}
		c := l.data[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\\' {
			l.pos++
			if l.pos >= len(l.data) {
				return l.errorf("end of file inside escape code of json string")
			}
			ec := l.data[l.pos]
			l.pos++
			var out rune
			switch ec {
			case '\\':
				out = '\\'
			case '"':
				out = '"'
			case '/':
				out = '/'
			case 'b':
				out = '\b'
			case 'f':
				out = '\f'
			case 'n':
				out = '\n'
			case 'r':
				out = '\r'
			case 't':
				out = '\t'
			case 'u':
				if l.pos+4 > len(l.data) {
					return l.errorf("expected 4 character hex number, e.g. '\\u00004E2D'")
				}
				var hv uint32
				for i := 0; i < 4; i++ {
					b := l.data[l.pos+i]
					if !isHex(b) {
						return l.errorf("expected 4 character hex number, e.g. '\\u00004E2D'")
					}
					hv = hv<<4 | hexVal(b)
				}
				l.pos += 4
				out = rune(hv)
			default:
				return l.errorf("unexpected character in string")
			}
			if !put(out) {
				return l.errorf("out of arena")
			}
			continue
		}
		r, size := peekRune(l.data[l.pos:])
		if size <= 0 {
			return l.errorf("unexpected character in string")
		}
		l.pos += size
		if !put(r) {
			return l.errorf("out of arena")
		}
	}
	if w >= len(region) {
		return l.errorf("out of arena")
	}
	region[w] = 0
	if err := l.out.Commit(start + w + 1); err != nil {
		l.err = err
		return Lexeme{Kind: KError}
	}
	return Lexeme{Kind: KString, Str: unsafe.String(&region[0], w)}
}
