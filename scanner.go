package arenajson

import "unsafe"

// Scanner tokenizes a JSON byte stream without copying: string lexemes
// borrow a slice of the source buffer verbatim, escapes untouched (the
// "c_json" variant). Callers that need unescaped strings must use
// Lexer instead; Scanner trades that convenience for zero allocation
// and zero arena use on the string path.
type Scanner struct {
	data []byte
	pos  int
	line int

	lookahead    Lexeme
	hasLookahead bool
	err          error
}

func NewScanner(data []byte) *Scanner {
	return NewScannerAt(data, 1)
}

// NewScannerAt is like NewScanner but seeds the starting line number,
// used to re-scan a sub-slice of a larger document.
func NewScannerAt(data []byte, startLine int) *Scanner {
	return &Scanner{data: data, line: startLine}
}

func (s *Scanner) Line() int  { return s.line }
func (s *Scanner) Err() error { return s.err }
func (s *Scanner) Pos() int   { return s.pos }

func (s *Scanner) Peek() Lexeme {
	if !s.hasLookahead {
		s.lookahead = s.fetch()
		s.hasLookahead = true
	}
	return s.lookahead
}

func (s *Scanner) Next() Lexeme {
	lex := s.Peek()
	s.hasLookahead = false
	return lex
}

func (s *Scanner) Skip() { s.Next() }

func (s *Scanner) Expect(k Kind) (Lexeme, bool) {
	lex := s.Next()
	return lex, lex.Kind == k
}

func (s *Scanner) errorf(format string, args ...interface{}) Lexeme {
	s.err = lexErrorf(s.line, format, args...)
	return Lexeme{Kind: KError}
}

func (s *Scanner) skipWhitespace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case '\n':
			s.line++
			s.pos++
		case ' ', '\t', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *Scanner) fetch() Lexeme {
	if s.err != nil {
		return Lexeme{Kind: KError}
	}
	s.skipWhitespace()
	if s.pos >= len(s.data) {
		return Lexeme{Kind: KEOF}
	}
	c := s.data[s.pos]
	switch {
	case c == '-' || isDigit(c):
		return s.lexNumber()
	case c == '"':
		return s.lexString()
	case c == '{':
		s.pos++
		return Lexeme{Kind: KBeginObject}
	case c == '}':
		s.pos++
		return Lexeme{Kind: KEndObject}
	case c == '[':
		s.pos++
		return Lexeme{Kind: KBeginArray}
	case c == ']':
		s.pos++
		return Lexeme{Kind: KEndArray}
	case c == ',':
		s.pos++
		return Lexeme{Kind: KValueSeparator}
	case c == ':':
		s.pos++
		return Lexeme{Kind: KNameSeparator}
	case isAlpha(c):
		return s.lexLiteral()
	default:
		return s.errorf("unexpected character in json")
	}
}

// lexNumber pre-scans to the next structural boundary (matching the
// original scanner's GetNumberLexeme) before handing the bounded slice
// to parseNumber, so a malformed suffix is rejected rather than
// silently truncated.
func (s *Scanner) lexNumber() Lexeme {
	start := s.pos
	end := start
	for end < len(s.data) {
		switch s.data[end] {
		case ' ', '\t', '\r', '\n', ',', ']', '}':
			goto boundaryFound
		}
		end++
	}
boundaryFound:
	consumed, num, ok := parseNumber(s.data[start:end])
	if !ok || start+consumed != end {
		return s.errorf("bad number")
	}
	s.pos = end
	return Lexeme{Kind: KNumber, Num: num}
}

func (s *Scanner) lexLiteral() Lexeme {
	start := s.pos
	for s.pos < len(s.data) && isAlpha(s.data[s.pos]) {
		s.pos++
	}
	switch string(s.data[start:s.pos]) {
	case "true":
		return Lexeme{Kind: KBoolean, Bool: true}
	case "false":
		return Lexeme{Kind: KBoolean, Bool: false}
	case "null":
		return Lexeme{Kind: KNull}
	}
	return s.errorf("invalid literal, expected one of false, true or null")
}

// lexString borrows the quoted body directly from the source buffer,
// escapes left intact, matching the original's raw pointer+length
// string lexeme.
func (s *Scanner) lexString() Lexeme {
	if s.data[s.pos] != '"' {
		return s.errorf("expecting string delimiter '\"'")
	}
	s.pos++
	start := s.pos
	for {
		if s.pos >= len(s.data) {
			return s.errorf("end of file inside string")
		}
		c := s.data[s.pos]
		if c == '"' {
			break
		}
		if c == '\\' {
			s.pos += 2
			continue
		}
		r, size := peekRune(s.data[s.pos:])
		if size <= 0 {
			return s.errorf("unexpected character in string")
		}
		_ = r
		s.pos += size
	}
	str := unsafe.String(&s.data[start], s.pos-start)
	s.pos++
	return Lexeme{Kind: KString, Str: str}
}
