package arenajson

// Kind names the token classes the lexer and scanner both produce.
type Kind uint8

const (
	KEOF Kind = iota
	KBeginObject
	KEndObject
	KBeginArray
	KEndArray
	KNameSeparator
	KValueSeparator
	KString
	KNumber
	KBoolean
	KNull
	KError
)

func (k Kind) String() string {
	switch k {
	case KEOF:
		return "eof"
	case KBeginObject:
		return "'{'"
	case KEndObject:
		return "'}'"
	case KBeginArray:
		return "'['"
	case KEndArray:
		return "']'"
	case KNameSeparator:
		return "':'"
	case KValueSeparator:
		return "','"
	case KString:
		return "string"
	case KNumber:
		return "number"
	case KBoolean:
		return "boolean"
	case KNull:
		return "null"
	case KError:
		return "error"
	}
	return "invalid"
}

// Lexeme is one token. Only the fields relevant to Kind are meaningful:
// Str for KString, Num for KNumber, Bool for KBoolean.
type Lexeme struct {
	Kind Kind
	Str  string
	Num  Number
	Bool bool
}

// tokenSource is implemented by both Lexer and Scanner, letting the DOM
// parser and decoder share one grammar walk over either token style.
type tokenSource interface {
	Peek() Lexeme
	Next() Lexeme
	Expect(k Kind) (Lexeme, bool)
	Line() int
	Err() error
	Pos() int
}
