package arenajson

// ValueKind names the tag of a DOM Value.
type ValueKind uint8

const (
	VNull ValueKind = iota
	VBool
	VNumber
	VString
	VArray
	VObject
)

type arrayCell struct {
	value *Value
	next  *arrayCell
}

type objectCell struct {
	name  string
	value *Value
	next  *objectCell
}

// Value is a single DOM node: a tagged union over the six JSON value
// kinds. Arrays and objects are singly linked lists with a tail
// pointer, so Parse can append each new element/member in O(1) while
// preserving source order — the encoder and any caller walking the DOM
// sees members in the order they appeared in the document.
type Value struct {
	kind ValueKind
	b    bool
	num  Number
	str  string

	arrHead, arrTail *arrayCell
	arrCount         int

	objHead, objTail *objectCell
	objCount         int
}

func (v *Value) Kind() ValueKind { return v.kind }

func (v *Value) Bool() (bool, bool) {
	if v.kind != VBool {
		return false, false
	}
	return v.b, true
}

func (v *Value) Number() (Number, bool) {
	if v.kind != VNumber {
		return Number{}, false
	}
	return v.num, true
}

func (v *Value) String() (string, bool) {
	if v.kind != VString {
		return "", false
	}
	return v.str, true
}

// Len reports the element/member count for VArray and VObject, 0
// otherwise.
func (v *Value) Len() int {
	switch v.kind {
	case VArray:
		return v.arrCount
	case VObject:
		return v.objCount
	}
	return 0
}

// Elements walks a VArray in source order, stopping early if fn
// returns false. It is a no-op for any other kind.
func (v *Value) Elements(fn func(*Value) bool) {
	for c := v.arrHead; c != nil; c = c.next {
		if !fn(c.value) {
			return
		}
	}
}

// Members walks a VObject in source order, stopping early if fn
// returns false. It is a no-op for any other kind.
func (v *Value) Members(fn func(name string, val *Value) bool) {
	for c := v.objHead; c != nil; c = c.next {
		if !fn(c.name, c.value) {
			return
		}
	}
}

// Get returns the first member named key, or nil if absent or v is not
// a VObject. Duplicate keys resolve to the first occurrence, matching
// the original's find-first member lookup.
func (v *Value) Get(key string) *Value {
	if v.kind != VObject {
		return nil
	}
	for c := v.objHead; c != nil; c = c.next {
		if c.name == key {
			return c.value
		}
	}
	return nil
}

// Index returns the i'th array element, or nil if out of range or v
// is not a VArray.
func (v *Value) Index(i int) *Value {
	if v.kind != VArray || i < 0 {
		return nil
	}
	for c := v.arrHead; c != nil; c = c.next {
		if i == 0 {
			return c.value
		}
		i--
	}
	return nil
}

// Parse builds a DOM from a full JSON document, unescaping strings
// into stringArena and allocating Value/cell nodes from nodeArena.
// Passing the same Arena for both is fine for small documents; keeping
// them separate lets a caller size the string payload and the node
// graph independently.
func Parse(data []byte, nodeArena, stringArena *Arena) (*Value, error) {
	lex := NewLexer(data, stringArena)
	v, err := parseValue(lex, nodeArena)
	if err != nil {
		return nil, err
	}
	if lex.err != nil {
		return nil, lex.err
	}
	trailing := lex.Next()
	if trailing.Kind != KEOF {
		return nil, syntaxErrorf(lex.Line(), "unexpected trailing data after json value")
	}
	return v, nil
}

// Scan builds a DOM the same way as Parse, except string values borrow
// slices of data directly rather than unescaping into an arena.
func Scan(data []byte, nodeArena *Arena) (*Value, error) {
	sc := NewScanner(data)
	v, err := parseValue(sc, nodeArena)
	if err != nil {
		return nil, err
	}
	if sc.err != nil {
		return nil, sc.err
	}
	trailing := sc.Next()
	if trailing.Kind != KEOF {
		return nil, syntaxErrorf(sc.Line(), "unexpected trailing data after json value")
	}
	return v, nil
}

func parseValue(tz tokenSource, nodeArena *Arena) (*Value, error) {
	lex := tz.Peek()
	switch lex.Kind {
	case KBeginObject:
		return parseObject(tz, nodeArena)
	case KBeginArray:
		return parseArray(tz, nodeArena)
	case KString:
		tz.Next()
		v, err := allocFrom[Value](nodeArena)
		if err != nil {
			return nil, err
		}
		v.kind = VString
		v.str = lex.Str
		return v, nil
	case KNumber:
		tz.Next()
		v, err := allocFrom[Value](nodeArena)
		if err != nil {
			return nil, err
		}
		v.kind = VNumber
		v.num = lex.Num
		return v, nil
	case KBoolean:
		tz.Next()
		v, err := allocFrom[Value](nodeArena)
		if err != nil {
			return nil, err
		}
		v.kind = VBool
		v.b = lex.Bool
		return v, nil
	case KNull:
		tz.Next()
		v, err := allocFrom[Value](nodeArena)
		if err != nil {
			return nil, err
		}
		v.kind = VNull
		return v, nil
	case KError:
		return nil, tz.Err()
	default:
		return nil, syntaxErrorf(tz.Line(), "expected a value, found %s", lex.Kind)
	}
}

func parseArray(tz tokenSource, nodeArena *Arena) (*Value, error) {
	tz.Next() // consume '['
	v, err := allocFrom[Value](nodeArena)
	if err != nil {
		return nil, err
	}
	v.kind = VArray
	if tz.Peek().Kind == KEndArray {
		tz.Next()
		return v, nil
	}
	for {
		elem, err := parseValue(tz, nodeArena)
		if err != nil {
			return nil, err
		}
		cell, err := allocFrom[arrayCell](nodeArena)
		if err != nil {
			return nil, err
		}
		cell.value = elem
		if v.arrTail == nil {
			v.arrHead = cell
		} else {
			v.arrTail.next = cell
		}
		v.arrTail = cell
		v.arrCount++

		next := tz.Next()
		switch next.Kind {
		case KValueSeparator:
			continue
		case KEndArray:
			return v, nil
		case KError:
			return nil, tz.Err()
		default:
			return nil, syntaxErrorf(tz.Line(), "expected ',' or ']', found %s", next.Kind)
		}
	}
}

func parseObject(tz tokenSource, nodeArena *Arena) (*Value, error) {
	tz.Next() // consume '{'
	v, err := allocFrom[Value](nodeArena)
	if err != nil {
		return nil, err
	}
	v.kind = VObject
	if tz.Peek().Kind == KEndObject {
		tz.Next()
		return v, nil
	}
	for {
		key := tz.Next()
		if key.Kind == KError {
			return nil, tz.Err()
		}
		if key.Kind != KString {
			return nil, syntaxErrorf(tz.Line(), "expected member name, found %s", key.Kind)
		}
		if _, ok := tz.Expect(KNameSeparator); !ok {
			if tz.Err() != nil {
				return nil, tz.Err()
			}
			return nil, syntaxErrorf(tz.Line(), "expected ':' after member name")
		}
		val, err := parseValue(tz, nodeArena)
		if err != nil {
			return nil, err
		}
		cell, err := allocFrom[objectCell](nodeArena)
		if err != nil {
			return nil, err
		}
		cell.name = key.Str
		cell.value = val
		if v.objTail == nil {
			v.objHead = cell
		} else {
			v.objTail.next = cell
		}
		v.objTail = cell
		v.objCount++

		next := tz.Next()
		switch next.Kind {
		case KValueSeparator:
			continue
		case KEndObject:
			return v, nil
		case KError:
			return nil, tz.Err()
		default:
			return nil, syntaxErrorf(tz.Line(), "expected ',' or '}', found %s", next.Kind)
		}
	}
}
