package arenajson

import (
	"reflect"
	"unsafe"
)

// iterFrame is one level of the explicit decode stack: the struct
// currently being filled in and where. DecodeIntoIter keeps one of
// these per nested inline/pointer object field instead of recursing,
// so a maliciously deep chain of `{"a":{"a":{"a":...` costs heap, not
// native call-stack, depth.
type iterFrame struct {
	typ  *TypeDescriptor
	addr unsafe.Pointer
}

// DecodeIntoIter is the untrusted-input counterpart to DecodeInto: it
// walks the same grammar and schema, but nested object fields push an
// entry onto an explicit, arena-independent stack (a plain Go slice)
// rather than recursing, bounding native stack growth to O(1)
// regardless of how deeply the object graph nests. Array elements of
// object type still recurse through decodeObject, since a single
// array's element count is already capped by its declared length
// width — the risk this guards against is specifically unbounded
// object nesting, not wide arrays.
func DecodeIntoIter(data []byte, root interface{}, typ *TypeDescriptor, longArena, scratchArena *Arena, opts *DecodeOptions) error {
	rvalue := reflect.ValueOf(root)
	if rvalue.Kind() != reflect.Ptr || rvalue.IsNil() {
		return schemaErrorf(0, "decode target must be a non-nil pointer")
	}
	if rvalue.Elem().Type() != typ.GoType {
		return schemaErrorf(0, "decode target type %s does not match schema type %s", rvalue.Elem().Type(), typ.GoType)
	}
	rv := unsafe.Pointer(rvalue.Pointer())
	maxDepth := defaultMaxDepth
	useScanner := false
	if opts != nil {
		if opts.MaxDepth > 0 {
			maxDepth = opts.MaxDepth
		}
		useScanner = opts.UseScanner
	}
	var tz tokenSource
	if useScanner {
		tz = NewScanner(data)
	} else {
		tz = NewLexer(data, longArena)
	}
	if err := decodeObjectIter(tz, typ, rv, longArena, scratchArena, maxDepth); err != nil {
		return err
	}
	if tz.Err() != nil {
		return tz.Err()
	}
	trailing := tz.Next()
	if trailing.Kind != KEOF {
		return syntaxErrorf(tz.Line(), "unexpected trailing data after json value")
	}
	return nil
}

func decodeObjectIter(tz tokenSource, rootTyp *TypeDescriptor, rootAddr unsafe.Pointer, longArena, scratchArena *Arena, maxDepth int) error {
	open := tz.Next()
	if open.Kind == KError {
		return tz.Err()
	}
	if open.Kind != KBeginObject {
		return syntaxErrorf(tz.Line(), "expected '{', found %s", open.Kind)
	}

	stack := make([]iterFrame, 0, 16)
	stack = append(stack, iterFrame{typ: rootTyp, addr: rootAddr})
	popped := false // a child frame just closed; its parent expects ',' or '}'

	for len(stack) > 0 {
		if len(stack) > maxDepth {
			return newError(ClassResource, tz.Line(), "maximum nesting depth exceeded")
		}
		cur := stack[len(stack)-1]

		if tz.Peek().Kind == KEndObject {
			tz.Next()
			stack = stack[:len(stack)-1]
			popped = true
			continue
		}
		if popped {
			popped = false
			if _, ok := tz.Expect(KValueSeparator); !ok {
				if tz.Err() != nil {
					return tz.Err()
				}
				return syntaxErrorf(tz.Line(), "expected ',' or '}' after member value")
			}
		}

		key := tz.Next()
		if key.Kind == KError {
			return tz.Err()
		}
		if key.Kind != KString {
			return syntaxErrorf(tz.Line(), "expected member name, found %s", key.Kind)
		}
		if _, ok := tz.Expect(KNameSeparator); !ok {
			if tz.Err() != nil {
				return tz.Err()
			}
			return syntaxErrorf(tz.Line(), "expected ':' after member name")
		}

		f := cur.typ.fieldByName(key.Str)
		pushed := false
		switch {
		case f == nil:
			if err := skipValue(tz, 1, maxDepth); err != nil {
				return err
			}
		case f.Shape.Kind == KindObject && f.Shape.Placement == PlacementInline:
			childOpen := tz.Next()
			if childOpen.Kind == KError {
				return tz.Err()
			}
			if childOpen.Kind != KBeginObject {
				return syntaxErrorf(tz.Line(), "expected '{', found %s", childOpen.Kind)
			}
			stack = append(stack, iterFrame{typ: f.Elem, addr: fieldAddr(cur.addr, f.Offset)})
			pushed = true
		case f.Shape.Kind == KindObject && f.Shape.Placement == PlacementPointer:
			if tz.Peek().Kind == KNull {
				tz.Next()
			} else {
				rv, err := allocType(longArena, f.Elem.GoType)
				if err != nil {
					return err
				}
				childOpen := tz.Next()
				if childOpen.Kind == KError {
					return tz.Err()
				}
				if childOpen.Kind != KBeginObject {
					return syntaxErrorf(tz.Line(), "expected '{', found %s", childOpen.Kind)
				}
				setPointerField(fieldAddr(cur.addr, f.Offset), f.Elem.GoType, rv)
				stack = append(stack, iterFrame{typ: f.Elem, addr: unsafe.Pointer(rv.Pointer())})
				pushed = true
			}
		default:
			if err := decodeField(tz, f, cur.addr, longArena, scratchArena, 1, maxDepth); err != nil {
				return err
			}
		}

		if pushed {
			continue
		}

		next := tz.Next()
		switch next.Kind {
		case KValueSeparator:
			if tz.Peek().Kind == KEndObject {
				return syntaxErrorf(tz.Line(), "expected member name, found %s", KEndObject)
			}
			continue
		case KEndObject:
			stack = stack[:len(stack)-1]
			popped = true
			continue
		case KError:
			return tz.Err()
		default:
			return syntaxErrorf(tz.Line(), "expected ',' or '}', found %s", next.Kind)
		}
	}
	return nil
}
