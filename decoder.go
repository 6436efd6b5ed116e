package arenajson

import (
	"reflect"
	"unsafe"
)

var (
	goTypeInt8    = reflect.TypeOf(int8(0))
	goTypeInt16   = reflect.TypeOf(int16(0))
	goTypeInt32   = reflect.TypeOf(int32(0))
	goTypeInt64   = reflect.TypeOf(int64(0))
	goTypeUint8   = reflect.TypeOf(uint8(0))
	goTypeUint16  = reflect.TypeOf(uint16(0))
	goTypeUint32  = reflect.TypeOf(uint32(0))
	goTypeUint64  = reflect.TypeOf(uint64(0))
	goTypeFloat32 = reflect.TypeOf(float32(0))
	goTypeFloat64 = reflect.TypeOf(float64(0))
	goTypeBool    = reflect.TypeOf(false)
	goTypeString  = reflect.TypeOf("")
)

// scalarGoType returns the Go type backing a non-object, non-enum
// Shape, used when the decoder needs to arena-allocate a pointee whose
// type isn't carried on a TypeDescriptor (only Object/Enum fields have
// one).
func scalarGoType(shape Shape) reflect.Type {
	switch shape.Kind {
	case KindBool:
		return goTypeBool
	case KindString:
		return goTypeString
	case KindInt:
		switch shape.Width {
		case 8:
			return goTypeInt8
		case 16:
			return goTypeInt16
		case 32:
			return goTypeInt32
		default:
			return goTypeInt64
		}
	case KindUint, KindEnum:
		switch shape.Width {
		case 8:
			return goTypeUint8
		case 16:
			return goTypeUint16
		case 32:
			return goTypeUint32
		default:
			return goTypeUint64
		}
	case KindFloat:
		if shape.Width == 32 {
			return goTypeFloat32
		}
		return goTypeFloat64
	}
	return nil
}

func elemSize(f *Field) uintptr {
	if f.Shape.Kind == KindObject && f.Elem != nil {
		return f.Elem.GoType.Size()
	}
	return scalarGoType(f.Shape).Size()
}

const defaultMaxDepth = 512

// DecodeOptions configures a single DecodeInto call.
type DecodeOptions struct {
	UseScanner bool
	MaxDepth   int
}

// DecodeInto parses data against typ's schema and populates root (a
// pointer to the Go struct typ describes), allocating pointer- and
// array-placement payloads from longArena and using scratchArena only
// for throwaway work (array length pre-counts). Inline values are
// written directly into root's own memory; in Lexer mode the bytes of
// every string, including those of skipped members, are unescaped into
// longArena.
func DecodeInto(data []byte, root interface{}, typ *TypeDescriptor, longArena, scratchArena *Arena, opts *DecodeOptions) error {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return schemaErrorf(0, "decode target must be a non-nil pointer")
	}
	if rv.Elem().Type() != typ.GoType {
		return schemaErrorf(0, "decode target type %s does not match schema type %s", rv.Elem().Type(), typ.GoType)
	}
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

	addr := unsafe.Pointer(rv.Pointer())
	if err := decodeObject(tz, typ, addr, longArena, scratchArena, 1, maxDepth); err != nil {
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

func fieldAddr(base unsafe.Pointer, offset uintptr) unsafe.Pointer {
	return unsafe.Add(base, offset)
}

// decodeObject consumes a '{' ... '}' and writes each recognized member
// directly into the struct at addr, skipping unrecognized member names.
func decodeObject(tz tokenSource, typ *TypeDescriptor, addr unsafe.Pointer, longArena, scratchArena *Arena, depth, maxDepth int) error {
	if depth > maxDepth {
		return newError(ClassResource, tz.Line(), "maximum nesting depth exceeded")
	}
	open := tz.Next()
	if open.Kind == KError {
		return tz.Err()
	}
	if open.Kind != KBeginObject {
		return syntaxErrorf(tz.Line(), "expected '{', found %s", open.Kind)
	}
	if tz.Peek().Kind == KEndObject {
		tz.Next()
		return nil
	}
	for {
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
		f := typ.fieldByName(key.Str)
		if f == nil {
			if err := skipValue(tz, depth, maxDepth); err != nil {
				return err
			}
		} else if err := decodeField(tz, f, addr, longArena, scratchArena, depth, maxDepth); err != nil {
			return err
		}

		next := tz.Next()
		switch next.Kind {
		case KValueSeparator:
			continue
		case KEndObject:
			return nil
		case KError:
			return tz.Err()
		default:
			return syntaxErrorf(tz.Line(), "expected ',' or '}', found %s", next.Kind)
		}
	}
}

func decodeField(tz tokenSource, f *Field, structAddr unsafe.Pointer, longArena, scratchArena *Arena, depth, maxDepth int) error {
	addr := fieldAddr(structAddr, f.Offset)
	switch f.Shape.Placement {
	case PlacementInline:
		return decodeInlineValue(tz, f, addr, longArena, scratchArena, depth, maxDepth)
	case PlacementPointer:
		return decodePointerValue(tz, f, addr, longArena, scratchArena, depth, maxDepth)
	case PlacementArray:
		return decodeFixedArray(tz, f, addr, longArena, scratchArena, depth, maxDepth)
	case PlacementArrayPtr:
		return decodeArrayPtr(tz, f, structAddr, longArena, scratchArena, depth, maxDepth)
	}
	return schemaErrorf(tz.Line(), "field %s has no placement", f.JSONName)
}

// decodeInlineValue writes directly into addr, which already has
// storage for the value (struct embedding, array slot).
func decodeInlineValue(tz tokenSource, f *Field, addr unsafe.Pointer, longArena, scratchArena *Arena, depth, maxDepth int) error {
	switch f.Shape.Kind {
	case KindObject:
		return decodeObject(tz, f.Elem, addr, longArena, scratchArena, depth+1, maxDepth)
	case KindEnum:
		return decodeEnum(tz, f, addr)
	default:
		return decodeScalar(tz, f.Shape, addr)
	}
}

// decodePointerValue allocates (if the value isn't JSON null) from
// longArena and writes a pointer into addr.
func decodePointerValue(tz tokenSource, f *Field, addr unsafe.Pointer, longArena, scratchArena *Arena, depth, maxDepth int) error {
	if tz.Peek().Kind == KNull {
		tz.Next()
		return nil // leave the pointer field nil (its zero value)
	}
	if f.Shape.Kind == KindObject {
		rv, err := allocType(longArena, f.Elem.GoType)
		if err != nil {
			return err
		}
		if err := decodeObject(tz, f.Elem, unsafe.Pointer(rv.Pointer()), longArena, scratchArena, depth+1, maxDepth); err != nil {
			return err
		}
		setPointerField(addr, f.Elem.GoType, rv)
		return nil
	}
	et := scalarGoType(f.Shape)
	rv, err := allocType(longArena, et)
	if err != nil {
		return err
	}
	elemAddr := unsafe.Pointer(rv.Pointer())
	if f.Shape.Kind == KindEnum {
		if err := decodeEnum(tz, f, elemAddr); err != nil {
			return err
		}
	} else if err := decodeScalar(tz, f.Shape, elemAddr); err != nil {
		return err
	}
	setPointerField(addr, et, rv)
	return nil
}

// setPointerField stores rv (a *et reflect.Value) into the *et struct
// field at addr, going through reflect so the runtime's write barrier
// fires correctly for this pointer-typed store.
func setPointerField(addr unsafe.Pointer, et reflect.Type, rv reflect.Value) {
	ptrType := reflect.PointerTo(et)
	reflect.NewAt(ptrType, addr).Elem().Set(rv)
}

func decodeScalar(tz tokenSource, shape Shape, addr unsafe.Pointer) error {
	lex := tz.Next()
	switch lex.Kind {
	case KError:
		return tz.Err()
	case KNull:
		return nil // leave the zero value
	case KBoolean:
		if shape.Kind != KindBool {
			return schemaErrorf(tz.Line(), "expected %v, found boolean", shape.Kind)
		}
		*(*bool)(addr) = lex.Bool
		return nil
	case KNumber:
		switch shape.Kind {
		case KindInt:
			v, ok := lex.Num.AsInt64()
			if !ok {
				return schemaErrorf(tz.Line(), "number does not fit a signed integer field")
			}
			writeInt(addr, shape.Width, v)
			return nil
		case KindUint:
			v, ok := lex.Num.AsUint64()
			if !ok {
				return schemaErrorf(tz.Line(), "number does not fit an unsigned integer field")
			}
			writeUint(addr, shape.Width, v)
			return nil
		case KindFloat:
			writeFloat(addr, shape.Width, lex.Num.AsFloat64())
			return nil
		}
		return schemaErrorf(tz.Line(), "unexpected number for %v field", shape.Kind)
	case KString:
		if shape.Kind != KindString {
			return schemaErrorf(tz.Line(), "unexpected string for %v field", shape.Kind)
		}
		reflect.NewAt(goTypeString, addr).Elem().SetString(lex.Str)
		return nil
	}
	return syntaxErrorf(tz.Line(), "expected a value, found %s", lex.Kind)
}

func decodeEnum(tz tokenSource, f *Field, addr unsafe.Pointer) error {
	lex := tz.Next()
	switch lex.Kind {
	case KError:
		return tz.Err()
	case KNull:
		return nil
	case KString:
		bits := enumFromString(lex.Str, f.Elem.Names)
		writeUint(addr, f.Shape.Width, bits)
		return nil
	}
	return schemaErrorf(tz.Line(), "expected a string for enum field, found %s", lex.Kind)
}

func writeInt(addr unsafe.Pointer, width int, v int64) {
	switch width {
	case 8:
		*(*int8)(addr) = int8(v)
	case 16:
		*(*int16)(addr) = int16(v)
	case 32:
		*(*int32)(addr) = int32(v)
	default:
		*(*int64)(addr) = v
	}
}

func writeUint(addr unsafe.Pointer, width int, v uint64) {
	switch width {
	case 8:
		*(*uint8)(addr) = uint8(v)
	case 16:
		*(*uint16)(addr) = uint16(v)
	case 32:
		*(*uint32)(addr) = uint32(v)
	default:
		*(*uint64)(addr) = v
	}
}

func writeFloat(addr unsafe.Pointer, width int, v float64) {
	if width == 32 {
		*(*float32)(addr) = float32(v)
		return
	}
	*(*float64)(addr) = v
}

// decodeFixedArray fills a [ArrayCap]Elem field in place, clamping any
// additional JSON elements by parsing and discarding them.
func decodeFixedArray(tz tokenSource, f *Field, addr unsafe.Pointer, longArena, scratchArena *Arena, depth, maxDepth int) error {
	open := tz.Next()
	if open.Kind == KError {
		return tz.Err()
	}
	if open.Kind != KBeginArray {
		return syntaxErrorf(tz.Line(), "expected '[', found %s", open.Kind)
	}
	if tz.Peek().Kind == KEndArray {
		tz.Next()
		return nil
	}
	size := elemSize(f)
	i := 0
	for {
		if i < f.ArrayCap {
			elemAddr := unsafe.Add(addr, uintptr(i)*size)
			if err := decodeArrayElem(tz, f, elemAddr, longArena, scratchArena, depth, maxDepth); err != nil {
				return err
			}
		} else if err := skipValue(tz, depth, maxDepth); err != nil {
			return err
		}
		i++

		next := tz.Next()
		switch next.Kind {
		case KValueSeparator:
			continue
		case KEndArray:
			return nil
		case KError:
			return tz.Err()
		default:
			return syntaxErrorf(tz.Line(), "expected ',' or ']', found %s", next.Kind)
		}
	}
}

func decodeArrayElem(tz tokenSource, f *Field, addr unsafe.Pointer, longArena, scratchArena *Arena, depth, maxDepth int) error {
	if f.Shape.Kind == KindObject {
		return decodeObject(tz, f.Elem, addr, longArena, scratchArena, depth+1, maxDepth)
	}
	return decodeScalar(tz, Shape{Kind: f.Shape.Kind, Width: f.Shape.Width}, addr)
}

// decodeArrayPtr decodes a dynamically-sized array into exactly one
// arena allocation sized to the element count, plus a separately
// widthed length field — the pointer+length discipline the original
// enforces via its JsonCAlloc hook. Because the tokenizer only looks
// one lexeme ahead, the element count isn't known until the closing
// ']' is reached, so this makes two passes over the same span: the
// first walks and discards each element purely to count them (its
// string writes are rewound via a Scope so they cost nothing), and the
// second re-tokenizes the same byte range, now that a single
// correctly-sized allocation exists to decode into. Both passes run
// over throwaway tokenizers seeded from tz's own byte slice rather
// than tz itself; syncTokenizer folds the real pass's end position
// back into tz before returning, so the caller resumes right after
// this array's closing ']' instead of right after its opening '['.
func decodeArrayPtr(tz tokenSource, f *Field, structAddr unsafe.Pointer, longArena, scratchArena *Arena, depth, maxDepth int) error {
	open := tz.Next()
	if open.Kind == KError {
		return tz.Err()
	}
	if open.Kind != KBeginArray {
		return syntaxErrorf(tz.Line(), "expected '[', found %s", open.Kind)
	}

	lx, isLexer := tz.(*Lexer)
	sc, isScanner := tz.(*Scanner)

	startLine := tz.Line()
	startPos := tz.Pos()

	// Count using a throwaway tokenizer over the same byte range, backed
	// by scratchArena rather than tz's own (possibly longArena-backed)
	// output, so the Scope below actually rewinds every string this
	// pass unescapes instead of leaking them into the long-lived arena.
	var countTz tokenSource
	switch {
	case isLexer:
		countTz = NewLexerAt(lx.data[startPos:], scratchArena, startLine)
	case isScanner:
		countTz = NewScannerAt(sc.data[startPos:], startLine)
	default:
		return newError(ClassIntegrity, startLine, "unsupported tokenizer for array decode")
	}
	scope := scratchArena.Enter()
	n, err := countArrayElements(countTz, depth, maxDepth)
	scope.Exit()
	if err != nil {
		return err
	}

	maxLen := int(f.Shape.LenRepr.max())
	clamped := n
	if clamped > maxLen {
		clamped = maxLen
	}

	size := elemSize(f)
	var arrAddr unsafe.Pointer
	if clamped > 0 {
		region, aerr := longArena.AllocAligned(int(size)*clamped, int(size))
		if aerr != nil {
			return aerr
		}
		clear(region)
		arrAddr = unsafe.Pointer(&region[0])
	}

	lenAddr := fieldAddr(structAddr, f.LenOffset)
	writeUint(lenAddr, int(f.Shape.LenRepr.widthBits()), uint64(clamped))
	if clamped == 0 {
		setArrayPtrField(structAddr, f, nil, scalarOrObjectType(f))
		syncTokenizer(lx, isLexer, sc, isScanner, startPos, countTz)
		return nil
	}
	setArrayPtrField(structAddr, f, arrAddr, scalarOrObjectType(f))

	var sub tokenSource
	switch {
	case isLexer:
		sub = NewLexerAt(lx.data[startPos:], longArena, startLine)
	case isScanner:
		sub = NewScannerAt(sc.data[startPos:], startLine)
	default:
		return newError(ClassIntegrity, startLine, "unsupported tokenizer for array decode")
	}

elements:
	for i := 0; ; i++ {
		if sub.Peek().Kind == KEndArray {
			sub.Next()
			break elements
		}
		var elemAddr unsafe.Pointer
		if i < clamped {
			elemAddr = unsafe.Add(arrAddr, uintptr(i)*size)
			if err := decodeArrayElem(sub, f, elemAddr, longArena, scratchArena, depth, maxDepth); err != nil {
				return err
			}
		} else if err := skipValue(sub, depth, maxDepth); err != nil {
			return err
		}
		next := sub.Next()
		switch next.Kind {
		case KValueSeparator:
			continue elements
		case KEndArray:
			break elements
		case KError:
			return sub.Err()
		default:
			return syntaxErrorf(sub.Line(), "expected ',' or ']', found %s", next.Kind)
		}
	}
	syncTokenizer(lx, isLexer, sc, isScanner, startPos, sub)
	return nil
}

// syncTokenizer folds a sub-tokenizer's consumption (over
// lx.data[startPos:]/sc.data[startPos:]) back into the original
// shared tz's position and line count, so the caller's next Next()
// resumes right after the ']' the sub-tokenizer stopped at rather than
// right after the '[' where decodeArrayPtr started it. Without this,
// decodeObject's/decodeObjectIter's next token read re-reads the
// array's own element bytes as if they were object syntax.
func syncTokenizer(lx *Lexer, isLexer bool, sc *Scanner, isScanner bool, startPos int, consumed tokenSource) {
	switch {
	case isLexer:
		lx.pos = startPos + consumed.Pos()
		lx.line = consumed.Line()
		lx.hasLookahead = false
	case isScanner:
		sc.pos = startPos + consumed.Pos()
		sc.line = consumed.Line()
		sc.hasLookahead = false
	}
}

func scalarOrObjectType(f *Field) reflect.Type {
	if f.Shape.Kind == KindObject {
		return f.Elem.GoType
	}
	return scalarGoType(f.Shape)
}

func setArrayPtrField(structAddr unsafe.Pointer, f *Field, arrAddr unsafe.Pointer, elemType reflect.Type) {
	ptrField := fieldAddr(structAddr, f.Offset)
	ptrType := reflect.PointerTo(elemType)
	if arrAddr == nil {
		reflect.NewAt(ptrType, ptrField).Elem().Set(reflect.Zero(ptrType))
		return
	}
	reflect.NewAt(ptrType, ptrField).Elem().Set(reflect.NewAt(elemType, arrAddr))
}

func (w LenWidth) widthBits() int {
	switch w {
	case LenSize8:
		return 8
	case LenSize16:
		return 16
	default:
		return 32
	}
}

// countArrayElements consumes from just after '[' to the matching ']',
// returning how many elements it saw. It never materializes a Value;
// it exists purely to size a single contiguous allocation.
func countArrayElements(tz tokenSource, depth, maxDepth int) (int, error) {
	if tz.Peek().Kind == KEndArray {
		tz.Next()
		return 0, nil
	}
	n := 0
	for {
		if err := skipValue(tz, depth, maxDepth); err != nil {
			return 0, err
		}
		n++
		next := tz.Next()
		switch next.Kind {
		case KValueSeparator:
			continue
		case KEndArray:
			return n, nil
		case KError:
			return 0, tz.Err()
		default:
			return 0, syntaxErrorf(tz.Line(), "expected ',' or ']', found %s", next.Kind)
		}
	}
}

// skipValue consumes one JSON value without allocating anything for
// it, used for unrecognized object members and for array elements
// beyond a fixed field's capacity.
func skipValue(tz tokenSource, depth, maxDepth int) error {
	if depth > maxDepth {
		return newError(ClassResource, tz.Line(), "maximum nesting depth exceeded")
	}
	lex := tz.Next()
	switch lex.Kind {
	case KError:
		return tz.Err()
	case KString, KNumber, KBoolean, KNull:
		return nil
	case KBeginObject:
		if tz.Peek().Kind == KEndObject {
			tz.Next()
			return nil
		}
		for {
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
			if err := skipValue(tz, depth+1, maxDepth); err != nil {
				return err
			}
			next := tz.Next()
			switch next.Kind {
			case KValueSeparator:
				continue
			case KEndObject:
				return nil
			case KError:
				return tz.Err()
			default:
				return syntaxErrorf(tz.Line(), "expected ',' or '}', found %s", next.Kind)
			}
		}
	case KBeginArray:
		if tz.Peek().Kind == KEndArray {
			tz.Next()
			return nil
		}
		for {
			if err := skipValue(tz, depth+1, maxDepth); err != nil {
				return err
			}
			next := tz.Next()
			switch next.Kind {
			case KValueSeparator:
				continue
			case KEndArray:
				return nil
			case KError:
				return tz.Err()
			default:
				return syntaxErrorf(tz.Line(), "expected ',' or ']', found %s", next.Kind)
			}
		}
	}
	return syntaxErrorf(tz.Line(), "expected a value, found %s", lex.Kind)
}
