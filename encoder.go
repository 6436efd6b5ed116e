package arenajson

import (
	"reflect"
	"strconv"
	"unsafe"
)

// EncodeOptions configures Encode's output.
type EncodeOptions struct {
	// Indent sets the per-level indent; empty disables pretty-printing.
	Indent string
}

var defaultEncodeOptions = EncodeOptions{Indent: "  "}

// Encode walks root (a pointer to the Go struct typ describes) against
// typ's schema and renders it as JSON. Escaping is applied to every
// string so the result always round-trips back through Decode/Parse —
// an explicit choice over the original's scanner-borrowed, unescaped
// strings, which only round-trip when the source had nothing to
// escape in the first place.
func Encode(root interface{}, typ *TypeDescriptor, opts *EncodeOptions) ([]byte, error) {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, schemaErrorf(0, "encode target must be a non-nil pointer")
	}
	if rv.Elem().Type() != typ.GoType {
		return nil, schemaErrorf(0, "encode target type %s does not match schema type %s", rv.Elem().Type(), typ.GoType)
	}
	o := defaultEncodeOptions
	if opts != nil {
		o = *opts
	}
	e := &encoder{indent: o.Indent}
	e.encodeObject(typ, unsafe.Pointer(rv.Pointer()), 0)
	return e.buf, nil
}

type encoder struct {
	buf    []byte
	indent string
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf = append(e.buf, '\n')
	for i := 0; i < depth; i++ {
		e.buf = append(e.buf, e.indent...)
	}
}

func (e *encoder) encodeObject(typ *TypeDescriptor, addr unsafe.Pointer, depth int) {
	e.buf = append(e.buf, '{')
	wrote := false
	for _, f := range typ.Fields {
		fAddr := unsafe.Add(addr, f.Offset)
		if f.Shape.Placement == PlacementPointer && isNilPointerField(fAddr) {
			continue // omit null pointer fields entirely
		}
		if wrote {
			e.buf = append(e.buf, ',')
		}
		wrote = true
		e.newline(depth + 1)
		e.encodeString(f.JSONName)
		e.buf = append(e.buf, ':')
		if e.indent != "" {
			e.buf = append(e.buf, ' ')
		}
		e.encodeField(f, addr, depth+1)
	}
	if wrote {
		e.newline(depth)
	}
	e.buf = append(e.buf, '}')
}

func isNilPointerField(addr unsafe.Pointer) bool {
	return *(*unsafe.Pointer)(addr) == nil
}

func (e *encoder) encodeField(f *Field, structAddr unsafe.Pointer, depth int) {
	fAddr := unsafe.Add(structAddr, f.Offset)
	switch f.Shape.Placement {
	case PlacementInline:
		e.encodeValue(f.Shape, f.Elem, fAddr, depth)
	case PlacementPointer:
		et := scalarOrObjectType(f)
		rv := reflect.NewAt(reflect.PointerTo(et), fAddr).Elem()
		e.encodeValue(f.Shape, f.Elem, unsafe.Pointer(rv.Pointer()), depth)
	case PlacementArray:
		e.encodeArray(f, fAddr, f.ArrayCap, depth)
	case PlacementArrayPtr:
		lenAddr := unsafe.Add(structAddr, f.LenOffset)
		n := readUint(lenAddr, f.Shape.LenRepr.widthBits())
		ptrVal := reflect.NewAt(reflect.PointerTo(scalarOrObjectType(f)), fAddr).Elem()
		base := unsafe.Pointer(ptrVal.Pointer())
		e.encodeArray(f, base, int(n), depth)
	}
}

func (e *encoder) encodeArray(f *Field, base unsafe.Pointer, n int, depth int) {
	e.buf = append(e.buf, '[')
	size := elemSize(f)
	for i := 0; i < n; i++ {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.newline(depth + 1)
		elemAddr := unsafe.Add(base, uintptr(i)*size)
		e.encodeValue(Shape{Kind: f.Shape.Kind, Width: f.Shape.Width}, f.Elem, elemAddr, depth+1)
	}
	if n > 0 {
		e.newline(depth)
	}
	e.buf = append(e.buf, ']')
}

func (e *encoder) encodeValue(shape Shape, elem *TypeDescriptor, addr unsafe.Pointer, depth int) {
	switch shape.Kind {
	case KindBool:
		if *(*bool)(addr) {
			e.buf = append(e.buf, "true"...)
		} else {
			e.buf = append(e.buf, "false"...)
		}
	case KindInt:
		e.buf = strconv.AppendInt(e.buf, readInt(addr, shape.Width), 10)
	case KindUint:
		e.buf = strconv.AppendUint(e.buf, readUint(addr, shape.Width), 10)
	case KindFloat:
		bits := 64
		if shape.Width == 32 {
			bits = 32
		}
		e.buf = strconv.AppendFloat(e.buf, readFloat(addr, shape.Width), 'g', -1, bits)
	case KindString:
		s := *(*string)(addr)
		e.encodeString(s)
	case KindEnum:
		bits := readUint(addr, shape.Width)
		e.encodeString(enumToString(bits, elem.Names))
	case KindObject:
		e.encodeObject(elem, addr, depth)
	default:
		e.buf = append(e.buf, "null"...)
	}
}

func readInt(addr unsafe.Pointer, width int) int64 {
	switch width {
	case 8:
		return int64(*(*int8)(addr))
	case 16:
		return int64(*(*int16)(addr))
	case 32:
		return int64(*(*int32)(addr))
	default:
		return *(*int64)(addr)
	}
}

func readUint(addr unsafe.Pointer, width int) uint64 {
	switch width {
	case 8:
		return uint64(*(*uint8)(addr))
	case 16:
		return uint64(*(*uint16)(addr))
	case 32:
		return uint64(*(*uint32)(addr))
	default:
		return *(*uint64)(addr)
	}
}

func readFloat(addr unsafe.Pointer, width int) float64 {
	if width == 32 {
		return float64(*(*float32)(addr))
	}
	return *(*float64)(addr)
}

const hexDigits = "0123456789abcdef"

// encodeString escapes s the way encoding/json and zap's safeAddString
// both do: quote, backslash, control bytes, leaving the rest of UTF-8
// untouched.
func (e *encoder) encodeString(s string) {
	e.buf = append(e.buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			e.buf = append(e.buf, '\\', c)
		case c == '\n':
			e.buf = append(e.buf, '\\', 'n')
		case c == '\r':
			e.buf = append(e.buf, '\\', 'r')
		case c == '\t':
			e.buf = append(e.buf, '\\', 't')
		case c < 0x20:
			e.buf = append(e.buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		default:
			e.buf = append(e.buf, c)
		}
	}
	e.buf = append(e.buf, '"')
}
