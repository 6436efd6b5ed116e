package arenajson

import "reflect"

// FieldKind names the value class a Field decodes, replacing the
// original's JsonMemberType bitmask with a plain enum — there is
// nothing here that needs bit-testing, only a single tag per field.
type FieldKind uint8

const (
	KindInvalid FieldKind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindObject
	KindEnum
)

// Placement names how a field's value is stored in the host struct,
// replacing the original's separate TypePointer/TypeVector/TypeCarray
// bits with one small enum living alongside FieldKind in a Shape.
type Placement uint8

const (
	// PlacementInline stores the value directly in the struct.
	PlacementInline Placement = iota
	// PlacementPointer stores a pointer to an arena-allocated value,
	// nil when the JSON field is absent or null.
	PlacementPointer
	// PlacementArray stores a fixed-capacity inline array; JSON arrays
	// longer than the capacity are clamped, matching the original's
	// JsonTypeCarray semantics.
	PlacementArray
	// PlacementArrayPtr stores a pointer to the first of N
	// arena-allocated elements plus a separate, independently sized
	// length field (LenRepr), matching the original's
	// JsonTypeVector/JsonCAlloc pair.
	PlacementArrayPtr
)

// LenWidth names the integer width of an ArrayPtr field's paired
// length member.
type LenWidth uint8

const (
	LenNone LenWidth = iota
	LenSize8
	LenSize16
	LenSize32
)

func (w LenWidth) max() uint64 {
	switch w {
	case LenSize8:
		return 127
	case LenSize16:
		return 32767
	case LenSize32:
		return 1<<31 - 1
	}
	return 1<<31 - 1
}

// Shape is the full description of one field's storage, replacing the
// original's type-bitmask-plus-union-of-size-pointers with a small flat
// record.
type Shape struct {
	Kind      FieldKind
	Width     int // bits: 8/16/32/64 for Int/Uint/Float/Enum
	Placement Placement
	LenRepr   LenWidth
}

// Field describes one member of an object TypeDescriptor: its JSON
// name, its Shape, and (via reflect.StructField.Offset, resolved once
// at registration time) where it lives in the host struct — the Go
// equivalent of the original's static member-offset table computed
// against a canonical default instance.
type Field struct {
	JSONName string
	Shape    Shape
	Elem     *TypeDescriptor // element/object type for Object, Enum and array fields
	ArrayCap int             // capacity for PlacementArray
	Offset   uintptr
	LenOffset uintptr
}

// TypeDescriptor binds a Go struct type to its JSON field table (for
// KindObject) or its bitflag member names (for KindEnum).
type TypeDescriptor struct {
	Name   string
	GoType reflect.Type
	Fields []*Field
	Names  []string // enum member names, bit i -> Names[i]
}

// FieldDef is the declarative input to NewObjectType: one row per
// member, naming the Go struct field it binds to by name so the Offset
// is resolved once, at schema-registration time, rather than walked
// per document.
type FieldDef struct {
	JSONName string
	GoName   string
	Shape    Shape
	Elem     *TypeDescriptor
	ArrayCap int
	LenField string // Go field name of the paired length member, for PlacementArrayPtr
}

// NewObjectType builds a TypeDescriptor for a Go struct type, given a
// zero-value sample of it and its field table. It panics on a
// misdescribed schema (unknown field name, or an enum array — arrays
// of enum values are not supported, matching spec's Open Question
// decision) since a bad schema is a programming error caught once at
// init time, not a per-document data error.
func NewObjectType(name string, sample interface{}, defs []FieldDef) *TypeDescriptor {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	fields := make([]*Field, 0, len(defs))
	for _, d := range defs {
		sf, ok := t.FieldByName(d.GoName)
		if !ok {
			panic("arenajson: " + name + ": no such field " + d.GoName)
		}
		if d.Shape.Kind == KindEnum && (d.Shape.Placement == PlacementArray || d.Shape.Placement == PlacementArrayPtr) {
			panic("arenajson: " + name + "." + d.JSONName + ": arrays of enums are not supported")
		}
		f := &Field{
			JSONName: d.JSONName,
			Shape:    d.Shape,
			Elem:     d.Elem,
			ArrayCap: d.ArrayCap,
			Offset:   sf.Offset,
		}
		if d.LenField != "" {
			lf, ok := t.FieldByName(d.LenField)
			if !ok {
				panic("arenajson: " + name + ": no such length field " + d.LenField)
			}
			f.LenOffset = lf.Offset
		}
		fields = append(fields, f)
	}
	return &TypeDescriptor{Name: name, GoType: t, Fields: fields}
}

// NewEnumType builds a TypeDescriptor for a bitflag enum, names[i]
// naming bit i.
func NewEnumType(name string, names []string) *TypeDescriptor {
	if len(names) > 64 {
		panic("arenajson: " + name + ": more than 64 enum members")
	}
	return &TypeDescriptor{Name: name, Names: names}
}

func (t *TypeDescriptor) fieldByName(jsonName string) *Field {
	for _, f := range t.Fields {
		if f.JSONName == jsonName {
			return f
		}
	}
	return nil
}
