package arenajson

// Point and Config are the shared schema fixtures used by
// schema_test.go, decoder_test.go and encoder_test.go.

type Point struct {
	X int32
	Y int32
}

type Config struct {
	Name    string
	Age     int32
	Active  bool
	Perms   uint8
	Nested  *Point
	Fixed   [3]int32
	Points  *Point
	NPoints uint8
}

func pointType() *TypeDescriptor {
	return NewObjectType("Point", Point{}, []FieldDef{
		{JSONName: "x", GoName: "X", Shape: Shape{Kind: KindInt, Width: 32, Placement: PlacementInline}},
		{JSONName: "y", GoName: "Y", Shape: Shape{Kind: KindInt, Width: 32, Placement: PlacementInline}},
	})
}

func permsType() *TypeDescriptor {
	return NewEnumType("Perms", []string{"Read", "Write", "Exec"})
}

func configType() *TypeDescriptor {
	pt := pointType()
	return NewObjectType("Config", Config{}, []FieldDef{
		{JSONName: "name", GoName: "Name", Shape: Shape{Kind: KindString, Placement: PlacementInline}},
		{JSONName: "age", GoName: "Age", Shape: Shape{Kind: KindInt, Width: 32, Placement: PlacementInline}},
		{JSONName: "active", GoName: "Active", Shape: Shape{Kind: KindBool, Placement: PlacementInline}},
		{JSONName: "perms", GoName: "Perms", Shape: Shape{Kind: KindEnum, Width: 8, Placement: PlacementInline}, Elem: permsType()},
		{JSONName: "nested", GoName: "Nested", Shape: Shape{Kind: KindObject, Placement: PlacementPointer}, Elem: pt},
		{JSONName: "fixed", GoName: "Fixed", Shape: Shape{Kind: KindInt, Width: 32, Placement: PlacementArray}, ArrayCap: 3},
		{JSONName: "points", GoName: "Points", Shape: Shape{Kind: KindObject, Placement: PlacementArrayPtr, LenRepr: LenSize8}, Elem: pt, LenField: "NPoints"},
	})
}
