package arenajson

import "testing"

func TestNewObjectTypeResolvesOffsets(t *testing.T) {
	typ := configType()
	if typ.GoType.Name() != "Config" {
		t.Fatalf("GoType.Name() = %q, want Config", typ.GoType.Name())
	}
	f := typ.fieldByName("points")
	if f == nil {
		t.Fatalf("fieldByName(points) = nil")
	}
	if f.LenOffset == 0 {
		t.Fatalf("LenOffset not resolved for points field")
	}
}

func TestNewObjectTypePanicsOnUnknownField(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an unknown Go field name")
		}
	}()
	NewObjectType("Bad", Config{}, []FieldDef{
		{JSONName: "nope", GoName: "DoesNotExist", Shape: Shape{Kind: KindBool, Placement: PlacementInline}},
	})
}

func TestNewObjectTypePanicsOnEnumArray(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an array-of-enum field")
		}
	}()
	NewObjectType("Bad", Config{}, []FieldDef{
		{JSONName: "perms", GoName: "Perms", Shape: Shape{Kind: KindEnum, Width: 8, Placement: PlacementArray}, ArrayCap: 2},
	})
}

func TestNewEnumTypeLimitsTo64Members(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for >64 enum members")
		}
	}()
	names := make([]string, 65)
	for i := range names {
		names[i] = "m"
	}
	NewEnumType("TooBig", names)
}

func TestLenWidthMax(t *testing.T) {
	if LenSize8.max() != 127 {
		t.Fatalf("LenSize8.max() = %d, want 127", LenSize8.max())
	}
	if LenSize16.max() != 32767 {
		t.Fatalf("LenSize16.max() = %d, want 32767", LenSize16.max())
	}
	if LenSize32.max() != 1<<31-1 {
		t.Fatalf("LenSize32.max() = %d, want %d", LenSize32.max(), 1<<31-1)
	}
}
