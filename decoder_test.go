package arenajson

import (
	"strings"
	"testing"
)

func newArenas() (*Arena, *Arena) {
	return NewArena(8192, "long"), NewArena(4096, "scratch")
}

func TestDecodeIntoBasicFields(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	data := []byte(`{"name":"widget","age":7,"active":true,"perms":"Read|Exec"}`)
	if err := DecodeInto(data, &cfg, typ, long, scratch, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if cfg.Name != "widget" || cfg.Age != 7 || !cfg.Active {
		t.Fatalf("decoded = %+v", cfg)
	}
	if cfg.Perms != 1<<0|1<<2 {
		t.Fatalf("Perms = %b, want bits 0 and 2 set", cfg.Perms)
	}
}

func TestDecodeIntoNestedPointerAndFixedArray(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	data := []byte(`{"name":"n","nested":{"x":10,"y":20},"fixed":[1,2,3,4,5]}`)
	if err := DecodeInto(data, &cfg, typ, long, scratch, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if cfg.Nested == nil || cfg.Nested.X != 10 || cfg.Nested.Y != 20 {
		t.Fatalf("Nested = %+v", cfg.Nested)
	}
	if cfg.Fixed != [3]int32{1, 2, 3} {
		t.Fatalf("Fixed = %v, want clamped to [1 2 3]", cfg.Fixed)
	}
}

func TestDecodeIntoNullPointerStaysNil(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	data := []byte(`{"nested":null}`)
	if err := DecodeInto(data, &cfg, typ, long, scratch, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if cfg.Nested != nil {
		t.Fatalf("Nested = %+v, want nil", cfg.Nested)
	}
}

func TestDecodeIntoArrayPtrClampsToLenWidth(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config

	var b strings.Builder
	b.WriteString(`{"points":[`)
	for i := 0; i < 200; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"x":1,"y":2}`)
	}
	b.WriteString(`]}`)

	if err := DecodeInto([]byte(b.String()), &cfg, typ, long, scratch, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if cfg.NPoints != 127 {
		t.Fatalf("NPoints = %d, want 127 (clamped from 200)", cfg.NPoints)
	}
	if cfg.Points == nil {
		t.Fatalf("Points = nil, want a populated array")
	}
}

// TestDecodeIntoArrayPtrFollowedByMoreFields guards against a
// re-tokenizing decodeArrayPtr resuming the shared lexer/scanner at
// the array's opening '[' instead of its closing ']': it places the
// ArrayPtr field before other members so a post-array member and the
// closing '}' must still parse correctly.
func TestDecodeIntoArrayPtrFollowedByMoreFields(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	data := []byte(`{"points":[{"x":1,"y":2},{"x":3,"y":4}],"name":"after","age":9}`)
	if err := DecodeInto(data, &cfg, typ, long, scratch, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if cfg.NPoints != 2 || cfg.Points == nil {
		t.Fatalf("Points/NPoints = %v/%d, want 2 populated points", cfg.Points, cfg.NPoints)
	}
	if cfg.Name != "after" || cfg.Age != 9 {
		t.Fatalf("fields after the array were not decoded: %+v", cfg)
	}
}

// TestDecodeIntoEmptyArrayPtrFollowedByMoreFields covers the
// clamped-to-zero early-return path in decodeArrayPtr, which must
// still resync the shared tokenizer past the empty array's ']'.
func TestDecodeIntoEmptyArrayPtrFollowedByMoreFields(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	data := []byte(`{"points":[],"name":"after"}`)
	if err := DecodeInto(data, &cfg, typ, long, scratch, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if cfg.NPoints != 0 || cfg.Points != nil {
		t.Fatalf("Points/NPoints = %v/%d, want 0 and nil", cfg.Points, cfg.NPoints)
	}
	if cfg.Name != "after" {
		t.Fatalf("Name = %q, want %q (field after the empty array)", cfg.Name, "after")
	}
}

func TestDecodeIntoUnknownKeysSkipped(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	data := []byte(`{"unknown":{"deep":[1,2,{"x":true}]},"name":"ok"}`)
	if err := DecodeInto(data, &cfg, typ, long, scratch, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if cfg.Name != "ok" {
		t.Fatalf("Name = %q, want ok", cfg.Name)
	}
}

func TestDecodeIntoBadNumberErrorFormat(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	err := DecodeInto([]byte(`{"bad": 1.e}`), &cfg, typ, long, scratch, nil)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if err.Error() != "line 1: bad number" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "line 1: bad number")
	}
}

func TestDecodeIntoIterMatchesRecursive(t *testing.T) {
	typ := configType()
	long1, scratch1 := newArenas()
	long2, scratch2 := newArenas()
	data := []byte(`{"name":"n","nested":{"x":1,"y":2},"fixed":[9,8,7]}`)

	var a, b Config
	if err := DecodeInto(data, &a, typ, long1, scratch1, nil); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if err := DecodeIntoIter(data, &b, typ, long2, scratch2, nil); err != nil {
		t.Fatalf("DecodeIntoIter: %v", err)
	}
	if a.Name != b.Name || *a.Nested != *b.Nested || a.Fixed != b.Fixed {
		t.Fatalf("recursive and iterative decode diverged: %+v vs %+v", a, b)
	}
}

func TestDecodeIntoMaxDepthExceeded(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var cfg Config
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString(`{"unknown":`)
	}
	b.WriteString(`1`)
	for i := 0; i < 10; i++ {
		b.WriteByte('}')
	}
	opts := &DecodeOptions{MaxDepth: 3}
	if err := DecodeInto([]byte(b.String()), &cfg, typ, long, scratch, opts); err == nil {
		t.Fatalf("expected a max-depth error")
	}
}

func TestDecodeIntoTypeMismatch(t *testing.T) {
	typ := configType()
	long, scratch := newArenas()
	var notConfig int
	if err := DecodeInto([]byte(`{}`), &notConfig, typ, long, scratch, nil); err == nil {
		t.Fatalf("expected a schema-mismatch error for the wrong target type")
	}
}
