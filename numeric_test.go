package arenajson

import "testing"

func TestParseNumberTags(t *testing.T) {
	cases := []struct {
		in   string
		tag  NumTag
		s64  int64
		u64  uint64
		f64  float64
	}{
		{"0", NumU64, 0, 0, 0},
		{"42", NumU64, 0, 42, 0},
		{"-7", NumS64, -7, 0, 0},
		{"1.5e2", NumF64, 0, 0, 150},
		{"-3.25", NumF64, 0, 0, -3.25},
		{"18446744073709551615", NumU64, 0, 18446744073709551615, 0},
	}
	for _, c := range cases {
		consumed, num, ok := parseNumber([]byte(c.in))
		if !ok {
			t.Fatalf("parseNumber(%q): not ok", c.in)
		}
		if consumed != len(c.in) {
			t.Fatalf("parseNumber(%q): consumed %d, want %d", c.in, consumed, len(c.in))
		}
		if num.Tag != c.tag {
			t.Fatalf("parseNumber(%q): tag %v, want %v", c.in, num.Tag, c.tag)
		}
		switch c.tag {
		case NumS64:
			if num.S64 != c.s64 {
				t.Fatalf("parseNumber(%q): s64 %d, want %d", c.in, num.S64, c.s64)
			}
		case NumU64:
			if num.U64 != c.u64 {
				t.Fatalf("parseNumber(%q): u64 %d, want %d", c.in, num.U64, c.u64)
			}
		case NumF64:
			if num.F64 != c.f64 {
				t.Fatalf("parseNumber(%q): f64 %v, want %v", c.in, num.F64, c.f64)
			}
		}
	}
}

func TestParseNumberAlsoS64(t *testing.T) {
	_, num, ok := parseNumber([]byte("9223372036854775807"))
	if !ok || num.Tag != NumU64 || !num.AlsoS64 {
		t.Fatalf("expected u64 also tagged s64, got %+v ok=%v", num, ok)
	}
	_, num, ok = parseNumber([]byte("18446744073709551615"))
	if !ok || num.Tag != NumU64 || num.AlsoS64 {
		t.Fatalf("expected u64 not s64-representable, got %+v ok=%v", num, ok)
	}
}

func TestParseNumberRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "-", ".5", "1.", "1e", "1.e2"} {
		if _, _, ok := parseNumber([]byte(in)); ok {
			t.Fatalf("parseNumber(%q) should fail", in)
		}
	}
}

func TestNumberAccessors(t *testing.T) {
	n := Number{Tag: NumF64, F64: 2.5}
	if v := n.AsFloat64(); v != 2.5 {
		t.Fatalf("AsFloat64() = %v, want 2.5", v)
	}
	if v, ok := n.AsInt64(); !ok || v != 2 {
		t.Fatalf("AsInt64() on float = (%v, %v), want (2, true)", v, ok)
	}
	u := Number{Tag: NumS64, S64: -1}
	if _, ok := u.AsUint64(); ok {
		t.Fatalf("AsUint64() on negative s64 should not be ok")
	}
}
