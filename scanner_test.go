package arenajson

import "testing"

func TestScannerBorrowsRawSlice(t *testing.T) {
	src := []byte(`"a\nb"`)
	s := NewScanner(src)
	lex := s.Next()
	if lex.Kind != KString {
		t.Fatalf("kind = %s, want string", lex.Kind)
	}
	// The Scanner borrows the raw (still-escaped) body verbatim.
	if lex.Str != `a\nb` {
		t.Fatalf("Str = %q, want %q", lex.Str, `a\nb`)
	}
}

func TestScannerNumberBoundary(t *testing.T) {
	s := NewScanner([]byte(`[1,2.5, -3]`))
	want := []struct {
		kind Kind
	}{
		{KBeginArray}, {KNumber}, {KValueSeparator}, {KNumber}, {KValueSeparator}, {KNumber}, {KEndArray}, {KEOF},
	}
	for i, w := range want {
		lex := s.Next()
		if lex.Kind != w.kind {
			t.Fatalf("token %d: got %s, want %s", i, lex.Kind, w.kind)
		}
	}
}

func TestScannerLineCounting(t *testing.T) {
	s := NewScanner([]byte("{\n\"a\":\n1}"))
	for s.Peek().Kind != KNumber {
		s.Next()
	}
	if s.Line() != 3 {
		t.Fatalf("Line() = %d, want 3", s.Line())
	}
}

func TestScannerAtResumesFromOffset(t *testing.T) {
	src := []byte(`[1,2,3]`)
	s := NewScanner(src)
	s.Next() // '['
	pos := s.Pos()
	sub := NewScannerAt(src[pos:], 1)
	lex := sub.Next()
	if v, _ := lex.Num.AsInt64(); lex.Kind != KNumber || v != 1 {
		t.Fatalf("sub-scanner first token = %v, want number 1", lex)
	}
}
