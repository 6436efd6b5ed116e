package arenajson

import "testing"

func TestEnumRoundTrip(t *testing.T) {
	names := []string{"A", "B", "C"}
	if got := enumToString(5, names); got != "A|C" {
		t.Fatalf("enumToString(5) = %q, want %q", got, "A|C")
	}
	if got := enumFromString("A|C", names); got != 5 {
		t.Fatalf("enumFromString(%q) = %d, want 5", "A|C", got)
	}
}

func TestEnumFromStringCaseInsensitiveAndLenient(t *testing.T) {
	names := []string{"Read", "Write", "Exec"}
	got := enumFromString("read | WRITE | bogus", names)
	want := uint64(1<<0 | 1<<1)
	if got != want {
		t.Fatalf("enumFromString = %d, want %d", got, want)
	}
}

func TestEnumToStringEmpty(t *testing.T) {
	if got := enumToString(0, []string{"A", "B"}); got != "" {
		t.Fatalf("enumToString(0) = %q, want empty", got)
	}
}
