package arenajson

import (
	"testing"
	"unsafe"
)

func TestArenaAllocAndReset(t *testing.T) {
	a := NewArena(64, "test")
	b1, err := a.Alloc(8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if len(b1) != 8 {
		t.Fatalf("len(b1) = %d, want 8", len(b1))
	}
	before := a.Len()
	a.Reset()
	if a.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", a.Len())
	}
	if before == 0 {
		t.Fatalf("expected non-zero cursor before reset")
	}
}

func TestArenaAllocExhausted(t *testing.T) {
	a := NewArena(4, "tiny")
	if _, err := a.Alloc(64); err == nil {
		t.Fatalf("expected resource-exhausted error")
	}
}

func TestArenaScopeRewinds(t *testing.T) {
	a := NewArena(64, "scope")
	scope := a.Enter()
	if _, err := a.Alloc(16); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	scope.Exit()
	if a.Len() != 0 {
		t.Fatalf("Len() after Exit = %d, want 0", a.Len())
	}
}

func TestArenaCheckoutCommit(t *testing.T) {
	a := NewArena(64, "checkout")
	region, start := a.Checkout()
	copy(region, "hello")
	if err := a.Commit(start + 5); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if a.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", a.Len())
	}
}

func TestAllocFromZeroesAndAligns(t *testing.T) {
	a := NewArena(256, "fromtest")
	type node struct {
		X int64
		Y int32
	}
	if _, err := a.AllocAligned(1, 1); err != nil {
		t.Fatalf("AllocAligned: %v", err)
	}
	n, err := allocFrom[node](a)
	if err != nil {
		t.Fatalf("allocFrom: %v", err)
	}
	if n.X != 0 || n.Y != 0 {
		t.Fatalf("allocFrom did not zero-initialize: %+v", n)
	}
	if uintptr(unsafe.Pointer(n))%unsafe.Alignof(*n) != 0 {
		t.Fatalf("allocFrom returned %p, not aligned to %d", n, unsafe.Alignof(*n))
	}
}
