package arenajson

import (
	"fmt"
	"reflect"
	"unsafe"
)

const ptrAlign = int(unsafe.Sizeof(uintptr(0)))

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// Arena is a bump allocator over a single, fixed backing buffer. Every
// sub-allocation is served by advancing a cursor; nothing is freed
// piecemeal, only rewound by Scope or Reset. This is the one place in
// the codec that touches the general allocator per document: one
// buffer up front, not one allocation per field.
type Arena struct {
	name string
	buf  []byte
	cur  int
}

// NewArena allocates a backing buffer of the given capacity.
func NewArena(capacity int, name string) *Arena {
	a := &Arena{name: name}
	a.Init(make([]byte, capacity), name)
	return a
}

// Init points the arena at caller-supplied memory, discarding any prior
// contents. Use this to reuse a buffer across documents without
// touching the general allocator at all.
func (a *Arena) Init(backing []byte, name string) {
	a.name = name
	a.buf = backing
	a.cur = 0
}

func (a *Arena) Name() string { return a.name }
func (a *Arena) Len() int     { return a.cur }
func (a *Arena) Cap() int     { return len(a.buf) }

// Reset rewinds the cursor to zero. It does not zero memory; callers
// that need a clean slate for security-sensitive data should use
// NewArena again.
func (a *Arena) Reset() { a.cur = 0 }

// AllocAligned bump-allocates size bytes aligned to align (a power of
// two), returning ErrResource-wrapped error if the arena is exhausted.
func (a *Arena) AllocAligned(size, align int) ([]byte, error) {
	offset := alignUp(a.cur, align)
	end := offset + size
	if end < offset || end > len(a.buf) {
		return nil, fmt.Errorf("%w: %s arena exhausted (need %d, have %d)", ErrResource, a.name, size, len(a.buf)-a.cur)
	}
	a.cur = end
	return a.buf[offset:end:end], nil
}

// Alloc bump-allocates size bytes at pointer alignment.
func (a *Arena) Alloc(size int) ([]byte, error) {
	return a.AllocAligned(size, ptrAlign)
}

// Checkout exposes the unused tail of the arena, aligned to pointer
// width, without committing any of it. The caller writes into the
// returned slice and then calls Commit with the absolute offset one
// past the last byte written. This is how the lexer writes unescaped
// string bytes in place without knowing their final length up front.
func (a *Arena) Checkout() (region []byte, start int) {
	start = alignUp(a.cur, ptrAlign)
	if start > len(a.buf) {
		start = len(a.buf)
	}
	return a.buf[start:len(a.buf):len(a.buf)], start
}

// Commit advances the cursor to watermark, an absolute offset returned
// by adding bytes-written to the start value Checkout handed back.
func (a *Arena) Commit(watermark int) error {
	if watermark < a.cur || watermark > len(a.buf) {
		return fmt.Errorf("%w: commit watermark %d out of range [%d,%d]", ErrIntegrity, watermark, a.cur, len(a.buf))
	}
	a.cur = watermark
	return nil
}

// Scope marks a cursor position on Enter and rewinds to it on Exit,
// giving bump-allocated scratch memory stack discipline without any
// per-object bookkeeping.
type Scope struct {
	a    *Arena
	mark int
}

// Enter opens a new rewindable scope at the current cursor.
func (a *Arena) Enter() *Scope {
	return &Scope{a: a, mark: a.cur}
}

// Exit rewinds the arena to the cursor position recorded by Enter.
func (s *Scope) Exit() {
	s.a.cur = s.mark
}

// allocFrom bump-allocates space for one T from the arena and returns
// a pointer to it, zero-initialized. It is used for the codec's own
// fixed-shape node types (DOM cells, decoder stack frames) where T is
// known at compile time; the schema-driven decoder, which binds to
// caller types only known at runtime, uses allocType instead.
func allocFrom[T any](a *Arena) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))
	b, err := a.AllocAligned(size, align)
	if err != nil {
		return nil, err
	}
	p := (*T)(unsafe.Pointer(&b[0]))
	*p = zero
	return p, nil
}

// allocType bump-allocates space for one value of the given reflect
// type and returns a reflect.Value addressing it in place, zeroed.
// This is the schema-driven counterpart to allocFrom: the decoder uses
// it to construct pointer-placement objects and array elements
// directly inside the arena, never through reflect.New (which would
// hit the general allocator once per object).
func allocType(a *Arena, t reflect.Type) (reflect.Value, error) {
	size := int(t.Size())
	align := int(t.Align())
	if size == 0 {
		size = 1
	}
	b, err := a.AllocAligned(size, align)
	if err != nil {
		return reflect.Value{}, err
	}
	clear(b)
	return reflect.NewAt(t, unsafe.Pointer(&b[0])), nil
}
