package arenajson

import "unicode/utf8"

// malformedRune is the sentinel codepoint peekRune reports alongside
// size -1 for an invalid lead byte, matching spec.md §4.B exactly
// (0xFFFE, not unicode/utf8's own 0xFFFD RuneError).
const malformedRune = rune(0xFFFE)

// peekRune decodes one UTF-8 codepoint at the start of data. size is
// -1 if data begins with an invalid encoding, in which case r is
// 0xFFFE rather than whatever was actually decoded.
func peekRune(data []byte) (r rune, size int) {
	if len(data) == 0 {
		return 0, 0
	}
	r, size = utf8.DecodeRune(data)
	if r == utf8.RuneError && size <= 1 {
		return malformedRune, -1
	}
	return r, size
}

// writeRune encodes r into dst, reporting whether it fit.
func writeRune(dst []byte, r rune) (int, bool) {
	n := utf8.RuneLen(r)
	if n < 0 {
		n = utf8.RuneLen(utf8.RuneError)
		r = utf8.RuneError
	}
	if n > len(dst) {
		return 0, false
	}
	return utf8.EncodeRune(dst, r), true
}

func isJSONWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) uint32 {
	switch {
	case b >= '0' && b <= '9':
		return uint32(b - '0')
	case b >= 'a' && b <= 'f':
		return uint32(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return uint32(b-'A') + 10
	}
	return 0
}
