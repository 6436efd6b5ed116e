package arenajson

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// CompressMode names how Serializer compresses the encoded DOM stream,
// adapted from the teacher's parsed_serialize.go Serializer, which
// caches a parsed tape to avoid re-lexing. Here the payload is a DOM
// tag stream rather than a tape, but the goal is the same: cache a
// parsed document (a flash-resident config blob, a value shipped
// between processes) without re-running the lexer.
type CompressMode uint8

const (
	// CompressNone stores the tag stream as-is.
	CompressNone CompressMode = iota
	// CompressFast applies klauspost/compress/s2, light and quick.
	CompressFast
	// CompressBest applies klauspost/compress/zstd, smaller but slower.
	CompressBest
)

const serializeVersion = 1

type domTag byte

const (
	tagNull domTag = iota
	tagFalse
	tagTrue
	tagS64
	tagU64
	tagF64
	tagString
	tagArrayBegin
	tagArrayEnd
	tagObjectBegin
	tagObjectEnd
)

// Serializer encodes and decodes a DOM Value to a compact byte stream.
// A Serializer may be reused across calls but is not safe for
// concurrent use, matching the teacher's Serializer contract.
type Serializer struct {
	mode CompressMode
	buf  bytes.Buffer
}

// NewSerializer creates a Serializer using mode.
func NewSerializer(mode CompressMode) *Serializer {
	return &Serializer{mode: mode}
}

// Serialize renders v as a tag stream and compresses it per s.mode.
func (s *Serializer) Serialize(v *Value) ([]byte, error) {
	s.buf.Reset()
	writeValue(&s.buf, v)
	raw := s.buf.Bytes()

	var compressed []byte
	switch s.mode {
	case CompressNone:
		compressed = raw
	case CompressFast:
		compressed = s2.Encode(nil, raw)
	case CompressBest:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		compressed = enc.EncodeAll(raw, nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("%w: unknown compress mode %d", ErrIntegrity, s.mode)
	}

	var out bytes.Buffer
	out.WriteByte(serializeVersion)
	out.WriteByte(byte(s.mode))
	var szBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(szBuf[:], uint64(len(raw)))
	out.Write(szBuf[:n])
	n = binary.PutUvarint(szBuf[:], uint64(len(compressed)))
	out.Write(szBuf[:n])
	out.Write(compressed)
	return out.Bytes(), nil
}

// Deserialize reconstructs a DOM Value from data produced by
// Serialize, allocating its nodes from nodeArena exactly as Parse
// would.
func (s *Serializer) Deserialize(data []byte, nodeArena *Arena) (*Value, error) {
	br := bytes.NewReader(data)
	ver, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if ver > serializeVersion {
		return nil, fmt.Errorf("%w: unsupported serialize version %d", ErrIntegrity, ver)
	}
	modeByte, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	rawSize, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	compSize, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	compressed := make([]byte, compSize)
	if _, err := io.ReadFull(br, compressed); err != nil {
		return nil, err
	}

	var raw []byte
	switch CompressMode(modeByte) {
	case CompressNone:
		raw = compressed
	case CompressFast:
		raw, err = s2.Decode(make([]byte, rawSize), compressed)
		if err != nil {
			return nil, err
		}
	case CompressBest:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		raw, err = dec.DecodeAll(compressed, make([]byte, 0, rawSize))
		dec.Close()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown compress mode %d", ErrIntegrity, modeByte)
	}
	if uint64(len(raw)) != rawSize {
		return nil, fmt.Errorf("%w: serialized size mismatch", ErrIntegrity)
	}

	v, rest, err := readValue(raw, nodeArena)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing bytes after deserialized value", ErrIntegrity)
	}
	return v, nil
}

func writeValue(w *bytes.Buffer, v *Value) {
	switch v.kind {
	case VNull:
		w.WriteByte(byte(tagNull))
	case VBool:
		if v.b {
			w.WriteByte(byte(tagTrue))
		} else {
			w.WriteByte(byte(tagFalse))
		}
	case VNumber:
		writeNumber(w, v.num)
	case VString:
		w.WriteByte(byte(tagString))
		writeLenPrefixed(w, v.str)
	case VArray:
		w.WriteByte(byte(tagArrayBegin))
		v.Elements(func(e *Value) bool {
			writeValue(w, e)
			return true
		})
		w.WriteByte(byte(tagArrayEnd))
	case VObject:
		w.WriteByte(byte(tagObjectBegin))
		v.Members(func(name string, val *Value) bool {
			writeLenPrefixed(w, name)
			writeValue(w, val)
			return true
		})
		w.WriteByte(byte(tagObjectEnd))
	}
}

func writeNumber(w *bytes.Buffer, n Number) {
	var tmp [8]byte
	switch n.Tag {
	case NumS64:
		w.WriteByte(byte(tagS64))
		binary.LittleEndian.PutUint64(tmp[:], uint64(n.S64))
	case NumU64:
		w.WriteByte(byte(tagU64))
		binary.LittleEndian.PutUint64(tmp[:], n.U64)
	default:
		w.WriteByte(byte(tagF64))
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(n.F64))
	}
	w.Write(tmp[:])
}

func writeLenPrefixed(w *bytes.Buffer, s string) {
	var szBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(szBuf[:], uint64(len(s)))
	w.Write(szBuf[:n])
	w.WriteString(s)
}

func readValue(data []byte, nodeArena *Arena) (*Value, []byte, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: truncated serialized value", ErrIntegrity)
	}
	tag := domTag(data[0])
	data = data[1:]
	v, err := allocFrom[Value](nodeArena)
	if err != nil {
		return nil, nil, err
	}
	switch tag {
	case tagNull:
		v.kind = VNull
	case tagFalse:
		v.kind, v.b = VBool, false
	case tagTrue:
		v.kind, v.b = VBool, true
	case tagS64, tagU64, tagF64:
		if len(data) < 8 {
			return nil, nil, fmt.Errorf("%w: truncated number", ErrIntegrity)
		}
		raw := binary.LittleEndian.Uint64(data[:8])
		data = data[8:]
		v.kind = VNumber
		switch tag {
		case tagS64:
			v.num = Number{Tag: NumS64, S64: int64(raw)}
		case tagU64:
			v.num = Number{Tag: NumU64, U64: raw}
			if raw <= 1<<63-1 {
				v.num.AlsoS64 = true
				v.num.S64 = int64(raw)
			}
		case tagF64:
			v.num = Number{Tag: NumF64, F64: math.Float64frombits(raw)}
		}
	case tagString:
		s, rest, err := readLenPrefixed(data)
		if err != nil {
			return nil, nil, err
		}
		v.kind, v.str = VString, s
		data = rest
	case tagArrayBegin:
		v.kind = VArray
		for {
			if len(data) == 0 {
				return nil, nil, fmt.Errorf("%w: unterminated array", ErrIntegrity)
			}
			if domTag(data[0]) == tagArrayEnd {
				data = data[1:]
				break
			}
			var elem *Value
			var err error
			elem, data, err = readValue(data, nodeArena)
			if err != nil {
				return nil, nil, err
			}
			cell, err := allocFrom[arrayCell](nodeArena)
			if err != nil {
				return nil, nil, err
			}
			cell.value = elem
			if v.arrTail == nil {
				v.arrHead = cell
			} else {
				v.arrTail.next = cell
			}
			v.arrTail = cell
			v.arrCount++
		}
	case tagObjectBegin:
		v.kind = VObject
		for {
			if len(data) == 0 {
				return nil, nil, fmt.Errorf("%w: unterminated object", ErrIntegrity)
			}
			if domTag(data[0]) == tagObjectEnd {
				data = data[1:]
				break
			}
			name, rest, err := readLenPrefixed(data)
			if err != nil {
				return nil, nil, err
			}
			var val *Value
			val, data, err = readValue(rest, nodeArena)
			if err != nil {
				return nil, nil, err
			}
			cell, err := allocFrom[objectCell](nodeArena)
			if err != nil {
				return nil, nil, err
			}
			cell.name = name
			cell.value = val
			if v.objTail == nil {
				v.objHead = cell
			} else {
				v.objTail.next = cell
			}
			v.objTail = cell
			v.objCount++
		}
	default:
		return nil, nil, fmt.Errorf("%w: unknown serialized tag %d", ErrIntegrity, tag)
	}
	return v, data, nil
}

func readLenPrefixed(data []byte) (string, []byte, error) {
	n, consumed := binary.Uvarint(data)
	if consumed <= 0 {
		return "", nil, fmt.Errorf("%w: bad length prefix", ErrIntegrity)
	}
	data = data[consumed:]
	if uint64(len(data)) < n {
		return "", nil, fmt.Errorf("%w: truncated string", ErrIntegrity)
	}
	return string(data[:n]), data[n:], nil
}
