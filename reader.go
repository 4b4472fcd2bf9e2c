// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagtape

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// A Reader decodes a TLV-encoded byte buffer. It holds the input cursor, a
// running count of bytes consumed, and at most one header it has read ahead
// of the field the caller actually asked for. Byte-string and text reads are
// zero-copy: the returned slices borrow directly from the input and stay
// valid for its lifetime.
type Reader struct {
	data      []byte
	totalRead int
	lookahead *Header
}

// NewReader returns a Reader over data. data is borrowed, not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// IsEmpty reports whether the reader has no more input and no pending
// lookahead.
func (r *Reader) IsEmpty() bool {
	return len(r.data) == 0 && r.lookahead == nil
}

// TotalRead reports the number of bytes consumed from the input so far.
// Pending lookahead counts as consumed, since its header bytes have already
// been read from the input.
func (r *Reader) TotalRead() int { return r.totalRead }

// slice consumes and returns the next n bytes, or ErrInputTooShort if fewer
// remain.
func (r *Reader) slice(n int) ([]byte, error) {
	if len(r.data) < n {
		return nil, ErrInputTooShort
	}
	s := r.data[:n]
	r.data = r.data[n:]
	r.totalRead += n
	return s, nil
}

// readHeader reads one header from the input, without consulting or
// touching the lookahead slot.
func (r *Reader) readHeader() (Header, error) {
	b, err := r.slice(1)
	if err != nil {
		return Header{}, err
	}
	wire := wireFromByte(b[0])
	idx := b[0] &^ wireMask
	var tag uint16
	switch {
	case idx < 30:
		tag = uint16(idx)
	case idx == 30:
		b, err := r.slice(1)
		if err != nil {
			return Header{}, err
		}
		tag = uint16(b[0])
	default:
		b, err := r.slice(2)
		if err != nil {
			return Header{}, err
		}
		tag = binary.LittleEndian.Uint16(b)
	}
	return Header{Wire: wire, Tag: tag}, nil
}

// skipUpToTag consumes any pending lookahead first, then reads and skips
// headers forward until it finds one whose tag is >= target. That header is
// returned; if its tag exceeds target it is stashed in the lookahead slot
// for the next call.
func (r *Reader) skipUpToTag(target uint16) (Header, error) {
	hdr, err := r.takeHeader()
	if err != nil {
		return Header{}, err
	}
	for hdr.Tag < target {
		if err := r.SkipData(hdr.Wire); err != nil {
			return Header{}, err
		}
		hdr, err = r.readHeader()
		if err != nil {
			return Header{}, err
		}
	}
	return hdr, nil
}

// takeHeader returns the pending lookahead header if there is one, else
// reads a fresh one.
func (r *Reader) takeHeader() (Header, error) {
	if r.lookahead != nil {
		hdr := *r.lookahead
		r.lookahead = nil
		return hdr, nil
	}
	return r.readHeader()
}

// PeekHeader returns the next header without consuming it from the
// caller's perspective: a later call to GetTag, GetOptionalTag, or
// PeekHeader itself will see the same header again.
func (r *Reader) PeekHeader() (Header, error) {
	hdr, err := r.takeHeader()
	if err != nil {
		return Header{}, err
	}
	r.lookahead = &hdr
	return hdr, nil
}

// TakeBounded consumes and returns the next n bytes as an independent
// sub-slice, for decoding a nested record or union body whose declared
// length has already been read. Any pending lookahead is discarded first,
// since a bounded body starts its own fresh header stream.
func (r *Reader) TakeBounded(n int) ([]byte, error) {
	r.lookahead = nil
	return r.slice(n)
}

// NextHeader advances unconditionally to the next header in the stream,
// without regard to any target tag: ok is false once the input (and any
// lookahead) is exhausted. This is for tools that walk a buffer they have
// no schema for, such as a debugging dump — ordinary schema-driven decoding
// always goes through GetTag/GetOptionalTag instead.
func (r *Reader) NextHeader() (hdr Header, ok bool, err error) {
	hdr, err = r.takeHeader()
	if err == ErrInputTooShort {
		return Header{}, false, nil
	} else if err != nil {
		return Header{}, false, err
	}
	return hdr, true, nil
}

// GetTag requires the next field to carry exactly target as its tag. A
// higher tag on the wire is ErrInvalidEncoding (the field is missing, and it
// was required); end of input is ErrInputTooShort.
func (r *Reader) GetTag(target uint16) (Wire, error) {
	hdr, err := r.skipUpToTag(target)
	if err != nil {
		return 0, err
	}
	if hdr.Tag > target {
		r.lookahead = &hdr
		return 0, ErrInvalidEncoding
	}
	return hdr.Wire, nil
}

// GetOptionalTag looks for target among the upcoming tags. It reports
// present=true and the field's wire class on an exact match, and
// present=false (with no bytes consumed beyond the lookahead) if the next
// tag exceeds target or the input runs out while searching — both of which
// legitimately mean a trailing optional field is absent.
func (r *Reader) GetOptionalTag(target uint16) (wire Wire, present bool, err error) {
	hdr, err := r.skipUpToTag(target)
	if err == ErrInputTooShort {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	r.lookahead = &hdr
	if hdr.Tag > target {
		return 0, false, nil
	}
	return hdr.Wire, true, nil
}

// SkipData advances past a value of the given wire class without
// interpreting it, using only the wire class to know its shape. REPEAT is
// skipped recursively; each of its sub-items must itself carry tag 0.
func (r *Reader) SkipData(wire Wire) error {
	switch wire {
	case QUAD:
		_, err := r.slice(8)
		return err
	case INT1:
		_, err := r.slice(1)
		return err
	case INT2:
		_, err := r.slice(2)
		return err
	case INT4:
		_, err := r.slice(4)
		return err
	case BLK1, BLK2, BLK4:
		n, err := r.ReadLen(wire)
		if err != nil {
			return err
		}
		_, err = r.slice(n)
		return err
	case REPEAT:
		n, err := r.ReadRepeatedLen(wire)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			hdr, err := r.readHeader()
			if err != nil {
				return err
			}
			if hdr.Tag != 0 {
				return ErrInvalidEncoding
			}
			if err := r.SkipData(hdr.Wire); err != nil {
				return err
			}
		}
		return nil
	default:
		return ErrInvalidEncoding
	}
}

// readSigned reads the payload for wire and returns it sign-extended to 64
// bits. This is the single primitive every integer, bool, char, and float
// bit-pattern read is built from: the payload is always a plain two's
// complement (or raw bit) image, never a zigzag-transformed one.
func (r *Reader) readSigned(wire Wire) (int64, error) {
	switch wire {
	case INT1:
		b, err := r.slice(1)
		if err != nil {
			return 0, err
		}
		return int64(int8(b[0])), nil
	case INT2:
		b, err := r.slice(2)
		if err != nil {
			return 0, err
		}
		return int64(int16(binary.LittleEndian.Uint16(b))), nil
	case INT4:
		b, err := r.slice(4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.LittleEndian.Uint32(b))), nil
	case QUAD:
		b, err := r.slice(8)
		if err != nil {
			return 0, err
		}
		return int64(binary.LittleEndian.Uint64(b)), nil
	default:
		return 0, ErrInvalidEncoding
	}
}

// ReadBool reads a boolean from wire: any integer wire class is accepted,
// with a zero value meaning false.
func (r *Reader) ReadBool(wire Wire) (bool, error) {
	v, err := r.readSigned(wire)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadInt8 requires wire == INT1 and returns its raw byte.
func (r *Reader) ReadInt8(wire Wire) (int8, error) {
	if wire != INT1 {
		return 0, ErrInvalidEncoding
	}
	v, err := r.readSigned(wire)
	return int8(v), err
}

// ReadInt32 reads an integer of any width up to INT4 (INT1/INT2/INT4) and
// sign-extends it.
func (r *Reader) ReadInt32(wire Wire) (int32, error) {
	if wire == QUAD {
		return 0, ErrInvalidEncoding
	}
	v, err := r.readSigned(wire)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadInt64 reads an integer of any width (INT1/INT2/INT4/QUAD) and
// sign-extends it.
func (r *Reader) ReadInt64(wire Wire) (int64, error) {
	return r.readSigned(wire)
}

// ReadUint32 reads an unsigned value encoded via the INT1/INT2/INT4/QUAD
// rule and returns its low 32 bits.
func (r *Reader) ReadUint32(wire Wire) (uint32, error) {
	v, err := r.readSigned(wire)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// ReadUint64 reads an unsigned 64-bit value encoded via the INT1/INT2/INT4/
// QUAD rule.
func (r *Reader) ReadUint64(wire Wire) (uint64, error) {
	v, err := r.readSigned(wire)
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

// ReadFloat32 requires wire == INT4 and reinterprets its bytes as an IEEE
// 754 single-precision float.
func (r *Reader) ReadFloat32(wire Wire) (float32, error) {
	if wire != INT4 {
		return 0, ErrInvalidEncoding
	}
	v, err := r.readSigned(wire)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// ReadFloat64 requires wire == QUAD and reinterprets its bytes as an IEEE
// 754 double-precision float.
func (r *Reader) ReadFloat64(wire Wire) (float64, error) {
	if wire != QUAD {
		return 0, ErrInvalidEncoding
	}
	v, err := r.readSigned(wire)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// ReadChar reads a scalar value and validates it as a Unicode code point. The
// full-width value is checked against the 2^32 ceiling before narrowing, so
// a QUAD-framed value with any bit set above the low 32 is rejected rather
// than aliasing down into a small, spuriously valid code point.
func (r *Reader) ReadChar(wire Wire) (rune, error) {
	raw, err := r.readSigned(wire)
	if err != nil {
		return 0, err
	}
	var v uint64
	if wire == QUAD {
		v = uint64(raw)
	} else {
		v = uint64(uint32(raw))
	}
	if v >= 1<<32 || v > utf8.MaxRune || !utf8.ValidRune(rune(v)) {
		return 0, ErrInvalidEncoding
	}
	return rune(v), nil
}

// ReadLen reads a BLK1/BLK2/BLK4 length payload.
func (r *Reader) ReadLen(wire Wire) (int, error) {
	switch wire {
	case BLK1:
		b, err := r.slice(1)
		if err != nil {
			return 0, err
		}
		return int(b[0]), nil
	case BLK2:
		b, err := r.slice(2)
		if err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint16(b)), nil
	case BLK4:
		b, err := r.slice(4)
		if err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint32(b)), nil
	default:
		return 0, ErrInvalidEncoding
	}
}

// ReadRepeatedLen reads a REPEAT count: always a 4-byte LE unsigned integer.
func (r *Reader) ReadRepeatedLen(wire Wire) (int, error) {
	if wire != REPEAT {
		return 0, ErrInvalidEncoding
	}
	b, err := r.slice(4)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

// ReadBytes reads a length-framed byte string: len-1 payload bytes followed
// by a mandatory trailing zero. The returned slice borrows from the input.
func (r *Reader) ReadBytes(wire Wire) ([]byte, error) {
	n, err := r.ReadLen(wire)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, ErrInvalidEncoding
	}
	data, err := r.slice(n - 1)
	if err != nil {
		return nil, err
	}
	term, err := r.slice(1)
	if err != nil {
		return nil, err
	}
	if term[0] != 0 {
		return nil, ErrInvalidEncoding
	}
	return data, nil
}
