// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagtape

import (
	"bytes"
	"encoding/binary"
	"math"
)

// A Writer accumulates a TLV-encoded byte buffer. Each push method appends
// one tagged value. A Writer has no notion of "current tag" on its own; the
// tlv package's structured encoder supplies the tag for every call, which is
// why every push method here takes it explicitly.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer ready to accept pushes.
func NewWriter() *Writer { return new(Writer) }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the accumulated buffer. The caller owns the returned slice.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// PushBool emits v as an INT1 of 0 or 1.
func (w *Writer) PushBool(tag uint16, v bool) {
	WriteHeader(&w.buf, INT1, tag)
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// requiredSpaceI32 computes the zigzag-informed byte count needed to hold v:
// at least 1, never more than 4. Zigzag maps small-magnitude negatives to
// small unsigned values so that it, not the raw bit pattern, determines how
// many bytes the two's-complement payload actually needs.
func requiredSpaceI32(v int32) int {
	z := uint32(v<<1) ^ uint32(v>>31)
	z |= 1 // guarantee a set bit so the loop below runs at least once
	n := 0
	for z != 0 {
		n++
		z >>= 8
	}
	return n
}

// PushInt8 emits v as an INT1, raw two's complement.
func (w *Writer) PushInt8(tag uint16, v int8) {
	WriteHeader(&w.buf, INT1, tag)
	w.buf.WriteByte(byte(v))
}

// PushInt32 emits v as the narrowest of INT1/INT2/INT4 that holds it,
// writing the plain (non-zigzagged) two's complement value truncated to
// that width.
func (w *Writer) PushInt32(tag uint16, v int32) {
	switch requiredSpaceI32(v) {
	case 1:
		WriteHeader(&w.buf, INT1, tag)
		w.buf.WriteByte(byte(int8(v)))
	case 2:
		WriteHeader(&w.buf, INT2, tag)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(int16(v)))
		w.buf.Write(b[:])
	default:
		WriteHeader(&w.buf, INT4, tag)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		w.buf.Write(b[:])
	}
}

// PushQuad emits v as a QUAD: the raw 8-byte LE image of v.
func (w *Writer) PushQuad(tag uint16, v uint64) {
	WriteHeader(&w.buf, QUAD, tag)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// PushInt64 emits v using the INT1/INT2/INT4 rule when it fits in a signed
// 32-bit value, and a full QUAD image otherwise.
func (w *Writer) PushInt64(tag uint16, v int64) {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		w.PushInt32(tag, int32(v))
		return
	}
	w.PushQuad(tag, uint64(v))
}

// PushUint8 widens v to a 32-bit signed value and follows the INT1/INT2/INT4
// rule.
func (w *Writer) PushUint8(tag uint16, v uint8) { w.PushInt32(tag, int32(v)) }

// PushUint16 widens v to a 32-bit signed value and follows the INT1/INT2/INT4
// rule.
func (w *Writer) PushUint16(tag uint16, v uint16) { w.PushInt32(tag, int32(v)) }

// PushUint32 follows the INT1/INT2/INT4 rule when v fits in a signed 32-bit
// value, and emits a full QUAD image otherwise.
func (w *Writer) PushUint32(tag uint16, v uint32) {
	if v <= math.MaxInt32 {
		w.PushInt32(tag, int32(v))
		return
	}
	w.PushQuad(tag, uint64(v))
}

// PushUint64 reinterprets v as a signed 64-bit value and follows PushInt64's
// rule, which means it always emits as QUAD once the high bit is set.
func (w *Writer) PushUint64(tag uint16, v uint64) { w.PushInt64(tag, int64(v)) }

// PushFloat32 emits v as an INT4 carrying its raw LE bit image.
func (w *Writer) PushFloat32(tag uint16, v float32) {
	WriteHeader(&w.buf, INT4, tag)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf.Write(b[:])
}

// PushFloat64 emits v as a QUAD carrying its raw LE bit image.
func (w *Writer) PushFloat64(tag uint16, v float64) {
	WriteHeader(&w.buf, QUAD, tag)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

// PushChar promotes v to unsigned 32 bits and encodes it as an integer.
func (w *Writer) PushChar(tag uint16, v rune) { w.PushUint32(tag, uint32(v)) }

// PushBytes emits data length-framed with a trailing zero byte: the declared
// length is len(data)+1.
func (w *Writer) PushBytes(tag uint16, data []byte) error {
	if err := w.PushLen(tag, len(data)+1); err != nil {
		return err
	}
	w.buf.Write(data)
	w.buf.WriteByte(0)
	return nil
}

// PushString emits s as PushBytes would emit []byte(s).
func (w *Writer) PushString(tag uint16, s string) error {
	if err := w.PushLen(tag, len(s)+1); err != nil {
		return err
	}
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
	return nil
}

// PushLen writes a BLK1, BLK2, or BLK4 header (picked by the magnitude of n)
// followed by n in that width, little-endian. n beyond 4 GiB is not
// representable.
func (w *Writer) PushLen(tag uint16, n int) error {
	switch {
	case n <= math.MaxUint8:
		WriteHeader(&w.buf, BLK1, tag)
		w.buf.WriteByte(byte(n))
	case n <= math.MaxUint16:
		WriteHeader(&w.buf, BLK2, tag)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(n))
		w.buf.Write(b[:])
	case uint64(n) <= math.MaxUint32:
		WriteHeader(&w.buf, BLK4, tag)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(n))
		w.buf.Write(b[:])
	default:
		return Custom(errLenTooLarge(n))
	}
	return nil
}

// PushRepeatedLen writes a REPEAT header followed by n as a 4-byte LE count.
// n beyond 2^32-1 is not representable.
func (w *Writer) PushRepeatedLen(tag uint16, n int) error {
	if uint64(n) > math.MaxUint32 {
		return Custom(errLenTooLarge(n))
	}
	WriteHeader(&w.buf, REPEAT, tag)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	w.buf.Write(b[:])
	return nil
}

// ReserveBlock4 reserves TagLen(tag)+1+4 bytes at the current write
// position for a header and length that will be filled in later by
// PatchBlock4, and returns the position the reservation started at. This is
// how nested records and unions get their length prefix without a second
// encoding pass: the body is written first, and the true length is patched
// in once it is known. Nested values are always framed as BLK4 regardless of
// how small the body turns out to be, trading a few bytes for never needing
// to predict the length up front.
func (w *Writer) ReserveBlock4(tag uint16) int {
	pos := w.buf.Len()
	w.buf.Write(make([]byte, TagLen(tag)+1+4))
	return pos
}

// PatchBlock4 writes a BLK4 header for tag at pos, with length set to the
// number of bytes written between pos+reservation and the current position.
func (w *Writer) PatchBlock4(tag uint16, pos int) {
	slotLen := TagLen(tag) + 1 + 4
	body := w.buf.Len() - pos - slotLen
	slot := w.buf.Bytes()[pos : pos+slotLen]

	idx := tagIndex(tag)
	slot[0] = byte(BLK4) | idx
	off := 1
	switch idx {
	case 30:
		slot[off] = byte(tag)
		off++
	case 31:
		slot[off] = byte(tag)
		slot[off+1] = byte(tag >> 8)
		off += 2
	}
	binary.LittleEndian.PutUint32(slot[off:off+4], uint32(body))
}
