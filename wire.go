// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package tagtape implements the low-level byte encoding for a tag-length-value
// (TLV) wire format used by an RPC runtime: the wire class taxonomy, the
// variable-width (wire, tag) header, the primitive value packer, and the
// block/repeat length framing (including deferred back-patching of nested
// record lengths).
//
// Every value on the wire is framed by a one-to-three byte header identifying
// a wire class and a 16-bit field tag; the payload shape that follows is
// determined entirely by the wire class, which is what lets a decoder skip
// values whose type it does not know (see the tlv package, which builds the
// structured record/union encoder and decoder on top of this package).
package tagtape

import (
	"bytes"
	"fmt"
)

// Wire identifies the payload shape that follows a header. It occupies the
// high 3 bits of a header's first byte.
type Wire uint8

// The eight wire classes. BLK1/BLK2/BLK4 carry a length-prefixed payload of
// growing width; QUAD and INT1/INT2/INT4 carry a fixed-width integer payload;
// REPEAT carries a 4-byte count followed by that many tag-0 sub-items.
const (
	BLK1   Wire = iota << 5 // 1-byte LE length, then payload
	BLK2                    // 2-byte LE length, then payload
	BLK4                    // 4-byte LE length, then payload
	QUAD                    // exactly 8 bytes, LE
	INT1                    // exactly 1 byte
	INT2                    // exactly 2 bytes, LE
	INT4                    // exactly 4 bytes, LE
	REPEAT                  // 4-byte LE count, then that many tag-0 sub-items
)

// wireMask isolates the wire-class bits from a header's first byte.
const wireMask = 0xE0

// wireFromByte extracts the wire class from a header's first byte.
func wireFromByte(b byte) Wire {
	return Wire(b & wireMask)
}

func (w Wire) String() string {
	switch w {
	case BLK1:
		return "BLK1"
	case BLK2:
		return "BLK2"
	case BLK4:
		return "BLK4"
	case QUAD:
		return "QUAD"
	case INT1:
		return "INT1"
	case INT2:
		return "INT2"
	case INT4:
		return "INT4"
	case REPEAT:
		return "REPEAT"
	default:
		return fmt.Sprintf("Wire(%#02x)", uint8(w))
	}
}

// Header is the (wire class, field tag) pair that frames every value.
type Header struct {
	Wire Wire
	Tag  uint16
}

// TagLen reports the number of extra header bytes a tag requires beyond the
// first byte: 0 for tags under 30, 1 for tags up to 255, 2 otherwise.
func TagLen(tag uint16) int {
	switch {
	case tag < 30:
		return 0
	case tag <= 255:
		return 1
	default:
		return 2
	}
}

// tagIndex computes the 5-bit index packed into a header's first byte.
func tagIndex(tag uint16) byte {
	switch {
	case tag < 30:
		return byte(tag)
	case tag <= 255:
		return 30
	default:
		return 31
	}
}

// WriteHeader appends the encoding of (wire, tag) to buf.
func WriteHeader(buf *bytes.Buffer, wire Wire, tag uint16) {
	idx := tagIndex(tag)
	buf.WriteByte(byte(wire) | idx)
	switch idx {
	case 30:
		buf.WriteByte(byte(tag))
	case 31:
		buf.WriteByte(byte(tag))
		buf.WriteByte(byte(tag >> 8))
	}
}
