// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagtape_test

import (
	"errors"
	"testing"

	"github.com/tagtape/tagtape"
)

func TestDecodeSymmetry(t *testing.T) {
	w := tagtape.NewWriter()
	w.PushInt8(0, 0)
	w.PushInt32(129, -128)
	w.PushInt32(193, 32767)
	w.PushInt32(224, -2147483648)
	w.PushQuad(256, 0xFFFFFFFFFFFFFFFF)
	if err := w.PushBytes(300, []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("PushBytes: %v", err)
	}

	r := tagtape.NewReader(w.Bytes())

	if wire, err := r.GetTag(0); err != nil || wire != tagtape.INT1 {
		t.Fatalf("GetTag(0) = %v, %v", wire, err)
	} else if v, err := r.ReadInt8(wire); err != nil || v != 0 {
		t.Errorf("ReadInt8 = %v, %v, want 0", v, err)
	}

	if wire, err := r.GetTag(129); err != nil {
		t.Fatalf("GetTag(129): %v", err)
	} else if v, err := r.ReadInt32(wire); err != nil || v != -128 {
		t.Errorf("ReadInt32(129) = %v, %v, want -128", v, err)
	}

	if wire, err := r.GetTag(193); err != nil {
		t.Fatalf("GetTag(193): %v", err)
	} else if v, err := r.ReadInt32(wire); err != nil || v != 32767 {
		t.Errorf("ReadInt32(193) = %v, %v, want 32767", v, err)
	}

	if wire, err := r.GetTag(224); err != nil {
		t.Fatalf("GetTag(224): %v", err)
	} else if v, err := r.ReadInt32(wire); err != nil || v != -2147483648 {
		t.Errorf("ReadInt32(224) = %v, %v, want INT32_MIN", v, err)
	}

	if wire, err := r.GetTag(256); err != nil {
		t.Fatalf("GetTag(256): %v", err)
	} else if v, err := r.ReadUint64(wire); err != nil || v != 0xFFFFFFFFFFFFFFFF {
		t.Errorf("ReadUint64(256) = %v, %v, want UINT64_MAX", v, err)
	}

	if wire, err := r.GetTag(300); err != nil {
		t.Fatalf("GetTag(300): %v", err)
	} else if v, err := r.ReadBytes(wire); err != nil || string(v) != "\xDE\xAD" {
		t.Errorf("ReadBytes(300) = %v, %v, want DE AD", v, err)
	}

	if !r.IsEmpty() {
		t.Errorf("expected reader to be drained")
	}
}

func TestGetTagMissingIsInvalidEncoding(t *testing.T) {
	w := tagtape.NewWriter()
	w.PushInt8(5, 1)
	r := tagtape.NewReader(w.Bytes())
	if _, err := r.GetTag(3); !errors.Is(err, tagtape.ErrInvalidEncoding) {
		t.Errorf("GetTag(3) = %v, want ErrInvalidEncoding", err)
	}
}

func TestGetTagSkipsUnknownFields(t *testing.T) {
	// A schema reading only tag 10 should skip past tags 1 and 5 in between.
	w := tagtape.NewWriter()
	w.PushInt8(1, 9)
	w.PushInt8(5, 9)
	w.PushInt8(10, 42)
	r := tagtape.NewReader(w.Bytes())
	wire, err := r.GetTag(10)
	if err != nil {
		t.Fatalf("GetTag(10): %v", err)
	}
	v, err := r.ReadInt8(wire)
	if err != nil || v != 42 {
		t.Errorf("ReadInt8 = %v, %v, want 42", v, err)
	}
}

func TestGetOptionalTagAbsentAtEOF(t *testing.T) {
	w := tagtape.NewWriter()
	w.PushInt8(1, 9)
	r := tagtape.NewReader(w.Bytes())

	if wire, err := r.GetTag(1); err != nil {
		t.Fatalf("GetTag(1): %v", err)
	} else if v, err := r.ReadInt8(wire); err != nil || v != 9 {
		t.Fatalf("ReadInt8(1) = %v, %v, want 9", v, err)
	}

	_, present, err := r.GetOptionalTag(5)
	if err != nil {
		t.Fatalf("GetOptionalTag(5): %v", err)
	}
	if present {
		t.Errorf("GetOptionalTag(5): present = true, want false (field is absent past EOF)")
	}
}

func TestGetOptionalTagAbsentBeforeHigherTag(t *testing.T) {
	w := tagtape.NewWriter()
	w.PushInt8(1, 9)
	w.PushInt8(10, 42)
	r := tagtape.NewReader(w.Bytes())

	if wire, err := r.GetTag(1); err != nil {
		t.Fatalf("GetTag(1): %v", err)
	} else if v, err := r.ReadInt8(wire); err != nil || v != 9 {
		t.Fatalf("ReadInt8(1) = %v, %v, want 9", v, err)
	}

	_, present, err := r.GetOptionalTag(5)
	if err != nil {
		t.Fatalf("GetOptionalTag(5): %v", err)
	}
	if present {
		t.Errorf("GetOptionalTag(5): present = true, want false")
	}

	wire, err := r.GetTag(10)
	if err != nil {
		t.Fatalf("GetTag(10): %v", err)
	}
	if v, err := r.ReadInt8(wire); err != nil || v != 42 {
		t.Errorf("ReadInt8(10) = %v, %v, want 42", v, err)
	}
}

func TestSkipDataHandlesRepeat(t *testing.T) {
	w := tagtape.NewWriter()
	if err := w.PushRepeatedLen(1, 3); err != nil {
		t.Fatalf("PushRepeatedLen: %v", err)
	}
	w.PushInt8(0, 1)
	w.PushInt8(0, 2)
	w.PushInt8(0, 3)
	w.PushInt8(2, 99)

	r := tagtape.NewReader(w.Bytes())
	wire, err := r.GetTag(2)
	if err != nil {
		t.Fatalf("GetTag(2): %v", err)
	}
	if v, err := r.ReadInt8(wire); err != nil || v != 99 {
		t.Errorf("ReadInt8(2) = %v, %v, want 99", v, err)
	}
}

// TestSkipDataCoversAllWireClasses writes one field of each of the eight
// wire classes under ascending tags, then seeks past all of them to a
// sentinel tag, exercising SkipData's branch for every class in one pass.
func TestSkipDataCoversAllWireClasses(t *testing.T) {
	w := tagtape.NewWriter()
	if err := w.PushBytes(1, []byte{1, 2, 3}); err != nil { // BLK1
		t.Fatalf("PushBytes(1): %v", err)
	}
	if err := w.PushBytes(2, make([]byte, 300)); err != nil { // BLK2
		t.Fatalf("PushBytes(2): %v", err)
	}
	if err := w.PushBytes(3, make([]byte, 70000)); err != nil { // BLK4
		t.Fatalf("PushBytes(3): %v", err)
	}
	w.PushQuad(4, 0xFFFFFFFFFFFFFFFF) // QUAD
	w.PushInt8(5, 9)                  // INT1
	w.PushInt32(6, 200)               // INT2
	w.PushInt32(7, 100000)            // INT4
	if err := w.PushRepeatedLen(8, 2); err != nil { // REPEAT
		t.Fatalf("PushRepeatedLen(8): %v", err)
	}
	w.PushInt8(0, 1)
	w.PushInt8(0, 2)
	w.PushInt8(100, 42)

	r := tagtape.NewReader(w.Bytes())
	wire, err := r.GetTag(100)
	if err != nil {
		t.Fatalf("GetTag(100): %v", err)
	}
	if v, err := r.ReadInt8(wire); err != nil || v != 42 {
		t.Errorf("ReadInt8(100) = %v, %v, want 42", v, err)
	}
	if !r.IsEmpty() {
		t.Errorf("expected reader to be drained")
	}
}

func TestReadBytesRejectsMissingTrailer(t *testing.T) {
	// BLK1 length of 1 (a single trailing zero, no payload) followed by a
	// non-zero terminator byte is an invalid encoding.
	r := tagtape.NewReader([]byte{0x08, 0x01, 0x01})
	wire, err := r.GetTag(8)
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if _, err := r.ReadBytes(wire); !errors.Is(err, tagtape.ErrInvalidEncoding) {
		t.Errorf("ReadBytes = %v, want ErrInvalidEncoding", err)
	}
}
