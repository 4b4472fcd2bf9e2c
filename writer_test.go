// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagtape_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/tagtape/tagtape"
)

// hexBytes turns a "80 00" style golden image into raw bytes.
func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("invalid hex %q: %v", s, err)
	}
	return b
}

func TestPushGoldenImages(t *testing.T) {
	tests := []struct {
		name string
		want string
		push func(w *tagtape.Writer)
	}{
		{"byte tag0 v0", "80 00", func(w *tagtape.Writer) { w.PushInt8(0, 0) }},
		{"byte tag130 v0x20", "9E 82 20", func(w *tagtape.Writer) { w.PushInt8(130, 0x20) }},
		{"byte tag257 v0xFF", "9F 01 01 FF", func(w *tagtape.Writer) { w.PushInt8(257, -1) }},
		{"i32 tag129 v-128", "9E 81 80", func(w *tagtape.Writer) { w.PushInt32(129, -128) }},
		{"i32 tag193 v32767", "BE C1 FF 7F", func(w *tagtape.Writer) { w.PushInt32(193, 32767) }},
		{"i32 tag224 vINT32_MIN", "DE E0 00 00 00 80", func(w *tagtape.Writer) { w.PushInt32(224, -2147483648) }},
		{"quad tag256 vUINT64_MAX", "7F 00 01 FF FF FF FF FF FF FF FF", func(w *tagtape.Writer) {
			w.PushQuad(256, 0xFFFFFFFFFFFFFFFF)
		}},
		{"len tag5 n65536", "45 00 00 01 00", func(w *tagtape.Writer) {
			if err := w.PushLen(5, 65536); err != nil {
				t.Fatalf("PushLen: %v", err)
			}
		}},
		{"repeated tag1024 n2048", "FF 00 04 00 08 00 00", func(w *tagtape.Writer) {
			if err := w.PushRepeatedLen(1024, 2048); err != nil {
				t.Fatalf("PushRepeatedLen: %v", err)
			}
		}},
		{"bytes tag8 DEAD", "08 03 DE AD 00", func(w *tagtape.Writer) {
			if err := w.PushBytes(8, []byte{0xDE, 0xAD}); err != nil {
				t.Fatalf("PushBytes: %v", err)
			}
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := tagtape.NewWriter()
			test.push(w)
			want := hexBytes(t, test.want)
			if got := w.Bytes(); !equalBytes(got, want) {
				t.Errorf("got % X, want % X", got, want)
			}
		})
	}
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPushInt8TruncatesToRawByte(t *testing.T) {
	// The raw byte 0xFF reinterpreted as int8(-1); PushInt8 must reproduce
	// that bit pattern rather than zigzag-transforming it.
	w := tagtape.NewWriter()
	w.PushInt8(257, -1)
	got := w.Bytes()
	if got[len(got)-1] != 0xFF {
		t.Errorf("last byte = %#02x, want 0xFF", got[len(got)-1])
	}
}
