// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagtape_test

import (
	"testing"

	"github.com/tagtape/tagtape"
)

func TestTagLen(t *testing.T) {
	tests := []struct {
		tag  uint16
		want int
	}{
		{0, 0},
		{29, 0},
		{30, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
	}
	for _, test := range tests {
		if got := tagtape.TagLen(test.tag); got != test.want {
			t.Errorf("TagLen(%d) = %d, want %d", test.tag, got, test.want)
		}
	}
}

func TestWireString(t *testing.T) {
	tests := []struct {
		w    tagtape.Wire
		want string
	}{
		{tagtape.BLK1, "BLK1"},
		{tagtape.BLK2, "BLK2"},
		{tagtape.BLK4, "BLK4"},
		{tagtape.QUAD, "QUAD"},
		{tagtape.INT1, "INT1"},
		{tagtape.INT2, "INT2"},
		{tagtape.INT4, "INT4"},
		{tagtape.REPEAT, "REPEAT"},
	}
	for _, test := range tests {
		if got := test.w.String(); got != test.want {
			t.Errorf("Wire(%#02x).String() = %q, want %q", uint8(test.w), got, test.want)
		}
	}
}
