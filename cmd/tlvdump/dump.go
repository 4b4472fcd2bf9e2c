// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tagtape/tagtape"
)

// maxPreview bounds how many raw bytes of an opaque BLK payload get printed
// inline before the line is truncated with an ellipsis.
const maxPreview = 16

// dumpAll walks every top-level header in r and writes one line per value to
// w, recursing into REPEAT sequences. It needs no schema: every one of the
// eight wire classes is printed from its header alone, since the point of
// the tool is to make sense of a buffer nothing else has a schema for.
func dumpAll(r *tagtape.Reader, w io.Writer) error {
	for {
		hdr, ok, err := r.NextHeader()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := dumpValue(r, hdr, 0, w); err != nil {
			return err
		}
	}
}

func dumpValue(r *tagtape.Reader, hdr tagtape.Header, depth int, w io.Writer) error {
	indent := strings.Repeat("  ", depth)
	switch hdr.Wire {
	case tagtape.INT1, tagtape.INT2, tagtape.INT4, tagtape.QUAD:
		v, err := r.ReadInt64(hdr.Wire)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%stag=%-5d %-6s value=%d (0x%x)\n", indent, hdr.Tag, hdr.Wire, v, uint64(v))
		return nil

	case tagtape.BLK1, tagtape.BLK2, tagtape.BLK4:
		n, err := r.ReadLen(hdr.Wire)
		if err != nil {
			return err
		}
		body, err := r.TakeBounded(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%stag=%-5d %-6s len=%-6d bytes=%s\n", indent, hdr.Tag, hdr.Wire, n, previewHex(body))
		return nil

	case tagtape.REPEAT:
		n, err := r.ReadRepeatedLen(hdr.Wire)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%stag=%-5d REPEAT count=%d\n", indent, hdr.Tag, n)
		for i := 0; i < n; i++ {
			sub, ok, err := r.NextHeader()
			if err != nil {
				return err
			}
			if !ok {
				return tagtape.ErrInputTooShort
			}
			if err := dumpValue(r, sub, depth+1, w); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("tlvdump: unrecognized wire class %v for tag %d", hdr.Wire, hdr.Tag)
	}
}

func previewHex(b []byte) string {
	if len(b) <= maxPreview {
		return fmt.Sprintf("%x", b)
	}
	return fmt.Sprintf("%x...(%d more)", b[:maxPreview], len(b)-maxPreview)
}
