// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagtape

import "fmt"

// Error is a sentinel error kind surfaced by both the encoder and the
// decoder. Callers compare against these with errors.Is; Unimplemented and
// Custom carry additional context wrapped onto the sentinel with %w.
type Error string

func (e Error) Error() string { return string(e) }

// The fixed set of error kinds the codec can report. Propagation is
// immediate: no partial result is ever returned to the caller, and any bytes
// already written to an encoder's own buffer are discarded on error.
const (
	// ErrUnimplemented marks a type category the codec does not support
	// (maps, tuples, and similar constructs the schema contract has no
	// field category for).
	ErrUnimplemented Error = "tagtape: unimplemented"

	// ErrMissingTag is schema misuse: a primitive was pushed or pulled with
	// no current tag in context.
	ErrMissingTag Error = "tagtape: tag is missing"

	// ErrUnknownLen is an attempt to encode a sequence whose length isn't
	// known up front.
	ErrUnknownLen Error = "tagtape: unknown sequence length"

	// ErrInputTooShort is a decoder read that ran past the end of the
	// buffer. GetOptionalTag recovers this into an absent field, and
	// NextHeader into ok=false; nowhere else is it recovered.
	ErrInputTooShort Error = "tagtape: input too short"

	// ErrInvalidEncoding covers wire class mismatches, out-of-order tags,
	// a non-zero byte-string trailer, an unknown wire discriminator, and a
	// REPEAT sub-item whose tag isn't 0.
	ErrInvalidEncoding Error = "tagtape: invalid encoding"

	// ErrTrailingCharacters is a successful decode that left bytes
	// unconsumed.
	ErrTrailingCharacters Error = "tagtape: trailing characters"
)

// Unimplemented wraps ErrUnimplemented with the name of the unsupported
// construct, e.g. Unimplemented("map").
func Unimplemented(what string) error {
	return fmt.Errorf("%w: %s", ErrUnimplemented, what)
}

// Custom wraps an arbitrary error raised by user-supplied schema code so it
// still satisfies the codec's error propagation contract.
func Custom(err error) error {
	return fmt.Errorf("tagtape: %w", err)
}

// errLenTooLarge reports a length or repeat count that overflows the widest
// representable framing (4 GiB for lengths, 2^32-1 for repeat counts). The
// source format treats this as fatal rather than a recoverable encoding
// choice, since there is no wider frame to fall back to.
func errLenTooLarge(n int) error {
	return fmt.Errorf("length %d exceeds the maximum representable frame size", n)
}
