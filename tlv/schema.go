// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package tlv builds the structured record, union, optional, and repeated
// field model described for the wire format in the tagtape package: it walks
// a value in ascending tag order on encode, and seeks forward skipping
// unknown or absent tags on decode.
//
// A type participates by implementing Message (and, for discriminated
// unions, UnionValue) directly as a hand-written encoder/decoder pair, or by
// relying on the reflection-driven implementation in reflect.go, which
// derives the same behavior from `tagtape:"tag=n"` struct tags.
package tlv

// A Message knows how to write and read its own fields against an Encoder
// or Decoder, in strictly ascending tag order starting at 1. Required,
// optional, repeated, and nested-record fields are all driven from here;
// EncodeTLV/DecodeTLV are handed an Encoder/Decoder that is already
// positioned at the right tag context — top-level if the value is being
// encoded directly, or inside a reserved BLK4 frame if it is nested under a
// field tag or a union arm.
type Message interface {
	EncodeTLV(e *Encoder) error
	DecodeTLV(d *Decoder) error
}

// A UnionValue is exactly one arm of a discriminated union: ArmTag reports
// which arm is present, and EncodeArm writes that arm's single tagged
// payload (UnionDecodable.DecodeArm is the read side). The arm tag doubles
// as the field tag carried by
// the lone value inside the union's BLK4 frame.
type UnionValue interface {
	ArmTag() uint16
	EncodeArm(e *Encoder) error
}

// ArmDecoder maps an arm tag to a fresh UnionValue ready to decode into,
// for use by Decoder.Union. Schemas that want unknown arms tolerated supply
// a DefaultArm; otherwise an unrecognized arm tag is ErrInvalidEncoding.
type ArmDecoder struct {
	// New returns nil for arm tags it doesn't recognize.
	New func(armTag uint16) UnionDecodable
	// DefaultArm, if non-nil, is used when New returns nil: unknown arm
	// tags are tolerated only if the caller's schema permits a default arm.
	DefaultArm func(armTag uint16) UnionDecodable
}

// A UnionDecodable is the read-side counterpart of UnionValue: it knows how
// to decode its own single tagged payload once the arm has been selected.
type UnionDecodable interface {
	DecodeArm(d *Decoder, armTag uint16) error
}
