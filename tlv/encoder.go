// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tlv

import "github.com/tagtape/tagtape"

// Encode returns the wire encoding of msg. msg's EncodeTLV is invoked with
// no surrounding tag context, so it writes directly at offset 0 rather than
// reserving a length-prefixed frame: the top-level record carries no outer
// length.
func Encode(msg Message) ([]byte, error) {
	e := NewEncoder()
	if err := msg.EncodeTLV(e); err != nil {
		return nil, err
	}
	return e.Output(), nil
}

// An Encoder writes tagged fields in ascending tag order to an internal
// buffer. Every write method takes the field's tag explicitly: this is the
// same "current tag" the enclosing Message sets immediately before emitting
// each field, threaded here as an ordinary parameter rather than a mutable
// cell.
type Encoder struct {
	w *tagtape.Writer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{w: tagtape.NewWriter()}
}

// Output returns the bytes written so far. Called once, at the end of a
// top-level Encode.
func (e *Encoder) Output() []byte { return e.w.Bytes() }

// Bool writes a required boolean field.
func (e *Encoder) Bool(tag uint16, v bool) { e.w.PushBool(tag, v) }

// Int8 writes a required 8-bit signed integer field.
func (e *Encoder) Int8(tag uint16, v int8) { e.w.PushInt8(tag, v) }

// Int16 writes a required 16-bit signed integer field.
func (e *Encoder) Int16(tag uint16, v int16) { e.w.PushInt32(tag, int32(v)) }

// Int32 writes a required 32-bit signed integer field.
func (e *Encoder) Int32(tag uint16, v int32) { e.w.PushInt32(tag, v) }

// Int64 writes a required 64-bit signed integer field.
func (e *Encoder) Int64(tag uint16, v int64) { e.w.PushInt64(tag, v) }

// Uint8 writes a required 8-bit unsigned integer field.
func (e *Encoder) Uint8(tag uint16, v uint8) { e.w.PushUint8(tag, v) }

// Uint16 writes a required 16-bit unsigned integer field.
func (e *Encoder) Uint16(tag uint16, v uint16) { e.w.PushUint16(tag, v) }

// Uint32 writes a required 32-bit unsigned integer field.
func (e *Encoder) Uint32(tag uint16, v uint32) { e.w.PushUint32(tag, v) }

// Uint64 writes a required 64-bit unsigned integer field.
func (e *Encoder) Uint64(tag uint16, v uint64) { e.w.PushUint64(tag, v) }

// Float32 writes a required 32-bit float field.
func (e *Encoder) Float32(tag uint16, v float32) { e.w.PushFloat32(tag, v) }

// Float64 writes a required 64-bit float field.
func (e *Encoder) Float64(tag uint16, v float64) { e.w.PushFloat64(tag, v) }

// Char writes a required Unicode scalar field.
func (e *Encoder) Char(tag uint16, v rune) { e.w.PushChar(tag, v) }

// Bytes writes a required byte-string field.
func (e *Encoder) Bytes(tag uint16, v []byte) error { return e.w.PushBytes(tag, v) }

// String writes a required text field.
func (e *Encoder) String(tag uint16, v string) error { return e.w.PushString(tag, v) }

// OptBool writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptBool(tag uint16, v *bool) {
	if v != nil {
		e.Bool(tag, *v)
	}
}

// OptInt8 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptInt8(tag uint16, v *int8) {
	if v != nil {
		e.Int8(tag, *v)
	}
}

// OptInt16 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptInt16(tag uint16, v *int16) {
	if v != nil {
		e.Int16(tag, *v)
	}
}

// OptInt32 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptInt32(tag uint16, v *int32) {
	if v != nil {
		e.Int32(tag, *v)
	}
}

// OptInt64 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptInt64(tag uint16, v *int64) {
	if v != nil {
		e.Int64(tag, *v)
	}
}

// OptUint8 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptUint8(tag uint16, v *uint8) {
	if v != nil {
		e.Uint8(tag, *v)
	}
}

// OptUint16 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptUint16(tag uint16, v *uint16) {
	if v != nil {
		e.Uint16(tag, *v)
	}
}

// OptUint32 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptUint32(tag uint16, v *uint32) {
	if v != nil {
		e.Uint32(tag, *v)
	}
}

// OptUint64 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptUint64(tag uint16, v *uint64) {
	if v != nil {
		e.Uint64(tag, *v)
	}
}

// OptFloat32 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptFloat32(tag uint16, v *float32) {
	if v != nil {
		e.Float32(tag, *v)
	}
}

// OptFloat64 writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptFloat64(tag uint16, v *float64) {
	if v != nil {
		e.Float64(tag, *v)
	}
}

// OptChar writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptChar(tag uint16, v *rune) {
	if v != nil {
		e.Char(tag, *v)
	}
}

// OptBytes writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptBytes(tag uint16, v []byte) error {
	if v == nil {
		return nil
	}
	return e.Bytes(tag, v)
}

// OptString writes v if non-nil, and nothing otherwise.
func (e *Encoder) OptString(tag uint16, v *string) error {
	if v == nil {
		return nil
	}
	return e.String(tag, *v)
}

// Record encodes msg as a nested record under tag: a BLK4 frame whose
// length is back-patched once msg has written its own fields (all at tag 1,
// 2, ... in ascending order inside the frame). This is how every nested
// record gets its length prefix without a second encoding pass.
func (e *Encoder) Record(tag uint16, msg Message) error {
	pos := e.w.ReserveBlock4(tag)
	if err := msg.EncodeTLV(e); err != nil {
		return err
	}
	e.w.PatchBlock4(tag, pos)
	return nil
}

// Repeated writes a REPEAT header for n elements under tag, then invokes
// each(i) once per element in order. each is responsible for writing its
// element under tag 0, which is what every sub-item of a REPEAT sequence
// carries.
func (e *Encoder) Repeated(tag uint16, n int, each func(i int) error) error {
	if err := e.w.PushRepeatedLen(tag, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := each(i); err != nil {
			return err
		}
	}
	return nil
}

// Union encodes v as a BLK4 frame under tag whose body is the single
// tagged value v.EncodeArm writes under v.ArmTag() — the arm tag is what
// discriminates the union on decode.
func (e *Encoder) Union(tag uint16, v UnionValue) error {
	pos := e.w.ReserveBlock4(tag)
	if err := v.EncodeArm(e); err != nil {
		return err
	}
	e.w.PatchBlock4(tag, pos)
	return nil
}
