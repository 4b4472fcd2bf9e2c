// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tlv

import "github.com/tagtape/tagtape"

// Decode parses data as msg's wire encoding. msg.DecodeTLV is invoked with
// no surrounding tag context, mirroring Encode, and the full input must be
// consumed: any bytes left over after msg has read its fields are reported
// as tagtape.ErrTrailingCharacters.
func Decode(data []byte, msg Message) error {
	d := NewDecoder(data)
	if err := msg.DecodeTLV(d); err != nil {
		return err
	}
	if !d.r.IsEmpty() {
		return tagtape.ErrTrailingCharacters
	}
	return nil
}

// A Decoder reads tagged fields in ascending tag order from an internal
// cursor. Like Encoder, every read method takes the field's tag explicitly.
type Decoder struct {
	r *tagtape.Reader
}

// NewDecoder returns a Decoder over data. data is borrowed, not copied; any
// byte-string or text value read out of it borrows the same backing array.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: tagtape.NewReader(data)}
}

// Bool requires a boolean field at tag.
func (d *Decoder) Bool(tag uint16) (bool, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return false, err
	}
	return d.r.ReadBool(wire)
}

// Int8 requires an 8-bit signed integer field at tag.
func (d *Decoder) Int8(tag uint16) (int8, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadInt8(wire)
}

// Int16 requires a 16-bit signed integer field at tag.
func (d *Decoder) Int16(tag uint16) (int16, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	v, err := d.r.ReadInt32(wire)
	return int16(v), err
}

// Int32 requires a 32-bit signed integer field at tag.
func (d *Decoder) Int32(tag uint16) (int32, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadInt32(wire)
}

// Int64 requires a 64-bit signed integer field at tag.
func (d *Decoder) Int64(tag uint16) (int64, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadInt64(wire)
}

// Uint8 requires an 8-bit unsigned integer field at tag.
func (d *Decoder) Uint8(tag uint16) (uint8, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	v, err := d.r.ReadUint32(wire)
	return uint8(v), err
}

// Uint16 requires a 16-bit unsigned integer field at tag.
func (d *Decoder) Uint16(tag uint16) (uint16, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	v, err := d.r.ReadUint32(wire)
	return uint16(v), err
}

// Uint32 requires a 32-bit unsigned integer field at tag.
func (d *Decoder) Uint32(tag uint16) (uint32, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadUint32(wire)
}

// Uint64 requires a 64-bit unsigned integer field at tag.
func (d *Decoder) Uint64(tag uint16) (uint64, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadUint64(wire)
}

// Float32 requires a 32-bit float field at tag.
func (d *Decoder) Float32(tag uint16) (float32, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadFloat32(wire)
}

// Float64 requires a 64-bit float field at tag.
func (d *Decoder) Float64(tag uint16) (float64, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadFloat64(wire)
}

// Char requires a Unicode scalar field at tag.
func (d *Decoder) Char(tag uint16) (rune, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return 0, err
	}
	return d.r.ReadChar(wire)
}

// Bytes requires a byte-string field at tag. The returned slice borrows
// from the decoder's input.
func (d *Decoder) Bytes(tag uint16) ([]byte, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return nil, err
	}
	return d.r.ReadBytes(wire)
}

// String requires a text field at tag.
func (d *Decoder) String(tag uint16) (string, error) {
	b, err := d.Bytes(tag)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OptBool reads an optional boolean field at tag, returning ok=false if it
// is absent.
func (d *Decoder) OptBool(tag uint16) (v bool, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return false, false, err
	}
	v, err = d.r.ReadBool(wire)
	return v, err == nil, err
}

// OptInt8 reads an optional 8-bit signed integer field at tag.
func (d *Decoder) OptInt8(tag uint16) (v int8, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadInt8(wire)
	return v, err == nil, err
}

// OptInt16 reads an optional 16-bit signed integer field at tag.
func (d *Decoder) OptInt16(tag uint16) (v int16, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v32, err := d.r.ReadInt32(wire)
	return int16(v32), err == nil, err
}

// OptInt32 reads an optional 32-bit signed integer field at tag.
func (d *Decoder) OptInt32(tag uint16) (v int32, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadInt32(wire)
	return v, err == nil, err
}

// OptInt64 reads an optional 64-bit signed integer field at tag.
func (d *Decoder) OptInt64(tag uint16) (v int64, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadInt64(wire)
	return v, err == nil, err
}

// OptUint8 reads an optional 8-bit unsigned integer field at tag.
func (d *Decoder) OptUint8(tag uint16) (v uint8, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v32, err := d.r.ReadUint32(wire)
	return uint8(v32), err == nil, err
}

// OptUint16 reads an optional 16-bit unsigned integer field at tag.
func (d *Decoder) OptUint16(tag uint16) (v uint16, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v32, err := d.r.ReadUint32(wire)
	return uint16(v32), err == nil, err
}

// OptUint32 reads an optional 32-bit unsigned integer field at tag.
func (d *Decoder) OptUint32(tag uint16) (v uint32, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadUint32(wire)
	return v, err == nil, err
}

// OptUint64 reads an optional 64-bit unsigned integer field at tag.
func (d *Decoder) OptUint64(tag uint16) (v uint64, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadUint64(wire)
	return v, err == nil, err
}

// OptFloat32 reads an optional 32-bit float field at tag.
func (d *Decoder) OptFloat32(tag uint16) (v float32, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadFloat32(wire)
	return v, err == nil, err
}

// OptFloat64 reads an optional 64-bit float field at tag.
func (d *Decoder) OptFloat64(tag uint16) (v float64, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadFloat64(wire)
	return v, err == nil, err
}

// OptChar reads an optional Unicode scalar field at tag.
func (d *Decoder) OptChar(tag uint16) (v rune, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return 0, false, err
	}
	v, err = d.r.ReadChar(wire)
	return v, err == nil, err
}

// OptBytes reads an optional byte-string field at tag. The returned slice
// borrows from the decoder's input.
func (d *Decoder) OptBytes(tag uint16) (v []byte, ok bool, err error) {
	wire, present, err := d.r.GetOptionalTag(tag)
	if err != nil || !present {
		return nil, false, err
	}
	v, err = d.r.ReadBytes(wire)
	return v, err == nil, err
}

// OptString reads an optional text field at tag.
func (d *Decoder) OptString(tag uint16) (v string, ok bool, err error) {
	b, present, err := d.OptBytes(tag)
	if err != nil || !present {
		return "", false, err
	}
	return string(b), true, nil
}

// Record requires a nested record at tag and decodes it into msg, bounding
// msg's view of the input to the declared BLK4 length so that any trailing
// fields msg's schema doesn't recognize are silently skipped rather than
// leaking into the caller's own subsequent reads.
func (d *Decoder) Record(tag uint16, msg Message) error {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return err
	}
	if wire != tagtape.BLK4 {
		return tagtape.ErrInvalidEncoding
	}
	n, err := d.r.ReadLen(wire)
	if err != nil {
		return err
	}
	body, err := d.r.TakeBounded(n)
	if err != nil {
		return err
	}
	sub := NewDecoder(body)
	if err := msg.DecodeTLV(sub); err != nil {
		return err
	}
	return nil
}

// Repeated requires a REPEAT sequence at tag and invokes each(i) once per
// element in order. each is responsible for reading its element, which is
// always carried under tag 0.
func (d *Decoder) Repeated(tag uint16, each func(i int) error) error {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return err
	}
	n, err := d.r.ReadRepeatedLen(wire)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := each(i); err != nil {
			return err
		}
	}
	return nil
}

// Union requires a union at tag, reads its single arm tag, and dispatches to
// arms.New to build a fresh UnionDecodable for that arm. An arm tag arms.New
// does not recognize falls back to arms.DefaultArm if supplied, and is
// otherwise ErrInvalidEncoding — the forward-compatible case is opt-in per
// schema, never silent.
func (d *Decoder) Union(tag uint16, arms ArmDecoder) (UnionDecodable, error) {
	wire, err := d.r.GetTag(tag)
	if err != nil {
		return nil, err
	}
	if wire != tagtape.BLK4 {
		return nil, tagtape.ErrInvalidEncoding
	}
	n, err := d.r.ReadLen(wire)
	if err != nil {
		return nil, err
	}
	body, err := d.r.TakeBounded(n)
	if err != nil {
		return nil, err
	}
	sub := NewDecoder(body)
	armHdr, err := sub.r.PeekHeader()
	if err != nil {
		return nil, err
	}
	armTag := armHdr.Tag
	val := arms.New(armTag)
	if val == nil {
		if arms.DefaultArm == nil {
			return nil, tagtape.ErrInvalidEncoding
		}
		val = arms.DefaultArm(armTag)
	}
	if err := val.DecodeArm(sub, armTag); err != nil {
		return nil, err
	}
	return val, nil
}
