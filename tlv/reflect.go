// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tlv

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tagtape/tagtape"
)

// Reflective adapts an arbitrary struct pointer to Message by deriving its
// field layout from `tagtape:"..."` struct tags. Wrap a value with Reflective
// to hand it to Encode/Decode, or to use as a nested Record/Repeated element,
// without writing EncodeTLV/DecodeTLV by hand. A nested field whose own type
// is a struct or struct pointer, but does not implement Message itself, is
// recursively wrapped in Reflective too.
//
// The tag vocabulary is:
//
//	tagtape:"tag=n"          required scalar field
//	tagtape:"tag=n,opt"      optional field; Go field type must be a pointer
//	tagtape:"tag=n,rep"      repeated field; Go field type must be a slice
//
// Supported scalar kinds are bool, the sized int/uint/float kinds, string,
// and []byte (which is always treated as a single byte-string value, never
// as a repeated field of bytes). A field whose type implements Message is
// encoded as a nested record using that type's own EncodeTLV/DecodeTLV; a
// field that is a pointer to a plain struct (no Message methods of its own)
// is encoded as a nested record by recursively applying this same
// reflective walk to it. True discriminated unions are out of scope for
// reflection: a field that needs union dispatch must be expressed as a
// hand-written Message/UnionValue pair and embedded as a nested record.
type Reflective struct {
	V interface{}
}

func (r Reflective) EncodeTLV(e *Encoder) error { return EncodeReflect(e, r.V) }
func (r Reflective) DecodeTLV(d *Decoder) error { return DecodeReflect(d, r.V) }

// EncodeReflect writes v's tagged fields to e. v must be a struct or a
// pointer to one.
func EncodeReflect(e *Encoder, v interface{}) error {
	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return fmt.Errorf("tlv: cannot encode nil %T", v)
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("tlv: %T is not a struct", v)
	}
	fields, err := structFields(val.Type())
	if err != nil {
		return err
	}
	for _, fi := range fields {
		fv := val.Field(fi.index)
		if fi.rep {
			if err := encodeRepeatedField(e, fi, fv); err != nil {
				return fmt.Errorf("tlv: field %q: %w", fi.name, err)
			}
			continue
		}
		if fi.opt {
			if fv.IsNil() {
				continue
			}
			if err := encodeScalar(e, fi.tag, fv.Elem()); err != nil {
				return fmt.Errorf("tlv: field %q: %w", fi.name, err)
			}
			continue
		}
		if err := encodeScalar(e, fi.tag, fv); err != nil {
			return fmt.Errorf("tlv: field %q: %w", fi.name, err)
		}
	}
	return nil
}

// DecodeReflect reads v's tagged fields from d. v must be a non-nil pointer
// to a struct. An optional field absent on the wire stays nil; a required
// field absent on the wire is an error.
func DecodeReflect(d *Decoder, v interface{}) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("tlv: %T is not a non-nil pointer", v)
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("tlv: %T does not point to a struct", v)
	}
	fields, err := structFields(val.Type())
	if err != nil {
		return err
	}
	for _, fi := range fields {
		fv := val.Field(fi.index)
		switch {
		case fi.rep:
			if err := decodeRepeatedField(d, fi, fv); err != nil {
				return fmt.Errorf("tlv: field %q: %w", fi.name, err)
			}
		case fi.opt:
			if err := decodeOptionalField(d, fi, fv); err != nil {
				return fmt.Errorf("tlv: field %q: %w", fi.name, err)
			}
		default:
			if err := decodeScalar(d, fi.tag, fv); err != nil {
				return fmt.Errorf("tlv: field %q: %w", fi.name, err)
			}
		}
	}
	return nil
}

type fieldSpec struct {
	name  string
	index int
	tag   uint16
	opt   bool
	rep   bool
}

var fieldCache sync.Map // reflect.Type -> []fieldSpec

func structFields(t reflect.Type) ([]fieldSpec, error) {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldSpec), nil
	}
	var fields []fieldSpec
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("tagtape")
		if !ok {
			continue
		}
		fi, err := parseFieldTag(tag)
		if err != nil {
			return nil, fmt.Errorf("tlv: field %q: %w", sf.Name, err)
		}
		fi.name = sf.Name
		fi.index = i
		if fi.opt && sf.Type.Kind() != reflect.Ptr {
			return nil, fmt.Errorf("tlv: field %q: opt requires a pointer type", sf.Name)
		}
		if fi.rep && sf.Type.Kind() != reflect.Slice {
			return nil, fmt.Errorf("tlv: field %q: rep requires a slice type", sf.Name)
		}
		fields = append(fields, fi)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].tag < fields[j].tag })
	for i := 0; i < len(fields)-1; i++ {
		if fields[i].tag == fields[i+1].tag {
			return nil, fmt.Errorf("tlv: duplicate field tag %d", fields[i].tag)
		}
	}
	fieldCache.Store(t, fields)
	return fields, nil
}

func parseFieldTag(s string) (fieldSpec, error) {
	var fi fieldSpec
	var sawTag bool
	for _, arg := range strings.Split(s, ",") {
		switch {
		case arg == "opt":
			fi.opt = true
		case arg == "rep":
			fi.rep = true
		case strings.HasPrefix(arg, "tag="):
			n, err := strconv.ParseUint(arg[4:], 10, 16)
			if err != nil {
				return fi, fmt.Errorf("invalid tag %q: %w", arg, err)
			}
			fi.tag = uint16(n)
			sawTag = true
		default:
			return fi, fmt.Errorf("unrecognized tag attribute %q", arg)
		}
	}
	if !sawTag {
		return fi, fmt.Errorf("missing tag= attribute")
	}
	if fi.opt && fi.rep {
		return fi, fmt.Errorf("opt and rep are mutually exclusive")
	}
	return fi, nil
}

func encodeScalar(e *Encoder, tag uint16, fv reflect.Value) error {
	if fv.CanInterface() {
		if msg, ok := fv.Interface().(Message); ok {
			return e.Record(tag, msg)
		}
		if fv.CanAddr() {
			if msg, ok := fv.Addr().Interface().(Message); ok {
				return e.Record(tag, msg)
			}
		}
	}
	if fv.Kind() == reflect.Ptr && fv.Type().Elem().Kind() == reflect.Struct {
		if fv.IsNil() {
			return fmt.Errorf("cannot encode nil %s", fv.Type())
		}
		return e.Record(tag, Reflective{V: fv.Interface()})
	}
	if fv.Kind() == reflect.Struct && fv.CanAddr() {
		return e.Record(tag, Reflective{V: fv.Addr().Interface()})
	}
	switch fv.Kind() {
	case reflect.Bool:
		e.Bool(tag, fv.Bool())
	case reflect.Int8:
		e.Int8(tag, int8(fv.Int()))
	case reflect.Int16:
		e.Int16(tag, int16(fv.Int()))
	case reflect.Int32:
		e.Int32(tag, int32(fv.Int()))
	case reflect.Int64, reflect.Int:
		e.Int64(tag, fv.Int())
	case reflect.Uint8:
		e.Uint8(tag, uint8(fv.Uint()))
	case reflect.Uint16:
		e.Uint16(tag, uint16(fv.Uint()))
	case reflect.Uint32:
		e.Uint32(tag, uint32(fv.Uint()))
	case reflect.Uint64, reflect.Uint:
		e.Uint64(tag, fv.Uint())
	case reflect.Float32:
		e.Float32(tag, float32(fv.Float()))
	case reflect.Float64:
		e.Float64(tag, fv.Float())
	case reflect.String:
		return e.String(tag, fv.String())
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			return e.Bytes(tag, fv.Bytes())
		}
		return tagtape.Unimplemented(fv.Type().String())
	default:
		return tagtape.Unimplemented(fv.Type().String())
	}
	return nil
}

func decodeScalar(d *Decoder, tag uint16, fv reflect.Value) error {
	if fv.CanAddr() {
		if msg, ok := fv.Addr().Interface().(Message); ok {
			return d.Record(tag, msg)
		}
	}
	if fv.Kind() == reflect.Ptr && fv.Type().Elem().Kind() == reflect.Struct {
		ev := reflect.New(fv.Type().Elem())
		if msg, ok := ev.Interface().(Message); ok {
			if err := d.Record(tag, msg); err != nil {
				return err
			}
		} else if err := d.Record(tag, Reflective{V: ev.Interface()}); err != nil {
			return err
		}
		fv.Set(ev)
		return nil
	}
	if fv.Kind() == reflect.Struct && fv.CanAddr() {
		return d.Record(tag, Reflective{V: fv.Addr().Interface()})
	}
	switch fv.Kind() {
	case reflect.Bool:
		v, err := d.Bool(tag)
		if err != nil {
			return err
		}
		fv.SetBool(v)
	case reflect.Int8:
		v, err := d.Int8(tag)
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case reflect.Int16:
		v, err := d.Int16(tag)
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case reflect.Int32:
		v, err := d.Int32(tag)
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case reflect.Int64, reflect.Int:
		v, err := d.Int64(tag)
		if err != nil {
			return err
		}
		fv.SetInt(v)
	case reflect.Uint8:
		v, err := d.Uint8(tag)
		if err != nil {
			return err
		}
		fv.SetUint(uint64(v))
	case reflect.Uint16:
		v, err := d.Uint16(tag)
		if err != nil {
			return err
		}
		fv.SetUint(uint64(v))
	case reflect.Uint32:
		v, err := d.Uint32(tag)
		if err != nil {
			return err
		}
		fv.SetUint(uint64(v))
	case reflect.Uint64, reflect.Uint:
		v, err := d.Uint64(tag)
		if err != nil {
			return err
		}
		fv.SetUint(v)
	case reflect.Float32:
		v, err := d.Float32(tag)
		if err != nil {
			return err
		}
		fv.SetFloat(float64(v))
	case reflect.Float64:
		v, err := d.Float64(tag)
		if err != nil {
			return err
		}
		fv.SetFloat(v)
	case reflect.String:
		v, err := d.String(tag)
		if err != nil {
			return err
		}
		fv.SetString(v)
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			v, err := d.Bytes(tag)
			if err != nil {
				return err
			}
			fv.SetBytes(append([]byte(nil), v...))
			return nil
		}
		return tagtape.Unimplemented(fv.Type().String())
	default:
		return tagtape.Unimplemented(fv.Type().String())
	}
	return nil
}

func encodeRepeatedField(e *Encoder, fi fieldSpec, fv reflect.Value) error {
	n := fv.Len()
	return e.Repeated(fi.tag, n, func(i int) error {
		return encodeScalar(e, 0, fv.Index(i))
	})
}

func decodeRepeatedField(d *Decoder, fi fieldSpec, fv reflect.Value) error {
	elemType := fv.Type().Elem()
	out := reflect.MakeSlice(fv.Type(), 0, 0)
	err := d.Repeated(fi.tag, func(i int) error {
		ev := reflect.New(elemType).Elem()
		if err := decodeScalar(d, 0, ev); err != nil {
			return err
		}
		out = reflect.Append(out, ev)
		return nil
	})
	if err != nil {
		return err
	}
	fv.Set(out)
	return nil
}

func decodeOptionalField(d *Decoder, fi fieldSpec, fv reflect.Value) error {
	elemType := fv.Type().Elem()
	tag, present, err := peekOptional(d, fi.tag)
	if err != nil {
		return err
	}
	_ = tag
	if !present {
		return nil
	}
	ev := reflect.New(elemType)
	if err := decodeScalar(d, fi.tag, ev.Elem()); err != nil {
		return err
	}
	fv.Set(ev)
	return nil
}

// peekOptional reports whether tag is present next, without consuming it,
// so decodeOptionalField can decide whether to allocate before delegating
// to the ordinary required-field decode path.
func peekOptional(d *Decoder, tag uint16) (uint16, bool, error) {
	_, present, err := d.r.GetOptionalTag(tag)
	return tag, present, err
}
