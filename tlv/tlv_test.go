// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tlv_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/tagtape/tagtape"
	"github.com/tagtape/tagtape/tlv"
)

// address is a hand-written Message used to exercise nested records.
type address struct {
	City string
	Zip  *string
}

func (a *address) EncodeTLV(e *tlv.Encoder) error {
	if err := e.String(1, a.City); err != nil {
		return err
	}
	return e.OptString(2, a.Zip)
}

func (a *address) DecodeTLV(d *tlv.Decoder) error {
	city, err := d.String(1)
	if err != nil {
		return err
	}
	a.City = city
	zip, ok, err := d.OptString(2)
	if err != nil {
		return err
	}
	if ok {
		a.Zip = &zip
	}
	return nil
}

type person struct {
	Name    string
	Age     int32
	Home    *address
	Nickels []int32
}

func (p *person) EncodeTLV(e *tlv.Encoder) error {
	if err := e.String(1, p.Name); err != nil {
		return err
	}
	e.Int32(2, p.Age)
	if err := e.Record(3, p.Home); err != nil {
		return err
	}
	return e.Repeated(4, len(p.Nickels), func(i int) error {
		e.Int32(0, p.Nickels[i])
		return nil
	})
}

func (p *person) DecodeTLV(d *tlv.Decoder) error {
	name, err := d.String(1)
	if err != nil {
		return err
	}
	p.Name = name
	age, err := d.Int32(2)
	if err != nil {
		return err
	}
	p.Age = age

	p.Home = new(address)
	if err := d.Record(3, p.Home); err != nil {
		return err
	}

	return d.Repeated(4, func(i int) error {
		v, err := d.Int32(0)
		if err != nil {
			return err
		}
		p.Nickels = append(p.Nickels, v)
		return nil
	})
}

func TestRecordRoundTrip(t *testing.T) {
	in := &person{
		Name: "Ada Lovelace",
		Age:  36,
		Home: &address{City: "London"},
	}
	out, err := tlv.Encode(in)
	require.NoError(t, err)

	got := new(person)
	require.NoError(t, tlv.Decode(out, got))
	require.Equal(t, in.Name, got.Name)
	require.Equal(t, in.Age, got.Age)
	require.NotNil(t, got.Home)
	require.Equal(t, in.Home.City, got.Home.City)
}

// numberArm and textArm are the two arms of a toy union value.
type numberArm struct{ V int32 }

func (n *numberArm) ArmTag() uint16 { return 1 }
func (n *numberArm) EncodeArm(e *tlv.Encoder) error {
	e.Int32(1, n.V)
	return nil
}
func (n *numberArm) DecodeArm(d *tlv.Decoder, armTag uint16) error {
	v, err := d.Int32(armTag)
	if err != nil {
		return err
	}
	n.V = v
	return nil
}

type textArm struct{ V string }

func (n *textArm) ArmTag() uint16 { return 2 }
func (n *textArm) EncodeArm(e *tlv.Encoder) error {
	return e.String(2, n.V)
}
func (n *textArm) DecodeArm(d *tlv.Decoder, armTag uint16) error {
	v, err := d.String(armTag)
	if err != nil {
		return err
	}
	n.V = v
	return nil
}

func arms() tlv.ArmDecoder {
	return tlv.ArmDecoder{
		New: func(armTag uint16) tlv.UnionDecodable {
			switch armTag {
			case 1:
				return new(numberArm)
			case 2:
				return new(textArm)
			default:
				return nil
			}
		},
	}
}

func TestUnionRoundTrip(t *testing.T) {
	e := tlv.NewEncoder()
	require.NoError(t, e.Union(1, &textArm{V: "hello"}))

	d := tlv.NewDecoder(e.Output())
	val, err := d.Union(1, arms())
	require.NoError(t, err)
	ta, ok := val.(*textArm)
	require.True(t, ok)
	require.Equal(t, "hello", ta.V)
}

func TestUnionUnknownArmWithoutDefaultIsInvalidEncoding(t *testing.T) {
	e := tlv.NewEncoder()
	require.NoError(t, e.Union(1, &numberArm{V: 9}))
	raw := e.Output()
	// Corrupt the arm tag to something arms() doesn't recognize.
	raw[5] = raw[5]&0xE0 | 9

	d := tlv.NewDecoder(raw)
	_, err := d.Union(1, arms())
	require.ErrorIs(t, err, tagtape.ErrInvalidEncoding)
}

func TestUnionDefaultArmTolerated(t *testing.T) {
	e := tlv.NewEncoder()
	require.NoError(t, e.Union(1, &numberArm{V: 9}))
	raw := e.Output()
	raw[5] = raw[5]&0xE0 | 9 // unknown arm tag

	d := tlv.NewDecoder(raw)
	withDefault := arms()
	var sawTag uint16
	withDefault.DefaultArm = func(armTag uint16) tlv.UnionDecodable {
		sawTag = armTag
		return new(numberArm)
	}
	_, err := d.Union(1, withDefault)
	require.NoError(t, err)
	require.EqualValues(t, 9, sawTag)
}

type reflectAddress struct {
	City string  `tagtape:"tag=1"`
	Zip  *string `tagtape:"tag=2,opt"`
}

type reflectPerson struct {
	Name    string         `tagtape:"tag=1"`
	Age     int32          `tagtape:"tag=2"`
	Home    *reflectAddress `tagtape:"tag=3"`
	Nickels []int32        `tagtape:"tag=4,rep"`
}

func TestReflectiveRoundTrip(t *testing.T) {
	zip := "90210"
	in := &reflectPerson{
		Name:    "Grace Hopper",
		Age:     85,
		Home:    &reflectAddress{City: "Arlington", Zip: &zip},
		Nickels: []int32{1, 1, 2, 3, 5},
	}
	out, err := tlv.Encode(tlv.Reflective{V: in})
	require.NoError(t, err)

	got := new(reflectPerson)
	require.NoError(t, tlv.Decode(out, tlv.Reflective{V: got}))
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTrailingCharacters(t *testing.T) {
	e := tlv.NewEncoder()
	e.Int8(1, 5)
	raw := append(e.Output(), 0xFF)

	got := new(struct {
		V int8 `tagtape:"tag=1"`
	})
	err := tlv.Decode(raw, tlv.Reflective{V: got})
	require.ErrorIs(t, err, tagtape.ErrTrailingCharacters)
}
