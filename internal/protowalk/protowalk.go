// Package protowalk iterates protobuf wire-format messages field by field.
//
// The model formats read by bornir (ONNX ModelProto, TensorFlow GraphDef) are
// decoded directly from the wire, without generated message types, so only
// the fields the front ends need are materialized.
package protowalk

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field is one decoded field of a message. Exactly one of the value members
// is meaningful, selected by Type.
type Field struct {
	Num     protowire.Number
	Type    protowire.Type
	Varint  uint64
	Fixed32 uint32
	Fixed64 uint64
	Bytes   []byte
}

// Walk calls fn for every field of the message encoded in b, in wire order.
// Group fields are skipped. Bytes values alias b.
func Walk(b []byte, fn func(f Field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("read tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			f.Fixed32, n = protowire.ConsumeFixed32(b)
		case protowire.Fixed64Type:
			f.Fixed64, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("read field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.StartGroupType {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// String returns a bytes field as a string.
func (f Field) String() string { return string(f.Bytes) }

// Int64 returns a varint field as a signed (non-zigzag) integer.
func (f Field) Int64() int64 { return int64(f.Varint) }

// Int32 returns a varint field as int32. Negative int32 values are encoded
// sign-extended to 64 bits, so truncation restores them.
func (f Field) Int32() int32 { return int32(f.Varint) } //nolint:gosec // G115: int32 proto field.

// Bool returns a varint field as a bool.
func (f Field) Bool() bool { return f.Varint != 0 }

// Float32 returns a fixed32 field as a float.
func (f Field) Float32() float32 { return math.Float32frombits(f.Fixed32) }

// Float64 returns a fixed64 field as a double.
func (f Field) Float64() float64 { return math.Float64frombits(f.Fixed64) }

// Int64s appends the values of a repeated varint field, packed or not.
func Int64s(dst []int64, f Field) ([]int64, error) {
	switch f.Type {
	case protowire.VarintType:
		return append(dst, f.Int64()), nil
	case protowire.BytesType:
		b := f.Bytes
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return dst, fmt.Errorf("packed field %d: %w", f.Num, protowire.ParseError(n))
			}
			dst = append(dst, int64(v))
			b = b[n:]
		}
		return dst, nil
	}
	return dst, fmt.Errorf("field %d: wire type %d is not a varint list", f.Num, f.Type)
}

// Float32s appends the values of a repeated float field, packed or not.
func Float32s(dst []float32, f Field) ([]float32, error) {
	switch f.Type {
	case protowire.Fixed32Type:
		return append(dst, f.Float32()), nil
	case protowire.BytesType:
		b := f.Bytes
		for len(b) > 0 {
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return dst, fmt.Errorf("packed field %d: %w", f.Num, protowire.ParseError(n))
			}
			dst = append(dst, math.Float32frombits(v))
			b = b[n:]
		}
		return dst, nil
	}
	return dst, fmt.Errorf("field %d: wire type %d is not a float list", f.Num, f.Type)
}

// Float64s appends the values of a repeated double field, packed or not.
func Float64s(dst []float64, f Field) ([]float64, error) {
	switch f.Type {
	case protowire.Fixed64Type:
		return append(dst, f.Float64()), nil
	case protowire.BytesType:
		b := f.Bytes
		for len(b) > 0 {
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return dst, fmt.Errorf("packed field %d: %w", f.Num, protowire.ParseError(n))
			}
			dst = append(dst, math.Float64frombits(v))
			b = b[n:]
		}
		return dst, nil
	}
	return dst, fmt.Errorf("field %d: wire type %d is not a double list", f.Num, f.Type)
}
