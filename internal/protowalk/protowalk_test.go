package protowalk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestWalk(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "conv1")
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(math.MaxUint64)) // -1 as int64
	b = protowire.AppendTag(b, 3, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(0.5))
	b = protowire.AppendTag(b, 4, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(2.25))

	var fields []Field
	err := Walk(b, func(f Field) error {
		fields = append(fields, f)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, fields, 4)

	assert.Equal(t, "conv1", fields[0].String())
	assert.Equal(t, int64(-1), fields[1].Int64())
	assert.Equal(t, int32(-1), fields[1].Int32())
	assert.True(t, fields[1].Bool())
	assert.InDelta(t, 0.5, fields[2].Float32(), 1e-9)
	assert.InDelta(t, 2.25, fields[3].Float64(), 1e-12)
}

func TestWalkTruncated(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendVarint(b, 10)
	b = append(b, "short"...)

	err := Walk(b, func(Field) error { return nil })
	assert.Error(t, err)
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	var b []byte
	for i := 1; i <= 3; i++ {
		b = protowire.AppendTag(b, protowire.Number(i), protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(i))
	}
	calls := 0
	err := Walk(b, func(f Field) error {
		calls++
		if f.Num == 2 {
			return assert.AnError
		}
		return nil
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, calls)
}

func TestInt64s(t *testing.T) {
	var packed []byte
	for _, v := range []int64{1, -2, 300} {
		packed = protowire.AppendVarint(packed, uint64(v))
	}

	got, err := Int64s(nil, Field{Num: 1, Type: protowire.BytesType, Bytes: packed})
	require.NoError(t, err)
	got, err = Int64s(got, Field{Num: 1, Type: protowire.VarintType, Varint: 7})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -2, 300, 7}, got)

	_, err = Int64s(nil, Field{Num: 1, Type: protowire.Fixed32Type})
	assert.Error(t, err)
}

func TestFloatLists(t *testing.T) {
	var packed32 []byte
	packed32 = protowire.AppendFixed32(packed32, math.Float32bits(1.5))
	packed32 = protowire.AppendFixed32(packed32, math.Float32bits(-3))
	f32, err := Float32s(nil, Field{Type: protowire.BytesType, Bytes: packed32})
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -3}, f32)

	var packed64 []byte
	packed64 = protowire.AppendFixed64(packed64, math.Float64bits(0.25))
	f64, err := Float64s(nil, Field{Type: protowire.BytesType, Bytes: packed64})
	require.NoError(t, err)
	f64, err = Float64s(f64, Field{Type: protowire.Fixed64Type, Fixed64: math.Float64bits(4)})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 4}, f64)

	_, err = Float32s(nil, Field{Type: protowire.BytesType, Bytes: []byte{1, 2}})
	assert.Error(t, err)
}
