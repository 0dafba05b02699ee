package tf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/bornir/internal/ir"
)

// TensorFlow DataType enum values.
const (
	DTInvalid = 0
	DTFloat   = 1
	DTDouble  = 2
	DTInt32   = 3
	DTUint8   = 4
	DTInt16   = 5
	DTInt8    = 6
	DTString  = 7
	DTInt64   = 9
	DTBool    = 10
	DTHalf    = 19
)

// DataType maps a TensorFlow DataType to the IR element type. Reference
// types (enum + 100) map like their value types.
func DataType(dt int32) ir.DataType {
	if dt > 100 {
		dt -= 100
	}
	switch dt {
	case DTFloat:
		return ir.Float32
	case DTDouble:
		return ir.Float64
	case DTHalf:
		return ir.Float16
	case DTInt8:
		return ir.Int8
	case DTInt16:
		return ir.Int16
	case DTInt32:
		return ir.Int32
	case DTInt64:
		return ir.Int64
	case DTUint8:
		return ir.Uint8
	case DTBool:
		return ir.Bool
	case DTString:
		return ir.String
	default:
		return ir.Undefined
	}
}

// shape converts a TensorShapeProto. An unknown rank is a nil shape.
func shape(s *TensorShape) ir.Shape {
	if s == nil || s.UnknownRank {
		return nil
	}
	out := make(ir.Shape, len(s.Dims))
	for i, d := range s.Dims {
		if d < 0 {
			d = ir.Dynamic
		}
		out[i] = d
	}
	return out
}

// Tensor converts a TensorFlow constant. Typed value lists shorter than the
// element count are padded with their last value, as TensorFlow does for
// compactly stored constants.
func Tensor(t *TensorProto) (*ir.Tensor, error) {
	dtype := DataType(t.DType)
	if dtype == ir.Undefined || dtype == ir.String {
		return nil, fmt.Errorf("unsupported tensor type %d", t.DType)
	}
	shp := shape(&t.Shape)
	if shp == nil {
		shp = ir.Shape{}
	}
	if len(t.TensorContent) > 0 {
		return ir.NewTensor(dtype, shp, t.TensorContent)
	}

	n := int(shp.NumElements())
	var data []byte
	put := func(count int, at func(i int)) {
		if count == 0 {
			return
		}
		for i := 0; i < n; i++ {
			at(min(i, count-1))
		}
	}
	switch dtype {
	case ir.Float32:
		put(len(t.FloatVal), func(i int) {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(t.FloatVal[i]))
		})
	case ir.Float64:
		put(len(t.DoubleVal), func(i int) {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(t.DoubleVal[i]))
		})
	case ir.Int64:
		put(len(t.Int64Val), func(i int) {
			data = binary.LittleEndian.AppendUint64(data, uint64(t.Int64Val[i]))
		})
	case ir.Int32:
		put(len(t.IntVal), func(i int) {
			data = binary.LittleEndian.AppendUint32(data, uint32(t.IntVal[i])) //nolint:gosec // G115: int32 payload.
		})
	case ir.Int16:
		put(len(t.IntVal), func(i int) {
			data = binary.LittleEndian.AppendUint16(data, uint16(t.IntVal[i])) //nolint:gosec // G115: int16 payload.
		})
	case ir.Float16:
		put(len(t.HalfVal), func(i int) {
			data = binary.LittleEndian.AppendUint16(data, uint16(t.HalfVal[i])) //nolint:gosec // G115: half bits.
		})
	case ir.Int8, ir.Uint8:
		put(len(t.IntVal), func(i int) {
			data = append(data, byte(t.IntVal[i])) //nolint:gosec // G115: 8-bit payload.
		})
	case ir.Bool:
		put(len(t.BoolVal), func(i int) {
			b := byte(0)
			if t.BoolVal[i] {
				b = 1
			}
			data = append(data, b)
		})
	}
	return ir.NewTensor(dtype, shp, data)
}
