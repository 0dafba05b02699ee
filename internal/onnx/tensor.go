package onnx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/bornir/internal/ir"
)

// DataType maps an ONNX element type to the IR element type.
func DataType(elemType int32) ir.DataType {
	switch elemType {
	case TensorProtoFloat:
		return ir.Float32
	case TensorProtoDouble:
		return ir.Float64
	case TensorProtoFloat16:
		return ir.Float16
	case TensorProtoInt8:
		return ir.Int8
	case TensorProtoInt16:
		return ir.Int16
	case TensorProtoInt32:
		return ir.Int32
	case TensorProtoInt64:
		return ir.Int64
	case TensorProtoUint8:
		return ir.Uint8
	case TensorProtoBool:
		return ir.Bool
	case TensorProtoString:
		return ir.String
	default:
		return ir.Undefined
	}
}

// Tensor converts t to an IR tensor. Legacy typed fields are re-encoded as
// little-endian bytes.
func Tensor(t *TensorProto) (*ir.Tensor, error) {
	dtype := DataType(t.DataType)
	if dtype == ir.Undefined {
		return nil, fmt.Errorf("tensor %q: unsupported data type %d", t.Name, t.DataType)
	}
	data := t.RawData
	if len(data) == 0 {
		data = legacyData(dtype, t)
	}
	out, err := ir.NewTensor(dtype, ir.Shape(t.Dims), data)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", t.Name, err)
	}
	return out, nil
}

func legacyData(dtype ir.DataType, t *TensorProto) []byte {
	var data []byte
	switch dtype {
	case ir.Float32:
		for _, v := range t.FloatData {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}
	case ir.Float64:
		for _, v := range t.DoubleData {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
	case ir.Int64:
		for _, v := range t.Int64Data {
			data = binary.LittleEndian.AppendUint64(data, uint64(v))
		}
	case ir.Int32:
		for _, v := range t.Int32Data {
			data = binary.LittleEndian.AppendUint32(data, uint32(v))
		}
	case ir.Int16, ir.Float16:
		for _, v := range t.Int32Data {
			data = binary.LittleEndian.AppendUint16(data, uint16(v)) //nolint:gosec // G115: 16-bit payload in int32_data.
		}
	case ir.Int8, ir.Uint8, ir.Bool:
		for _, v := range t.Int32Data {
			data = append(data, byte(v)) //nolint:gosec // G115: 8-bit payload in int32_data.
		}
	}
	return data
}

// shape converts a value info shape. Symbolic and missing dimensions are
// dynamic; a missing shape is an unknown rank.
func shape(s *TensorShapeProto) ir.Shape {
	if s == nil {
		return nil
	}
	out := make(ir.Shape, len(s.Dims))
	for i, d := range s.Dims {
		if d.DimParam != "" || d.DimValue <= 0 {
			out[i] = ir.Dynamic
			continue
		}
		out[i] = d.DimValue
	}
	return out
}
