package ir

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tensor is a constant value embedded in the graph.
// Data holds the elements in little-endian order.
type Tensor struct {
	DType DataType `yaml:"dtype"`
	Shape Shape    `yaml:"shape,flow"`
	Data  []byte   `yaml:"-"`
}

// NewTensor validates that data matches shape and element type.
func NewTensor(dtype DataType, shape Shape, data []byte) (*Tensor, error) {
	if size := dtype.Size(); size > 0 && shape.IsStatic() {
		if want := int(shape.NumElements()) * size; len(data) != want {
			return nil, fmt.Errorf("tensor %s%s: expected %d bytes, got %d", dtype, shape, want, len(data))
		}
	}
	return &Tensor{DType: dtype, Shape: shape.Clone(), Data: data}, nil
}

// Float32Tensor builds an f32 tensor from values.
func Float32Tensor(shape Shape, values []float32) *Tensor {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return &Tensor{DType: Float32, Shape: shape.Clone(), Data: data}
}

// Int64Tensor builds an i64 tensor from values.
func Int64Tensor(shape Shape, values []int64) *Tensor {
	data := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[8*i:], uint64(v))
	}
	return &Tensor{DType: Int64, Shape: shape.Clone(), Data: data}
}

// Int64s decodes an integer tensor as int64 values.
func (t *Tensor) Int64s() ([]int64, error) {
	switch t.DType {
	case Int64:
		out := make([]int64, len(t.Data)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(t.Data[8*i:]))
		}
		return out, nil
	case Int32:
		out := make([]int64, len(t.Data)/4)
		for i := range out {
			out[i] = int64(int32(binary.LittleEndian.Uint32(t.Data[4*i:])))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tensor of type %s is not integer", t.DType)
	}
}

// Float64s decodes a floating point tensor as float64 values.
func (t *Tensor) Float64s() ([]float64, error) {
	switch t.DType {
	case Float32:
		out := make([]float64, len(t.Data)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(t.Data[4*i:])))
		}
		return out, nil
	case Float64:
		out := make([]float64, len(t.Data)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(t.Data[8*i:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tensor of type %s is not floating point", t.DType)
	}
}
