package ir

import (
	"strconv"
	"strings"
)

// Dynamic marks a dimension whose size is unknown until runtime.
const Dynamic int64 = -1

// Shape represents the dimensions of a tensor. A nil Shape is unknown;
// an empty non-nil Shape is a scalar.
type Shape []int64

// NumElements returns the number of elements, or -1 if any dimension is dynamic.
func (s Shape) NumElements() int64 {
	n := int64(1)
	for _, dim := range s {
		if dim < 0 {
			return Dynamic
		}
		n *= dim
	}
	return n
}

// IsStatic reports whether every dimension is known.
func (s Shape) IsStatic() bool {
	return s != nil && s.NumElements() >= 0
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) || (s == nil) != (other == nil) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as "[2,3,?]".
func (s Shape) String() string {
	if s == nil {
		return "?"
	}
	parts := make([]string, len(s))
	for i, dim := range s {
		if dim < 0 {
			parts[i] = "?"
			continue
		}
		parts[i] = strconv.FormatInt(dim, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// TensorInfo names a tensor together with its element type and shape.
// Graph inputs are described this way.
type TensorInfo struct {
	Name  string
	DType DataType
	Shape Shape
}
