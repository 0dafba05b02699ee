package ir

import "fmt"

// DataType is the element type of a tensor in the canonical graph.
type DataType int

// Supported element types.
const (
	Undefined DataType = iota
	Float32
	Float64
	Float16
	Int8
	Int16
	Int32
	Int64
	Uint8
	Bool
	String
)

// Size returns the byte size of one element, or 0 for variable-size types.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16, Int16:
		return 2
	case Int8, Uint8, Bool:
		return 1
	default:
		return 0
	}
}

// String returns the short element type name used in the IR ("f32", "i64", ...).
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Float16:
		return "f16"
	case Int8:
		return "i8"
	case Int16:
		return "i16"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Uint8:
		return "u8"
	case Bool:
		return "boolean"
	case String:
		return "string"
	default:
		return "undefined"
	}
}

// ParseDataType converts a short element type name back to a DataType.
func ParseDataType(s string) (DataType, error) {
	for dt := Undefined; dt <= String; dt++ {
		if dt.String() == s {
			return dt, nil
		}
	}
	return Undefined, fmt.Errorf("unknown data type %q", s)
}

// MarshalYAML encodes the type by name.
func (dt DataType) MarshalYAML() (any, error) {
	return dt.String(), nil
}
