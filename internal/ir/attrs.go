package ir

import (
	"fmt"
	"slices"
)

// Attrs maps attribute names to normalized values. Every value is one of
// int64, float64, string, bool, []int64, []float64, []string or *Tensor.
type Attrs map[string]any

// Normalize converts v to the canonical Go type for attribute values.
// Narrow integer and float types are widened; unsupported types are rejected.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case int64, float64, string, bool, *Tensor:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case DataType:
		return x.String(), nil
	case []int64:
		return slices.Clone(x), nil
	case []int:
		out := make([]int64, len(x))
		for i, e := range x {
			out[i] = int64(e)
		}
		return out, nil
	case []float64:
		return slices.Clone(x), nil
	case []float32:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	case []string:
		return slices.Clone(x), nil
	default:
		return nil, fmt.Errorf("unsupported attribute value type %T", v)
	}
}

// Set stores a normalized copy of v under name.
func (a Attrs) Set(name string, v any) error {
	n, err := Normalize(v)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}
	a[name] = n
	return nil
}

// Has reports whether name is set.
func (a Attrs) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Int returns an int64 attribute.
func (a Attrs) Int(name string) (int64, bool) {
	v, ok := a[name].(int64)
	return v, ok
}

// Float returns a float64 attribute.
func (a Attrs) Float(name string) (float64, bool) {
	v, ok := a[name].(float64)
	return v, ok
}

// String returns a string attribute.
func (a Attrs) String(name string) (string, bool) {
	v, ok := a[name].(string)
	return v, ok
}

// Bool returns a bool attribute.
func (a Attrs) Bool(name string) (bool, bool) {
	v, ok := a[name].(bool)
	return v, ok
}

// Ints returns an []int64 attribute.
func (a Attrs) Ints(name string) ([]int64, bool) {
	v, ok := a[name].([]int64)
	return v, ok
}

// Keys returns attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a deep copy of the mapping. Tensors are shared.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		switch x := v.(type) {
		case []int64:
			out[k] = slices.Clone(x)
		case []float64:
			out[k] = slices.Clone(x)
		case []string:
			out[k] = slices.Clone(x)
		default:
			out[k] = v
		}
	}
	return out
}
