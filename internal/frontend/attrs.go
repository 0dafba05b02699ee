package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/bornir/internal/ir"
)

// Lookup reads attribute name from raw as the requested type.
//
// Loosely typed encodings are coerced: strings are parsed into numbers,
// booleans and tuples ("(1, 2)", "[1,2]", "3"), scalars widen to
// single-element lists and integers widen to floats. ok is false when the
// attribute is absent.
func Lookup(raw RawNode, name string, want AttrType) (value any, ok bool, err error) {
	attr, ok := raw.Attr(name)
	if !ok {
		return nil, false, nil
	}
	v, err := coerce(attr, want)
	if err != nil {
		return nil, true, &InvalidAttributeError{
			Node: raw.Name(), Attr: name, Want: want, Got: attr.Type, Details: err.Error(),
		}
	}
	return v, true, nil
}

// Get implements getAttr(name, expectedType, default): the attribute value
// when present, def otherwise.
func Get(raw RawNode, name string, want AttrType, def any) (any, error) {
	v, ok, err := Lookup(raw, name, want)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

//nolint:gocyclo // one case per source/target type pair
func coerce(attr RawAttr, want AttrType) (any, error) {
	if attr.Type == want {
		return attr.Value, nil
	}
	switch want {
	case AttrInt:
		switch v := attr.Value.(type) {
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		case []int64:
			if len(v) == 1 {
				return v[0], nil
			}
		}
	case AttrFloat:
		switch v := attr.Value.(type) {
		case int64:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
	case AttrBool:
		switch v := attr.Value.(type) {
		case int64:
			return v != 0, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(v))
		}
	case AttrInts:
		switch v := attr.Value.(type) {
		case int64:
			return []int64{v}, nil
		case string:
			return parseInts(v)
		}
	case AttrFloats:
		switch v := attr.Value.(type) {
		case float64:
			return []float64{v}, nil
		case []int64:
			out := make([]float64, len(v))
			for i, x := range v {
				out[i] = float64(x)
			}
			return out, nil
		case string:
			return parseFloats(v)
		}
	case AttrStrings:
		if v, ok := attr.Value.(string); ok {
			return []string{v}, nil
		}
	case AttrDType:
		if v, ok := attr.Value.(string); ok {
			return ir.ParseDataType(v)
		}
	}
	return nil, fmt.Errorf("cannot convert %v", attr.Value)
}

// tupleFields splits "(1, 2)", "[1,2]" or "1" into its elements.
// "None" and empty tuples yield no elements.
func tupleFields(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	s = strings.TrimPrefix(strings.TrimSuffix(s, "]"), "[")
	if s == "" || s == "None" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func parseInts(s string) ([]int64, error) {
	fields := tupleFields(s)
	out := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSuffix(f, "L"), 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	fields := tupleFields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
