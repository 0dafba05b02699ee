package tf

import (
	"fmt"
	"os"

	"github.com/born-ml/bornir/internal/protowalk"
)

// GraphDef subset of tensorflow/core/framework/graph.proto.
type GraphDef struct {
	Nodes    []NodeDef
	Producer int64 // versions.producer
}

// NodeDef is one TensorFlow node.
type NodeDef struct {
	Name   string
	Op     string
	Inputs []string // "x", "x:1" or "^ctrl" for control dependencies
	Device string
	Attr   map[string]AttrValue
}

// AttrValue is a node attribute. Kind tells which member is set.
type AttrValue struct {
	Kind   AttrKind
	S      []byte
	I      int64
	F      float32
	B      bool
	Type   int32
	Shape  *TensorShape
	Tensor *TensorProto
	List   *ListValue
}

// AttrKind selects the populated AttrValue member.
type AttrKind int

// Attribute kinds.
const (
	KindNone AttrKind = iota
	KindList
	KindString
	KindInt
	KindFloat
	KindBool
	KindType
	KindShape
	KindTensor
)

// ListValue is a list attribute.
type ListValue struct {
	S      [][]byte
	I      []int64
	F      []float32
	B      []bool
	Type   []int32
	Shape  []TensorShape
	Tensor []TensorProto
}

// TensorShape is a TensorShapeProto. Unknown dimensions are -1.
type TensorShape struct {
	Dims        []int64
	UnknownRank bool
}

// TensorProto subset of tensorflow/core/framework/tensor.proto.
type TensorProto struct {
	DType         int32
	Shape         TensorShape
	TensorContent []byte
	FloatVal      []float32
	DoubleVal     []float64
	IntVal        []int64 // int32, int16, int8, uint8 values
	Int64Val      []int64
	BoolVal       []bool
	HalfVal       []int64 // float16 bit patterns
}

// ParseFile parses a frozen GraphDef (.pb) from file.
//
//nolint:gosec // G304: Path is provided by user
func ParseFile(path string) (*GraphDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseGraphDef(data)
}

// ParseGraphDef parses a binary GraphDef.
func ParseGraphDef(data []byte) (*GraphDef, error) {
	g := &GraphDef{}
	err := protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1: // node
			var n NodeDef
			if err := readNodeDef(f.Bytes, &n); err != nil {
				return fmt.Errorf("node %d: %w", len(g.Nodes), err)
			}
			g.Nodes = append(g.Nodes, n)
		case 4: // versions
			return protowalk.Walk(f.Bytes, func(f protowalk.Field) error {
				if f.Num == 1 { // producer
					g.Producer = f.Int64()
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	return g, nil
}

func readNodeDef(data []byte, n *NodeDef) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1:
			n.Name = f.String()
		case 2:
			n.Op = f.String()
		case 3:
			n.Inputs = append(n.Inputs, f.String())
		case 4:
			n.Device = f.String()
		case 5: // map<string, AttrValue> entry
			var key string
			var value AttrValue
			err := protowalk.Walk(f.Bytes, func(f protowalk.Field) error {
				switch f.Num {
				case 1:
					key = f.String()
				case 2:
					return readAttrValue(f.Bytes, &value)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("attr %q: %w", key, err)
			}
			if n.Attr == nil {
				n.Attr = make(map[string]AttrValue)
			}
			n.Attr[key] = value
		}
		return nil
	})
}

func readAttrValue(data []byte, v *AttrValue) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1:
			v.Kind = KindList
			v.List = &ListValue{}
			return readListValue(f.Bytes, v.List)
		case 2:
			v.Kind, v.S = KindString, f.Bytes
		case 3:
			v.Kind, v.I = KindInt, f.Int64()
		case 4:
			v.Kind, v.F = KindFloat, f.Float32()
		case 5:
			v.Kind, v.B = KindBool, f.Bool()
		case 6:
			v.Kind, v.Type = KindType, f.Int32()
		case 7:
			v.Kind = KindShape
			v.Shape = &TensorShape{}
			return readTensorShape(f.Bytes, v.Shape)
		case 8:
			v.Kind = KindTensor
			v.Tensor = &TensorProto{}
			return readTensorProto(f.Bytes, v.Tensor)
		}
		return nil
	})
}

func readListValue(data []byte, l *ListValue) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		var err error
		switch f.Num {
		case 2:
			l.S = append(l.S, f.Bytes)
		case 3:
			l.I, err = protowalk.Int64s(l.I, f)
		case 4:
			l.F, err = protowalk.Float32s(l.F, f)
		case 5:
			var bs []int64
			bs, err = protowalk.Int64s(nil, f)
			for _, b := range bs {
				l.B = append(l.B, b != 0)
			}
		case 6:
			var ts []int64
			ts, err = protowalk.Int64s(nil, f)
			for _, t := range ts {
				l.Type = append(l.Type, int32(t)) //nolint:gosec // G115: DataType enum.
			}
		case 7:
			var s TensorShape
			err = readTensorShape(f.Bytes, &s)
			l.Shape = append(l.Shape, s)
		case 8:
			var t TensorProto
			err = readTensorProto(f.Bytes, &t)
			l.Tensor = append(l.Tensor, t)
		}
		return err
	})
}

func readTensorShape(data []byte, s *TensorShape) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 2: // dim
			size := int64(0)
			err := protowalk.Walk(f.Bytes, func(f protowalk.Field) error {
				if f.Num == 1 {
					size = f.Int64()
				}
				return nil
			})
			s.Dims = append(s.Dims, size)
			return err
		case 3:
			s.UnknownRank = f.Bool()
		}
		return nil
	})
}

func readTensorProto(data []byte, t *TensorProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		var err error
		switch f.Num {
		case 1:
			t.DType = f.Int32()
		case 2:
			err = readTensorShape(f.Bytes, &t.Shape)
		case 4:
			t.TensorContent = f.Bytes
		case 5:
			t.FloatVal, err = protowalk.Float32s(t.FloatVal, f)
		case 6:
			t.DoubleVal, err = protowalk.Float64s(t.DoubleVal, f)
		case 7:
			t.IntVal, err = protowalk.Int64s(t.IntVal, f)
		case 10:
			t.Int64Val, err = protowalk.Int64s(t.Int64Val, f)
		case 11:
			var bs []int64
			bs, err = protowalk.Int64s(nil, f)
			for _, b := range bs {
				t.BoolVal = append(t.BoolVal, b != 0)
			}
		case 13:
			t.HalfVal, err = protowalk.Int64s(t.HalfVal, f)
		}
		return err
	})
}
