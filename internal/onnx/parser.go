package onnx

import (
	"fmt"
	"os"

	"github.com/born-ml/bornir/internal/protowalk"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*ModelProto, error) {
	model := &ModelProto{}
	if err := readModelProto(data, model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if model.Graph == nil {
		return nil, fmt.Errorf("failed to parse model: no graph")
	}
	return model, nil
}

// message decodes one embedded message field into a fresh value.
func message[T any](f protowalk.Field, read func([]byte, *T) error) (T, error) {
	var m T
	err := read(f.Bytes, &m)
	return m, err
}

func readModelProto(data []byte, m *ModelProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1: // ir_version
			m.IRVersion = f.Int64()
		case 2: // producer_name
			m.ProducerName = f.String()
		case 3: // producer_version
			m.ProducerVersion = f.String()
		case 5: // model_version
			m.ModelVersion = f.Int64()
		case 7: // graph
			g, err := message(f, readGraphProto)
			if err != nil {
				return fmt.Errorf("graph: %w", err)
			}
			m.Graph = &g
		case 8: // opset_import
			o, err := message(f, readOperatorSetID)
			if err != nil {
				return fmt.Errorf("opset_import: %w", err)
			}
			m.OpsetImport = append(m.OpsetImport, o)
		}
		return nil
	})
}

func readGraphProto(data []byte, m *GraphProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1: // node
			n, err := message(f, readNodeProto)
			if err != nil {
				return fmt.Errorf("node %d: %w", len(m.Nodes), err)
			}
			m.Nodes = append(m.Nodes, n)
		case 2: // name
			m.Name = f.String()
		case 5: // initializer
			t, err := message(f, readTensorProto)
			if err != nil {
				return fmt.Errorf("initializer %d: %w", len(m.Initializers), err)
			}
			m.Initializers = append(m.Initializers, t)
		case 11: // input
			vi, err := message(f, readValueInfoProto)
			if err != nil {
				return fmt.Errorf("input: %w", err)
			}
			m.Inputs = append(m.Inputs, vi)
		case 12: // output
			vi, err := message(f, readValueInfoProto)
			if err != nil {
				return fmt.Errorf("output: %w", err)
			}
			m.Outputs = append(m.Outputs, vi)
		}
		return nil
	})
}

func readNodeProto(data []byte, m *NodeProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1: // input
			m.Inputs = append(m.Inputs, f.String())
		case 2: // output
			m.Outputs = append(m.Outputs, f.String())
		case 3: // name
			m.Name = f.String()
		case 4: // op_type
			m.OpType = f.String()
		case 5: // attribute
			a, err := message(f, readAttributeProto)
			if err != nil {
				return fmt.Errorf("attribute: %w", err)
			}
			m.Attributes = append(m.Attributes, a)
		case 7: // domain
			m.Domain = f.String()
		}
		return nil
	})
}

func readTensorProto(data []byte, m *TensorProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		var err error
		switch f.Num {
		case 1: // dims
			m.Dims, err = protowalk.Int64s(m.Dims, f)
		case 2: // data_type
			m.DataType = f.Int32()
		case 4: // float_data
			m.FloatData, err = protowalk.Float32s(m.FloatData, f)
		case 5: // int32_data
			var vs []int64
			vs, err = protowalk.Int64s(nil, f)
			for _, v := range vs {
				m.Int32Data = append(m.Int32Data, int32(v)) //nolint:gosec // G115: int32 proto field.
			}
		case 7: // int64_data
			m.Int64Data, err = protowalk.Int64s(m.Int64Data, f)
		case 8: // name
			m.Name = f.String()
		case 9: // raw_data
			m.RawData = f.Bytes
		case 10: // double_data
			m.DoubleData, err = protowalk.Float64s(m.DoubleData, f)
		}
		return err
	})
}

func readValueInfoProto(data []byte, m *ValueInfoProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1: // name
			m.Name = f.String()
		case 2: // type
			return readTypeProto(f.Bytes, m)
		}
		return nil
	})
}

// readTypeProto flattens TypeProto.tensor_type into the value info.
func readTypeProto(data []byte, m *ValueInfoProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		if f.Num != 1 { // tensor_type
			return nil
		}
		return protowalk.Walk(f.Bytes, func(f protowalk.Field) error {
			switch f.Num {
			case 1: // elem_type
				m.ElemType = f.Int32()
			case 2: // shape
				s, err := message(f, readTensorShapeProto)
				if err != nil {
					return fmt.Errorf("shape: %w", err)
				}
				m.Shape = &s
			}
			return nil
		})
	})
}

func readTensorShapeProto(data []byte, m *TensorShapeProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		if f.Num != 1 { // dim
			return nil
		}
		d, err := message(f, readDimensionProto)
		if err != nil {
			return err
		}
		m.Dims = append(m.Dims, d)
		return nil
	})
}

func readDimensionProto(data []byte, m *DimensionProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1: // dim_value
			m.DimValue = f.Int64()
		case 2: // dim_param
			m.DimParam = f.String()
		}
		return nil
	})
}

func readAttributeProto(data []byte, m *AttributeProto) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		var err error
		switch f.Num {
		case 1: // name
			m.Name = f.String()
		case 2: // f
			m.F = f.Float32()
		case 3: // i
			m.I = f.Int64()
		case 4: // s
			m.S = f.Bytes
		case 5: // t
			var t TensorProto
			t, err = message(f, readTensorProto)
			m.T = &t
		case 7: // floats
			m.Floats, err = protowalk.Float32s(m.Floats, f)
		case 8: // ints
			m.Ints, err = protowalk.Int64s(m.Ints, f)
		case 9: // strings
			m.Strings = append(m.Strings, f.Bytes)
		case 20: // type
			m.Type = f.Int32()
		}
		if err != nil {
			return fmt.Errorf("attribute %q: %w", m.Name, err)
		}
		return nil
	})
}

func readOperatorSetID(data []byte, m *OperatorSetID) error {
	return protowalk.Walk(data, func(f protowalk.Field) error {
		switch f.Num {
		case 1: // domain
			m.Domain = f.String()
		case 2: // version
			m.Version = f.Int64()
		}
		return nil
	})
}
