package onnx

// ONNX protobuf message subset. Only the fields the front end reads are kept.

// ModelProto is an ONNX model.
type ModelProto struct {
	IRVersion       int64           // IR version (e.g., 7, 8, 9)
	OpsetImport     []OperatorSetID // Opset version(s)
	ProducerName    string          // Framework name (e.g., "pytorch", "tf2onnx")
	ProducerVersion string          // Framework version
	ModelVersion    int64           // Model version number
	Graph           *GraphProto     // Computation graph
}

// GraphProto is the computation graph.
type GraphProto struct {
	Name         string           // Graph name
	Nodes        []NodeProto      // Operation nodes, in topological order
	Inputs       []ValueInfoProto // Graph inputs; may also list initializers
	Outputs      []ValueInfoProto // Graph outputs
	Initializers []TensorProto    // Weight tensors
}

// NodeProto is a single operation.
type NodeProto struct {
	Name       string           // Node name (optional)
	OpType     string           // Operation type (e.g., "Conv", "MatMul", "Relu")
	Inputs     []string         // Input tensor names; "" marks an absent optional input
	Outputs    []string         // Output tensor names
	Attributes []AttributeProto // Operation attributes
	Domain     string           // Custom domain (empty for default)
}

// TensorProto is a constant tensor (weights, Constant values).
type TensorProto struct {
	Name       string    // Tensor name
	DataType   int32     // Element data type
	Dims       []int64   // Tensor shape
	RawData    []byte    // Raw little-endian data (most common)
	FloatData  []float32 // Float32 data (legacy)
	Int32Data  []int32   // Int32, int16, int8, uint8, bool and float16 data (legacy)
	Int64Data  []int64   // Int64 data (legacy)
	DoubleData []float64 // Float64 data (legacy)
}

// ValueInfoProto describes an input or output tensor.
type ValueInfoProto struct {
	Name     string            // Tensor name
	ElemType int32             // Element data type, 0 when unknown
	Shape    *TensorShapeProto // nil when the rank is unknown
}

// TensorShapeProto describes tensor dimensions.
type TensorShapeProto struct {
	Dims []DimensionProto
}

// DimensionProto is a single dimension.
type DimensionProto struct {
	DimValue int64  // Static dimension value (e.g., 224 for image size)
	DimParam string // Dynamic dimension name (e.g., "batch_size")
}

// AttributeProto is a node attribute.
type AttributeProto struct {
	Name    string       // Attribute name
	Type    int32        // Attribute type
	F       float32      // FLOAT value
	I       int64        // INT value
	S       []byte       // STRING value
	T       *TensorProto // TENSOR value
	Floats  []float32    // FLOATS array
	Ints    []int64      // INTS array
	Strings [][]byte     // STRINGS array
}

// OperatorSetID identifies an opset version.
type OperatorSetID struct {
	Domain  string // Operator domain (empty for default)
	Version int64  // Opset version number
}

// Opset returns the imported version of the default ONNX domain, or
// DefaultOpset when the model does not declare one.
func (m *ModelProto) Opset() int64 {
	for _, o := range m.OpsetImport {
		if o.Domain == "" || o.Domain == "ai.onnx" {
			return o.Version
		}
	}
	return DefaultOpset
}

// DefaultOpset is assumed for models without an opset import.
const DefaultOpset = 13

// ONNX data types (TensorProto.DataType).
const (
	TensorProtoUndefined = 0
	TensorProtoFloat     = 1  // float32
	TensorProtoUint8     = 2  // uint8
	TensorProtoInt8      = 3  // int8
	TensorProtoUint16    = 4  // uint16
	TensorProtoInt16     = 5  // int16
	TensorProtoInt32     = 6  // int32
	TensorProtoInt64     = 7  // int64
	TensorProtoString    = 8  // string
	TensorProtoBool      = 9  // bool
	TensorProtoFloat16   = 10 // float16
	TensorProtoDouble    = 11 // float64
)

// ONNX attribute types (AttributeProto.Type).
const (
	AttributeProtoUndefined = 0
	AttributeProtoFloat     = 1 // FLOAT
	AttributeProtoInt       = 2 // INT
	AttributeProtoString    = 3 // STRING
	AttributeProtoTensor    = 4 // TENSOR
	AttributeProtoGraph     = 5 // GRAPH
	AttributeProtoFloats    = 6 // FLOATS
	AttributeProtoInts      = 7 // INTS
	AttributeProtoStrings   = 8 // STRINGS
)
