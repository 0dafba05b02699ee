package frontend

import "github.com/born-ml/bornir/internal/ir"

// AttrType is the declared type of a raw attribute value.
type AttrType int

// Raw attribute types.
const (
	AttrInt AttrType = iota + 1
	AttrFloat
	AttrString
	AttrBool
	AttrInts
	AttrFloats
	AttrStrings
	AttrTensor
	AttrDType
)

// String returns the attribute type name.
func (t AttrType) String() string {
	switch t {
	case AttrInt:
		return "int"
	case AttrFloat:
		return "float"
	case AttrString:
		return "string"
	case AttrBool:
		return "bool"
	case AttrInts:
		return "ints"
	case AttrFloats:
		return "floats"
	case AttrStrings:
		return "strings"
	case AttrTensor:
		return "tensor"
	case AttrDType:
		return "dtype"
	default:
		return "undefined"
	}
}

// RawAttr is an attribute value as decoded by a format adapter.
// Value holds int64, float64, string, bool, []int64, []float64, []string,
// *ir.Tensor or ir.DataType according to Type.
type RawAttr struct {
	Type  AttrType
	Value any
}

// RawNode is one node of a source model, as produced by a format parser.
//
// Inputs and Outputs name tensors. An empty input name marks an optional
// input that is not provided; it keeps its port position.
type RawNode interface {
	Name() string
	OpType() string
	Inputs() []string
	Outputs() []string
	Attr(name string) (RawAttr, bool)
}

// ConnectedInputs counts the non-empty input names of raw.
func ConnectedInputs(raw RawNode) int {
	n := 0
	for _, in := range raw.Inputs() {
		if in != "" {
			n++
		}
	}
	return n
}

// Attrs is a RawNode attribute table keyed by name; format adapters embed it.
type Attrs map[string]RawAttr

// Attr implements the attribute half of RawNode.
func (a Attrs) Attr(name string) (RawAttr, bool) {
	v, ok := a[name]
	return v, ok
}

// Node is a plain RawNode implementation for adapters and tests.
type Node struct {
	NodeName    string
	Op          string
	InputNames  []string
	OutputNames []string
	Attributes  Attrs
}

// Name implements RawNode.
func (n *Node) Name() string { return n.NodeName }

// OpType implements RawNode.
func (n *Node) OpType() string { return n.Op }

// Inputs implements RawNode.
func (n *Node) Inputs() []string { return n.InputNames }

// Outputs implements RawNode.
func (n *Node) Outputs() []string { return n.OutputNames }

// Attr implements RawNode.
func (n *Node) Attr(name string) (RawAttr, bool) { return n.Attributes.Attr(name) }

// Int is a shorthand for an integer RawAttr.
func Int(v int64) RawAttr { return RawAttr{Type: AttrInt, Value: v} }

// Float is a shorthand for a float RawAttr.
func Float(v float64) RawAttr { return RawAttr{Type: AttrFloat, Value: v} }

// String is a shorthand for a string RawAttr.
func String(v string) RawAttr { return RawAttr{Type: AttrString, Value: v} }

// Bool is a shorthand for a bool RawAttr.
func Bool(v bool) RawAttr { return RawAttr{Type: AttrBool, Value: v} }

// Ints is a shorthand for an integer list RawAttr.
func Ints(v ...int64) RawAttr { return RawAttr{Type: AttrInts, Value: v} }

// Floats is a shorthand for a float list RawAttr.
func Floats(v ...float64) RawAttr { return RawAttr{Type: AttrFloats, Value: v} }

// Strings is a shorthand for a string list RawAttr.
func Strings(v ...string) RawAttr { return RawAttr{Type: AttrStrings, Value: v} }

// TensorAttr is a shorthand for a tensor RawAttr.
func TensorAttr(t *ir.Tensor) RawAttr { return RawAttr{Type: AttrTensor, Value: t} }

// DType is a shorthand for an element type RawAttr.
func DType(dt ir.DataType) RawAttr { return RawAttr{Type: AttrDType, Value: dt} }
