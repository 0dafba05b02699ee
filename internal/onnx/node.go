package onnx

import (
	"fmt"

	"github.com/born-ml/bornir/internal/frontend"
)

// Node adapts a NodeProto to frontend.RawNode. Attributes are decoded once,
// up front, and the model opset travels with the node so handlers can select
// opset-versioned behavior.
type Node struct {
	proto *NodeProto
	attrs frontend.Attrs
	opset int64
}

// NewNode decodes the attributes of p.
func NewNode(p *NodeProto, opset int64) (*Node, error) {
	attrs := make(frontend.Attrs, len(p.Attributes))
	for i := range p.Attributes {
		a := &p.Attributes[i]
		v, err := attrValue(a)
		if err != nil {
			return nil, fmt.Errorf("node %q: attribute %q: %w", p.Name, a.Name, err)
		}
		if v.Type != 0 {
			attrs[a.Name] = v
		}
	}
	return &Node{proto: p, attrs: attrs, opset: opset}, nil
}

// Name implements frontend.RawNode.
func (n *Node) Name() string { return n.proto.Name }

// OpType implements frontend.RawNode.
func (n *Node) OpType() string { return n.proto.OpType }

// Inputs implements frontend.RawNode.
func (n *Node) Inputs() []string { return n.proto.Inputs }

// Outputs implements frontend.RawNode.
func (n *Node) Outputs() []string { return n.proto.Outputs }

// Attr implements frontend.RawNode.
func (n *Node) Attr(name string) (frontend.RawAttr, bool) { return n.attrs.Attr(name) }

// Opset is the default-domain opset of the model the node belongs to.
func (n *Node) Opset() int64 { return n.opset }

// attrValue decodes one attribute. Graph-valued attributes (control flow
// bodies) are skipped and yield a zero RawAttr.
func attrValue(a *AttributeProto) (frontend.RawAttr, error) {
	switch attrType(a) {
	case AttributeProtoFloat:
		return frontend.Float(float64(a.F)), nil
	case AttributeProtoInt:
		return frontend.Int(a.I), nil
	case AttributeProtoString:
		return frontend.String(string(a.S)), nil
	case AttributeProtoTensor:
		if a.T == nil {
			return frontend.RawAttr{}, fmt.Errorf("empty tensor")
		}
		t, err := Tensor(a.T)
		if err != nil {
			return frontend.RawAttr{}, err
		}
		return frontend.TensorAttr(t), nil
	case AttributeProtoFloats:
		fs := make([]float64, len(a.Floats))
		for i, f := range a.Floats {
			fs[i] = float64(f)
		}
		return frontend.Floats(fs...), nil
	case AttributeProtoInts:
		return frontend.Ints(a.Ints...), nil
	case AttributeProtoStrings:
		ss := make([]string, len(a.Strings))
		for i, s := range a.Strings {
			ss[i] = string(s)
		}
		return frontend.Strings(ss...), nil
	case AttributeProtoGraph:
		return frontend.RawAttr{}, nil
	default:
		return frontend.RawAttr{}, fmt.Errorf("unsupported attribute type %d", a.Type)
	}
}

// attrType returns the declared attribute type. Exporters predating IR
// version 2 leave it unset; it is then inferred from the populated field.
func attrType(a *AttributeProto) int32 {
	if a.Type != AttributeProtoUndefined {
		return a.Type
	}
	switch {
	case a.T != nil:
		return AttributeProtoTensor
	case len(a.Ints) > 0:
		return AttributeProtoInts
	case len(a.Floats) > 0:
		return AttributeProtoFloats
	case len(a.Strings) > 0:
		return AttributeProtoStrings
	case a.S != nil:
		return AttributeProtoString
	case a.F != 0:
		return AttributeProtoFloat
	default:
		return AttributeProtoInt
	}
}

// opset returns the opset of the node being extracted.
func opset(ctx *frontend.Context) int64 {
	if n, ok := ctx.Raw.(interface{ Opset() int64 }); ok {
		return n.Opset()
	}
	return DefaultOpset
}
