package tf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/bornir/internal/frontend"
)

// Node adapts a NodeDef to frontend.RawNode.
//
// TensorFlow names output k of node "x" as "x:k", with "x" and "x:0" both
// denoting output 0. Inputs are normalized to that form and control
// dependencies ("^x") are dropped. A GraphDef does not record how many
// outputs a node has, so a node declares outputs up to the highest port the
// graph references.
type Node struct {
	def      *NodeDef
	inputs   []string
	attrs    frontend.Attrs
	lastPort int
}

// NewNode decodes the attributes of def.
func NewNode(def *NodeDef) (*Node, error) {
	n := &Node{def: def, attrs: make(frontend.Attrs, len(def.Attr))}
	for _, in := range def.Inputs {
		if strings.HasPrefix(in, "^") {
			continue
		}
		n.inputs = append(n.inputs, TensorName(in))
	}
	for name, v := range def.Attr {
		a, err := attrValue(&v)
		if err != nil {
			return nil, fmt.Errorf("node %q: attr %q: %w", def.Name, name, err)
		}
		if a.Type != 0 {
			n.attrs[name] = a
		}
	}
	return n, nil
}

// TensorName normalizes an input reference: "x:0" becomes "x".
func TensorName(ref string) string {
	return strings.TrimSuffix(ref, ":0")
}

// splitRef splits a tensor reference into its node name and output port.
func splitRef(ref string) (string, int) {
	i := strings.LastIndexByte(ref, ':')
	if i < 0 {
		return ref, 0
	}
	port, err := strconv.Atoi(ref[i+1:])
	if err != nil || port < 0 {
		return ref, 0
	}
	return ref[:i], port
}

// Name implements frontend.RawNode.
func (n *Node) Name() string { return n.def.Name }

// OpType implements frontend.RawNode.
func (n *Node) OpType() string { return n.def.Op }

// Inputs implements frontend.RawNode.
func (n *Node) Inputs() []string { return n.inputs }

// Outputs implements frontend.RawNode.
func (n *Node) Outputs() []string {
	outs := []string{n.def.Name}
	for port := 1; port <= n.lastPort; port++ {
		outs = append(outs, n.def.Name+":"+strconv.Itoa(port))
	}
	return outs
}

// Attr implements frontend.RawNode.
func (n *Node) Attr(name string) (frontend.RawAttr, bool) { return n.attrs.Attr(name) }

func attrValue(v *AttrValue) (frontend.RawAttr, error) {
	switch v.Kind {
	case KindString:
		return frontend.String(string(v.S)), nil
	case KindInt:
		return frontend.Int(v.I), nil
	case KindFloat:
		return frontend.Float(float64(v.F)), nil
	case KindBool:
		return frontend.Bool(v.B), nil
	case KindType:
		return frontend.DType(DataType(v.Type)), nil
	case KindShape:
		if v.Shape == nil || v.Shape.UnknownRank {
			return frontend.RawAttr{}, nil
		}
		return frontend.Ints(shape(v.Shape)...), nil
	case KindTensor:
		t, err := Tensor(v.Tensor)
		if err != nil {
			return frontend.RawAttr{}, err
		}
		return frontend.TensorAttr(t), nil
	case KindList:
		return listValue(v.List), nil
	default:
		return frontend.RawAttr{}, nil
	}
}

// listValue picks the populated list member. An empty list decodes as an
// empty integer list.
func listValue(l *ListValue) frontend.RawAttr {
	switch {
	case len(l.F) > 0:
		fs := make([]float64, len(l.F))
		for i, f := range l.F {
			fs[i] = float64(f)
		}
		return frontend.Floats(fs...)
	case len(l.S) > 0:
		ss := make([]string, len(l.S))
		for i, s := range l.S {
			ss[i] = string(s)
		}
		return frontend.Strings(ss...)
	case len(l.B) > 0:
		is := make([]int64, len(l.B))
		for i, b := range l.B {
			if b {
				is[i] = 1
			}
		}
		return frontend.Ints(is...)
	case len(l.Type) > 0:
		ss := make([]string, len(l.Type))
		for i, t := range l.Type {
			ss[i] = DataType(t).String()
		}
		return frontend.Strings(ss...)
	default:
		return frontend.Ints(l.I...)
	}
}
