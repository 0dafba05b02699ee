package mxnet

import (
	"fmt"

	"github.com/born-ml/bornir/internal/frontend"
)

// modeAttr names the attribute that selects the canonical operator of a
// multi-purpose MXNet operator. Such nodes are presented to the registry as
// "<op>/<mode>", e.g. "Pooling/max".
var modeAttr = map[string]struct {
	attr string
	def  string
}{
	"Activation": {"act_type", ""},
	"Pooling":    {"pool_type", "max"},
	"LeakyReLU":  {"act_type", "leaky"},
}

// lossOps take a label input that has no meaning at inference time; only
// their first input is kept.
var lossOps = map[string]bool{"SoftmaxOutput": true, "LinearRegressionOutput": true, "LogisticRegressionOutput": true}

// Node adapts a SymbolNode to frontend.RawNode.
type Node struct {
	name    string
	op      string
	inputs  []string
	outputs []string
	attrs   frontend.Attrs
}

// Name implements frontend.RawNode.
func (n *Node) Name() string { return n.name }

// OpType implements frontend.RawNode.
func (n *Node) OpType() string { return n.op }

// Inputs implements frontend.RawNode.
func (n *Node) Inputs() []string { return n.inputs }

// Outputs implements frontend.RawNode.
func (n *Node) Outputs() []string { return n.outputs }

// Attr implements frontend.RawNode.
func (n *Node) Attr(name string) (frontend.RawAttr, bool) { return n.attrs.Attr(name) }

// OutputName is the tensor name of output k of node. Variables ("null"
// nodes) are named by the node itself.
func OutputName(node *SymbolNode, k int) string {
	switch {
	case node.Op == "null":
		return node.Name
	case k == 0:
		return node.Name + "_output"
	default:
		return fmt.Sprintf("%s_output%d", node.Name, k)
	}
}

// opType is the registry key of node.
func opType(node *SymbolNode, attrs map[string]string) string {
	m, ok := modeAttr[node.Op]
	if !ok {
		return node.Op
	}
	mode := attrs[m.attr]
	if mode == "" {
		mode = m.def
	}
	return node.Op + "/" + mode
}
