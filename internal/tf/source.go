package tf

import (
	"fmt"

	"github.com/born-ml/bornir/internal/builder"
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

// Format is the registry key of the TensorFlow front end.
const Format = "tf"

// nonOutputOps are never inferred as graph outputs: side-effect nodes and
// constants left unconsumed once folded into attributes.
var nonOutputOps = map[string]bool{"NoOp": true, "Assert": true, "SaveV2": true, "Const": true}

// Source prepares a GraphDef for the graph builder.
//
// Placeholders are converted by their handler into Parameter operators, so
// the source declares no separate inputs. When outputs is empty, the first
// output of every non-constant node that no other node consumes is a graph
// output.
func Source(g *GraphDef, outputs ...string) (*builder.Source, error) {
	src := &builder.Source{Format: Format}
	consts := make(map[string]*ir.Tensor)
	byName := make(map[string]*Node, len(g.Nodes))

	for i := range g.Nodes {
		n, err := NewNode(&g.Nodes[i])
		if err != nil {
			return nil, err
		}
		if n.OpType() == "Const" {
			if v, ok := n.Attr("value"); ok {
				consts[n.Name()], _ = v.Value.(*ir.Tensor)
			}
		}
		byName[n.Name()] = n
		src.Nodes = append(src.Nodes, n)
	}

	// declare makes sure the referenced output port exists.
	declare := func(ref string) string {
		name, port := splitRef(ref)
		if n, ok := byName[name]; ok && port > n.lastPort {
			n.lastPort = port
		}
		return name
	}
	consumed := make(map[string]bool)
	for _, raw := range src.Nodes {
		n := raw.(*Node)
		if n.OpType() == "ConcatV2" {
			foldConcatAxis(n, consts)
		}
		for _, in := range n.Inputs() {
			consumed[declare(in)] = true
		}
	}

	if len(outputs) == 0 {
		for _, raw := range src.Nodes {
			if !consumed[raw.Name()] && !nonOutputOps[raw.OpType()] {
				outputs = append(outputs, raw.Name())
			}
		}
	}
	for _, out := range outputs {
		out = TensorName(out)
		declare(out)
		src.Outputs = append(src.Outputs, out)
	}
	if len(src.Nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	return src, nil
}

// foldConcatAxis turns the constant axis input of ConcatV2 into an axis
// attribute, leaving only the data inputs. A non-constant axis is left in
// place and the handler reports the missing attribute.
func foldConcatAxis(n *Node, consts map[string]*ir.Tensor) {
	if len(n.inputs) < 2 {
		return
	}
	last := n.inputs[len(n.inputs)-1]
	t, ok := consts[last]
	if !ok || t == nil {
		return
	}
	axis, err := t.Int64s()
	if err != nil || len(axis) != 1 {
		return
	}
	n.inputs = n.inputs[:len(n.inputs)-1]
	n.attrs["axis"] = frontend.Int(axis[0])
}
