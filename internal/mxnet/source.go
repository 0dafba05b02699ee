package mxnet

import (
	"fmt"

	"github.com/born-ml/bornir/internal/builder"
	"github.com/born-ml/bornir/internal/frontend"
)

// Format is the registry key of the MXNet front end.
const Format = "mxnet"

// Source prepares a symbol graph for the graph builder. Variables become
// Parameter operators; the symbol heads are the graph outputs.
func Source(s *Symbol) (*builder.Source, error) {
	if len(s.Nodes) == 0 {
		return nil, fmt.Errorf("symbol has no nodes")
	}

	// A node declares every output up to the highest one referenced.
	outputs := make([]int, len(s.Nodes))
	for i := range outputs {
		outputs[i] = 1
	}
	use := func(e Entry) {
		outputs[e.Node] = max(outputs[e.Node], e.Output+1)
	}
	for _, n := range s.Nodes {
		for _, in := range n.Inputs {
			use(in)
		}
	}
	for _, h := range s.Heads {
		use(h)
	}

	src := &builder.Source{Format: Format}
	for i := range s.Nodes {
		sn := &s.Nodes[i]
		raw := sn.attributes()
		n := &Node{
			name:  sn.Name,
			op:    opType(sn, raw),
			attrs: make(frontend.Attrs, len(raw)),
		}
		for k, v := range raw {
			n.attrs[k] = frontend.String(v)
		}
		inputs := sn.Inputs
		if lossOps[sn.Op] && len(inputs) > 1 {
			inputs = inputs[:1]
		}
		for _, in := range inputs {
			n.inputs = append(n.inputs, OutputName(&s.Nodes[in.Node], in.Output))
		}
		for k := 0; k < outputs[i]; k++ {
			n.outputs = append(n.outputs, OutputName(sn, k))
		}
		src.Nodes = append(src.Nodes, n)
	}
	for _, h := range s.Heads {
		src.Outputs = append(src.Outputs, OutputName(&s.Nodes[h.Node], h.Output))
	}
	return src, nil
}
