package onnx

import (
	"fmt"

	"github.com/born-ml/bornir/internal/builder"
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

// Format is the registry key of the ONNX front end.
const Format = "onnx"

// Source prepares a parsed model for the graph builder.
//
// Initializers become Const nodes ahead of the graph nodes. Graph inputs
// that are not initializers become graph inputs; graph outputs are exposed
// through Result operators.
func Source(m *ModelProto) (*builder.Source, error) {
	if m.Graph == nil {
		return nil, fmt.Errorf("model has no graph")
	}
	g := m.Graph
	opset := m.Opset()
	src := &builder.Source{Format: Format}

	initialized := make(map[string]bool, len(g.Initializers))
	for i := range g.Initializers {
		init := &g.Initializers[i]
		t, err := Tensor(init)
		if err != nil {
			return nil, fmt.Errorf("initializer: %w", err)
		}
		initialized[init.Name] = true
		src.Nodes = append(src.Nodes, &frontend.Node{
			NodeName:    init.Name + "/const",
			Op:          "Constant",
			OutputNames: []string{init.Name},
			Attributes:  frontend.Attrs{"value": frontend.TensorAttr(t)},
		})
	}

	for _, in := range g.Inputs {
		if initialized[in.Name] {
			continue
		}
		src.Inputs = append(src.Inputs, ir.TensorInfo{
			Name:  in.Name,
			DType: DataType(in.ElemType),
			Shape: shape(in.Shape),
		})
	}

	for i := range g.Nodes {
		n, err := NewNode(&g.Nodes[i], opset)
		if err != nil {
			return nil, err
		}
		src.Nodes = append(src.Nodes, n)
	}

	for _, out := range g.Outputs {
		src.Outputs = append(src.Outputs, out.Name)
	}
	return src, nil
}
