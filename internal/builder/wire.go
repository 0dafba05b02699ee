package builder

import (
	"context"

	"github.com/born-ml/bornir/internal/ctxlog"
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

// wire connects every committed operator to the data nodes named by its
// declared inputs. The declared position is the input port.
func (st *build) wire(ctx context.Context) error {
	for _, p := range st.ops {
		for port, in := range p.raw.Inputs() {
			if in == "" {
				continue
			}
			data := st.graph.Node(in)
			if data == nil || data.IsOp() {
				err := &frontend.DanglingReferenceError{Node: p.name, Input: in, Port: port}
				if ferr := st.fail(ctx, p.name, p.raw.OpType(), err); ferr != nil {
					return ferr
				}
				continue
			}
			if err := st.graph.AddEdge(ir.Edge{From: in, To: p.id, InPort: port}); err != nil {
				return err
			}
		}
	}
	return nil
}

// addResults terminates every declared graph output with a Result operator.
func (st *build) addResults(ctx context.Context) error {
	for _, out := range st.src.Outputs {
		id := out + "/result"
		data := st.graph.Node(out)
		if data == nil || data.IsOp() {
			err := &frontend.DanglingReferenceError{Node: id, Input: out}
			if ferr := st.fail(ctx, id, ir.OpResult, err); ferr != nil {
				return ferr
			}
			continue
		}
		if err := st.graph.AddNode(ir.NewOp(id, ir.OpResult)); err != nil {
			if ferr := st.fail(ctx, id, ir.OpResult, &frontend.DuplicateNodeError{Node: id, Name: id}); ferr != nil {
				return ferr
			}
			continue
		}
		if err := st.graph.AddEdge(ir.Edge{From: out, To: id}); err != nil {
			return err
		}
		st.graph.Outputs = append(st.graph.Outputs, out)
	}
	return nil
}

// checkArity enforces the canonical minimum input count on the wired graph.
// Operators that already failed wiring were reported and are skipped.
func (st *build) checkArity(ctx context.Context) error {
	for _, p := range st.ops {
		if st.report.Failed(p.name) {
			continue
		}
		n := st.graph.Node(p.id)
		arity, ok := ir.Lookup(n.Type)
		if !ok {
			continue
		}
		if got := st.graph.InputCount(p.id); !arity.Accepts(got) {
			err := &frontend.ArityError{Node: p.name, Op: n.Type, Got: got, Want: arity.String()}
			if ferr := st.fail(ctx, p.name, p.raw.OpType(), err); ferr != nil {
				return ferr
			}
		}
	}
	return nil
}

// propagateTypes assigns element types to data nodes that have none, in
// topological order, using the normalization policy.
func (st *build) propagateTypes(ctx context.Context) {
	order, err := st.graph.TopoOrder()
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Skipping type propagation.", "error", err)
		return
	}
	for _, op := range order {
		var types []ir.DataType
		for _, e := range st.graph.InEdges(op.ID) {
			for len(types) <= e.InPort {
				types = append(types, ir.Undefined)
			}
			types[e.InPort] = st.graph.Node(e.From).DType
		}
		dt := st.policy.OutputType(op.Type, op.Attrs, types)
		for _, e := range st.graph.OutEdges(op.ID) {
			if out := st.graph.Node(e.To); out.DType == ir.Undefined {
				out.DType = dt
			}
		}
	}
}
