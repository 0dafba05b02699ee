package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/born-ml/bornir/internal/ctxlog"
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
	"github.com/born-ml/bornir/internal/parallel"
)

// Source is one model as delivered by a format parser.
type Source struct {
	Format  string
	Nodes   []frontend.RawNode
	Inputs  []ir.TensorInfo // tensors fed from outside the graph
	Outputs []string        // tensors exposed through Result operators
}

// Builder converts raw node lists into IR graphs.
type Builder struct {
	registry *frontend.Registry
	policy   *frontend.Policy
	strict   bool
	workers  int
	metrics  *Metrics
}

// New creates a Builder resolving handlers in registry.
func New(registry *frontend.Registry, opts ...Option) *Builder {
	b := &Builder{registry: registry, policy: frontend.DefaultPolicy, workers: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// extraction is the outcome of extracting one raw node.
type extraction struct {
	op    string
	attrs ir.Attrs
	err   error
}

// pending is a committed operator waiting for its inputs to be wired.
type pending struct {
	id   string
	name string
	raw  frontend.RawNode
}

// build is the state of one Build call.
type build struct {
	*Builder
	src     *Source
	graph   *ir.Graph
	report  *Report
	tensors map[string]bool
	ops     []pending
}

// Build converts src into a graph.
//
// In strict mode the first per-node error is returned and the graph is nil.
// Otherwise the best-effort graph is returned together with a report of every
// node that could not be converted; err is reserved for failures that are not
// attributable to a single node.
func (b *Builder) Build(ctx context.Context, src *Source) (*ir.Graph, *Report, error) {
	start := time.Now()
	defer b.metrics.observe(src.Format, start)

	b.registry.Seal()
	st := &build{
		Builder: b,
		src:     src,
		graph:   ir.NewGraph(),
		report:  newReport(src.Format),
		tensors: declaredTensors(src),
	}
	logger := ctxlog.FromContext(ctx).With("conversion", st.report.ID.String(), "format", src.Format)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Build: Starting graph construction.", "nodes", len(src.Nodes), "workers", b.workers)

	if err := st.addInputs(ctx); err != nil {
		return nil, st.report, err
	}

	results := b.extractAll(src)
	logger.Debug("Build: Extraction complete.")

	if err := st.commit(ctx, results); err != nil {
		return nil, st.report, err
	}
	logger.Debug("Build: Node creation complete.", "graph_nodes", len(st.graph.Nodes))

	// Every data node exists from here on; wiring may resolve any name.
	if err := st.wire(ctx); err != nil {
		return nil, st.report, err
	}
	if err := st.addResults(ctx); err != nil {
		return nil, st.report, err
	}
	logger.Debug("Build: Node linking complete.", "edges", len(st.graph.Edges))

	if err := st.checkArity(ctx); err != nil {
		return nil, st.report, err
	}
	st.propagateTypes(ctx)

	st.report.Operators = len(st.graph.OpNodes())
	if !st.report.HasErrors() {
		if err := st.graph.Validate(); err != nil {
			return nil, st.report, fmt.Errorf("graph invariants violated: %w", err)
		}
		logger.Debug("Build: Graph construction successful.")
	} else {
		logger.Warn("Build: Graph built with errors.", "errors", len(st.report.Errors))
	}
	return st.graph, st.report, nil
}

// declaredTensors collects every tensor name the source declares, so operator
// identities can be kept apart from tensor identities.
func declaredTensors(src *Source) map[string]bool {
	names := make(map[string]bool)
	for _, in := range src.Inputs {
		names[in.Name] = true
	}
	for _, raw := range src.Nodes {
		for _, out := range raw.Outputs() {
			if out != "" {
				names[out] = true
			}
		}
	}
	return names
}

// extractAll runs every handler. Each raw node owns its result slot, so the
// fan-out needs no synchronization beyond the final join.
func (b *Builder) extractAll(src *Source) []extraction {
	results := make([]extraction, len(src.Nodes))
	parallel.For(len(src.Nodes), func(i int) {
		results[i] = b.extract(src.Format, src.Nodes[i])
	}, parallel.Workers(b.workers))
	return results
}

func (b *Builder) extract(format string, raw frontend.RawNode) extraction {
	h, err := b.registry.Resolve(format, raw.OpType())
	if err != nil {
		return extraction{err: err}
	}
	attrs, active, err := frontend.Extract(format, h, raw, b.policy)
	switch {
	case err != nil:
		return extraction{op: h.Op, err: err}
	case !active:
		return extraction{err: &frontend.UnsupportedOperatorError{Format: format, Op: raw.OpType()}}
	}
	return extraction{op: h.Op, attrs: attrs}
}

// fail records a per-node error. In strict mode it returns the error so the
// caller aborts.
func (st *build) fail(ctx context.Context, node, op string, err error) error {
	ne := st.report.add(node, op, err)
	st.metrics.nodeFailed(st.src.Format, ne.Kind)
	ctxlog.FromContext(ctx).Warn("Node conversion failed.", "node", node, "op", op, "kind", ne.Kind, "error", err)
	if st.strict {
		return ne
	}
	return nil
}

func (st *build) addInputs(ctx context.Context) error {
	for _, in := range st.src.Inputs {
		n := ir.NewData(in.Name)
		n.DType = in.DType
		n.Shape = in.Shape.Clone()
		if err := st.graph.AddNode(n); err != nil {
			if ferr := st.fail(ctx, in.Name, "", &frontend.DuplicateNodeError{Node: in.Name, Name: in.Name}); ferr != nil {
				return ferr
			}
			continue
		}
		st.graph.Inputs = append(st.graph.Inputs, in.Name)
	}
	return nil
}

// nodeName is the report name of raw node i.
func nodeName(raw frontend.RawNode, i int) string {
	if name := raw.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%s_%d", raw.OpType(), i)
}

// operatorID picks the graph identity for an operator. Operators named like
// a tensor (the TF convention) get an "/op" suffix.
func (st *build) operatorID(name string) string {
	if st.tensors[name] {
		return name + "/op"
	}
	return name
}

func (st *build) commit(ctx context.Context, results []extraction) error {
	for i, raw := range st.src.Nodes {
		name := nodeName(raw, i)
		res := results[i]
		if res.err != nil {
			if err := st.fail(ctx, name, raw.OpType(), res.err); err != nil {
				return err
			}
			continue
		}
		if err := st.commitNode(name, raw, res); err != nil {
			if ferr := st.fail(ctx, name, raw.OpType(), err); ferr != nil {
				return ferr
			}
			continue
		}
		st.metrics.nodeExtracted(st.src.Format, res.op)
	}
	return nil
}

// commitNode adds the operator and its output data nodes, or nothing at all.
func (st *build) commitNode(name string, raw frontend.RawNode, res extraction) error {
	id := st.operatorID(name)
	if st.graph.Node(id) != nil {
		return &frontend.DuplicateNodeError{Node: name, Name: id}
	}
	outputs := raw.Outputs()
	seen := make(map[string]bool, len(outputs))
	for _, out := range outputs {
		if out == "" {
			continue
		}
		if seen[out] || st.graph.Node(out) != nil {
			return &frontend.DuplicateNodeError{Node: name, Name: out}
		}
		seen[out] = true
	}

	op := ir.NewOp(id, res.op)
	op.Attrs = res.attrs
	if err := st.graph.AddNode(op); err != nil {
		return &frontend.DuplicateNodeError{Node: name, Name: id}
	}
	for port, out := range outputs {
		if out == "" {
			continue
		}
		data := ir.NewData(out)
		describeOutput(op, data)
		if err := st.graph.AddNode(data); err != nil {
			return err
		}
		if err := st.graph.AddEdge(ir.Edge{From: id, To: out, OutPort: port}); err != nil {
			return err
		}
	}
	st.ops = append(st.ops, pending{id: id, name: name, raw: raw})
	return nil
}

// describeOutput copies what extraction already knows about an operator's
// output onto its data node: constant payloads and parameter signatures.
func describeOutput(op, data *ir.Node) {
	switch op.Type {
	case ir.OpConst:
		if t, ok := op.Attrs["value"].(*ir.Tensor); ok {
			data.Value = t
			data.DType = t.DType
			data.Shape = t.Shape.Clone()
		}
	case ir.OpParameter:
		if s, ok := op.Attrs.String("element_type"); ok {
			data.DType, _ = ir.ParseDataType(s)
		}
		if shape, ok := op.Attrs.Ints("shape"); ok {
			data.Shape = ir.Shape(shape).Clone()
		}
	}
}
